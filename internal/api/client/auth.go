package client

import (
	"context"
	"net/http"
)

type loginRequest struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token via POST /login. Unlike
// the item endpoints, the login response carries the token at the top
// level of the body rather than inside the standard envelope.
func (c *Client) Login(ctx context.Context, userName, password string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/login", loginRequest{
		UserName: userName,
		Password: password,
	}, &resp, false); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", &APIError{StatusCode: http.StatusOK, Message: "login response missing token"}
	}
	return resp.Token, nil
}
