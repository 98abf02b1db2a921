package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	domain "github.com/Yuyang-Ding1102/SecondHandPlatform/pkg/types"
)

// ListingsPage is the data payload of GET /mylistings: one page of the
// seller's own posts plus the pagination window.
type ListingsPage struct {
	Posts []domain.Listing `json:"posts"`
	domain.PageInfo
}

// ItemUpdate carries the server-mutable fields of a listing. The id is
// only ever the request target, never part of the body.
type ItemUpdate struct {
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

// UpdateResult is the outcome of a successful item update.
type UpdateResult struct {
	// Message is the server acknowledgment, when one was sent.
	Message string
	// Listing is the server's echo of the updated record. Nil when the
	// server sent no (or a non-listing) data payload; callers then merge
	// the fields they submitted.
	Listing *domain.Listing
}

// MyListings fetches one page of the authenticated seller's listings.
func (c *Client) MyListings(ctx context.Context, page, pageSize int) (*ListingsPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))

	env, err := c.call(ctx, http.MethodGet, "/mylistings?"+q.Encode(), nil, true)
	if err != nil {
		return nil, err
	}

	var pageData ListingsPage
	if err := json.Unmarshal(env.Data, &pageData); err != nil {
		return nil, fmt.Errorf("decoding listings page: %w", err)
	}
	return &pageData, nil
}

// UpdateItem updates the mutable fields of the listing with the given id.
func (c *Client) UpdateItem(ctx context.Context, id domain.ID, upd ItemUpdate) (*UpdateResult, error) {
	env, err := c.call(ctx, http.MethodPut, "/item/"+url.PathEscape(string(id)), upd, true)
	if err != nil {
		return nil, err
	}

	result := &UpdateResult{Message: env.Message}
	if len(env.Data) > 0 {
		var echoed domain.Listing
		// Best effort: older backend versions return a bare message with
		// non-listing data here.
		if json.Unmarshal(env.Data, &echoed) == nil && echoed.ID != "" {
			result.Listing = &echoed
		}
	}
	return result, nil
}

// DeleteItem deletes the listing with the given id. The backend sends no
// body beyond the success indicator.
func (c *Client) DeleteItem(ctx context.Context, id domain.ID) error {
	_, err := c.call(ctx, http.MethodDelete, "/item/"+url.PathEscape(string(id)), nil, true)
	return err
}
