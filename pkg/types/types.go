// Package domain defines the core business types shared by the
// SecondHandPlatform client packages.
package domain

import (
	"bytes"
	"fmt"
	"strconv"
)

// ID is an opaque server-assigned listing identifier. The backend has
// emitted it both as a JSON string and as a JSON number depending on the
// storage backend, so it accepts either on the wire and is always handled
// as a string in the client.
type ID string

// UnmarshalJSON accepts both `"42"` and `42`.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return fmt.Errorf("parsing listing id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	*id = ID(data)
	return nil
}

// Listing represents a single second-hand item post owned by a seller.
// The server owns the record; the client holds a per-page replica that is
// replaced wholesale on every successful fetch.
type Listing struct {
	ID          ID       `json:"id"`
	Title       string   `json:"title"`
	Price       float64  `json:"price"`
	Description string   `json:"description,omitempty"`
	ImageURLs   []string `json:"image_urls,omitempty"`
}

// PageInfo describes the server-side pagination window of a listings page.
type PageInfo struct {
	TotalCount int `json:"total_count"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}
