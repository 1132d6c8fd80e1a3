package storefrontapi

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// Envelope is the response wrapper used by most endpoints.
type Envelope struct {
	Message string          `json:"message"`
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
}

// Failed reports a domain-level failure signalled inside a 2xx response.
func (e Envelope) Failed() bool {
	return e.Status == "failed" || e.Status == "error"
}

// ProductQuery filters the product listing.
type ProductQuery struct {
	Category string
	MinPrice string
	MaxPrice string
	SortBy   string
	Page     int
	Limit    int
}

// Encode returns the query string in a stable order.
func (q ProductQuery) Encode() string {
	v := url.Values{}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.MinPrice != "" {
		v.Set("minPrice", q.MinPrice)
	}
	if q.MaxPrice != "" {
		v.Set("maxPrice", q.MaxPrice)
	}
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v.Encode()
}
