package shotgrid

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rpggio/datapoints/internal/repository"
)

type searchRequest struct {
	Filters []any `json:"filters"`
}

type entityBody struct {
	Type       string         `json:"type"`
	ID         int            `json:"id"`
	Attributes map[string]any `json:"attributes"`
}

func (b entityBody) entity() repository.Entity {
	return repository.Entity{Type: b.Type, ID: b.ID, Attributes: b.Attributes}
}

type searchResponse struct {
	Data  []entityBody `json:"data"`
	Links struct {
		Next string `json:"next"`
	} `json:"links"`
}

type batchRequestBody struct {
	Requests []repository.BatchRequest `json:"requests"`
}

type batchResponse struct {
	Data []entityBody `json:"data"`
}

// Find returns every entityType record matching filters, following pagination.
// Only fields are returned as attributes; nil or empty fields requests ids only.
func (c *Client) Find(ctx context.Context, entityType string, filters []any, fields []string) ([]repository.Entity, error) {
	if filters == nil {
		filters = []any{}
	}
	if len(fields) == 0 {
		fields = []string{"id"}
	}

	var entities []repository.Entity
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("fields", strings.Join(fields, ","))
		q.Set("page[number]", strconv.Itoa(page))
		q.Set("page[size]", strconv.Itoa(c.pageSize))
		p := "/entity/" + url.PathEscape(entityType) + "/_search?" + q.Encode()

		var resp searchResponse
		if err := c.doJSON(ctx, "search", http.MethodPost, p, contentTypeFilterArray, searchRequest{Filters: filters}, &resp); err != nil {
			return nil, err
		}
		for _, b := range resp.Data {
			entities = append(entities, b.entity())
		}
		if resp.Links.Next == "" || len(resp.Data) < c.pageSize {
			break
		}
	}
	return entities, nil
}

// Batch sends all requests in one call; the site applies them atomically.
func (c *Client) Batch(ctx context.Context, requests []repository.BatchRequest) ([]repository.Entity, error) {
	if len(requests) == 0 {
		return nil, repository.ErrInvalidInput
	}

	var resp batchResponse
	if err := c.doJSON(ctx, "batch", http.MethodPost, "/entity/_batch", contentTypeJSON, batchRequestBody{Requests: requests}, &resp); err != nil {
		return nil, err
	}

	created := make([]repository.Entity, 0, len(resp.Data))
	for _, b := range resp.Data {
		created = append(created, b.entity())
	}
	return created, nil
}
