package shotgrid

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"

	"github.com/rpggio/datapoints/internal/repository"
)

type schemaValue struct {
	Value string `json:"value"`
}

type fieldSchemaBody struct {
	Name     schemaValue `json:"name"`
	DataType schemaValue `json:"data_type"`
}

type schemaFieldsResponse struct {
	Data map[string]fieldSchemaBody `json:"data"`
}

type fieldProperty struct {
	PropertyName string `json:"property_name"`
	Value        string `json:"value"`
}

type createFieldRequest struct {
	DataType   string          `json:"data_type"`
	Properties []fieldProperty `json:"properties"`
}

type createFieldResponse struct {
	Data  fieldSchemaBody `json:"data"`
	Links struct {
		Self string `json:"self"`
	} `json:"links"`
}

// ReadSchema returns the fields of entityType keyed by field name.
func (c *Client) ReadSchema(ctx context.Context, entityType string) (map[string]repository.FieldSchema, error) {
	var resp schemaFieldsResponse
	p := "/schema/" + url.PathEscape(entityType) + "/fields"
	if err := c.doJSON(ctx, "schema read", http.MethodGet, p, "", nil, &resp); err != nil {
		return nil, err
	}

	schema := make(map[string]repository.FieldSchema, len(resp.Data))
	for name, f := range resp.Data {
		schema[name] = repository.FieldSchema{
			Name:        name,
			DataType:    f.DataType.Value,
			DisplayName: f.Name.Value,
		}
	}
	return schema, nil
}

// CreateField creates a field on entityType and returns the field name the site assigned.
func (c *Client) CreateField(ctx context.Context, entityType, dataType, displayName string) (string, error) {
	body := createFieldRequest{
		DataType:   dataType,
		Properties: []fieldProperty{{PropertyName: "name", Value: displayName}},
	}

	var resp createFieldResponse
	p := "/schema/" + url.PathEscape(entityType) + "/fields"
	if err := c.doJSON(ctx, "schema create", http.MethodPost, p, contentTypeJSON, body, &resp); err != nil {
		return "", err
	}
	if resp.Links.Self == "" {
		return "", fmt.Errorf("%w: schema create response for %s carried no field link", repository.ErrRemote, entityType)
	}
	return path.Base(resp.Links.Self), nil
}
