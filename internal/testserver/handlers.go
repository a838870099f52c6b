package testserver

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/rpggio/datapoints/internal/repository"
)

func (ts *TestServer) handleSchemaRead(w http.ResponseWriter, r *http.Request) {
	entityType := chi.URLParam(r, "entity")

	ts.mu.Lock()
	schema, ok := ts.schemas[entityType]
	data := make(map[string]any, len(schema))
	for name, f := range schema {
		data[name] = map[string]any{
			"name":      map[string]any{"value": f.DisplayName, "editable": true},
			"data_type": map[string]any{"value": f.DataType, "editable": false},
		}
	}
	ts.mu.Unlock()

	if !ok {
		writeErrors(w, http.StatusNotFound, fmt.Sprintf("Entity type %s does not exist", entityType))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

type createFieldBody struct {
	DataType   string `json:"data_type"`
	Properties []struct {
		PropertyName string `json:"property_name"`
		Value        string `json:"value"`
	} `json:"properties"`
}

func (ts *TestServer) handleSchemaCreate(w http.ResponseWriter, r *http.Request) {
	entityType := chi.URLParam(r, "entity")

	var body createFieldBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErrors(w, http.StatusBadRequest, "invalid body")
		return
	}
	var displayName string
	for _, p := range body.Properties {
		if p.PropertyName == "name" {
			displayName = p.Value
		}
	}
	if displayName == "" || body.DataType == "" {
		writeErrors(w, http.StatusBadRequest, "data_type and name are required")
		return
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	schema, ok := ts.schemas[entityType]
	if !ok {
		writeErrors(w, http.StatusNotFound, fmt.Sprintf("Entity type %s does not exist", entityType))
		return
	}
	name := ts.fieldNamer(entityType, displayName)
	if _, exists := schema[name]; exists {
		writeErrors(w, http.StatusBadRequest, fmt.Sprintf("Field %s already exists", name))
		return
	}
	schema[name] = repository.FieldSchema{Name: name, DataType: body.DataType, DisplayName: displayName}

	writeJSON(w, http.StatusCreated, map[string]any{
		"data": map[string]any{
			"name":      map[string]any{"value": displayName},
			"data_type": map[string]any{"value": body.DataType},
		},
		"links": map[string]any{
			"self": fmt.Sprintf("/api/v1/schema/%s/fields/%s", entityType, name),
		},
	})
}

type searchBody struct {
	Filters []any `json:"filters"`
}

func (ts *TestServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	entityType := chi.URLParam(r, "entity")

	var body searchBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErrors(w, http.StatusBadRequest, "invalid body")
		return
	}

	q := r.URL.Query()
	var fields []string
	if f := q.Get("fields"); f != "" {
		fields = strings.Split(f, ",")
	}
	page := atoiDefault(q.Get("page[number]"), 1)
	size := atoiDefault(q.Get("page[size]"), 500)

	ts.mu.Lock()
	defer ts.mu.Unlock()

	if page == 1 {
		ts.searches = append(ts.searches, Search{EntityType: entityType, Filters: body.Filters, Fields: fields})
	}
	if status, ok := ts.failing[entityType]; ok {
		writeErrors(w, status, "search failed")
		return
	}
	if _, ok := ts.schemas[entityType]; !ok {
		writeErrors(w, http.StatusNotFound, fmt.Sprintf("Entity type %s does not exist", entityType))
		return
	}

	matched := ts.search(entityType, body.Filters)
	start := (page - 1) * size
	if start > len(matched) {
		start = len(matched)
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}

	data := make([]map[string]any, 0, end-start)
	for _, rec := range matched[start:end] {
		attrs := make(map[string]any)
		for _, f := range fields {
			if f == "id" {
				continue
			}
			attrs[f] = rec[f]
		}
		data = append(data, map[string]any{"type": entityType, "id": rec["id"], "attributes": attrs})
	}

	links := map[string]any{"self": r.URL.String()}
	if end < len(matched) {
		next := r.URL.Query()
		next.Set("page[number]", strconv.Itoa(page+1))
		links["next"] = r.URL.Path + "?" + next.Encode()
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data, "links": links})
}

type batchBody struct {
	Requests []repository.BatchRequest `json:"requests"`
}

// handleBatch applies every request or none of them.
func (ts *TestServer) handleBatch(w http.ResponseWriter, r *http.Request) {
	var body batchBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErrors(w, http.StatusBadRequest, "invalid body")
		return
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.batches = append(ts.batches, body.Requests)

	for i, req := range body.Requests {
		if req.RequestType != repository.RequestCreate {
			writeErrors(w, http.StatusBadRequest, fmt.Sprintf("request %d: unsupported request_type %q", i, req.RequestType))
			return
		}
		schema, ok := ts.schemas[req.EntityType]
		if !ok {
			writeErrors(w, http.StatusNotFound, fmt.Sprintf("request %d: entity type %s does not exist", i, req.EntityType))
			return
		}
		for field := range req.Data {
			if _, ok := schema[field]; !ok {
				writeErrors(w, http.StatusBadRequest, fmt.Sprintf("request %d: %s.%s doesn't exist", i, req.EntityType, field))
				return
			}
		}
	}

	data := make([]map[string]any, 0, len(body.Requests))
	for _, req := range body.Requests {
		ref := ts.addRecordLocked(req.EntityType, req.Data)
		data = append(data, map[string]any{"type": ref.Type, "id": ref.ID, "attributes": req.Data})
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrors(w http.ResponseWriter, status int, title string) {
	writeJSON(w, status, map[string]any{
		"errors": []map[string]any{{"status": status, "title": title}},
	})
}
