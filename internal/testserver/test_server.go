// Package testserver runs an in-memory ShotGrid site for tests. It speaks the
// subset of the REST API that the shotgrid client uses.
package testserver

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/rpggio/datapoints/internal/repository"
)

// DefaultTokenTTL is the lifetime in seconds of issued access tokens.
const DefaultTokenTTL = 600

// Search is one search call received by the site.
type Search struct {
	EntityType string
	Filters    []any
	Fields     []string
}

type TestServer struct {
	Server *httptest.Server

	mu            sync.Mutex
	scripts       map[string]string
	accessTokens  map[string]bool
	refreshTokens map[string]bool
	grants        map[string]int
	tokenTTL      int
	nextToken     int

	nextID     int
	records    map[string][]map[string]any
	schemas    map[string]map[string]repository.FieldSchema
	fieldNamer func(entityType, displayName string) string
	failing    map[string]int

	searches []Search
	batches  [][]repository.BatchRequest
}

// New starts a site with no scripts, entity types, or records.
func New(t *testing.T) *TestServer {
	t.Helper()

	ts := &TestServer{
		scripts:       make(map[string]string),
		accessTokens:  make(map[string]bool),
		refreshTokens: make(map[string]bool),
		grants:        make(map[string]int),
		tokenTTL:      DefaultTokenTTL,
		records:       make(map[string][]map[string]any),
		schemas:       make(map[string]map[string]repository.FieldSchema),
		fieldNamer:    defaultFieldName,
		failing:       make(map[string]int),
	}
	ts.Server = httptest.NewServer(ts.routes())

	t.Cleanup(ts.Server.Close)
	return ts
}

func (ts *TestServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/api/v1/auth/access_token", ts.handleToken)

	r.Group(func(r chi.Router) {
		r.Use(ts.authMiddleware)
		r.Get("/api/v1/schema/{entity}/fields", ts.handleSchemaRead)
		r.Post("/api/v1/schema/{entity}/fields", ts.handleSchemaCreate)
		r.Post("/api/v1/entity/{entity}/_search", ts.handleSearch)
		r.Post("/api/v1/entity/_batch", ts.handleBatch)
	})
	return r
}

// URL returns the site URL.
func (ts *TestServer) URL() string {
	return ts.Server.URL
}

// AddScript registers an API script that may log in.
func (ts *TestServer) AddScript(name, key string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.scripts[name] = key
}

// SetTokenTTL sets the expires_in value of tokens issued from now on.
func (ts *TestServer) SetTokenTTL(seconds int) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.tokenTTL = seconds
}

// Grants returns how many tokens were issued for grantType.
func (ts *TestServer) Grants(grantType string) int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.grants[grantType]
}

// AddEntityType registers an entity type with code and project fields plus
// the given number fields.
func (ts *TestServer) AddEntityType(entityType string, numberFields ...string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	schema := ts.schemaLocked(entityType)
	schema["code"] = repository.FieldSchema{Name: "code", DataType: "text", DisplayName: "Code"}
	schema["project"] = repository.FieldSchema{Name: "project", DataType: "entity", DisplayName: "Project"}
	for _, f := range numberFields {
		schema[f] = repository.FieldSchema{Name: f, DataType: "number", DisplayName: f}
	}
}

// AddField adds one field to an entity type's schema.
func (ts *TestServer) AddField(entityType, field, dataType string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.schemaLocked(entityType)[field] = repository.FieldSchema{Name: field, DataType: dataType, DisplayName: field}
}

// Fields returns a copy of an entity type's schema.
func (ts *TestServer) Fields(entityType string) map[string]repository.FieldSchema {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	out := make(map[string]repository.FieldSchema, len(ts.schemas[entityType]))
	for k, v := range ts.schemas[entityType] {
		out[k] = v
	}
	return out
}

// SetFieldNamer overrides how created fields are named from their display name.
func (ts *TestServer) SetFieldNamer(fn func(entityType, displayName string) string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.fieldNamer = fn
}

// FailSearches makes every search on entityType answer with status.
func (ts *TestServer) FailSearches(entityType string, status int) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.failing[entityType] = status
}

// AddRecord stores a record; attribute names are added to the schema as needed.
func (ts *TestServer) AddRecord(entityType string, attrs map[string]any) repository.EntityRef {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.addRecordLocked(entityType, attrs)
}

// AddProject stores a Project record with the given name.
func (ts *TestServer) AddProject(name string) repository.EntityRef {
	return ts.AddRecord("Project", map[string]any{"name": name})
}

// Records returns copies of every stored record of entityType, in id order.
func (ts *TestServer) Records(entityType string) []map[string]any {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	out := make([]map[string]any, 0, len(ts.records[entityType]))
	for _, rec := range ts.records[entityType] {
		out = append(out, copyRecord(rec))
	}
	return out
}

// Searches returns the search calls received so far.
func (ts *TestServer) Searches() []Search {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([]Search(nil), ts.searches...)
}

// Batches returns the batch calls received so far.
func (ts *TestServer) Batches() [][]repository.BatchRequest {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([][]repository.BatchRequest(nil), ts.batches...)
}

func (ts *TestServer) schemaLocked(entityType string) map[string]repository.FieldSchema {
	schema, ok := ts.schemas[entityType]
	if !ok {
		schema = map[string]repository.FieldSchema{
			"id": {Name: "id", DataType: "number", DisplayName: "Id"},
		}
		ts.schemas[entityType] = schema
	}
	return schema
}

func (ts *TestServer) addRecordLocked(entityType string, attrs map[string]any) repository.EntityRef {
	ts.nextID++
	schema := ts.schemaLocked(entityType)
	rec := map[string]any{"type": entityType, "id": ts.nextID}
	for k, v := range attrs {
		rec[k] = v
		if _, ok := schema[k]; !ok {
			schema[k] = repository.FieldSchema{Name: k, DataType: "text", DisplayName: k}
		}
	}
	ts.records[entityType] = append(ts.records[entityType], rec)

	name, _ := attrs["name"].(string)
	return repository.EntityRef{Type: entityType, ID: ts.nextID, Name: name}
}

func (ts *TestServer) search(entityType string, filters []any) []map[string]any {
	var out []map[string]any
	for _, rec := range ts.records[entityType] {
		if matchesAll(rec, filters) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i]["id"].(int) < out[j]["id"].(int)
	})
	return out
}

func copyRecord(rec map[string]any) map[string]any {
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

// defaultFieldName mimics ShotGrid: lower snake case with the sg_ prefix.
func defaultFieldName(_ string, displayName string) string {
	return "sg_" + strings.ToLower(strings.ReplaceAll(strings.TrimSpace(displayName), " ", "_"))
}
