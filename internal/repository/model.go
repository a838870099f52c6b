package repository

// RequestCreate is the batch request type for record creation.
const RequestCreate = "create"

// Entity is a record returned by a site query.
type Entity struct {
	Type       string         `json:"type"`
	ID         int            `json:"id"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Name returns the entity's name attribute, if it was requested.
func (e Entity) Name() string {
	name, _ := e.Attributes["name"].(string)
	return name
}

// Ref returns a link to the entity suitable for filters and record data.
func (e Entity) Ref() EntityRef {
	return EntityRef{Type: e.Type, ID: e.ID, Name: e.Name()}
}

// EntityRef links to another record, e.g. {"type": "Project", "id": 12}.
type EntityRef struct {
	Type string `json:"type"`
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
}

// FieldSchema describes one field on an entity type.
type FieldSchema struct {
	Name        string `json:"name"`
	DataType    string `json:"data_type"`
	DisplayName string `json:"display_name,omitempty"`
}

// BatchRequest is one operation inside a batch call.
type BatchRequest struct {
	RequestType string         `json:"request_type"`
	EntityType  string         `json:"entity"`
	Data        map[string]any `json:"data"`
}
