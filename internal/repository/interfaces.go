package repository

import "context"

// SiteRepository is the set of remote operations a connected ShotGrid site offers.
type SiteRepository interface {
	ReadSchema(ctx context.Context, entityType string) (map[string]FieldSchema, error)
	CreateField(ctx context.Context, entityType, dataType, displayName string) (string, error)
	Find(ctx context.Context, entityType string, filters []any, fields []string) ([]Entity, error)
	Batch(ctx context.Context, requests []BatchRequest) ([]Entity, error)
}
