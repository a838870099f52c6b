package datapoint

import (
	"context"
	"fmt"
	"strings"

	"github.com/rpggio/datapoints/internal/domain/activity"
	"github.com/rpggio/datapoints/internal/domain/site"
	"github.com/rpggio/datapoints/internal/repository"
)

// NumberType is the data type of every field a data point is written to.
const NumberType = "number"

// FieldDisplayName derives the display name requested for a destination field.
// Every "sg_" is removed because the site re-adds the prefix when naming the field.
func FieldDisplayName(field string) string {
	return strings.ReplaceAll(field, "sg_", "")
}

// PrepareSchema creates every destination field of scope that is missing from
// the entity's schema. A field named differently than requested is a schema mismatch.
func (s *Service) PrepareSchema(ctx context.Context, st *site.Site, scope *site.Scope) error {
	logger := s.logger.With("site", st.URL, "entity", scope.Entity)

	schema, err := st.Handle.ReadSchema(ctx, scope.Entity)
	if err != nil {
		return fmt.Errorf("reading %s schema: %w", scope.Entity, err)
	}
	if schema == nil {
		schema = make(map[string]repository.FieldSchema)
	}

	for _, rule := range scope.Rules {
		field := rule.WriteToField
		if _, ok := schema[field]; ok {
			continue
		}

		displayName := FieldDisplayName(field)
		if s.opts.DryRun {
			logger.Info("dry run: would create field", "field", field, "display_name", displayName)
			schema[field] = repository.FieldSchema{Name: field, DataType: NumberType, DisplayName: displayName}
			continue
		}

		created, err := st.Handle.CreateField(ctx, scope.Entity, NumberType, displayName)
		if err != nil {
			return fmt.Errorf("creating field %s on %s: %w", field, scope.Entity, err)
		}
		if created != field {
			return fmt.Errorf("%w: attempted to create field %s on %s schema, but got %s",
				ErrSchemaMismatch, field, scope.Entity, created)
		}

		schema[created] = repository.FieldSchema{Name: created, DataType: NumberType, DisplayName: displayName}
		logger.Info("created field", "field", created)
		s.metrics.FieldCreated(st.URL, scope.Entity)
		s.record(ctx, st.URL, activity.TypeFieldCreated, fmt.Sprintf("created %s.%s", scope.Entity, created), map[string]any{
			"entity": scope.Entity,
			"field":  created,
		})
	}
	return nil
}
