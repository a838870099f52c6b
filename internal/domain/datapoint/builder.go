package datapoint

import (
	"context"
	"fmt"

	"github.com/rpggio/datapoints/internal/config"
	"github.com/rpggio/datapoints/internal/domain/site"
	"github.com/rpggio/datapoints/internal/repository"
)

// HumanUserEntity is the entity type whose counts leave out system accounts.
const HumanUserEntity = "HumanUser"

// system accounts every site carries
var excludedUsers = []string{"Shotgun Support", "Template User"}

// only record ids are needed to count
var countFields = []string{"id"}

// RuleFilters returns a fresh filter list for one count: the rule's own
// filters, restricted to project when one is given, plus the system account
// exclusion for HumanUser counts. The rule is never modified.
func RuleFilters(rule config.TrackingRule, project *repository.EntityRef) []any {
	filters := make([]any, 0, len(rule.Filters)+2)
	filters = append(filters, rule.Filters...)
	if project != nil {
		filters = append(filters, []any{"project", "is", *project})
	}
	if rule.EntityType == HumanUserEntity {
		filters = append(filters, []any{"name", "not_in", excludedUsers})
	}
	return filters
}

// BuildPoint counts every rule of scope and returns the create request for one
// data point. project is nil for the global data point.
func (s *Service) BuildPoint(ctx context.Context, st *site.Site, scope *site.Scope, project *repository.EntityRef) (repository.BatchRequest, error) {
	data := map[string]any{"code": s.opts.Code}
	if project != nil {
		data["project"] = *project
	}

	for _, rule := range scope.Rules {
		found, err := st.Handle.Find(ctx, rule.EntityType, RuleFilters(rule, project), countFields)
		if err != nil {
			return repository.BatchRequest{}, fmt.Errorf("counting %s for %s: %w", rule.EntityType, rule.WriteToField, err)
		}
		s.metrics.CountQuery(st.URL, rule.EntityType)

		if prev, ok := data[rule.WriteToField]; ok {
			s.logger.Debug("overwriting data point value",
				"site", st.URL,
				"field", rule.WriteToField,
				"previous", prev,
				"value", len(found),
			)
		}
		data[rule.WriteToField] = len(found)
	}

	return repository.BatchRequest{
		RequestType: repository.RequestCreate,
		EntityType:  scope.Entity,
		Data:        data,
	}, nil
}
