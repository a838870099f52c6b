package testserver

import (
	"fmt"
	"reflect"

	"github.com/rpggio/datapoints/internal/repository"
)

// matchesAll reports whether rec satisfies every filter. Filters are either
// [field, operator, value] clauses or {"filter_operator", "filters"} groups.
func matchesAll(rec map[string]any, filters []any) bool {
	for _, f := range filters {
		if !matches(rec, f) {
			return false
		}
	}
	return true
}

func matchesAny(rec map[string]any, filters []any) bool {
	for _, f := range filters {
		if matches(rec, f) {
			return true
		}
	}
	return false
}

func matches(rec map[string]any, filter any) bool {
	switch f := filter.(type) {
	case []any:
		if len(f) != 3 {
			return false
		}
		field, _ := f[0].(string)
		op, _ := f[1].(string)
		return matchClause(rec[field], op, f[2])
	case map[string]any:
		nested, _ := f["filters"].([]any)
		switch f["filter_operator"] {
		case "any", "or":
			return matchesAny(rec, nested)
		default:
			return matchesAll(rec, nested)
		}
	}
	return false
}

func matchClause(actual any, op string, value any) bool {
	switch op {
	case "is":
		return equal(actual, value)
	case "is_not":
		return !equal(actual, value)
	case "in":
		return contains(value, actual)
	case "not_in":
		return !contains(value, actual)
	case "greater_than":
		a, okA := toFloat(actual)
		b, okB := toFloat(value)
		return okA && okB && a > b
	case "less_than":
		a, okA := toFloat(actual)
		b, okB := toFloat(value)
		return okA && okB && a < b
	}
	return false
}

func contains(list, actual any) bool {
	items, ok := list.([]any)
	if !ok {
		return false
	}
	for _, item := range items {
		if equal(actual, item) {
			return true
		}
	}
	return false
}

func equal(a, b any) bool {
	return reflect.DeepEqual(normalize(a), normalize(b))
}

// normalize makes stored Go values comparable with JSON-decoded ones.
func normalize(v any) any {
	if f, ok := toFloat(v); ok {
		return f
	}
	switch x := v.(type) {
	case repository.EntityRef:
		return fmt.Sprintf("%s#%d", x.Type, x.ID)
	case map[string]any:
		t, okT := x["type"].(string)
		id, okID := toFloat(x["id"])
		if okT && okID {
			return fmt.Sprintf("%s#%d", t, int(id))
		}
	}
	return v
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		return x, true
	case float32:
		return float64(x), true
	}
	return 0, false
}
