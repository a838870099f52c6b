package testserver

import (
	"testing"

	"github.com/rpggio/datapoints/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestMatchesAll(t *testing.T) {
	project := repository.EntityRef{Type: "Project", ID: 7, Name: "Alpha"}
	rec := map[string]any{
		"type":           "Shot",
		"id":             3,
		"sg_status_list": "ip",
		"project":        project,
		"sg_cut_in":      1001,
	}

	tests := []struct {
		name    string
		filters []any
		want    bool
	}{
		{"no filters", nil, true},
		{"is", []any{[]any{"sg_status_list", "is", "ip"}}, true},
		{"is mismatch", []any{[]any{"sg_status_list", "is", "fin"}}, false},
		{"is_not", []any{[]any{"sg_status_list", "is_not", "fin"}}, true},
		{"json project link", []any{[]any{"project", "is", map[string]any{"type": "Project", "id": 7.0}}}, true},
		{"other project", []any{[]any{"project", "is", map[string]any{"type": "Project", "id": 8.0}}}, false},
		{"in", []any{[]any{"sg_status_list", "in", []any{"wtg", "ip"}}}, true},
		{"not_in", []any{[]any{"sg_status_list", "not_in", []any{"wtg", "ip"}}}, false},
		{"greater_than json number", []any{[]any{"sg_cut_in", "greater_than", 1000.0}}, true},
		{"less_than", []any{[]any{"sg_cut_in", "less_than", 1000.0}}, false},
		{"missing field is", []any{[]any{"description", "is", nil}}, true},
		{"unknown operator", []any{[]any{"sg_status_list", "starts_with", "i"}}, false},
		{"malformed clause", []any{[]any{"sg_status_list", "is"}}, false},
		{"any group", []any{map[string]any{
			"filter_operator": "any",
			"filters": []any{
				[]any{"sg_status_list", "is", "fin"},
				[]any{"sg_status_list", "is", "ip"},
			},
		}}, true},
		{"all group", []any{map[string]any{
			"filter_operator": "all",
			"filters": []any{
				[]any{"sg_status_list", "is", "fin"},
				[]any{"sg_status_list", "is", "ip"},
			},
		}}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, matchesAll(rec, tc.filters))
		})
	}
}

func TestDefaultFieldName(t *testing.T) {
	require.Equal(t, "sg_active_users", defaultFieldName("CustomEntity01", "active_users"))
	require.Equal(t, "sg_shots_in_progress", defaultFieldName("CustomEntity01", "Shots In Progress"))
}
