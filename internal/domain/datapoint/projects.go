package datapoint

import (
	"context"
	"fmt"
	"sort"

	"github.com/rpggio/datapoints/internal/domain/site"
	"github.com/rpggio/datapoints/internal/repository"
)

// ProjectEntity is the built-in project entity type.
const ProjectEntity = "Project"

// Template and demo projects that never get per-project data points.
var excludedProjects = nameSet(
	"Template Project",
	"Motion Capture Template",
	"Motion Capture Template",
	"Demo: Animation",
	"Demo: Game",
	"Game Template",
	"Film Template",
	"TV Series Template",
	"Demo: Animation with Cuts",
)

func nameSet(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// ExcludedProjectNames returns the excluded project names, sorted and without duplicates.
func ExcludedProjectNames() []string {
	names := make([]string, 0, len(excludedProjects))
	for n := range excludedProjects {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// IsExcludedProject reports whether a project of that name is left out of per-project tracking.
func IsExcludedProject(name string) bool {
	_, ok := excludedProjects[name]
	return ok
}

// Projects lists the site's projects that receive per-project data points.
func (s *Service) Projects(ctx context.Context, st *site.Site) ([]repository.EntityRef, error) {
	filters := []any{
		[]any{"name", "not_in", ExcludedProjectNames()},
	}
	entities, err := st.Handle.Find(ctx, ProjectEntity, filters, []string{"name"})
	if err != nil {
		return nil, fmt.Errorf("finding projects: %w", err)
	}

	projects := make([]repository.EntityRef, 0, len(entities))
	for _, e := range entities {
		if IsExcludedProject(e.Name()) {
			continue
		}
		projects = append(projects, e.Ref())
	}
	return projects, nil
}
