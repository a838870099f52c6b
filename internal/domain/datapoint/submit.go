package datapoint

import (
	"context"
	"fmt"

	"github.com/rpggio/datapoints/internal/domain/activity"
	"github.com/rpggio/datapoints/internal/domain/site"
	"github.com/rpggio/datapoints/internal/metrics"
	"github.com/rpggio/datapoints/internal/repository"
)

// Submit creates every pending data point of a site in one batch call and
// returns how many were created. An empty batch is logged, not sent.
func (s *Service) Submit(ctx context.Context, st *site.Site, batch Batch) (int, error) {
	logger := s.logger.With("site", st.URL)

	if len(batch) == 0 {
		logger.Warn("no data points to create")
		return 0, nil
	}

	if s.opts.DryRun {
		for _, req := range batch {
			logger.Info("dry run: would create data point", "entity", req.EntityType, "data", req.Data)
		}
		return 0, nil
	}

	logger.Info("running batch create", "points", len(batch))
	if _, err := st.Handle.Batch(ctx, batch); err != nil {
		return 0, fmt.Errorf("batch create: %w", err)
	}

	var global, perProject int
	projectEntity := st.ProjectEntity()
	for _, req := range batch {
		if projectEntity != "" && req.EntityType == projectEntity {
			perProject++
			logger.Info("created data point on project", "code", s.opts.Code, "project", projectName(req))
			continue
		}
		global++
		logger.Info("created global data point", "code", s.opts.Code)
	}

	s.metrics.PointsCreated(st.URL, metrics.ScopeGlobal, global)
	s.metrics.PointsCreated(st.URL, metrics.ScopeProject, perProject)
	s.record(ctx, st.URL, activity.TypePointsSubmitted, fmt.Sprintf("created %d data points", len(batch)), map[string]any{
		"code":        s.opts.Code,
		"global":      global,
		"per_project": perProject,
	})
	return len(batch), nil
}

func projectName(req repository.BatchRequest) string {
	switch p := req.Data["project"].(type) {
	case repository.EntityRef:
		return p.Name
	case map[string]any:
		name, _ := p["name"].(string)
		return name
	}
	return ""
}
