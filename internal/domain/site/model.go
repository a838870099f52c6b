package site

import (
	"github.com/rpggio/datapoints/internal/config"
	"github.com/rpggio/datapoints/internal/repository"
)

// Scope is one data point entity and the rules that fill it.
type Scope struct {
	Entity string
	Rules  []config.TrackingRule
}

// Site is a connected ShotGrid site. It holds no credentials.
type Site struct {
	URL        string
	Handle     repository.SiteRepository
	Global     *Scope
	PerProject *Scope
}

// HasScope reports whether any data point entity is configured for the site.
func (s *Site) HasScope() bool {
	return s.Global != nil || s.PerProject != nil
}

// ProjectEntity returns the per-project data point entity, or "" when not tracked.
func (s *Site) ProjectEntity() string {
	if s.PerProject == nil {
		return ""
	}
	return s.PerProject.Entity
}

func scopesFromConfig(cfg config.SiteConfig) (global, perProject *Scope) {
	if cfg.GlobalEntity != "" {
		global = &Scope{Entity: cfg.GlobalEntity, Rules: cfg.TrackGlobally}
	}
	if cfg.ProjectEntity != "" {
		perProject = &Scope{Entity: cfg.ProjectEntity, Rules: cfg.TrackPerProject}
	}
	return global, perProject
}
