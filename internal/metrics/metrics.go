// Package metrics counts what a reporting run did and optionally pushes the
// result to a Prometheus Pushgateway, since the job exits before any scrape.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// JobName is the Pushgateway job label for reporting runs.
const JobName = "datapoints"

// Scope labels for created data points.
const (
	ScopeGlobal  = "global"
	ScopeProject = "project"
)

// Collector holds the metrics of a single run. A nil *Collector ignores all observations.
type Collector struct {
	registry *prometheus.Registry

	countQueries   *prometheus.CounterVec
	fieldsCreated  *prometheus.CounterVec
	pointsCreated  *prometheus.CounterVec
	sitesSkipped   prometheus.Counter
	sitesFailed    *prometheus.CounterVec
	runDuration    prometheus.Gauge
	lastRunSuccess prometheus.Gauge
}

// New creates a collector backed by its own registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		countQueries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datapoints_count_queries_total",
				Help: "Total number of count queries issued against a site",
			},
			[]string{"site", "entity_type"},
		),
		fieldsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datapoints_fields_created_total",
				Help: "Total number of number fields created on data point entities",
			},
			[]string{"site", "entity_type"},
		),
		pointsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datapoints_points_created_total",
				Help: "Total number of data points created by batch calls",
			},
			[]string{"site", "scope"},
		),
		sitesSkipped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "datapoints_sites_skipped_total",
				Help: "Total number of sites skipped because no data point entity is configured",
			},
		),
		sitesFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datapoints_sites_failed_total",
				Help: "Total number of sites whose processing failed",
			},
			[]string{"site"},
		),
		runDuration: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "datapoints_run_duration_seconds",
				Help: "Wall clock duration of the last run",
			},
		),
		lastRunSuccess: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "datapoints_last_run_success",
				Help: "1 if the last run finished without failed sites, 0 otherwise",
			},
		),
	}
}

// Registry returns the registry holding the run's metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CountQuery counts one count query against a site.
func (c *Collector) CountQuery(site, entityType string) {
	if c == nil {
		return
	}
	c.countQueries.WithLabelValues(site, entityType).Inc()
}

// FieldCreated counts a field created on a data point entity.
func (c *Collector) FieldCreated(site, entityType string) {
	if c == nil {
		return
	}
	c.fieldsCreated.WithLabelValues(site, entityType).Inc()
}

// PointsCreated adds n data points created in scope; zero is ignored.
func (c *Collector) PointsCreated(site, scope string, n int) {
	if c == nil || n == 0 {
		return
	}
	c.pointsCreated.WithLabelValues(site, scope).Add(float64(n))
}

// SiteSkipped counts a site with no data point entity configured.
func (c *Collector) SiteSkipped() {
	if c == nil {
		return
	}
	c.sitesSkipped.Inc()
}

// SiteFailed counts a site whose processing failed.
func (c *Collector) SiteFailed(site string) {
	if c == nil {
		return
	}
	c.sitesFailed.WithLabelValues(site).Inc()
}

// RunFinished records the run's duration and outcome.
func (c *Collector) RunFinished(d time.Duration, success bool) {
	if c == nil {
		return
	}
	c.runDuration.Set(d.Seconds())
	if success {
		c.lastRunSuccess.Set(1)
	} else {
		c.lastRunSuccess.Set(0)
	}
}

// Push replaces the job's metrics on the Pushgateway at url.
func (c *Collector) Push(ctx context.Context, url string) error {
	if c == nil || url == "" {
		return nil
	}
	if err := push.New(url, JobName).Gatherer(c.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("pushing metrics to %s: %w", url, err)
	}
	return nil
}
