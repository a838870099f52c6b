package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counts(t *testing.T) {
	c := New()

	c.CountQuery("https://alpha.example.com", "Shot")
	c.CountQuery("https://alpha.example.com", "Shot")
	c.CountQuery("https://alpha.example.com", "HumanUser")
	c.FieldCreated("https://alpha.example.com", "CustomEntity02")
	c.PointsCreated("https://alpha.example.com", ScopeProject, 3)
	c.PointsCreated("https://alpha.example.com", ScopeGlobal, 1)
	c.PointsCreated("https://alpha.example.com", ScopeGlobal, 0)
	c.SiteSkipped()
	c.SiteFailed("https://beta.example.com")
	c.RunFinished(1500*time.Millisecond, false)

	require.Equal(t, 2.0, testutil.ToFloat64(c.countQueries.WithLabelValues("https://alpha.example.com", "Shot")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.countQueries.WithLabelValues("https://alpha.example.com", "HumanUser")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.fieldsCreated.WithLabelValues("https://alpha.example.com", "CustomEntity02")))
	require.Equal(t, 3.0, testutil.ToFloat64(c.pointsCreated.WithLabelValues("https://alpha.example.com", ScopeProject)))
	require.Equal(t, 1.0, testutil.ToFloat64(c.pointsCreated.WithLabelValues("https://alpha.example.com", ScopeGlobal)))
	require.Equal(t, 1.0, testutil.ToFloat64(c.sitesSkipped))
	require.Equal(t, 1.0, testutil.ToFloat64(c.sitesFailed.WithLabelValues("https://beta.example.com")))
	require.Equal(t, 1.5, testutil.ToFloat64(c.runDuration))
	require.Equal(t, 0.0, testutil.ToFloat64(c.lastRunSuccess))
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	require.NotPanics(t, func() {
		c.CountQuery("s", "Shot")
		c.FieldCreated("s", "CustomEntity02")
		c.PointsCreated("s", ScopeGlobal, 1)
		c.SiteSkipped()
		c.SiteFailed("s")
		c.RunFinished(time.Second, true)
	})
	require.NoError(t, c.Push(context.Background(), "http://unused"))
}

func TestCollector_Push(t *testing.T) {
	var method, path, body string
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(gateway.Close)

	c := New()
	c.PointsCreated("https://alpha.example.com", ScopeGlobal, 1)
	c.RunFinished(time.Second, true)

	require.NoError(t, c.Push(context.Background(), gateway.URL))
	require.Equal(t, http.MethodPut, method)
	require.True(t, strings.HasPrefix(path, "/metrics/job/"+JobName), path)
	require.NotEmpty(t, body)
}

func TestCollector_PushWithoutURL(t *testing.T) {
	c := New()
	require.NoError(t, c.Push(context.Background(), ""))
}

func TestCollector_PushFailure(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(gateway.Close)

	c := New()
	c.RunFinished(time.Second, true)
	err := c.Push(context.Background(), gateway.URL)
	require.ErrorContains(t, err, "pushing metrics")
}
