package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector("distill")

	c.PageProcessed(OutcomeOK)
	c.PageProcessed(OutcomeOK)
	c.PageProcessed(OutcomeDefault)
	c.ImageChecked(ImageRejected)
	c.ObserveResolve(150 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.pagesTotal.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.pagesTotal.WithLabelValues(OutcomeDefault)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.imageChecksTotal.WithLabelValues(ImageRejected)))
	assert.Equal(t, 1, testutil.CollectAndCount(c.resolveDuration))
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector

	assert.NotPanics(t, func() {
		c.PageProcessed(OutcomeFailed)
		c.ImageChecked(ImageError)
		c.ObserveResolve(time.Second)
	})
	assert.Nil(t, c.Registry())
}

func TestHandlerExposesPipelineMetrics(t *testing.T) {
	c := NewCollector("distill")
	c.PageProcessed(OutcomeFailed)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `distill_pages_total{outcome="failed"} 1`)
}
