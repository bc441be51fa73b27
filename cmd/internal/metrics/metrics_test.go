package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	t.Parallel()

	m := New()
	m.InvitationGenerated("minimal")
	m.InvitationGenerated("minimal")
	m.InvitationGenerated("luxury")
	m.PersistFailed()
	m.RenderFailed()
	m.ObserveVerification("confirmed")
	m.ObserveVerification("already_confirmed")
	m.ObserveVerification("confirmed")
	m.ObserveRender(12 * time.Millisecond)
	m.ObserveRequest("GET", "2xx")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.generated.WithLabelValues("minimal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.generated.WithLabelValues("luxury")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.persistFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.renderFailures))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.verifications.WithLabelValues("confirmed")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.renderSeconds))
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveVerification("not_found")

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rr.Code)

	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `tcninvite_verifications_total{outcome="not_found"} 1`))
}

func TestMetrics_NilSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.InvitationGenerated("modern")
	m.PersistFailed()
	m.RenderFailed()
	m.ObserveRender(time.Second)
	m.ObserveVerification("confirmed")
	m.ObserveRequest("GET", "2xx")
	assert.Nil(t, m.Registry())

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rr.Code)
}
