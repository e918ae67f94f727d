package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleCount reads the number of observations of one histogram series.
func sampleCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	m, ok := o.(prometheus.Metric)
	require.True(t, ok)
	var out dto.Metric
	require.NoError(t, m.Write(&out))
	return out.GetHistogram().GetSampleCount()
}

func TestRecordProviderRequest(t *testing.T) {
	successBefore := testutil.ToFloat64(ProviderRequestsTotal.WithLabelValues("test-provider", "success"))
	failureBefore := testutil.ToFloat64(ProviderRequestsTotal.WithLabelValues("test-provider", "failure"))

	RecordProviderRequest("test-provider", 120*time.Millisecond, nil)
	RecordProviderRequest("test-provider", 2*time.Second, errors.New("boom"))
	RecordProviderRequest("test-provider", time.Second, errors.New("boom"))

	assert.Equal(t, successBefore+1, testutil.ToFloat64(ProviderRequestsTotal.WithLabelValues("test-provider", "success")))
	assert.Equal(t, failureBefore+2, testutil.ToFloat64(ProviderRequestsTotal.WithLabelValues("test-provider", "failure")))
}

func TestRecordCacheLookup(t *testing.T) {
	tests := []struct {
		name   string
		hit    bool
		result string
	}{
		{name: "hit", hit: true, result: "hit"},
		{name: "miss", hit: false, result: "miss"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(CacheLookupsTotal.WithLabelValues("test-ns", tt.result))
			RecordCacheLookup("test-ns", tt.hit)
			assert.Equal(t, before+1, testutil.ToFloat64(CacheLookupsTotal.WithLabelValues("test-ns", tt.result)))
		})
	}
}

func TestRecordCollected(t *testing.T) {
	before := testutil.ToFloat64(CollectedRecordsTotal.WithLabelValues("test-collect", "stored"))

	RecordCollected("test-collect", "stored", 5)
	RecordCollected("test-collect", "stored", 0)
	RecordCollected("test-collect", "stored", -1)

	assert.Equal(t, before+5, testutil.ToFloat64(CollectedRecordsTotal.WithLabelValues("test-collect", "stored")))
}

func TestRecordCircuitState(t *testing.T) {
	RecordCircuitState("test-circuit", 2)
	assert.Equal(t, float64(2), testutil.ToFloat64(CircuitBreakerState.WithLabelValues("test-circuit")))

	RecordCircuitState("test-circuit", 0)
	assert.Equal(t, float64(0), testutil.ToFloat64(CircuitBreakerState.WithLabelValues("test-circuit")))
}

func TestRecordStaleRatesServed(t *testing.T) {
	before := testutil.ToFloat64(StaleRatesServedTotal)
	RecordStaleRatesServed()
	assert.Equal(t, before+1, testutil.ToFloat64(StaleRatesServedTotal))
}

func TestUpdateDBConnectionStats(t *testing.T) {
	UpdateDBConnectionStats(3, 5)

	assert.Equal(t, float64(3), testutil.ToFloat64(DBConnectionsActive))
	assert.Equal(t, float64(5), testutil.ToFloat64(DBConnectionsIdle))
}

func TestDurationRecorders(t *testing.T) {
	collectBefore := sampleCount(t, CollectDuration.WithLabelValues("test-weather"))
	queryBefore := sampleCount(t, DBQueryDuration.WithLabelValues("test_read"))
	providerBefore := sampleCount(t, ProviderRequestDuration.WithLabelValues("test-duration"))

	RecordCollectDuration("test-weather", 3*time.Second)
	RecordDBQuery("test_read", 2*time.Millisecond)
	RecordProviderRequest("test-duration", 50*time.Millisecond, nil)

	assert.Equal(t, collectBefore+1, sampleCount(t, CollectDuration.WithLabelValues("test-weather")))
	assert.Equal(t, queryBefore+1, sampleCount(t, DBQueryDuration.WithLabelValues("test_read")))
	assert.Equal(t, providerBefore+1, sampleCount(t, ProviderRequestDuration.WithLabelValues("test-duration")))
}
