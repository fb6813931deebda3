package locator

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollectorReportsCacheHits(t *testing.T) {
	s := newSimpleStrategy(t, newTestRing(t), "2")
	c := NewCollector(s)

	require.Equal(t, 0.0, testutil.ToFloat64(c))

	_, err := s.NaturalEndpoints(5)
	require.NoError(t, err)
	_, err = s.NaturalEndpoints(5)
	require.NoError(t, err)
	_, err = s.NaturalEndpoints(5)
	require.NoError(t, err)

	require.Equal(t, 2.0, testutil.ToFloat64(c))
}

func TestCollectorLabelsPerStrategy(t *testing.T) {
	events := newSimpleStrategy(t, newTestRing(t), "2")
	system, err := NewStrategy(DefaultRegistry(), LocalStrategyName, newTestRing(t), Config{
		Keyspace:     "system",
		LocalAddress: "n1",
	})
	require.NoError(t, err)

	c := NewCollector(events, system)

	expected := `
# HELP locator_endpoint_cache_hits_total Endpoint lookups served from the per-strategy cache.
# TYPE locator_endpoint_cache_hits_total counter
locator_endpoint_cache_hits_total{keyspace="events",strategy="SimpleStrategy"} 0
locator_endpoint_cache_hits_total{keyspace="system",strategy="LocalStrategy"} 0
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected)))
}
