package locator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quorumkv/placement/topology"
)

func TestUnknownStrategyName(t *testing.T) {
	_, err := NewStrategy(DefaultRegistry(), "MirrorStrategy", nil, Config{Keyspace: "events"})

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "events", cfgErr.Keyspace)
	require.Contains(t, cfgErr.Message, "MirrorStrategy")
}

func TestUnrecognizedOptionKey(t *testing.T) {
	err := ValidateStrategy(DefaultRegistry(), SimpleStrategyName, Config{
		Keyspace: "events",
		Options: map[string]string{
			"replication_factor": "3",
			"replication_fact":   "3",
		},
	})

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	require.Contains(t, cfgErr.Message, "{replication_fact}")
	require.Contains(t, cfgErr.Message, SimpleStrategyName)
	require.Contains(t, cfgErr.Message, "events")
}

func TestSimpleStrategyRequiresReplicationFactor(t *testing.T) {
	err := ValidateStrategy(DefaultRegistry(), SimpleStrategyName, Config{Keyspace: "events"})

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestLocalStrategyRejectsAnyOption(t *testing.T) {
	err := ValidateStrategy(DefaultRegistry(), LocalStrategyName, Config{
		Keyspace:     "system",
		LocalAddress: "n1",
		Options:      map[string]string{"replication_factor": "1"},
	})

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	require.Contains(t, cfgErr.Message, "{replication_factor}")
}

func TestNetworkTopologyStrategyUnknownDatacenter(t *testing.T) {
	topo := topology.New()
	topo.AddEndpoint("a1", "dc1", "r1")

	err := ValidateStrategy(DefaultRegistry(), NetworkTopologyStrategyName, Config{
		Keyspace: "events",
		Options:  map[string]string{"dc1": "1", "dc9": "2"},
		Topology: topo,
	})

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	require.Contains(t, cfgErr.Message, "{dc9}")
}

func TestValidateReplicationFactor(t *testing.T) {
	require.NoError(t, ValidateReplicationFactor("3"))
	require.NoError(t, ValidateReplicationFactor("0"))
	require.NoError(t, ValidateReplicationFactor("007"))

	for _, rf := range []string{"", "-1", "abc", "3.5", " 3", "3 "} {
		err := ValidateReplicationFactor(rf)
		var cfgErr *ConfigurationError
		require.ErrorAs(t, err, &cfgErr, "rf %q", rf)
	}
}

func TestDefaultRegistryNames(t *testing.T) {
	require.Equal(t, []string{
		LocalStrategyName,
		NetworkTopologyStrategyName,
		SimpleStrategyName,
	}, DefaultRegistry().Names())
}
