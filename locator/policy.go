package locator

import (
	"github.com/quorumkv/placement/ring"
	"github.com/quorumkv/placement/token"
	"github.com/quorumkv/placement/topology"
)

// Policy computes the natural endpoints of a token: the ordered list of
// nodes replicating it, primary first. Implementations must be deterministic
// and side-effect-free for a given ring snapshot.
//
// AllowReplacedNodeRemoval reports whether the policy's output may have
// nodes being replaced filtered out of it. A policy whose output has no
// pending counterpart (LocalStrategy always returns the local node, which
// never shows up in pending endpoints) must return false here, or reads
// through it would lose their only endpoint during a replacement.
type Policy interface {
	Name() string
	CalculateNaturalEndpoints(t token.Token, r *ring.Ring) ([]string, error)

	// RecognizedOptions returns the option keys the policy accepts, or nil
	// when any key is accepted (the policy validates keys itself).
	RecognizedOptions() []string
	AllowReplacedNodeRemoval() bool
}

// Well-known policy names, used as registry keys.
const (
	SimpleStrategyName          = "SimpleStrategy"
	NetworkTopologyStrategyName = "NetworkTopologyStrategy"
	LocalStrategyName           = "LocalStrategy"
)

// simpleStrategy replicates each token onto the first rf distinct nodes
// found walking the ring clockwise from the token's bucket.
type simpleStrategy struct {
	rf int
}

// NewSimpleStrategy builds a SimpleStrategy policy. The single recognized
// option is replication_factor, required.
func NewSimpleStrategy(cfg Config) (Policy, error) {
	rf, ok := cfg.Options["replication_factor"]
	if !ok {
		return nil, configErrorf(cfg.Keyspace, SimpleStrategyName,
			"SimpleStrategy requires a replication_factor option for keyspace %s", cfg.Keyspace)
	}
	n, err := parseReplicationFactor(cfg.Keyspace, SimpleStrategyName, rf)
	if err != nil {
		return nil, err
	}
	return &simpleStrategy{rf: n}, nil
}

func (p *simpleStrategy) Name() string { return SimpleStrategyName }

func (p *simpleStrategy) RecognizedOptions() []string { return []string{"replication_factor"} }

func (p *simpleStrategy) AllowReplacedNodeRemoval() bool { return true }

func (p *simpleStrategy) CalculateNaturalEndpoints(t token.Token, r *ring.Ring) ([]string, error) {
	if r.Empty() {
		return nil, ErrEmptyRing
	}
	if p.rf == 0 {
		return nil, nil
	}
	eps := make([]string, 0, p.rf)
	seen := make(map[string]struct{}, p.rf)
	r.Walk(t, func(_ token.Token, addr string) bool {
		if _, ok := seen[addr]; !ok {
			seen[addr] = struct{}{}
			eps = append(eps, addr)
		}
		return len(eps) < p.rf
	})
	// fewer distinct nodes than rf: placement degrades to all of them
	return eps, nil
}

// networkTopologyStrategy replicates each token with a per-datacenter
// replication factor: the clockwise walk keeps a node when its datacenter
// still needs replicas. Result order is ring-walk order.
type networkTopologyStrategy struct {
	topo *topology.Topology
	rf   map[string]int
}

// NewNetworkTopologyStrategy builds a NetworkTopologyStrategy policy. Every
// option key is taken as a datacenter name mapped to that datacenter's
// replication factor; unknown datacenters are rejected.
func NewNetworkTopologyStrategy(cfg Config) (Policy, error) {
	if cfg.Topology == nil {
		return nil, configErrorf(cfg.Keyspace, NetworkTopologyStrategyName,
			"NetworkTopologyStrategy requires a topology for keyspace %s", cfg.Keyspace)
	}
	rf := make(map[string]int, len(cfg.Options))
	for dc, val := range cfg.Options {
		if !cfg.Topology.HasDatacenter(dc) {
			return nil, configErrorf(cfg.Keyspace, NetworkTopologyStrategyName,
				"Unrecognized datacenter {%s} passed to %s for keyspace %s",
				dc, NetworkTopologyStrategyName, cfg.Keyspace)
		}
		n, err := parseReplicationFactor(cfg.Keyspace, NetworkTopologyStrategyName, val)
		if err != nil {
			return nil, err
		}
		rf[dc] = n
	}
	return &networkTopologyStrategy{topo: cfg.Topology, rf: rf}, nil
}

func (p *networkTopologyStrategy) Name() string { return NetworkTopologyStrategyName }

func (p *networkTopologyStrategy) RecognizedOptions() []string { return nil }

func (p *networkTopologyStrategy) AllowReplacedNodeRemoval() bool { return true }

func (p *networkTopologyStrategy) CalculateNaturalEndpoints(t token.Token, r *ring.Ring) ([]string, error) {
	if r.Empty() {
		return nil, ErrEmptyRing
	}
	remaining := 0
	for _, n := range p.rf {
		remaining += n
	}
	if remaining == 0 {
		return nil, nil
	}
	var eps []string
	seen := make(map[string]struct{})
	taken := make(map[string]int, len(p.rf))
	r.Walk(t, func(_ token.Token, addr string) bool {
		if _, ok := seen[addr]; ok {
			return true
		}
		seen[addr] = struct{}{}
		dc, ok := p.topo.DatacenterOf(addr)
		if !ok || taken[dc] >= p.rf[dc] {
			return true
		}
		taken[dc]++
		remaining--
		eps = append(eps, addr)
		return remaining > 0
	})
	return eps, nil
}

// localStrategy always places data on the configured local node, regardless
// of token. Used for node-local system data that must never move.
type localStrategy struct {
	local string
}

// NewLocalStrategy builds a LocalStrategy policy. It recognizes no options
// and requires Config.LocalAddress.
func NewLocalStrategy(cfg Config) (Policy, error) {
	if cfg.LocalAddress == "" {
		return nil, configErrorf(cfg.Keyspace, LocalStrategyName,
			"LocalStrategy requires a local address for keyspace %s", cfg.Keyspace)
	}
	return &localStrategy{local: cfg.LocalAddress}, nil
}

func (p *localStrategy) Name() string { return LocalStrategyName }

func (p *localStrategy) RecognizedOptions() []string { return []string{} }

func (p *localStrategy) AllowReplacedNodeRemoval() bool { return false }

func (p *localStrategy) CalculateNaturalEndpoints(token.Token, *ring.Ring) ([]string, error) {
	return []string{p.local}, nil
}
