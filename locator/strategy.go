package locator

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/quorumkv/placement/ring"
	"github.com/quorumkv/placement/token"
	"github.com/quorumkv/placement/topology"
)

// Strategy answers placement questions for one keyspace: which nodes
// replicate a token, and which token ranges a node owns. It layers a
// version-gated endpoint cache and the range algebra on top of a placement
// Policy.
//
// A Strategy is single-owner: it is driven by the same execution context
// that mutates its ring, and has no internal locking. The only externally
// mutated state it reads is the ring version, which is re-checked on every
// cache-touching call.
type Strategy struct {
	keyspace string
	policy   Policy
	ring     *ring.Ring
	topo     *topology.Topology
	logger   *zap.Logger

	cached       map[token.Token][]string
	cacheVersion uint64
	cacheHits    uint64
}

// Keyspace returns the keyspace this strategy serves.
func (s *Strategy) Keyspace() string { return s.keyspace }

// PolicyName returns the name of the underlying placement policy.
func (s *Strategy) PolicyName() string { return s.policy.Name() }

// CacheHits returns the number of endpoint lookups served from the cache.
// Monotonically increasing; exposed for diagnostics only.
func (s *Strategy) CacheHits() uint64 { return s.cacheHits }

// NaturalEndpoints returns the ordered replica list for search, primary
// first. Results are memoized per ring bucket; the whole cache is discarded
// whenever the ring version moves. Callers must not mutate the returned
// slice.
func (s *Strategy) NaturalEndpoints(search token.Token) ([]string, error) {
	key, ok := s.ring.FirstToken(search)
	if !ok {
		return nil, ErrEmptyRing
	}
	cache := s.cachedEndpoints()
	if eps, ok := cache[key]; ok {
		s.cacheHits++
		return eps, nil
	}
	eps, err := s.policy.CalculateNaturalEndpoints(search, s.ring)
	if err != nil {
		return nil, err
	}
	if len(eps) == 0 {
		return nil, ErrNoEndpoints
	}
	cache[key] = eps
	return eps, nil
}

// cachedEndpoints returns the endpoint cache, clearing it first if the ring
// version has moved since the last call. Invalidation is wholesale:
// membership changes are rare and the cache rebuilds itself on misses.
func (s *Strategy) cachedEndpoints() map[token.Token][]string {
	if s.cached == nil || s.cacheVersion != s.ring.Version() {
		s.cached = make(map[token.Token][]string)
		s.cacheVersion = s.ring.Version()
	}
	return s.cached
}

// NaturalEndpointsExcludingReplaced is NaturalEndpoints with nodes currently
// being replaced filtered out, when the policy permits it.
//
// While a replacement is in progress the replacing node takes writes (it
// appears in the ring's pending bookkeeping) but must not count toward
// consistency, since it may still die and go away; filtering the node being
// replaced keeps it from being double-counted. The cached list is never
// mutated: filtering copies.
func (s *Strategy) NaturalEndpointsExcludingReplaced(search token.Token) ([]string, error) {
	eps, err := s.NaturalEndpoints(search)
	if err != nil {
		return nil, err
	}
	if !s.ring.IsAnyNodeBeingReplaced() || !s.policy.AllowReplacedNodeRemoval() {
		return eps, nil
	}
	filtered := make([]string, 0, len(eps))
	for _, ep := range eps {
		if !s.ring.IsBeingReplaced(ep) {
			filtered = append(filtered, ep)
		}
	}
	return filtered, nil
}

// Ranges returns every range for which addr is any replica, in start-sorted
// order with wraparound unwrapped.
func (s *Strategy) Ranges(addr string) ([]token.Range, error) {
	return s.RangesIn(addr, s.ring)
}

// RangesIn is Ranges computed over an explicit ring snapshot. It walks the
// whole ring and calls the policy once per token, skipping the endpoint
// cache: bulk range computation is rare and must work on transient rings.
func (s *Strategy) RangesIn(addr string, rng *ring.Ring) ([]token.Range, error) {
	toks := rng.SortedTokens()
	if len(toks) == 0 {
		return nil, ErrEmptyRing
	}
	var ret []token.Range
	// start just past the wrap point so the first emitted range is the one
	// ending at the smallest token
	prev := toks[len(toks)-1]
	for _, t := range toks {
		eps, err := s.policy.CalculateNaturalEndpoints(t, rng)
		if err != nil {
			return nil, err
		}
		if len(eps) == 0 {
			return nil, ErrNoEndpoints
		}
		for _, ep := range eps {
			if ep == addr {
				ret = token.InsertUnwrapped(ret, prev, t)
				break
			}
		}
		prev = t
	}
	return ret, nil
}

// PrimaryRanges returns the ranges for which addr is the first (primary)
// replica.
func (s *Strategy) PrimaryRanges(addr string) ([]token.Range, error) {
	toks := s.ring.SortedTokens()
	if len(toks) == 0 {
		return nil, ErrEmptyRing
	}
	var ret []token.Range
	prev := toks[len(toks)-1]
	for _, t := range toks {
		eps, err := s.policy.CalculateNaturalEndpoints(t, s.ring)
		if err != nil {
			return nil, err
		}
		if len(eps) == 0 {
			return nil, ErrNoEndpoints
		}
		if eps[0] == addr {
			ret = token.InsertUnwrapped(ret, prev, t)
		}
		prev = t
	}
	return ret, nil
}

// PrimaryRangesWithinDC returns the ranges for which addr is the first
// replica among the nodes of its own datacenter. Unlike PrimaryRanges this
// does not require addr to be the global first replica, only the first one
// within its datacenter's slice of the endpoint list.
func (s *Strategy) PrimaryRangesWithinDC(addr string) ([]token.Range, error) {
	if s.topo == nil {
		return nil, fmt.Errorf("primary ranges within dc for %s: no topology configured", addr)
	}
	dc, ok := s.topo.DatacenterOf(addr)
	if !ok {
		return nil, fmt.Errorf("primary ranges within dc: address %s not in topology", addr)
	}
	localDC := s.topo.Members(dc)
	toks := s.ring.SortedTokens()
	if len(toks) == 0 {
		return nil, ErrEmptyRing
	}
	var ret []token.Range
	prev := toks[len(toks)-1]
	for _, t := range toks {
		eps, err := s.policy.CalculateNaturalEndpoints(t, s.ring)
		if err != nil {
			return nil, err
		}
		if len(eps) == 0 {
			return nil, ErrNoEndpoints
		}
		for _, ep := range eps {
			if _, local := localDC[ep]; local {
				if ep == addr {
					ret = token.InsertUnwrapped(ret, prev, t)
				}
				break
			}
		}
		prev = t
	}
	return ret, nil
}

// AddressRanges maps every address in rng to all primary ranges it
// replicates: each token's primary range is attributed to every natural
// endpoint of that token.
func (s *Strategy) AddressRanges(rng *ring.Ring) (map[string][]token.Range, error) {
	toks := rng.SortedTokens()
	if len(toks) == 0 {
		return nil, ErrEmptyRing
	}
	ret := make(map[string][]token.Range)
	for _, t := range toks {
		ranges := rng.PrimaryRangesFor(t)
		eps, err := s.policy.CalculateNaturalEndpoints(t, rng)
		if err != nil {
			return nil, err
		}
		if len(eps) == 0 {
			return nil, ErrNoEndpoints
		}
		s.logger.Debug("placement",
			zap.Stringer("token", t),
			zap.Int("primary_ranges", len(ranges)),
			zap.Strings("endpoints", eps))
		for _, ep := range eps {
			ret[ep] = append(ret[ep], ranges...)
		}
	}
	return ret, nil
}

// RangeAddresses is the reverse of AddressRanges: every primary range in rng
// mapped to its ordered natural endpoint list.
func (s *Strategy) RangeAddresses(rng *ring.Ring) (map[token.Range][]string, error) {
	toks := rng.SortedTokens()
	if len(toks) == 0 {
		return nil, ErrEmptyRing
	}
	ret := make(map[token.Range][]string)
	for _, t := range toks {
		eps, err := s.policy.CalculateNaturalEndpoints(t, rng)
		if err != nil {
			return nil, err
		}
		if len(eps) == 0 {
			return nil, ErrNoEndpoints
		}
		for _, r := range rng.PrimaryRangesFor(t) {
			ret[r] = eps
		}
	}
	return ret, nil
}

// PendingRanges answers which ranges addr would replicate once it joins the
// ring with the given tokens. The computation runs over a throwaway clone of
// the token map: the live ring is never touched, and mutations to it after
// the clone point do not appear in the simulation.
func (s *Strategy) PendingRanges(rng *ring.Ring, pendingTokens []token.Token, addr string) ([]token.Range, error) {
	temp := rng.CloneOnlyTokenMap()
	temp.UpdateNormalTokens(pendingTokens, addr)
	byAddr, err := s.AddressRanges(temp)
	if err != nil {
		return nil, err
	}
	return byAddr[addr], nil
}
