package ring

import (
	"github.com/google/btree"

	"github.com/quorumkv/placement/token"
)

// Ring is a snapshot of the token ring: the sorted token -> address
// assignment, a version counter bumped on every membership mutation, and the
// set of nodes currently being replaced.
//
// A Ring is owned by a single logical execution context. It is mutated by
// membership logic and read by the placement code; there is no internal
// locking. The version counter is what lets the placement layer's endpoint
// cache detect that the snapshot has moved underneath it.
type Ring struct {
	byToken   *btree.BTreeG[entry]
	version   uint64
	replacing map[string]string // address being replaced -> replacement address
}

// entry is one token assignment. Ordering is by token only: each token has
// exactly one owner.
type entry struct {
	tok  token.Token
	addr string
}

func lessEntry(a, b entry) bool { return a.tok < b.tok }

func New() *Ring {
	return &Ring{
		byToken:   btree.NewG(8, lessEntry),
		replacing: make(map[string]string),
	}
}

// Version returns the ring version, incremented on every mutation.
func (r *Ring) Version() uint64 { return r.version }

// TokenCount returns the number of tokens in the ring.
func (r *Ring) TokenCount() int { return r.byToken.Len() }

// Empty reports whether the ring has no tokens.
func (r *Ring) Empty() bool { return r.byToken.Len() == 0 }

// UpdateNormalTokens assigns tokens to addr, overwriting any previous owner
// of those tokens.
func (r *Ring) UpdateNormalTokens(tokens []token.Token, addr string) {
	for _, t := range tokens {
		r.byToken.ReplaceOrInsert(entry{tok: t, addr: addr})
	}
	r.version++
}

// RemoveEndpoint removes every token owned by addr.
func (r *Ring) RemoveEndpoint(addr string) {
	var owned []entry
	r.byToken.Ascend(func(e entry) bool {
		if e.addr == addr {
			owned = append(owned, e)
		}
		return true
	})
	for _, e := range owned {
		r.byToken.Delete(e)
	}
	r.version++
}

// AddReplacingEndpoint marks existing as being replaced by replacement.
func (r *Ring) AddReplacingEndpoint(existing, replacement string) {
	r.replacing[existing] = replacement
	r.version++
}

// RemoveReplacingEndpoint clears the replacement mark for existing.
func (r *Ring) RemoveReplacingEndpoint(existing string) {
	delete(r.replacing, existing)
	r.version++
}

// IsAnyNodeBeingReplaced reports whether any replacement is in progress.
func (r *Ring) IsAnyNodeBeingReplaced() bool { return len(r.replacing) > 0 }

// IsBeingReplaced reports whether addr is currently being replaced.
func (r *Ring) IsBeingReplaced(addr string) bool {
	_, ok := r.replacing[addr]
	return ok
}

// ReplacementFor returns the replacement address for a node being replaced.
func (r *Ring) ReplacementFor(addr string) (string, bool) {
	rep, ok := r.replacing[addr]
	return rep, ok
}

// SortedTokens returns the ring's tokens in ascending order.
func (r *Ring) SortedTokens() []token.Token {
	out := make([]token.Token, 0, r.byToken.Len())
	r.byToken.Ascend(func(e entry) bool {
		out = append(out, e.tok)
		return true
	})
	return out
}

// EndpointFor returns the owner of an exact token.
func (r *Ring) EndpointFor(t token.Token) (string, bool) {
	e, ok := r.byToken.Get(entry{tok: t})
	if !ok {
		return "", false
	}
	return e.addr, true
}

// Endpoints returns the distinct addresses owning at least one token, in
// ring order of their first token.
func (r *Ring) Endpoints() []string {
	seen := make(map[string]struct{})
	var out []string
	r.byToken.Ascend(func(e entry) bool {
		if _, ok := seen[e.addr]; !ok {
			seen[e.addr] = struct{}{}
			out = append(out, e.addr)
		}
		return true
	})
	return out
}

// FirstToken returns the smallest ring token at or after search, wrapping to
// the smallest token overall when search is past the last one. ok is false
// only for an empty ring.
func (r *Ring) FirstToken(search token.Token) (token.Token, bool) {
	var found entry
	ok := false
	r.byToken.AscendGreaterOrEqual(entry{tok: search}, func(e entry) bool {
		found, ok = e, true
		return false
	})
	if ok {
		return found.tok, true
	}
	min, ok := r.byToken.Min()
	return min.tok, ok
}

// Walk visits ring entries in ascending token order starting at the first
// token at or after start, wrapping around once so every entry is visited
// exactly once. fn returns false to stop early.
func (r *Ring) Walk(start token.Token, fn func(t token.Token, addr string) bool) {
	stopped := false
	r.byToken.AscendGreaterOrEqual(entry{tok: start}, func(e entry) bool {
		if !fn(e.tok, e.addr) {
			stopped = true
			return false
		}
		return true
	})
	if stopped {
		return
	}
	r.byToken.AscendLessThan(entry{tok: start}, func(e entry) bool {
		return fn(e.tok, e.addr)
	})
}

// PrimaryRangesFor returns the range ending at t and starting after t's
// predecessor token, unwrapped into two pieces when it crosses the ring
// edge. A single-token ring yields the whole space as (-inf, t], (t, +inf).
func (r *Ring) PrimaryRangesFor(t token.Token) []token.Range {
	prev, ok := r.predecessor(t)
	if !ok {
		return nil
	}
	return token.InsertUnwrapped(nil, prev, t)
}

// predecessor returns the largest token strictly before t, wrapping to the
// ring's largest token.
func (r *Ring) predecessor(t token.Token) (token.Token, bool) {
	var found entry
	ok := false
	r.byToken.DescendLessOrEqual(entry{tok: t}, func(e entry) bool {
		if e.tok == t {
			return true
		}
		found, ok = e, true
		return false
	})
	if ok {
		return found.tok, true
	}
	max, ok := r.byToken.Max()
	return max.tok, ok
}

// CloneOnlyTokenMap returns a ring sharing no mutable state with the
// receiver, carrying only the token assignments. Version and replacement
// bookkeeping start fresh: the clone exists to simulate topology changes,
// not to serve lookups. The underlying tree is copy-on-write, so the clone
// is cheap until one side mutates.
func (r *Ring) CloneOnlyTokenMap() *Ring {
	return &Ring{
		byToken:   r.byToken.Clone(),
		replacing: make(map[string]string),
	}
}
