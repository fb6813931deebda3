package token

// Range is a half-open interval (Start, End] of the token space. Either bound
// may be absent: a range covering the ring's wrap point is stored as the two
// pieces (-inf, end] and (start, +inf) instead of a single wrapped range, so
// that a collection of ranges can stay sorted by start bound.
//
// Range is a comparable value type and can be used as a map key.
type Range struct {
	Start    Token // exclusive, meaningful only when HasStart
	End      Token // inclusive, meaningful only when HasEnd
	HasStart bool
	HasEnd   bool
}

// NewRange returns the bounded range (start, end].
func NewRange(start, end Token) Range {
	return Range{Start: start, End: end, HasStart: true, HasEnd: true}
}

// UpTo returns the unbounded range (-inf, end].
func UpTo(end Token) Range {
	return Range{End: end, HasEnd: true}
}

// From returns the unbounded range (start, +inf).
func From(start Token) Range {
	return Range{Start: start, HasStart: true}
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t Token) bool {
	if r.HasStart && t <= r.Start {
		return false
	}
	if r.HasEnd && t > r.End {
		return false
	}
	return true
}

func (r Range) String() string {
	s := "(-inf, "
	if r.HasStart {
		s = "(" + r.Start.String() + ", "
	}
	if r.HasEnd {
		return s + r.End.String() + "]"
	}
	return s + "+inf)"
}

// InsertUnwrapped appends the range (prev, tok] to a start-sorted collection
// built by a single clockwise traversal of the ring.
//
// When prev < tok the range is bounded and belongs at the end, except that a
// wrapped range emitted earlier sits there as the trailing (a, +inf) piece;
// in that case the new range goes one position before it. When prev >= tok
// the range crosses the wrap point and is split into (-inf, tok] at the front
// and (prev, +inf) at the back. A traversal crosses the wrap point at most
// once, so the split case can fire at most once per collection.
func InsertUnwrapped(ranges []Range, prev, tok Token) []Range {
	if prev < tok {
		r := NewRange(prev, tok)
		if n := len(ranges); n > 0 && !ranges[n-1].HasEnd {
			return append(ranges[:n-1], r, ranges[n-1])
		}
		return append(ranges, r)
	}
	out := make([]Range, 0, len(ranges)+2)
	out = append(out, UpTo(tok))
	out = append(out, ranges...)
	out = append(out, From(prev))
	return out
}
