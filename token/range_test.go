package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRangeContainsBounded(t *testing.T) {
	r := NewRange(10, 20)

	require.False(t, r.Contains(10), "start bound is exclusive")
	require.True(t, r.Contains(11))
	require.True(t, r.Contains(20), "end bound is inclusive")
	require.False(t, r.Contains(21))
}

func TestRangeContainsUnbounded(t *testing.T) {
	head := UpTo(10)
	require.True(t, head.Contains(Min))
	require.True(t, head.Contains(10))
	require.False(t, head.Contains(11))

	tail := From(90)
	require.False(t, tail.Contains(90))
	require.True(t, tail.Contains(91))
	require.True(t, tail.Contains(Max))
}

func TestRangeString(t *testing.T) {
	require.Equal(t, "(10, 20]", NewRange(10, 20).String())
	require.Equal(t, "(-inf, 20]", UpTo(20).String())
	require.Equal(t, "(10, +inf)", From(10).String())
}

func TestInsertUnwrappedAppendsBounded(t *testing.T) {
	var got []Range
	got = InsertUnwrapped(got, 10, 50)
	got = InsertUnwrapped(got, 50, 90)

	require.Equal(t, []Range{NewRange(10, 50), NewRange(50, 90)}, got)
}

func TestInsertUnwrappedSplitsWrappedRange(t *testing.T) {
	got := InsertUnwrapped(nil, 90, 10)

	require.Equal(t, []Range{UpTo(10), From(90)}, got)
}

func TestInsertUnwrappedSingleTokenCoversWholeSpace(t *testing.T) {
	// a one-token ring has prev == tok; the full space comes back as the
	// two unbounded pieces
	got := InsertUnwrapped(nil, 42, 42)

	require.Equal(t, []Range{UpTo(42), From(42)}, got)
}

func TestInsertUnwrappedKeepsUnboundedTailLast(t *testing.T) {
	// the wrapped pair is emitted first during a traversal; later bounded
	// ranges must land before the trailing (start, +inf) piece
	got := InsertUnwrapped(nil, 90, 10)
	got = InsertUnwrapped(got, 10, 50)

	require.Equal(t, []Range{UpTo(10), NewRange(10, 50), From(90)}, got)

	got = InsertUnwrapped(got, 50, 70)
	require.Equal(t, []Range{UpTo(10), NewRange(10, 50), NewRange(50, 70), From(90)}, got)
}

func TestFromKeyDeterministic(t *testing.T) {
	first := FromKey("user:42")
	for i := 0; i < 100; i++ {
		require.Equal(t, first, FromKey("user:42"))
	}
	require.NotEqual(t, FromKey("user:42"), FromKey("user:43"))
}
