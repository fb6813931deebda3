package token

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Token is a position on the partitioning ring. The ring wraps around
// conceptually, but tokens themselves are plain int64 values with the usual
// linear order: wraparound is handled by the range algebra, not by the
// comparison.
type Token int64

// Min and Max are the edges of the token space. A range reaching past Min or
// Max is represented with an unbounded Range, never with these values as
// bounds.
const (
	Min Token = -1 << 63
	Max Token = 1<<63 - 1
)

// FromKey hashes a partition key onto the ring.
func FromKey(key string) Token {
	return Token(xxhash.Sum64String(key))
}

func (t Token) String() string {
	return strconv.FormatInt(int64(t), 10)
}
