package sapling

import (
	"fmt"
	"strconv"
	"strings"
)

type positionKind uint8

const (
	positionInvalid positionKind = iota // zero value; rejected by AddChild and MoveChild
	positionStart                       // first slot
	positionEnd                         // last slot
	positionIndex                       // explicit index, clamped to the valid range
)

// Position selects a slot in a node's dynamic child list.
// Use [Start], [End] or [At]. The zero Position is invalid.
type Position struct {
	kind  positionKind
	index int
}

var (
	// Start places a child first.
	Start = Position{kind: positionStart}
	// End places a child last.
	End = Position{kind: positionEnd}
)

// At places a child at index i. Indices outside the list are clamped.
func At(i int) Position {
	return Position{kind: positionIndex, index: i}
}

// ParsePosition parses "start", "end" or a decimal index. The empty string
// is End.
func ParsePosition(s string) (Position, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "end":
		return End, nil
	case "start":
		return Start, nil
	}
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return Position{}, fmt.Errorf("%w: %q", ErrInvalidPosition, s)
	}
	return At(i), nil
}

// Valid reports whether p is Start, End or an index.
func (p Position) Valid() bool {
	return p.kind != positionInvalid
}

// String implements [fmt.Stringer].
func (p Position) String() string {
	switch p.kind {
	case positionStart:
		return "start"
	case positionEnd:
		return "end"
	case positionIndex:
		return strconv.Itoa(p.index)
	}
	return "invalid"
}

// slot resolves p to an insertion index in a list of length n.
func (p Position) slot(n int) int {
	switch p.kind {
	case positionStart:
		return 0
	case positionIndex:
		return max(0, min(p.index, n))
	}
	return n
}
