package token

import (
	"strconv"
)

// Position describes a position in source code.
type Position struct {
	Line   int // Line is the line number starting at 1. A line of zero is not valid.
	Column int // Column is the horizontal position in terms of runes starting at 1. A column of zero is not valid.
}

// String returns the position in line:column format.
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// IsValid reports whether the position has a line and column of at least 1.
func (p Position) IsValid() bool {
	return p.Line > 0 && p.Column > 0
}

// Before reports whether the position p is before o.
func (p Position) Before(o Position) bool {
	if p.Line < o.Line {
		return true
	} else if p.Line == o.Line && p.Column < o.Column {
		return true
	}
	return false
}

// After reports whether the position p is after o.
func (p Position) After(o Position) bool {
	if p.Line > o.Line {
		return true
	} else if p.Line == o.Line && p.Column > o.Column {
		return true
	}
	return false
}
