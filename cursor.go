package lexi

import (
	"unicode/utf8"

	"github.com/teleivo/lexi/token"
)

const (
	eof = -1 // end of input
)

// cursor tracks the position of the scanner in the source. It is a small value so a copy of it
// marks a position the scanner can backtrack to.
type cursor struct {
	src    []byte
	offset int // byte offset of cur
	width  int // byte width of cur
	cur    rune
	line   int
	column int
	last   token.Position // position of the most recently consumed rune
}

func newCursor(src []byte) cursor {
	c := cursor{
		src:    src,
		line:   1,
		column: 1,
	}
	c.decode()
	return c
}

// decode reads the rune at the current offset into cur.
func (c *cursor) decode() {
	if c.offset >= len(c.src) {
		c.cur = eof
		c.width = 0
		return
	}
	// RuneError with width 1 means invalid UTF-8, the DFA has no transition on it so it is
	// reported as an invalid character
	c.cur, c.width = utf8.DecodeRune(c.src[c.offset:])
}

// peek returns the current rune or eof if the input is exhausted.
func (c *cursor) peek() rune {
	return c.cur
}

// peekAt returns the rune n runes after the current one or eof.
func (c *cursor) peekAt(n int) rune {
	offset := c.offset
	for i := 0; i <= n; i++ {
		if offset >= len(c.src) {
			return eof
		}
		r, size := utf8.DecodeRune(c.src[offset:])
		if i == n {
			return r
		}
		offset += size
	}
	return eof
}

// advance consumes the current rune and advances the line and column depending on it.
func (c *cursor) advance() {
	if c.cur == eof {
		return
	}

	c.last = c.pos()
	if c.cur == '\n' {
		c.line++
		c.column = 1
	} else {
		c.column++
	}
	c.offset += c.width
	c.decode()
}

func (c *cursor) atEOF() bool {
	return c.cur == eof
}

// pos returns the current position.
func (c *cursor) pos() token.Position {
	return token.Position{Line: c.line, Column: c.column}
}

// text returns the source from the offset of start up to the current offset.
func (c *cursor) text(start cursor) string {
	return string(c.src[start.offset:c.offset])
}
