// Package source maps between scanner positions and language server protocol positions.
//
// Scanner positions are one-based and count columns in runes. Protocol positions are zero-based
// and count characters in bytes as the server negotiates the utf-8 position encoding. Both treat
// only \n as a line terminator.
package source

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/teleivo/lexi/lsp/internal/rpc"
	"github.com/teleivo/lexi/token"
)

// File is the content of a document indexed by line.
type File struct {
	src   []byte
	lines []int // byte offsets of line starts
}

// New indexes src.
func New(src []byte) *File {
	lines := []int{0}
	for i, b := range src {
		if b == '\n' {
			lines = append(lines, i+1)
		}
	}
	return &File{src: src, lines: lines}
}

// Bytes returns the content of the file.
func (f *File) Bytes() []byte {
	return f.src
}

// line returns the content of the zero-based line excluding its terminator.
func (f *File) line(line int) []byte {
	start := f.lines[line]
	end := len(f.src)
	if line+1 < len(f.lines) {
		end = f.lines[line+1] - 1
	}
	return f.src[start:end]
}

// Offset returns the byte offset of pos. A character beyond the end of its line is clamped to the
// end of the line.
func (f *File) Offset(pos rpc.Position) (int, error) {
	if int(pos.Line) >= len(f.lines) {
		return 0, fmt.Errorf("line %d out of range: document has %d lines", pos.Line, len(f.lines))
	}
	line := f.line(int(pos.Line))
	return f.lines[pos.Line] + min(int(pos.Character), len(line)), nil
}

// Position converts the scanner position pos into a protocol position.
func (f *File) Position(pos token.Position) rpc.Position {
	if pos.Line < 1 || pos.Line > len(f.lines) {
		return rpc.Position{}
	}
	line := f.line(pos.Line - 1)

	var offset int
	for col := 1; col < pos.Column && offset < len(line); col++ {
		_, width := utf8.DecodeRune(line[offset:])
		offset += width
	}
	return rpc.Position{Line: uint32(pos.Line - 1), Character: uint32(offset)}
}

// Range converts the scanner positions of a lexeme from start to its inclusive end into a
// protocol range.
func (f *File) Range(start, end token.Position) rpc.Range {
	return rpc.Range{
		Start: f.Position(start),
		End:   f.Position(token.Position{Line: end.Line, Column: end.Column + 1}),
	}
}

// TokenPosition converts the protocol position pos into a scanner position. A character inside a
// multi-byte rune maps to the column of that rune.
func (f *File) TokenPosition(pos rpc.Position) token.Position {
	if int(pos.Line) >= len(f.lines) {
		return token.Position{}
	}
	line := f.line(int(pos.Line))

	col := 1
	for offset := 0; offset < len(line); col++ {
		_, width := utf8.DecodeRune(line[offset:])
		if offset+width > int(pos.Character) {
			break
		}
		offset += width
	}
	return token.Position{Line: int(pos.Line) + 1, Column: col}
}

// End returns the inclusive end position of lexeme starting at start.
func End(start token.Position, lexeme string) token.Position {
	end := start
	prev := rune(-1)
	for i, r := range lexeme {
		if i > 0 {
			if prev == '\n' {
				end.Line++
				end.Column = 1
			} else {
				end.Column++
			}
		}
		prev = r
	}
	return end
}

// TokenAt returns the token covering pos. The tokens must be in source order.
func TokenAt(tokens []token.Token, pos token.Position) (token.Token, bool) {
	i := sort.Search(len(tokens), func(i int) bool {
		return pos.Before(tokens[i].Start)
	})
	if i == 0 || pos.After(tokens[i-1].End) {
		return token.Token{}, false
	}
	return tokens[i-1], true
}
