package lexi

import (
	"fmt"

	"github.com/teleivo/lexi/token"
)

// CommentKind distinguishes line from block comments.
type CommentKind int

const (
	SingleLine CommentKind = iota // ## up to the end of the line
	MultiLine                     // #* up to the matching *#, comments nest
)

func (k CommentKind) String() string {
	switch k {
	case SingleLine:
		return "SINGLE_LINE"
	case MultiLine:
		return "MULTI_LINE"
	default:
		panic("missing String() case for lexi.CommentKind")
	}
}

// MarshalText encodes the kind using its String representation.
func (k CommentKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Comment is a comment skipped by the scanner.
type Comment struct {
	Kind CommentKind
	Text string
	// Start is the position of the first character of the comment marker.
	Start token.Position
	// End is the position of the last character of the comment.
	End token.Position
}

// skipTrivia skips spaces, separators and comments until the next token attempt can start.
// Comments are recorded.
func (sc *Scanner) skipTrivia() {
	for !sc.cur.atEOF() {
		r := sc.cur.peek()
		switch {
		case r == ' ':
			for sc.cur.peek() == ' ' {
				sc.cur.advance()
				sc.spaces++
			}
		case r == '#' && sc.cur.peekAt(1) == '#':
			sc.skipLineComment()
		case r == '#' && sc.cur.peekAt(1) == '*':
			sc.skipBlockComment()
		case r == '\n' || r == '\r' || r == '\t':
			sc.cur.advance()
		default:
			return
		}
	}
}

// skipLineComment skips a comment up to but excluding the line terminator.
func (sc *Scanner) skipLineComment() {
	start := sc.cur
	for !sc.cur.atEOF() && sc.cur.peek() != '\n' && sc.cur.peek() != '\r' {
		sc.cur.advance()
	}

	sc.comments = append(sc.comments, Comment{
		Kind:  SingleLine,
		Text:  sc.cur.text(start),
		Start: start.pos(),
		End:   sc.cur.last,
	})
}

// skipBlockComment skips a possibly nested block comment including its closing marker. A comment
// that is still open at the end of the input is recorded and reported as [UnclosedComment].
func (sc *Scanner) skipBlockComment() {
	start := sc.cur
	sc.cur.advance() // #
	sc.cur.advance() // *

	depth := 1
	for !sc.cur.atEOF() && depth > 0 {
		r, next := sc.cur.peek(), sc.cur.peekAt(1)
		switch {
		case r == '#' && next == '*':
			depth++
			sc.cur.advance()
			sc.cur.advance()
		case r == '*' && next == '#':
			depth--
			sc.cur.advance()
			sc.cur.advance()
		default:
			sc.cur.advance()
		}
	}

	comment := Comment{
		Kind:  MultiLine,
		Text:  sc.cur.text(start),
		Start: start.pos(),
		End:   sc.cur.last,
	}
	sc.comments = append(sc.comments, comment)

	if depth > 0 {
		reason := "missing closing '*#'"
		if depth > 1 {
			reason = fmt.Sprintf("missing %d closing '*#' of nested comments", depth)
		}
		sc.report(newError(UnclosedComment, comment.Start, comment.Text, reason))
	}
}
