package lexi

import (
	"fmt"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/teleivo/lexi/token"
)

// ErrorKind classifies lexical errors.
type ErrorKind int

const (
	InvalidCharacter ErrorKind = iota
	MalformedInteger
	MalformedFloat
	// MalformedString is reserved. Unterminated strings and invalid escapes are reported as
	// [InvalidCharacter] as the DFA never reaches an accepting string state for them.
	MalformedString
	// MalformedCharacter is reserved as the language has no character literals.
	MalformedCharacter
	InvalidIdentifier
	UnclosedComment
	IdentifierTooLong
)

// ErrorKinds lists all error kinds in declaration order.
var ErrorKinds = []ErrorKind{
	InvalidCharacter,
	MalformedInteger,
	MalformedFloat,
	MalformedString,
	MalformedCharacter,
	InvalidIdentifier,
	UnclosedComment,
	IdentifierTooLong,
}

func (k ErrorKind) String() string {
	switch k {
	case InvalidCharacter:
		return "InvalidCharacter"
	case MalformedInteger:
		return "MalformedInteger"
	case MalformedFloat:
		return "MalformedFloat"
	case MalformedString:
		return "MalformedString"
	case MalformedCharacter:
		return "MalformedCharacter"
	case InvalidIdentifier:
		return "InvalidIdentifier"
	case UnclosedComment:
		return "UnclosedComment"
	case IdentifierTooLong:
		return "IdentifierTooLong"
	default:
		panic("missing String() case for lexi.ErrorKind")
	}
}

// MarshalText encodes the kind using its String representation.
func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// DefaultReason returns the reason reported for an error of kind k unless a more specific one is
// known.
func (k ErrorKind) DefaultReason() string {
	switch k {
	case InvalidCharacter:
		return "invalid character in source"
	case MalformedInteger:
		return "malformed integer literal"
	case MalformedFloat:
		return "malformed floating-point literal"
	case MalformedString:
		return "unterminated or invalid string literal"
	case MalformedCharacter:
		return "invalid character literal format"
	case InvalidIdentifier:
		return "invalid identifier format"
	case UnclosedComment:
		return "comment not closed"
	case IdentifierTooLong:
		return fmt.Sprintf("identifier exceeds %d characters", token.MaxIdentifierLen)
	default:
		panic("missing DefaultReason() case for lexi.ErrorKind")
	}
}

// Error is a lexical error. The scanner records it and continues scanning.
type Error struct {
	Kind ErrorKind
	// Pos is the position of the first character of the failed attempt.
	Pos    token.Position
	Lexeme string
	Reason string
	// Hint is an optional suggestion on how to fix the error.
	Hint string
}

func (e Error) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s: %s %q, %s", e.Pos, e.Kind, e.Reason, e.Lexeme, e.Hint)
	}
	return fmt.Sprintf("%s: %s: %s %q", e.Pos, e.Kind, e.Reason, e.Lexeme)
}

// newError creates an error of given kind. The kinds default reason is used if reason is empty.
func newError(kind ErrorKind, pos token.Position, lexeme, reason string) Error {
	if reason == "" {
		reason = kind.DefaultReason()
	}
	return Error{Kind: kind, Pos: pos, Lexeme: lexeme, Reason: reason}
}

// describe formats a reason for an unexpected rune the way the reason reads best for the rune.
func describe(r rune, reason string) string {
	switch {
	case r < 0:
		return reason
	case r >= 0x20 && r < 0x7F:
		return fmt.Sprintf("invalid character %q: %s", r, reason)
	case r >= 0x80:
		return fmt.Sprintf("invalid character U+%04X '%c': %s", r, r, reason)
	default:
		return fmt.Sprintf("invalid character U+%04X: %s", r, reason)
	}
}

// maxSuggestionDistance is the maximum Levenshtein distance of a keyword suggested for a lowercase
// word.
const maxSuggestionDistance = 2

// suggestKeyword returns a hint naming the keyword closest to word or an empty string if no keyword
// is close.
func suggestKeyword(word string) string {
	ranks := fuzzy.RankFindFold(word, token.Keywords)
	sort.Sort(ranks)
	if len(ranks) > 0 && ranks[0].Distance <= maxSuggestionDistance {
		return fmt.Sprintf("did you mean %q?", ranks[0].Target)
	}

	best, bestDistance := "", maxSuggestionDistance+1
	for _, kw := range token.Keywords {
		if d := fuzzy.LevenshteinDistance(word, kw); d < bestDistance {
			best, bestDistance = kw, d
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf("did you mean %q?", best)
}
