// Package lexi implements a scanner for a small language of integer, float, string and boolean
// literals, identifiers and keywords.
//
// The scanner is a hand-built deterministic finite automaton using maximal munch. It skips spaces,
// separators and comments, where block comments #* ... *# nest. Identifiers start with an uppercase
// letter followed by lowercase letters, digits or underscores. Keywords are lowercase. Invalid input
// is recorded as lexical errors and scanning continues, so a single scan reports all errors.
package lexi

import (
	"github.com/teleivo/lexi/token"
)

// Stats holds statistics about scanned input.
type Stats struct {
	Tokens        int                // Tokens is the number of tokens.
	Kinds         map[token.Kind]int // Kinds counts the tokens per kind.
	SpacesSkipped int                // SpacesSkipped is the number of space characters skipped.
	Comments      int                // Comments is the number of comments.
	Lines         int                // Lines is the number of lines scanned.
}

// Result is the outcome of scanning an entire input.
type Result struct {
	Tokens   []token.Token
	Comments []Comment
	Errors   []Error
	Symbols  *SymbolTable
	Stats    Stats
}

// Scan scans the entire src.
func Scan(src []byte, opts ...Option) Result {
	sc := NewScanner(src, opts...)

	var tokens []token.Token
	for tok := range sc.All() {
		tokens = append(tokens, tok)
	}

	return Result{
		Tokens:   tokens,
		Comments: sc.Comments(),
		Errors:   sc.Errors(),
		Symbols:  sc.Symbols(),
		Stats:    sc.Stats(),
	}
}

// HasErrors reports whether the scan found any lexical error.
func (r Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// ErrorCounts counts the lexical errors per kind. Kinds without errors are absent.
func (r Result) ErrorCounts() map[ErrorKind]int {
	counts := make(map[ErrorKind]int)
	for _, err := range r.Errors {
		counts[err.Kind]++
	}
	return counts
}
