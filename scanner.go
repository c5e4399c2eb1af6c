package lexi

import (
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"strings"

	"github.com/teleivo/lexi/internal/assert"
	"github.com/teleivo/lexi/token"
)

// maxFractionDigits is the maximum number of digits after the decimal point of a float literal.
const maxFractionDigits = 6

// Scanner tokenizes source code into a stream of tokens. Comments are skipped and collected.
// Invalid input is recorded as lexical [Error]s and the scanner continues scanning.
//
// A Scanner is not safe for concurrent use. Scan independent inputs using independent scanners.
type Scanner struct {
	cur    cursor
	logger *slog.Logger

	comments []Comment
	errors   []Error
	symbols  *SymbolTable
	kinds    map[token.Kind]int
	tokens   int
	spaces   int
}

// Option configures a [Scanner].
type Option func(*Scanner)

// WithLogger sets the logger the scanner logs lexical errors to at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(sc *Scanner) {
		sc.logger = logger
	}
}

// NewScanner creates a new scanner that tokenizes the given source code.
func NewScanner(src []byte, opts ...Option) *Scanner {
	sc := Scanner{
		cur:     newCursor(src),
		logger:  slog.New(slog.DiscardHandler),
		symbols: NewSymbolTable(),
		kinds:   make(map[token.Kind]int),
	}
	for _, opt := range opts {
		opt(&sc)
	}
	return &sc
}

// Next advances the scanner by one token and returns it. Comments and separators are skipped.
// Invalid input is recorded as an error that [Scanner.Errors] returns; scanning continues after
// it. A token of type [token.EOF] is returned once the end of input is reached, and on every call
// after that.
func (sc *Scanner) Next() token.Token {
	for {
		sc.skipTrivia()
		if sc.cur.atEOF() {
			pos := sc.cur.pos()
			return token.Token{Type: token.EOF, Start: pos, End: pos}
		}

		start := sc.cur
		tok, ok := sc.scanToken()
		assert.That(sc.cur.offset > start.offset, "scanner must advance on every attempt, stuck at %s", start.pos())
		if !ok {
			continue
		}

		assert.That(tok.Literal != "" && tok.Literal == sc.cur.text(start), "token %s must be the lexeme ending at the cursor", tok)
		sc.tokens++
		sc.kinds[tok.Type]++
		return tok
	}
}

// All returns an iterator over all remaining tokens. It does not yield the [token.EOF] token. The
// tokens are scanned lazily and only once, iterate again using a new [Scanner].
func (sc *Scanner) All() iter.Seq[token.Token] {
	return func(yield func(token.Token) bool) {
		for {
			tok := sc.Next()
			if tok.Type == token.EOF || !yield(tok) {
				return
			}
		}
	}
}

// Comments returns the comments skipped so far in source order.
func (sc *Scanner) Comments() []Comment {
	return sc.comments
}

// Errors returns the lexical errors found so far in the order they were detected.
func (sc *Scanner) Errors() []Error {
	return sc.errors
}

// HasErrors reports whether any lexical error was found so far.
func (sc *Scanner) HasErrors() bool {
	return len(sc.errors) > 0
}

// Symbols returns the table of identifiers scanned so far.
func (sc *Scanner) Symbols() *SymbolTable {
	return sc.symbols
}

// Stats returns statistics about the input scanned so far.
func (sc *Scanner) Stats() Stats {
	return Stats{
		Tokens:        sc.tokens,
		Kinds:         maps.Clone(sc.kinds),
		SpacesSkipped: sc.spaces,
		Comments:      len(sc.comments),
		Lines:         sc.cur.line,
	}
}

// scanToken scans one token from the cursor. It returns false if the attempt failed in which case
// the error has been reported.
func (sc *Scanner) scanToken() (token.Token, bool) {
	start := sc.cur

	if r := sc.cur.peek(); isLower(r) && r != 't' && r != 'f' {
		return sc.scanKeyword(start)
	}

	m := run(&sc.cur)
	if m.accepted == stateDead {
		sc.fail(start, m)
		return token.Token{}, false
	}
	return sc.classify(start, m.accepted)
}

// scanKeyword scans a run of lowercase letters which must be a keyword. Keywords are identifiers
// that are not recorded in the symbol table.
func (sc *Scanner) scanKeyword(start cursor) (token.Token, bool) {
	for isLower(sc.cur.peek()) {
		sc.cur.advance()
	}

	word := sc.cur.text(start)
	if !token.IsKeyword(word) {
		err := newError(InvalidIdentifier, start.pos(), word, "lowercase identifier not allowed")
		err.Hint = suggestKeyword(word)
		sc.report(err)
		return token.Token{}, false
	}

	return sc.token(token.Identifier, start), true
}

// classify turns the lexeme accepted in state accepted into a token. It validates the lexeme
// beyond what the DFA can express and reports an error instead if it is invalid.
func (sc *Scanner) classify(start cursor, accepted state) (token.Token, bool) {
	lexeme := sc.cur.text(start)

	switch kind := accepted.kind(); kind {
	case token.Identifier:
		if isUpper(sc.cur.peek()) {
			for isIdentifierRune(sc.cur.peek()) {
				sc.cur.advance()
			}
			sc.report(newError(InvalidIdentifier, start.pos(), sc.cur.text(start), "mixed-case identifier not allowed"))
			return token.Token{}, false
		}
		if len(lexeme) > token.MaxIdentifierLen {
			sc.report(newError(IdentifierTooLong, start.pos(), lexeme, ""))
			return token.Token{}, false
		}
		if !token.IsKeyword(lexeme) {
			sc.symbols.Add(lexeme, start.pos())
		}
		return sc.token(kind, start), true
	case token.IntegerLiteral:
		if isLower(sc.cur.peek()) {
			for r := sc.cur.peek(); isLower(r) || isDigit(r); r = sc.cur.peek() {
				sc.cur.advance()
			}
			sc.report(newError(MalformedInteger, start.pos(), sc.cur.text(start), "digit followed by letter"))
			return token.Token{}, false
		}
		return sc.token(kind, start), true
	case token.FloatLiteral:
		if point := strings.IndexByte(lexeme, '.'); point >= 0 {
			end := strings.IndexAny(lexeme, "eE")
			if end < 0 {
				end = len(lexeme)
			}
			if end-point-1 > maxFractionDigits {
				sc.report(newError(MalformedFloat, start.pos(), lexeme, fmt.Sprintf("more than %d digits after the decimal point", maxFractionDigits)))
				return token.Token{}, false
			}
		}
		return sc.token(kind, start), true
	case token.StringLiteral, token.BooleanLiteral:
		return sc.token(kind, start), true
	default:
		assert.Unreachable("no classification for accepting state %d", accepted)
		return token.Token{}, false
	}
}

// fail reports the failed DFA run that started at start and ensures the cursor advanced past
// the start of the attempt.
func (sc *Scanner) fail(start cursor, m match) {
	var reason string
	switch {
	case m.last.inString() && sc.cur.atEOF():
		reason = "unterminated string literal"
	case m.last.inEscape():
		reason = describe(sc.cur.peek(), "invalid escape sequence in string")
		sc.cur.advance()
	case sc.cur.offset == start.offset:
		reason = describe(sc.cur.peek(), "not the start of any token")
		sc.cur.advance()
	default:
		reason = "incomplete token"
	}

	sc.report(newError(InvalidCharacter, start.pos(), sc.cur.text(start), reason))
}

func (sc *Scanner) token(kind token.Kind, start cursor) token.Token {
	return token.Token{
		Type:    kind,
		Literal: sc.cur.text(start),
		Start:   start.pos(),
		End:     sc.cur.last,
	}
}

func (sc *Scanner) report(err Error) {
	sc.logger.Debug("lexical error", "kind", err.Kind, "pos", err.Pos, "lexeme", err.Lexeme, "reason", err.Reason)
	sc.errors = append(sc.errors, err)
}

func isLower(r rune) bool {
	return 'a' <= r && r <= 'z'
}

func isUpper(r rune) bool {
	return 'A' <= r && r <= 'Z'
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isIdentifierRune(r rune) bool {
	return isLower(r) || isUpper(r) || isDigit(r) || r == '_'
}
