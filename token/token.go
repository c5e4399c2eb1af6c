// Package token defines constants representing the lexical tokens of the language together with
// operations like printing tokens or detecting keywords.
package token

// Kind represents the kinds of lexical tokens.
type Kind int

const (
	// ERROR represents an invalid lexeme. The DFA scanner never emits it as a token, it reports
	// [ERROR]s as lexical errors instead. Tools interleaving tokens and errors use it.
	ERROR Kind = iota
	// EOF indicates the end of the input. No token follows the EOF token.
	EOF

	IntegerLiteral    // like 42 -7 +3
	FloatLiteral      // like 3.14 1e10 -2.5E-3
	StringLiteral     // like "hi\n"
	BooleanLiteral    // true false
	Identifier        // like Count total_2 and keywords like loop
	Whitespace        // not emitted by the DFA scanner
	SingleLineComment // not emitted by the DFA scanner
)

// Kinds lists all token kinds in declaration order.
var Kinds = []Kind{
	ERROR,
	EOF,
	IntegerLiteral,
	FloatLiteral,
	StringLiteral,
	BooleanLiteral,
	Identifier,
	Whitespace,
	SingleLineComment,
}

func (k Kind) String() string {
	switch k {
	case ERROR:
		return "ERROR"
	case EOF:
		return "EOF"
	case IntegerLiteral:
		return "INTEGER_LITERAL"
	case FloatLiteral:
		return "FLOAT_LITERAL"
	case StringLiteral:
		return "STRING_LITERAL"
	case BooleanLiteral:
		return "BOOLEAN_LITERAL"
	case Identifier:
		return "IDENTIFIER"
	case Whitespace:
		return "WHITESPACE"
	case SingleLineComment:
		return "SINGLE_LINE_COMMENT"
	default:
		panic("missing String() case for token.Kind")
	}
}

// MarshalText encodes the kind using its String representation.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Token represents a token of the language.
type Token struct {
	Type    Kind
	Literal string
	// Start is the position of the first character of the token.
	Start Position
	// End is the position of the last character of the token.
	End Position
}

func (t Token) String() string {
	if t.Type == EOF {
		return t.Type.String()
	}
	return t.Type.String() + "(" + t.Literal + ")"
}

// MaxIdentifierLen is the maximum number of characters of an identifier.
const MaxIdentifierLen = 31

// Keywords lists the reserved words in the order they are documented.
var Keywords = []string{
	"start",
	"finish",
	"loop",
	"condition",
	"declare",
	"output",
	"input",
	"function",
	"return",
	"break",
	"continue",
	"else",
}

// maxKeywordLen is the length of the longest keyword which is "condition".
const maxKeywordLen = 9

var keywords = map[string]struct{}{}

func init() {
	for _, kw := range Keywords {
		keywords[kw] = struct{}{}
	}
}

// IsKeyword reports whether word is a reserved keyword. Keywords are case-sensitive.
func IsKeyword(word string) bool {
	if len(word) > maxKeywordLen {
		return false
	}
	_, ok := keywords[word]
	return ok
}
