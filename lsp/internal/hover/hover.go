// Package hover provides hover information for tokens.
package hover

import (
	"fmt"
	"strings"

	"github.com/teleivo/lexi"
	"github.com/teleivo/lexi/lsp/internal/rpc"
	"github.com/teleivo/lexi/lsp/internal/source"
	"github.com/teleivo/lexi/token"
)

// Info returns hover information for the token at the given position. Identifiers show how often
// they occur and where they occur first. Keywords and literals show their kind.
func Info(f *source.File, result lexi.Result, pos token.Position) *rpc.Hover {
	tok, ok := source.TokenAt(result.Tokens, pos)
	if !ok {
		return nil
	}

	var sb strings.Builder
	switch {
	case tok.Type == token.Identifier && token.IsKeyword(tok.Literal):
		fmt.Fprintf(&sb, "`%s` keyword", tok.Literal)
	case tok.Type == token.Identifier:
		sym, ok := result.Symbols.Lookup(tok.Literal)
		if !ok {
			return nil
		}
		fmt.Fprintf(&sb, "`%s` identifier\n\n", sym.Name)
		fmt.Fprintf(&sb, "**Occurrences:** %d\n\n", sym.Frequency)
		fmt.Fprintf(&sb, "**First occurrence:** %s", sym.First)
	default:
		fmt.Fprintf(&sb, "%s", kindName(tok.Type))
	}

	r := f.Range(tok.Start, tok.End)
	return &rpc.Hover{
		Contents: rpc.MarkupContent{Kind: "markdown", Value: sb.String()},
		Range:    &r,
	}
}

func kindName(kind token.Kind) string {
	switch kind {
	case token.IntegerLiteral:
		return "integer literal"
	case token.FloatLiteral:
		return "floating-point literal"
	case token.StringLiteral:
		return "string literal"
	case token.BooleanLiteral:
		return "boolean literal"
	default:
		return strings.ToLower(kind.String())
	}
}
