// Package navigate provides code navigation features for source documents.
//
// This package implements LSP navigation capabilities including document symbols,
// go-to-definition, and find references. Navigation is based on the symbol table of a scan: the
// definition of an identifier is its first occurrence.
package navigate

import (
	"fmt"

	"github.com/teleivo/lexi"
	"github.com/teleivo/lexi/lsp/internal/rpc"
	"github.com/teleivo/lexi/lsp/internal/source"
	"github.com/teleivo/lexi/token"
)

// maxItems is the maximum number of symbols to return.
const maxItems = 1000

// DocumentSymbols returns one symbol per distinct identifier in the order of their first
// occurrence. Its range is the first occurrence and its detail the number of occurrences.
//
// To handle large files, symbols are limited to maxItems.
func DocumentSymbols(f *source.File, result lexi.Result) []rpc.DocumentSymbol {
	var symbols []rpc.DocumentSymbol
	for sym := range result.Symbols.All() {
		if len(symbols) >= maxItems {
			break
		}
		r := f.Range(sym.First, end(sym.First, sym.Name))
		symbols = append(symbols, rpc.DocumentSymbol{
			Name:           sym.Name,
			Detail:         occurrences(sym.Frequency),
			Kind:           rpc.SymbolKindVariable,
			Range:          r,
			SelectionRange: r,
		})
	}
	return symbols
}

func occurrences(n int) string {
	if n == 1 {
		return "1 occurrence"
	}
	return fmt.Sprintf("%d occurrences", n)
}

// Definition returns the location of the first occurrence of the identifier at the given
// position.
//
// Returns nil if the position is not on an identifier that is recorded in the symbol table.
func Definition(f *source.File, result lexi.Result, uri rpc.DocumentURI, pos token.Position) *rpc.Location {
	sym, ok := symbolAt(result, pos)
	if !ok {
		return nil
	}
	return &rpc.Location{URI: uri, Range: f.Range(sym.First, end(sym.First, sym.Name))}
}

// References returns all locations of the identifier at the given position in source order. The
// first occurrence is only included if includeDeclaration is set.
//
// Returns nil if the position is not on an identifier that is recorded in the symbol table.
func References(f *source.File, result lexi.Result, uri rpc.DocumentURI, pos token.Position, includeDeclaration bool) []rpc.Location {
	sym, ok := symbolAt(result, pos)
	if !ok {
		return nil
	}

	locations := sym.Locations
	if !includeDeclaration {
		locations = locations[1:]
	}
	refs := make([]rpc.Location, 0, len(locations))
	for _, loc := range locations {
		refs = append(refs, rpc.Location{URI: uri, Range: f.Range(loc, end(loc, sym.Name))})
	}
	return refs
}

func symbolAt(result lexi.Result, pos token.Position) (lexi.Symbol, bool) {
	tok, ok := source.TokenAt(result.Tokens, pos)
	if !ok || tok.Type != token.Identifier {
		return lexi.Symbol{}, false
	}
	return result.Symbols.Lookup(tok.Literal)
}

// end returns the end of an identifier starting at start. Identifiers are ASCII on a single line.
func end(start token.Position, name string) token.Position {
	return token.Position{Line: start.Line, Column: start.Column + len(name) - 1}
}
