package lexi

import (
	"iter"

	"github.com/teleivo/lexi/token"
)

// Symbol records the occurrences of an identifier.
type Symbol struct {
	Name      string
	Kind      token.Kind
	Frequency int
	// First is the position of the first occurrence.
	First token.Position
	// Locations holds the positions of all occurrences in source order.
	Locations []token.Position
}

// SymbolTable records identifier occurrences keyed by name. It iterates its symbols in the order
// of their first occurrence.
type SymbolTable struct {
	symbols []*Symbol
	index   map[string]int
}

// NewSymbolTable creates an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{index: make(map[string]int)}
}

// Add records an occurrence of the identifier name at pos.
func (st *SymbolTable) Add(name string, pos token.Position) {
	if i, ok := st.index[name]; ok {
		sym := st.symbols[i]
		sym.Frequency++
		sym.Locations = append(sym.Locations, pos)
		return
	}

	st.index[name] = len(st.symbols)
	st.symbols = append(st.symbols, &Symbol{
		Name:      name,
		Kind:      token.Identifier,
		Frequency: 1,
		First:     pos,
		Locations: []token.Position{pos},
	})
}

// Lookup returns the symbol of the identifier name.
func (st *SymbolTable) Lookup(name string) (Symbol, bool) {
	i, ok := st.index[name]
	if !ok {
		return Symbol{}, false
	}
	return st.symbols[i].clone(), true
}

// Len returns the number of unique identifiers.
func (st *SymbolTable) Len() int {
	return len(st.symbols)
}

// All returns an iterator over all symbols in the order of their first occurrence.
func (st *SymbolTable) All() iter.Seq[Symbol] {
	return func(yield func(Symbol) bool) {
		for _, sym := range st.symbols {
			if !yield(sym.clone()) {
				return
			}
		}
	}
}

// Symbols returns all symbols in the order of their first occurrence.
func (st *SymbolTable) Symbols() []Symbol {
	result := make([]Symbol, 0, len(st.symbols))
	for sym := range st.All() {
		result = append(result, sym)
	}
	return result
}

func (s *Symbol) clone() Symbol {
	c := *s
	c.Locations = append([]token.Position(nil), s.Locations...)
	return c
}
