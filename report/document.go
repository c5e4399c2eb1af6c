package report

import (
	"github.com/teleivo/lexi"
	"github.com/teleivo/lexi/token"
)

// document is the shape of a JSON or CBOR report. Kinds are encoded by name and positions as
// line:column so the encodings do not depend on the numbering of Go constants.
type document struct {
	Tokens      []tokenEntry   `json:"tokens"`
	Comments    []commentEntry `json:"comments"`
	Errors      []errorEntry   `json:"errors"`
	ErrorCounts map[string]int `json:"errorCounts"`
	Stats       statsEntry     `json:"stats"`
	Symbols     []symbolEntry  `json:"symbols"`
}

type tokenEntry struct {
	Type    string `json:"type"`
	Literal string `json:"literal"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

type commentEntry struct {
	Kind  string `json:"kind"`
	Text  string `json:"text"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type errorEntry struct {
	Kind   string `json:"kind"`
	Pos    string `json:"pos"`
	Lexeme string `json:"lexeme"`
	Reason string `json:"reason"`
	Hint   string `json:"hint,omitempty"`
}

type statsEntry struct {
	Tokens        int            `json:"tokens"`
	Kinds         map[string]int `json:"kinds"`
	SpacesSkipped int            `json:"spacesSkipped"`
	Comments      int            `json:"comments"`
	Lines         int            `json:"lines"`
}

type symbolEntry struct {
	Name      string   `json:"name"`
	Kind      string   `json:"kind"`
	Frequency int      `json:"frequency"`
	First     string   `json:"first"`
	Locations []string `json:"locations"`
}

func newDocument(result lexi.Result) document {
	doc := document{
		Tokens:      make([]tokenEntry, 0, len(result.Tokens)),
		Comments:    make([]commentEntry, 0, len(result.Comments)),
		Errors:      make([]errorEntry, 0, len(result.Errors)),
		ErrorCounts: make(map[string]int),
		Stats: statsEntry{
			Tokens:        result.Stats.Tokens,
			Kinds:         make(map[string]int, len(result.Stats.Kinds)),
			SpacesSkipped: result.Stats.SpacesSkipped,
			Comments:      result.Stats.Comments,
			Lines:         result.Stats.Lines,
		},
		Symbols: []symbolEntry{},
	}

	for _, tok := range result.Tokens {
		doc.Tokens = append(doc.Tokens, tokenEntry{
			Type:    tok.Type.String(),
			Literal: tok.Literal,
			Start:   tok.Start.String(),
			End:     tok.End.String(),
		})
	}
	for _, c := range result.Comments {
		doc.Comments = append(doc.Comments, commentEntry{
			Kind:  c.Kind.String(),
			Text:  c.Text,
			Start: c.Start.String(),
			End:   c.End.String(),
		})
	}
	for _, err := range result.Errors {
		doc.Errors = append(doc.Errors, errorEntry{
			Kind:   err.Kind.String(),
			Pos:    err.Pos.String(),
			Lexeme: err.Lexeme,
			Reason: err.Reason,
			Hint:   err.Hint,
		})
	}
	for kind, n := range result.ErrorCounts() {
		doc.ErrorCounts[kind.String()] = n
	}
	for kind, n := range result.Stats.Kinds {
		doc.Stats.Kinds[kind.String()] = n
	}
	if result.Symbols != nil {
		for sym := range result.Symbols.All() {
			doc.Symbols = append(doc.Symbols, symbolEntry{
				Name:      sym.Name,
				Kind:      sym.Kind.String(),
				Frequency: sym.Frequency,
				First:     sym.First.String(),
				Locations: positions(sym.Locations),
			})
		}
	}

	return doc
}

func positions(locs []token.Position) []string {
	result := make([]string, len(locs))
	for i, loc := range locs {
		result[i] = loc.String()
	}
	return result
}
