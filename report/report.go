// Package report renders the result of a scan for humans and machines.
//
// The text format is a set of aligned tables. The JSON and CBOR formats share one document shape
// so that a consumer can switch between them without changing its decoder.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fxamacker/cbor/v2"
	"github.com/teleivo/lexi"
	"github.com/teleivo/lexi/token"
)

// Format is the encoding of a report.
type Format int

const (
	Text Format = iota
	JSON
	CBOR
)

var formats = map[string]Format{
	"text": Text,
	"json": JSON,
	"cbor": CBOR,
}

func (f Format) String() string {
	switch f {
	case Text:
		return "text"
	case JSON:
		return "json"
	case CBOR:
		return "cbor"
	default:
		panic("missing String() case for report.Format")
	}
}

// NewFormat returns the format named name.
func NewFormat(name string) (Format, error) {
	f, ok := formats[name]
	if !ok {
		return 0, fmt.Errorf("invalid format %q: must be one of %s", name, strings.Join([]string{Text.String(), JSON.String(), CBOR.String()}, ", "))
	}
	return f, nil
}

// Write writes a report of result to w in the given format.
func Write(w io.Writer, result lexi.Result, format Format) error {
	switch format {
	case Text:
		return writeText(w, result)
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(newDocument(result)); err != nil {
			return fmt.Errorf("failed to encode JSON report: %v", err)
		}
		return nil
	case CBOR:
		em, err := cbor.CanonicalEncOptions().EncMode()
		if err != nil {
			return fmt.Errorf("failed to create CBOR encoder: %v", err)
		}
		if err := em.NewEncoder(w).Encode(newDocument(result)); err != nil {
			return fmt.Errorf("failed to encode CBOR report: %v", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %d", format)
	}
}

func writeText(w io.Writer, result lexi.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "TOKENS")
	fmt.Fprintln(tw, "POSITION\tTYPE\tLITERAL")
	for _, tok := range result.Tokens {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", Span(tok.Start, tok.End), tok.Type, Literal(tok))
	}

	fmt.Fprintln(tw, "\nCOMMENTS")
	fmt.Fprintln(tw, "POSITION\tKIND\tTEXT")
	for _, c := range result.Comments {
		fmt.Fprintf(tw, "%s\t%s\t%q\n", Span(c.Start, c.End), c.Kind, c.Text)
	}

	fmt.Fprintln(tw, "\nERRORS")
	if result.HasErrors() {
		fmt.Fprintln(tw, "POSITION\tKIND\tLEXEME\tREASON\tHINT")
		for _, err := range result.Errors {
			fmt.Fprintf(tw, "%s\t%s\t%q\t%s\t%s\n", err.Pos, err.Kind, err.Lexeme, err.Reason, err.Hint)
		}
	}
	fmt.Fprintln(tw, Summary(result))

	fmt.Fprintln(tw, "\nSTATISTICS")
	fmt.Fprintf(tw, "tokens\t%d\n", result.Stats.Tokens)
	for _, kind := range token.Kinds {
		if n := result.Stats.Kinds[kind]; n > 0 {
			fmt.Fprintf(tw, "  %s\t%d\n", kind, n)
		}
	}
	fmt.Fprintf(tw, "spaces skipped\t%d\n", result.Stats.SpacesSkipped)
	fmt.Fprintf(tw, "comments\t%d\n", result.Stats.Comments)
	fmt.Fprintf(tw, "lines\t%d\n", result.Stats.Lines)

	fmt.Fprintln(tw, "\nSYMBOLS")
	fmt.Fprintln(tw, "NAME\tKIND\tFREQUENCY\tFIRST\tLOCATIONS")
	if result.Symbols != nil {
		for sym := range result.Symbols.All() {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", sym.Name, sym.Kind, sym.Frequency, sym.First, strings.Join(positions(sym.Locations), " "))
		}
	}

	return tw.Flush()
}

// Summary summarizes the lexical errors of result in one line. Errors are counted per kind in the
// order of [lexi.ErrorKinds].
func Summary(result lexi.Result) string {
	if !result.HasErrors() {
		return "no lexical errors found"
	}

	counts := result.ErrorCounts()
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d lexical error", len(result.Errors))
	if len(result.Errors) > 1 {
		sb.WriteByte('s')
	}
	sep := ": "
	for _, kind := range lexi.ErrorKinds {
		if n := counts[kind]; n > 0 {
			fmt.Fprintf(&sb, "%s%s %d", sep, kind, n)
			sep = ", "
		}
	}
	return sb.String()
}

// Span formats the positions of a lexeme spanning from start to end, both inclusive.
func Span(start, end token.Position) string {
	if start == end {
		return start.String()
	}
	return start.String() + "-" + end.String()
}

// Literal formats the literal of tok so it fits on a single line.
func Literal(tok token.Token) string {
	if tok.Type == token.StringLiteral {
		return fmt.Sprintf("%q", tok.Literal)
	}
	return tok.Literal
}
