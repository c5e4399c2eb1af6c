// Package diagnostic provides lexical error diagnostics for source files.
package diagnostic

import (
	"github.com/teleivo/lexi"
	"github.com/teleivo/lexi/lsp/internal/rpc"
	"github.com/teleivo/lexi/lsp/internal/source"
)

// Compute returns diagnostics for the lexical errors of the given scan result. A diagnostic
// covers the lexeme of its error.
func Compute(f *source.File, result lexi.Result, uri rpc.DocumentURI, version int32) rpc.PublishDiagnosticsParams {
	params := rpc.PublishDiagnosticsParams{
		URI:     uri,
		Version: &version,
	}
	sev := rpc.SeverityError
	params.Diagnostics = make([]rpc.Diagnostic, len(result.Errors))
	for i, err := range result.Errors {
		msg := err.Reason
		if err.Hint != "" {
			msg += ", " + err.Hint
		}
		params.Diagnostics[i] = rpc.Diagnostic{
			Range:    f.Range(err.Pos, source.End(err.Pos, err.Lexeme)),
			Severity: &sev,
			Code:     err.Kind.String(),
			Source:   "lexi",
			Message:  msg,
		}
	}

	return params
}
