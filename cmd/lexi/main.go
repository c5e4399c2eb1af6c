// Command lexi scans source files of the lexi language and reports tokens, comments, lexical
// errors, statistics and the symbol table. It also provides a file watcher and a language server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/teleivo/lexi"
	"github.com/teleivo/lexi/internal/version"
	"github.com/teleivo/lexi/lsp"
	"github.com/teleivo/lexi/report"
	"github.com/teleivo/lexi/token"
	"github.com/teleivo/lexi/watch"
)

// errLexical is returned by scan --fail-on-error if the input has lexical errors.
var errLexical = errors.New("lexical errors found")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errLexical) {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, r io.Reader, w io.Writer, wErr io.Writer) error {
	cmd := newRootCmd(r, w, wErr)
	cmd.SetArgs(args[1:])
	return cmd.ExecuteContext(ctx)
}

func newRootCmd(r io.Reader, w io.Writer, wErr io.Writer) *cobra.Command {
	var debug bool

	rootCmd := &cobra.Command{
		Use:           "lexi",
		Short:         "lexi is a tool for scanning lexi source files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetIn(r)
	rootCmd.SetOut(w)
	rootCmd.SetErr(wErr)
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		newScanCmd(&debug),
		newTokensCmd(),
		newWatchCmd(&debug),
		newLSPCmd(&debug),
		newVersionCmd(),
	)
	return rootCmd
}

func newScanCmd(debug *bool) *cobra.Command {
	var (
		format      string
		failOnError bool
		cpuProfile  string
		memProfile  string
	)

	cmd := &cobra.Command{
		Use:   "scan [file]",
		Short: "Scan a file or stdin and print a report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ft, err := report.NewFormat(format)
			if err != nil {
				return fmt.Errorf("failed to convert --format=%q: %v", format, err)
			}

			return profile(func() error {
				src, err := readInput(cmd, args)
				if err != nil {
					return err
				}

				logger := newLogger(cmd.ErrOrStderr(), *debug)
				result := lexi.Scan(src, lexi.WithLogger(logger))
				if err := report.Write(cmd.OutOrStdout(), result, ft); err != nil {
					return fmt.Errorf("error writing report: %v", err)
				}

				if failOnError && result.HasErrors() {
					_, _ = fmt.Fprintln(cmd.ErrOrStderr(), report.Summary(result))
					return errLexical
				}
				return nil
			}, cpuProfile, memProfile)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "Print the report as 'text', 'json' or 'cbor'")
	cmd.Flags().BoolVar(&failOnError, "fail-on-error", false, "Exit with status 1 if the input has lexical errors")
	cmd.Flags().StringVar(&cpuProfile, "cpuprofile", "", "write cpu profile to `file`")
	cmd.Flags().StringVar(&memProfile, "memprofile", "", "write memory profile to `file`")
	return cmd
}

func newTokensCmd() *cobra.Command {
	var (
		cpuProfile string
		memProfile string
	)

	cmd := &cobra.Command{
		Use:   "tokens [file]",
		Short: "Print tokens and lexical errors in source order",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return profile(func() error {
				src, err := readInput(cmd, args)
				if err != nil {
					return err
				}
				return writeTokens(cmd.OutOrStdout(), lexi.Scan(src))
			}, cpuProfile, memProfile)
		},
	}
	cmd.Flags().StringVar(&cpuProfile, "cpuprofile", "", "write cpu profile to `file`")
	cmd.Flags().StringVar(&memProfile, "memprofile", "", "write memory profile to `file`")
	return cmd
}

// writeTokens writes the tokens of result interleaved with its lexical errors as ERROR rows.
func writeTokens(w io.Writer, result lexi.Result) (err error) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer func() {
		if ferr := tw.Flush(); ferr != nil && err == nil {
			err = fmt.Errorf("error flushing output: %v", ferr)
		}
	}()

	_, _ = fmt.Fprintf(tw, "POSITION\tTYPE\tLITERAL\tERROR\n")

	tokens, errs := result.Tokens, result.Errors
	for len(tokens) > 0 || len(errs) > 0 {
		if len(errs) > 0 && (len(tokens) == 0 || errs[0].Pos.Before(tokens[0].Start)) {
			e := errs[0]
			errs = errs[1:]
			msg := e.Kind.String() + ": " + e.Reason
			if e.Hint != "" {
				msg += ", " + e.Hint
			}
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%q\t%s\n", e.Pos, token.ERROR, e.Lexeme, msg)
			continue
		}

		tok := tokens[0]
		tokens = tokens[1:]
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t\n", report.Span(tok.Start, tok.End), tok.Type, report.Literal(tok))
	}

	return nil
}

func newWatchCmd(debug *bool) *cobra.Command {
	var (
		format string
		port   string
	)

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Scan a file every time it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ft, err := report.NewFormat(format)
			if err != nil {
				return fmt.Errorf("failed to convert --format=%q: %v", format, err)
			}

			wa, err := watch.New(watch.Config{
				File:   args[0],
				Port:   port,
				Format: ft,
				Debug:  *debug,
				Stdout: cmd.OutOrStdout(),
				Stderr: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			return wa.Watch(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "Print reports as 'text', 'json' or 'cbor'")
	cmd.Flags().StringVar(&port, "port", "", "Serve the latest report via HTTP on this port, '0' picks a random port")
	return cmd
}

func newLSPCmd(debug *bool) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the language server on stdin and stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := lsp.Config{
				Debug: *debug,
				In:    cmd.InOrStdin(),
				Out:   cmd.OutOrStdout(),
			}
			if logFile != "" {
				f, err := os.Create(logFile)
				if err != nil {
					return fmt.Errorf("failed to create log file: %v", err)
				}
				defer func() { _ = f.Close() }()
				cfg.Log = f
			}

			srv, err := lsp.New(cfg)
			if err != nil {
				return err
			}
			return srv.Start(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&logFile, "log", "", "write logs to `file`")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "lexi", version.Version())
			return err
		},
	}
}

// readInput reads the file named by the first argument or stdin if there is none or it is "-".
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		src, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("error reading stdin: %v", err)
		}
		return src, nil
	}

	src, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("error reading file: %v", err)
	}
	return src, nil
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func profile(fn func() error, cpuProfile, memProfile string) error {
	if cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %v", err)
		}
		defer func() { _ = f.Close() }()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("could not start CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()
	}

	err := fn()
	if err != nil {
		return err
	}

	if memProfile != "" {
		f, err := os.Create(memProfile)
		if err != nil {
			return fmt.Errorf("could not create memory profile: %v", err)
		}
		defer func() { _ = f.Close() }()
		runtime.GC() // materialize all statistics
		if err := pprof.WriteHeapProfile(f); err != nil {
			return fmt.Errorf("could not write memory profile: %v", err)
		}
	}

	return nil
}
