package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/strager/scft/analysis"
	"github.com/strager/scft/config"
	"github.com/strager/scft/diag"
	"github.com/strager/scft/source"
	"github.com/strager/scft/syntax"
)

// errDiagnostics means the report has already been printed and contained
// at least one error.
var errDiagnostics = errors.New("compilation failed")

// Long flags that used to be spelled with a single dash.
var legacyFlags = []string{"dump-ast", "src", "dw-semi-colons", "analyze"}

// normalizeLegacyFlags rewrites "-dump-ast" style flags to "--dump-ast"
// so the flag parser does not read them as bundled shorthands.
func normalizeLegacyFlags(args []string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		out[i] = arg
		for _, name := range legacyFlags {
			if arg == "-"+name || strings.HasPrefix(arg, "-"+name+"=") {
				out[i] = "-" + arg
				break
			}
		}
	}
	return out
}

// newRootCmd builds the command tree. Output goes to stdout and logs to
// stderr.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	flagCfg := config.Default()
	var configPath string

	root := &cobra.Command{
		Use:   "scft <file>",
		Short: "Parse a source file and report diagnostics",
		Long: `scft lexes and parses a source file, prints every diagnostic with its
source context and, when there are no errors, the requested dumps.

Examples:
    scft main.scft
    scft --dump-ast -v main.scft
    scft --config scft.toml main.scft
    scft eval 'x: Int = 1 + 2'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := mergeConfig(cmd, configPath, flagCfg)
			if err != nil {
				return err
			}
			src, err := source.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read source: %w", err)
			}
			return compile(src, cfg, newLogger(stderr, cfg), stdout)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "TOML or YAML config file")
	flags.BoolVar(&flagCfg.Output.DumpAST, "dump-ast", flagCfg.Output.DumpAST, "print the syntax tree as an s-expression")
	flags.BoolVarP(&flagCfg.Output.Verbose, "verbose", "v", flagCfg.Output.Verbose, "include spans in the tree dump and log debug output")
	flags.BoolVar(&flagCfg.Output.PrintSource, "src", flagCfg.Output.PrintSource, "print the parsed program as source")
	flags.BoolVar(&flagCfg.Output.Analyze, "analyze", flagCfg.Output.Analyze, "print the flattened instruction listing")
	flags.BoolVar(&flagCfg.Parse.SuppressSemicolonWarnings, "dw-semi-colons", flagCfg.Parse.SuppressSemicolonWarnings, "don't warn about unnecessary semicolons")
	flags.StringVar(&flagCfg.Output.Color, "color", flagCfg.Output.Color, "color the report: auto, always or never")

	root.AddCommand(&cobra.Command{
		Use:   "eval <code>",
		Short: "Parse inline code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := mergeConfig(cmd, configPath, flagCfg)
			if err != nil {
				return err
			}
			return compile(source.New("<eval>", args[0]), cfg, newLogger(stderr, cfg), stdout)
		},
	})

	root.SetOut(stdout)
	root.SetErr(stderr)
	return root
}

// mergeConfig layers defaults, the config file and the flags the user
// actually passed, in that order.
func mergeConfig(cmd *cobra.Command, path string, fromFlags config.Config) (config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dump-ast") {
		cfg.Output.DumpAST = fromFlags.Output.DumpAST
	}
	if flags.Changed("verbose") {
		cfg.Output.Verbose = fromFlags.Output.Verbose
	}
	if flags.Changed("src") {
		cfg.Output.PrintSource = fromFlags.Output.PrintSource
	}
	if flags.Changed("analyze") {
		cfg.Output.Analyze = fromFlags.Output.Analyze
	}
	if flags.Changed("dw-semi-colons") {
		cfg.Parse.SuppressSemicolonWarnings = fromFlags.Parse.SuppressSemicolonWarnings
	}
	if flags.Changed("color") {
		cfg.Output.Color = fromFlags.Output.Color
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg config.Config) *slog.Logger {
	level := slog.LevelWarn
	if cfg.Output.Verbose {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("run", uuid.NewString())
}

// compile parses src, prints the diagnostics report and then, if there
// were no errors, the dumps selected by cfg.
func compile(src *source.Buffer, cfg config.Config, log *slog.Logger, w io.Writer) error {
	log.Debug("compiling", "path", src.Path, "bytes", src.Len())

	dx := diag.New(src)
	dx.Styler = newStyler(cfg.Output.Color, w)
	prog := syntax.NewParser(src, dx, syntax.Options{
		SuppressSemicolonWarnings: cfg.Parse.SuppressSemicolonWarnings,
		Logger:                    log,
	}).ParseProgram()

	var instrs []analysis.Instr
	if cfg.Output.Analyze && !dx.HasErrors() {
		instrs = analysis.Analyze(prog, dx, analysis.Options{Logger: log})
	}

	fmt.Fprintln(w, dx.Emit())
	if dx.HasErrors() {
		log.Debug("compilation failed", "errors", dx.ErrorCount())
		return errDiagnostics
	}

	if cfg.Output.DumpAST {
		fmt.Fprintln(w, syntax.ToSExpr(prog, cfg.Output.Verbose))
	}
	if cfg.Output.PrintSource {
		fmt.Fprint(w, syntax.SourceString(prog))
	}
	if cfg.Output.Analyze {
		fmt.Fprint(w, analysis.Listing(instrs))
	}
	return nil
}

// run executes the CLI and returns the process exit status.
func run(args []string, stdout, stderr io.Writer) (status int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(stderr, "internal error: %v\n", r)
			status = 1
		}
	}()

	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(normalizeLegacyFlags(args))
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errDiagnostics) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}
