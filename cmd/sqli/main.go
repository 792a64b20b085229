package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	libinjection "github.com/jptosso/libinjection-sqli"
	"github.com/jptosso/libinjection-sqli/internal/config"
	"github.com/jptosso/libinjection-sqli/internal/harness"
	"github.com/jptosso/libinjection-sqli/internal/logging"
)

var (
	version   = "1.0.0"
	gitCommit = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app holds the flags shared by every subcommand.
type app struct {
	configPath     string
	logLevel       string
	dialect        string
	maxTokens      int
	fingerprintLen int
	caseSensitive  bool
	set            string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var (
		hopts  harness.Options
		repeat int
		format string
	)

	rootCmd := &cobra.Command{
		Use:   "sqli [flags] [files...]",
		Short: "SQL injection detector",
		Long: `Classifies newline-delimited inputs as SQL injection or safe.

Inputs are read from the given files, or stdin when there are none. Each
line is URL-decoded before classification; empty lines and lines starting
with '#' are skipped. Totals are written to stderr.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, gitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := a.load(cmd)
			if err != nil {
				return err
			}
			d, _, err := a.detector(cfg)
			if err != nil {
				return err
			}
			hopts.MaxLineBytes = cfg.MaxLineBytes
			return runHarness(cmd, d, hopts, args, repeat, format, logger)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "log level")
	rootCmd.PersistentFlags().StringVar(&a.dialect, "dialect", "auto", "SQL dialect: auto, ansi or mysql")
	rootCmd.PersistentFlags().IntVar(&a.maxTokens, "max-tokens", libinjection.DefaultMaxTokens, "maximum tokens scanned per input")
	rootCmd.PersistentFlags().IntVar(&a.fingerprintLen, "fingerprint-len", libinjection.DefaultFingerprintLen, "folded tokens kept in a fingerprint")
	rootCmd.PersistentFlags().BoolVar(&a.caseSensitive, "case-sensitive", false, "match keywords case-sensitively")
	rootCmd.PersistentFlags().StringVar(&a.set, "set", libinjection.DefaultSet, "pattern set to match against")

	rootCmd.Flags().BoolVarP(&hopts.Invert, "invert", "i", false, "inputs are expected to be safe")
	rootCmd.Flags().BoolVarP(&hopts.XML, "xml", "x", false, "report failures as XML")
	rootCmd.Flags().BoolVarP(&hopts.Quiet, "quiet", "q", false, "print nothing")
	rootCmd.Flags().BoolVarP(&hopts.OnlyPositives, "only-positives", "t", false, "print positive results only (negatives too with -i)")
	rootCmd.Flags().IntVarP(&repeat, "repeat", "s", 1, "run the input files this many times, 100 when given without a value")
	rootCmd.Flags().Lookup("repeat").NoOptDefVal = "100"
	rootCmd.Flags().StringVar(&format, "format", harness.FormatText, "summary format: text, json or yaml")

	rootCmd.AddCommand(newTokensCmd(a), newNormalizeCmd(a), newServeCmd(a))
	return rootCmd
}

// load reads the configuration, applies the command line overrides and
// builds the logger.
func (a *app) load(cmd *cobra.Command) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("dialect") {
		cfg.Dialect = a.dialect
	}
	if flags.Changed("max-tokens") {
		cfg.MaxTokens = a.maxTokens
	}
	if flags.Changed("fingerprint-len") {
		cfg.FingerprintLen = a.fingerprintLen
	}
	if flags.Changed("case-sensitive") {
		cfg.CaseSensitive = a.caseSensitive
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// detector builds the detector for the selected pattern set.
func (a *app) detector(cfg *config.Config) (*libinjection.Detector, *libinjection.Registry, error) {
	reg, err := cfg.Registry()
	if err != nil {
		return nil, nil, err
	}
	table, err := reg.Get(a.set)
	if err != nil {
		return nil, nil, err
	}
	return libinjection.NewDetector(table, cfg.Options()), reg, nil
}

func runHarness(cmd *cobra.Command, d *libinjection.Detector, opts harness.Options, files []string, repeat int, format string, logger *logrus.Logger) error {
	runner := harness.NewRunner(d, opts, cmd.OutOrStdout(), logger)
	if err := runner.Begin(); err != nil {
		return err
	}

	var (
		tally harness.Tally
		err   error
	)
	if len(files) == 0 {
		in := cmd.InOrStdin()
		if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Reading inputs from stdin, one per line. Press Ctrl-D to finish.")
		}
		tally, err = runner.Run("stdin", in, tally)
	} else {
		tally, err = runner.RunFiles(files, repeat, tally)
	}
	if err != nil {
		return err
	}

	if err := runner.End(); err != nil {
		return err
	}
	if opts.Quiet {
		return nil
	}
	return harness.WriteSummary(cmd.ErrOrStderr(), tally, format)
}
