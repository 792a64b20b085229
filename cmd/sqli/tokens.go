package main

import (
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	libinjection "github.com/jptosso/libinjection-sqli"
)

type tokenView struct {
	Type  string
	Pos   int
	Len   int
	Value string
}

type tokenDump struct {
	Input       string
	Tokens      []tokenView
	Folded      []tokenView
	Fingerprint string
	Result      libinjection.Result
}

func viewTokens(toks []libinjection.Token) []tokenView {
	out := make([]tokenView, 0, len(toks))
	for _, t := range toks {
		out = append(out, tokenView{Type: string(t.Type), Pos: t.Pos, Len: t.Len, Value: t.Val})
	}
	return out
}

// dumpTokens tokenizes input as-is in the configured dialect and folds it.
func dumpTokens(input string, opts libinjection.Options, d *libinjection.Detector) tokenDump {
	flags := libinjection.FLAG_QUOTE_NONE | libinjection.FLAG_SQL_ANSI
	if opts.Dialect == libinjection.DialectMySQL {
		flags = libinjection.FLAG_QUOTE_NONE | libinjection.FLAG_SQL_MYSQL
	}

	tz := libinjection.NewTokenizer(input, flags, opts)
	var toks []libinjection.Token
	for {
		tok, ok := tz.Next()
		if !ok {
			break
		}
		toks = append(toks, tok)
	}

	return tokenDump{
		Input:       input,
		Tokens:      viewTokens(toks),
		Folded:      viewTokens(libinjection.Fold(toks, opts.FingerprintLen)),
		Fingerprint: libinjection.Fingerprint([]byte(input), flags, opts),
		Result:      d.Classify([]byte(input)),
	}
}

func newTokensCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tokens INPUT...",
		Short: "Print the raw and folded tokens of each input",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := a.load(cmd)
			if err != nil {
				return err
			}
			d, _, err := a.detector(cfg)
			if err != nil {
				return err
			}

			printer := pp.New()
			printer.SetOutput(cmd.OutOrStdout())
			printer.SetColoringEnabled(false)
			for _, arg := range args {
				if _, err := printer.Println(dumpTokens(arg, cfg.Options(), d)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
