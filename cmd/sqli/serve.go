package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	libinjection "github.com/jptosso/libinjection-sqli"
	"github.com/jptosso/libinjection-sqli/internal/server"
)

func newNormalizeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize INPUT...",
		Short: "Print the normalized form of each input",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := a.load(cmd)
			if err != nil {
				return err
			}
			for _, arg := range args {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", libinjection.Normalize([]byte(arg), cfg.Options()))
			}
			return nil
		},
	}
}

func newServeCmd(a *app) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the detector over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := a.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				cfg.ListenAddr = listen
			}

			reg, err := cfg.Registry()
			if err != nil {
				return err
			}
			srv, err := server.New(reg, cfg.Options(), server.Options{
				Addr:            cfg.ListenAddr,
				RateLimit:       cfg.RateLimit,
				MaxBodyBytes:    cfg.MaxBodyBytes,
				ShutdownTimeout: cfg.ShutdownTimeout,
			}, logger)
			if err != nil {
				return err
			}

			logger.WithFields(logrus.Fields{
				"version": version,
				"commit":  gitCommit,
				"sets":    reg.Names(),
				"dialect": cfg.Dialect,
			}).Info("Starting SQL injection detector")

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if err := srv.Run(ctx); err != nil {
				return err
			}
			logger.Info("Shutdown complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&listen, "listen", ":8080", "listen address")
	return cmd
}
