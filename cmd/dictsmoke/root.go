package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/aelexs/dictsmoke/internal/config"
	"github.com/aelexs/dictsmoke/internal/lifecycle"
)

// globalFlags override environment configuration for every subcommand.
type globalFlags struct {
	logLevel   string
	serviceURL string
	insecure   bool
}

// cli carries what every subcommand needs to run inside the lifecycle.
type cli struct {
	stdout io.Writer
	stderr io.Writer
	flags  globalFlags
	root   *cobra.Command
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "dictsmoke",
		Short: "Session tokens and smoke tests for the dictionary service",
		Long: `dictsmoke issues or fetches bearer tokens for the dictionary service and
runs end-to-end smoke suites against it, writing JUnit reports for CI.

Configuration comes from environment variables (PRIVATE_PEM, INGENIUM_SERVER,
DICT_SERVICE_URL, ...); flags override them.`,
		Version: version,
		// Errors are printed once by run() and mapped to exit codes there.
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate(`{{printf "dictsmoke version %s\n" .Version}}`)

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")
	pf.StringVar(&c.flags.serviceURL, "service-url", "", "dictionary service URL (overrides DICT_SERVICE_URL)")
	pf.BoolVar(&c.flags.insecure, "insecure", false, "skip TLS certificate verification (overrides TLS_INSECURE_SKIP_VERIFY)")

	c.root = root
	root.AddCommand(
		newTokenCmd(c),
		newVerifyCmd(c),
		newHealthCmd(c),
		newSmokeCmd(c),
	)
	return root
}

// lifecycle runs body with loaded config. configure applies command flags
// after the global ones.
func (c *cli) lifecycle(cmd *cobra.Command, configure func(*config.Config) error, body func(context.Context, *lifecycle.App) error) error {
	return lifecycle.Run(cmd.Context(), lifecycle.Params{
		Name:      cmd.Name(),
		Version:   version,
		LogOutput: c.stderr,
		Configure: func(cfg *config.Config) error {
			pf := c.root.PersistentFlags()
			if pf.Changed("log-level") {
				cfg.LogLevel = c.flags.logLevel
			}
			if pf.Changed("service-url") {
				cfg.Service.URL = c.flags.serviceURL
			}
			if pf.Changed("insecure") {
				cfg.HTTP.InsecureSkipVerify = c.flags.insecure
			}
			if configure != nil {
				return configure(cfg)
			}
			return nil
		},
	}, body)
}
