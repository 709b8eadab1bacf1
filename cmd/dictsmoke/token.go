package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/aelexs/dictsmoke/internal/auth"
	"github.com/aelexs/dictsmoke/internal/config"
	"github.com/aelexs/dictsmoke/internal/domain"
	"github.com/aelexs/dictsmoke/internal/lifecycle"
	"github.com/aelexs/dictsmoke/internal/observability"
)

func newTokenCmd(c *cli) *cobra.Command {
	var (
		mode   string
		header bool
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a bearer token for the dictionary service",
		Long: `Print a bearer token. In local mode a short-lived admin token is signed
with the configured RSA key; in remote mode credentials are exchanged at the
auth service login endpoint.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configure := func(cfg *config.Config) error {
				if cmd.Flags().Changed("mode") {
					cfg.Auth.Mode = config.AuthMode(mode)
				}
				return nil
			}
			return c.lifecycle(cmd, configure, func(ctx context.Context, app *lifecycle.App) error {
				return runToken(ctx, newDeps(app, c), header)
			})
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "token mode: local or remote (overrides AUTH_MODE)")
	cmd.Flags().BoolVar(&header, "header", false, "print the full Authorization header line")
	return cmd
}

func runToken(ctx context.Context, d *deps, header bool) error {
	provider, cleanup, err := d.tokenProvider(ctx)
	defer cleanup()
	if err != nil {
		return err
	}

	session := auth.NewSession()
	if err := provider.RefreshSession(ctx, session); err != nil {
		return err
	}

	observability.LoggerFromContext(ctx).Info("token obtained",
		slog.String("mode", string(provider.Mode())),
		slog.String("jwt_prefix", observability.MaskToken(bearer(session))),
		slog.Time("expires_at", session.ExpiresAt().Truncate(time.Second)),
	)

	if header {
		fmt.Fprintf(d.cli.stdout, "%s: %s\n", domain.AuthorizationHeader, session.Authorization())
		return nil
	}
	fmt.Fprintln(d.cli.stdout, bearer(session))
	return nil
}

// bearer returns the raw token held by session.
func bearer(s *auth.Session) string {
	tok, err := s.Token()
	if err != nil {
		return ""
	}
	return tok.AccessToken
}
