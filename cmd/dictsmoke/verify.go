package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aelexs/dictsmoke/internal/auth"
	"github.com/aelexs/dictsmoke/internal/domain"
	"github.com/aelexs/dictsmoke/internal/lifecycle"
)

func newVerifyCmd(c *cli) *cobra.Command {
	var publicKeyFile string

	cmd := &cobra.Command{
		Use:   "verify <token>",
		Short: "Verify a token's signature, expiry and scopes",
		Long: `Verify an RS256 token. The public key comes from --public-key, else from
the SSM parameter named by PUBLIC_KEY_PARAMETER, else from the configured
signing key. A leading "Bearer " is ignored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var publicPEM []byte
			if publicKeyFile != "" {
				b, err := os.ReadFile(publicKeyFile)
				if err != nil {
					return fmt.Errorf("read public key: %w", err)
				}
				publicPEM = b
			}
			return c.lifecycle(cmd, nil, func(ctx context.Context, app *lifecycle.App) error {
				return runVerify(ctx, newDeps(app, c), args[0], publicPEM)
			})
		},
	}

	cmd.Flags().StringVar(&publicKeyFile, "public-key", "", "PEM file holding the verification public key")
	return cmd
}

func runVerify(ctx context.Context, d *deps, token string, publicPEM []byte) error {
	keys, err := d.verificationKeys(ctx, publicPEM)
	if err != nil {
		return err
	}

	validator := auth.NewValidator(auth.ValidatorConfig{Keys: keys, Clock: d.clock})
	claims, err := validator.Validate(strings.TrimPrefix(strings.TrimSpace(token), domain.BearerPrefix))
	if err != nil {
		return err
	}

	out := d.cli.stdout
	fmt.Fprintln(out, "token valid")
	fmt.Fprintf(out, "  username:   %s\n", claims.Username)
	fmt.Fprintf(out, "  scopes:     %s\n", strings.Join(claims.Scopes, ","))
	if claims.IssuedAt != nil {
		fmt.Fprintf(out, "  issued at:  %s\n", claims.IssuedAt.UTC().Format(time.RFC3339))
	}
	if claims.ExpiresAt != nil {
		fmt.Fprintf(out, "  expires at: %s\n", claims.ExpiresAt.UTC().Format(time.RFC3339))
	}
	return nil
}
