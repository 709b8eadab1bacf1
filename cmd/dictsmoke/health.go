package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aelexs/dictsmoke/internal/auth"
	"github.com/aelexs/dictsmoke/internal/domain"
	"github.com/aelexs/dictsmoke/internal/lifecycle"
)

func newHealthCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the dictionary service health endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.lifecycle(cmd, nil, func(ctx context.Context, app *lifecycle.App) error {
				return runHealth(ctx, newDeps(app, c))
			})
		},
	}
}

// runHealth needs no token: the endpoint is unauthenticated and an empty
// session sends no Authorization header.
func runHealth(ctx context.Context, d *deps) error {
	client, err := d.dictClient(auth.NewSession())
	if err != nil {
		return err
	}

	h, err := client.Health(ctx)
	if err != nil {
		return err
	}
	if h.Status != "OK" {
		return fmt.Errorf("%w: %s reports status %q", domain.ErrCheckFailed, client.BaseURL(), h.Status)
	}

	fmt.Fprintf(d.cli.stdout, "%s: %s\n", client.BaseURL(), h.Status)
	return nil
}
