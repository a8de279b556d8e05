package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/svnbridge/internal/ctxutil"
)

func addConfigCommand(parent *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect svnbridge configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		Long: `Display the configuration after merging, highest precedence first:
  - SVNBRIDGE_* environment variables
  - .svnbridge/config.yaml in the current directory
  - ~/.svnbridge/config.yaml
  - built-in defaults

Passwords are never stored in config; svn.password_env_var names the
environment variable that holds one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd.Context(), a, cmd.OutOrStdout())
		},
	})
	parent.AddCommand(cmd)
}

func runConfigShow(ctx context.Context, a *app, w io.Writer) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	out := a.output(w)
	svc, err := a.services(ctx, w)
	if err != nil {
		return err
	}

	if out.IsJSON() {
		return out.JSON(svc.cfg)
	}

	data, err := yaml.Marshal(svc.cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	_, err = w.Write(data)
	return err
}
