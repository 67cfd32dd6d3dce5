package cli

import (
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bpmnlayout/internal/server"
)

// serveCommand creates the serve command that runs the HTTP layout API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		cacheURL   string
		noCache    bool
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP layout API",
		Long: `Run the HTTP layout API.

POST a diagram tree to /v1/layout to receive the positioned tree. The cache
may be a local directory or a shared redis:// or mongodb:// store, so several
servers can share results.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, cacheURL, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := server.New(runner, cfg, c.Logger)
			if err := srv.ListenAndServe(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&cacheURL, "cache", "", "cache location: directory, redis:// or mongodb:// URL")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&configPath, "config", "", "TOML file overriding layout constants")

	return cmd
}
