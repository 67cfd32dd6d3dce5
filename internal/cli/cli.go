// Package cli implements the bpmnlayout command-line interface.
//
// # Commands
//
//   - layout: position a diagram tree read from JSON or YAML
//   - serve: run the HTTP layout API
//   - cache: manage the local result cache
//   - config: print the effective layout constants
//   - completion: generate shell completion scripts
//
// All commands accept --verbose (-v), which switches to debug logging and
// reports engine and stage timings, and --log-format. The logger travels
// through the command context.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bpmnlayout/pkg/buildinfo"
	"github.com/matzehuels/bpmnlayout/pkg/cache"
	"github.com/matzehuels/bpmnlayout/pkg/config"
	"github.com/matzehuels/bpmnlayout/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is used for directories and display.
const appName = "bpmnlayout"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	verbose   bool
	logFormat string
}

// New creates a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), logFormat: formatText}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// Execute builds the command tree and runs it with ctx.
func (c *CLI) Execute(ctx context.Context) error {
	return c.RootCommand().ExecuteContext(ctx)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "bpmnlayout positions BPMN diagrams",
		Long: `bpmnlayout computes a complete layout for BPMN process diagrams: node
positions, lane and pool bounds, and orthogonal edge routes.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setLogFormat(c.Logger, c.logFormat); err != nil {
				return err
			}
			if c.verbose {
				c.SetLogLevel(LogDebug)
				registerLogHooks(c.Logger)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.logFormat, "log-format", formatText, "log format: text, json, logfmt")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the cache at url. An empty
// url selects the local file cache; noCache disables caching.
func (c *CLI) newRunner(ctx context.Context, url string, noCache bool) (*pipeline.Runner, error) {
	store, err := c.openCache(ctx, url, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

func (c *CLI) openCache(ctx context.Context, url string, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if url == "" {
		dir, err := cacheDir()
		if err != nil {
			printWarning("No cache directory (%v), caching disabled", err)
			return cache.NewNullCache(), nil
		}
		url = dir
	}
	return cache.Open(ctx, url)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/bpmnlayout/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// loadConfig reads the layout constants from path, or the defaults when
// path is empty.
func loadConfig(path string) (*config.Layout, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// parseOptions turns repeated key=value flags into a layout option map.
func parseOptions(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid option %q (want key=value)", p)
		}
		out[k] = strings.TrimSpace(v)
	}
	return out, nil
}
