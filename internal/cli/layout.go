package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bpmnlayout/pkg/io"
	"github.com/matzehuels/bpmnlayout/pkg/pipeline"
)

// layoutFlags holds the layout command's flag values.
type layoutFlags struct {
	output     string
	format     string
	configPath string
	options    []string
	absolute   bool
	noCache    bool
	cacheURL   string
}

// layoutCommand creates the layout command for positioning a diagram tree.
func (c *CLI) layoutCommand() *cobra.Command {
	var flags layoutFlags
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [tree.json]",
		Short: "Compute a complete layout for a BPMN diagram tree",
		Long: `Compute a complete layout for a BPMN diagram tree.

The layout command reads a diagram tree in JSON or YAML, runs the base layout
engine, then places boundary events, artifacts, groups, lanes and pools and
routes every edge. The positioned tree is written in the same format unless
--format says otherwise. Use "-o -" to write to standard output.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (default: <input>.layout.<ext>)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "output format: json, yaml (default: from output extension)")
	cmd.Flags().StringVar(&flags.configPath, "config", "", "TOML file overriding layout constants")
	cmd.Flags().StringArrayVar(&flags.options, "option", nil, "layout option key=value (repeatable)")
	cmd.Flags().BoolVar(&flags.absolute, "absolute", false, "also emit every route in diagram coordinates")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&flags.cacheURL, "cache", "", "cache location: directory, redis:// or mongodb:// URL")

	cmd.Flags().StringVarP(&opts.Engine, "engine", "e", pipeline.DefaultEngine,
		"base layout engine: "+strings.Join(pipeline.EngineNames(), ", "))
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when a cached result exists")
	cmd.Flags().BoolVar(&opts.Debug, "debug", false, "log every placement stage")

	_ = cmd.RegisterFlagCompletionFunc("engine", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return pipeline.EngineNames(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{string(io.FormatJSON), string(io.FormatYAML)}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// runLayout loads the tree, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, flags layoutFlags) error {
	logger := loggerFromContext(ctx)

	layoutOpts, err := parseOptions(flags.options)
	if err != nil {
		return err
	}
	opts.LayoutOptions = layoutOpts

	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		return err
	}
	opts.Layout = cfg
	opts.Logger = logger

	format, err := outputFormat(flags.format, flags.output, input)
	if err != nil {
		return err
	}
	outputPath := outputPath(flags.output, input, format)
	toStdout := outputPath == "-"

	prog := newProgress(logger)
	tree, err := pipeline.Load(input)
	if err != nil {
		return fmt.Errorf("load tree %s: %w", input, err)
	}
	prog.done("Loaded " + input)

	runner, err := c.newRunner(ctx, flags.cacheURL, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing %s layout...", opts.Engine))
	if !toStdout {
		spinner.Start()
	}

	res, err := runner.Execute(ctx, tree, opts)
	if !toStdout {
		if err != nil {
			spinner.StopWithError("Layout failed")
		} else {
			spinner.Stop()
		}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}

	if toStdout {
		return pipeline.WriteResult(os.Stdout, res, format, flags.absolute)
	}
	if err := writeResultFile(outputPath, res, format, flags.absolute); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(res.Stats.Nodes, res.Stats.Edges, res.Stats.LayoutTime, res.CacheHit)
	return nil
}

func writeResultFile(path string, res *pipeline.Result, f io.Format, absolute bool) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := pipeline.WriteResult(out, res, f, absolute); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// outputFormat resolves the --format flag, falling back to the output
// extension and then to the input extension.
func outputFormat(flag, output, input string) (io.Format, error) {
	switch strings.ToLower(flag) {
	case "":
	case "json":
		return io.FormatJSON, nil
	case "yaml", "yml":
		return io.FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q (must be json or yaml)", flag)
	}
	if output != "" && output != "-" {
		return io.FormatOf(output), nil
	}
	return io.FormatOf(input), nil
}

// outputPath returns the output file, deriving <input>.layout.<ext> when
// none was given.
func outputPath(output, input string, f io.Format) string {
	if output != "" {
		return output
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + ".layout." + string(f)
}
