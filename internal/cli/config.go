package cli

import (
	"github.com/spf13/cobra"
)

// configCommand prints the effective layout constants as TOML. The output
// is a valid --config file.
func (c *CLI) configCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective layout constants",
		Long: `Print the effective layout constants as TOML.

Without --config the built-in defaults are printed. Save the output, edit the
values you want to change, and pass the file to 'layout --config'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(path)
			if err != nil {
				return err
			}
			return cfg.Encode(cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&path, "config", "", "TOML file to overlay on the defaults")
	return cmd
}
