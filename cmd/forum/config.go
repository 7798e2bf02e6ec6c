package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"forum/internal/config"
)

func (c *cli) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect forum configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration as YAML",
		Long: `Print the configuration after defaults, the config file and FORUM_*
environment variables have been applied.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(c.v)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	})
	return cmd
}
