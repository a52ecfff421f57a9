package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/talgya/collegesim/internal/config"
)

func newParamsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "params",
		Short: "Print the parameters a run would use, as YAML",
		Long: `Print the default parameters, overlaid with --config if given. The
output is a valid --config file and a starting point for experiments.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := config.Default()
			if path, _ := cmd.Flags().GetString("config"); path != "" {
				loaded, err := config.Load(path)
				if err != nil {
					return err
				}
				p = loaded
			}
			data, err := yaml.Marshal(p)
			if err != nil {
				return fmt.Errorf("marshal params: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
