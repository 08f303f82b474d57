package main

import (
	"github.com/spf13/cobra"
)

func scenarioCmd() *cobra.Command {
	var flags scenarioFlags

	c := &cobra.Command{
		Use:   "scenario",
		Short: "Print the effective benchmark scenario as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			scenario, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			raw, err := scenario.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(raw)
			return err
		},
	}

	flags.register(c)
	return c
}
