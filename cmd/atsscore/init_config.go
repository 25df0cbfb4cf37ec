package main

import (
	"fmt"

	"ats-score-go/internal/config"

	"github.com/spf13/cobra"
)

func newInitConfigCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write a sample config file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.CreateSampleConfig(out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sample config written to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "config.yaml", "output path")
	return cmd
}
