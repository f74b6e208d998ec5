package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lthummus/qlock/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "print the effective configuration as YAML",
	Long: "prints every setting, including defaults, as YAML. The output can be used as a " +
		"starting point for qlock.yaml.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return config.WriteCurrentConfigState(cmd.OutOrStdout())
	},
}
