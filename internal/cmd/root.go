package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lthummus/qlock/internal/config"
)

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(soakCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
}

var rootCmd = &cobra.Command{
	Use:   "qlock",
	Short: "qlock exercises queue-based reentrant locks",
	Long: "qlock runs the CLH and MCS queue locks through a counter stress test. Each worker " +
		"takes the lock, increments a shared counter and re-enters the lock several times " +
		"before unwinding.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		err := config.Init()
		if err != nil {
			var configFileNotFoundError viper.ConfigFileNotFoundError
			if !errors.As(err, &configFileNotFoundError) {
				return err
			}
		}

		if problems := config.ValidateConfig(); len(problems) > 0 {
			for _, curr := range problems {
				log.Error().Str("problem", curr).Msg("invalid configuration")
			}
			return fmt.Errorf("qlock: found %d configuration problems", len(problems))
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err.Error())
		os.Exit(1)
	}
}
