package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github/chapool/wallet-bridge/cmd/env"
	"github/chapool/wallet-bridge/cmd/ledger"
	"github/chapool/wallet-bridge/cmd/probe"
	"github/chapool/wallet-bridge/cmd/server"
	"github/chapool/wallet-bridge/internal/config"
)

const (
	configFlag string = "config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Version: config.GetFormattedBuildArgs(),
	Use:     "app",
	Short:   config.ModuleName,
	Long: fmt.Sprintf(`%v

Bridges transactions between this service, an external wallet that signs them
and the ledger RPC endpoint they are submitted to.
Requires configuration through ENV.`, config.ModuleName),
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		path, err := cmd.Flags().GetString(configFlag)
		if err != nil || path == "" {
			return err //nolint:wrapcheck
		}

		// keys in the file use the ENV names, ENV still wins over the file
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %q: %w", path, err)
		}

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	rootCmd.PersistentFlags().String(configFlag, "", "Optional config file (yaml, json, toml or dotenv) using the ENV variable names as keys.")

	// attach the subcommands
	rootCmd.AddCommand(
		env.New(),
		ledger.New(),
		probe.New(),
		server.New(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Failed to execute root command")
		os.Exit(1)
	}
}
