package main

import (
	"github.com/spf13/cobra"

	"github.com/krazyTry/launchpad-go/config"
)

const flagConfig = "config"

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "launchpad",
		Short:        "Bonding curve launchpad tools",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().String(flagConfig, "", "path to a TOML config file")

	cmd.AddCommand(
		NewQuoteCmd(),
		NewSimulateCmd(),
	)
	return cmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString(flagConfig)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
