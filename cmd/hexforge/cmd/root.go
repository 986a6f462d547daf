/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fwtools/hexforge/pkg/config"
	"github.com/fwtools/hexforge/pkg/di"
)

// container holds the dependencies injected by main
var container *di.Container

// SetContainer injects the dependency container used by commands
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hexforge",
	Short: "HexForge - Firmware Image Toolkit",
	Long: `HexForge inspects, converts, relocates, merges and searches
firmware images held as sparse 32-bit address spaces. Intel HEX and
raw binary are understood on both ends.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}
		cfg := config.DefaultConfig()
		if config.ConfigExists(configPath) {
			loaded, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg = loaded
		}
		// Store in command context
		cmd.SetContext(context.WithValue(cmd.Context(), "config", cfg))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global config file flag
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to config file (default: OS-specific location)")
}

// configFromContext returns the configuration loaded by the root
// command, falling back to defaults when the context carries none.
func configFromContext(cmd *cobra.Command) *config.Config {
	if cfg, ok := cmd.Context().Value("config").(*config.Config); ok {
		return cfg
	}
	return config.DefaultConfig()
}
