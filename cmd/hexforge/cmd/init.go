/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/fwtools/hexforge/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration",
	Long: `Write a hexforge configuration file with a freshly generated
API key. The file lands at the path given with --config, or at the
OS-specific default location.

Examples:
  hexforge init
  hexforge init --config ./hexforge.yaml
  hexforge init --force`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip the root command's config loading: init writes the config
		// file, so a broken one must not block it.
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		force, _ := cmd.Flags().GetBool("force")

		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		if config.ConfigExists(configPath) && !force {
			cmd.Printf("Config already exists at %s. Use --force to overwrite.\n", configPath)
			return
		}

		cmd.Printf("🔧 Bootstrapping hexforge configuration...\n")

		cfg, err := config.BootstrapConfig(configPath)
		if err != nil {
			cmd.Printf("Error bootstrapping config: %v\n", err)
			os.Exit(1)
		}

		cmd.Printf("✅ Configuration created at %s\n", configPath)
		cmd.Printf("🔑 API key: %s\n", cfg.Security.APIKey)
		cmd.Printf("\nYou can now start the server with:\n")
		cmd.Printf("  hexforge serve --config %s\n", configPath)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration")
}
