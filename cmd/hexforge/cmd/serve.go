/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/fwtools/hexforge/pkg/api"
	"github.com/fwtools/hexforge/pkg/config"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the hexforge REST API server. Uploaded images live in
memory for the lifetime of the process; every endpoint under /api/v1
requires the X-API-Key header.

Flags override the loaded configuration.

Examples:
  hexforge serve
  hexforge serve --port 9090 --bind 0.0.0.0
  hexforge serve --api-key mysecretkey`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := configFromContext(cmd)

		if cmd.Flags().Changed("port") {
			cfg.Listen.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("bind") {
			cfg.Listen.Bind, _ = cmd.Flags().GetString("bind")
		}
		if cmd.Flags().Changed("api-key") {
			cfg.Security.APIKey, _ = cmd.Flags().GetString("api-key")
		}

		// "auto" means a fresh key on every start.
		if cfg.Security.APIKey == "" || cfg.Security.APIKey == "auto" {
			key, err := config.GenerateAPIKey()
			if err != nil {
				cmd.Printf("Error generating API key: %v\n", err)
				os.Exit(1)
			}
			cfg.Security.APIKey = key
			cmd.Printf("🔑 Generated API key: %s\n", key)
		}

		if container == nil {
			cmd.Printf("Error: dependency container not initialized\n")
			os.Exit(1)
		}

		registry := api.NewRegistry(cfg.Service.MaxImageBytes)
		defer registry.Close()

		serverConfig := api.ServerConfig{
			Port:          cfg.Listen.Port,
			Bind:          cfg.Listen.Bind,
			APIKey:        cfg.Security.APIKey,
			MaxImageBytes: cfg.Service.MaxImageBytes,
			CORSOrigins:   cfg.Service.CORSOrigins,
			GapFill:       cfg.Defaults.GapFill,
			RecordLength:  cfg.Defaults.RecordLength,
		}

		serverFactory := container.GetServerFactory()
		serverStarter := serverFactory.CreateServerStarter()

		if err := serverStarter.StartServer(registry, serverConfig); err != nil {
			cmd.Printf("Error starting server: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind the server to")
	serveCmd.Flags().String("api-key", "", "API key for client authentication")
}
