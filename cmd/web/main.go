package main

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/de-tools/energy-atlas/pkg/runtime/bootstrap"
	"github.com/de-tools/energy-atlas/pkg/server"
	"github.com/de-tools/energy-atlas/pkg/services/config"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Energy Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to a YAML config file (environment variables are always read)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("No .env file loaded: %v\n", err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	logger, err := bootstrap.NewLogger(cfg.Log, os.Stdout)
	if err != nil {
		return err
	}
	ctx := logger.WithContext(cmd.Context())
	cmd.SetContext(ctx)

	app := bootstrap.New(cfg)
	if _, err := bootstrap.Request(cfg.Defaults); err != nil {
		return fmt.Errorf("invalid defaults: %w", err)
	}

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	logger.Info().
		Str("config", cfgPath).
		Str("timezone", cfg.EIA.Timezone).
		Str("default_region", cfg.Defaults.Region).
		Msg("configuration loaded")

	webAPI := server.NewWebAPI(logger, server.Config{
		Addr:            addr,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Dependencies: server.Dependencies{
			Pipeline: app.Pipeline,
			Defaults: cfg.Defaults,
			Metrics:  app.Metrics,
			Gatherer: app.Registry,
		},
	})

	return webAPI.Start()
}
