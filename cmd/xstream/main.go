package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	clientcmd "github.com/rzbill/xstream/internal/cmd/client"
	serverrun "github.com/rzbill/xstream/internal/cmd/server"
	cfgpkg "github.com/rzbill/xstream/internal/config"
)

func main() {
	var serverURL string

	rootCmd := &cobra.Command{
		Use:          "xstream",
		Short:        "xstream in-memory stream server and CLI",
		Long:         "xstream serves named append-only streams over HTTP with Redis-Streams-like xadd/xrange/xlen/xread semantics.",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Server base URL (default $XSTREAM_HTTP or http://127.0.0.1:8080)")
	apiURL := func() string {
		if serverURL != "" {
			return serverURL
		}
		return clientcmd.BaseURLFromEnv()
	}

	// server start
	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start the xstream HTTP server",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			watch, _ := cmd.Flags().GetBool("watch")
			if configPath == "" {
				configPath = cfgpkg.DefaultConfigPath()
			}
			cfg, err := cfgpkg.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfgpkg.FromEnv(&cfg)
			applyServerFlags(cmd, &cfg)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			if err := serverrun.Run(ctx, serverrun.Options{
				Config:     cfg,
				ConfigPath: configPath,
				Watch:      watch,
				Overlay:    func(c *cfgpkg.Config) { applyServerFlags(cmd, c) },
			}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
	serverStartCmd.Flags().String("config", "", "Config file (.json, .yaml); default: ./xstream.yaml, $XDG_CONFIG_HOME/xstream, /etc/xstream")
	serverStartCmd.Flags().Bool("watch", true, "Reload the config file on change (log level applies live)")
	serverStartCmd.Flags().String("http", "", "HTTP listen address (default :8080)")
	serverStartCmd.Flags().String("log-level", "", "Log level: debug|info|warn|error")
	serverStartCmd.Flags().String("log-format", "", "Log format: text|json (default text)")
	serverStartCmd.Flags().Int("default-count", 0, "Entries returned when a request has no count (default 10)")
	serverStartCmd.Flags().Int("max-count", 0, "Upper bound on count per request (default 10000)")
	serverStartCmd.Flags().Bool("metrics", true, "Expose Prometheus metrics on /metrics")
	serverStartCmd.Flags().Bool("tracing", false, "Export OpenTelemetry traces of HTTP requests over OTLP/gRPC")
	serverStartCmd.Flags().String("tracing-endpoint", "", "OTLP gRPC collector address (default localhost:4317)")
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)

	// stream commands
	for _, c := range clientcmd.NewStreamCommands(apiURL) {
		rootCmd.AddCommand(c)
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// applyServerFlags overlays explicitly set flags onto cfg; flags win over
// the config file and environment.
func applyServerFlags(cmd *cobra.Command, cfg *cfgpkg.Config) {
	f := cmd.Flags()
	if f.Changed("http") {
		cfg.HTTPAddr, _ = f.GetString("http")
	}
	if f.Changed("log-level") {
		cfg.LogLevel, _ = f.GetString("log-level")
	}
	if f.Changed("log-format") {
		cfg.LogFormat, _ = f.GetString("log-format")
	}
	if f.Changed("default-count") {
		cfg.DefaultCount, _ = f.GetInt("default-count")
	}
	if f.Changed("max-count") {
		cfg.MaxCount, _ = f.GetInt("max-count")
	}
	if f.Changed("metrics") {
		cfg.EnableMetrics, _ = f.GetBool("metrics")
	}
	if f.Changed("tracing") {
		cfg.EnableTracing, _ = f.GetBool("tracing")
	}
	if f.Changed("tracing-endpoint") {
		cfg.TracingEndpoint, _ = f.GetString("tracing-endpoint")
	}
}
