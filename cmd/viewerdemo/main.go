// Command viewerdemo is the framework's development harness: it serves a
// GOOS=js GOARCH=wasm build of a viewer application to a browser, which
// is where the framework's jsdom host actually runs. The server side is
// deliberately thin — static files, a health probe, and process metrics.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowdeck/viewer/internal/telemetry"
)

func main() {
	root := &cobra.Command{
		Use:           "viewerdemo",
		Short:         "Dev server for viewer WASM applications",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var configPath string
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the built WASM bundle and supporting endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if err := telemetry.Init(cfg.SentryDSN); err != nil {
				return fmt.Errorf("init error reporting: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "serving %s on %s\n", cfg.StaticDir, cfg.Addr)
			return serve(cfg)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}
