// MiLight Hub - nRF24 bridge for MiLight RGB+CCT bulbs
//
// milightd drives an nRF24L01 wired to the host's SPI bus so that it speaks
// the MiLight 2.4GHz remote protocol. It accepts JSON lighting commands over
// MQTT, transmits them to bulb groups, listens for physical remotes and
// publishes the resulting group state back to the broker.
//
// Subcommands:
//
//	milightd serve                  run the MQTT bridge
//	milightd send --id 0x2 ...      transmit one command and exit
//	milightd sniff                  log frames heard from remotes
//	milightd version                print build information
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/milight.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Flags are bound per tree so tests can
// build fresh trees.
func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "milightd",
		Short: "MiLight RGB+CCT radio bridge",
		Long: `milightd - drive MiLight RGB+CCT bulbs through an nRF24L01 transceiver.

The configuration file is taken from --config, then the MILIGHT_CONFIG
environment variable, then configs/milight.yaml. Every setting can be
overridden with a MILIGHT_* environment variable.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the YAML configuration file")

	resolve := func() string { return getConfigPath(configPath) }

	root.AddCommand(
		newServeCmd(resolve),
		newSendCmd(resolve),
		newSniffCmd(resolve),
		newVersionCmd(),
	)
	return root
}

// getConfigPath returns the configuration file path.
// Uses the flag if set, then MILIGHT_CONFIG, otherwise the default.
func getConfigPath(flag string) string {
	if flag != "" {
		return flag
	}
	if path := os.Getenv("MILIGHT_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "milightd %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
