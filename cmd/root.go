// Package cmd implements the go-depsolve CLI: a cobra root command with one
// subcommand per query mode, each parsing flags into service options and
// printing the serialized result envelope as JSON to stdout.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go-depsolve/config"
	"go-depsolve/service"
)

var (
	configDir string
	profile   string
)

// RootCmd is the go-depsolve CLI's root command.
var RootCmd = &cobra.Command{
	Use:   "go-depsolve",
	Short: "Query multi-repository package dependency closures",
	Long: `go-depsolve answers dependency questions about a universe of source
and binary packages spread across priority-ordered repositories: install
closures, build closures, self-build closures, and reverse (be-depend)
closures.`,
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default: /etc/go-depsolve or /usr/local/etc/go-depsolve)")
	RootCmd.PersistentFlags().StringVar(&profile, "profile", "", "named configuration profile section to prefer")

	RootCmd.AddCommand(installCmd)
	RootCmd.AddCommand(buildCmd)
	RootCmd.AddCommand(selfCmd)
	RootCmd.AddCommand(bedependCmd)
	RootCmd.AddCommand(subgraphCmd)
	RootCmd.AddCommand(statusCmd)
}

// Execute runs the CLI; it's the single entry point main.go calls.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newService loads configuration and opens a Service for one CLI
// invocation. The caller must Close it.
func newService() (*service.Service, error) {
	cfg, err := config.LoadConfig(configDir, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return service.NewService(cfg)
}

// printEnvelope writes a query result's wire envelope to stdout as
// indented JSON.
func printEnvelope(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
