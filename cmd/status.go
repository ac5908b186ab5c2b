package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report schema version and per-repository binary/source counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		defer svc.Close()

		result, err := svc.Status()
		if err != nil {
			return fmt.Errorf("status: %w", err)
		}
		return printEnvelope(result)
	},
}
