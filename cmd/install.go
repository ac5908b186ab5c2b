package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"go-depsolve/service"
)

var installDepth int

var installCmd = &cobra.Command{
	Use:   "install [names...]",
	Short: "Compute the install-closure of one or more packages",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		defer svc.Close()

		depth := installDepth
		if !cmd.Flags().Changed("depth") {
			depth = svc.Config().DefaultDepth
		}

		result, err := svc.InstallDepend(service.InstallDependOptions{Names: args, Depth: depth})
		if err != nil {
			return fmt.Errorf("install-depend: %w", err)
		}
		return printEnvelope(result.Envelope)
	},
}

func init() {
	installCmd.Flags().IntVar(&installDepth, "depth", -1, "traversal depth bound (-1 for unbounded)")
}
