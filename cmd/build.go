package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"go-depsolve/service"
)

var buildDepth int

var buildCmd = &cobra.Command{
	Use:   "build [names...]",
	Short: "Compute the build-closure of one or more binary packages",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		defer svc.Close()

		depth := buildDepth
		if !cmd.Flags().Changed("depth") {
			depth = svc.Config().DefaultDepth
		}

		result, err := svc.BuildDepend(service.BuildDependOptions{Names: args, Depth: depth})
		if err != nil {
			return fmt.Errorf("build-depend: %w", err)
		}
		return printEnvelope(result.Envelope)
	},
}

func init() {
	buildCmd.Flags().IntVar(&buildDepth, "depth", -1, "traversal depth bound (-1 for unbounded)")
}
