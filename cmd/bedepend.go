package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"go-depsolve/service"
)

var (
	bedependRepo        string
	bedependWithSubpack  bool
	bedependDepth        int
)

var bedependCmd = &cobra.Command{
	Use:   "bedepend [names...]",
	Short: "Compute the reverse (be-depend) closure of one or more binary packages within one repository",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if bedependRepo == "" {
			return fmt.Errorf("--repo is required")
		}

		svc, err := newService()
		if err != nil {
			return err
		}
		defer svc.Close()

		depth := bedependDepth
		if !cmd.Flags().Changed("depth") {
			depth = svc.Config().DefaultDepth
		}
		withSubpack := bedependWithSubpack
		if !cmd.Flags().Changed("with-subpack") {
			withSubpack = svc.Config().DefaultWithSubpack
		}

		result, err := svc.BeDepend(service.BeDependOptions{
			Names:       args,
			RepoID:      bedependRepo,
			WithSubpack: withSubpack,
			Depth:       depth,
		})
		if err != nil {
			return fmt.Errorf("be-depend: %w", err)
		}
		return printEnvelope(result.Envelope)
	},
}

func init() {
	bedependCmd.Flags().StringVar(&bedependRepo, "repo", "", "repository id to scope the reverse closure to (required)")
	bedependCmd.Flags().BoolVar(&bedependWithSubpack, "with-subpack", false, "include sibling binaries of each matched source")
	bedependCmd.Flags().IntVar(&bedependDepth, "depth", -1, "traversal depth bound (-1 for unbounded)")
}
