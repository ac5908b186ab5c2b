package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"go-depsolve/resolve"
	"go-depsolve/service"
)

var (
	selfKind        string
	selfWithSubpack bool
	selfDepth       int
)

var selfCmd = &cobra.Command{
	Use:   "self <name>",
	Short: "Compute the self-build closure of a source or binary package",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var kind resolve.PackType
		switch selfKind {
		case "source":
			kind = resolve.PackSource
		case "binary":
			kind = resolve.PackBinary
		default:
			return fmt.Errorf("--kind must be \"source\" or \"binary\", got %q", selfKind)
		}

		svc, err := newService()
		if err != nil {
			return err
		}
		defer svc.Close()

		depth := selfDepth
		if !cmd.Flags().Changed("depth") {
			depth = svc.Config().DefaultDepth
		}
		withSubpack := selfWithSubpack
		if !cmd.Flags().Changed("with-subpack") {
			withSubpack = svc.Config().DefaultWithSubpack
		}

		result, err := svc.SelfDepend(service.SelfDependOptions{
			Name:        args[0],
			Kind:        kind,
			WithSubpack: withSubpack,
			Depth:       depth,
		})
		if err != nil {
			return fmt.Errorf("self-depend: %w", err)
		}
		return printEnvelope(result.Envelope)
	},
}

func init() {
	selfCmd.Flags().StringVar(&selfKind, "kind", "source", "input package kind: \"source\" or \"binary\"")
	selfCmd.Flags().BoolVar(&selfWithSubpack, "with-subpack", false, "include sibling binaries of the input's source")
	selfCmd.Flags().IntVar(&selfDepth, "depth", -1, "traversal depth bound (-1 for unbounded)")
}
