package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"go-depsolve/resolve"
	"go-depsolve/service"
)

var (
	subgraphMode        string
	subgraphRepo          string
	subgraphSelfKind      string
	subgraphWithSubpack   bool
	subgraphBaseDepth     int

	subgraphRoot      string
	subgraphRootKind  string
	subgraphDirection string
	subgraphDepth     int
)

// subgraphCmd runs one of the four closure modes to produce a base result
// graph, then projects filter_subgraph around a chosen root node within it.
// Composing two facade calls this way keeps the CLI's surface a thin driver
// over resolve.Facade rather than a second place that knows traversal rules.
var subgraphCmd = &cobra.Command{
	Use:   "subgraph [names...]",
	Short: "Project a subgraph of an install/build/self/bedepend closure around one root node",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if subgraphRoot == "" {
			return fmt.Errorf("--root is required")
		}

		var rootKind resolve.NodeKind
		switch subgraphRootKind {
		case "binary":
			rootKind = resolve.KindBinary
		case "source":
			rootKind = resolve.KindSource
		default:
			return fmt.Errorf("--root-kind must be \"binary\" or \"source\", got %q", subgraphRootKind)
		}

		var direction resolve.Direction
		switch subgraphDirection {
		case "upward":
			direction = resolve.DirectionUpward
		case "downward":
			direction = resolve.DirectionDownward
		case "both":
			direction = resolve.DirectionBoth
		default:
			return fmt.Errorf("--direction must be \"upward\", \"downward\", or \"both\", got %q", subgraphDirection)
		}

		svc, err := newService()
		if err != nil {
			return err
		}
		defer svc.Close()

		if !cmd.Flags().Changed("base-depth") {
			subgraphBaseDepth = svc.Config().DefaultDepth
		}
		depth := subgraphDepth
		if !cmd.Flags().Changed("with-subpack") {
			subgraphWithSubpack = svc.Config().DefaultWithSubpack
		}

		base, err := runBaseQuery(svc, args)
		if err != nil {
			return err
		}

		result, err := svc.Subgraph(base.Graph, service.SubgraphOptions{
			Root:      subgraphRoot,
			RootKind:  rootKind,
			Direction: direction,
			Depth:     depth,
		})
		if err != nil {
			return fmt.Errorf("subgraph: %w", err)
		}
		return printEnvelope(result.Envelope)
	},
}

// runBaseQuery dispatches to the closure mode named by --mode, using the
// already-parsed --base-depth/--with-subpack/--repo/--self-kind flags.
func runBaseQuery(svc *service.Service, args []string) (*service.QueryResult, error) {
	baseDepth := subgraphBaseDepth
	withSubpack := subgraphWithSubpack

	switch subgraphMode {
	case "install":
		return svc.InstallDepend(service.InstallDependOptions{Names: args, Depth: baseDepth})
	case "build":
		return svc.BuildDepend(service.BuildDependOptions{Names: args, Depth: baseDepth})
	case "self":
		if len(args) != 1 {
			return nil, fmt.Errorf("--mode self requires exactly one name")
		}
		var kind resolve.PackType
		switch subgraphSelfKind {
		case "source":
			kind = resolve.PackSource
		case "binary":
			kind = resolve.PackBinary
		default:
			return nil, fmt.Errorf("--self-kind must be \"source\" or \"binary\", got %q", subgraphSelfKind)
		}
		return svc.SelfDepend(service.SelfDependOptions{Name: args[0], Kind: kind, WithSubpack: withSubpack, Depth: baseDepth})
	case "bedepend":
		if subgraphRepo == "" {
			return nil, fmt.Errorf("--repo is required for --mode bedepend")
		}
		return svc.BeDepend(service.BeDependOptions{Names: args, RepoID: subgraphRepo, WithSubpack: withSubpack, Depth: baseDepth})
	default:
		return nil, fmt.Errorf("--mode must be one of \"install\", \"build\", \"self\", \"bedepend\", got %q", subgraphMode)
	}
}

func init() {
	subgraphCmd.Flags().StringVar(&subgraphMode, "mode", "install", "base closure mode: install, build, self, or bedepend")
	subgraphCmd.Flags().StringVar(&subgraphRepo, "repo", "", "repository id (required for --mode bedepend)")
	subgraphCmd.Flags().StringVar(&subgraphSelfKind, "self-kind", "source", "input package kind for --mode self: \"source\" or \"binary\"")
	subgraphCmd.Flags().BoolVar(&subgraphWithSubpack, "with-subpack", false, "include sibling binaries when computing the base closure")
	subgraphCmd.Flags().IntVar(&subgraphBaseDepth, "base-depth", -1, "traversal depth bound for the base closure (-1 for unbounded)")

	subgraphCmd.Flags().StringVar(&subgraphRoot, "root", "", "root node name to project the subgraph around (required)")
	subgraphCmd.Flags().StringVar(&subgraphRootKind, "root-kind", "binary", "root node kind: \"binary\" or \"source\"")
	subgraphCmd.Flags().StringVar(&subgraphDirection, "direction", "both", "edge direction to follow from the root: \"upward\", \"downward\", or \"both\"")
	subgraphCmd.Flags().IntVar(&subgraphDepth, "depth", 1<<20, "traversal depth bound for the projection; unlike --base-depth, filter_subgraph has no unbounded sentinel and requires depth >= 1")
}
