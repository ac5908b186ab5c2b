package service

import "go-depsolve/resolve"

// InstallDependOptions parameterizes an install-closure query.
type InstallDependOptions struct {
	Names []string
	Depth int // -1 for unbounded
}

// BuildDependOptions parameterizes a build-closure query.
type BuildDependOptions struct {
	Names []string
	Depth int
}

// SelfDependOptions parameterizes a self-build-closure query.
type SelfDependOptions struct {
	Name        string
	Kind        resolve.PackType
	WithSubpack bool
	Depth       int
}

// BeDependOptions parameterizes a reverse (be-depend) closure query, which
// is always scoped to a single repository.
type BeDependOptions struct {
	Names       []string
	RepoID      string
	WithSubpack bool
	Depth       int
}

// SubgraphOptions parameterizes a filter_subgraph projection over an
// already-computed result graph.
type SubgraphOptions struct {
	Root     string
	RootKind resolve.NodeKind
	Direction resolve.Direction
	Depth    int
}

// QueryResult is the common result shape every query-mode method returns:
// the full result graph plus its wire-serializable envelope.
type QueryResult struct {
	Graph    *resolve.Graph
	Envelope resolve.Envelope
}

// RepositoryStats summarizes one configured repository's holdings.
type RepositoryStats struct {
	RepoID        string
	BinaryCount   int
	SourceCount   int
}

// StatusResult reports the repository store's current holdings, used by
// the `go-depsolve status` CLI subcommand.
type StatusResult struct {
	Repositories []RepositoryStats
	SchemaVersion int
}
