// Package resolve implements the multi-repository package dependency
// resolution engine: the Repository Access Layer, the search primitives
// built on it, the frontier-based Closure Engine, the in-memory result
// graph, and the stateless Query Facade that ties them together.
package resolve

// RequireKind distinguishes the two edge kinds a requires/provides graph
// carries: a binary's runtime (install) requirements and a source's
// build-time requirements.
type RequireKind string

const (
	RequireInstall RequireKind = "install"
	RequireBuild   RequireKind = "build"
	// RequireNone marks the sentinel parent edge of a synthetic root: the
	// node was supplied directly by the caller, not discovered via a
	// requires edge.
	RequireNone RequireKind = ""
)

// NodeKind distinguishes binary nodes from source nodes in the result graph.
type NodeKind string

const (
	KindBinary NodeKind = "binary"
	KindSource NodeKind = "source"
)

// NotFound is the wire sentinel used for a repo_id field whose package
// could not be resolved against any configured repository.
const NotFound = "NOT_FOUND"

// RootParent is the sentinel parent name for a synthetic root node: a
// package the caller asked for directly, with no requirer of its own.
const RootParent = "root"

// Repository identifies one backing package repository and its position
// in the priority-ordered search path used to resolve components.
// Lower Priority values are preferred (searched first).
type Repository struct {
	ID       string
	Priority int
	IsBinary bool
	IsSource bool
}

// BinaryRow is the read-only projection of a binary package record as the
// RAL retrieves it from a repository.
type BinaryRow struct {
	Key        string // primary key, unique within the owning repository
	Name       string
	Version    string
	SourceName string // may be empty for orphan binaries
	RepoID     string
}

// SourceRow is the read-only projection of a source package record.
type SourceRow struct {
	Key     string
	Name    string
	Version string
	RepoID  string
}

// ProviderRef is a candidate resolution for a requirement component: the
// package (by primary key) that provides or ships a file matching it.
type ProviderRef struct {
	Key        string
	Name       string
	SourceName string
	Version    string
}

// RepositoryReader is the minimal read interface the core consumes from a
// persistence backend. Implementations may be backed by a database, a
// flat-file index, or (in tests) an in-memory fixture; the core never
// mutates what it returns.
type RepositoryReader interface {
	// BinariesIn returns every binary package record in the given repository.
	BinariesIn(repoID string) ([]BinaryRow, error)

	// SourcesIn returns every source package record in the given repository.
	SourcesIn(repoID string) ([]SourceRow, error)

	// RequiresOf returns the component names a package (by primary key)
	// requires, of the given kind.
	RequiresOf(pkgKey string, kind RequireKind) ([]string, error)

	// ProvidersOf resolves a component name to its candidate providers
	// within one repository, searching `provides` first and falling back to
	// `files` when no provides-match exists.
	ProvidersOf(component string, repoID string) ([]ProviderRef, error)

	// BinaryToSource maps a binary name to the name of the source package
	// that produces it, within one repository.
	BinaryToSource(binaryName, repoID string) (sourceName string, found bool, err error)

	// SubpacksOf returns the binary names produced by a source package
	// within one repository.
	SubpacksOf(sourceName, repoID string) ([]string, error)
}

// PackType selects whether a self-build query's input names a source or a
// binary package.
type PackType string

const (
	PackSource PackType = "source"
	PackBinary PackType = "binary"
)

// Direction selects which edges filter_subgraph follows from its root.
type Direction string

const (
	DirectionUpward   Direction = "upward"
	DirectionDownward Direction = "downward"
	DirectionBoth     Direction = "both"
)
