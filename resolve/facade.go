package resolve

import (
	"github.com/google/uuid"

	dlog "go-depsolve/log"
)

// Observer receives a notification after each completed query. It is the
// hook stats.Collector attaches through; the facade never depends on a
// concrete implementation.
type Observer interface {
	OnQuery(mode string, inputs []string, nodeCount int, notFoundCount int)
}

// Facade is the Query Facade: it validates query parameters and dispatches
// to a fresh Engine per query. It is stateless beyond its RAL and logger —
// calling any of its methods concurrently from multiple goroutines is
// safe, since each call builds its own Engine and visited-set.
type Facade struct {
	ral      *RAL
	logger   dlog.LibraryLogger
	observer Observer
}

// NewFacade builds a Query Facade over the given repositories and reader.
func NewFacade(repos []Repository, reader RepositoryReader, logger dlog.LibraryLogger) (*Facade, error) {
	ral, err := NewRAL(repos, reader)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = dlog.NoOpLogger{}
	}
	return &Facade{ral: ral, logger: logger}, nil
}

// SetObserver attaches (or clears, with nil) a query observer.
func (f *Facade) SetObserver(o Observer) { f.observer = o }

func (f *Facade) notify(mode string, inputs []string, g *Graph) {
	if f.observer == nil {
		return
	}
	f.observer.OnQuery(mode, inputs, len(g.Binaries)+len(g.Sources), len(g.NotFoundComponents))
}

func validateNames(names []string) error {
	if len(names) == 0 {
		return &InvalidRootError{Reason: "no input packages given"}
	}
	for _, n := range names {
		if n == "" {
			return &InvalidRootError{Reason: "empty package name in input list"}
		}
	}
	return nil
}

// newQueryID mints a correlation id for one query invocation, so a single
// query's log lines can be tied together the way the teacher's build
// records were tied together by their run UUID.
func newQueryID() string {
	return uuid.NewString()
}

func validateDepth(depth int) error {
	if depth < -1 {
		return &InvalidLevelError{Level: depth}
	}
	return nil
}

// InstallDepend runs an install-closure query: the set of binaries names
// needs installed, transitively, across the priority-ordered repositories.
func (f *Facade) InstallDepend(names []string, depth int) (*Graph, error) {
	if err := validateNames(names); err != nil {
		return nil, err
	}
	if err := validateDepth(depth); err != nil {
		return nil, err
	}
	queryID := newQueryID()
	f.logger.Debug("install_depend %s: names=%v depth=%d", queryID, names, depth)
	engine := NewEngine(f.ral, f.logger)
	g, err := engine.InstallClosure(names, depth)
	if err != nil {
		return nil, err
	}
	if !anyResolved(g, names) {
		return nil, &PackageNotFoundError{Names: names}
	}
	f.notify("install", names, g)
	return g, nil
}

// BuildDepend runs a build-closure query: everything needed to build names
// from source, transitively.
func (f *Facade) BuildDepend(names []string, depth int) (*Graph, error) {
	if err := validateNames(names); err != nil {
		return nil, err
	}
	if err := validateDepth(depth); err != nil {
		return nil, err
	}
	queryID := newQueryID()
	f.logger.Debug("build_depend %s: names=%v depth=%d", queryID, names, depth)
	engine := NewEngine(f.ral, f.logger)
	g, err := engine.BuildClosure(names, depth)
	if err != nil {
		return nil, err
	}
	if !anyResolved(g, names) {
		return nil, &PackageNotFoundError{Names: names}
	}
	f.notify("build", names, g)
	return g, nil
}

// SelfDepend runs a self-build closure query for a single package, which
// may be named as a source or a binary.
func (f *Facade) SelfDepend(name string, kind PackType, withSubpack bool, depth int) (*Graph, error) {
	if name == "" {
		return nil, &InvalidRootError{Reason: "no input package given"}
	}
	if kind != PackSource && kind != PackBinary {
		return nil, &InvalidParameterError{Param: "pack_type", Reason: "must be source or binary"}
	}
	if err := validateDepth(depth); err != nil {
		return nil, err
	}
	queryID := newQueryID()
	f.logger.Debug("self_depend %s: name=%s kind=%s depth=%d", queryID, name, kind, depth)
	engine := NewEngine(f.ral, f.logger)
	g, err := engine.SelfBuildClosure(name, kind, withSubpack, depth)
	if err != nil {
		return nil, err
	}
	f.notify("self", []string{name}, g)
	return g, nil
}

// BeDepend runs a reverse-closure query within a single named repository.
func (f *Facade) BeDepend(names []string, repoID string, withSubpack bool, depth int) (*Graph, error) {
	if err := validateNames(names); err != nil {
		return nil, err
	}
	if repoID == "" {
		return nil, &InvalidParameterError{Param: "repo_id", Reason: "must be non-empty"}
	}
	if !f.ral.HasRepository(repoID) {
		return nil, &UnknownDatabaseError{RepoID: repoID}
	}
	if err := validateDepth(depth); err != nil {
		return nil, err
	}
	queryID := newQueryID()
	f.logger.Debug("be_depend %s: names=%v repo=%s depth=%d", queryID, names, repoID, depth)
	engine := NewEngine(f.ral, f.logger)
	g, err := engine.ReverseClosure(names, repoID, withSubpack, depth)
	if err != nil {
		return nil, err
	}
	f.notify("reverse", names, g)
	return g, nil
}

// FilterSubgraph projects an already-computed graph down to the nodes
// reachable from root within depth hops in the given direction. It does
// not re-run a query; callers pass the Graph returned by one of the
// closure methods above.
func (f *Facade) FilterSubgraph(g *Graph, root string, rootKind NodeKind, direction Direction, depth int) (*Graph, error) {
	if depth < 1 {
		return nil, &InvalidLevelError{Level: depth}
	}
	switch direction {
	case DirectionUpward, DirectionDownward, DirectionBoth:
	default:
		return nil, &InvalidParameterError{Param: "direction", Reason: "must be upward, downward, or both"}
	}
	return g.FilterSubgraph(root, rootKind, direction, depth)
}

func anyResolved(g *Graph, names []string) bool {
	for _, n := range names {
		if node, ok := g.Binaries[n]; ok && node.Resolved() {
			return true
		}
		if node, ok := g.Sources[n]; ok && node.Resolved() {
			return true
		}
	}
	return false
}
