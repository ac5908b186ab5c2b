package resolve

import (
	dlog "go-depsolve/log"
)

// Engine runs one closure query against a RAL. It is not reusable across
// queries: each query gets a fresh Engine (and fresh visited-key state) so
// the Query Facade can be a pure function of its inputs and a repository
// snapshot, and so concurrent queries never share mutable traversal state.
type Engine struct {
	ral     *RAL
	logger  dlog.LibraryLogger
	graph   *Graph
	visited map[string]bool // primary keys already placed in the graph
}

// NewEngine creates a fresh closure engine over ral. A nil logger is
// replaced with a no-op logger.
func NewEngine(ral *RAL, logger dlog.LibraryLogger) *Engine {
	if logger == nil {
		logger = dlog.NoOpLogger{}
	}
	return &Engine{
		ral:     ral,
		logger:  logger,
		graph:   newGraph(),
		visited: make(map[string]bool),
	}
}

// InstallClosure computes the install-closure of rootNames: starting from
// the named binaries, repeatedly resolves install-requires edges breadth
// first, attaching newly discovered providers as children of their
// requirer, until no new providers are discovered or depth is exhausted.
//
// depth of -1 means unbounded. A finite depth N explores N+1 layers: the
// extra layer exists purely to fill in the source/version/repo fields of
// nodes that were discovered (enqueued) on layer N but never dequeued — see
// SPEC_FULL.md's Open Question decision. Any node still unfilled after that
// is dropped (finite depth) or marked NotFound (unbounded depth).
func (e *Engine) InstallClosure(rootNames []string, depth int) (*Graph, error) {
	if depth < -1 {
		return nil, &InvalidLevelError{Level: depth}
	}
	roots := dedupeStrings(rootNames)
	if len(roots) == 0 {
		return nil, &InvalidRootError{Reason: "no input packages given"}
	}
	for _, name := range roots {
		node := newNode(name, KindBinary)
		node.addParent(RootParent, RequireNone)
		e.graph.Binaries[name] = node
	}

	effective := depth
	if depth >= 0 {
		effective = depth + 1
	}
	e.bfsInstall(roots, effective)
	e.finalizeUnfilled(depth)
	e.logger.Debug("install-closure: %d root(s), %d binaries resolved", len(roots), len(e.graph.Binaries))
	return e.graph, nil
}

// bfsInstall runs InstallClosure's install-requires BFS frontier loop.
// BuildClosure and SelfBuildClosure do not use it; they expand install
// layers through expandInstallLayer instead.
func (e *Engine) bfsInstall(frontier []string, maxLayers int) {
	layer := 0
	for len(frontier) > 0 && (maxLayers < 0 || layer < maxLayers) {
		requirers, edges, err := e.ral.InstallRequiresOf(frontier, e.visited)
		if err != nil {
			e.logger.Warn("install-requires lookup failed: %v", err)
			return
		}
		for _, req := range requirers {
			node := e.graph.Binaries[req.Name]
			if node == nil {
				node = newNode(req.Name, KindBinary)
				e.graph.Binaries[req.Name] = node
			}
			if !node.filled() {
				node.fill(req.RepoID, req.SourceName, req.Version, req.Key)
				e.visited[req.Key] = true
			}
		}

		var next []string
		for _, edge := range edges {
			if !edge.Found {
				e.graph.NotFoundComponents[edge.Component] = true
				continue
			}
			if _, alreadyKnown := e.graph.Binaries[edge.ProviderName]; !alreadyKnown {
				// Left unfilled: its fields are set when it is dequeued as a
				// requirer on the next layer.
				e.graph.Binaries[edge.ProviderName] = newNode(edge.ProviderName, KindBinary)
				e.visited[edge.ProviderKey] = true
				next = append(next, edge.ProviderName)
			}
			e.graph.link(edge.Requirer, KindBinary, edge.ProviderName, KindBinary, RequireInstall)
		}
		frontier = dedupeStrings(next)
		layer++
	}
}

// finalizeUnfilled resolves the fate of any node that never got its
// source/version/repo fields set: dropped for a finite-depth query (it was
// discovered but traversal stopped before it could be dequeued and looked
// up), or marked with the NotFound sentinel for an unbounded query (where
// "never filled" can only mean the name doesn't exist in any repository).
func (e *Engine) finalizeUnfilled(depth int) {
	for name, node := range e.graph.Binaries {
		if node.filled() {
			continue
		}
		if depth >= 0 {
			delete(e.graph.Binaries, name)
			continue
		}
		node.RepoID = NotFound
	}
	for name, node := range e.graph.Sources {
		if node.filled() {
			continue
		}
		if depth >= 0 {
			delete(e.graph.Sources, name)
			continue
		}
		node.RepoID = NotFound
	}
}

// BuildClosure computes the build-closure of rootNames: for each root
// binary, maps it to its producing source, seeds that source as a node
// (parented on the binary with relation build), then expands the source's
// build-requires (resolving to binaries) and those binaries' ordinary
// install-requires, breadth first, to depth.
//
// Unlike InstallClosure, the synthetic source layer is never "unfilled" —
// its fields are set at creation from BinaryToSource, so no +1 layer
// adjustment is needed for it (see SPEC_FULL.md's Open Question decision).
func (e *Engine) BuildClosure(rootNames []string, depth int) (*Graph, error) {
	if depth < -1 {
		return nil, &InvalidLevelError{Level: depth}
	}
	roots := dedupeStrings(rootNames)
	if len(roots) == 0 {
		return nil, &InvalidRootError{Reason: "no input packages given"}
	}

	for _, name := range roots {
		bnode := newNode(name, KindBinary)
		bnode.addParent(RootParent, RequireNone)
		e.graph.Binaries[name] = bnode

		sourceName, repoID, found, err := e.ral.BinaryToSource(name)
		if err != nil {
			e.logger.Warn("binary_to_source lookup failed for %s: %v", name, err)
			continue
		}
		if !found {
			continue
		}
		srow, srcRepo, srcFound, err := e.ral.LookupSourceByName(sourceName)
		if err != nil {
			e.logger.Warn("source lookup failed for %s: %v", sourceName, err)
			continue
		}
		snode := e.graph.Sources[sourceName]
		if snode == nil {
			snode = newNode(sourceName, KindSource)
			e.graph.Sources[sourceName] = snode
		}
		if !snode.filled() {
			if srcFound {
				snode.fill(srcRepo, "", srow.Version, srow.Key)
				e.visited[srow.Key] = true
			} else {
				snode.fill(repoID, "", "", "")
			}
		}
		e.graph.link(name, KindBinary, sourceName, KindSource, RequireBuild)
	}

	frontier := dedupeStrings(roots)
	sourceFrontier := e.collectSourceNames()
	maxLayers := depth

	layer := 0
	for (len(frontier) > 0 || len(sourceFrontier) > 0) && (maxLayers < 0 || layer < maxLayers) {
		nextBinaries := e.expandBuildRequires(sourceFrontier)
		nextFromInstall := e.expandInstallLayer(frontier)

		frontier = dedupeStrings(append(nextBinaries, nextFromInstall...))
		sourceFrontier = nil
		layer++
	}
	e.finalizeUnfilled(depth)
	e.logger.Debug("build-closure: %d root(s), %d binaries, %d sources", len(roots), len(e.graph.Binaries), len(e.graph.Sources))
	return e.graph, nil
}

func (e *Engine) collectSourceNames() []string {
	names := make([]string, 0, len(e.graph.Sources))
	for name := range e.graph.Sources {
		names = append(names, name)
	}
	return names
}

// expandBuildRequires resolves one layer of build-requires for the given
// source names, returning the newly discovered provider binary names so
// the caller can fold them into the next install-expansion frontier.
func (e *Engine) expandBuildRequires(sourceNames []string) []string {
	if len(sourceNames) == 0 {
		return nil
	}
	requirers, edges, err := e.ral.BuildRequiresOf(sourceNames, e.visited)
	if err != nil {
		e.logger.Warn("build-requires lookup failed: %v", err)
		return nil
	}
	for _, req := range requirers {
		node := e.graph.Sources[req.Name]
		if node == nil {
			node = newNode(req.Name, KindSource)
			e.graph.Sources[req.Name] = node
		}
		if !node.filled() {
			node.fill(req.RepoID, "", req.Version, req.Key)
			e.visited[req.Key] = true
		}
	}
	var discovered []string
	for _, edge := range edges {
		if !edge.Found {
			e.graph.NotFoundComponents[edge.Component] = true
			continue
		}
		existing, alreadyKnown := e.graph.Binaries[edge.ProviderName]
		if !alreadyKnown {
			existing = newNode(edge.ProviderName, KindBinary)
			existing.fill(edge.ProviderRepoID, edge.ProviderSource, edge.ProviderVersion, edge.ProviderKey)
			e.graph.Binaries[edge.ProviderName] = existing
			e.visited[edge.ProviderKey] = true
			discovered = append(discovered, edge.ProviderName)
		}
		e.graph.link(edge.Requirer, KindSource, edge.ProviderName, KindBinary, RequireBuild)
	}
	return discovered
}

// expandInstallLayer resolves one install-requires layer for binaryNames,
// returning newly discovered binaries for the next frontier.
func (e *Engine) expandInstallLayer(binaryNames []string) []string {
	if len(binaryNames) == 0 {
		return nil
	}
	requirers, edges, err := e.ral.InstallRequiresOf(binaryNames, e.visited)
	if err != nil {
		e.logger.Warn("install-requires lookup failed: %v", err)
		return nil
	}
	for _, req := range requirers {
		node := e.graph.Binaries[req.Name]
		if node == nil {
			node = newNode(req.Name, KindBinary)
			e.graph.Binaries[req.Name] = node
		}
		if !node.filled() {
			node.fill(req.RepoID, req.SourceName, req.Version, req.Key)
			e.visited[req.Key] = true
		}
	}
	var discovered []string
	for _, edge := range edges {
		if !edge.Found {
			e.graph.NotFoundComponents[edge.Component] = true
			continue
		}
		existing, alreadyKnown := e.graph.Binaries[edge.ProviderName]
		if !alreadyKnown {
			existing = newNode(edge.ProviderName, KindBinary)
			existing.fill(edge.ProviderRepoID, edge.ProviderSource, edge.ProviderVersion, edge.ProviderKey)
			e.graph.Binaries[edge.ProviderName] = existing
			e.visited[edge.ProviderKey] = true
			discovered = append(discovered, edge.ProviderName)
		}
		e.graph.link(edge.Requirer, KindBinary, edge.ProviderName, KindBinary, RequireInstall)
	}
	return discovered
}

// seedSourcesForBuilt maps each binary in names back to its producing
// source (the same BinaryToSource/LookupSourceByName steps BuildClosure
// uses to seed its initial roots), linking a build edge from the binary to
// its source. Sources already in seenSources are only re-linked; sources
// seen for the first time are created/filled and returned so the caller
// can recurse build-closure expansion into them on the next layer.
func (e *Engine) seedSourcesForBuilt(names []string, seenSources map[string]bool) []string {
	var newSources []string
	for _, name := range names {
		sourceName, repoID, found, err := e.ral.BinaryToSource(name)
		if err != nil {
			e.logger.Warn("binary_to_source lookup failed for %s: %v", name, err)
			continue
		}
		if !found {
			continue
		}
		if seenSources[sourceName] {
			e.graph.link(name, KindBinary, sourceName, KindSource, RequireBuild)
			continue
		}
		srow, srcRepo, srcFound, err := e.ral.LookupSourceByName(sourceName)
		if err != nil {
			e.logger.Warn("source lookup failed for %s: %v", sourceName, err)
			continue
		}
		snode := e.graph.Sources[sourceName]
		if snode == nil {
			snode = newNode(sourceName, KindSource)
			e.graph.Sources[sourceName] = snode
		}
		if !snode.filled() {
			if srcFound {
				snode.fill(srcRepo, "", srow.Version, srow.Key)
				e.visited[srow.Key] = true
			} else {
				snode.fill(repoID, "", "", "")
			}
		}
		e.graph.link(name, KindBinary, sourceName, KindSource, RequireBuild)
		seenSources[sourceName] = true
		newSources = append(newSources, sourceName)
	}
	return newSources
}

// SelfBuildClosure computes the self-build closure of one package: starting
// from either a source or a binary, alternates build-closure and
// install-closure expansion across every binary the starting source
// produces (and, recursively, every source that in turn build-requires
// them), until nothing new is discovered or depth is exhausted. withSubpack
// additionally seeds all of the starting source's sibling binaries as
// roots.
func (e *Engine) SelfBuildClosure(name string, kind PackType, withSubpack bool, depth int) (*Graph, error) {
	if depth < -1 {
		return nil, &InvalidLevelError{Level: depth}
	}
	if name == "" {
		return nil, &InvalidRootError{Reason: "no input package given"}
	}

	var sourceName string
	switch kind {
	case PackSource:
		sourceName = name
	case PackBinary:
		var found bool
		var err error
		sourceName, _, found, err = e.ral.BinaryToSource(name)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, &PackageNotFoundError{Names: []string{name}}
		}
	default:
		return nil, &InvalidParameterError{Param: "pack_type", Reason: "must be source or binary"}
	}

	srow, repoID, found, err := e.ral.LookupSourceByName(sourceName)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &PackageNotFoundError{Names: []string{sourceName}}
	}
	snode := newNode(sourceName, KindSource)
	snode.addParent(RootParent, RequireNone)
	snode.fill(repoID, "", srow.Version, srow.Key)
	e.graph.Sources[sourceName] = snode
	e.visited[srow.Key] = true

	roots, err := e.ral.reader.SubpacksOf(sourceName, repoID)
	if err != nil {
		return nil, err
	}
	if !withSubpack && len(roots) > 1 {
		// Without with_subpack, a binary-typed input seeds the closure with
		// only the binary that matches the input name; for a source-typed
		// input all its subpacks still need to be built, so they all seed it
		// regardless.
		if kind == PackBinary {
			roots = []string{name}
		}
	}
	for _, r := range roots {
		bnode := newNode(r, KindBinary)
		bnode.addParent(sourceName, RequireBuild)
		e.graph.Binaries[r] = bnode
		e.graph.link(sourceName, KindSource, r, KindBinary, RequireBuild)
	}

	seenSources := map[string]bool{sourceName: true}
	maxLayers := depth
	binFrontier := dedupeStrings(roots)
	srcFrontier := []string{sourceName}
	layer := 0
	for (len(binFrontier) > 0 || len(srcFrontier) > 0) && (maxLayers < 0 || layer < maxLayers) {
		newBins := e.expandBuildRequires(srcFrontier)
		newFromInstall := e.expandInstallLayer(binFrontier)
		binFrontier = dedupeStrings(append(newBins, newFromInstall...))
		srcFrontier = dedupeStrings(e.seedSourcesForBuilt(newBins, seenSources))
		layer++
	}
	e.finalizeUnfilled(depth)
	e.logger.Debug("self-build closure: source=%s, %d binaries, %d sources", sourceName, len(e.graph.Binaries), len(e.graph.Sources))
	return e.graph, nil
}

// ReverseClosure computes the be-depend (reverse) closure of rootNames
// within one repository: packages that depend, directly or transitively,
// on any of the roots. Unlike the forward closures, this is scoped to a
// single repository (reverse dependency graphs don't span priority search
// paths the way forward resolution does).
func (e *Engine) ReverseClosure(rootNames []string, repoID string, withSubpack bool, depth int) (*Graph, error) {
	if depth < -1 {
		return nil, &InvalidLevelError{Level: depth}
	}
	if !e.ral.HasRepository(repoID) {
		return nil, &UnknownDatabaseError{RepoID: repoID}
	}
	roots := dedupeStrings(rootNames)
	if len(roots) == 0 {
		return nil, &InvalidRootError{Reason: "no input packages given"}
	}

	anyFound := false
	for _, name := range roots {
		row, found, err := e.lookupInRepo(name, repoID)
		if err != nil {
			return nil, err
		}
		node := newNode(name, KindBinary)
		node.addParent(RootParent, RequireNone)
		if found {
			node.fill(repoID, row.SourceName, row.Version, row.Key)
			e.visited[row.Key] = true
			anyFound = true
		}
		e.graph.Binaries[name] = node
	}
	if !anyFound {
		return nil, &PackageNotFoundError{Names: roots}
	}

	frontier := roots
	layer := 0
	for len(frontier) > 0 && (depth < 0 || layer < depth) {
		edges, err := e.ral.ReverseRequiresOf(frontier, repoID, withSubpack)
		if err != nil {
			return nil, err
		}
		var next []string
		for _, edge := range edges {
			nodes := e.graph.nodesOf(edge.DependentKind)
			existing, known := nodes[edge.DependentName]
			if !known {
				existing = newNode(edge.DependentName, edge.DependentKind)
				existing.fill(edge.RepoID, edge.SourceName, edge.Version, edge.Key)
				nodes[edge.DependentName] = existing
				e.visited[edge.Key] = true
				next = append(next, edge.DependentName)
			}
			e.graph.link(edge.Satisfies, KindBinary, edge.DependentName, edge.DependentKind, edge.Relation)
		}
		frontier = dedupeStrings(next)
		layer++
	}
	e.logger.Debug("reverse closure: %d root(s) in %s, %d dependents", len(roots), repoID, len(e.graph.Binaries)+len(e.graph.Sources)-len(roots))
	return e.graph, nil
}

func (e *Engine) lookupInRepo(name, repoID string) (BinaryRow, bool, error) {
	idx, err := e.ral.binariesIndexFor(repoID)
	if err != nil {
		return BinaryRow{}, false, err
	}
	row, ok := idx[name]
	return row, ok, nil
}
