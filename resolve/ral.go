package resolve

import (
	"sort"
	"sync"
)

// RAL is the Repository Access Layer: a priority-ordered view over a set of
// repositories backed by one RepositoryReader. It owns no traversal state
// of its own (that belongs to the Closure Engine) — it only knows how to
// look a name or component up, in priority order, and cache what it reads.
type RAL struct {
	repos  []Repository // sorted ascending by Priority
	reader RepositoryReader

	mu       sync.Mutex                      // guards binIndex and srcIndex
	binIndex map[string]map[string]BinaryRow // repoID -> name -> row
	srcIndex map[string]map[string]SourceRow // repoID -> name -> row
}

// NewRAL builds a RAL over the given repositories and reader. Repositories
// are sorted ascending by priority (lowest searched first). Priorities must
// be unique; an empty repository list is rejected with ErrNoDatabase.
func NewRAL(repos []Repository, reader RepositoryReader) (*RAL, error) {
	if len(repos) == 0 {
		return nil, ErrNoDatabase
	}
	sorted := make([]Repository, len(repos))
	copy(sorted, repos)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Priority < sorted[j].Priority })

	seenPriority := make(map[int]bool, len(sorted))
	seenID := make(map[string]bool, len(sorted))
	for _, r := range sorted {
		if seenPriority[r.Priority] {
			return nil, &InvalidParameterError{Param: "repositories", Reason: "duplicate priority value"}
		}
		if seenID[r.ID] {
			return nil, &InvalidParameterError{Param: "repositories", Reason: "duplicate repository id"}
		}
		seenPriority[r.Priority] = true
		seenID[r.ID] = true
	}

	return &RAL{
		repos:    sorted,
		reader:   reader,
		binIndex: make(map[string]map[string]BinaryRow),
		srcIndex: make(map[string]map[string]SourceRow),
	}, nil
}

// Repositories returns the priority-ordered repository list.
func (r *RAL) Repositories() []Repository { return r.repos }

// HasRepository reports whether id names one of the RAL's repositories.
func (r *RAL) HasRepository(id string) bool {
	for _, repo := range r.repos {
		if repo.ID == id {
			return true
		}
	}
	return false
}

func (r *RAL) binariesIndexFor(repoID string) (map[string]BinaryRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if idx, ok := r.binIndex[repoID]; ok {
		return idx, nil
	}
	rows, err := r.reader.BinariesIn(repoID)
	if err != nil {
		return nil, err
	}
	idx := make(map[string]BinaryRow, len(rows))
	for _, row := range rows {
		idx[row.Name] = row
	}
	r.binIndex[repoID] = idx
	return idx, nil
}

func (r *RAL) sourcesIndexFor(repoID string) (map[string]SourceRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if idx, ok := r.srcIndex[repoID]; ok {
		return idx, nil
	}
	rows, err := r.reader.SourcesIn(repoID)
	if err != nil {
		return nil, err
	}
	idx := make(map[string]SourceRow, len(rows))
	for _, row := range rows {
		idx[row.Name] = row
	}
	r.srcIndex[repoID] = idx
	return idx, nil
}

// LookupBinaryByName returns the highest-priority binary with the given
// exact name, searching repositories ascending by priority.
func (r *RAL) LookupBinaryByName(name string) (BinaryRow, string, bool, error) {
	for _, repo := range r.repos {
		idx, err := r.binariesIndexFor(repo.ID)
		if err != nil {
			return BinaryRow{}, "", false, err
		}
		if row, ok := idx[name]; ok {
			return row, repo.ID, true, nil
		}
	}
	return BinaryRow{}, "", false, nil
}

// LookupSourceByName returns the highest-priority source with the given
// exact name, searching repositories ascending by priority.
func (r *RAL) LookupSourceByName(name string) (SourceRow, string, bool, error) {
	for _, repo := range r.repos {
		idx, err := r.sourcesIndexFor(repo.ID)
		if err != nil {
			return SourceRow{}, "", false, err
		}
		if row, ok := idx[name]; ok {
			return row, repo.ID, true, nil
		}
	}
	return SourceRow{}, "", false, nil
}

// LookupBinaryByComponent resolves a requirement component to a provider,
// searching repositories ascending by priority and, within a repository,
// trusting ProvidersOf's provides-then-files fallback. Among the candidates
// in the first repository with any match, one not already in exclude is
// preferred (the lowest primary key among those wins); but if every
// candidate in that repository is already excluded, that's a cycle back to
// an already-known node, not a missing provider, so the lowest-keyed
// candidate overall is still returned rather than falling through to a
// lower-priority repository.
func (r *RAL) LookupBinaryByComponent(component string, exclude map[string]bool) (ProviderRef, string, bool, error) {
	for _, repo := range r.repos {
		refs, err := r.reader.ProvidersOf(component, repo.ID)
		if err != nil {
			return ProviderRef{}, "", false, err
		}
		if len(refs) == 0 {
			continue
		}
		var preferred []ProviderRef
		for _, ref := range refs {
			if exclude == nil || !exclude[ref.Key] {
				preferred = append(preferred, ref)
			}
		}
		candidates := preferred
		if len(candidates) == 0 {
			candidates = append([]ProviderRef(nil), refs...)
		}
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].Key < candidates[j].Key })
		return candidates[0], repo.ID, true, nil
	}
	return ProviderRef{}, "", false, nil
}

// BinaryToSource maps a binary name to its producing source name, searching
// repositories ascending by priority until one has the mapping.
func (r *RAL) BinaryToSource(binaryName string) (string, string, bool, error) {
	for _, repo := range r.repos {
		name, found, err := r.reader.BinaryToSource(binaryName, repo.ID)
		if err != nil {
			return "", "", false, err
		}
		if found {
			return name, repo.ID, true, nil
		}
	}
	return "", "", false, nil
}

// RequirerResolution records that a named package was located in a
// repository while resolving a layer of install/build requirements, even
// if it turned out to have zero requirement components (a leaf package) —
// without this the node would never get its source/version/repo fields
// filled.
type RequirerResolution struct {
	Name       string
	RepoID     string
	SourceName string
	Version    string
	Key        string
}

// RequireEdge is one resolved (or unresolved) requirement component of a
// requirer package.
type RequireEdge struct {
	Requirer        string
	Component       string
	Found           bool
	ProviderName    string
	ProviderSource  string
	ProviderVersion string
	ProviderRepoID  string
	ProviderKey     string
}

// keyedRow is the minimal shape requiresOf needs from either a binary or a
// source row, letting InstallRequiresOf and BuildRequiresOf share one
// priority-walk implementation.
type keyedRow struct {
	key        string
	sourceName string
	version    string
}

// rowSource looks up the keyedRow view of one repository's binaries or
// sources, by name.
type rowSource func(repoID string) (map[string]keyedRow, error)

func (r *RAL) binaryRowSource(repoID string) (map[string]keyedRow, error) {
	idx, err := r.binariesIndexFor(repoID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]keyedRow, len(idx))
	for name, row := range idx {
		out[name] = keyedRow{key: row.Key, sourceName: row.SourceName, version: row.Version}
	}
	return out, nil
}

func (r *RAL) sourceRowSource(repoID string) (map[string]keyedRow, error) {
	idx, err := r.sourcesIndexFor(repoID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]keyedRow, len(idx))
	for name, row := range idx {
		out[name] = keyedRow{key: row.Key, version: row.Version}
	}
	return out, nil
}

// InstallRequiresOf resolves the install-requires edges of a set of binary
// names. Each name is searched for in priority order; the first repository
// containing it is used for both its own identity and its requires list —
// it is not re-queried in later repositories. Requirement components are
// resolved to providers via LookupBinaryByComponent, honoring exclude.
func (r *RAL) InstallRequiresOf(names []string, exclude map[string]bool) ([]RequirerResolution, []RequireEdge, error) {
	return r.requiresOf(names, RequireInstall, r.binaryRowSource, exclude)
}

// BuildRequiresOf resolves the build-requires edges of a set of source
// names, with the same priority discipline as InstallRequiresOf.
func (r *RAL) BuildRequiresOf(names []string, exclude map[string]bool) ([]RequirerResolution, []RequireEdge, error) {
	return r.requiresOf(names, RequireBuild, r.sourceRowSource, exclude)
}

func (r *RAL) requiresOf(names []string, kind RequireKind, rows rowSource, exclude map[string]bool) ([]RequirerResolution, []RequireEdge, error) {
	remaining := dedupeStrings(names)
	var requirers []RequirerResolution
	var edges []RequireEdge

	for _, repo := range r.repos {
		if len(remaining) == 0 {
			break
		}
		repoRows, err := rows(repo.ID)
		if err != nil {
			return nil, nil, err
		}
		var stillRemaining []string
		for _, n := range remaining {
			row, ok := repoRows[n]
			if !ok {
				stillRemaining = append(stillRemaining, n)
				continue
			}
			requirers = append(requirers, RequirerResolution{
				Name: n, RepoID: repo.ID, SourceName: row.sourceName, Version: row.version, Key: row.key,
			})
			comps, err := r.reader.RequiresOf(row.key, kind)
			if err != nil {
				return nil, nil, err
			}
			for _, c := range comps {
				ref, provRepo, found, err := r.LookupBinaryByComponent(c, exclude)
				if err != nil {
					return nil, nil, err
				}
				if !found {
					edges = append(edges, RequireEdge{Requirer: n, Component: c, Found: false})
					continue
				}
				edges = append(edges, RequireEdge{
					Requirer: n, Component: c, Found: true,
					ProviderName: ref.Name, ProviderSource: ref.SourceName, ProviderVersion: ref.Version,
					ProviderRepoID: provRepo, ProviderKey: ref.Key,
				})
			}
		}
		remaining = stillRemaining
	}
	return requirers, edges, nil
}

// ReverseEdge is one dependent found while resolving a reverse-requires
// layer: a package whose install- or build-requires resolves (via
// provides/files) to one of the frontier inputs, or a sibling subpack of an
// input when include_subpacks is set.
type ReverseEdge struct {
	DependentName string
	DependentKind NodeKind
	Relation      RequireKind
	RepoID        string
	SourceName    string
	Version       string
	Key           string
	// Satisfies is the name of the frontier input this dependent actually
	// depends on, so the engine can attach a precise parent edge instead of
	// fanning the dependent out to every frontier member.
	Satisfies string
}

// ReverseRequiresOf finds, within one repository, every binary whose
// install-requires and every source whose build-requires resolves (via the
// same provides/files fallback forward resolution uses, guaranteeing
// symmetry with install/build closures) to one of the named input binaries.
// When includeSubpacks is true it also returns sibling binaries produced by
// the same source as any input.
func (r *RAL) ReverseRequiresOf(names []string, repoID string, includeSubpacks bool) ([]ReverseEdge, error) {
	binIdx, err := r.binariesIndexFor(repoID)
	if err != nil {
		return nil, err
	}
	srcIdx, err := r.sourcesIndexFor(repoID)
	if err != nil {
		return nil, err
	}

	keyToName := make(map[string]string)
	for _, n := range names {
		if row, ok := binIdx[n]; ok {
			keyToName[row.Key] = n
		}
	}

	var edges []ReverseEdge

	for name, row := range binIdx {
		comps, err := r.reader.RequiresOf(row.Key, RequireInstall)
		if err != nil {
			return nil, err
		}
		for _, satisfies := range dependsOnWhich(r.reader, comps, repoID, keyToName) {
			edges = append(edges, ReverseEdge{
				DependentName: name, DependentKind: KindBinary, Relation: RequireInstall,
				RepoID: repoID, SourceName: row.SourceName, Version: row.Version, Key: row.Key,
				Satisfies: satisfies,
			})
		}
	}

	for name, row := range srcIdx {
		comps, err := r.reader.RequiresOf(row.Key, RequireBuild)
		if err != nil {
			return nil, err
		}
		for _, satisfies := range dependsOnWhich(r.reader, comps, repoID, keyToName) {
			edges = append(edges, ReverseEdge{
				DependentName: name, DependentKind: KindSource, Relation: RequireBuild,
				RepoID: repoID, Version: row.Version, Key: row.Key,
				Satisfies: satisfies,
			})
		}
	}

	if includeSubpacks {
		for _, n := range names {
			row, ok := binIdx[n]
			if !ok || row.SourceName == "" {
				continue
			}
			subs, err := r.reader.SubpacksOf(row.SourceName, repoID)
			if err != nil {
				return nil, err
			}
			for _, s := range subs {
				if s == n {
					continue
				}
				srow, ok := binIdx[s]
				if !ok {
					continue
				}
				edges = append(edges, ReverseEdge{
					DependentName: s, DependentKind: KindBinary, Relation: RequireInstall,
					RepoID: repoID, SourceName: srow.SourceName, Version: srow.Version, Key: srow.Key,
					Satisfies: n,
				})
			}
		}
	}

	return edges, nil
}

// dependsOnWhich returns the distinct frontier names (by primary key,
// mapped back to name) that comps resolves to via provides/files within
// repoID.
func dependsOnWhich(reader RepositoryReader, comps []string, repoID string, keyToName map[string]string) []string {
	seen := make(map[string]bool)
	var matched []string
	for _, c := range comps {
		refs, err := reader.ProvidersOf(c, repoID)
		if err != nil {
			continue
		}
		for _, ref := range refs {
			if name, ok := keyToName[ref.Key]; ok && !seen[name] {
				seen[name] = true
				matched = append(matched, name)
			}
		}
	}
	return matched
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
