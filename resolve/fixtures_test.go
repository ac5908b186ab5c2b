package resolve

// fixtureReader is an in-memory RepositoryReader used across the test
// suite, grounded on the teacher's testFixtureQuerier pattern (pkg's
// ports_interface.go) of swapping a real backend for a hand-built fixture
// keyed the same way production code would key it.
type fixtureReader struct {
	binaries  map[string][]BinaryRow            // repoID -> rows
	sources   map[string][]SourceRow             // repoID -> rows
	provides  map[string]map[string][]ProviderRef // repoID -> component -> refs
	files     map[string]map[string][]ProviderRef // repoID -> component -> refs
	requires  map[string][]string                // pkgKey\x00kind -> components
	binToSrc  map[string]map[string]string       // repoID -> binary -> source
	subpacks  map[string]map[string][]string     // repoID -> source -> binaries
}

func newFixtureReader() *fixtureReader {
	return &fixtureReader{
		binaries: make(map[string][]BinaryRow),
		sources:  make(map[string][]SourceRow),
		provides: make(map[string]map[string][]ProviderRef),
		files:    make(map[string]map[string][]ProviderRef),
		requires: make(map[string][]string),
		binToSrc: make(map[string]map[string]string),
		subpacks: make(map[string]map[string][]string),
	}
}

func (f *fixtureReader) addBinary(repoID, name, version, sourceName string) BinaryRow {
	row := BinaryRow{Key: repoID + "\x00b\x00" + name, Name: name, Version: version, SourceName: sourceName, RepoID: repoID}
	f.binaries[repoID] = append(f.binaries[repoID], row)
	if sourceName != "" {
		if f.binToSrc[repoID] == nil {
			f.binToSrc[repoID] = make(map[string]string)
		}
		f.binToSrc[repoID][name] = sourceName
		if f.subpacks[repoID] == nil {
			f.subpacks[repoID] = make(map[string][]string)
		}
		f.subpacks[repoID][sourceName] = append(f.subpacks[repoID][sourceName], name)
	}
	f.addProvides(repoID, name, row.Key, name, sourceName, version)
	return row
}

func (f *fixtureReader) addSource(repoID, name, version string) SourceRow {
	row := SourceRow{Key: repoID + "\x00s\x00" + name, Name: name, Version: version, RepoID: repoID}
	f.sources[repoID] = append(f.sources[repoID], row)
	return row
}

func (f *fixtureReader) addProvides(repoID, component, key, name, sourceName, version string) {
	if f.provides[repoID] == nil {
		f.provides[repoID] = make(map[string][]ProviderRef)
	}
	f.provides[repoID][component] = append(f.provides[repoID][component], ProviderRef{
		Key: key, Name: name, SourceName: sourceName, Version: version,
	})
}

func (f *fixtureReader) addFile(repoID, component, key, name, sourceName, version string) {
	if f.files[repoID] == nil {
		f.files[repoID] = make(map[string][]ProviderRef)
	}
	f.files[repoID][component] = append(f.files[repoID][component], ProviderRef{
		Key: key, Name: name, SourceName: sourceName, Version: version,
	})
}

func (f *fixtureReader) addInstallRequires(pkgKey string, components ...string) {
	f.requires[pkgKey+"\x00install"] = append(f.requires[pkgKey+"\x00install"], components...)
}

func (f *fixtureReader) addBuildRequires(pkgKey string, components ...string) {
	f.requires[pkgKey+"\x00build"] = append(f.requires[pkgKey+"\x00build"], components...)
}

func (f *fixtureReader) BinariesIn(repoID string) ([]BinaryRow, error) {
	return f.binaries[repoID], nil
}

func (f *fixtureReader) SourcesIn(repoID string) ([]SourceRow, error) {
	return f.sources[repoID], nil
}

func (f *fixtureReader) RequiresOf(pkgKey string, kind RequireKind) ([]string, error) {
	return f.requires[pkgKey+"\x00"+string(kind)], nil
}

func (f *fixtureReader) ProvidersOf(component, repoID string) ([]ProviderRef, error) {
	if refs, ok := f.provides[repoID][component]; ok && len(refs) > 0 {
		return refs, nil
	}
	return f.files[repoID][component], nil
}

func (f *fixtureReader) BinaryToSource(binaryName, repoID string) (string, bool, error) {
	name, ok := f.binToSrc[repoID][binaryName]
	return name, ok, nil
}

func (f *fixtureReader) SubpacksOf(sourceName, repoID string) ([]string, error) {
	return f.subpacks[repoID][sourceName], nil
}
