package resolve

import (
	"errors"
	"testing"
)

func buildInstallFixture() *fixtureReader {
	fr := newFixtureReader()
	fr.addBinary("r1", "app", "1.0", "app-src")
	fr.addBinary("r1", "libfoo", "1.0", "foo-src")
	fr.addBinary("r1", "libbar", "1.0", "bar-src")
	fr.addInstallRequires("r1\x00b\x00app", "libfoo")
	fr.addInstallRequires("r1\x00b\x00libfoo", "libbar")
	return fr
}

func TestInstallClosure_TransitiveChain(t *testing.T) {
	fr := buildInstallFixture()
	ral, err := NewRAL([]Repository{{ID: "r1", Priority: 0}}, fr)
	if err != nil {
		t.Fatal(err)
	}
	engine := NewEngine(ral, nil)
	g, err := engine.InstallClosure([]string{"app"}, -1)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"app", "libfoo", "libbar"} {
		node, ok := g.Binaries[name]
		if !ok || !node.Resolved() {
			t.Fatalf("expected %s resolved in closure, got %+v", name, g.Binaries)
		}
	}
	bar := g.Binaries["libbar"]
	if len(bar.Parents) != 1 || bar.Parents[0].ParentName != "libfoo" || bar.Parents[0].Relation != RequireInstall {
		t.Fatalf("expected libbar parented on libfoo/install, got %+v", bar.Parents)
	}
}

func TestInstallClosure_DepthLimitsTraversal(t *testing.T) {
	fr := buildInstallFixture()
	ral, err := NewRAL([]Repository{{ID: "r1", Priority: 0}}, fr)
	if err != nil {
		t.Fatal(err)
	}
	engine := NewEngine(ral, nil)
	g, err := engine.InstallClosure([]string{"app"}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := g.Binaries["app"]; !ok {
		t.Fatal("expected root present at depth 0")
	}
	if _, ok := g.Binaries["libbar"]; ok {
		t.Fatal("libbar should not be reachable at depth 0")
	}
}

func TestInstallClosure_CycleDoesNotLoopForever(t *testing.T) {
	fr := newFixtureReader()
	fr.addBinary("r1", "a", "1.0", "a-src")
	fr.addBinary("r1", "b", "1.0", "b-src")
	fr.addInstallRequires("r1\x00b\x00a", "b")
	fr.addInstallRequires("r1\x00b\x00b", "a")
	ral, err := NewRAL([]Repository{{ID: "r1", Priority: 0}}, fr)
	if err != nil {
		t.Fatal(err)
	}
	engine := NewEngine(ral, nil)
	g, err := engine.InstallClosure([]string{"a"}, -1)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Binaries) != 2 {
		t.Fatalf("expected exactly 2 nodes in a 2-cycle, got %d", len(g.Binaries))
	}
	if len(g.NotFoundComponents) != 0 {
		t.Fatalf("expected no not-found components in a fully-resolved cycle, got %v", g.NotFoundComponents)
	}
}

func TestInstallClosure_NotFoundComponentRecorded(t *testing.T) {
	fr := newFixtureReader()
	fr.addBinary("r1", "app", "1.0", "app-src")
	fr.addInstallRequires("r1\x00b\x00app", "libghost")
	ral, err := NewRAL([]Repository{{ID: "r1", Priority: 0}}, fr)
	if err != nil {
		t.Fatal(err)
	}
	engine := NewEngine(ral, nil)
	g, err := engine.InstallClosure([]string{"app"}, -1)
	if err != nil {
		t.Fatal(err)
	}
	if !g.NotFoundComponents["libghost"] {
		t.Fatalf("expected libghost recorded as not found, got %v", g.NotFoundComponents)
	}
}

func TestBuildClosure_SeedsSourceAndExpands(t *testing.T) {
	fr := newFixtureReader()
	fr.addBinary("r1", "app", "1.0", "app-src")
	fr.addSource("r1", "app-src", "1.0")
	fr.addBinary("r1", "libbuild", "1.0", "libbuild-src")
	fr.addBuildRequires("r1\x00s\x00app-src", "libbuild")
	ral, err := NewRAL([]Repository{{ID: "r1", Priority: 0}}, fr)
	if err != nil {
		t.Fatal(err)
	}
	engine := NewEngine(ral, nil)
	g, err := engine.BuildClosure([]string{"app"}, -1)
	if err != nil {
		t.Fatal(err)
	}
	if node, ok := g.Sources["app-src"]; !ok || !node.Resolved() {
		t.Fatalf("expected app-src seeded and resolved, got %+v", g.Sources)
	}
	if node, ok := g.Binaries["libbuild"]; !ok || !node.Resolved() {
		t.Fatalf("expected libbuild resolved via build-requires, got %+v", g.Binaries)
	}
	lb := g.Binaries["libbuild"]
	if len(lb.Parents) != 1 || lb.Parents[0].ParentName != "app-src" || lb.Parents[0].Relation != RequireBuild {
		t.Fatalf("expected libbuild parented on app-src/build, got %+v", lb.Parents)
	}
}

func TestSelfBuildClosure_FromSource(t *testing.T) {
	fr := newFixtureReader()
	fr.addSource("r1", "foo-src", "1.0")
	fr.addBinary("r1", "foo", "1.0", "foo-src")
	fr.addBinary("r1", "foo-devel", "1.0", "foo-src")
	ral, err := NewRAL([]Repository{{ID: "r1", Priority: 0}}, fr)
	if err != nil {
		t.Fatal(err)
	}
	engine := NewEngine(ral, nil)
	g, err := engine.SelfBuildClosure("foo-src", PackSource, true, -1)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"foo", "foo-devel"} {
		if node, ok := g.Binaries[name]; !ok || !node.Resolved() {
			t.Fatalf("expected %s resolved in self-build closure, got %+v", name, g.Binaries)
		}
	}
}

func TestReverseClosure_ScopedToOneRepository(t *testing.T) {
	fr := newFixtureReader()
	fr.addBinary("r1", "libfoo", "1.0", "foo-src")
	fr.addBinary("r1", "app", "1.0", "app-src")
	fr.addInstallRequires("r1\x00b\x00app", "libfoo")
	ral, err := NewRAL([]Repository{{ID: "r1", Priority: 0}}, fr)
	if err != nil {
		t.Fatal(err)
	}
	engine := NewEngine(ral, nil)
	g, err := engine.ReverseClosure([]string{"libfoo"}, "r1", false, -1)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := g.Binaries["app"]; !ok {
		t.Fatalf("expected app in reverse closure, got %+v", g.Binaries)
	}
}

func TestReverseClosure_UnknownRepository(t *testing.T) {
	fr := newFixtureReader()
	fr.addBinary("r1", "libfoo", "1.0", "foo-src")
	ral, err := NewRAL([]Repository{{ID: "r1", Priority: 0}}, fr)
	if err != nil {
		t.Fatal(err)
	}
	engine := NewEngine(ral, nil)
	_, err = engine.ReverseClosure([]string{"libfoo"}, "nope", false, -1)
	if err == nil {
		t.Fatal("expected UnknownDatabaseError")
	}
	var target *UnknownDatabaseError
	if !errors.As(err, &target) {
		t.Fatalf("expected *UnknownDatabaseError, got %T: %v", err, err)
	}
}
