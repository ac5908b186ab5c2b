package resolve

import (
	"encoding/json"
	"testing"
)

func TestBuildEnvelope_RootParentRelationMarshalsNull(t *testing.T) {
	g := newGraph()
	node := newNode("app", KindBinary)
	node.addParent(RootParent, RequireNone)
	node.fill("r1", "app-src", "1.0", "r1\x00b\x00app")
	g.Binaries["app"] = node

	env := BuildEnvelope(g)
	entry, ok := env["app"]
	if !ok {
		t.Fatal("expected app in envelope")
	}
	if len(entry.Parents) != 1 || entry.Parents[0][1] != nil {
		t.Fatalf("expected root parent's relation to be nil, got %+v", entry.Parents)
	}

	out, err := json.Marshal(entry)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatal(err)
	}
	parents, ok := decoded["parents"].([]any)
	if !ok || len(parents) != 1 {
		t.Fatalf("expected one parent tuple, got %v", decoded["parents"])
	}
	tuple, ok := parents[0].([]any)
	if !ok || len(tuple) != 2 {
		t.Fatalf("expected a 2-element tuple, got %v", parents[0])
	}
	if tuple[0] != RootParent {
		t.Fatalf("expected first element %q, got %v", RootParent, tuple[0])
	}
	if tuple[1] != nil {
		t.Fatalf("expected root parent relation to marshal as null, got %v", tuple[1])
	}
}

func TestBuildEnvelope_NonRootParentRelationMarshalsAsString(t *testing.T) {
	g := newGraph()
	parent := newNode("libfoo", KindBinary)
	parent.fill("r1", "foo-src", "1.0", "r1\x00b\x00libfoo")
	g.Binaries["libfoo"] = parent

	child := newNode("libbar", KindBinary)
	child.addParent("libfoo", RequireInstall)
	child.fill("r1", "bar-src", "1.0", "r1\x00b\x00libbar")
	g.Binaries["libbar"] = child

	env := BuildEnvelope(g)
	entry := env["libbar"]
	if len(entry.Parents) != 1 || entry.Parents[0][1] == nil || *entry.Parents[0][1] != string(RequireInstall) {
		t.Fatalf("expected install relation string, got %+v", entry.Parents)
	}
}
