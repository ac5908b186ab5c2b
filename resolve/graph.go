package resolve

import "sort"

// ParentEdge records one reason a node is in the result: the name of the
// package that pulled it in, and the kind of requirement that did so. A
// root input's sole parent is the sentinel (RootParent, RequireNone).
type ParentEdge struct {
	ParentName string
	Relation   RequireKind
}

// ChildEdge is the forward counterpart of ParentEdge, maintained eagerly
// alongside Parents so downward subgraph projection never has to invert
// the graph on demand (see SPEC_FULL.md's Open Question decision).
type ChildEdge struct {
	ChildName string
	Relation  RequireKind
}

// ResultNode is one package in a closure's result graph. Name/Kind are
// always set at creation; SourceName/Version/Key/RepoID start unfilled
// ("") for a node discovered only as a frontier member, and are filled in
// once the engine has actually located it in some repository. RepoID is
// set to NotFound for a node the engine determined could never be located.
type ResultNode struct {
	Name       string
	Kind       NodeKind
	SourceName string
	Version    string
	RepoID     string
	Key        string

	Parents  []ParentEdge
	Children []ChildEdge
}

func newNode(name string, kind NodeKind) *ResultNode {
	return &ResultNode{Name: name, Kind: kind}
}

func (n *ResultNode) filled() bool { return n.RepoID != "" }

// Resolved reports whether the node was actually located in a repository,
// as opposed to being unfilled or carrying the NotFound sentinel.
func (n *ResultNode) Resolved() bool { return n.RepoID != "" && n.RepoID != NotFound }

func (n *ResultNode) fill(repoID, sourceName, version, key string) {
	n.RepoID = repoID
	n.SourceName = sourceName
	n.Version = version
	n.Key = key
}

func (n *ResultNode) addParent(name string, relation RequireKind) {
	for _, p := range n.Parents {
		if p.ParentName == name && p.Relation == relation {
			return
		}
	}
	n.Parents = append(n.Parents, ParentEdge{ParentName: name, Relation: relation})
}

func (n *ResultNode) addChild(name string, relation RequireKind) {
	for _, c := range n.Children {
		if c.ChildName == name && c.Relation == relation {
			return
		}
	}
	n.Children = append(n.Children, ChildEdge{ChildName: name, Relation: relation})
}

// Graph is the Result Model: a dual-keyed graph of binary and source
// nodes, plus the set of requirement components that resolved to no
// provider anywhere in the search path.
type Graph struct {
	Binaries map[string]*ResultNode
	Sources  map[string]*ResultNode

	// NotFoundComponents is the set of requirement component names that
	// had no provider in any searched repository, across the whole query.
	NotFoundComponents map[string]bool
}

func newGraph() *Graph {
	return &Graph{
		Binaries:           make(map[string]*ResultNode),
		Sources:            make(map[string]*ResultNode),
		NotFoundComponents: make(map[string]bool),
	}
}

func (g *Graph) nodesOf(kind NodeKind) map[string]*ResultNode {
	if kind == KindSource {
		return g.Sources
	}
	return g.Binaries
}

// link records a parent -> child edge pair on both endpoints, given each
// endpoint's kind so it can be looked up in the right map.
func (g *Graph) link(parentName string, parentKind NodeKind, childName string, childKind NodeKind, relation RequireKind) {
	if parent, ok := g.nodesOf(parentKind)[parentName]; ok {
		parent.addChild(childName, relation)
	}
	if child, ok := g.nodesOf(childKind)[childName]; ok {
		child.addParent(parentName, relation)
	}
}

// FlatNode is one row of the flat-list projection: a node's identity with
// its resolved fields, independent of how many parents reached it.
type FlatNode struct {
	Name       string
	Kind       NodeKind
	SourceName string
	Version    string
	RepoID     string
}

// Flatten returns every node in the graph (binaries then sources) as a
// flat list, sorted by name within each kind. Unfilled nodes
// (RepoID == "") are included with their zero-value fields; callers that
// want only resolved nodes should filter on RepoID.
func (g *Graph) Flatten() []FlatNode {
	out := make([]FlatNode, 0, len(g.Binaries)+len(g.Sources))
	for _, name := range g.orderedNames(KindBinary) {
		n := g.Binaries[name]
		out = append(out, FlatNode{Name: n.Name, Kind: n.Kind, SourceName: n.SourceName, Version: n.Version, RepoID: n.RepoID})
	}
	for _, name := range g.orderedNames(KindSource) {
		n := g.Sources[name]
		out = append(out, FlatNode{Name: n.Name, Kind: n.Kind, SourceName: n.SourceName, Version: n.Version, RepoID: n.RepoID})
	}
	return out
}

// orderedNames is a stable (sorted) traversal order for map iteration, used
// only for deterministic output; it carries no semantic meaning.
func (g *Graph) orderedNames(kind NodeKind) []string {
	nodes := g.nodesOf(kind)
	names := make([]string, 0, len(nodes))
	for name := range nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FilterSubgraph projects the graph down to the nodes reachable from root
// within depth hops, following child edges (downward), parent edges
// (upward), or both. Unlike the closure queries, there is no unbounded
// sentinel here: depth must be at least 1. root must name an existing
// binary or source node.
func (g *Graph) FilterSubgraph(root string, rootKind NodeKind, direction Direction, depth int) (*Graph, error) {
	nodes := g.nodesOf(rootKind)
	if _, ok := nodes[root]; !ok {
		return nil, &InvalidRootError{Reason: "root not present in graph"}
	}
	if depth < 1 {
		return nil, &InvalidLevelError{Level: depth}
	}

	type item struct {
		name  string
		kind  NodeKind
		level int
	}
	visited := map[string]bool{nodeVisitKey(rootKind, root): true}
	out := newGraph()
	queue := []item{{root, rootKind, 0}}
	out.nodesOf(rootKind)[root] = cloneNode(nodes[root])

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if depth >= 0 && cur.level >= depth {
			continue
		}
		curNode := g.nodesOf(cur.kind)[cur.name]

		if direction == DirectionDownward || direction == DirectionBoth {
			for _, c := range curNode.Children {
				childKind := g.kindOfEither(c.ChildName)
				visitKey := nodeVisitKey(childKind, c.ChildName)
				if !visited[visitKey] {
					visited[visitKey] = true
					out.nodesOf(childKind)[c.ChildName] = cloneNode(g.nodesOf(childKind)[c.ChildName])
					queue = append(queue, item{c.ChildName, childKind, cur.level + 1})
				}
				out.link(cur.name, cur.kind, c.ChildName, childKind, c.Relation)
			}
		}
		if direction == DirectionUpward || direction == DirectionBoth {
			for _, p := range curNode.Parents {
				if p.ParentName == RootParent {
					continue
				}
				parentKind := g.kindOfEither(p.ParentName)
				visitKey := nodeVisitKey(parentKind, p.ParentName)
				if !visited[visitKey] {
					visited[visitKey] = true
					out.nodesOf(parentKind)[p.ParentName] = cloneNode(g.nodesOf(parentKind)[p.ParentName])
					queue = append(queue, item{p.ParentName, parentKind, cur.level + 1})
				}
				out.link(p.ParentName, parentKind, cur.name, cur.kind, p.Relation)
			}
		}
	}
	return out, nil
}

// kindOfEither reports which of Binaries/Sources contains name, preferring
// Binaries if (pathologically) present in both. Used only for subgraph
// traversal where a neighbor's kind isn't otherwise at hand.
func (g *Graph) kindOfEither(name string) NodeKind {
	if _, ok := g.Binaries[name]; ok {
		return KindBinary
	}
	return KindSource
}

func nodeVisitKey(kind NodeKind, name string) string {
	return string(kind) + "\x00" + name
}

func cloneNode(n *ResultNode) *ResultNode {
	if n == nil {
		return nil
	}
	clone := *n
	clone.Parents = append([]ParentEdge(nil), n.Parents...)
	clone.Children = append([]ChildEdge(nil), n.Children...)
	return &clone
}
