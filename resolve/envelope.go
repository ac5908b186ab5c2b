package resolve

import "sort"

// Envelope is the serialized wire form of a Graph: each node name maps to
// an EnvelopeEntry carrying source_name, version, repo_id, parents and
// kind, so the CLI can marshal it straight to JSON. Each entry marshals as
// a JSON object with those named fields, not as a positional array.
// source_name/version are nil when unset; repo_id is the literal string
// "NOT_FOUND" for an unresolved node.
type Envelope map[string]EnvelopeEntry

// EnvelopeEntry is one node's wire-format entry.
type EnvelopeEntry struct {
	SourceName *string      `json:"source_name"`
	Version    *string      `json:"version"`
	RepoID     string       `json:"repo_id"`
	Parents    [][2]*string `json:"parents"`
	Kind       NodeKind     `json:"kind"`
}

// BuildEnvelope serializes every node in g into wire form.
func BuildEnvelope(g *Graph) Envelope {
	env := make(Envelope, len(g.Binaries)+len(g.Sources))
	for name, n := range g.Binaries {
		env[name] = nodeEntry(n)
	}
	for name, n := range g.Sources {
		env[name] = nodeEntry(n)
	}
	return env
}

func nodeEntry(n *ResultNode) EnvelopeEntry {
	entry := EnvelopeEntry{Kind: n.Kind}
	if n.RepoID == "" {
		entry.RepoID = NotFound
	} else {
		entry.RepoID = n.RepoID
	}
	if n.SourceName != "" {
		s := n.SourceName
		entry.SourceName = &s
	}
	if n.Version != "" {
		v := n.Version
		entry.Version = &v
	}
	parents := make([][2]*string, 0, len(n.Parents))
	for _, p := range n.Parents {
		name := p.ParentName
		var relation *string
		if p.Relation != RequireNone {
			r := string(p.Relation)
			relation = &r
		}
		parents = append(parents, [2]*string{&name, relation})
	}
	sort.Slice(parents, func(i, j int) bool {
		if *parents[i][0] != *parents[j][0] {
			return *parents[i][0] < *parents[j][0]
		}
		ri, rj := "", ""
		if parents[i][1] != nil {
			ri = *parents[i][1]
		}
		if parents[j][1] != nil {
			rj = *parents[j][1]
		}
		return ri < rj
	})
	entry.Parents = parents
	return entry
}
