package service

import "go-depsolve/resolve"

// InstallDepend computes the install-closure of opts.Names.
func (s *Service) InstallDepend(opts InstallDependOptions) (*QueryResult, error) {
	g, err := s.facade.InstallDepend(opts.Names, opts.Depth)
	if err != nil {
		return nil, err
	}
	return &QueryResult{Graph: g, Envelope: resolve.BuildEnvelope(g)}, nil
}

// BuildDepend computes the build-closure of opts.Names.
func (s *Service) BuildDepend(opts BuildDependOptions) (*QueryResult, error) {
	g, err := s.facade.BuildDepend(opts.Names, opts.Depth)
	if err != nil {
		return nil, err
	}
	return &QueryResult{Graph: g, Envelope: resolve.BuildEnvelope(g)}, nil
}

// SelfDepend computes the self-build closure of opts.Name.
func (s *Service) SelfDepend(opts SelfDependOptions) (*QueryResult, error) {
	g, err := s.facade.SelfDepend(opts.Name, opts.Kind, opts.WithSubpack, opts.Depth)
	if err != nil {
		return nil, err
	}
	return &QueryResult{Graph: g, Envelope: resolve.BuildEnvelope(g)}, nil
}

// BeDepend computes the reverse (be-depend) closure of opts.Names within
// opts.RepoID.
func (s *Service) BeDepend(opts BeDependOptions) (*QueryResult, error) {
	g, err := s.facade.BeDepend(opts.Names, opts.RepoID, opts.WithSubpack, opts.Depth)
	if err != nil {
		return nil, err
	}
	return &QueryResult{Graph: g, Envelope: resolve.BuildEnvelope(g)}, nil
}

// Subgraph projects an already-computed graph around one root node.
func (s *Service) Subgraph(g *resolve.Graph, opts SubgraphOptions) (*QueryResult, error) {
	sub, err := s.facade.FilterSubgraph(g, opts.Root, opts.RootKind, opts.Direction, opts.Depth)
	if err != nil {
		return nil, err
	}
	return &QueryResult{Graph: sub, Envelope: resolve.BuildEnvelope(sub)}, nil
}
