package service

// Status reports the repository store's current holdings: binary and
// source counts per configured repository, and the store's schema version.
func (s *Service) Status() (*StatusResult, error) {
	version, err := s.store.SchemaVersion()
	if err != nil {
		return nil, err
	}

	result := &StatusResult{SchemaVersion: version}
	for _, r := range s.cfg.Repositories {
		bins, err := s.store.BinariesIn(r.ID)
		if err != nil {
			return nil, err
		}
		srcs, err := s.store.SourcesIn(r.ID)
		if err != nil {
			return nil, err
		}
		result.Repositories = append(result.Repositories, RepositoryStats{
			RepoID:      r.ID,
			BinaryCount: len(bins),
			SourceCount: len(srcs),
		})
	}

	return result, nil
}
