package service

import (
	"fmt"
	"os"

	"go-depsolve/store"
)

// DatabaseResult contains the results of a store reset operation.
type DatabaseResult struct {
	StoreRemoved bool
	FilesRemoved []string
}

// ResetStore removes the repository store file. This is a destructive
// operation: the caller is responsible for confirming with the user before
// calling it.
func (s *Service) ResetStore() (*DatabaseResult, error) {
	result := &DatabaseResult{FilesRemoved: make([]string, 0)}

	path := s.cfg.StorePath
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return result, nil
	}

	if err := s.store.Close(); err != nil {
		return nil, fmt.Errorf("failed to close store before reset: %w", err)
	}

	if err := os.Remove(path); err != nil {
		return nil, fmt.Errorf("failed to remove store: %w", err)
	}

	result.StoreRemoved = true
	result.FilesRemoved = append(result.FilesRemoved, path)
	s.logger.Info("Repository store removed: %s", path)

	reopened, err := store.OpenStore(path)
	if err != nil {
		return result, fmt.Errorf("failed to reopen empty store: %w", err)
	}
	s.store = reopened

	return result, nil
}

// StorePath returns the path to the repository store file.
func (s *Service) StorePath() string {
	return s.cfg.StorePath
}
