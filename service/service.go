// Package service provides reusable business logic for go-depsolve
// operations.
//
// The service layer sits between the CLI (cmd/) and library packages
// (resolve, store, migration, stats), providing a clean separation of
// concerns:
//
//   - CLI layer (cmd/): handles flag parsing, output formatting, prompts.
//   - Service layer (service/): owns the lifecycle of the repository store,
//     logger, and stats collector, and wraps the Query Facade with
//     paired Options/Result types the CLI can marshal directly.
//   - Core layer (resolve/): provides the resolution engine with no I/O
//     coupling.
//
// All service methods use the log.LibraryLogger interface for output, so
// they can be reused in any context without terminal coupling.
package service

import (
	"context"
	"fmt"

	"go-depsolve/config"
	"go-depsolve/log"
	"go-depsolve/migration"
	"go-depsolve/resolve"
	"go-depsolve/stats"
	"go-depsolve/store"
)

// Service coordinates business logic across go-depsolve subsystems. It
// manages the lifecycle of shared resources (logger, repository store,
// stats collector) and provides high-level operations for each query mode.
//
// Usage:
//
//	cfg, _ := config.LoadConfig("", "")
//	svc, err := service.NewService(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer svc.Close()
//
//	result, err := svc.InstallDepend(service.InstallDependOptions{
//	    Names: []string{"editors/vim"},
//	    Depth: -1,
//	})
type Service struct {
	cfg       *config.Config
	logger    *log.Logger
	store     *store.BoltStore
	facade    *resolve.Facade
	collector *stats.Collector
	cancel    context.CancelFunc
}

// NewService creates a Service from cfg: it opens the repository store,
// runs legacy-index migration if needed, initializes the on-disk logger,
// and wires a stats collector as the Query Facade's observer. The caller
// must call Close to release resources.
func NewService(cfg *config.Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := log.NewLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	s, err := store.OpenStore(cfg.StorePath)
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("failed to open repository store: %w", err)
	}

	if err := migration.MigrateLegacyIndex(cfg, s, logger); err != nil {
		s.Close()
		logger.Close()
		return nil, fmt.Errorf("legacy index migration failed: %w", err)
	}

	repos := make([]resolve.Repository, 0, len(cfg.Repositories))
	for _, r := range cfg.Repositories {
		repos = append(repos, resolve.Repository{
			ID:       r.ID,
			Priority: r.Priority,
			IsBinary: r.Kind == "binary" || r.Kind == "mixed",
			IsSource: r.Kind == "source" || r.Kind == "mixed",
		})
	}

	facade, err := resolve.NewFacade(repos, s, logger)
	if err != nil {
		s.Close()
		logger.Close()
		return nil, fmt.Errorf("failed to build query facade: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	collector := stats.NewCollector(ctx)
	facade.SetObserver(collector)

	return &Service{
		cfg:       cfg,
		logger:    logger,
		store:     s,
		facade:    facade,
		collector: collector,
		cancel:    cancel,
	}, nil
}

// Close releases resources held by the service (store, logger, collector).
func (s *Service) Close() error {
	s.cancel()
	s.collector.Close()

	var errs []error
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store close: %w", err))
	}
	s.logger.Close()

	if len(errs) > 0 {
		return fmt.Errorf("service close errors: %v", errs)
	}
	return nil
}

// Config returns the service's configuration.
func (s *Service) Config() *config.Config { return s.cfg }

// Logger returns the service's logger.
func (s *Service) Logger() *log.Logger { return s.logger }

// Store returns the service's repository store.
func (s *Service) Store() *store.BoltStore { return s.store }

// Stats returns a snapshot of the service's query statistics.
func (s *Service) Stats() stats.Snapshot { return s.collector.GetSnapshot() }
