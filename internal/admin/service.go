// internal/admin/service.go
package admin

import (
	"context"

	apperrors "support-chatbot/internal/common/errors"
	"support-chatbot/internal/common/logger"
	"support-chatbot/internal/intent"
	"support-chatbot/internal/models"
	"support-chatbot/internal/store"
)

// Maintenance is the bulk table access the admin operations run on.
type Maintenance interface {
	Clear(ctx context.Context) (store.TableCounts, error)
	Seed(ctx context.Context) (bool, error)
	Reset(ctx context.Context) (store.TableCounts, error)
	Counts(ctx context.Context) (store.TableCounts, error)
}

// PatternCache is the cache every admin operation invalidates.
type PatternCache interface {
	Invalidate(ctx context.Context) error
	Status(ctx context.Context) intent.CacheStatus
}

// ProductIndexer mirrors the catalog into the search index after catalog changes.
type ProductIndexer interface {
	Sync(ctx context.Context, products []models.Product) error
}

type ProductLister interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
}

type ClearResult struct {
	Message string            `json:"message"`
	Deleted store.TableCounts `json:"deleted"`
}

type SeedResult struct {
	Message string `json:"message"`
	Seeded  bool   `json:"seeded"`
}

type ResetResult struct {
	Message string            `json:"message"`
	Deleted store.TableCounts `json:"deleted"`
}

type StatusResult struct {
	Status      string             `json:"status"`
	Tables      store.TableCounts  `json:"tables"`
	CacheStatus intent.CacheStatus `json:"cache_status"`
}

// Service runs the database maintenance operations and keeps derived state in step with the catalog.
type Service struct {
	store    Maintenance
	cache    PatternCache
	products ProductLister
	index    ProductIndexer
	logger   logger.Logger
}

// NewService builds the admin service. index may be nil when search is disabled.
func NewService(maintenance Maintenance, cache PatternCache, products ProductLister, index ProductIndexer, log logger.Logger) *Service {
	return &Service{
		store:    maintenance,
		cache:    cache,
		products: products,
		index:    index,
		logger:   log.WithFields(map[string]interface{}{"component": "admin"}),
	}
}

func (s *Service) Clear(ctx context.Context) (*ClearResult, error) {
	deleted, err := s.store.Clear(ctx)
	s.afterCatalogChange(ctx, "clear")
	if err != nil {
		return nil, apperrors.NewAdminOperationFailedError("clear", err)
	}

	s.logger.Warn("Database cleared", map[string]interface{}{
		"messages":   deleted.Messages,
		"orders":     deleted.Orders,
		"products":   deleted.Products,
		"warranties": deleted.Warranties,
	})
	return &ClearResult{Message: "Database cleared successfully", Deleted: deleted}, nil
}

func (s *Service) Seed(ctx context.Context) (*SeedResult, error) {
	seeded, err := s.store.Seed(ctx)
	s.afterCatalogChange(ctx, "seed")
	if err != nil {
		return nil, apperrors.NewAdminOperationFailedError("seed", err)
	}

	msg := "Database seeded successfully"
	if !seeded {
		msg = "Database already contains orders, seeding skipped"
	}
	s.logger.Info("Database seed finished", map[string]interface{}{"seeded": seeded})
	return &SeedResult{Message: msg, Seeded: seeded}, nil
}

func (s *Service) Reset(ctx context.Context) (*ResetResult, error) {
	deleted, err := s.store.Reset(ctx)
	s.afterCatalogChange(ctx, "reset")
	if err != nil {
		return nil, apperrors.NewAdminOperationFailedError("reset", err)
	}

	s.logger.Warn("Database reset", map[string]interface{}{
		"messages": deleted.Messages,
		"orders":   deleted.Orders,
	})
	return &ResetResult{Message: "Database reset successfully (cleared and reseeded)", Deleted: deleted}, nil
}

// Status reports table counts and the cache state as it was before this call, then invalidates the cache.
func (s *Service) Status(ctx context.Context) (*StatusResult, error) {
	counts, err := s.store.Counts(ctx)
	if err != nil {
		return nil, apperrors.NewAdminOperationFailedError("status", err)
	}

	cacheStatus := s.cache.Status(ctx)
	s.invalidate(ctx, "status")

	return &StatusResult{
		Status:      "connected",
		Tables:      counts,
		CacheStatus: cacheStatus,
	}, nil
}

// afterCatalogChange also runs when the operation failed part way.
func (s *Service) afterCatalogChange(ctx context.Context, operation string) {
	s.invalidate(ctx, operation)
	if err := s.SyncIndex(ctx); err != nil {
		s.logger.Warn("Product index sync failed", map[string]interface{}{
			"operation": operation,
			"error":     err.Error(),
		})
	}
}

func (s *Service) invalidate(ctx context.Context, operation string) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Error("Pattern cache invalidation failed", map[string]interface{}{
			"operation": operation,
			"error":     err.Error(),
		})
	}
}

// SyncIndex rebuilds the search index from the current catalog. It is a no-op without an index.
func (s *Service) SyncIndex(ctx context.Context) error {
	if s.index == nil {
		return nil
	}
	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return apperrors.NewAdminOperationFailedError("sync_index", err)
	}
	if err := s.index.Sync(ctx, products); err != nil {
		return apperrors.NewAdminOperationFailedError("sync_index", err)
	}
	return nil
}
