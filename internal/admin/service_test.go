package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "support-chatbot/internal/common/errors"
	"support-chatbot/internal/common/logger"
	"support-chatbot/internal/intent"
	"support-chatbot/internal/models"
	"support-chatbot/internal/store"
)

type fakeMaintenance struct {
	counts store.TableCounts
	seeded bool
	err    error
	calls  []string
}

func (f *fakeMaintenance) Clear(ctx context.Context) (store.TableCounts, error) {
	f.calls = append(f.calls, "clear")
	return f.counts, f.err
}

func (f *fakeMaintenance) Seed(ctx context.Context) (bool, error) {
	f.calls = append(f.calls, "seed")
	return f.seeded, f.err
}

func (f *fakeMaintenance) Reset(ctx context.Context) (store.TableCounts, error) {
	f.calls = append(f.calls, "reset")
	return f.counts, f.err
}

func (f *fakeMaintenance) Counts(ctx context.Context) (store.TableCounts, error) {
	f.calls = append(f.calls, "counts")
	return f.counts, f.err
}

type fakeCatalog struct {
	products []models.Product
	err      error
}

func (f *fakeCatalog) ListProducts(ctx context.Context) ([]models.Product, error) {
	return f.products, f.err
}

type fakeIndex struct {
	synced [][]models.Product
	err    error
}

func (f *fakeIndex) Sync(ctx context.Context, products []models.Product) error {
	f.synced = append(f.synced, products)
	return f.err
}

func newWarmCache(t *testing.T, catalog *fakeCatalog) *intent.PatternCache {
	t.Helper()
	cache := intent.NewPatternCache(catalog, intent.NewMemoryPatternStore(), time.Minute, logger.NewTestLogger(t))
	_, err := cache.Get(context.Background())
	require.NoError(t, err)
	require.True(t, cache.Status(context.Background()).PatternsCached)
	return cache
}

var demoProducts = []models.Product{{ID: "P123", Name: "Headphone Wireless"}}

// ==========================
// Operations
// ==========================

func TestService_OperationsInvalidateCache(t *testing.T) {
	tests := []struct {
		name string
		run  func(s *Service) error
	}{
		{name: "clear", run: func(s *Service) error { _, err := s.Clear(context.Background()); return err }},
		{name: "seed", run: func(s *Service) error { _, err := s.Seed(context.Background()); return err }},
		{name: "reset", run: func(s *Service) error { _, err := s.Reset(context.Background()); return err }},
		{name: "status", run: func(s *Service) error { _, err := s.Status(context.Background()); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := &fakeCatalog{products: demoProducts}
			cache := newWarmCache(t, catalog)
			svc := NewService(&fakeMaintenance{seeded: true}, cache, catalog, nil, logger.NewTestLogger(t))

			require.NoError(t, tt.run(svc))
			assert.False(t, cache.Status(context.Background()).PatternsCached)
		})
	}
}

func TestService_ClearReportsDeletedRows(t *testing.T) {
	catalog := &fakeCatalog{}
	maintenance := &fakeMaintenance{counts: store.TableCounts{Messages: 7, Orders: 3, Products: 3, Warranties: 2}}
	index := &fakeIndex{}
	svc := NewService(maintenance, newWarmCache(t, catalog), catalog, index, logger.NewTestLogger(t))

	res, err := svc.Clear(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Database cleared successfully", res.Message)
	assert.Equal(t, int64(7), res.Deleted.Messages)
	require.Len(t, index.synced, 1)
	assert.Empty(t, index.synced[0])
}

func TestService_SeedSkipped(t *testing.T) {
	catalog := &fakeCatalog{products: demoProducts}
	svc := NewService(&fakeMaintenance{seeded: false}, newWarmCache(t, catalog), catalog, nil, logger.NewTestLogger(t))

	res, err := svc.Seed(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Seeded)
	assert.Contains(t, res.Message, "skipped")
}

func TestService_ResetSyncsIndex(t *testing.T) {
	catalog := &fakeCatalog{products: demoProducts}
	index := &fakeIndex{}
	svc := NewService(&fakeMaintenance{}, newWarmCache(t, catalog), catalog, index, logger.NewTestLogger(t))

	res, err := svc.Reset(context.Background())
	require.NoError(t, err)
	assert.Contains(t, res.Message, "reset")
	require.Len(t, index.synced, 1)
	assert.Equal(t, demoProducts, index.synced[0])
}

func TestService_StatusReportsCacheBeforeInvalidating(t *testing.T) {
	catalog := &fakeCatalog{products: demoProducts}
	maintenance := &fakeMaintenance{counts: store.TableCounts{Messages: 1, Orders: 3, Products: 3, Warranties: 2}}
	svc := NewService(maintenance, newWarmCache(t, catalog), catalog, nil, logger.NewTestLogger(t))

	res, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "connected", res.Status)
	assert.Equal(t, int64(3), res.Tables.Orders)
	assert.True(t, res.CacheStatus.PatternsCached)
	require.NotNil(t, res.CacheStatus.CacheAgeSeconds)

	again, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, again.CacheStatus.PatternsCached)
	assert.Nil(t, again.CacheStatus.CacheAgeSeconds)
}

func TestService_Failures(t *testing.T) {
	catalog := &fakeCatalog{products: demoProducts}
	cache := newWarmCache(t, catalog)
	svc := NewService(&fakeMaintenance{err: errors.New("connection refused")}, cache, catalog, nil, logger.NewTestLogger(t))

	_, err := svc.Clear(context.Background())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeAdminOperationFailed))
	assert.False(t, cache.Status(context.Background()).PatternsCached)

	_, err = svc.Seed(context.Background())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeAdminOperationFailed))

	_, err = svc.Reset(context.Background())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeAdminOperationFailed))

	_, err = svc.Status(context.Background())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeAdminOperationFailed))
	assert.Contains(t, apperrors.Normalize(err).Details, "connection refused")
}

func TestService_IndexFailureDoesNotFailOperation(t *testing.T) {
	catalog := &fakeCatalog{products: demoProducts}
	index := &fakeIndex{err: errors.New("es down")}
	svc := NewService(&fakeMaintenance{seeded: true}, newWarmCache(t, catalog), catalog, index, logger.NewTestLogger(t))

	res, err := svc.Seed(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Seeded)

	err = svc.SyncIndex(context.Background())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeAdminOperationFailed))
}

// ==========================
// Against the SQL store
// ==========================

func TestService_StatusAgainstStore(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).
		WillReturnRows(sqlmock.NewRows([]string{"messages", "orders", "products", "warranties"}).AddRow(4, 3, 3, 2))

	catalog := &fakeCatalog{products: demoProducts}
	svc := NewService(store.NewAdminStore(db), newWarmCache(t, catalog), catalog, nil, logger.NewTestLogger(t))

	res, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, store.TableCounts{Messages: 4, Orders: 3, Products: 3, Warranties: 2}, res.Tables)
	assert.NoError(t, mock.ExpectationsWereMet())
}
