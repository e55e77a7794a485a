package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "support-chatbot/internal/common/errors"
	"support-chatbot/internal/common/logger"
	"support-chatbot/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var productCols = []string{"id", "name", "description", "pros", "cons", "warranty_id"}

func headphoneRow() *sqlmock.Rows {
	return sqlmock.NewRows(productCols).
		AddRow("P123", "Headphone Wireless", "Headphone wireless berkualitas tinggi.", "Suara bagus", "Harga mahal", int64(1))
}

type stubMatcher struct {
	id    string
	found bool
	err   error
	calls int
}

func (m *stubMatcher) MatchProduct(ctx context.Context, name string) (string, bool, error) {
	m.calls++
	return m.id, m.found, m.err
}

// ==========================
// Conversation Store
// ==========================

func TestConversationStore_Append(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewConversationStore(db)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO messages").
		WithArgs("user1", "user", "garansi P123").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), now))

	turn, err := s.Append(context.Background(), "user1", models.RoleUser, "garansi P123")
	require.NoError(t, err)
	assert.Equal(t, int64(7), turn.ID)
	assert.Equal(t, now, turn.CreatedAt)
	assert.Equal(t, models.RoleUser, turn.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConversationStore_Append_Error(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewConversationStore(db)

	mock.ExpectQuery("INSERT INTO messages").WillReturnError(errors.New("connection reset"))

	_, err := s.Append(context.Background(), "user1", models.RoleUser, "hi")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeQueryExecutionFailed))
}

func TestConversationStore_Recent(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewConversationStore(db)
	now := time.Now()

	mock.ExpectQuery("SELECT id, user_id, role, content, created_at FROM messages").
		WithArgs("user1", 3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "role", "content", "created_at"}).
			AddRow(int64(3), "user1", "user", "bagaimana garansinya?", now).
			AddRow(int64(2), "user1", "assistant", "Pesanan ORD12345 saat ini berstatus: Shipped.", now.Add(-time.Second)).
			AddRow(int64(1), "user1", "user", "ORD12345", now.Add(-2*time.Second)))

	turns, err := s.Recent(context.Background(), "user1", 3)
	require.NoError(t, err)
	require.Len(t, turns, 3)
	assert.Equal(t, int64(3), turns[0].ID)
	assert.Equal(t, models.RoleAssistant, turns[1].Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConversationStore_Recent_ZeroLimit(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewConversationStore(db)

	turns, err := s.Recent(context.Background(), "user1", 0)
	require.NoError(t, err)
	assert.Empty(t, turns)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConversationStore_History(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewConversationStore(db)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"role", "content", "created_at"})
	contents := []string{"halo", "Ada yang bisa saya bantu?", `{"tool":"get_order_status"}`}
	roles := []string{"user", "assistant", "tool"}
	for i := range contents {
		rows.AddRow(roles[i], contents[i], now.Add(time.Duration(i)*time.Second))
	}
	mock.ExpectQuery("SELECT role, content, created_at FROM messages").
		WithArgs("user1").
		WillReturnRows(rows)

	history, err := s.History(context.Background(), "user1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i := range contents {
		assert.Equal(t, models.Role(roles[i]), history[i].Role)
		assert.Equal(t, contents[i], history[i].Content)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Catalog Store: products
// ==========================

func TestCatalogStore_ListProducts(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewCatalogStore(db, nil, logger.NewNoOpLogger())

	mock.ExpectQuery("SELECT (.+) FROM products ORDER BY seq").
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow("P123", "Headphone Wireless", "d", "p", "c", int64(1)).
			AddRow("P999", "Kabel Data", "d", "", "", nil))

	products, err := s.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Headphone Wireless", products[0].Name)
	require.NotNil(t, products[0].WarrantyID)
	assert.Equal(t, int64(1), *products[0].WarrantyID)
	assert.Nil(t, products[1].WarrantyID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogStore_FindProduct(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		setup      func(mock sqlmock.Sqlmock)
		wantName   string
	}{
		{
			name:       "exact id",
			identifier: "p123",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM products WHERE id = ").WithArgs("P123").WillReturnRows(headphoneRow())
			},
			wantName: "Headphone Wireless",
		},
		{
			name:       "unknown id skips name search",
			identifier: "P999",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM products WHERE id = ").WithArgs("P999").WillReturnRows(sqlmock.NewRows(productCols))
			},
		},
		{
			name:       "name fragment",
			identifier: "headphone",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM products WHERE id = ").WithArgs("HEADPHONE").WillReturnRows(sqlmock.NewRows(productCols))
				mock.ExpectQuery("FROM products WHERE name ILIKE").WithArgs("%headphone%").WillReturnRows(headphoneRow())
			},
			wantName: "Headphone Wireless",
		},
		{
			name:       "name that starts with P is still searched",
			identifier: "Phone",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM products WHERE id = ").WithArgs("PHONE").WillReturnRows(sqlmock.NewRows(productCols))
				mock.ExpectQuery("FROM products WHERE name ILIKE").WithArgs("%Phone%").
					WillReturnRows(sqlmock.NewRows(productCols).AddRow("P234", "Smartphone X", "d", "p", "c", int64(2)))
			},
			wantName: "Smartphone X",
		},
		{
			name:       "like wildcards are escaped",
			identifier: "100%",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM products WHERE id = ").WithArgs("100%").WillReturnRows(sqlmock.NewRows(productCols))
				mock.ExpectQuery("FROM products WHERE name ILIKE").WithArgs(`%100\%%`).WillReturnRows(sqlmock.NewRows(productCols))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			s := NewCatalogStore(db, nil, logger.NewNoOpLogger())
			tt.setup(mock)

			info, err := s.FindProduct(context.Background(), tt.identifier)
			require.NoError(t, err)
			if tt.wantName == "" {
				assert.Nil(t, info)
			} else {
				require.NotNil(t, info)
				assert.Equal(t, tt.wantName, info.Name)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCatalogStore_FindProduct_EmptyIdentifier(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewCatalogStore(db, nil, logger.NewNoOpLogger())

	info, err := s.FindProduct(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, info)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogStore_FindProduct_UsesMatcher(t *testing.T) {
	db, mock := setupMockDB(t)
	matcher := &stubMatcher{id: "P123", found: true}
	s := NewCatalogStore(db, matcher, logger.NewNoOpLogger())

	mock.ExpectQuery("FROM products WHERE id = ").WithArgs("WIRELESS HEADSET").WillReturnRows(sqlmock.NewRows(productCols))
	mock.ExpectQuery("FROM products WHERE id = ").WithArgs("P123").WillReturnRows(headphoneRow())

	info, err := s.FindProduct(context.Background(), "wireless headset")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "P123", info.ID)
	assert.Equal(t, 1, matcher.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogStore_FindProduct_MatcherFailureFallsBack(t *testing.T) {
	db, mock := setupMockDB(t)
	matcher := &stubMatcher{err: errors.New("search unavailable")}
	s := NewCatalogStore(db, matcher, logger.NewNoOpLogger())

	mock.ExpectQuery("FROM products WHERE id = ").WithArgs("HEADPHONE").WillReturnRows(sqlmock.NewRows(productCols))
	mock.ExpectQuery("FROM products WHERE name ILIKE").WithArgs("%headphone%").WillReturnRows(headphoneRow())

	info, err := s.FindProduct(context.Background(), "headphone")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "P123", info.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogStore_FindProduct_MatcherMissFallsBack(t *testing.T) {
	db, mock := setupMockDB(t)
	matcher := &stubMatcher{found: false}
	s := NewCatalogStore(db, matcher, logger.NewNoOpLogger())

	mock.ExpectQuery("FROM products WHERE id = ").WithArgs("HEAD").WillReturnRows(sqlmock.NewRows(productCols))
	mock.ExpectQuery("FROM products WHERE name ILIKE").WithArgs("%head%").WillReturnRows(headphoneRow())

	info, err := s.FindProduct(context.Background(), "head")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "P123", info.ID)
	assert.Equal(t, 1, matcher.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogStore_FindProduct_StaleMatcherHitFallsBack(t *testing.T) {
	db, mock := setupMockDB(t)
	matcher := &stubMatcher{id: "P999", found: true}
	s := NewCatalogStore(db, matcher, logger.NewNoOpLogger())

	mock.ExpectQuery("FROM products WHERE id = ").WithArgs("HEADPHONE").WillReturnRows(sqlmock.NewRows(productCols))
	mock.ExpectQuery("FROM products WHERE id = ").WithArgs("P999").WillReturnRows(sqlmock.NewRows(productCols))
	mock.ExpectQuery("FROM products WHERE name ILIKE").WithArgs("%headphone%").WillReturnRows(headphoneRow())

	info, err := s.FindProduct(context.Background(), "headphone")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "P123", info.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogStore_FindProduct_NoMatchAnywhere(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewCatalogStore(db, &stubMatcher{}, logger.NewNoOpLogger())

	mock.ExpectQuery("FROM products WHERE id = ").WithArgs("KULKAS").WillReturnRows(sqlmock.NewRows(productCols))
	mock.ExpectQuery("FROM products WHERE name ILIKE").WithArgs("%kulkas%").WillReturnRows(sqlmock.NewRows(productCols))

	info, err := s.FindProduct(context.Background(), "kulkas")
	require.NoError(t, err)
	assert.Nil(t, info)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Catalog Store: warranties
// ==========================

func TestCatalogStore_FindWarranty(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewCatalogStore(db, nil, logger.NewNoOpLogger())

	mock.ExpectQuery("FROM products WHERE id = ").WithArgs("P123").WillReturnRows(headphoneRow())
	mock.ExpectQuery("SELECT duration_months, terms FROM warranties WHERE id = ").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"duration_months", "terms"}).AddRow(24, "Hanya mencakup cacat produksi."))

	info, err := s.FindWarranty(context.Background(), "P123")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, models.WarrantyInfo{
		Product:        "Headphone Wireless",
		ProductID:      "P123",
		DurationMonths: 24,
		Terms:          "Hanya mencakup cacat produksi.",
	}, *info)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogStore_FindWarranty_ProductWithoutWarranty(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewCatalogStore(db, nil, logger.NewNoOpLogger())

	mock.ExpectQuery("FROM products WHERE id = ").WithArgs("P999").
		WillReturnRows(sqlmock.NewRows(productCols).AddRow("P999", "Kabel Data", "d", "", "", nil))

	info, err := s.FindWarranty(context.Background(), "P999")
	require.NoError(t, err)
	assert.Nil(t, info)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogStore_ListWarranties(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewCatalogStore(db, nil, logger.NewNoOpLogger())

	mock.ExpectQuery("FROM warranties w LEFT JOIN products p").
		WillReturnRows(sqlmock.NewRows([]string{"id", "duration_months", "terms", "products"}).
			AddRow(int64(1), 24, "Hanya mencakup cacat produksi.", "{P123,P345}").
			AddRow(int64(2), 12, "Termasuk perlindungan kerusakan tidak disengaja.", "{}"))

	listings, err := s.ListWarranties(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, []string{"P123", "P345"}, listings[0].Products)
	assert.Empty(t, listings[1].Products)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Catalog Store: orders
// ==========================

var orderStatusCols = []string{"order_id", "status", "tracking", "user_id", "product_id", "name"}

func TestCatalogStore_UserOrderStatus(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewCatalogStore(db, nil, logger.NewNoOpLogger())

	mock.ExpectQuery("FROM orders o JOIN products p (.+) WHERE o.order_id = (.+) AND o.user_id = ").
		WithArgs("ORD12345", "user1").
		WillReturnRows(sqlmock.NewRows(orderStatusCols).
			AddRow("ORD12345", "Shipped", "TRACK123", "user1", "P123", "Headphone Wireless"))

	st, err := s.UserOrderStatus(context.Background(), "user1", "ord12345")
	require.NoError(t, err)
	assert.True(t, st.Found)
	assert.Equal(t, "Shipped", st.Status)
	require.NotNil(t, st.Tracking)
	assert.Equal(t, "TRACK123", *st.Tracking)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogStore_UserOrderStatus_OtherUsersOrder(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewCatalogStore(db, nil, logger.NewNoOpLogger())

	mock.ExpectQuery("FROM orders o").
		WithArgs("ORD23456", "user1").
		WillReturnRows(sqlmock.NewRows(orderStatusCols))

	st, err := s.UserOrderStatus(context.Background(), "user1", "ORD23456")
	require.NoError(t, err)
	assert.False(t, st.Found)
	assert.Equal(t, "ORD23456", st.OrderID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogStore_OrderStatus_NoTracking(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewCatalogStore(db, nil, logger.NewNoOpLogger())

	mock.ExpectQuery("FROM orders o").
		WithArgs("ORD23456").
		WillReturnRows(sqlmock.NewRows(orderStatusCols).
			AddRow("ORD23456", "Processing", nil, "user2", "P234", "Smartphone X"))

	st, err := s.OrderStatus(context.Background(), "ORD23456")
	require.NoError(t, err)
	assert.True(t, st.Found)
	assert.Nil(t, st.Tracking)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogStore_LatestOrder(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewCatalogStore(db, nil, logger.NewNoOpLogger())

	mock.ExpectQuery("ORDER BY o.created_at DESC, o.id DESC LIMIT 1").
		WithArgs("user1").
		WillReturnRows(sqlmock.NewRows(orderStatusCols).
			AddRow("ORD34567", "Delivered", "TRACK789", "user1", "P345", "Gaming Laptop Pro"))
	mock.ExpectQuery("ORDER BY o.created_at DESC, o.id DESC LIMIT 1").
		WithArgs("user3").
		WillReturnRows(sqlmock.NewRows(orderStatusCols))

	latest, err := s.LatestOrder(context.Background(), "user1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "P345", latest.ProductID)

	none, err := s.LatestOrder(context.Background(), "user3")
	require.NoError(t, err)
	assert.Nil(t, none)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogStore_UserOrders(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewCatalogStore(db, nil, logger.NewNoOpLogger())
	now := time.Now()

	mock.ExpectQuery("SELECT o.order_id, o.status, o.tracking, o.created_at").
		WithArgs("user1").
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "status", "tracking", "created_at", "product_id", "name"}).
			AddRow("ORD34567", "Delivered", "TRACK789", now, "P345", "Gaming Laptop Pro").
			AddRow("ORD12345", "Shipped", "TRACK123", now.Add(-time.Hour), "P123", "Headphone Wireless"))

	orders, err := s.UserOrders(context.Background(), "user1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "ORD34567", orders[0].OrderID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogStore_QueryError(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewCatalogStore(db, nil, logger.NewNoOpLogger())

	mock.ExpectQuery("FROM orders o").WillReturnError(errors.New("timeout"))

	_, err := s.OrderStatus(context.Background(), "ORD1")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeQueryExecutionFailed))
}

// ==========================
// Admin Store
// ==========================

func expectClear(mock sqlmock.Sqlmock) {
	mock.ExpectExec("DELETE FROM messages").WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec("DELETE FROM orders").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM products").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM warranties").WillReturnResult(sqlmock.NewResult(0, 2))
}

func expectSeedInserts(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("SELECT EXISTS").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("INSERT INTO warranties").WithArgs(24, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(10)))
	mock.ExpectQuery("INSERT INTO warranties").WithArgs(12, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))
	mock.ExpectExec("INSERT INTO products").
		WithArgs("P123", "Headphone Wireless", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO products").
		WithArgs("P234", "Smartphone X", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO products").
		WithArgs("P345", "Gaming Laptop Pro", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO orders").
		WithArgs("ORD12345", "user1", "Shipped", "TRACK123", "P123").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO orders").
		WithArgs("ORD23456", "user2", "Processing", nil, "P234").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO orders").
		WithArgs("ORD34567", "user1", "Delivered", "TRACK789", "P345").
		WillReturnResult(sqlmock.NewResult(0, 1))
}

func TestAdminStore_Clear(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewAdminStore(db)

	mock.ExpectBegin()
	expectClear(mock)
	mock.ExpectCommit()

	deleted, err := s.Clear(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TableCounts{Messages: 5, Orders: 3, Products: 3, Warranties: 2}, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminStore_Clear_RollsBack(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewAdminStore(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM messages").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM orders").WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	_, err := s.Clear(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clear orders")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminStore_Seed(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewAdminStore(db)

	mock.ExpectBegin()
	expectSeedInserts(mock)
	mock.ExpectCommit()

	seeded, err := s.Seed(context.Background())
	require.NoError(t, err)
	assert.True(t, seeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminStore_Seed_Idempotent(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewAdminStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectCommit()

	seeded, err := s.Seed(context.Background())
	require.NoError(t, err)
	assert.False(t, seeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminStore_Reset(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewAdminStore(db)

	mock.ExpectBegin()
	expectClear(mock)
	expectSeedInserts(mock)
	mock.ExpectCommit()

	deleted, err := s.Reset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), deleted.Messages)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminStore_Counts(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewAdminStore(db)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"m", "o", "p", "w"}).AddRow(4, 3, 3, 2))

	counts, err := s.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TableCounts{Messages: 4, Orders: 3, Products: 3, Warranties: 2}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS messages").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, EnsureSchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
