// internal/store/admin.go
package store

import (
	"context"
	"database/sql"
	"fmt"

	"support-chatbot/internal/common/database"
)

// TableCounts holds the row count of every table.
type TableCounts struct {
	Messages   int64 `json:"messages"`
	Orders     int64 `json:"orders"`
	Products   int64 `json:"products"`
	Warranties int64 `json:"warranties"`
}

// AdminStore runs the bulk maintenance operations. Each runs in its own transaction.
type AdminStore struct {
	db *sql.DB
}

func NewAdminStore(db *sql.DB) *AdminStore {
	return &AdminStore{db: db}
}

// clearOrder deletes children before the rows they reference.
var clearOrder = []string{"messages", "orders", "products", "warranties"}

// Clear deletes every row from every table and reports how many rows each table lost.
func (s *AdminStore) Clear(ctx context.Context) (TableCounts, error) {
	var deleted TableCounts
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return clearTx(ctx, tx, &deleted)
	})
	return deleted, err
}

func clearTx(ctx context.Context, tx *sql.Tx, deleted *TableCounts) error {
	for _, table := range clearOrder {
		res, err := tx.ExecContext(ctx, "DELETE FROM "+table)
		if err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		switch table {
		case "messages":
			deleted.Messages = n
		case "orders":
			deleted.Orders = n
		case "products":
			deleted.Products = n
		case "warranties":
			deleted.Warranties = n
		}
	}
	return nil
}

// Seed inserts the demo catalog. It is a no-op returning false when any order already exists.
func (s *AdminStore) Seed(ctx context.Context) (bool, error) {
	seeded := false
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		seeded, err = seedTx(ctx, tx)
		return err
	})
	return seeded, err
}

// Reset clears and reseeds inside a single transaction.
func (s *AdminStore) Reset(ctx context.Context) (TableCounts, error) {
	var deleted TableCounts
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := clearTx(ctx, tx, &deleted); err != nil {
			return err
		}
		_, err := seedTx(ctx, tx)
		return err
	})
	return deleted, err
}

func seedTx(ctx context.Context, tx *sql.Tx) (bool, error) {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM orders)`).Scan(&exists); err != nil {
		return false, fmt.Errorf("check seed state: %w", err)
	}
	if exists {
		return false, nil
	}

	warrantyIDs := make(map[string]int64, len(seedWarranties))
	for _, w := range seedWarranties {
		var id int64
		err := tx.QueryRowContext(ctx,
			`INSERT INTO warranties (duration_months, terms) VALUES ($1, $2) RETURNING id`,
			w.durationMonths, w.terms,
		).Scan(&id)
		if err != nil {
			return false, fmt.Errorf("seed warranty %s: %w", w.key, err)
		}
		warrantyIDs[w.key] = id
	}

	for _, p := range seedProducts {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO products (id, name, description, pros, cons, warranty_id) VALUES ($1, $2, $3, $4, $5, $6)`,
			p.id, p.name, p.description, p.pros, p.cons, warrantyIDs[p.warrantyKey],
		)
		if err != nil {
			return false, fmt.Errorf("seed product %s: %w", p.id, err)
		}
	}

	for _, o := range seedOrders {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO orders (order_id, user_id, status, tracking, product_id) VALUES ($1, $2, $3, $4, $5)`,
			o.orderID, o.userID, o.status, o.tracking, o.productID,
		)
		if err != nil {
			return false, fmt.Errorf("seed order %s: %w", o.orderID, err)
		}
	}

	return true, nil
}

// Counts returns the current row count per table.
func (s *AdminStore) Counts(ctx context.Context) (TableCounts, error) {
	var c TableCounts
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM messages),
			(SELECT COUNT(*) FROM orders),
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM warranties)`,
	).Scan(&c.Messages, &c.Orders, &c.Products, &c.Warranties)
	if err != nil {
		return TableCounts{}, fmt.Errorf("count rows: %w", err)
	}
	return c, nil
}
