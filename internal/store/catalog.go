// internal/store/catalog.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	apperrors "support-chatbot/internal/common/errors"
	"support-chatbot/internal/common/logger"
	"support-chatbot/internal/models"

	"github.com/lib/pq"
)

// ProductMatcher resolves a free-text product name to a product id.
type ProductMatcher interface {
	MatchProduct(ctx context.Context, name string) (productID string, found bool, err error)
}

// CatalogStore answers product, warranty and order lookups.
type CatalogStore struct {
	db      *sql.DB
	matcher ProductMatcher
	logger  logger.Logger
}

// NewCatalogStore builds a catalog store. matcher may be nil, in which case name lookups use ILIKE.
func NewCatalogStore(db *sql.DB, matcher ProductMatcher, log logger.Logger) *CatalogStore {
	return &CatalogStore{
		db:      db,
		matcher: matcher,
		logger:  log.With(map[string]interface{}{"component": "catalog_store"}),
	}
}

const productColumns = `id, name, description, COALESCE(pros, ''), COALESCE(cons, ''), warranty_id`

func scanProduct(row interface{ Scan(...interface{}) error }) (*models.Product, error) {
	var p models.Product
	var warrantyID sql.NullInt64
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Pros, &p.Cons, &warrantyID); err != nil {
		return nil, err
	}
	if warrantyID.Valid {
		id := warrantyID.Int64
		p.WarrantyID = &id
	}
	return &p, nil
}

// ListProducts returns the catalog in insertion order.
func (s *CatalogStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY seq ASC`)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list_products", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("list_products", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list_products", err)
	}
	return products, nil
}

// GetProduct returns the product with the exact id, or nil when absent.
func (s *CatalogStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, strings.ToUpper(strings.TrimSpace(id))))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("get_product", err)
	}
	return p, nil
}

// lookupProduct resolves an identifier: exact id first, then a name search unless the identifier is id-shaped.
func (s *CatalogStore) lookupProduct(ctx context.Context, identifier string) (*models.Product, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, nil
	}

	p, err := s.GetProduct(ctx, identifier)
	if err != nil || p != nil {
		return p, err
	}
	if models.IsProductID(identifier) {
		return nil, nil
	}

	if s.matcher != nil {
		id, found, err := s.matcher.MatchProduct(ctx, identifier)
		switch {
		case err != nil:
			s.logger.Warn("Product search failed, falling back to name scan", map[string]interface{}{
				"identifier": identifier,
				"error":      err.Error(),
			})
		case found:
			p, err := s.GetProduct(ctx, id)
			if err != nil || p != nil {
				return p, err
			}
			s.logger.Debug("Search hit missing from catalog, falling back to name scan", map[string]interface{}{
				"identifier": identifier,
				"productId":  id,
			})
		}
	}

	// reached whenever search did not resolve a product

	p, err = scanProduct(s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE name ILIKE $1 ORDER BY seq ASC LIMIT 1`,
		"%"+escapeLike(identifier)+"%"))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("search_product", err)
	}
	return p, nil
}

// FindProduct returns product details by id or name, or nil when nothing matches.
func (s *CatalogStore) FindProduct(ctx context.Context, identifier string) (*models.ProductInfo, error) {
	p, err := s.lookupProduct(ctx, identifier)
	if err != nil || p == nil {
		return nil, err
	}
	return &models.ProductInfo{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Pros:        p.Pros,
		Cons:        p.Cons,
	}, nil
}

// FindWarranty returns the warranty of the product named by identifier, or nil when the
// product is unknown or carries no warranty.
func (s *CatalogStore) FindWarranty(ctx context.Context, identifier string) (*models.WarrantyInfo, error) {
	p, err := s.lookupProduct(ctx, identifier)
	if err != nil || p == nil || p.WarrantyID == nil {
		return nil, err
	}

	info := &models.WarrantyInfo{Product: p.Name, ProductID: p.ID}
	err = s.db.QueryRowContext(ctx,
		`SELECT duration_months, terms FROM warranties WHERE id = $1`, *p.WarrantyID,
	).Scan(&info.DurationMonths, &info.Terms)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("get_warranty", err)
	}
	return info, nil
}

// ListWarranties returns every warranty policy with the ids of products that use it.
func (s *CatalogStore) ListWarranties(ctx context.Context) ([]models.WarrantyListing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT w.id, w.duration_months, w.terms,
		       COALESCE(array_agg(p.id ORDER BY p.seq) FILTER (WHERE p.id IS NOT NULL), '{}')
		FROM warranties w
		LEFT JOIN products p ON p.warranty_id = w.id
		GROUP BY w.id, w.duration_months, w.terms
		ORDER BY w.id ASC`)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list_warranties", err)
	}
	defer rows.Close()

	listings := []models.WarrantyListing{}
	for rows.Next() {
		var w models.WarrantyListing
		var products pq.StringArray
		if err := rows.Scan(&w.ID, &w.DurationMonths, &w.Terms, &products); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("list_warranties", err)
		}
		w.Products = []string(products)
		listings = append(listings, w)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list_warranties", err)
	}
	return listings, nil
}

const orderStatusQuery = `
	SELECT o.order_id, o.status, o.tracking, o.user_id, o.product_id, p.name
	FROM orders o
	JOIN products p ON p.id = o.product_id`

func scanOrderStatus(row *sql.Row, queryType string) (models.OrderStatus, error) {
	var st models.OrderStatus
	var tracking sql.NullString
	err := row.Scan(&st.OrderID, &st.Status, &tracking, &st.UserID, &st.ProductID, &st.ProductName)
	if errors.Is(err, sql.ErrNoRows) {
		return models.OrderStatus{Found: false}, nil
	}
	if err != nil {
		return models.OrderStatus{}, apperrors.NewQueryExecutionFailedError(queryType, err)
	}
	st.Found = true
	if tracking.Valid {
		t := tracking.String
		st.Tracking = &t
	}
	return st, nil
}

// OrderStatus looks an order up by id regardless of owner.
func (s *CatalogStore) OrderStatus(ctx context.Context, orderID string) (models.OrderStatus, error) {
	orderID = strings.ToUpper(strings.TrimSpace(orderID))
	st, err := scanOrderStatus(s.db.QueryRowContext(ctx, orderStatusQuery+`
	WHERE o.order_id = $1`, orderID), "order_status")
	if err == nil && !st.Found {
		st.OrderID = orderID
	}
	return st, err
}

// UserOrderStatus looks an order up by id, restricted to orders owned by userID.
func (s *CatalogStore) UserOrderStatus(ctx context.Context, userID, orderID string) (models.OrderStatus, error) {
	orderID = strings.ToUpper(strings.TrimSpace(orderID))
	st, err := scanOrderStatus(s.db.QueryRowContext(ctx, orderStatusQuery+`
	WHERE o.order_id = $1 AND o.user_id = $2`, orderID, userID), "user_order_status")
	if err == nil && !st.Found {
		st.OrderID = orderID
	}
	return st, err
}

// LatestOrder returns the user's most recent order, or nil when the user has none.
func (s *CatalogStore) LatestOrder(ctx context.Context, userID string) (*models.OrderStatus, error) {
	st, err := scanOrderStatus(s.db.QueryRowContext(ctx, orderStatusQuery+`
	WHERE o.user_id = $1
	ORDER BY o.created_at DESC, o.id DESC
	LIMIT 1`, userID), "latest_order")
	if err != nil || !st.Found {
		return nil, err
	}
	return &st, nil
}

// UserOrders lists the user's orders, newest first.
func (s *CatalogStore) UserOrders(ctx context.Context, userID string) ([]models.OrderSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.order_id, o.status, o.tracking, o.created_at, o.product_id, p.name
		FROM orders o
		JOIN products p ON p.id = o.product_id
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC, o.id DESC`, userID)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("user_orders", err)
	}
	defer rows.Close()

	orders := []models.OrderSummary{}
	for rows.Next() {
		var o models.OrderSummary
		var tracking sql.NullString
		if err := rows.Scan(&o.OrderID, &o.Status, &tracking, &o.CreatedAt, &o.ProductID, &o.ProductName); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("user_orders", err)
		}
		if tracking.Valid {
			t := tracking.String
			o.Tracking = &t
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("user_orders", err)
	}
	return orders, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
