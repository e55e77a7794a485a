// internal/models/catalog.go
package models

import (
	"regexp"
	"strings"
	"time"
)

var productIDPattern = regexp.MustCompile(`(?i)^P\d+$`)

// IsProductID reports whether s has the shape of a product id ("P" followed by digits).
func IsProductID(s string) bool {
	return productIDPattern.MatchString(strings.TrimSpace(s))
}

type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Pros        string `json:"pros"`
	Cons        string `json:"cons"`
	WarrantyID  *int64 `json:"warranty_id"`
}

type Warranty struct {
	ID             int64  `json:"id"`
	DurationMonths int    `json:"duration_months"`
	Terms          string `json:"terms"`
}

type Order struct {
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	Status    string    `json:"status"`
	Tracking  *string   `json:"tracking"`
	CreatedAt time.Time `json:"created_at"`
	ProductID string    `json:"product_id"`
}

// OrderStatus is the result of an order lookup. Found is false when no order matched.
type OrderStatus struct {
	Found       bool    `json:"found"`
	OrderID     string  `json:"order_id,omitempty"`
	Status      string  `json:"status,omitempty"`
	Tracking    *string `json:"tracking,omitempty"`
	UserID      string  `json:"user_id,omitempty"`
	ProductID   string  `json:"product_id,omitempty"`
	ProductName string  `json:"product_name,omitempty"`
}

// OrderSummary is one row of a user's order list.
type OrderSummary struct {
	OrderID     string    `json:"order_id"`
	Status      string    `json:"status"`
	Tracking    *string   `json:"tracking"`
	CreatedAt   time.Time `json:"created_at"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
}

type ProductInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Pros        string `json:"pros"`
	Cons        string `json:"cons"`
}

type WarrantyInfo struct {
	Product        string `json:"product"`
	ProductID      string `json:"product_id"`
	DurationMonths int    `json:"duration_months"`
	Terms          string `json:"terms"`
}

// WarrantyListing joins a warranty with the products that reference it.
type WarrantyListing struct {
	ID             int64    `json:"id"`
	DurationMonths int      `json:"duration_months"`
	Terms          string   `json:"terms"`
	Products       []string `json:"products"`
}
