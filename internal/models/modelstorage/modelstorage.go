// Package modelstorage provides types for storage backends.

package modelstorage

import "github.com/shopspring/decimal"

// Order status lifecycle values. New orders always start as pending;
// admin updates may move an order between any two statuses.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// ValidOrderStatus reports whether s is one of the known order statuses.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

type UserStorageEntry struct {
	ID           uint            `db:"id"`
	UserID       string          `db:"user_id"`
	Name         string          `db:"name"`
	Email        string          `db:"email"`
	PasswordHash string          `db:"password_hash"`
	Balance      decimal.Decimal `db:"balance"`
	IsAdmin      bool            `db:"is_admin"`
	RegisteredAt string          `db:"registered_at"`
}

type OrderStorageEntry struct {
	ID          uint            `db:"id"`
	OrderID     string          `db:"order_id"`
	UserID      string          `db:"user_id"`
	ServiceID   string          `db:"service_id"`
	ServiceName string          `db:"service_name"`
	Quantity    int             `db:"quantity"`
	Target      string          `db:"target"`
	TotalPrice  decimal.Decimal `db:"total_price"`
	Status      string          `db:"status"`
	CreatedAt   string          `db:"created_at"`
}
