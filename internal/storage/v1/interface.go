package storage

import (
	"context"

	"github.com/danilovkiri/dk-go-smmpanel/internal/models/modelstorage"
	"github.com/shopspring/decimal"
)

// Users defines a set of methods for user account storage.
type Users interface {
	AddNewUser(ctx context.Context, user modelstorage.UserStorageEntry) error
	GetUserByEmail(ctx context.Context, email string) (*modelstorage.UserStorageEntry, error)
	GetUser(ctx context.Context, userID string) (*modelstorage.UserStorageEntry, error)
	GetUsers(ctx context.Context) ([]modelstorage.UserStorageEntry, error)
}

// Orders defines a set of methods for order storage. AddNewOrderWithDebit
// must check the owner's balance, debit it and persist the order as one
// atomic unit, returning the post-debit balance.
type Orders interface {
	AddNewOrderWithDebit(ctx context.Context, order modelstorage.OrderStorageEntry) (decimal.Decimal, error)
	GetOrders(ctx context.Context, userID string) ([]modelstorage.OrderStorageEntry, error)
	GetAllOrders(ctx context.Context) ([]modelstorage.OrderStorageEntry, error)
	GetPendingOrders(ctx context.Context, userID string) ([]modelstorage.OrderStorageEntry, error)
	SetOrderStatus(ctx context.Context, orderID string, status string) (*modelstorage.OrderStorageEntry, error)
	CompletePendingOrder(ctx context.Context, orderID string) (*modelstorage.OrderStorageEntry, error)
}

// Storage defines a set of methods for types implementing Storage.
type Storage interface {
	Users
	Orders
}
