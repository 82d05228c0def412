package processor

import (
	"context"

	"github.com/danilovkiri/dk-go-smmpanel/internal/models/modeldto"
	"github.com/shopspring/decimal"
)

// UserProcessor defines a set of methods for user account flows.
type UserProcessor interface {
	RegisterUser(ctx context.Context, newUser modeldto.NewUser) (*modeldto.User, error)
	LoginUser(ctx context.Context, credentials modeldto.Credentials) (*modeldto.User, error)
	GetUser(ctx context.Context, userID string) (*modeldto.User, error)
	GetAllUsers(ctx context.Context) ([]modeldto.User, error)
}

// OrderProcessor defines a set of methods for catalog and order flows.
type OrderProcessor interface {
	GetServices(ctx context.Context) ([]modeldto.Service, error)
	CreateOrder(ctx context.Context, userID string, newOrder modeldto.NewOrder) (*modeldto.Order, decimal.Decimal, error)
	GetOrders(ctx context.Context, userID string) ([]modeldto.Order, error)
	GetAllOrders(ctx context.Context) ([]modeldto.Order, error)
	SimulateProgress(ctx context.Context, userID string) (*modeldto.Order, error)
	SetOrderStatus(ctx context.Context, orderID string, status string) (*modeldto.Order, error)
}

// Processor defines a set of methods for types implementing Processor.
type Processor interface {
	UserProcessor
	OrderProcessor
}
