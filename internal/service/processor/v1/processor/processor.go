// Package processor provides intermediary layer functionality between the storage and API endpoint handlers.

package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danilovkiri/dk-go-smmpanel/internal/config"
	"github.com/danilovkiri/dk-go-smmpanel/internal/models/modeldto"
	"github.com/danilovkiri/dk-go-smmpanel/internal/models/modelstorage"
	"github.com/danilovkiri/dk-go-smmpanel/internal/service/catalog/v1"
	"github.com/danilovkiri/dk-go-smmpanel/internal/service/catalog/v1/static"
	"github.com/danilovkiri/dk-go-smmpanel/internal/service/fulfiller/v1"
	serviceErrors "github.com/danilovkiri/dk-go-smmpanel/internal/service/processor/v1/errors"
	"github.com/danilovkiri/dk-go-smmpanel/internal/storage/v1"
	storageErrors "github.com/danilovkiri/dk-go-smmpanel/internal/storage/v1/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

var quantityUnit = decimal.NewFromInt(1000)

// Processor defines attributes of a struct available to its methods.
type Processor struct {
	storage   storage.Storage
	catalog   catalog.Catalog
	fulfiller fulfiller.Fulfiller
}

// InitService initializes an intermediary service for data processing.
func InitService(st storage.Storage, cat catalog.Catalog, ful fulfiller.Fulfiller) (*Processor, error) {
	if st == nil {
		return nil, &serviceErrors.ServiceFoundNilArgument{Msg: "nil storage was passed to service initializer"}
	}
	if cat == nil {
		return nil, &serviceErrors.ServiceFoundNilArgument{Msg: "nil catalog was passed to service initializer"}
	}
	if ful == nil {
		return nil, &serviceErrors.ServiceFoundNilArgument{Msg: "nil fulfiller was passed to service initializer"}
	}
	processor := &Processor{
		storage:   st,
		catalog:   cat,
		fulfiller: ful,
	}
	return processor, nil
}

// RegisterUser processes user register requests.
func (proc *Processor) RegisterUser(ctx context.Context, newUser modeldto.NewUser) (*modeldto.User, error) {
	name := strings.TrimSpace(newUser.Name)
	email := strings.ToLower(strings.TrimSpace(newUser.Email))
	if name == "" || email == "" || newUser.Password == "" {
		return nil, &serviceErrors.ServiceIllegalInputError{Msg: "name, email and password are required"}
	}
	if !strings.Contains(email, "@") {
		return nil, &serviceErrors.ServiceIllegalInputError{Msg: fmt.Sprintf("invalid email %s", email)}
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newUser.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := modelstorage.UserStorageEntry{
		UserID:       uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(passwordHash),
		Balance:      decimal.Zero,
		IsAdmin:      false,
		RegisteredAt: time.Now().Format(time.RFC3339),
	}
	err = proc.storage.AddNewUser(ctx, user)
	if err != nil {
		return nil, err
	}
	return publicUser(user), nil
}

// LoginUser processes user login requests.
func (proc *Processor) LoginUser(ctx context.Context, credentials modeldto.Credentials) (*modeldto.User, error) {
	email := strings.ToLower(strings.TrimSpace(credentials.Email))
	user, err := proc.storage.GetUserByEmail(ctx, email)
	if err != nil {
		// identical error for unknown email and wrong password
		return nil, &serviceErrors.ServiceIncorrectCredentialsError{Msg: "invalid credentials"}
	}
	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credentials.Password))
	if err != nil {
		return nil, &serviceErrors.ServiceIncorrectCredentialsError{Msg: "invalid credentials"}
	}
	return publicUser(*user), nil
}

// GetUser processes user query requests.
func (proc *Processor) GetUser(ctx context.Context, userID string) (*modeldto.User, error) {
	user, err := proc.storage.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return publicUser(*user), nil
}

// GetAllUsers processes admin user listing requests.
func (proc *Processor) GetAllUsers(ctx context.Context) ([]modeldto.User, error) {
	users, err := proc.storage.GetUsers(ctx)
	if err != nil {
		return nil, err
	}
	responseUsers := make([]modeldto.User, 0, len(users))
	for _, user := range users {
		responseUsers = append(responseUsers, *publicUser(user))
	}
	return responseUsers, nil
}

// GetServices processes service catalog query requests.
func (proc *Processor) GetServices(_ context.Context) ([]modeldto.Service, error) {
	return proc.catalog.List(true), nil
}

// CreateOrder validates a new order against the catalog, computes its frozen
// total price and persists it atomically with the balance debit.
func (proc *Processor) CreateOrder(ctx context.Context, userID string, newOrder modeldto.NewOrder) (*modeldto.Order, decimal.Decimal, error) {
	target := strings.TrimSpace(newOrder.Target)
	if newOrder.ServiceID == "" || target == "" {
		return nil, decimal.Decimal{}, &serviceErrors.ServiceIllegalInputError{Msg: "serviceId, quantity and target are required"}
	}
	if newOrder.Quantity <= 0 {
		return nil, decimal.Decimal{}, &serviceErrors.ServiceIllegalInputError{Msg: "quantity must be positive"}
	}
	service, ok := proc.catalog.Get(newOrder.ServiceID)
	if !ok || service.Status != static.ServiceStatusActive {
		return nil, decimal.Decimal{}, &serviceErrors.ServiceInvalidServiceError{Msg: fmt.Sprintf("invalid service %s", newOrder.ServiceID)}
	}
	totalPrice := service.RatePer1000.Mul(decimal.NewFromInt(int64(newOrder.Quantity))).Div(quantityUnit)
	order := modelstorage.OrderStorageEntry{
		OrderID:     uuid.New().String(),
		UserID:      userID,
		ServiceID:   service.ID,
		ServiceName: service.Name,
		Quantity:    newOrder.Quantity,
		Target:      target,
		TotalPrice:  totalPrice,
		Status:      modelstorage.OrderStatusPending,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	newBalance, err := proc.storage.AddNewOrderWithDebit(ctx, order)
	if err != nil {
		return nil, decimal.Decimal{}, err
	}
	return responseOrder(order), newBalance, nil
}

// GetOrders processes orders query requests, returning orders in creation order.
func (proc *Processor) GetOrders(ctx context.Context, userID string) ([]modeldto.Order, error) {
	orders, err := proc.storage.GetOrders(ctx, userID)
	if err != nil {
		return nil, err
	}
	responseOrders := make([]modeldto.Order, 0, len(orders))
	for _, order := range orders {
		responseOrders = append(responseOrders, *responseOrder(order))
	}
	return responseOrders, nil
}

// GetAllOrders processes admin orders listing requests.
func (proc *Processor) GetAllOrders(ctx context.Context) ([]modeldto.Order, error) {
	orders, err := proc.storage.GetAllOrders(ctx)
	if err != nil {
		return nil, err
	}
	responseOrders := make([]modeldto.Order, 0, len(orders))
	for _, order := range orders {
		responseOrders = append(responseOrders, *responseOrder(order))
	}
	return responseOrders, nil
}

// SimulateProgress completes one of the user's pending orders via the
// fulfillment simulator. A nil order means nothing was pending.
func (proc *Processor) SimulateProgress(ctx context.Context, userID string) (*modeldto.Order, error) {
	order, err := proc.fulfiller.ProcessOne(ctx, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, nil
	}
	return responseOrder(*order), nil
}

// SetOrderStatus processes admin order status updates. Any known status may
// be set regardless of the current one.
func (proc *Processor) SetOrderStatus(ctx context.Context, orderID string, status string) (*modeldto.Order, error) {
	if !modelstorage.ValidOrderStatus(status) {
		return nil, &serviceErrors.ServiceIllegalInputError{Msg: fmt.Sprintf("invalid status %s", status)}
	}
	order, err := proc.storage.SetOrderStatus(ctx, orderID, status)
	if err != nil {
		return nil, err
	}
	return responseOrder(*order), nil
}

// SeedAdmin ensures the administrator account from the configuration exists.
func (proc *Processor) SeedAdmin(ctx context.Context, cfg *config.AdminConfig) error {
	_, err := proc.storage.GetUserByEmail(ctx, strings.ToLower(cfg.AdminEmail))
	if err == nil {
		return nil
	}
	var notFoundError *storageErrors.NotFoundError
	if !errors.As(err, &notFoundError) {
		return err
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := modelstorage.UserStorageEntry{
		UserID:       uuid.New().String(),
		Name:         "Admin",
		Email:        strings.ToLower(cfg.AdminEmail),
		PasswordHash: string(passwordHash),
		Balance:      decimal.Zero,
		IsAdmin:      true,
		RegisteredAt: time.Now().Format(time.RFC3339),
	}
	return proc.storage.AddNewUser(ctx, admin)
}

func publicUser(user modelstorage.UserStorageEntry) *modeldto.User {
	return &modeldto.User{
		ID:      user.UserID,
		Name:    user.Name,
		Email:   user.Email,
		Balance: user.Balance,
		IsAdmin: user.IsAdmin,
	}
}

func responseOrder(order modelstorage.OrderStorageEntry) *modeldto.Order {
	return &modeldto.Order{
		ID:          order.OrderID,
		UserID:      order.UserID,
		ServiceID:   order.ServiceID,
		ServiceName: order.ServiceName,
		Quantity:    order.Quantity,
		Target:      order.Target,
		TotalPrice:  order.TotalPrice,
		Status:      order.Status,
		CreatedAt:   order.CreatedAt,
	}
}
