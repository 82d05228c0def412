// Package inmemory implements a process-local storage backend. All state is
// lost on restart, which matches the demo scope; the same mutex guards every
// read and mutation so a balance check can never race a debit.
package inmemory

import (
	"context"
	"strings"
	"sync"

	"github.com/danilovkiri/dk-go-smmpanel/internal/models/modelstorage"
	storageErrors "github.com/danilovkiri/dk-go-smmpanel/internal/storage/v1/errors"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type Storage struct {
	mu     sync.Mutex
	users  []modelstorage.UserStorageEntry
	orders []modelstorage.OrderStorageEntry
	log    *zerolog.Logger
}

// InitStorage initializes an empty in-memory storage.
func InitStorage(log *zerolog.Logger) *Storage {
	st := Storage{
		users:  make([]modelstorage.UserStorageEntry, 0),
		orders: make([]modelstorage.OrderStorageEntry, 0),
		log:    log,
	}
	log.Info().Msg("in-memory storage was initialized")
	return &st
}

func (s *Storage) AddNewUser(_ context.Context, user modelstorage.UserStorageEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if strings.EqualFold(s.users[i].Email, user.Email) {
			return &storageErrors.AlreadyExistsError{ID: user.Email}
		}
	}
	user.ID = uint(len(s.users) + 1)
	s.users = append(s.users, user)
	return nil
}

func (s *Storage) GetUserByEmail(_ context.Context, email string) (*modelstorage.UserStorageEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if strings.EqualFold(s.users[i].Email, email) {
			user := s.users[i]
			return &user, nil
		}
	}
	return nil, &storageErrors.NotFoundError{ID: email}
}

func (s *Storage) GetUser(_ context.Context, userID string) (*modelstorage.UserStorageEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].UserID == userID {
			user := s.users[i]
			return &user, nil
		}
	}
	return nil, &storageErrors.NotFoundError{ID: userID}
}

func (s *Storage) GetUsers(_ context.Context) ([]modelstorage.UserStorageEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]modelstorage.UserStorageEntry, len(s.users))
	copy(users, s.users)
	return users, nil
}

func (s *Storage) AddNewOrderWithDebit(_ context.Context, order modelstorage.OrderStorageEntry) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].UserID == order.UserID {
			if s.users[i].Balance.Cmp(order.TotalPrice) < 0 {
				return decimal.Decimal{}, &storageErrors.NotEnoughFundsError{ID: order.UserID}
			}
			s.users[i].Balance = s.users[i].Balance.Sub(order.TotalPrice)
			order.ID = uint(len(s.orders) + 1)
			s.orders = append(s.orders, order)
			return s.users[i].Balance, nil
		}
	}
	return decimal.Decimal{}, &storageErrors.NotFoundError{ID: order.UserID}
}

func (s *Storage) GetOrders(_ context.Context, userID string) ([]modelstorage.OrderStorageEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var orders []modelstorage.OrderStorageEntry
	for i := range s.orders {
		if s.orders[i].UserID == userID {
			orders = append(orders, s.orders[i])
		}
	}
	return orders, nil
}

func (s *Storage) GetAllOrders(_ context.Context) ([]modelstorage.OrderStorageEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	orders := make([]modelstorage.OrderStorageEntry, len(s.orders))
	copy(orders, s.orders)
	return orders, nil
}

func (s *Storage) GetPendingOrders(_ context.Context, userID string) ([]modelstorage.OrderStorageEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var orders []modelstorage.OrderStorageEntry
	for i := range s.orders {
		if s.orders[i].UserID == userID && s.orders[i].Status == modelstorage.OrderStatusPending {
			orders = append(orders, s.orders[i])
		}
	}
	return orders, nil
}

func (s *Storage) SetOrderStatus(_ context.Context, orderID string, status string) (*modelstorage.OrderStorageEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].OrderID == orderID {
			s.orders[i].Status = status
			order := s.orders[i]
			return &order, nil
		}
	}
	return nil, &storageErrors.NotFoundError{ID: orderID}
}

func (s *Storage) CompletePendingOrder(_ context.Context, orderID string) (*modelstorage.OrderStorageEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].OrderID == orderID && s.orders[i].Status == modelstorage.OrderStatusPending {
			s.orders[i].Status = modelstorage.OrderStatusCompleted
			order := s.orders[i]
			return &order, nil
		}
	}
	return nil, &storageErrors.NotFoundError{ID: orderID}
}
