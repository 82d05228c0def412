// Package inpsql implements a PSQL storage backend.
package inpsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/danilovkiri/dk-go-smmpanel/internal/config"
	"github.com/danilovkiri/dk-go-smmpanel/internal/models/modelstorage"
	storageErrors "github.com/danilovkiri/dk-go-smmpanel/internal/storage/v1/errors"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type Storage struct {
	mu  sync.Mutex
	Cfg *config.StorageConfig
	DB  *sql.DB
	log *zerolog.Logger
}

// InitStorage establishes a PSQL DB connection and prepares the schema. The DB
// handle is closed when ctx is cancelled.
func InitStorage(ctx context.Context, cfg *config.StorageConfig, log *zerolog.Logger, wg *sync.WaitGroup) (*Storage, error) {
	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("")
	}
	st := Storage{
		Cfg: cfg,
		DB:  db,
		log: log,
	}
	err = st.createTables(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("")
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		err := st.DB.Close()
		if err != nil {
			st.log.Error().Err(err).Msg("PSQL DB connection closing failed")
		} else {
			st.log.Info().Msg("PSQL DB connection was closed")
		}
	}()
	log.Info().Msg("PSQL DB connection was established")
	return &st, nil
}

func (s *Storage) AddNewUser(ctx context.Context, user modelstorage.UserStorageEntry) error {
	newUserStmt, err := s.DB.PrepareContext(ctx, "INSERT INTO users (user_id, name, email, password_hash, balance, is_admin, registered_at) VALUES ($1, $2, $3, $4, $5, $6, $7)")
	if err != nil {
		return &storageErrors.StatementPSQLError{Err: err}
	}
	defer newUserStmt.Close()
	chanOk := make(chan bool)
	chanEr := make(chan error)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		_, err := newUserStmt.ExecContext(ctx, user.UserID, user.Name, user.Email, user.PasswordHash, user.Balance, user.IsAdmin, user.RegisteredAt)
		if err != nil {
			if err, ok := err.(*pgconn.PgError); ok && err.Code == pgerrcode.UniqueViolation {
				chanEr <- &storageErrors.AlreadyExistsError{Err: err, ID: user.Email}
				return
			}
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		chanOk <- true
	}()

	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg(fmt.Sprintf("adding new user failed for %s", user.Email))
		return &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg(fmt.Sprintf("adding new user failed for %s", user.Email))
		return methodErr
	case <-chanOk:
		s.log.Info().Msg(fmt.Sprintf("adding new user done for %s", user.Email))
		return nil
	}
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*modelstorage.UserStorageEntry, error) {
	selectStmt, err := s.DB.PrepareContext(ctx, "SELECT id, user_id, name, email, password_hash, balance, is_admin, registered_at FROM users WHERE LOWER(email) = LOWER($1)")
	if err != nil {
		return nil, &storageErrors.StatementPSQLError{Err: err}
	}
	defer selectStmt.Close()
	chanOk := make(chan modelstorage.UserStorageEntry)
	chanEr := make(chan error)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		var queryOutput modelstorage.UserStorageEntry
		err := selectStmt.QueryRowContext(ctx, email).Scan(&queryOutput.ID, &queryOutput.UserID, &queryOutput.Name, &queryOutput.Email, &queryOutput.PasswordHash, &queryOutput.Balance, &queryOutput.IsAdmin, &queryOutput.RegisteredAt)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				chanEr <- &storageErrors.NotFoundError{Err: err, ID: email}
				return
			default:
				chanEr <- &storageErrors.ScanningPSQLError{Err: err}
				return
			}
		}
		chanOk <- queryOutput
	}()

	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg("user retrieval by email failed")
		return nil, &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg("user retrieval by email failed")
		return nil, methodErr
	case user := <-chanOk:
		return &user, nil
	}
}

func (s *Storage) GetUser(ctx context.Context, userID string) (*modelstorage.UserStorageEntry, error) {
	selectStmt, err := s.DB.PrepareContext(ctx, "SELECT id, user_id, name, email, password_hash, balance, is_admin, registered_at FROM users WHERE user_id = $1")
	if err != nil {
		return nil, &storageErrors.StatementPSQLError{Err: err}
	}
	defer selectStmt.Close()
	chanOk := make(chan modelstorage.UserStorageEntry)
	chanEr := make(chan error)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		var queryOutput modelstorage.UserStorageEntry
		err := selectStmt.QueryRowContext(ctx, userID).Scan(&queryOutput.ID, &queryOutput.UserID, &queryOutput.Name, &queryOutput.Email, &queryOutput.PasswordHash, &queryOutput.Balance, &queryOutput.IsAdmin, &queryOutput.RegisteredAt)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				chanEr <- &storageErrors.NotFoundError{Err: err, ID: userID}
				return
			default:
				chanEr <- &storageErrors.ScanningPSQLError{Err: err}
				return
			}
		}
		chanOk <- queryOutput
	}()

	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg("user retrieval failed")
		return nil, &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg("user retrieval failed")
		return nil, methodErr
	case user := <-chanOk:
		return &user, nil
	}
}

func (s *Storage) GetUsers(ctx context.Context) ([]modelstorage.UserStorageEntry, error) {
	selectStmt, err := s.DB.PrepareContext(ctx, "SELECT id, user_id, name, email, password_hash, balance, is_admin, registered_at FROM users ORDER BY id")
	if err != nil {
		return nil, &storageErrors.StatementPSQLError{Err: err}
	}
	defer selectStmt.Close()
	chanOk := make(chan []modelstorage.UserStorageEntry)
	chanEr := make(chan error)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		rows, err := selectStmt.QueryContext(ctx)
		if err != nil {
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		defer rows.Close()
		var queryOutput []modelstorage.UserStorageEntry
		for rows.Next() {
			var queryOutputRow modelstorage.UserStorageEntry
			err = rows.Scan(&queryOutputRow.ID, &queryOutputRow.UserID, &queryOutputRow.Name, &queryOutputRow.Email, &queryOutputRow.PasswordHash, &queryOutputRow.Balance, &queryOutputRow.IsAdmin, &queryOutputRow.RegisteredAt)
			if err != nil {
				chanEr <- &storageErrors.ScanningPSQLError{Err: err}
				return
			}
			queryOutput = append(queryOutput, queryOutputRow)
		}
		err = rows.Err()
		if err != nil {
			chanEr <- &storageErrors.ScanningPSQLError{Err: err}
			return
		}
		chanOk <- queryOutput
	}()

	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg("users retrieval failed")
		return nil, &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg("users retrieval failed")
		return nil, methodErr
	case users := <-chanOk:
		return users, nil
	}
}

// AddNewOrderWithDebit debits the owner's balance and persists the order in
// one transaction. The conditional UPDATE keeps the balance non-negative even
// under concurrent order creation for the same user.
func (s *Storage) AddNewOrderWithDebit(ctx context.Context, order modelstorage.OrderStorageEntry) (decimal.Decimal, error) {
	chanOk := make(chan decimal.Decimal)
	chanEr := make(chan error)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		tx, err := s.DB.BeginTx(ctx, nil)
		if err != nil {
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		defer tx.Rollback()
		res, err := tx.ExecContext(ctx, "UPDATE users SET balance = balance - $1 WHERE user_id = $2 AND balance >= $1", order.TotalPrice, order.UserID)
		if err != nil {
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		nRows, err := res.RowsAffected()
		if err != nil {
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		if nRows == 0 {
			var balance decimal.Decimal
			err := tx.QueryRowContext(ctx, "SELECT balance FROM users WHERE user_id = $1", order.UserID).Scan(&balance)
			switch {
			case errors.Is(err, sql.ErrNoRows):
				chanEr <- &storageErrors.NotFoundError{Err: err, ID: order.UserID}
			case err != nil:
				chanEr <- &storageErrors.ScanningPSQLError{Err: err}
			default:
				chanEr <- &storageErrors.NotEnoughFundsError{ID: order.UserID}
			}
			return
		}
		_, err = tx.ExecContext(ctx, "INSERT INTO orders (order_id, user_id, service_id, service_name, quantity, target, total_price, status, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)",
			order.OrderID, order.UserID, order.ServiceID, order.ServiceName, order.Quantity, order.Target, order.TotalPrice, order.Status, order.CreatedAt)
		if err != nil {
			if err, ok := err.(*pgconn.PgError); ok && err.Code == pgerrcode.UniqueViolation {
				chanEr <- &storageErrors.AlreadyExistsError{Err: err, ID: order.OrderID}
				return
			}
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		var newBalance decimal.Decimal
		err = tx.QueryRowContext(ctx, "SELECT balance FROM users WHERE user_id = $1", order.UserID).Scan(&newBalance)
		if err != nil {
			chanEr <- &storageErrors.ScanningPSQLError{Err: err}
			return
		}
		err = tx.Commit()
		if err != nil {
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		chanOk <- newBalance
	}()

	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg(fmt.Sprintf("adding new order failed for %s", order.OrderID))
		return decimal.Decimal{}, &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg(fmt.Sprintf("adding new order failed for %s", order.OrderID))
		return decimal.Decimal{}, methodErr
	case newBalance := <-chanOk:
		s.log.Info().Msg(fmt.Sprintf("adding new order done for %s", order.OrderID))
		return newBalance, nil
	}
}

func (s *Storage) GetOrders(ctx context.Context, userID string) ([]modelstorage.OrderStorageEntry, error) {
	selectStmt, err := s.DB.PrepareContext(ctx, "SELECT id, order_id, user_id, service_id, service_name, quantity, target, total_price, status, created_at FROM orders WHERE user_id = $1 ORDER BY id")
	if err != nil {
		return nil, &storageErrors.StatementPSQLError{Err: err}
	}
	defer selectStmt.Close()
	return s.queryOrders(ctx, selectStmt, userID)
}

func (s *Storage) GetAllOrders(ctx context.Context) ([]modelstorage.OrderStorageEntry, error) {
	selectStmt, err := s.DB.PrepareContext(ctx, "SELECT id, order_id, user_id, service_id, service_name, quantity, target, total_price, status, created_at FROM orders ORDER BY id")
	if err != nil {
		return nil, &storageErrors.StatementPSQLError{Err: err}
	}
	defer selectStmt.Close()
	return s.queryOrders(ctx, selectStmt)
}

func (s *Storage) GetPendingOrders(ctx context.Context, userID string) ([]modelstorage.OrderStorageEntry, error) {
	selectStmt, err := s.DB.PrepareContext(ctx, "SELECT id, order_id, user_id, service_id, service_name, quantity, target, total_price, status, created_at FROM orders WHERE user_id = $1 AND status = 'pending' ORDER BY id")
	if err != nil {
		return nil, &storageErrors.StatementPSQLError{Err: err}
	}
	defer selectStmt.Close()
	return s.queryOrders(ctx, selectStmt, userID)
}

func (s *Storage) SetOrderStatus(ctx context.Context, orderID string, status string) (*modelstorage.OrderStorageEntry, error) {
	updateStmt, err := s.DB.PrepareContext(ctx, "UPDATE orders SET status = $1 WHERE order_id = $2 RETURNING id, order_id, user_id, service_id, service_name, quantity, target, total_price, status, created_at")
	if err != nil {
		return nil, &storageErrors.StatementPSQLError{Err: err}
	}
	defer updateStmt.Close()
	return s.updateOrder(ctx, updateStmt, orderID, status)
}

// CompletePendingOrder transitions one order from pending to completed. A
// missing row means the order is unknown or no longer pending, which callers
// treat as a retry signal.
func (s *Storage) CompletePendingOrder(ctx context.Context, orderID string) (*modelstorage.OrderStorageEntry, error) {
	updateStmt, err := s.DB.PrepareContext(ctx, "UPDATE orders SET status = $1 WHERE order_id = $2 AND status = 'pending' RETURNING id, order_id, user_id, service_id, service_name, quantity, target, total_price, status, created_at")
	if err != nil {
		return nil, &storageErrors.StatementPSQLError{Err: err}
	}
	defer updateStmt.Close()
	return s.updateOrder(ctx, updateStmt, orderID, modelstorage.OrderStatusCompleted)
}

func (s *Storage) queryOrders(ctx context.Context, stmt *sql.Stmt, args ...interface{}) ([]modelstorage.OrderStorageEntry, error) {
	chanOk := make(chan []modelstorage.OrderStorageEntry)
	chanEr := make(chan error)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		rows, err := stmt.QueryContext(ctx, args...)
		if err != nil {
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		defer rows.Close()
		var queryOutput []modelstorage.OrderStorageEntry
		for rows.Next() {
			var queryOutputRow modelstorage.OrderStorageEntry
			err = rows.Scan(&queryOutputRow.ID, &queryOutputRow.OrderID, &queryOutputRow.UserID, &queryOutputRow.ServiceID, &queryOutputRow.ServiceName, &queryOutputRow.Quantity, &queryOutputRow.Target, &queryOutputRow.TotalPrice, &queryOutputRow.Status, &queryOutputRow.CreatedAt)
			if err != nil {
				chanEr <- &storageErrors.ScanningPSQLError{Err: err}
				return
			}
			queryOutput = append(queryOutput, queryOutputRow)
		}
		err = rows.Err()
		if err != nil {
			chanEr <- &storageErrors.ScanningPSQLError{Err: err}
			return
		}
		chanOk <- queryOutput
	}()

	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg("orders retrieval failed")
		return nil, &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg("orders retrieval failed")
		return nil, methodErr
	case orders := <-chanOk:
		return orders, nil
	}
}

func (s *Storage) updateOrder(ctx context.Context, stmt *sql.Stmt, orderID, status string) (*modelstorage.OrderStorageEntry, error) {
	chanOk := make(chan modelstorage.OrderStorageEntry)
	chanEr := make(chan error)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		var queryOutput modelstorage.OrderStorageEntry
		err := stmt.QueryRowContext(ctx, status, orderID).Scan(&queryOutput.ID, &queryOutput.OrderID, &queryOutput.UserID, &queryOutput.ServiceID, &queryOutput.ServiceName, &queryOutput.Quantity, &queryOutput.Target, &queryOutput.TotalPrice, &queryOutput.Status, &queryOutput.CreatedAt)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				chanEr <- &storageErrors.NotFoundError{Err: err, ID: orderID}
				return
			default:
				chanEr <- &storageErrors.ScanningPSQLError{Err: err}
				return
			}
		}
		chanOk <- queryOutput
	}()

	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg(fmt.Sprintf("order status update failed for %s", orderID))
		return nil, &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg(fmt.Sprintf("order status update failed for %s", orderID))
		return nil, methodErr
	case order := <-chanOk:
		s.log.Info().Msg(fmt.Sprintf("order status update done for %s", orderID))
		return &order, nil
	}
}

func (s *Storage) createTables(ctx context.Context) error {
	var queries []string
	query := `CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL      NOT NULL,
		user_id       TEXT           NOT NULL UNIQUE,
		name          TEXT           NOT NULL,
		email         TEXT           NOT NULL UNIQUE,
		password_hash TEXT           NOT NULL,
		balance       NUMERIC(12, 2) NOT NULL,
		is_admin      BOOLEAN        NOT NULL,
		registered_at TIMESTAMPTZ    NOT NULL
	);`
	queries = append(queries, query)
	query = `CREATE TABLE IF NOT EXISTS orders (
		id           BIGSERIAL      NOT NULL,
		order_id     TEXT           NOT NULL UNIQUE,
		user_id      TEXT           NOT NULL,
		service_id   TEXT           NOT NULL,
		service_name TEXT           NOT NULL,
		quantity     BIGINT         NOT NULL,
		target       TEXT           NOT NULL,
		total_price  NUMERIC(12, 2) NOT NULL,
		status       TEXT           NOT NULL,
		created_at   TIMESTAMPTZ    NOT NULL
	);`
	queries = append(queries, query)
	for _, subquery := range queries {
		_, err := s.DB.ExecContext(ctx, subquery)
		if err != nil {
			return err
		}
	}
	return nil
}
