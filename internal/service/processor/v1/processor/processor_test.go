package processor

import (
	"context"
	"errors"
	"testing"

	"github.com/danilovkiri/dk-go-smmpanel/internal/config"
	"github.com/danilovkiri/dk-go-smmpanel/internal/logger"
	"github.com/danilovkiri/dk-go-smmpanel/internal/models/modeldto"
	"github.com/danilovkiri/dk-go-smmpanel/internal/models/modelstorage"
	"github.com/danilovkiri/dk-go-smmpanel/internal/service/catalog/v1/static"
	fulfillerRandom "github.com/danilovkiri/dk-go-smmpanel/internal/service/fulfiller/v1/random"
	serviceErrors "github.com/danilovkiri/dk-go-smmpanel/internal/service/processor/v1/errors"
	storageErrors "github.com/danilovkiri/dk-go-smmpanel/internal/storage/v1/errors"
	"github.com/danilovkiri/dk-go-smmpanel/internal/storage/v1/inmemory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newTestService(t *testing.T) (*Processor, *inmemory.Storage) {
	t.Helper()
	log := logger.InitLog()
	st := inmemory.InitStorage(log)
	ful, err := fulfillerRandom.InitFulfiller(st, log)
	require.NoError(t, err)
	svc, err := InitService(st, static.NewCatalog(), ful)
	require.NoError(t, err)
	return svc, st
}

// addFundedUser seeds a user with a starting balance directly through the
// storage layer, since no credit endpoint exists.
func addFundedUser(t *testing.T, st *inmemory.Storage, email string, balance int64) string {
	t.Helper()
	userID := uuid.New().String()
	err := st.AddNewUser(context.Background(), modelstorage.UserStorageEntry{
		UserID:       userID,
		Name:         "Alice",
		Email:        email,
		PasswordHash: "irrelevant",
		Balance:      decimal.NewFromInt(balance),
		RegisteredAt: "2024-01-01T00:00:00Z",
	})
	require.NoError(t, err)
	return userID
}

func TestRegisterUserValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	cases := []modeldto.NewUser{
		{Name: "", Email: "a@b.com", Password: "pw"},
		{Name: "Alice", Email: "", Password: "pw"},
		{Name: "Alice", Email: "a@b.com", Password: ""},
		{Name: "Alice", Email: "not-an-email", Password: "pw"},
	}
	for _, newUser := range cases {
		_, err := svc.RegisterUser(ctx, newUser)
		var illegalInputError *serviceErrors.ServiceIllegalInputError
		assert.True(t, errors.As(err, &illegalInputError), "expected validation failure for %+v", newUser)
	}
}

func TestRegisterUserConflictCaseInsensitive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.RegisterUser(ctx, modeldto.NewUser{Name: "Alice", Email: "a@b.com", Password: "pw123456"})
	require.NoError(t, err)
	_, err = svc.RegisterUser(ctx, modeldto.NewUser{Name: "Mallory", Email: "A@B.COM", Password: "pw123456"})
	var alreadyExistsError *storageErrors.AlreadyExistsError
	assert.True(t, errors.As(err, &alreadyExistsError))
}

func TestLoginUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	registered, err := svc.RegisterUser(ctx, modeldto.NewUser{Name: "Alice", Email: "a@b.com", Password: "pw123456"})
	require.NoError(t, err)
	userID := registered.ID

	user, err := svc.LoginUser(ctx, modeldto.Credentials{Email: "A@b.Com", Password: "pw123456"})
	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)

	_, err = svc.LoginUser(ctx, modeldto.Credentials{Email: "a@b.com", Password: "wrong"})
	var incorrectCredentialsError *serviceErrors.ServiceIncorrectCredentialsError
	assert.True(t, errors.As(err, &incorrectCredentialsError))

	_, err = svc.LoginUser(ctx, modeldto.Credentials{Email: "nobody@b.com", Password: "pw123456"})
	assert.True(t, errors.As(err, &incorrectCredentialsError))
}

func TestCreateOrderExactArithmetic(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	userID := addFundedUser(t, st, "a@b.com", 100)

	// rate 30 per 1000, quantity 2000 -> cost 60, balance 100 -> 40
	order, balance, err := svc.CreateOrder(ctx, userID, modeldto.NewOrder{ServiceID: "svc_youtube_views", Quantity: 2000, Target: "https://example.com/v"})
	require.NoError(t, err)
	assert.True(t, order.TotalPrice.Equal(decimal.NewFromInt(60)), "got %s", order.TotalPrice)
	assert.True(t, balance.Equal(decimal.NewFromInt(40)), "got %s", balance)
	assert.Equal(t, modelstorage.OrderStatusPending, order.Status)
	assert.Equal(t, "YouTube Views", order.ServiceName)
}

func TestCreateOrderNoDriftAcrossSequentialOrders(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	userID := addFundedUser(t, st, "a@b.com", 1000)

	// rate 50 per 1000, quantity 1000 -> exactly 50 per order
	for i := 0; i < 20; i++ {
		_, _, err := svc.CreateOrder(ctx, userID, modeldto.NewOrder{ServiceID: "svc_instagram_followers", Quantity: 1000, Target: "https://example.com/p"})
		require.NoError(t, err)
	}
	user, err := svc.GetUser(ctx, userID)
	require.NoError(t, err)
	assert.True(t, user.Balance.Equal(decimal.Zero), "got %s", user.Balance)
}

func TestCreateOrderInsufficientFunds(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	userID := addFundedUser(t, st, "a@b.com", 10)

	_, _, err := svc.CreateOrder(ctx, userID, modeldto.NewOrder{ServiceID: "svc_instagram_followers", Quantity: 1000, Target: "https://example.com/p"})
	var notEnoughFundsError *storageErrors.NotEnoughFundsError
	require.True(t, errors.As(err, &notEnoughFundsError))

	user, err := svc.GetUser(ctx, userID)
	require.NoError(t, err)
	assert.True(t, user.Balance.Equal(decimal.NewFromInt(10)))
	orders, err := svc.GetOrders(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreateOrderValidation(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	userID := addFundedUser(t, st, "a@b.com", 100)

	var illegalInputError *serviceErrors.ServiceIllegalInputError
	_, _, err := svc.CreateOrder(ctx, userID, modeldto.NewOrder{ServiceID: "svc_youtube_views", Quantity: 0, Target: "x"})
	assert.True(t, errors.As(err, &illegalInputError))
	_, _, err = svc.CreateOrder(ctx, userID, modeldto.NewOrder{ServiceID: "svc_youtube_views", Quantity: -5, Target: "x"})
	assert.True(t, errors.As(err, &illegalInputError))
	_, _, err = svc.CreateOrder(ctx, userID, modeldto.NewOrder{ServiceID: "svc_youtube_views", Quantity: 1000, Target: "   "})
	assert.True(t, errors.As(err, &illegalInputError))
}

func TestCreateOrderInvalidService(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	userID := addFundedUser(t, st, "a@b.com", 100)

	_, _, err := svc.CreateOrder(ctx, userID, modeldto.NewOrder{ServiceID: "svc_unknown", Quantity: 1000, Target: "x"})
	var invalidServiceError *serviceErrors.ServiceInvalidServiceError
	assert.True(t, errors.As(err, &invalidServiceError))
}

func TestConcurrentCreateOrderNoLostUpdates(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	// balance 100, cost 30 per order -> exactly 3 of 10 concurrent orders succeed
	userID := addFundedUser(t, st, "a@b.com", 100)

	g := new(errgroup.Group)
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		g.Go(func() error {
			_, _, err := svc.CreateOrder(ctx, userID, modeldto.NewOrder{ServiceID: "svc_youtube_views", Quantity: 1000, Target: "https://example.com/v"})
			results <- err
			return nil
		})
	}
	require.NoError(t, g.Wait())
	close(results)

	var successes, rejections int
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		var notEnoughFundsError *storageErrors.NotEnoughFundsError
		require.True(t, errors.As(err, &notEnoughFundsError))
		rejections++
	}
	assert.Equal(t, 3, successes)
	assert.Equal(t, 7, rejections)

	user, err := svc.GetUser(ctx, userID)
	require.NoError(t, err)
	assert.True(t, user.Balance.Equal(decimal.NewFromInt(10)), "got %s", user.Balance)
}

func TestSimulateProgress(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	userID := addFundedUser(t, st, "a@b.com", 100)

	// no pending orders yet
	order, err := svc.SimulateProgress(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, order)

	for i := 0; i < 3; i++ {
		_, _, err := svc.CreateOrder(ctx, userID, modeldto.NewOrder{ServiceID: "svc_instagram_likes", Quantity: 1000, Target: "https://example.com/p"})
		require.NoError(t, err)
	}

	// each call completes exactly one pending order
	for remaining := 3; remaining > 0; remaining-- {
		order, err := svc.SimulateProgress(ctx, userID)
		require.NoError(t, err)
		require.NotNil(t, order)
		assert.Equal(t, modelstorage.OrderStatusCompleted, order.Status)
		pending, err := st.GetPendingOrders(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, pending, remaining-1)
	}

	order, err = svc.SimulateProgress(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, order)
}

func TestSetOrderStatus(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	userID := addFundedUser(t, st, "a@b.com", 100)
	order, _, err := svc.CreateOrder(ctx, userID, modeldto.NewOrder{ServiceID: "svc_instagram_likes", Quantity: 1000, Target: "https://example.com/p"})
	require.NoError(t, err)

	updated, err := svc.SetOrderStatus(ctx, order.ID, modelstorage.OrderStatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, modelstorage.OrderStatusProcessing, updated.Status)

	// invalid status leaves the order unmodified
	_, err = svc.SetOrderStatus(ctx, order.ID, "shipped")
	var illegalInputError *serviceErrors.ServiceIllegalInputError
	require.True(t, errors.As(err, &illegalInputError))
	orders, err := svc.GetOrders(ctx, userID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, modelstorage.OrderStatusProcessing, orders[0].Status)

	_, err = svc.SetOrderStatus(ctx, "missing", modelstorage.OrderStatusCancelled)
	var notFoundError *storageErrors.NotFoundError
	assert.True(t, errors.As(err, &notFoundError))
}

func TestSeedAdminIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	adminCfg := &config.AdminConfig{AdminEmail: "admin@example.com", AdminPassword: "Admin@123"}
	require.NoError(t, svc.SeedAdmin(ctx, adminCfg))
	require.NoError(t, svc.SeedAdmin(ctx, adminCfg))

	admin, err := svc.LoginUser(ctx, modeldto.Credentials{Email: "admin@example.com", Password: "Admin@123"})
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)

	users, err := svc.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
