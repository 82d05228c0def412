package random

import (
	"context"
	"testing"

	"github.com/danilovkiri/dk-go-smmpanel/internal/logger"
	"github.com/danilovkiri/dk-go-smmpanel/internal/models/modelstorage"
	"github.com/danilovkiri/dk-go-smmpanel/internal/storage/v1/inmemory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOrders(t *testing.T, st *inmemory.Storage, userID string, n int) {
	t.Helper()
	ctx := context.Background()
	err := st.AddNewUser(ctx, modelstorage.UserStorageEntry{
		UserID:       userID,
		Name:         "Test User",
		Email:        userID + "@example.com",
		PasswordHash: "irrelevant",
		Balance:      decimal.NewFromInt(1000),
		RegisteredAt: "2024-01-01T00:00:00Z",
	})
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		_, err := st.AddNewOrderWithDebit(ctx, modelstorage.OrderStorageEntry{
			OrderID:     userID + "-order-" + string(rune('a'+i)),
			UserID:      userID,
			ServiceID:   "svc_instagram_likes",
			ServiceName: "Instagram Likes",
			Quantity:    1000,
			Target:      "https://example.com/p",
			TotalPrice:  decimal.NewFromInt(20),
			Status:      modelstorage.OrderStatusPending,
			CreatedAt:   "2024-01-01T00:00:00Z",
		})
		require.NoError(t, err)
	}
}

func TestProcessOneNoPendingOrders(t *testing.T) {
	log := logger.InitLog()
	st := inmemory.InitStorage(log)
	ful, err := InitFulfiller(st, log)
	require.NoError(t, err)

	order, err := ful.ProcessOne(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, order)
}

func TestProcessOneCompletesExactlyOne(t *testing.T) {
	ctx := context.Background()
	log := logger.InitLog()
	st := inmemory.InitStorage(log)
	ful, err := InitFulfiller(st, log)
	require.NoError(t, err)
	seedOrders(t, st, "u1", 5)

	order, err := ful.ProcessOne(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, modelstorage.OrderStatusCompleted, order.Status)

	pending, err := st.GetPendingOrders(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, pending, 4)
}

func TestProcessOneIgnoresOtherUsers(t *testing.T) {
	ctx := context.Background()
	log := logger.InitLog()
	st := inmemory.InitStorage(log)
	ful, err := InitFulfiller(st, log)
	require.NoError(t, err)
	seedOrders(t, st, "u1", 2)
	seedOrders(t, st, "u2", 2)

	_, err = ful.ProcessOne(ctx, "u1")
	require.NoError(t, err)

	pending, err := st.GetPendingOrders(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestProcessOneDrainsPendingSet(t *testing.T) {
	ctx := context.Background()
	log := logger.InitLog()
	st := inmemory.InitStorage(log)
	ful, err := InitFulfiller(st, log)
	require.NoError(t, err)
	seedOrders(t, st, "u1", 3)

	for i := 0; i < 3; i++ {
		order, err := ful.ProcessOne(ctx, "u1")
		require.NoError(t, err)
		require.NotNil(t, order)
	}
	order, err := ful.ProcessOne(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, order)
}
