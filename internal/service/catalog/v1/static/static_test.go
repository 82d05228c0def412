package static

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListSeedOrder(t *testing.T) {
	cat := NewCatalog()
	services := cat.List(true)
	require.Len(t, services, 3)
	assert.Equal(t, "svc_instagram_followers", services[0].ID)
	assert.Equal(t, "svc_youtube_views", services[1].ID)
	assert.Equal(t, "svc_instagram_likes", services[2].ID)
	assert.True(t, services[0].RatePer1000.Equal(decimal.NewFromInt(50)))
	assert.True(t, services[1].RatePer1000.Equal(decimal.NewFromInt(30)))
	assert.True(t, services[2].RatePer1000.Equal(decimal.NewFromInt(20)))
}

func TestGet(t *testing.T) {
	cat := NewCatalog()
	service, ok := cat.Get("svc_youtube_views")
	require.True(t, ok)
	assert.Equal(t, "YouTube Views", service.Name)
	assert.Equal(t, ServiceStatusActive, service.Status)

	_, ok = cat.Get("svc_unknown")
	assert.False(t, ok)
}

func TestGetReturnsCopy(t *testing.T) {
	cat := NewCatalog()
	service, ok := cat.Get("svc_youtube_views")
	require.True(t, ok)
	service.Status = ServiceStatusInactive

	service, ok = cat.Get("svc_youtube_views")
	require.True(t, ok)
	assert.Equal(t, ServiceStatusActive, service.Status)
}
