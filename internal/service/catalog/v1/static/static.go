// Package static implements a statically seeded service catalog.
package static

import (
	"github.com/danilovkiri/dk-go-smmpanel/internal/models/modeldto"
	"github.com/shopspring/decimal"
)

const (
	ServiceStatusActive   = "active"
	ServiceStatusInactive = "inactive"
)

// Catalog holds the seeded services in presentation order.
type Catalog struct {
	services []modeldto.Service
}

// NewCatalog initializes the catalog with the fixed demo services.
func NewCatalog() *Catalog {
	return &Catalog{
		services: []modeldto.Service{
			{
				ID:          "svc_instagram_followers",
				Name:        "Instagram Followers",
				Description: "Mock Instagram followers (demo only).",
				RatePer1000: decimal.NewFromInt(50),
				Status:      ServiceStatusActive,
			},
			{
				ID:          "svc_youtube_views",
				Name:        "YouTube Views",
				Description: "Mock YouTube views (demo only).",
				RatePer1000: decimal.NewFromInt(30),
				Status:      ServiceStatusActive,
			},
			{
				ID:          "svc_instagram_likes",
				Name:        "Instagram Likes",
				Description: "Mock Instagram likes (demo only).",
				RatePer1000: decimal.NewFromInt(20),
				Status:      ServiceStatusActive,
			},
		},
	}
}

// List returns services in seed order, optionally filtered to active ones.
func (c *Catalog) List(activeOnly bool) []modeldto.Service {
	services := make([]modeldto.Service, 0, len(c.services))
	for _, service := range c.services {
		if activeOnly && service.Status != ServiceStatusActive {
			continue
		}
		services = append(services, service)
	}
	return services
}

// Get returns the service with the given identifier.
func (c *Catalog) Get(serviceID string) (*modeldto.Service, bool) {
	for _, service := range c.services {
		if service.ID == serviceID {
			serviceCopy := service
			return &serviceCopy, true
		}
	}
	return nil, false
}
