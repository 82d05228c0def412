// Package rest provides functionality for initializing a server.
package rest

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/danilovkiri/dk-go-smmpanel/internal/api/rest/handlers"
	"github.com/danilovkiri/dk-go-smmpanel/internal/api/rest/middleware"
	"github.com/danilovkiri/dk-go-smmpanel/internal/config"
	"github.com/danilovkiri/dk-go-smmpanel/internal/service/catalog/v1/static"
	fulfillerRandom "github.com/danilovkiri/dk-go-smmpanel/internal/service/fulfiller/v1/random"
	"github.com/danilovkiri/dk-go-smmpanel/internal/service/processor/v1/processor"
	"github.com/danilovkiri/dk-go-smmpanel/internal/service/secretary/v1/secretary"
	"github.com/danilovkiri/dk-go-smmpanel/internal/service/session/v1/memsession"
	"github.com/danilovkiri/dk-go-smmpanel/internal/storage/v1"
	"github.com/danilovkiri/dk-go-smmpanel/internal/storage/v1/inmemory"
	"github.com/danilovkiri/dk-go-smmpanel/internal/storage/v1/inpsql"
	"github.com/go-chi/chi"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// InitServer returns a http.Server object ready to be listening and serving.
func InitServer(ctx context.Context, cfg *config.Config, log *zerolog.Logger, wg *sync.WaitGroup) (server *http.Server, err error) {
	// initialize storage; an empty DSN selects the in-memory backend
	var st storage.Storage
	if cfg.StorageConfig.DatabaseDSN == "" {
		st = inmemory.InitStorage(log)
	} else {
		st, err = inpsql.InitStorage(ctx, cfg.StorageConfig, log, wg)
		if err != nil {
			return nil, err
		}
	}

	r, err := newRouter(ctx, cfg, log, st)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:         cfg.ServerConfig.ServerAddress,
		Handler:      r,
		IdleTimeout:  60 * time.Second,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return srv, nil
}

// newRouter assembles the service stack on top of a storage backend and wires
// up the API routes.
func newRouter(ctx context.Context, cfg *config.Config, log *zerolog.Logger, st storage.Storage) (chi.Router, error) {
	// money fields marshal as JSON numbers, matching the API payloads
	decimal.MarshalJSONWithoutQuotes = true

	// initialize secretary
	secretaryService, err := secretary.NewSecretaryService(cfg.SecretConfig)
	if err != nil {
		return nil, err
	}

	// initialize session store
	sessionStore := memsession.NewStore()

	// initialize catalog
	catalogService := static.NewCatalog()

	// initialize fulfiller
	fulfillerService, err := fulfillerRandom.InitFulfiller(st, log)
	if err != nil {
		return nil, err
	}

	// initialize main service
	mainService, err := processor.InitService(st, catalogService, fulfillerService)
	if err != nil {
		return nil, err
	}

	// seed the administrator account
	err = mainService.SeedAdmin(ctx, cfg.AdminConfig)
	if err != nil {
		return nil, err
	}

	// initialize auth middleware
	authHandler, err := middleware.NewAuthHandler(secretaryService, sessionStore, mainService, log)
	if err != nil {
		return nil, err
	}

	// initialize handlers
	urlHandler, err := handlers.InitHandlers(mainService, sessionStore, secretaryService, log)
	if err != nil {
		return nil, err
	}

	// initialize server and set routing
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.ServerConfig.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	publicGroup := r.Group(nil)
	identifiedGroup := r.Group(nil)
	identifiedGroup.Use(authHandler.Identify)
	sessionGroup := r.Group(nil)
	sessionGroup.Use(authHandler.Authenticate)
	adminGroup := r.Group(nil)
	adminGroup.Use(authHandler.Authenticate, authHandler.RequireAdmin)
	publicGroup.Post("/api/register", urlHandler.HandleRegister())
	publicGroup.Post("/api/login", urlHandler.HandleLogin())
	publicGroup.Post("/api/logout", urlHandler.HandleLogout())
	publicGroup.Get("/api/services", urlHandler.HandleGetServices())
	identifiedGroup.Get("/api/me", urlHandler.HandleMe())
	sessionGroup.Get("/api/orders", urlHandler.HandleGetOrders())
	sessionGroup.Post("/api/orders", urlHandler.HandleNewOrder())
	sessionGroup.Post("/api/orders/simulate", urlHandler.HandleSimulateOrders())
	adminGroup.Get("/api/admin/users", urlHandler.HandleAdminGetUsers())
	adminGroup.Get("/api/admin/orders", urlHandler.HandleAdminGetOrders())
	adminGroup.Patch("/api/admin/orders/{orderID}", urlHandler.HandleAdminSetOrderStatus())

	return r, nil
}
