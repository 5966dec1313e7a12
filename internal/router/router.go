package router

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/tablesidear/api/internal/config"
	"github.com/tablesidear/api/internal/database"
	"github.com/tablesidear/api/internal/enum"
	"github.com/tablesidear/api/internal/handler"
	mw "github.com/tablesidear/api/internal/middleware"
	"github.com/tablesidear/api/internal/service"
	"github.com/tablesidear/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Public ordering routes are open; /admin requires a dashboard token and
// narrows by role per section.
func New(cfg *config.Config, queries *database.Queries, orders *service.OrderService, hub *ws.Hub, sizer service.ModelSizer) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	menuHandler := handler.NewMenuHandler(queries, sizer)
	categoryHandler := handler.NewCategoryHandler(queries)

	// Customer web app (no auth)
	r.Route("/public", func(r chi.Router) {
		publicOrderHandler := handler.NewPublicOrderHandler(orders, hub)
		r.Route("/orders", publicOrderHandler.RegisterRoutes)

		tableHandler := handler.NewTableHandler(queries)
		r.Route("/tables", tableHandler.RegisterRoutes)

		r.Route("/menu", func(r chi.Router) {
			r.Get("/categories", categoryHandler.List)
			menuHandler.RegisterPublicRoutes(r)
		})
	})

	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/branches/{bid}/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Dashboard
	r.Route("/admin", func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))
		r.Use(mw.RequireRole(enum.DashboardRoles...))

		statsHandler := handler.NewStatsHandler(queries)
		r.Route("/stats", statsHandler.RegisterRoutes)

		orderHandler := handler.NewOrderHandler(orders, queries, hub)
		r.Route("/orders", orderHandler.RegisterRoutes)

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.CatalogRoles...))
			r.Route("/menu", menuHandler.RegisterRoutes)
			r.Route("/categories", categoryHandler.RegisterRoutes)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserManagerRoles...))
			userHandler := handler.NewUserHandler(queries)
			r.Route("/users", userHandler.RegisterRoutes)
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}
