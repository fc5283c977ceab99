// Package api wires the HTTP routes of the portfolio tracker.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Portfolio-Tracker-Backend/internal/api/middleware"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/search"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/service"
)

// Services bundles what the router dispatches to.
type Services struct {
	System    *service.SystemService
	User      *service.UserService
	Position  *service.PositionService
	Portfolio *service.PortfolioService
	Snapshot  *service.SnapshotService
	Searcher  search.Searcher
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(log))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	systemHandler := handlers.NewSystemHandler(svc.System)
	userHandler := handlers.NewUserHandler(svc.User)
	positionHandler := handlers.NewPositionHandler(svc.Position)
	portfolioHandler := handlers.NewPortfolioHandler(svc.Portfolio)
	searchHandler := handlers.NewSearchHandler(svc.Searcher)
	snapshotHandler := handlers.NewSnapshotHandler(svc.Snapshot)

	r.Get("/", systemHandler.Welcome)
	r.Post("/login", userHandler.Login)

	r.Route("/users/{username}", func(r chi.Router) {
		r.Use(custommiddleware.ValidateUsernameMiddleware)

		r.Get("/positions", positionHandler.Positions)
		r.Post("/positions", positionHandler.AddPosition)

		r.Route("/portfolio", func(r chi.Router) {
			r.Get("/", portfolioHandler.Portfolio)
			r.Get("/history", portfolioHandler.History)
			r.Get("/chart", portfolioHandler.Chart)
			r.Get("/visibility", portfolioHandler.Visibility)
			r.Post("/visibility/{ticker}", portfolioHandler.ToggleVisibility)
		})
	})

	r.Get("/search/stocks", searchHandler.Stocks)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)

			r.With(custommiddleware.APIKeyMiddleware).Post("/snapshot", snapshotHandler.Snapshot)
		})
	})

	return r
}
