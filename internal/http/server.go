// Package http serves the web pages and the JSON API of the tracker.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"genfin/internal/auth"
	"genfin/internal/cache"
	"genfin/internal/core"
	applog "genfin/internal/log"
	"genfin/internal/middleware/ratelimit"
	"genfin/internal/services"
	appweb "genfin/web"
)

// ProfileStore is the account persistence used by the profile handlers.
// Password changes go through the auth manager instead.
type ProfileStore interface {
	UpdateAccountProfile(ctx context.Context, a core.Account) error
}

// Deps bundles everything the server needs.
type Deps struct {
	Auth     *auth.Manager
	Profiles ProfileStore
	Entries  *services.EntryService
	Planner  *services.PlannerService
	Cards    *services.CardService
	Vehicles *services.VehicleService
	Trips    *services.TripService
}

type Server struct {
	http.Server

	auth     *auth.Manager
	profiles ProfileStore
	entries  *services.EntryService
	planner  *services.PlannerService
	cards    *services.CardService
	vehicles *services.VehicleService
	trips    *services.TripService

	templates *template.Template
	limiter   *ratelimit.Limiter

	overviewCache *cache.LRU[*services.MonthOverview]
	summaryCache  *cache.LRU[*services.Summary]

	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

// NewServer configures routes, templates and caches, returning a
// ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         addr,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		auth:          deps.Auth,
		profiles:      deps.Profiles,
		entries:       deps.Entries,
		planner:       deps.Planner,
		cards:         deps.Cards,
		vehicles:      deps.Vehicles,
		trips:         deps.Trips,
		limiter:       ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		overviewCache: cache.NewLRU[*services.MonthOverview](200, 5*time.Minute),
		summaryCache:  cache.NewLRU[*services.Summary](200, 5*time.Minute),
		stopCleanup:   make(chan struct{}),
	}
	s.Handler = applog.Requests(s.withSecurity(mux))
	go s.cacheCleanupLoop()

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	// Pages.
	mux.HandleFunc("GET /{$}", s.page("index.html", false))
	mux.HandleFunc("GET /login", s.page("login.html", false))
	mux.HandleFunc("GET /register", s.page("register.html", false))
	mux.HandleFunc("GET /dashboard", s.page("dashboard.html", true))
	mux.HandleFunc("GET /transactions", s.page("transactions.html", true))
	mux.HandleFunc("GET /planner", s.page("planner.html", true))
	mux.HandleFunc("GET /cards", s.page("cards.html", true))
	mux.HandleFunc("GET /vehicles", s.page("vehicles.html", true))
	mux.HandleFunc("GET /trips", s.page("trips.html", true))
	mux.HandleFunc("GET /profile", s.page("profile.html", true))

	// Authentication.
	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/validate-phone", s.handleValidatePhone)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.handleLogout)
	mux.HandleFunc("GET /api/profile", s.authed(s.handleProfile))
	mux.HandleFunc("PUT /api/profile", s.authed(s.handleProfileUpdate))
	mux.HandleFunc("POST /api/password", s.authed(s.handlePasswordChange))

	// Financial entries and dashboards.
	mux.HandleFunc("GET /api/entries", s.authed(s.handleEntryList))
	mux.HandleFunc("POST /api/entries", s.authed(s.handleEntryCreate))
	mux.HandleFunc("PUT /api/entries/{id}", s.authed(s.handleEntryUpdate))
	mux.HandleFunc("DELETE /api/entries/{id}", s.authed(s.handleEntryDelete))
	mux.HandleFunc("GET /api/overview", s.authed(s.handleOverview))
	mux.HandleFunc("GET /api/stats/daily", s.authed(s.handleStatsDaily))
	mux.HandleFunc("GET /api/stats/weekly", s.authed(s.handleStatsWeekly))
	mux.HandleFunc("GET /api/stats/monthly", s.authed(s.handleStatsMonthly))

	// Planner.
	mux.HandleFunc("GET /api/planner/expenses", s.authed(s.handlePlannedExpenseList))
	mux.HandleFunc("POST /api/planner/expenses", s.authed(s.handlePlannedExpenseCreate))
	mux.HandleFunc("PUT /api/planner/expenses/{id}", s.authed(s.handlePlannedExpenseUpdate))
	mux.HandleFunc("DELETE /api/planner/expenses/{id}", s.authed(s.handlePlannedExpenseDelete))
	mux.HandleFunc("POST /api/planner/expenses/{id}/paid", s.authed(s.handlePlannedExpensePaid))
	mux.HandleFunc("GET /api/planner/incomes", s.authed(s.handlePlannedIncomeList))
	mux.HandleFunc("POST /api/planner/incomes", s.authed(s.handlePlannedIncomeCreate))
	mux.HandleFunc("PUT /api/planner/incomes/{id}", s.authed(s.handlePlannedIncomeUpdate))
	mux.HandleFunc("DELETE /api/planner/incomes/{id}", s.authed(s.handlePlannedIncomeDelete))
	mux.HandleFunc("GET /api/planner/reserves", s.authed(s.handlePlannedReserveList))
	mux.HandleFunc("POST /api/planner/reserves", s.authed(s.handlePlannedReserveCreate))
	mux.HandleFunc("PUT /api/planner/reserves/{id}", s.authed(s.handlePlannedReserveUpdate))
	mux.HandleFunc("DELETE /api/planner/reserves/{id}", s.authed(s.handlePlannedReserveDelete))

	// Cards, purchases and invoices.
	mux.HandleFunc("GET /api/cards", s.authed(s.handleCardList))
	mux.HandleFunc("POST /api/cards", s.authed(s.handleCardCreate))
	mux.HandleFunc("GET /api/cards/{id}", s.authed(s.handleCardGet))
	mux.HandleFunc("PUT /api/cards/{id}", s.authed(s.handleCardUpdate))
	mux.HandleFunc("DELETE /api/cards/{id}", s.authed(s.handleCardDelete))
	mux.HandleFunc("GET /api/cards/{id}/purchases", s.authed(s.handlePurchaseList))
	mux.HandleFunc("POST /api/cards/{id}/purchases", s.authed(s.handlePurchaseCreate))
	mux.HandleFunc("POST /api/cards/{id}/sync", s.authed(s.handleCardSync))
	mux.HandleFunc("PUT /api/purchases/{id}", s.authed(s.handlePurchaseUpdate))
	mux.HandleFunc("DELETE /api/purchases/{id}", s.authed(s.handlePurchaseDelete))
	mux.HandleFunc("GET /api/cards/summary", s.authed(s.handleCardSummary))

	// Vehicles.
	mux.HandleFunc("GET /api/vehicles", s.authed(s.handleVehicleList))
	mux.HandleFunc("POST /api/vehicles", s.authed(s.handleVehicleCreate))
	mux.HandleFunc("GET /api/vehicles/{id}", s.authed(s.handleVehicleGet))
	mux.HandleFunc("PUT /api/vehicles/{id}", s.authed(s.handleVehicleUpdate))
	mux.HandleFunc("DELETE /api/vehicles/{id}", s.authed(s.handleVehicleDelete))
	mux.HandleFunc("GET /api/vehicles/{id}/cost", s.authed(s.handleVehicleCost))
	mux.HandleFunc("GET /api/vehicles/{id}/expenses", s.authed(s.handleVehicleExpenseList))
	mux.HandleFunc("POST /api/vehicles/{id}/expenses", s.authed(s.handleVehicleExpenseCreate))
	mux.HandleFunc("DELETE /api/vehicle-expenses/{id}", s.authed(s.handleVehicleExpenseDelete))
	mux.HandleFunc("GET /api/vehicles/{id}/destinations", s.authed(s.handleDestinationList))
	mux.HandleFunc("POST /api/vehicles/{id}/destinations", s.authed(s.handleDestinationCreate))
	mux.HandleFunc("PUT /api/destinations/{id}", s.authed(s.handleDestinationUpdate))
	mux.HandleFunc("DELETE /api/destinations/{id}", s.authed(s.handleDestinationDelete))

	// Trips.
	mux.HandleFunc("GET /api/trips", s.authed(s.handleTripList))
	mux.HandleFunc("POST /api/trips", s.authed(s.handleTripCreate))
	mux.HandleFunc("GET /api/trips/{id}", s.authed(s.handleTripGet))
	mux.HandleFunc("PUT /api/trips/{id}", s.authed(s.handleTripUpdate))
	mux.HandleFunc("DELETE /api/trips/{id}", s.authed(s.handleTripDelete))
	mux.HandleFunc("GET /api/trips/{id}/cost", s.authed(s.handleTripCost))

	return s
}

func (s *Server) cacheCleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cleaned := s.overviewCache.CleanExpired() + s.summaryCache.CleanExpired()
			if cleaned > 0 {
				slog.Debug("Cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCleanup:
			return
		}
	}
}

// Shutdown stops the background loops and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		close(s.stopCleanup)
		if s.limiter != nil {
			s.limiter.Stop()
		}
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
