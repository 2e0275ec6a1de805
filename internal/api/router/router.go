package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/clinic-admin-platform/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/clinic-admin-platform/internal/http/middleware"
	"github.com/wolfman30/clinic-admin-platform/internal/http/respond"
	"github.com/wolfman30/clinic-admin-platform/internal/observability/metrics"
	"github.com/wolfman30/clinic-admin-platform/pkg/logging"
)

const maxBodyBytes = 10 << 10

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Session            *handlers.AdminSessionHandler
	Doctors            *handlers.AdminDoctorsHandler
	Receptionists      *handlers.AdminReceptionistsHandler
	Verifier           httpmiddleware.SessionVerifier
	CORSAllowedOrigins []string

	// Optional.
	Health         Pinger
	MetricsHandler http.Handler
	HTTPMetrics    *metrics.HTTPMetrics
	LoginRateRPS   float64
	LoginBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(httpmiddleware.Metrics(cfg.HTTPMetrics))
	r.Use(middleware.SetHeader("X-Content-Type-Options", "nosniff"))
	r.Use(middleware.SetHeader("X-Frame-Options", "DENY"))
	r.Use(middleware.SetHeader("Referrer-Policy", "no-referrer"))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	r.Use(middleware.RequestSize(maxBodyBytes))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respond.Message(w, http.StatusNotFound, "Route "+req.URL.Path+" not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respond.Message(w, http.StatusMethodNotAllowed, "Method "+req.Method+" not allowed on "+req.URL.Path)
	})

	r.Get("/health", healthHandler(cfg.Health))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/admin", func(admin chi.Router) {
		login := http.Handler(http.HandlerFunc(cfg.Session.Login))
		if cfg.LoginRateRPS > 0 {
			login = httpmiddleware.RateLimit(cfg.LoginRateRPS, cfg.LoginBurst)(login)
		}
		admin.Method(http.MethodPost, "/login", login)
		admin.Post("/logout", cfg.Session.Logout)
		admin.Get("/me", cfg.Session.Me)

		admin.Group(func(staff chi.Router) {
			staff.Use(httpmiddleware.AdminSession(cfg.Verifier, cfg.Logger))

			staff.Post("/add-doctor", cfg.Doctors.Add)
			staff.Get("/doctors/count", cfg.Doctors.Count)
			staff.Get("/doctors", cfg.Doctors.List)
			staff.Get("/doctor/{publicId}", cfg.Doctors.Get)
			staff.Put("/edit-doctor/{publicId}", cfg.Doctors.Edit)
			staff.Delete("/delete-doctor/{publicId}", cfg.Doctors.Delete)

			staff.Post("/add-receptionist", cfg.Receptionists.Add)
			staff.Get("/receptionists/count", cfg.Receptionists.Count)
			staff.Get("/receptionists", cfg.Receptionists.List)
			staff.Get("/receptionist/{publicId}", cfg.Receptionists.Get)
			staff.Put("/edit-receptionist/{publicId}", cfg.Receptionists.Edit)
			staff.Delete("/delete-receptionist/{publicId}", cfg.Receptionists.Delete)
		})
	})

	return r
}

func healthHandler(p Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				respond.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
