package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brgysanroque/registry/internal/account"
	"github.com/brgysanroque/registry/internal/auth"
	"github.com/brgysanroque/registry/internal/config"
	httpmiddleware "github.com/brgysanroque/registry/internal/http/middleware"
	"github.com/brgysanroque/registry/internal/resident"
	"github.com/brgysanroque/registry/internal/storage"
)

// NewRouter wires repositories, services and handlers into the route tree.
func NewRouter(cfg *config.Config, pool *pgxpool.Pool, revocations auth.RevocationList, archiver storage.Uploader) http.Handler {
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL)

	accountRepo := account.NewRepository(pool)
	accountService := account.NewService(accountRepo, jwtManager, revocations, cfg.AdminSignupCode)
	accountHandler := account.NewHandler(accountService)

	residentRepo := resident.NewRepository(pool)
	residentService := resident.NewService(residentRepo)
	residentHandler := resident.NewHandler(residentService, archiver)

	authLimiter := httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst)
	adminLimiter := httpmiddleware.NewRateLimiter(cfg.RateLimitAdmin.RequestsPerSecond, cfg.RateLimitAdmin.Burst)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Authentication endpoints, throttled per IP.
	r.Group(func(r chi.Router) {
		r.Use(httpmiddleware.IPRateLimit(authLimiter))
		accountHandler.RegisterRoutes(r)
	})

	// Public read paths: the short ID inside a QR code is not a secret, and
	// the village listing/insights back the unauthenticated viewer pages.
	r.Get("/residents/view", residentHandler.HandleListPublic)
	r.Get("/residents/qr/{id}", residentHandler.HandleQRLookup)
	r.Get("/residents/insights", residentHandler.HandleInsights)

	// Authenticated reads.
	r.Group(func(r chi.Router) {
		r.Use(httpmiddleware.Auth(jwtManager, revocations))
		r.Get("/residents", residentHandler.HandleList)

		// Admin-gated mutations.
		r.Group(func(r chi.Router) {
			r.Use(httpmiddleware.RequireAdmin)
			r.Use(httpmiddleware.UserRateLimit(adminLimiter))
			r.Post("/residents", residentHandler.HandleCreate)
			r.Put("/residents/{key}", residentHandler.HandleUpdate)
			r.Delete("/residents/{key}", residentHandler.HandleDelete)
			r.Post("/residents/upload", residentHandler.HandleUpload)
			r.Get("/residents/backup", residentHandler.HandleBackup)
		})
	})

	return r
}
