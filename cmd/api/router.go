package main

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crucial707/kijiji-watch/internal/config"
	"github.com/crucial707/kijiji-watch/internal/handlers"
	appmw "github.com/crucial707/kijiji-watch/internal/middleware"
	"github.com/crucial707/kijiji-watch/internal/repo"
)

// newRouter builds the full API router from the database handle, config, and
// the scanner/source/notifier collaborators.
func newRouter(db *sql.DB, cfg config.Config, scan handlers.ScanController, categories handlers.CategorySource, tester handlers.WebhookTester) http.Handler {
	searchRepo := repo.NewSearchRepo(db)
	webhookRepo := repo.NewWebhookRepo(db)
	regionRepo := repo.NewRegionRepo(db)

	authH := &handlers.AuthHandler{APIToken: cfg.APIToken, Secret: []byte(cfg.JWTSecret), ExpireHours: cfg.JWTExpireHours}
	searchH := &handlers.SearchHandler{Repo: searchRepo, Scanner: scan}
	webhookH := &handlers.WebhookHandler{Repo: webhookRepo, Tester: tester}
	regionH := &handlers.RegionHandler{Repo: regionRepo}
	categoryH := &handlers.CategoryHandler{Source: categories}
	maintH := &handlers.MaintenanceHandler{Searches: searchRepo, Scanner: scan}

	useTLS := cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(appmw.Recoverer)
	r.Use(appmw.RequestLog)
	r.Use(appmw.Prometheus)
	r.Use(appmw.SecureHeaders(useTLS))
	r.Use(appmw.CORS(cfg.CORSAllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			handlers.JSONError(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	loginLimiter := appmw.NewLoginLimiter(10, 5)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(loginLimiter.Handler)
			r.Use(appmw.LimitBody)
			r.Post("/auth/login", authH.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(appmw.JWTMiddleware([]byte(cfg.JWTSecret)))
			r.Use(appmw.LimitBody)

			r.Get("/searches", searchH.ListSearches)
			r.Post("/searches", searchH.CreateSearch)
			r.Get("/searches/{id}", searchH.GetSearch)
			r.Put("/searches/{id}", searchH.UpdateSearch)
			r.Patch("/searches/{id}/toggle", searchH.ToggleSearch)
			r.Delete("/searches/{id}", searchH.DeleteSearch)

			r.Get("/webhooks", webhookH.ListWebhooks)
			r.Post("/webhooks", webhookH.CreateWebhook)
			r.Delete("/webhooks/{id}", webhookH.DeleteWebhook)
			r.Post("/webhooks/{id}/test", webhookH.TestWebhook)

			r.Get("/regions", regionH.ListRegions)
			r.Post("/regions", regionH.CreateRegion)
			r.Delete("/regions/{id}", regionH.DeleteRegion)

			r.Get("/categories", categoryH.ListCategories)

			r.Post("/database/purge", maintH.Purge)
		})
	})

	return r
}
