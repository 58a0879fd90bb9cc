package api

import (
	"net/http"
	"time"

	_ "github.com/DominikSitny/tornado-racing-moto/docs"
	"github.com/DominikSitny/tornado-racing-moto/internal/api/handlers"
	"github.com/DominikSitny/tornado-racing-moto/internal/api/middleware"
	"github.com/DominikSitny/tornado-racing-moto/pkg/interfaces"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// RouterConfig зависимости и настройки HTTP-слоя
type RouterConfig struct {
	Catalog handlers.CatalogReader
	Admin   interface {
		handlers.AdminGateway
		handlers.AdminPanel
	}
	Contact handlers.ContactSubmitter
	Sitemap handlers.SitemapBuilder
	Store   handlers.Pinger
	Logger  interfaces.LoggerPort

	CORSAllowOrigins []string
	RequestTimeout   time.Duration
	BodyLimit        int64 // байты, JSON-запросы
	MaxUpload        int64 // байты, загрузка изображений
	MetricsEndpoint  string
	// UploadsDir каталог локального хранилища изображений, пустой - /uploads не обслуживается
	UploadsDir string
}

// SetupRouter настраивает маршрутизатор
func SetupRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Глобальные middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(cfg.CORSAllowOrigins))

	r.Method(http.MethodGet, "/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}))
	r.Method(http.MethodHead, "/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	if cfg.Store != nil {
		r.Get("/ready", handlers.Ready(cfg.Store, cfg.Logger))
	}

	if cfg.MetricsEndpoint != "" {
		r.Handle(cfg.MetricsEndpoint, promhttp.Handler())
	}

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	if cfg.UploadsDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir)))
		r.Get("/uploads/*", fs.ServeHTTP)
	}

	catalogHandler := handlers.NewCatalogHandler(cfg.Catalog, cfg.Admin, cfg.Logger)
	adminHandler := handlers.NewAdminHandler(cfg.Admin, cfg.Logger)
	contactHandler := handlers.NewContactHandler(cfg.Contact, cfg.Logger)
	sitemapHandler := handlers.NewSitemapHandler(cfg.Sitemap, cfg.Logger)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
		r.Get("/sitemap.xml", sitemapHandler.Sitemap)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.RequestTimeout))

		r.Group(func(r chi.Router) {
			r.Use(middleware.BodyLimit(cfg.BodyLimit))

			// Маршруты каталога
			r.Route("/catalog", func(r chi.Router) {
				r.Get("/", catalogHandler.GetCatalog)
				r.Post("/", catalogHandler.PostCommand)
				r.Get("/categories/{categoryID}", catalogHandler.GetCategory)
				r.Get("/categories/{categoryID}/{modelID}", catalogHandler.GetModel)
				r.Get("/categories/{categoryID}/{modelID}/{partID}", catalogHandler.GetPart)
			})

			r.Post("/admin/session", adminHandler.CreateSession)
			r.Post("/contact", contactHandler.Submit)
		})

		r.With(middleware.BodyLimit(cfg.MaxUpload)).Post("/upload", adminHandler.Upload)
	})

	return r
}
