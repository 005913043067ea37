package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/attendance-insight-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-insight-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	JWTService jwt.Service,
	authHandler AuthHandler,
	analyticsHandler AnalyticsHandler,
	frontendURL string,
	env string,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attendance-insight"),
		slog.String("version", "v1.0.0"),
		slog.String("env", env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{frontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/token", authHandler.Token)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/kpi", analyticsHandler.GetKPI)
				r.Get("/hourly", analyticsHandler.GetHourlyActivity)
				r.Get("/workload", analyticsHandler.GetTopWorkload)
				r.Get("/locations", analyticsHandler.GetLatestLocations)
			})

			r.Get("/exceptions", analyticsHandler.ListExceptions)

			r.Route("/employees", func(r chi.Router) {
				r.Get("/{employeeID}/shifts", analyticsHandler.GetShiftHistory)
			})

			r.Post("/refresh", analyticsHandler.Refresh)
		})
	})
	return r
}
