package http

import (
	"log/slog"
	"os"

	"github.com/fieldtrack/timeclock-backend-go/internal/config"
	"github.com/fieldtrack/timeclock-backend-go/internal/handler/http/middleware"
	"github.com/fieldtrack/timeclock-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	cfg *config.Config,
	JWTService jwt.Service,
	authHandler AuthHandler,
	timeClockHandler TimeClockHandler,
	complianceHandler ComplianceHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "timeclock-backend"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.App.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
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

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/time-entries", func(r chi.Router) {
				r.Post("/clock-in", timeClockHandler.ClockIn)
				r.Post("/clock-out", timeClockHandler.ClockOut)
				r.Post("/breaks/start", timeClockHandler.StartBreak)
				r.Post("/breaks/end", timeClockHandler.EndBreak)
				r.Post("/breaks/waive-meal", timeClockHandler.WaiveMealBreak)
				r.Get("/status", timeClockHandler.Status)
				r.Get("/my", timeClockHandler.ListMyEntries)
				r.Post("/{id}/evaluate", complianceHandler.EvaluateEntry)
			})

			r.Route("/compliance", func(r chi.Router) {
				r.Get("/week", complianceHandler.EvaluateWeek)
				r.Route("/alerts", func(r chi.Router) {
					r.Get("/", complianceHandler.ListAlerts)
					r.Post("/{id}/acknowledge", complianceHandler.AcknowledgeAlert)
				})
			})
		})

		// SSE stream. EventSource cannot set an Authorization header, so the
		// verifier also accepts the token from a query parameter.
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verify(JWTService.JWTAuth(), jwtauth.TokenFromQuery, jwtauth.TokenFromHeader))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
			r.Get("/compliance/alerts/stream", complianceHandler.Stream)
		})
	})
	return r
}
