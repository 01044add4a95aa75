package main

import (
	"fmt"
	"net/http"

	"github.com/fieldtrack/timeclock-backend-go/internal/config"
	appHTTP "github.com/fieldtrack/timeclock-backend-go/internal/handler/http"
	"github.com/fieldtrack/timeclock-backend-go/internal/pkg/cron"
	"github.com/fieldtrack/timeclock-backend-go/internal/pkg/database"
	"github.com/fieldtrack/timeclock-backend-go/internal/pkg/jwt"
	"github.com/fieldtrack/timeclock-backend-go/internal/pkg/sse"
	"github.com/fieldtrack/timeclock-backend-go/internal/repository/postgresql"
	serviceAuth "github.com/fieldtrack/timeclock-backend-go/internal/service/auth"
	complianceService "github.com/fieldtrack/timeclock-backend-go/internal/service/compliance"
	timeclockService "github.com/fieldtrack/timeclock-backend-go/internal/service/timeclock"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	workerRepo := postgresql.NewWorkerRepository(db)
	timeEntryRepo := postgresql.NewTimeEntryRepository(db)
	breakRepo := postgresql.NewBreakRepository(db)
	alertRepo := postgresql.NewAlertRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	hub := sse.NewHub()

	authService := serviceAuth.NewAuthService(workerRepo, JWTService)
	timeClockService := timeclockService.NewTimeClockService(db, timeEntryRepo, breakRepo, alertRepo, hub)
	complianceSvc := complianceService.NewComplianceService(alertRepo, timeEntryRepo, breakRepo, hub)

	authHandler := appHTTP.NewAuthHandler(authService)
	timeClockHandler := appHTTP.NewTimeClockHandler(timeClockService)
	complianceHandler := appHTTP.NewComplianceHandler(complianceSvc, hub)

	scheduler := cron.NewScheduler()
	complianceJobs := cron.NewComplianceJobs(timeEntryRepo, breakRepo, alertRepo, hub)
	complianceJobs.RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		cfg,
		JWTService,
		authHandler,
		timeClockHandler,
		complianceHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
