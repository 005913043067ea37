package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-insight-go/internal/config"
	appHTTP "github.com/cmlabs-hris/attendance-insight-go/internal/handler/http"
	"github.com/cmlabs-hris/attendance-insight-go/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-insight-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-insight-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/attendance-insight-go/internal/repository/memory"
	"github.com/cmlabs-hris/attendance-insight-go/internal/service/analytics"
	"github.com/cmlabs-hris/attendance-insight-go/internal/service/compliance"
	"github.com/cmlabs-hris/attendance-insight-go/internal/service/exception"
	"github.com/cmlabs-hris/attendance-insight-go/internal/service/ingest"
	"github.com/cmlabs-hris/attendance-insight-go/internal/service/shift"
	"github.com/cmlabs-hris/attendance-insight-go/internal/service/source"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	appMetrics := metrics.New()
	snapshotStore := memory.NewSnapshotStore()

	normalizer := ingest.NewNormalizer(
		cfg.Engine.IDCorrections,
		cfg.Engine.SiteLatitude,
		cfg.Engine.SiteLongitude,
	)
	fetcher := source.NewHTTPFetcher(cfg.Source.URL, cfg.Source.FetchTimeout, cfg.Source.WarnCooldown)
	refresher := ingest.NewRefresher(fetcher, snapshotStore, normalizer, appMetrics)

	pairer := shift.NewPairer(cfg.Engine.CompliantDistanceM)
	classifier := compliance.NewClassifier(cfg.Engine.CompliantDistanceM, cfg.Engine.WarningDistanceM)
	detector := exception.NewDetector(pairer, exception.Thresholds{
		WorkStartMinutes:    cfg.Engine.WorkStart(),
		GraceMinutes:        cfg.Engine.GraceMinutes,
		WarningDistanceM:    cfg.Engine.WarningDistanceM,
		CriticalDistanceM:   cfg.Engine.CriticalDistanceM,
		OpenSessionWarning:  time.Duration(cfg.Engine.OpenSessionWarningHours * float64(time.Hour)),
		OpenSessionCritical: time.Duration(cfg.Engine.OpenSessionCriticalHours * float64(time.Hour)),
	})
	analyticsService := analytics.NewAnalyticsService(snapshotStore, pairer, classifier, detector, cfg.Engine.IDCorrections)

	JWTService := jwt.NewJWTService(cfg.Auth.Secret, cfg.Auth.AccessExpiration)

	authHandler := appHTTP.NewAuthHandler(JWTService, cfg.Auth.APIKey)
	analyticsHandler := appHTTP.NewAnalyticsHandler(analyticsService, refresher)

	scheduler := cron.NewScheduler()
	scheduler.AddJob("refresh_punch_source", cfg.Source.RefreshInterval, true, func(ctx context.Context) error {
		_, err := refresher.Refresh(ctx)
		return err
	})
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		JWTService,
		authHandler,
		analyticsHandler,
		cfg.App.FrontendURL,
		cfg.App.Env,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
