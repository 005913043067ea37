package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/cmlabs-hris/attendance-insight-go/internal/config"
	"github.com/cmlabs-hris/attendance-insight-go/internal/domain/punch"
	"github.com/cmlabs-hris/attendance-insight-go/internal/repository/memory"
	"github.com/cmlabs-hris/attendance-insight-go/internal/service/analytics"
	"github.com/cmlabs-hris/attendance-insight-go/internal/service/compliance"
	"github.com/cmlabs-hris/attendance-insight-go/internal/service/exception"
	"github.com/cmlabs-hris/attendance-insight-go/internal/service/ingest"
	"github.com/cmlabs-hris/attendance-insight-go/internal/service/shift"
)

// AnalysisReport is the CLI's combined output for one day.
type AnalysisReport struct {
	Date        string                       `json:"date"`
	EventCount  int                          `json:"event_count"`
	DroppedRows int                          `json:"dropped_rows"`
	KPI         punch.KPIResponse            `json:"kpi"`
	Exceptions  punch.ListExceptionsResponse `json:"exceptions"`
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	var file string
	var date string

	cmd := &cobra.Command{
		Use:           "analyze",
		Short:         "Analyze one day of a local punch CSV export",
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, rootOpts, file, date)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to the punch CSV export (required)")
	cmd.Flags().StringVar(&date, "date", "", "calendar date to analyze, YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runAnalyze(cmd *cobra.Command, rootOpts *RootOptions, file, date string) error {
	if rootOpts.EnvFile != "" {
		if err := godotenv.Load(rootOpts.EnvFile); err != nil {
			return fmt.Errorf("failed to load env file: %w", err)
		}
	}

	engine, err := config.LoadEngine()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read export: %w", err)
	}

	normalizer := ingest.NewNormalizer(engine.IDCorrections, engine.SiteLatitude, engine.SiteLongitude)
	snapshot := normalizer.ParseBatch(data, time.Now())

	store := memory.NewSnapshotStore()
	store.Replace(snapshot)

	pairer := shift.NewPairer(engine.CompliantDistanceM)
	classifier := compliance.NewClassifier(engine.CompliantDistanceM, engine.WarningDistanceM)
	detector := exception.NewDetector(pairer, exception.Thresholds{
		WorkStartMinutes:    engine.WorkStart(),
		GraceMinutes:        engine.GraceMinutes,
		WarningDistanceM:    engine.WarningDistanceM,
		CriticalDistanceM:   engine.CriticalDistanceM,
		OpenSessionWarning:  time.Duration(engine.OpenSessionWarningHours * float64(time.Hour)),
		OpenSessionCritical: time.Duration(engine.OpenSessionCriticalHours * float64(time.Hour)),
	})
	service := analytics.NewAnalyticsService(store, pairer, classifier, detector, engine.IDCorrections)

	ctx := cmd.Context()
	kpi, err := service.KPISnapshot(ctx, punch.DashboardFilter{Date: date})
	if err != nil {
		return err
	}
	exceptions, err := service.ListExceptions(ctx, punch.ExceptionFilter{Date: date, Limit: 100})
	if err != nil {
		return err
	}

	resolved := date
	if resolved == "" {
		resolved = time.Now().Format("2006-01-02")
	}
	report := AnalysisReport{
		Date:        resolved,
		EventCount:  len(snapshot.Events),
		DroppedRows: snapshot.DroppedRows,
		KPI:         kpi,
		Exceptions:  exceptions,
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
