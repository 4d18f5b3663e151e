// Package main runs the analytics pipeline offline over a CSV file and
// writes the computed series, backtest path and summary as CSV.
package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"statarb-lab/internal/analytics"
	"statarb-lab/internal/domain"
	"statarb-lab/internal/observability"
	"statarb-lab/internal/replay"
	"statarb-lab/internal/store"
	"statarb-lab/internal/store/memory"
)

func main() {
	godotenv.Load()

	input := flag.String("input", "", "Input CSV file (long or wide format)")
	symbolX := flag.String("symbol-x", envOr("SYMBOL_X", "BTCUSDT"), "Independent instrument")
	symbolY := flag.String("symbol-y", envOr("SYMBOL_Y", "ETHUSDT"), "Dependent instrument")
	method := flag.String("method", "ols", "Hedge ratio estimator: ols, kalman or robust")
	window := flag.Int("window", 100, "Rolling window size")
	delta := flag.Float64("delta", 0, "Kalman state noise (0 for default)")
	r := flag.Float64("r", 0, "Kalman observation noise (0 for default)")
	entryZ := flag.Float64("entry-z", 2.0, "Entry z-score threshold")
	exitZ := flag.Float64("exit-z", 0.5, "Exit z-score threshold")
	resample := flag.Duration("resample", 0, "Optional resample interval for the series export")
	outputDir := flag.String("output-dir", "output", "Directory for CSV exports")
	logLevel := flag.String("log-level", envOr("LOG_LEVEL", "info"), "Log level: debug, info, warn, error")

	flag.Parse()

	logger := newLogger(*logLevel)

	if *input == "" {
		logger.Fatal("--input is required")
	}

	metrics := observability.NewMetrics("")
	tickStore := store.NewTickStore([]string{*symbolX, *symbolY}, 1, memory.NewTradeLog(), logger, metrics)
	engine := analytics.NewEngine(tickStore, logger, metrics)
	runner := replay.NewRunner(engine, logger)

	params := domain.AnalyticsParams{
		SymbolX: *symbolX,
		SymbolY: *symbolY,
		Estimator: domain.EstimatorConfig{
			Method: domain.EstimatorMethod(*method),
			Window: *window,
			Delta:  *delta,
			R:      *r,
		},
		EntryZ: *entryZ,
		ExitZ:  *exitZ,
	}

	report, err := runner.RunFile(*input, params)
	if err != nil {
		logger.WithError(err).Fatal("analytics pass failed")
	}

	if !report.Series.HasMetrics() {
		logger.Warn("insufficient data: no metrics computed, nothing to export")
		return
	}

	if report.Stationarity != nil {
		logger.WithFields(log.Fields{
			"statistic":  report.Stationarity.Statistic,
			"p_value":    report.Stationarity.PValue,
			"stationary": report.Stationarity.IsStationary,
			"lag":        report.Stationarity.Lag,
		}).Info("stationarity test")
	} else {
		logger.Info("stationarity test skipped: insufficient data")
	}
	if report.Summary != nil {
		logger.WithFields(log.Fields{
			"trades":      report.Summary.Trades,
			"winning_pct": report.Summary.WinningPct,
			"total_pnl":   report.Summary.TotalPnL,
		}).Info("backtest summary")
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		logger.WithError(err).Fatal("create output directory")
	}

	series := report.Series
	if *resample > 0 {
		series = analytics.Resample(series, *resample)
	}
	if err := replay.ExportSeriesCSV(filepath.Join(*outputDir, "series.csv"), series); err != nil {
		logger.WithError(err).Fatal("export series")
	}
	if len(report.Backtest) > 0 {
		if err := replay.ExportBacktestCSV(filepath.Join(*outputDir, "backtest.csv"), report.Backtest); err != nil {
			logger.WithError(err).Fatal("export backtest")
		}
	}
	if err := replay.ExportSummaryCSV(filepath.Join(*outputDir, "summary.csv"), report); err != nil {
		logger.WithError(err).Fatal("export summary")
	}

	logger.WithField("dir", *outputDir).Info("exports written")
}

func newLogger(level string) *log.Logger {
	logger := log.New()
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if lvl, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
