// Package main runs the unified service: live ingestion plus the HTTP API
// that serves recent ticks, resampled views and on-demand analytics passes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"statarb-lab/internal/analytics"
	"statarb-lab/internal/observability"
	"statarb-lab/internal/server"
	"statarb-lab/internal/store"
	chstore "statarb-lab/internal/store/clickhouse"
	"statarb-lab/internal/store/memory"
	"statarb-lab/internal/store/migrations"
	pgstore "statarb-lab/internal/store/postgres"
	"statarb-lab/internal/stream"
)

const defaultStreamURL = "wss://fstream.binance.com/stream?streams="

func main() {
	godotenv.Load()

	streamURL := flag.String("stream-url", envOr("STREAM_URL", defaultStreamURL), "Combined-stream websocket base URL")
	symbols := flag.String("symbols", envOr("SYMBOLS", "BTCUSDT,ETHUSDT"), "Comma-separated instrument symbols")
	bufferSize := flag.Int("buffer-size", 5000, "Per-symbol ring buffer capacity")
	backend := flag.String("backend", envOr("BACKEND", "memory"), "Durable log backend: memory, postgres or clickhouse")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	reconnectDelay := flag.Duration("reconnect-delay", 5*time.Second, "Fixed delay between reconnect attempts")
	apiAddr := flag.String("api-addr", envOr("API_ADDR", ":8080"), "HTTP API listen address")
	logLevel := flag.String("log-level", envOr("LOG_LEVEL", "info"), "Log level: debug, info, warn, error")

	flag.Parse()

	logger := newLogger(*logLevel)

	symbolList := splitSymbols(*symbols)
	if len(symbolList) < 2 {
		logger.Fatal("at least two symbols are required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics("")

	tradeLog, cleanup, err := openTradeLog(ctx, *backend, *postgresDSN, *clickhouseDSN)
	if err != nil {
		logger.WithError(err).Fatal("open trade log")
	}
	defer cleanup()

	tickStore := store.NewTickStore(symbolList, *bufferSize, tradeLog, logger, metrics)
	engine := analytics.NewEngine(tickStore, logger, metrics)
	api := server.New(*apiAddr, tickStore, engine, logger, metrics)

	client := stream.NewClient(stream.Config{
		URL:            *streamURL,
		Symbols:        symbolList,
		ReconnectDelay: *reconnectDelay,
	}, tickStore, logger, metrics)

	errCh := make(chan error, 2)
	go func() {
		if err := api.ListenAndServe(); err != nil {
			errCh <- fmt.Errorf("api server: %w", err)
		}
	}()
	go func() {
		client.Run(ctx)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.WithField("signal", sig).Info("shutting down")
	case err := <-errCh:
		logger.WithError(err).Error("component failed")
	}

	client.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := api.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("api shutdown failed")
	}
	logger.Info("shutdown complete")
}

// openTradeLog builds the durable backend and applies its migrations.
func openTradeLog(ctx context.Context, backend, postgresDSN, clickhouseDSN string) (store.TradeLog, func(), error) {
	switch backend {
	case "memory":
		return memory.NewTradeLog(), func() {}, nil

	case "postgres":
		if postgresDSN == "" {
			return nil, nil, fmt.Errorf("--postgres-dsn is required for the postgres backend")
		}
		pool, err := pgstore.NewPool(ctx, postgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return pgstore.NewTradeLog(pool), func() { pool.Close() }, nil

	case "clickhouse":
		if clickhouseDSN == "" {
			return nil, nil, fmt.Errorf("--clickhouse-dsn is required for the clickhouse backend")
		}
		conn, err := chstore.NewConn(ctx, clickhouseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
		if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("migrate clickhouse: %w", err)
		}
		return chstore.NewTradeLog(conn), func() { conn.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", backend)
}

func newLogger(level string) *log.Logger {
	logger := log.New()
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if lvl, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}

func splitSymbols(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
