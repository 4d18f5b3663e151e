package clickhouse_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"statarb-lab/internal/domain"
	"statarb-lab/internal/store"
	"statarb-lab/internal/store/clickhouse"
	"statarb-lab/internal/store/migrations"
)

// setupTestDB starts a ClickHouse container, applies the embedded
// migrations, and returns a connection with its cleanup.
func setupTestDB(t *testing.T) (*clickhouse.Conn, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "clickhouse/clickhouse-server:24.1-alpine",
		ExposedPorts: []string{"9000/tcp", "8123/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForLog("Application: Ready for connections").
				WithStartupTimeout(60*time.Second),
			wait.ForListeningPort("9000/tcp"),
		),
		Env: map[string]string{
			"CLICKHOUSE_DB":       "test",
			"CLICKHOUSE_USER":     "default",
			"CLICKHOUSE_PASSWORD": "",
		},
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "9000")
	require.NoError(t, err)

	dsn := fmt.Sprintf("clickhouse://%s:%s/test", host, port.Port())

	conn, err := clickhouse.NewConn(ctx, dsn)
	require.NoError(t, err)

	require.NoError(t, migrations.RunClickhouseMigrations(ctx, conn))

	cleanup := func() {
		conn.Close()
		_ = container.Terminate(ctx)
	}
	return conn, cleanup
}

func TestTradeLogClickhouse(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	tradeLog := clickhouse.NewTradeLog(conn)

	var _ store.TradeLog = tradeLog

	t.Run("duplicate keys collapse to one row", func(t *testing.T) {
		tick := domain.Tick{Timestamp: 100.5, Symbol: "BTCUSDT", Price: 50000, Size: 0.5}
		require.NoError(t, tradeLog.Upsert(ctx, tick))
		require.NoError(t, tradeLog.Upsert(ctx, tick))

		rows, err := tradeLog.RecentRows(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})

	t.Run("recent rows newest first", func(t *testing.T) {
		require.NoError(t, tradeLog.Clear(ctx))

		for _, ts := range []float64{10, 30, 20} {
			require.NoError(t, tradeLog.Upsert(ctx, domain.Tick{
				Timestamp: ts, Symbol: "ETHUSDT", Price: ts, Size: 1,
			}))
		}

		rows, err := tradeLog.RecentRows(ctx, 2)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, 30.0, rows[0].Timestamp)
		assert.Equal(t, 20.0, rows[1].Timestamp)
	})

	t.Run("clear truncates the table", func(t *testing.T) {
		require.NoError(t, tradeLog.Upsert(ctx, domain.Tick{
			Timestamp: 1, Symbol: "BTCUSDT", Price: 1, Size: 1,
		}))
		require.NoError(t, tradeLog.Clear(ctx))

		rows, err := tradeLog.RecentRows(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}
