package stream

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statarb-lab/internal/domain"
)

type chanSink struct {
	ticks chan domain.Tick
}

func (s *chanSink) Write(_ context.Context, t domain.Tick) {
	s.ticks <- t
}

func quietLogger() *log.Logger {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return logger
}

// wsTestServer upgrades each connection and sends the given messages.
func wsTestServer(t *testing.T, messages []string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, m := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
				return
			}
		}
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func TestClientDeliversParsedTicks(t *testing.T) {
	valid := `{"stream":"btcusdt@aggTrade","data":{"e":"aggTrade","E":1700000001000,"s":"BTCUSDT","p":"100","q":"1"}}`
	malformed := `{"garbage":`
	valid2 := `{"stream":"ethusdt@aggTrade","data":{"e":"aggTrade","E":1700000002000,"s":"ETHUSDT","p":"10","q":"2"}}`

	srv := wsTestServer(t, []string{valid, malformed, valid2})
	defer srv.Close()

	sink := &chanSink{ticks: make(chan domain.Tick, 10)}
	client := NewClient(Config{
		URL:            strings.Replace(srv.URL, "http", "ws", 1),
		ReconnectDelay: 50 * time.Millisecond,
	}, sink, quietLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Run(ctx)
	defer client.Stop()

	first := receiveTick(t, sink.ticks)
	assert.Equal(t, "BTCUSDT", first.Symbol)

	// The malformed message in between is discarded, not fatal.
	second := receiveTick(t, sink.ticks)
	assert.Equal(t, "ETHUSDT", second.Symbol)
}

func TestClientStopHaltsReconnects(t *testing.T) {
	// Nothing listens on this address; the client cycles connect/backoff.
	client := NewClient(Config{
		URL:            "ws://127.0.0.1:1/stream?streams=",
		Symbols:        []string{"BTCUSDT"},
		ReconnectDelay: 20 * time.Millisecond,
	}, &chanSink{ticks: make(chan domain.Tick, 1)}, quietLogger(), nil)

	done := make(chan struct{})
	go func() {
		client.Run(context.Background())
		close(done)
	}()

	time.Sleep(60 * time.Millisecond)
	client.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("client did not stop")
	}
	assert.Equal(t, StateStopped, client.State())
}

func TestClientStopIsIdempotent(t *testing.T) {
	client := NewClient(Config{URL: "ws://127.0.0.1:1/"}, &chanSink{ticks: make(chan domain.Tick, 1)}, quietLogger(), nil)
	client.Stop()
	client.Stop()
}

func receiveTick(t *testing.T, ch chan domain.Tick) domain.Tick {
	t.Helper()
	select {
	case tick := <-ch:
		return tick
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for tick")
		return domain.Tick{}
	}
}

func TestClientInitialState(t *testing.T) {
	client := NewClient(Config{}, &chanSink{}, quietLogger(), nil)
	require.Equal(t, StateDisconnected, client.State())
}
