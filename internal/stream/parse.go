package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"statarb-lab/internal/domain"
)

// ErrMalformedMessage marks a stream message that could not be turned into
// a valid tick. Callers discard and move on.
var ErrMalformedMessage = errors.New("malformed stream message")

// combinedEnvelope is the combined-stream wrapper: the topic name plus the
// event payload.
type combinedEnvelope struct {
	Stream string          `json:"stream"`
	Data   aggTradeEvent   `json:"data"`
}

// aggTradeEvent is an aggregated trade event. Price and quantity arrive as
// decimal strings; the event time is epoch milliseconds.
type aggTradeEvent struct {
	EventType string `json:"e"`
	EventTime int64  `json:"E"`
	Symbol    string `json:"s"`
	Price     string `json:"p"`
	Quantity  string `json:"q"`
}

// ParseMessage decodes one combined-stream message into a tick. Messages
// with a missing field, a non-trade event type, an unparseable number, or a
// value that fails tick validation are rejected with ErrMalformedMessage.
func ParseMessage(raw []byte) (domain.Tick, error) {
	var env combinedEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return domain.Tick{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	ev := env.Data
	if ev.EventType != "aggTrade" {
		return domain.Tick{}, fmt.Errorf("%w: unexpected event type %q", ErrMalformedMessage, ev.EventType)
	}
	if ev.Symbol == "" || ev.Price == "" || ev.Quantity == "" || ev.EventTime <= 0 {
		return domain.Tick{}, fmt.Errorf("%w: missing field", ErrMalformedMessage)
	}

	price, err := strconv.ParseFloat(ev.Price, 64)
	if err != nil {
		return domain.Tick{}, fmt.Errorf("%w: price %q", ErrMalformedMessage, ev.Price)
	}
	size, err := strconv.ParseFloat(ev.Quantity, 64)
	if err != nil {
		return domain.Tick{}, fmt.Errorf("%w: quantity %q", ErrMalformedMessage, ev.Quantity)
	}

	tick := domain.Tick{
		Timestamp: float64(ev.EventTime) / 1000.0,
		Symbol:    ev.Symbol,
		Price:     price,
		Size:      size,
	}
	if !tick.Valid() {
		return domain.Tick{}, fmt.Errorf("%w: invalid tick values", ErrMalformedMessage)
	}
	return tick, nil
}
