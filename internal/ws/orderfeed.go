// Package ws subscribes to the backend's order stream so the admin board is
// pushed fresh orders instead of only polling for them. The stream is a
// trigger source, nothing more: every received order goes through the same
// reconciler the poll path uses, and the poll keeps running as the fallback.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"velora/internal/bus"
	"velora/internal/domain"
	"velora/internal/reconcile"
)

type OrderFeed struct {
	URL   string
	Token string

	fetch   func(ctx context.Context) ([]domain.Order, error)
	poll    time.Duration
	signals *bus.Bus
	board   *reconcile.List[domain.Order, string]
}

func orderID(o domain.Order) string { return o.Ref() }

// Newest orders first on the board.
func orderBoardOrder(a, b domain.Order) bool { return a.CreatedAt.After(b.CreatedAt) }

// NewOrderFeed builds the board. fetch is the authoritative list call used
// by both the initial load and the interval poll; url may be empty, leaving
// polling as the only trigger. A non-nil signals bus adds a third trigger:
// an order placed through this process refreshes the board right away
// instead of waiting out a poll tick.
func NewOrderFeed(url, token string, poll time.Duration, signals *bus.Bus, fetch func(ctx context.Context) ([]domain.Order, error)) *OrderFeed {
	if poll <= 0 {
		poll = 10 * time.Second
	}
	return &OrderFeed{
		URL:     url,
		Token:   token,
		fetch:   fetch,
		poll:    poll,
		signals: signals,
		board:   reconcile.NewList[domain.Order, string](orderID, orderBoardOrder),
	}
}

// Snapshot returns the board for rendering.
func (f *OrderFeed) Snapshot() []domain.Order {
	return f.board.Snapshot()
}

// Run drives every trigger source until ctx ends. The bus subscription is
// registered before the first fetch so no placement signal lands unheard.
func (f *OrderFeed) Run(ctx context.Context) {
	if f.signals != nil {
		ch, cancel := f.signals.Subscribe(bus.TopicOrderPlaced)
		defer cancel()
		go func() {
			for range ch {
				f.refresh(ctx)
			}
		}()
	}

	f.refresh(ctx)
	if f.URL != "" {
		go f.subscribe(ctx)
	}
	reconcile.NewPoller(f.poll, f.refresh).Run(ctx)
}

func (f *OrderFeed) refresh(ctx context.Context) {
	orders, err := f.fetch(ctx)
	if err != nil || ctx.Err() != nil {
		return
	}
	f.board.Reconcile(orders)
}

// subscribe keeps a websocket open, redialing on failure. A pushed order is
// merged by id, so a duplicate of something the poll already delivered is a
// no-op.
func (f *OrderFeed) subscribe(ctx context.Context) {
	for ctx.Err() == nil {
		header := http.Header{}
		if f.Token != "" {
			header.Set("Authorization", "Bearer "+f.Token)
		}
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.URL, header)
		if err != nil {
			log.Warn().Err(err).Str("url", f.URL).Msg("order feed dial failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}

		f.readLoop(ctx, conn)
		_ = conn.Close()
	}
}

func (f *OrderFeed) readLoop(ctx context.Context, conn *websocket.Conn) {
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var order domain.Order
		if err := json.Unmarshal(data, &order); err != nil || order.Ref() == "" {
			continue
		}
		if ctx.Err() != nil {
			return
		}
		f.board.Reconcile([]domain.Order{order})
	}
}
