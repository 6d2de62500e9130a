// Package notify maintains the notification socket: a websocket keyed by user
// id that delivers push events. Events carrying a client_id invalidate the
// local task cache for that client; everything else is fanned out to
// subscribers untouched.
package notify

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/AweemRizwan/smm-optimize-sub001/internal/telemetry"
	"github.com/AweemRizwan/smm-optimize-sub001/pkg/models"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second

	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Invalidator drops cached task data for a client named by a notification.
type Invalidator interface {
	InvalidateClient(ctx context.Context, clientID int64) error
}

// Notifier connects to the notification socket and keeps the connection
// alive, reconnecting with capped exponential backoff.
type Notifier struct {
	url     string // full ws:// or wss:// URL including the user id
	tokenFn func() string
	hub     *Hub
	inv     Invalidator
	dialer  *websocket.Dialer
	log     zerolog.Logger
}

// New builds a notifier for the given socket URL. tokenFn supplies the bearer
// token for the handshake; inv may be nil when no cache is in play.
func New(url string, tokenFn func() string, inv Invalidator, log zerolog.Logger) *Notifier {
	return &Notifier{
		url:     url,
		tokenFn: tokenFn,
		hub:     NewHub(),
		inv:     inv,
		dialer:  websocket.DefaultDialer,
		log:     log,
	}
}

// Hub returns the fan-out hub for subscribing to events.
func (n *Notifier) Hub() *Hub { return n.hub }

// Run connects and reads until ctx is done. Connection drops are retried with
// backoff; Run only returns on context cancellation.
func (n *Notifier) Run(ctx context.Context) error {
	backoff := initialBackoff
	for {
		if err := n.connectAndRead(ctx); err != nil {
			n.log.Warn().Err(err).Dur("retry_in", backoff).Msg("notification socket dropped")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		telemetry.RecordSocketReconnect(ctx)
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

func (n *Notifier) connectAndRead(ctx context.Context) error {
	header := http.Header{}
	if tok := n.tokenFn(); tok != "" {
		header.Set("Authorization", "Bearer "+tok)
	}
	conn, resp, err := n.dialer.DialContext(ctx, n.url, header)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}
		return err
	}
	defer func() { _ = conn.Close() }()
	n.log.Debug().Str("url", n.url).Msg("notification socket connected")

	// Unblock the read loop when the caller gives up.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go n.pingLoop(conn, done)

	for {
		var ev models.Notification
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		n.dispatch(ctx, ev)
	}
}

func (n *Notifier) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}

func (n *Notifier) dispatch(ctx context.Context, ev models.Notification) {
	telemetry.RecordNotification(ctx, ev.Type)
	if ev.ClientID != nil && n.inv != nil {
		if err := n.inv.InvalidateClient(ctx, *ev.ClientID); err != nil {
			n.log.Warn().Err(err).Int64("client_id", *ev.ClientID).Msg("cache invalidation failed")
		}
	}
	n.hub.Publish(ev)
}
