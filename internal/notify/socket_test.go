package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AweemRizwan/smm-optimize-sub001/pkg/models"
)

type fakeInvalidator struct {
	mu  sync.Mutex
	ids []int64
}

func (f *fakeInvalidator) InvalidateClient(_ context.Context, clientID int64) error {
	f.mu.Lock()
	f.ids = append(f.ids, clientID)
	f.mu.Unlock()
	return nil
}

func (f *fakeInvalidator) invalidated() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.ids...)
}

// wsServer upgrades one connection and pushes the given events.
func wsServer(t *testing.T, events []models.Notification, gotAuth *string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotAuth != nil {
			*gotAuth = r.Header.Get("Authorization")
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		for _, ev := range events {
			require.NoError(t, conn.WriteJSON(ev))
		}
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestNotifier_dispatchesAndInvalidates(t *testing.T) {
	t.Parallel()
	clientID := int64(12)
	events := []models.Notification{
		{Type: models.NotificationTaskUpdated, ClientID: &clientID, Message: "strategy approved"},
		{Type: models.NotificationMeetingUpdate, Message: "no client attached"},
	}
	var gotAuth string
	srv := wsServer(t, events, &gotAuth)
	defer srv.Close()

	inv := &fakeInvalidator{}
	n := New(wsURL(srv), func() string { return "tok-1" }, inv, zerolog.Nop())
	sub := n.Hub().Subscribe()
	defer n.Hub().Unsubscribe(sub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = n.Run(ctx) }()

	var received []models.Notification
	timeout := time.After(5 * time.Second)
	for len(received) < 2 {
		select {
		case ev := <-sub:
			received = append(received, ev)
		case <-timeout:
			t.Fatalf("timed out, received %d events", len(received))
		}
	}

	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, models.NotificationTaskUpdated, received[0].Type)
	assert.Equal(t, models.NotificationMeetingUpdate, received[1].Type)
	// Only the event carrying a client_id invalidates the cache.
	assert.Equal(t, []int64{12}, inv.invalidated())
}

func TestNotifier_reconnects(t *testing.T) {
	t.Parallel()
	var mu sync.Mutex
	conns := 0
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		conns++
		n := conns
		mu.Unlock()
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		if n == 1 {
			// Drop the first connection immediately to force a reconnect.
			_ = conn.Close()
			return
		}
		defer conn.Close()
		_ = conn.WriteJSON(models.Notification{Type: models.NotificationTaskAssigned})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	n := New(wsURL(srv), func() string { return "" }, nil, zerolog.Nop())
	sub := n.Hub().Subscribe()
	defer n.Hub().Unsubscribe(sub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = n.Run(ctx) }()

	select {
	case ev := <-sub:
		assert.Equal(t, models.NotificationTaskAssigned, ev.Type)
	case <-time.After(10 * time.Second):
		t.Fatal("never received event after reconnect")
	}
	mu.Lock()
	assert.GreaterOrEqual(t, conns, 2)
	mu.Unlock()
}

func TestNotifier_runStopsOnCancel(t *testing.T) {
	t.Parallel()
	srv := wsServer(t, nil, nil)
	defer srv.Close()

	n := New(wsURL(srv), func() string { return "" }, nil, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- n.Run(ctx) }()

	time.Sleep(200 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestHub_dropsSlowSubscribers(t *testing.T) {
	t.Parallel()
	h := NewHub()
	ch := h.Subscribe()
	defer h.Unsubscribe(ch)

	// Publishing past the buffer must not block.
	for i := 0; i < models.DefaultEventChanBuffer+10; i++ {
		h.Publish(models.Notification{Type: models.NotificationTaskUpdated})
	}
	assert.Len(t, ch, models.DefaultEventChanBuffer)
}
