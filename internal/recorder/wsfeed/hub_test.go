// internal/recorder/wsfeed/hub_test.go
package wsfeed

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestBroadcastReachesEveryClient(t *testing.T) {
	requires := require.New(t)
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	a, b := dial(t, srv), dial(t, srv)
	defer a.Close()
	defer b.Close()

	requires.Eventually(func() bool { return hub.Clients() == 2 }, time.Second, 5*time.Millisecond)

	requires.NoError(hub.Broadcast(map[string]any{"values": map[string]float64{"battery.voltage": 12.5}}))

	for _, c := range []*websocket.Conn{a, b} {
		_ = c.SetReadDeadline(time.Now().Add(time.Second))
		mt, msg, err := c.ReadMessage()
		requires.NoError(err)
		requires.Equal(websocket.TextMessage, mt)
		requires.JSONEq(`{"values":{"battery.voltage":12.5}}`, string(msg))
	}
}

func TestDisconnectedClientIsDropped(t *testing.T) {
	requires := require.New(t)
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	c := dial(t, srv)
	requires.Eventually(func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	requires.NoError(c.Close())
	requires.Eventually(func() bool { return hub.Clients() == 0 }, time.Second, 5*time.Millisecond)
}

func TestCloseIsIdempotent(t *testing.T) {
	hub := NewHub()
	require.NoError(t, hub.Close())
	require.NoError(t, hub.Close())
	require.Equal(t, 0, hub.Clients())
}

func TestListen(t *testing.T) {
	requires := require.New(t)
	hub, err := Listen(Config{Addr: "127.0.0.1:0"})
	requires.NoError(err)
	defer hub.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+hub.Addr()+"/", nil)
	requires.NoError(err)
	defer conn.Close()

	requires.Eventually(func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)
}
