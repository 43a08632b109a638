package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// dialHub connects a test websocket client and waits for the hub to see it
func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(hub.Handler))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	return conn
}

func TestHubBroadcastsToConnectedClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	conn := dialHub(t, hub)

	hub.QueueUpdated()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"queueUpdated"}`, string(msg))
}

func TestHubProgressEvent(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	conn := dialHub(t, hub)

	hub.Progress("item-1", 42.5)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var update ProgressUpdate
	require.NoError(t, json.Unmarshal(msg, &update))
	require.Equal(t, "progress", update.Type)
	require.Equal(t, "item-1", update.ItemID)
	require.Equal(t, 42.5, update.Progress)
}

func TestHubBroadcastWithoutClients(t *testing.T) {
	hub := NewHub()

	// No Run loop, no clients: sends must not block
	for i := 0; i < 100; i++ {
		hub.QueueUpdated()
		hub.Progress("item-1", 1)
	}
	require.Zero(t, hub.ClientCount())
}
