package internal

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialRoom(t *testing.T, srv *httptest.Server, roomID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/parties/" + roomID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func waitForRoomSize(t *testing.T, hub *SignalingHub, roomID string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.RoomSize(roomID) == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("room %s never reached %d subscribers", roomID, want)
}

func TestSignalingHubNotifyRoom(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewSignalingHub()

	r := gin.New()
	r.GET("/ws/parties/:id", PartyRoomWS(hub))
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn := dialRoom(t, srv, "room1")
	defer conn.Close()
	other := dialRoom(t, srv, "room2")
	defer other.Close()

	waitForRoomSize(t, hub, "room1", 1)
	waitForRoomSize(t, hub, "room2", 1)

	hub.NotifyRoom("room1", "player_joined", map[string]any{"playerId": "p2"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev SignalEvent
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.Equal(t, "player_joined", ev.Event)
	assert.Equal(t, "room1", ev.RoomID)

	// the other room saw nothing
	require.NoError(t, other.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = other.ReadMessage()
	assert.Error(t, err)
}

// Two players joining the same party concurrently means overlapping
// NotifyRoom calls on one room; each subscriber connection must see every
// event without tripping gorilla's single-writer rule.
func TestSignalingHubConcurrentNotify(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewSignalingHub()

	r := gin.New()
	r.GET("/ws/parties/:id", PartyRoomWS(hub))
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn := dialRoom(t, srv, "room1")
	defer conn.Close()
	waitForRoomSize(t, hub, "room1", 1)

	const notifiers = 32
	var wg sync.WaitGroup
	for i := 0; i < notifiers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			hub.NotifyRoom("room1", "player_joined", map[string]any{"playerId": i})
		}(i)
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for i := 0; i < notifiers; i++ {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var ev SignalEvent
		require.NoError(t, json.Unmarshal(data, &ev))
		assert.Equal(t, "player_joined", ev.Event)
	}
	wg.Wait()

	// the connection survived every broadcast
	assert.Equal(t, 1, hub.RoomSize("room1"))
}

func TestSignalingHubUnsubscribeOnDisconnect(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewSignalingHub()

	r := gin.New()
	r.GET("/ws/parties/:id", PartyRoomWS(hub))
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn := dialRoom(t, srv, "room1")
	waitForRoomSize(t, hub, "room1", 1)

	require.NoError(t, conn.Close())
	waitForRoomSize(t, hub, "room1", 0)

	// notifying an empty room is a no-op, not a panic
	hub.NotifyRoom("room1", "player_joined", nil)
}
