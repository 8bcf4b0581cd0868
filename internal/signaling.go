package internal

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const signalWriteDeadline = 5 * time.Second

// SignalEvent is the wire shape pushed to party room subscribers.
type SignalEvent struct {
	Event   string `json:"event"`
	RoomID  string `json:"roomId"`
	Payload any    `json:"payload"`
}

// roomConn serializes writes to one websocket connection. gorilla/websocket
// allows at most one concurrent writer per connection, and NotifyRoom runs
// on whatever goroutine triggered the join.
type roomConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *roomConn) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(signalWriteDeadline))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// SignalingHub fans events out to the websocket connections subscribed to
// each party room. Delivery is best-effort: slow or broken connections are
// dropped from the room, never retried.
type SignalingHub struct {
	mu    sync.RWMutex
	rooms map[string]map[*websocket.Conn]*roomConn
}

var _ Signaler = (*SignalingHub)(nil)

func NewSignalingHub() *SignalingHub {
	return &SignalingHub{rooms: make(map[string]map[*websocket.Conn]*roomConn)}
}

func (h *SignalingHub) Subscribe(roomID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*websocket.Conn]*roomConn)
	}
	h.rooms[roomID][conn] = &roomConn{conn: conn}
}

func (h *SignalingHub) Unsubscribe(roomID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms[roomID], conn)
	if len(h.rooms[roomID]) == 0 {
		delete(h.rooms, roomID)
	}
}

// RoomSize reports the number of live subscribers in a room.
func (h *SignalingHub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// NotifyRoom broadcasts an event to every subscriber of roomID. Safe for
// concurrent callers: each connection has its own write lock.
func (h *SignalingHub) NotifyRoom(roomID, event string, payload any) {
	data, err := json.Marshal(SignalEvent{Event: event, RoomID: roomID, Payload: payload})
	if err != nil {
		log.Warn().Err(err).Str("room", roomID).Msg("marshal signal event")
		return
	}

	h.mu.RLock()
	conns := make([]*roomConn, 0, len(h.rooms[roomID]))
	for _, rc := range h.rooms[roomID] {
		conns = append(conns, rc)
	}
	h.mu.RUnlock()

	for _, rc := range conns {
		if err := rc.write(data); err != nil {
			log.Warn().Err(err).Str("room", roomID).Msg("drop dead signaling connection")
			h.Unsubscribe(roomID, rc.conn)
			_ = rc.conn.Close()
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// cookie auth already ran; the dashboard is served from this origin
	CheckOrigin: func(_ *http.Request) bool { return true },
}

// PartyRoomWS upgrades GET /ws/parties/:id into a room subscription that
// lives until the client disconnects.
func PartyRoomWS(hub *SignalingHub) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID := c.Param("id")
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		hub.Subscribe(roomID, conn)
		defer func() {
			hub.Unsubscribe(roomID, conn)
			_ = conn.Close()
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
