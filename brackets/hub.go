package brackets

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Update is one frame pushed to bracket viewers after a sync run or a result
// commit.
type Update struct {
	Type         string       `json:"type"` // "BRACKET_UPDATED"
	TournamentID int          `json:"tournament_id"`
	Groups       []RoundGroup `json:"groups"`
}

// Viewer is one websocket connection watching a tournament's bracket.
type Viewer struct {
	hub          *Hub
	conn         *websocket.Conn
	send         chan []byte
	tournamentID int

	mu     sync.Mutex
	closed bool
}

func NewViewer(hub *Hub, conn *websocket.Conn, tournamentID int) *Viewer {
	return &Viewer{
		hub:          hub,
		conn:         conn,
		send:         make(chan []byte, 8),
		tournamentID: tournamentID,
	}
}

// Hub fans bracket updates out to viewer connections grouped by tournament.
type Hub struct {
	register   chan *Viewer
	unregister chan *Viewer

	mu     sync.RWMutex
	rooms  map[int]map[*Viewer]bool
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		register:   make(chan *Viewer),
		unregister: make(chan *Viewer),
		rooms:      make(map[int]map[*Viewer]bool),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case v := <-h.register:
			h.mu.Lock()
			if _, ok := h.rooms[v.tournamentID]; !ok {
				h.rooms[v.tournamentID] = make(map[*Viewer]bool)
			}
			h.rooms[v.tournamentID][v] = true
			h.mu.Unlock()
			h.logger.Info("bracket viewer connected", slog.Int("tournament_id", v.tournamentID))

		case v := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[v.tournamentID]; ok {
				if room[v] {
					v.close()
					delete(room, v)
					if len(room) == 0 {
						delete(h.rooms, v.tournamentID)
					}
				}
			}
			h.mu.Unlock()
			h.logger.Info("bracket viewer disconnected", slog.Int("tournament_id", v.tournamentID))
		}
	}
}

// Publish sends the update to every viewer of the tournament. Slow viewers
// are skipped rather than blocking the caller.
func (h *Hub) Publish(update Update) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room, ok := h.rooms[update.TournamentID]
	if !ok || len(room) == 0 {
		return
	}

	payload, err := json.Marshal(update)
	if err != nil {
		h.logger.Error("failed to marshal bracket update",
			slog.Int("tournament_id", update.TournamentID), slog.Any("error", err))
		return
	}

	for v := range room {
		v.mu.Lock()
		if !v.closed {
			select {
			case v.send <- payload:
			default:
				h.logger.Warn("viewer send buffer full, dropping frame",
					slog.String("room", strconv.Itoa(update.TournamentID)))
			}
		}
		v.mu.Unlock()
	}
}

func (v *Viewer) close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.closed {
		close(v.send)
		v.closed = true
	}
}

// ReadPump drains inbound frames (viewers are read-only) and tears the
// connection down on close.
func (v *Viewer) ReadPump() {
	defer func() {
		v.hub.unregister <- v
		v.conn.Close()
	}()
	v.conn.SetReadLimit(maxMessageSize)
	_ = v.conn.SetReadDeadline(time.Now().Add(pongWait))
	v.conn.SetPongHandler(func(string) error {
		return v.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (v *Viewer) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		v.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-v.send:
			_ = v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = v.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := v.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := v.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Attach registers the viewer and starts its pumps.
func (h *Hub) Attach(v *Viewer) {
	h.register <- v
	go v.WritePump()
	go v.ReadPump()
}
