package network

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ecosim-lab/ecosim/internal/engine"
	"github.com/ecosim-lab/ecosim/internal/events"
	"github.com/ecosim-lab/ecosim/internal/platform/logger"
	"github.com/ecosim-lab/ecosim/internal/platform/metrics"
)

// Hub maintains the set of active viewer clients and broadcasts simulation
// frames to them. The hub is display-only: nothing received from a client
// ever mutates the simulation.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
	logger     *logger.Logger
}

// Frame is the wire envelope for everything the hub broadcasts.
type Frame struct {
	Type    string      `json:"type"` // "snapshot" or "event"
	Payload interface{} `json:"payload"`
}

// SnapshotFrame carries a world snapshot plus episode progress metadata.
type SnapshotFrame struct {
	RunID    string             `json:"run_id"`
	Episode  int                `json:"episode"`
	Step     int                `json:"step"`
	MaxSteps int                `json:"max_steps"`
	State    engine.RenderState `json:"state"`
}

// NewHub initializes a new WebSocket Hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     log,
	}
}

// Run starts the Hub's main loop to handle client connections and broadcasts.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket Hub shutting down.")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			metrics.Get().RecordWSConnection(1)
			h.logger.Info("New viewer client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				metrics.Get().RecordWSConnection(-1)
				h.logger.Info("Viewer client disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
					metrics.Get().RecordWSMessage()
				default:
					close(client.send)
					delete(h.clients, client)
					metrics.Get().RecordWSError()
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastSnapshot serializes a snapshot frame and sends it to every viewer.
// Failures are logged and swallowed; the simulation never waits on a viewer.
func (h *Hub) BroadcastSnapshot(frame SnapshotFrame) error {
	return h.send(Frame{Type: "snapshot", Payload: frame})
}

func (h *Hub) send(frame Frame) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error("Failed to serialize frame for WebSocket broadcast: " + err.Error())
		return err
	}
	select {
	case h.broadcast <- payload:
	default:
		// Drop the frame rather than block the driver.
		metrics.Get().RecordWSError()
	}
	return nil
}

// StartEventPoller spawns a goroutine that polls the event log and pushes new
// simulation events to the hub. The hub picks up events independently from
// the driver loop.
func (h *Hub) StartEventPoller(ctx context.Context, log *events.Log) {
	go func() {
		pollInterval := time.NewTicker(200 * time.Millisecond)
		defer pollInterval.Stop()

		offset := 0

		for {
			select {
			case <-ctx.Done():
				return
			case <-pollInterval.C:
				fresh := log.Since(offset)
				for _, evt := range fresh {
					_ = h.send(Frame{Type: "event", Payload: evt})
				}
				offset += len(fresh)
			}
		}
	}()
}
