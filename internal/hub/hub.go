package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// WebSocket timing constants shared by hub and client.
const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Clients only listen; inbound
	// frames beyond control messages are unexpected.
	maxMessageSize = 512
)

// Event types broadcast to classroom subscribers.
const (
	EventMemberJoined     = "member_joined"
	EventMemberLeft       = "member_left"
	EventMemberRemoved    = "member_removed"
	EventClassroomUpdated = "classroom_updated"
	EventClassroomDeleted = "classroom_deleted"
)

// Event is what subscribers receive when a classroom changes.
type Event struct {
	Type    string      `json:"type"`
	Code    string      `json:"code"`
	Payload interface{} `json:"payload,omitempty"`
}

// HubMessage is the internal message passed through the hub's channel.
type HubMessage struct {
	Type   string // "register", "unregister", "broadcast"
	Code   string // classroom join code
	Client *Client
	Data   []byte // serialized Event, for broadcast
}

// Hub tracks connected clients per classroom and fans events out to them.
// All bookkeeping runs on the single goroutine consuming messageChan.
type Hub struct {
	messageChan chan HubMessage
	quit        chan struct{}

	// map[joinCode]map[*Client]bool
	classrooms map[string]map[*Client]bool
	mu         sync.RWMutex

	closeOnce sync.Once
}

func NewHub() *Hub {
	return &Hub{
		messageChan: make(chan HubMessage, 512),
		quit:        make(chan struct{}),
		classrooms:  make(map[string]map[*Client]bool),
	}
}

// Run is the hub's main loop. It should run in its own goroutine and exits
// when Stop is called. messageChan itself is never closed, so pump
// goroutines may always send without racing shutdown.
func (h *Hub) Run() {
	log := logrus.WithField("component", "hub")
	log.Info("Hub is running...")

	for {
		select {
		case <-h.quit:
			log.Info("Hub is shutting down...")
			return
		case msg := <-h.messageChan:
			switch msg.Type {
			case "register":
				h.registerClient(msg.Client)
			case "unregister":
				h.unregisterClient(msg.Client)
			case "broadcast":
				h.broadcast(msg.Code, msg.Data)
			default:
				log.Warnf("Hub: received unknown message type: %s", msg.Type)
			}
		}
	}
}

// Broadcast serializes the event and queues it for every client subscribed
// to the event's classroom. Drops the event if the hub is overloaded.
func (h *Hub) Broadcast(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logrus.WithError(err).WithField("event_type", event.Type).Error("Hub: failed to marshal event")
		return
	}
	msg := HubMessage{Type: "broadcast", Code: event.Code, Data: data}
	if !h.QueueMessage(msg) {
		logrus.WithField("event_type", event.Type).Warn("Hub message channel full, dropping event")
	}
}

// QueueMessage offers a message to the hub without blocking. Returns false
// when the channel is full.
func (h *Hub) QueueMessage(msg HubMessage) bool {
	select {
	case h.messageChan <- msg:
		return true
	default:
		return false
	}
}

// Stop closes every client connection and ends the Run loop.
func (h *Hub) Stop() {
	h.closeOnce.Do(func() {
		close(h.quit)
		h.mu.Lock()
		for code, clients := range h.classrooms {
			for client := range clients {
				close(client.send)
			}
			delete(h.classrooms, code)
		}
		h.mu.Unlock()
	})
}

func (h *Hub) registerClient(client *Client) {
	if client == nil {
		logrus.Error("Hub: attempted to register a nil client")
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{"code": client.Code(), "user_id": client.UserID()})

	h.mu.Lock()
	clients, ok := h.classrooms[client.Code()]
	if !ok {
		clients = make(map[*Client]bool)
		h.classrooms[client.Code()] = clients
	}
	clients[client] = true
	count := len(clients)
	h.mu.Unlock()

	logCtx.Infof("Hub: client registered (%d subscribed to classroom)", count)
}

func (h *Hub) unregisterClient(client *Client) {
	if client == nil {
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{"code": client.Code(), "user_id": client.UserID()})

	h.mu.Lock()
	if clients, ok := h.classrooms[client.Code()]; ok {
		if _, subscribed := clients[client]; subscribed {
			delete(clients, client)
			close(client.send)
		}
		if len(clients) == 0 {
			delete(h.classrooms, client.Code())
		}
	}
	h.mu.Unlock()

	logCtx.Info("Hub: client unregistered")
}

func (h *Hub) broadcast(code string, data []byte) {
	h.mu.RLock()
	clients := h.classrooms[code]
	for client := range clients {
		select {
		case client.send <- data:
		default:
			// Slow consumer; skip rather than stall the hub.
			logrus.WithFields(logrus.Fields{"code": code, "user_id": client.UserID()}).
				Warn("Hub: client send buffer full, dropping event for client")
		}
	}
	h.mu.RUnlock()
}
