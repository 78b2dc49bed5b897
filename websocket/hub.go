package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/TheGringo-ai/LineSmart-sub000/repository"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Hub fans store change events out to connected clients. Clients only
// receive events for their own company; the hub holds one store
// subscription per company with at least one client connected.
type Hub struct {
	store      repository.Store
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client

	mu            sync.RWMutex
	subscriptions map[string]func()
	companyCount  map[string]int
}

type Client struct {
	Hub       *Hub
	Conn      *websocket.Conn
	Send      chan []byte
	UserID    string
	CompanyID string
	ClientID  string
}

// Message is the envelope pushed to clients
type Message struct {
	Type  string                 `json:"type"`
	Event repository.ChangeEvent `json:"event"`
}

func NewHub(store repository.Store) *Hub {
	return &Hub{
		store:         store,
		clients:       make(map[*Client]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		subscriptions: make(map[string]func()),
		companyCount:  make(map[string]int),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.companyCount[client.CompanyID]++
			if h.companyCount[client.CompanyID] == 1 {
				h.subscriptions[client.CompanyID] = h.subscribe(client.CompanyID)
			}
			h.mu.Unlock()
			slog.Info("Client registered", "user_id", client.UserID, "company_id", client.CompanyID, "client_id", client.ClientID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.companyCount[client.CompanyID]--
				if h.companyCount[client.CompanyID] == 0 {
					h.subscriptions[client.CompanyID]()
					delete(h.subscriptions, client.CompanyID)
					delete(h.companyCount, client.CompanyID)
				}
			}
			h.mu.Unlock()
			slog.Info("Client unregistered", "user_id", client.UserID, "company_id", client.CompanyID, "client_id", client.ClientID)
		}
	}
}

// subscribe wires one company's store changes into the connected clients
func (h *Hub) subscribe(companyID string) func() {
	return h.store.Subscribe(companyID, func(event repository.ChangeEvent) {
		message := Message{Type: "change", Event: event}
		data, err := json.Marshal(message)
		if err != nil {
			slog.Error("Failed to marshal change event", "error", err)
			return
		}
		h.BroadcastToCompany(companyID, data)
	})
}

// BroadcastToCompany delivers a payload to every client of one company.
// Clients with a full send buffer are dropped.
func (h *Hub) BroadcastToCompany(companyID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if client.CompanyID != companyID {
			continue
		}
		select {
		case client.Send <- data:
		default:
			slog.Warn("Dropping slow websocket client", "client_id", client.ClientID)
		}
	}
}

func (h *Hub) RegisterClient(conn *websocket.Conn, userID, companyID string) *Client {
	client := &Client{
		Hub:       h,
		Conn:      conn,
		Send:      make(chan []byte, 256),
		UserID:    userID,
		CompanyID: companyID,
		ClientID:  uuid.New().String(),
	}

	h.register <- client
	return client
}

func (c *Client) ReadPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(1024)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Clients only listen; inbound frames just keep the connection alive
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			break
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
