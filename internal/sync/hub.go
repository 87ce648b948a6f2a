package sync

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"vertice/pkg/logger"
	"vertice/pkg/models"
)

const writeTimeout = 2 * time.Second

// Hub fans interaction events out to TCP tail clients and websocket
// subscribers. Every subscriber has a namespace; "" receives everything.
type Hub struct {
	mu        sync.Mutex
	clients   map[net.Conn]string
	wsClients map[*websocket.Conn]string
	log       *zap.Logger
}

type Stats struct {
	TCPClients int `json:"tcp_clients"`
	WSClients  int `json:"ws_clients"`
}

func NewHub(log *zap.Logger) *Hub {
	log = logger.OrNop(log)
	return &Hub{
		clients:   make(map[net.Conn]string),
		wsClients: make(map[*websocket.Conn]string),
		log:       log,
	}
}

func (h *Hub) Add(conn net.Conn, namespace string) {
	h.mu.Lock()
	h.clients[conn] = namespace
	h.mu.Unlock()
}

func (h *Hub) Remove(conn net.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

func (h *Hub) RemoveWS(ws *websocket.Conn) {
	h.mu.Lock()
	delete(h.wsClients, ws)
	h.mu.Unlock()
	_ = ws.Close()
}

// Publish satisfies session.Notifier.
func (h *Hub) Publish(ev models.Interaction) {
	h.BroadcastJSON(ev.ClientID, ev)
}

// BroadcastJSON writes v as one JSON line to subscribers of namespace and
// to unscoped subscribers. Connections that fail to take the write are
// dropped.
func (h *Hub) BroadcastJSON(namespace string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		h.log.Warn("encode event failed", zap.Error(err))
		return
	}
	b = append(b, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	for c, ns := range h.clients {
		if !matches(ns, namespace) {
			continue
		}
		_ = c.SetWriteDeadline(time.Now().Add(writeTimeout))
		w := bufio.NewWriter(c)
		if _, err := w.Write(b); err != nil {
			_ = c.Close()
			delete(h.clients, c)
			continue
		}
		if err := w.Flush(); err != nil {
			_ = c.Close()
			delete(h.clients, c)
		}
	}

	for ws, ns := range h.wsClients {
		if !matches(ns, namespace) {
			continue
		}
		_ = ws.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
			_ = ws.Close()
			delete(h.wsClients, ws)
		}
	}
}

func matches(subscriber, namespace string) bool {
	return subscriber == "" || subscriber == namespace
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{
		TCPClients: len(h.clients),
		WSClients:  len(h.wsClients),
	}
}

func (h *Hub) Welcome(conn net.Conn, namespace string) {
	msg := fmt.Sprintf("{\"type\":\"welcome\",\"namespace\":%q,\"clients\":%d}\n", namespace, h.Stats().TCPClients)
	_, _ = conn.Write([]byte(msg))
}

// Close drops every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		_ = c.Close()
		delete(h.clients, c)
	}
	for ws := range h.wsClients {
		_ = ws.Close()
		delete(h.wsClients, ws)
	}
}
