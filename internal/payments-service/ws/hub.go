package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radieske/ovo-banking-gateway/pkg/contracts/events"
)

const writeWait = 5 * time.Second

// ClientMsg mensagem recebida do cliente; só "ping" é tratado
type ClientMsg struct {
	Type string `json:"type"`
}

// ServerMsg envelope enviado ao cliente
type ServerMsg struct {
	Type string               `json:"type"` // wallet_update | pong
	Data *events.WalletUpdate `json:"data,omitempty"`
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex // gorilla aceita um único escritor por conexão
}

func (c *client) write(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// Hub mantém as conexões WebSocket por usuário e entrega atualizações de carteira
type Hub struct {
	upgrader websocket.Upgrader
	log      *zap.Logger
	mu       sync.RWMutex
	// userID -> conexões abertas
	subs map[string]map[*client]struct{}
}

func NewHub(log *zap.Logger, allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		log:      log,
		subs:     make(map[string]map[*client]struct{}),
	}
}

// Serve faz o upgrade e mantém a conexão do usuário já autenticado
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn}
	h.add(userID, c)
	defer func() {
		h.remove(userID, c)
		conn.Close()
	}()

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Type == "ping" {
			if err := c.write(ServerMsg{Type: "pong"}); err != nil {
				return
			}
		}
	}
}

func (h *Hub) add(userID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[userID]; !ok {
		h.subs[userID] = make(map[*client]struct{})
	}
	h.subs[userID][c] = struct{}{}
}

func (h *Hub) remove(userID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[userID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, userID)
		}
	}
}

// Connections devolve o número de conexões abertas do usuário
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

// Send entrega a atualização a todas as conexões do usuário
func (h *Hub) Send(update events.WalletUpdate) int {
	h.mu.RLock()
	conns := make([]*client, 0, len(h.subs[update.UserID]))
	for c := range h.subs[update.UserID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range conns {
		if err := c.write(ServerMsg{Type: "wallet_update", Data: &update}); err != nil {
			h.log.Debug("ws write failed", zap.String("user_id", update.UserID), zap.Error(err))
			continue
		}
		sent++
	}
	return sent
}

// Dispatch decodifica um payload do Pub/Sub e repassa ao usuário
func (h *Hub) Dispatch(payload []byte) error {
	var upd events.WalletUpdate
	if err := json.Unmarshal(payload, &upd); err != nil {
		return err
	}
	h.Send(upd)
	return nil
}
