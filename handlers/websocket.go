package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"notes-service/models"
)

var (
	// WebSocket upgrader
	wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true // Consenti tutte le origini in sviluppo
		},
	}
)

// Tempo massimo per scrivere un messaggio a un client
const defaultWriteWait = 10 * time.Second

// wsClient serializza le scritture su una connessione
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (cl *wsClient) send(msg models.WSMessage, writeWait time.Duration) error {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if err := cl.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return cl.conn.WriteJSON(msg)
}

// Hub tiene le connessioni WebSocket raggruppate per proprietario.
// Ogni client riceve solo gli eventi delle proprie note.
type Hub struct {
	mu        sync.Mutex
	clients   map[string]map[*websocket.Conn]*wsClient
	writeWait time.Duration
}

func NewHub() *Hub {
	return &Hub{
		clients:   make(map[string]map[*websocket.Conn]*wsClient),
		writeWait: defaultWriteWait,
	}
}

// Broadcast invia un messaggio a tutti i client connessi di owner.
// Il lock dell'hub non è tenuto durante le scritture; un client che non
// legge viene chiuso allo scadere di writeWait.
func (h *Hub) Broadcast(owner, messageType string, payload interface{}) {
	h.mu.Lock()
	targets := make([]*wsClient, 0, len(h.clients[owner]))
	for _, client := range h.clients[owner] {
		targets = append(targets, client)
	}
	h.mu.Unlock()

	if len(targets) == 0 {
		return
	}

	wsMessage := models.WSMessage{
		Type:    messageType,
		Payload: payload,
	}

	for _, client := range targets {
		if err := client.send(wsMessage, h.writeWait); err != nil {
			log.Warn().Err(err).Str("user", owner).Msg("Client WebSocket non raggiungibile, connessione chiusa")
			h.unregister(owner, client.conn)
		}
	}
}

// Count restituisce il numero di connessioni aperte per owner
func (h *Hub) Count(owner string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.clients[owner])
}

// HandleWebSocket gestisce le connessioni WebSocket dell'utente autenticato
func (h *Hub) HandleWebSocket(c *gin.Context) {
	owner := CurrentUser(c)

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Str("user", owner).Msg("Upgrade WebSocket fallito")
		return
	}

	h.register(owner, conn)
	defer h.unregister(owner, conn)

	// Loop di lettura messaggi, serve solo a rilevare la chiusura
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *Hub) register(owner string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[owner] == nil {
		h.clients[owner] = make(map[*websocket.Conn]*wsClient)
	}
	h.clients[owner][conn] = &wsClient{conn: conn}
}

func (h *Hub) unregister(owner string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.clients[owner]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.clients, owner)
		}
	}
	conn.Close()
}
