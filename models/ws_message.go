package models

// Tipi di evento inviati sui websocket
const (
	WSNoteCreated = "note_created"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
