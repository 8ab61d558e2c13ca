package dto

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationTypeChatSaved    = "CHAT_SAVED"
	NotificationTypeChatDeleted  = "CHAT_DELETED"
	NotificationTypeSheetUpdated = "SHEET_UPDATED"
)

// NotificationMessage travels over the in-process bus from the services to
// the websocket hub, and is what connected clients receive verbatim.
type NotificationMessage struct {
	UserId    uuid.UUID              `json:"user_id"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}
