package room

import "time"

const (
	MessageTypeText   = "text"
	MessageTypeEmoji  = "emoji"
	MessageTypeImage  = "image"
	MessageTypeSystem = "system"
)

// DefaultMessagesLimit is used by GetMessages when no positive limit is given.
const DefaultMessagesLimit = 50

type Message struct {
	ID        int64     `json:"id"`
	RoomCode  string    `json:"roomCode"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateMessageParams struct {
	RoomCode string
	UserID   string
	Username string
	Content  string
	Type     string
}
