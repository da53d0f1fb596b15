package model

import "time"

// Conversation is a message thread between a guest and a host.
type Conversation struct {
	ID            string    `json:"id"`
	GuestID       string    `json:"guest_id"`
	HostID        string    `json:"host_id"`
	ExperienceID  string    `json:"experience_id,omitempty"`
	BookingID     string    `json:"booking_id,omitempty"`
	LastMessageAt time.Time `json:"last_message_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// OtherParticipant returns the id of the participant that is not userID.
func (c *Conversation) OtherParticipant(userID string) string {
	if c.GuestID == userID {
		return c.HostID
	}
	return c.GuestID
}

// IsParticipant reports whether userID belongs to the conversation.
func (c *Conversation) IsParticipant(userID string) bool {
	return userID != "" && (c.GuestID == userID || c.HostID == userID)
}

// ConversationSummary is a conversation with its latest message and unread count for one user.
type ConversationSummary struct {
	Conversation
	LastMessage string `json:"last_message"`
	UnreadCount int    `json:"unread_count"`
}

// Message is a single entry in a conversation.
type Message struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversation_id"`
	SenderID       string     `json:"sender_id"`
	Body           string     `json:"body"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
