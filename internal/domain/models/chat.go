package models

import "time"

// ChatMessage is one line in a support session. SessionKey groups a guest (or
// logged-in user) with the admin operators answering them.
type ChatMessage struct {
	ID         int64     `json:"id"`
	SessionKey string    `json:"sessionKey"`
	SenderRole string    `json:"senderRole"` // guest / user / admin
	SenderName string    `json:"senderName,omitempty"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ChatSession summarizes a session for the operator console.
type ChatSession struct {
	SessionKey   string    `json:"sessionKey"`
	LastBody     string    `json:"lastBody"`
	LastSender   string    `json:"lastSender"`
	MessageCount int       `json:"messageCount"`
	LastAt       time.Time `json:"lastAt"`
}
