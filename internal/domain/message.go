package domain

import (
	"time"

	"github.com/google/uuid"
)

// MessageStatus is the workflow state of a contact message. Any status
// may replace any other; the set itself is closed.
type MessageStatus string

const (
	MessageStatusNew     MessageStatus = "new"
	MessageStatusRead    MessageStatus = "read"
	MessageStatusReplied MessageStatus = "replied"
	MessageStatusClosed  MessageStatus = "closed"
)

// Valid reports whether s is a member of the status enum.
func (s MessageStatus) Valid() bool {
	switch s {
	case MessageStatusNew, MessageStatusRead, MessageStatusReplied, MessageStatusClosed:
		return true
	}
	return false
}

// Message represents a contact form submission.
type Message struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	FirstName string        `json:"first_name" db:"first_name"`
	LastName  string        `json:"last_name" db:"last_name"`
	Email     string        `json:"email" db:"email"`
	Phone     string        `json:"phone" db:"phone"`
	Company   string        `json:"company" db:"company"`
	Service   string        `json:"service" db:"service"`
	Message   string        `json:"message" db:"message"`
	Status    MessageStatus `json:"status" db:"status"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}
