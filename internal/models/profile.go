package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Profile struct {
	ID        uuid.UUID
	Email     string
	FullName  sql.NullString
	CreatedAt time.Time
}

type Message struct {
	ID        uuid.UUID
	ThreadID  uuid.UUID
	SenderID  uuid.UUID
	Body      string
	Read      bool
	SentAt    time.Time
}

// MessageThread is the conversation list row: the counterpart's display
// name plus the latest message in the thread.
type MessageThread struct {
	ThreadID        uuid.UUID
	CounterpartName string
	LastMessage     string
	LastSentAt      time.Time
	Unread          bool
}

type LearningResource struct {
	ID          uuid.UUID
	Category    string
	Title       string
	Description sql.NullString
	CreatedAt   time.Time
}
