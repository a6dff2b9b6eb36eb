package game

import (
	"errors"
	"fmt"
	"github.com/google/uuid"
	"time"
	"unicode/utf8"
)

const (
	DefaultBoardSize = 50
	MaxMessageLength = 500
)

var (
	ErrEmptyMessage   = errors.New("message content cannot be empty")
	ErrMessageTooLong = fmt.Errorf("message content cannot exceed %d characters", MaxMessageLength)
)

type Message struct {
	ID         uuid.UUID `json:"id"`
	AuthorID   uuid.UUID `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	AirportID  string    `json:"airport_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// MessageBoard keeps the most recent messages of a room, oldest first.
type MessageBoard struct {
	Messages    []Message `json:"messages"`
	MaxMessages int       `json:"max_messages"`
}

func NewMessageBoard(maxMessages int) *MessageBoard {
	if maxMessages <= 0 {
		maxMessages = DefaultBoardSize
	}
	return &MessageBoard{Messages: []Message{}, MaxMessages: maxMessages}
}

func ValidateMessage(content string) error {
	if content == "" {
		return ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return ErrMessageTooLong
	}
	return nil
}

// Post appends a message and evicts the oldest ones past MaxMessages.
func (b *MessageBoard) Post(authorID uuid.UUID, authorName string, content string, airportID string, at time.Time) (Message, error) {
	if err := ValidateMessage(content); err != nil {
		return Message{}, err
	}

	msg := Message{
		ID:         uuid.New(),
		AuthorID:   authorID,
		AuthorName: authorName,
		Content:    content,
		AirportID:  airportID,
		CreatedAt:  at,
	}
	b.Messages = append(b.Messages, msg)

	if over := len(b.Messages) - b.MaxMessages; over > 0 {
		b.Messages = append([]Message(nil), b.Messages[over:]...)
	}
	return msg, nil
}

// At returns the messages posted at airportID, newest first. A limit <= 0
// means no limit.
func (b *MessageBoard) At(airportID string, limit int) []Message {
	out := []Message{}
	for i := len(b.Messages) - 1; i >= 0; i-- {
		if b.Messages[i].AirportID != airportID {
			continue
		}
		out = append(out, b.Messages[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Count counts messages at airportID, or all messages when airportID is empty.
func (b *MessageBoard) Count(airportID string) int {
	if airportID == "" {
		return len(b.Messages)
	}
	n := 0
	for _, m := range b.Messages {
		if m.AirportID == airportID {
			n++
		}
	}
	return n
}
