package messaging

import (
	"strings"
	"time"

	"github.com/MavisVermie/TBR3-sub000/pkg/apperrors"
)

// DeliveryStatus tracks how far a message has travelled towards its
// receiver. Transitions are one-directional: sent -> delivered -> read.
type DeliveryStatus string

const (
	StatusSent      DeliveryStatus = "sent"
	StatusDelivered DeliveryStatus = "delivered"
	StatusRead      DeliveryStatus = "read"
)

// rank orders statuses so monotonicity checks stay trivial.
func (s DeliveryStatus) rank() int {
	switch s {
	case StatusSent:
		return 1
	case StatusDelivered:
		return 2
	case StatusRead:
		return 3
	}
	return 0
}

// CanAdvanceTo reports whether moving from s to next respects the
// one-directional lifecycle. Equal states are allowed (idempotent
// acknowledgements), regressions are not.
func (s DeliveryStatus) CanAdvanceTo(next DeliveryStatus) bool {
	return next.rank() >= s.rank() && next.rank() > 0
}

// Domain-level errors for messaging behaviors
var (
	ErrEmptyContent = apperrors.InvalidArg("message content must not be empty")
	ErrSelfMessage  = apperrors.InvalidArg("sender and receiver must be different users")
	ErrMissingUser  = apperrors.InvalidArg("sender_id and receiver_id are required")
)

// MaxContentLength bounds a single message body.
const MaxContentLength = 4000

var ErrContentTooLong = apperrors.InvalidArg("message content exceeds maximum length")

// Message is an immutable log entry between two users. Only the read
// flag and delivery status mutate after creation, and only forward.
type Message struct {
	ID         int64          `json:"id"`
	SenderID   string         `json:"sender_id"`
	ReceiverID string         `json:"receiver_id"`
	Content    string         `json:"content"`
	Status     DeliveryStatus `json:"status"`
	IsRead     bool           `json:"is_read"`
	CreatedAt  time.Time      `json:"timestamp"`
}

// NewMessage validates and shapes a message for persistence. The ID and
// CreatedAt are assigned by the store; callers must treat the returned
// value as not-yet-durable.
func NewMessage(senderID, receiverID, content string) (*Message, error) {
	if senderID == "" || receiverID == "" {
		return nil, ErrMissingUser
	}
	if senderID == receiverID {
		return nil, ErrSelfMessage
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, ErrEmptyContent
	}
	if len(trimmed) > MaxContentLength {
		return nil, ErrContentTooLong
	}

	return &Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    trimmed,
		Status:     StatusSent,
		IsRead:     false,
	}, nil
}
