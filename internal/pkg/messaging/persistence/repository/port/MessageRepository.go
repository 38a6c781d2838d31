package repository

import (
	"context"
	"time"

	messaging "github.com/MavisVermie/TBR3-sub000/internal/pkg/messaging/application/domain"
)

// MessageRepository defines persistence operations for the messaging
// domain. Delivery-state transitions are expressed as conditional
// updates so concurrent callers cannot regress a state or double-report
// a transition.
type MessageRepository interface {
	// SaveMessage inserts m and returns the stored record with its
	// server-assigned ID and timestamp.
	SaveMessage(ctx context.Context, m messaging.Message) (messaging.Message, error)

	// MarkDelivered transitions sent -> delivered for one message.
	// Returns false (no error) when the message is missing or already
	// past sent; delivery acks race with retries so that is normal.
	MarkDelivered(ctx context.Context, messageID int64) (bool, error)

	// MarkRead atomically flips every unread message from senderID to
	// receiverID to read, returning the IDs actually changed. A second
	// immediate call returns an empty slice.
	MarkRead(ctx context.Context, receiverID, senderID string) ([]int64, error)

	// MarkMessageRead flips a single message, guarded by the reader
	// being its receiver. Returns the sender ID so receipt events can
	// be routed, and false when nothing changed.
	MarkMessageRead(ctx context.Context, messageID int64, readerID string) (senderID string, changed bool, err error)

	// GetConversation returns up to limit messages between the two
	// users, newest first, older than before when it is non-nil.
	GetConversation(ctx context.Context, userID, otherUserID string, before *time.Time, limit int) ([]messaging.Message, error)

	// ListContacts aggregates one summary per conversation partner of
	// userID, ordered by last message timestamp descending. Usernames
	// are left blank; callers resolve them through the directory.
	ListContacts(ctx context.Context, userID string) ([]messaging.ContactSummary, error)

	// CountUnread returns the total unread messages addressed to userID.
	CountUnread(ctx context.Context, userID string) (int, error)
}
