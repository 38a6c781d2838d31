// Package event defines the closed set of frames exchanged on the live
// channel. Every frame is an Envelope with a Type discriminator; fields
// not used by a given type stay zero and are omitted on the wire.
package event

import (
	"encoding/json"
	"fmt"
	"time"

	messaging "github.com/MavisVermie/TBR3-sub000/internal/pkg/messaging/application/domain"
)

type Type string

const (
	// server -> client
	TypeConnected      Type = "connected"
	TypePrivateMessage Type = "private_message"
	TypeStatusUpdate   Type = "message_status_update"
	TypeError          Type = "error"

	// client -> server
	TypeRegister    Type = "register"
	TypeChatOpen    Type = "chat_open"
	TypeChatClose   Type = "chat_close"
	TypeMessageRead Type = "message_read"

	// relayed both ways
	TypeTyping     Type = "typing"
	TypeStopTyping Type = "stop_typing"
)

// Envelope is the single frame shape for the live channel.
type Envelope struct {
	Type Type `json:"type"`

	FromUserID   string `json:"fromUserId,omitempty"`
	ToUserID     string `json:"toUserId,omitempty"`
	ChattingWith string `json:"chattingWith,omitempty"`
	ReaderID     string `json:"readerId,omitempty"`

	ID        int64      `json:"id,omitempty"`
	MessageID int64      `json:"messageId,omitempty"`
	Message   string     `json:"message,omitempty"`
	Status    string     `json:"status,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`

	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
}

func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Decode parses a raw frame and rejects unknown discriminators so the
// protocol stays exhaustively checkable.
func Decode(data []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return Envelope{}, fmt.Errorf("event: decode: %w", err)
	}
	switch e.Type {
	case TypeConnected, TypePrivateMessage, TypeStatusUpdate, TypeError,
		TypeRegister, TypeChatOpen, TypeChatClose, TypeMessageRead,
		TypeTyping, TypeStopTyping:
		return e, nil
	default:
		return Envelope{}, fmt.Errorf("event: unknown frame type %q", e.Type)
	}
}

func Connected() Envelope {
	return Envelope{Type: TypeConnected}
}

// PrivateMessage wraps a persisted message for push to the receiver.
func PrivateMessage(m messaging.Message) Envelope {
	ts := m.CreatedAt
	return Envelope{
		Type:       TypePrivateMessage,
		FromUserID: m.SenderID,
		ID:         m.ID,
		Message:    m.Content,
		Status:     string(m.Status),
		Timestamp:  &ts,
	}
}

func StatusUpdate(messageID int64, status messaging.DeliveryStatus) Envelope {
	return Envelope{Type: TypeStatusUpdate, MessageID: messageID, Status: string(status)}
}

func Typing(fromUserID, toUserID string) Envelope {
	return Envelope{Type: TypeTyping, FromUserID: fromUserID, ToUserID: toUserID}
}

func StopTyping(fromUserID, toUserID string) Envelope {
	return Envelope{Type: TypeStopTyping, FromUserID: fromUserID, ToUserID: toUserID}
}

func Error(code, message string) Envelope {
	return Envelope{Type: TypeError, Code: code, Error: message}
}
