package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	messaging "github.com/MavisVermie/TBR3-sub000/internal/pkg/messaging/application/domain"
)

func TestDecodeRejectsUnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"type":"shrug"}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"type":""}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}

func TestDecodeKnownFrames(t *testing.T) {
	e, err := Decode([]byte(`{"type":"typing","fromUserId":"a","toUserId":"b"}`))
	require.NoError(t, err)
	assert.Equal(t, TypeTyping, e.Type)
	assert.Equal(t, "a", e.FromUserID)
	assert.Equal(t, "b", e.ToUserID)

	e, err = Decode([]byte(`{"type":"message_read","readerId":"b","messageId":42}`))
	require.NoError(t, err)
	assert.Equal(t, TypeMessageRead, e.Type)
	assert.EqualValues(t, 42, e.MessageID)
}

func TestPrivateMessageRoundTrip(t *testing.T) {
	msg := messaging.Message{
		ID:        7,
		SenderID:  "alice",
		Content:   "hello",
		Status:    messaging.StatusSent,
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	raw, err := PrivateMessage(msg).Encode()
	require.NoError(t, err)

	decoded, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, TypePrivateMessage, decoded.Type)
	assert.Equal(t, "alice", decoded.FromUserID)
	assert.EqualValues(t, 7, decoded.ID)
	assert.Equal(t, "hello", decoded.Message)
	assert.Equal(t, "sent", decoded.Status)
	require.NotNil(t, decoded.Timestamp)
	assert.True(t, decoded.Timestamp.Equal(msg.CreatedAt))
}
