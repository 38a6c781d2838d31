package chat

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serverMsg(id int64, sender string, at time.Time) Message {
	return Message{
		ID:        id,
		SenderID:  sender,
		Content:   fmt.Sprintf("msg-%d", id),
		Status:    "sent",
		Timestamp: at,
	}
}

func TestConversationOptimisticConfirm(t *testing.T) {
	conv := NewConversation()

	localID := conv.AppendLocal("me", "hello")
	entries := conv.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, StatePending, entries[0].State)
	assert.Zero(t, entries[0].ID)

	conv.Confirm(localID, Message{ID: 41, SenderID: "me", Content: "hello", Status: "sent", Timestamp: time.Now()})

	entries = conv.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(41), entries[0].ID)
	assert.Equal(t, StateSent, entries[0].State)
	assert.Equal(t, localID, entries[0].LocalID, "confirm keeps the original row identity")
}

func TestConversationPushBeatsConfirm(t *testing.T) {
	// The delivered echo can arrive on the socket before the REST
	// response does. The two must collapse into one row.
	conv := NewConversation()
	localID := conv.AppendLocal("me", "hello")

	pushed := Message{ID: 7, SenderID: "me", Content: "hello", Status: "delivered", Timestamp: time.Now()}
	conv.ApplyPush(pushed)
	require.Len(t, conv.Entries(), 2, "push cannot know it matches the pending row")

	conv.Confirm(localID, Message{ID: 7, SenderID: "me", Content: "hello", Status: "sent", Timestamp: pushed.Timestamp})

	entries := conv.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(7), entries[0].ID)
	assert.Equal(t, StateDelivered, entries[0].State, "confirm must not regress the delivered receipt")
}

func TestConversationApplyPushDeduplicates(t *testing.T) {
	conv := NewConversation()
	at := time.Now()
	conv.LoadInitial([]Message{serverMsg(1, "them", at)})

	conv.ApplyPush(serverMsg(1, "them", at))
	assert.Len(t, conv.Entries(), 1)

	conv.ApplyPush(serverMsg(2, "them", at.Add(time.Second)))
	assert.Len(t, conv.Entries(), 2)
}

func TestConversationStatusNeverRegresses(t *testing.T) {
	conv := NewConversation()
	conv.LoadInitial([]Message{serverMsg(5, "me", time.Now())})

	conv.ApplyStatus(5, StateRead)
	conv.ApplyStatus(5, StateDelivered) // late event
	assert.Equal(t, StateRead, conv.Entries()[0].State)

	conv.ApplyStatus(999, StateRead) // unknown id: no-op, no panic
}

func TestConversationPrependOlderPreservesAnchor(t *testing.T) {
	conv := NewConversation()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	visible := make([]Message, 0, PageSize)
	for i := 0; i < PageSize; i++ {
		visible = append(visible, serverMsg(int64(100+i), "them", base.Add(time.Duration(i)*time.Minute)))
	}
	conv.LoadInitial(visible)
	require.True(t, conv.HasMore())

	older := make([]Message, 0, PageSize)
	for i := 0; i < PageSize; i++ {
		older = append(older, serverMsg(int64(i+1), "them", base.Add(time.Duration(i-PageSize)*time.Minute)))
	}
	// one overlapping row, as a retried page fetch can produce
	older = append(older[:PageSize-1], visible[0])

	added, anchorID := conv.PrependOlder(older)
	assert.Equal(t, PageSize-1, added, "overlap must not duplicate")
	assert.Equal(t, int64(100), anchorID, "anchor is the first previously-visible row")

	entries := conv.Entries()
	require.Len(t, entries, 2*PageSize-1)
	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].Timestamp.Before(entries[i-1].Timestamp), "window stays ascending")
	}
}

func TestConversationNextBeforeSkipsPending(t *testing.T) {
	conv := NewConversation()
	assert.True(t, conv.NextBefore().IsZero())

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	conv.LoadInitial([]Message{serverMsg(3, "them", at), serverMsg(4, "them", at.Add(time.Minute))})
	conv.AppendLocal("me", "draft in flight")

	assert.Equal(t, at, conv.NextBefore())
}
