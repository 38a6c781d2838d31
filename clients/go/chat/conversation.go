package chat

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the client-observed lifecycle of a message. It only moves
// forward; a late or duplicated event never downgrades a receipt.
type State string

const (
	StatePending   State = "pending"
	StateSent      State = "sent"
	StateDelivered State = "delivered"
	StateRead      State = "read"
)

func stateRank(s State) int {
	switch s {
	case StatePending:
		return 0
	case StateSent:
		return 1
	case StateDelivered:
		return 2
	case StateRead:
		return 3
	default:
		return -1
	}
}

// Entry is one rendered row of a conversation. LocalID identifies the
// row from the moment it is optimistically shown; ID is zero until the
// server confirms it.
type Entry struct {
	LocalID   string
	ID        int64
	SenderID  string
	Content   string
	Timestamp time.Time
	State     State
}

// Conversation reconciles three message sources into one ascending,
// deduplicated list: paginated history, live pushes, and the caller's
// own optimistic sends. Safe for concurrent use; pushes typically
// arrive on a socket goroutine while the UI paginates.
type Conversation struct {
	mu      sync.Mutex
	entries []Entry
	hasMore bool
}

func NewConversation() *Conversation {
	return &Conversation{}
}

// LoadInitial replaces the window with the newest page of history.
func (c *Conversation) LoadInitial(msgs []Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = c.entries[:0]
	for _, m := range msgs {
		c.entries = append(c.entries, entryFromMessage(m))
	}
	c.hasMore = len(msgs) == PageSize
}

// AppendLocal adds an optimistic pending entry for a message the caller
// just composed and returns its local identifier for later Confirm.
func (c *Conversation) AppendLocal(senderID, content string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	localID := uuid.NewString()
	c.entries = append(c.entries, Entry{
		LocalID:   localID,
		SenderID:  senderID,
		Content:   content,
		Timestamp: time.Now(),
		State:     StatePending,
	})
	return localID
}

// Confirm merges the server record into the optimistic entry created by
// AppendLocal. If a push carrying the same server ID already landed,
// the pending row is dropped in favor of the pushed one.
func (c *Conversation) Confirm(localID string, msg Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexByServerID(msg.ID); i >= 0 {
		c.dropByLocalID(localID)
		c.upgradeLocked(i, msg)
		return
	}

	for i := range c.entries {
		if c.entries[i].LocalID == localID {
			c.entries[i].ID = msg.ID
			c.entries[i].Timestamp = msg.Timestamp
			c.upgradeLocked(i, msg)
			return
		}
	}
	// Pending row already gone (e.g. window reloaded); append instead.
	c.insertOrdered(entryFromMessage(msg))
}

// ApplyPush merges a live-pushed message. A push whose server ID is
// already present replaces that entry rather than duplicating it.
func (c *Conversation) ApplyPush(msg Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexByServerID(msg.ID); i >= 0 {
		c.entries[i].Content = msg.Content
		c.entries[i].Timestamp = msg.Timestamp
		c.upgradeLocked(i, msg)
		return
	}
	c.insertOrdered(entryFromMessage(msg))
}

// ApplyStatus advances the state of the entry with the given server ID.
// Regressions and unknown IDs are ignored.
func (c *Conversation) ApplyStatus(messageID int64, status State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexByServerID(messageID); i >= 0 {
		if stateRank(status) > stateRank(c.entries[i].State) {
			c.entries[i].State = status
		}
	}
}

// PrependOlder merges one older history page at the front and returns
// the number of rows actually added plus the server ID of the first
// previously-visible row. The embedding UI uses the pair to adjust its
// scroll offset in the same frame as the insert, so the anchor row
// stays put.
func (c *Conversation) PrependOlder(msgs []Message) (added int, anchorID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		if e.ID != 0 {
			anchorID = e.ID
			break
		}
	}

	fresh := make([]Entry, 0, len(msgs))
	for _, m := range msgs {
		if c.indexByServerID(m.ID) < 0 {
			fresh = append(fresh, entryFromMessage(m))
		}
	}
	c.entries = append(fresh, c.entries...)
	c.hasMore = len(msgs) == PageSize
	return len(fresh), anchorID
}

// NextBefore returns the cursor for the next older page: the timestamp
// of the oldest server-confirmed entry. Zero when nothing is loaded.
func (c *Conversation) NextBefore() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.ID != 0 {
			return e.Timestamp
		}
	}
	return time.Time{}
}

// HasMore reports whether an older page may exist, judged from the last
// loaded page's length.
func (c *Conversation) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasMore
}

// Entries returns a snapshot of the current window, ascending by time.
func (c *Conversation) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

func entryFromMessage(m Message) Entry {
	return Entry{
		LocalID:   uuid.NewString(),
		ID:        m.ID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		Timestamp: m.Timestamp,
		State:     stateFromMessage(m),
	}
}

func stateFromMessage(m Message) State {
	switch {
	case m.IsRead || m.Status == string(StateRead):
		return StateRead
	case m.Status == string(StateDelivered):
		return StateDelivered
	default:
		return StateSent
	}
}

func (c *Conversation) indexByServerID(id int64) int {
	if id == 0 {
		return -1
	}
	for i := range c.entries {
		if c.entries[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Conversation) dropByLocalID(localID string) {
	for i := range c.entries {
		if c.entries[i].LocalID == localID {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return
		}
	}
}

// upgradeLocked applies the server's view of state forward-only.
func (c *Conversation) upgradeLocked(i int, msg Message) {
	if s := stateFromMessage(msg); stateRank(s) > stateRank(c.entries[i].State) {
		c.entries[i].State = s
	}
}

// insertOrdered keeps the window ascending when a push lands behind a
// newer optimistic entry.
func (c *Conversation) insertOrdered(e Entry) {
	n := sort.Search(len(c.entries), func(i int) bool {
		return c.entries[i].Timestamp.After(e.Timestamp)
	})
	c.entries = append(c.entries, Entry{})
	copy(c.entries[n+1:], c.entries[n:])
	c.entries[n] = e
}
