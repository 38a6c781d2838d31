package chat

import (
	"sync"
	"time"
)

// TypingClearAfter is how long a typing indicator stays lit without a
// refresh. Stop events are fire-and-forget on the wire, so the timer is
// the only guaranteed way the indicator goes out.
const TypingClearAfter = 2500 * time.Millisecond

// TypingIndicator tracks whether one conversation partner is typing.
// Each typing event re-arms an auto-clear timer; a stop event or timer
// expiry clears it.
type TypingIndicator struct {
	mu       sync.Mutex
	active   bool
	timer    *time.Timer
	onChange func(active bool)
}

// NewTypingIndicator creates an indicator. onChange fires on every
// transition and may be nil.
func NewTypingIndicator(onChange func(active bool)) *TypingIndicator {
	return &TypingIndicator{onChange: onChange}
}

// Typing records a typing event and re-arms the auto-clear timer.
func (t *TypingIndicator) Typing() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(TypingClearAfter, t.expire)

	if !t.active {
		t.active = true
		t.notifyLocked(true)
	}
}

// StopTyping clears the indicator immediately.
func (t *TypingIndicator) StopTyping() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clearLocked()
}

// Active reports the current indicator state.
func (t *TypingIndicator) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

func (t *TypingIndicator) expire() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clearLocked()
}

func (t *TypingIndicator) clearLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	if t.active {
		t.active = false
		t.notifyLocked(false)
	}
}

func (t *TypingIndicator) notifyLocked(active bool) {
	if t.onChange != nil {
		go t.onChange(active)
	}
}
