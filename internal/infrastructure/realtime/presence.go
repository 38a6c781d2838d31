package realtime

import "sync"

// Session is the per-socket handle tracked by a Presence implementation.
// *Connection satisfies it; tests substitute fakes.
type Session interface {
	SessionID() string
	UserID() string
	Send(payload []byte) error
	Close(code int, reason string)
}

// Presence is the ephemeral user -> live session mapping plus the
// advisory "which conversation is this user viewing" state. It is
// injected into the delivery pipeline so a multi-instance deployment
// can swap in a shared backplane without touching callers.
type Presence interface {
	// Register associates the session with its user. A second
	// registration for the same user supersedes the first
	// (last-write-wins; the replaced session is closed).
	Register(s Session)

	// Deregister removes the session if it is still the active one for
	// its user. Called on transport close.
	Deregister(s Session)

	// Notify delivers payload to the user's active session. Returns
	// false when the user has no live session or the write failed;
	// callers treat that as "not connected", never as an error.
	Notify(userID string, payload []byte) bool

	// Connected reports whether the user currently has a live session.
	Connected(userID string) bool

	// SetViewing records that the user is actively viewing the
	// conversation with partnerID. Advisory only.
	SetViewing(userID, partnerID string)

	// ClearViewing drops the viewing mark for the user.
	ClearViewing(userID string)

	// Viewing returns the partner the user is currently viewing, if any.
	Viewing(userID string) (string, bool)

	// Close terminates all tracked sessions.
	Close()
}

// Registry is the in-process Presence implementation. A mutex guards
// the maps; per-session write ordering is handled by each session's own
// write loop.
type Registry struct {
	mu      sync.RWMutex
	byUser  map[string]Session
	viewing map[string]string // userID -> partner being viewed
}

var _ Presence = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{
		byUser:  make(map[string]Session),
		viewing: make(map[string]string),
	}
}

func (r *Registry) Register(s Session) {
	r.mu.Lock()
	previous := r.byUser[s.UserID()]
	r.byUser[s.UserID()] = s
	delete(r.viewing, s.UserID())
	r.mu.Unlock()

	if previous != nil && previous.SessionID() != s.SessionID() {
		previous.Close(4001, "session replaced")
	}
}

func (r *Registry) Deregister(s Session) {
	r.mu.Lock()
	current, ok := r.byUser[s.UserID()]
	if ok && current.SessionID() == s.SessionID() {
		delete(r.byUser, s.UserID())
		delete(r.viewing, s.UserID())
	}
	r.mu.Unlock()
}

func (r *Registry) Notify(userID string, payload []byte) bool {
	r.mu.RLock()
	s, ok := r.byUser[userID]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	return s.Send(payload) == nil
}

func (r *Registry) Connected(userID string) bool {
	r.mu.RLock()
	_, ok := r.byUser[userID]
	r.mu.RUnlock()
	return ok
}

func (r *Registry) SetViewing(userID, partnerID string) {
	r.mu.Lock()
	if _, ok := r.byUser[userID]; ok {
		r.viewing[userID] = partnerID
	}
	r.mu.Unlock()
}

func (r *Registry) ClearViewing(userID string) {
	r.mu.Lock()
	delete(r.viewing, userID)
	r.mu.Unlock()
}

func (r *Registry) Viewing(userID string) (string, bool) {
	r.mu.RLock()
	partner, ok := r.viewing[userID]
	r.mu.RUnlock()
	return partner, ok
}

func (r *Registry) Close() {
	r.mu.Lock()
	sessions := make([]Session, 0, len(r.byUser))
	for _, s := range r.byUser {
		sessions = append(sessions, s)
	}
	r.byUser = make(map[string]Session)
	r.viewing = make(map[string]string)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close(1001, "registry shutdown")
	}
}
