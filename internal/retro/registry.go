package retro

import (
	"sort"
	"sync"

	"github.com/deebugger/retrobot/internal/domain"
	"github.com/deebugger/retrobot/internal/errors"
)

// SessionInfo is a registry listing entry.
type SessionInfo struct {
	ChannelID string
	Phase     domain.Phase
}

// Registry owns all live sessions, at most one per channel. It is an
// explicitly constructed store handed to the application layer at startup;
// there is no module-level singleton.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Get returns the session for a channel, if one exists.
func (r *Registry) Get(channelID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[channelID]
	return s, ok
}

// Create registers a new session for the channel. Fails with a conflict if one
// already exists, which is how "one session per channel" is enforced.
func (r *Registry) Create(channelID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[channelID]; exists {
		return nil, errors.ConflictError("a session already exists for this channel").
			WithContext("channel_id", channelID)
	}
	s := NewSession(channelID)
	r.sessions[channelID] = s
	return s, nil
}

// Remove evicts the session for a channel. Returns false if none existed.
func (r *Registry) Remove(channelID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[channelID]; !exists {
		return false
	}
	delete(r.sessions, channelID)
	return true
}

// List returns a snapshot of all sessions ordered by channel ID. The snapshot
// is taken under the lock; phases are read afterwards so a slow caller never
// blocks session mutation.
func (r *Registry) List() []SessionInfo {
	r.mu.RLock()
	snapshot := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		snapshot = append(snapshot, s)
	}
	r.mu.RUnlock()

	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].ChannelID() < snapshot[j].ChannelID() })

	out := make([]SessionInfo, 0, len(snapshot))
	for _, s := range snapshot {
		out = append(out, SessionInfo{ChannelID: s.ChannelID(), Phase: s.Phase()})
	}
	return out
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// FindByParticipant returns the first session (by channel ID order) that has
// the user enrolled. A user in several sessions feeds the first match; this
// matches the documented single-session-per-user assumption.
func (r *Registry) FindByParticipant(userID string) (*Session, bool) {
	r.mu.RLock()
	snapshot := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		snapshot = append(snapshot, s)
	}
	r.mu.RUnlock()

	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].ChannelID() < snapshot[j].ChannelID() })
	for _, s := range snapshot {
		if s.HasParticipant(userID) {
			return s, true
		}
	}
	return nil, false
}
