// Package retro implements the per-channel retrospective session: the
// collecting/voting/closed state machine, the keyed feedback store, the
// participant roster, and the process-wide session registry.
package retro

import (
	"sort"
	"sync"

	"github.com/deebugger/retrobot/internal/domain"
	"github.com/deebugger/retrobot/internal/errors"
)

// Session is the retrospective state for one channel. All methods are safe for
// concurrent use; the mutex is never held across external calls.
type Session struct {
	mu        sync.Mutex
	channelID string
	phase     domain.Phase

	participants map[string]domain.Participant
	feedback     map[string]domain.Feedback
	tracked      []domain.TrackedMessage
}

// NewSession creates a session in the Collecting phase.
func NewSession(channelID string) *Session {
	return &Session{
		channelID:    channelID,
		phase:        domain.Collecting,
		participants: make(map[string]domain.Participant),
		feedback:     make(map[string]domain.Feedback),
	}
}

func (s *Session) ChannelID() string {
	return s.channelID
}

func (s *Session) Phase() domain.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// AddParticipant upserts a user into the roster. Idempotent.
func (s *Session) AddParticipant(p domain.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants[p.UserID] = p
}

// HasParticipant reports whether the user is enrolled in this session.
func (s *Session) HasParticipant(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.participants[userID]
	return ok
}

// Participants returns a snapshot of the roster, ordered by user ID.
func (s *Session) Participants() []domain.Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Participant, 0, len(s.participants))
	for _, p := range s.participants {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// SubmitFeedback validates and stores one feedback item under the composite
// (userID, messageID) key. A later submit or edit with the same key overwrites
// the earlier entry. Valid only while Collecting.
func (s *Session) SubmitFeedback(userID, messageID, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.Collecting {
		return errors.ConflictError("session is no longer collecting feedback").
			WithContext("channel_id", s.channelID).
			WithContext("phase", s.phase.String())
	}

	participant, ok := s.participants[userID]
	if !ok {
		return errors.NotFoundError("user is not enrolled in this session").
			WithContext("user_id", userID)
	}

	classified, ok := domain.ClassifyFeedback(raw)
	if !ok {
		return errors.ValidationError("feedback must be a single line starting with + or -")
	}

	s.feedback[domain.FeedbackKey(userID, messageID)] = domain.Feedback{
		UserID:   userID,
		UserName: participant.Name,
		Category: classified.Category,
		Text:     classified.Body,
	}
	return nil
}

// EditFeedback reruns the exact submission path. The shared key derivation
// makes the edit land on the original entry instead of creating a duplicate.
func (s *Session) EditFeedback(userID, messageID, raw string) error {
	return s.SubmitFeedback(userID, messageID, raw)
}

// DeleteFeedback removes the entry for the key if present. Idempotent.
func (s *Session) DeleteFeedback(userID, messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.feedback, domain.FeedbackKey(userID, messageID))
}

// FeedbackByCategory returns all current entries in the given category, sigils
// already stripped. This is a live projection of the store: edits and deletes
// made before the call are reflected.
func (s *Session) FeedbackByCategory(category domain.Category) []domain.Feedback {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.feedback))
	for key, fb := range s.feedback {
		if fb.Category == category {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	out := make([]domain.Feedback, 0, len(keys))
	for _, key := range keys {
		out = append(out, s.feedback[key])
	}
	return out
}

// FeedbackCount returns the number of stored items, for status reporting.
func (s *Session) FeedbackCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.feedback)
}

// BeginVoting transitions Collecting -> Voting. The transition is applied
// atomically before any reveal messages go out, so a concurrent command for
// the same channel observes a consistent phase.
func (s *Session) BeginVoting() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.Collecting {
		return errors.ConflictError("session is not collecting").
			WithContext("phase", s.phase.String())
	}
	s.phase = domain.Voting
	return nil
}

// Close transitions Voting -> Closed. Terminal; nothing reopens a session.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.Voting {
		return errors.ConflictError("session is not voting").
			WithContext("phase", s.phase.String())
	}
	s.phase = domain.Closed
	return nil
}

// Track appends a revealed "needs improvement" message to the vote targets.
// Only legal during Voting; the list is immutable once the session closes.
func (s *Session) Track(m domain.TrackedMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.Voting {
		return errors.ConflictError("tracked messages are only recorded during voting").
			WithContext("phase", s.phase.String())
	}
	s.tracked = append(s.tracked, m)
	return nil
}

// Tracked returns a snapshot of the tracked messages in reveal order.
func (s *Session) Tracked() []domain.TrackedMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.TrackedMessage, len(s.tracked))
	copy(out, s.tracked)
	return out
}
