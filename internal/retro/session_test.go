package retro

import (
	"testing"

	"github.com/deebugger/retrobot/internal/domain"
	"github.com/deebugger/retrobot/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCollectingSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession("C123")
	s.AddParticipant(domain.Participant{UserID: "U1", Name: "ana"})
	s.AddParticipant(domain.Participant{UserID: "U2", Name: "ben"})
	return s
}

func TestSubmitFeedback_StoresClassifiedEntry(t *testing.T) {
	s := newCollectingSession(t)

	require.NoError(t, s.SubmitFeedback("U1", "ts1", "+the release went out on time"))

	got := s.FeedbackByCategory(domain.WorkedWell)
	require.Len(t, got, 1)
	assert.Equal(t, "the release went out on time", got[0].Text)
	assert.Equal(t, "ana", got[0].UserName)
	assert.Empty(t, s.FeedbackByCategory(domain.NeedsImprovement))
}

func TestSubmitFeedback_RejectsMalformed(t *testing.T) {
	s := newCollectingSession(t)

	err := s.SubmitFeedback("U1", "ts1", "no sigil here")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeValidation))
	assert.Equal(t, 0, s.FeedbackCount())
}

func TestSubmitFeedback_UnknownUser(t *testing.T) {
	s := newCollectingSession(t)

	err := s.SubmitFeedback("U99", "ts1", "+fine")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeNotFound))
}

func TestEditFeedback_OverwritesSameKey(t *testing.T) {
	s := newCollectingSession(t)

	require.NoError(t, s.SubmitFeedback("U1", "ts1", "+first version"))
	require.NoError(t, s.EditFeedback("U1", "ts1", "+second version"))

	got := s.FeedbackByCategory(domain.WorkedWell)
	require.Len(t, got, 1)
	assert.Equal(t, "second version", got[0].Text)
}

func TestEditFeedback_CanFlipCategory(t *testing.T) {
	s := newCollectingSession(t)

	require.NoError(t, s.SubmitFeedback("U1", "ts1", "+daily sync"))
	require.NoError(t, s.EditFeedback("U1", "ts1", "-daily sync"))

	assert.Empty(t, s.FeedbackByCategory(domain.WorkedWell))
	require.Len(t, s.FeedbackByCategory(domain.NeedsImprovement), 1)
}

func TestEditFeedback_InvalidEditKeepsOriginal(t *testing.T) {
	s := newCollectingSession(t)

	require.NoError(t, s.SubmitFeedback("U1", "ts1", "+original"))
	err := s.EditFeedback("U1", "ts1", "not feedback anymore")
	require.Error(t, err)

	got := s.FeedbackByCategory(domain.WorkedWell)
	require.Len(t, got, 1)
	assert.Equal(t, "original", got[0].Text)
}

func TestDeleteFeedback_Idempotent(t *testing.T) {
	s := newCollectingSession(t)

	require.NoError(t, s.SubmitFeedback("U1", "ts1", "-slow CI"))
	s.DeleteFeedback("U1", "ts1")
	assert.Equal(t, 0, s.FeedbackCount())

	// deleting a key that was never stored is a no-op
	s.DeleteFeedback("U1", "never-stored")
	s.DeleteFeedback("U1", "ts1")
	assert.Equal(t, 0, s.FeedbackCount())
}

func TestFeedbackByCategory_IsLiveProjection(t *testing.T) {
	s := newCollectingSession(t)

	require.NoError(t, s.SubmitFeedback("U1", "ts1", "-flaky tests"))
	require.NoError(t, s.SubmitFeedback("U2", "ts2", "-long standups"))
	s.DeleteFeedback("U1", "ts1")

	got := s.FeedbackByCategory(domain.NeedsImprovement)
	require.Len(t, got, 1)
	assert.Equal(t, "long standups", got[0].Text)
}

func TestPhase_MonotonicTransitions(t *testing.T) {
	s := newCollectingSession(t)
	assert.Equal(t, domain.Collecting, s.Phase())

	require.NoError(t, s.BeginVoting())
	assert.Equal(t, domain.Voting, s.Phase())

	// no way back
	err := s.BeginVoting()
	assert.True(t, errors.IsType(err, errors.TypeConflict))

	require.NoError(t, s.Close())
	assert.Equal(t, domain.Closed, s.Phase())

	assert.Error(t, s.Close())
	assert.Error(t, s.BeginVoting())
}

func TestSubmitFeedback_RejectedAfterVoting(t *testing.T) {
	s := newCollectingSession(t)
	require.NoError(t, s.BeginVoting())

	err := s.SubmitFeedback("U1", "ts1", "+too late")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeConflict))
	assert.Equal(t, 0, s.FeedbackCount())
}

func TestSubmitFeedback_RejectedWhenClosed(t *testing.T) {
	s := newCollectingSession(t)
	require.NoError(t, s.BeginVoting())
	require.NoError(t, s.Close())

	assert.Error(t, s.SubmitFeedback("U1", "ts1", "+way too late"))
	assert.Error(t, s.EditFeedback("U1", "ts1", "+still too late"))
}

func TestTrack_OnlyDuringVoting(t *testing.T) {
	s := newCollectingSession(t)
	msg := domain.TrackedMessage{Ref: domain.MessageRef{ChannelID: "C123", Timestamp: "ts9"}, Text: "flaky tests"}

	assert.Error(t, s.Track(msg))

	require.NoError(t, s.BeginVoting())
	require.NoError(t, s.Track(msg))
	require.Len(t, s.Tracked(), 1)

	require.NoError(t, s.Close())
	assert.Error(t, s.Track(msg))
	assert.Len(t, s.Tracked(), 1)
}

func TestTracked_ReturnsSnapshot(t *testing.T) {
	s := newCollectingSession(t)
	require.NoError(t, s.BeginVoting())
	require.NoError(t, s.Track(domain.TrackedMessage{Text: "one"}))

	snapshot := s.Tracked()
	snapshot[0].Text = "mutated"
	assert.Equal(t, "one", s.Tracked()[0].Text)
}

func TestAddParticipant_Idempotent(t *testing.T) {
	s := NewSession("C123")
	s.AddParticipant(domain.Participant{UserID: "U1", Name: "ana"})
	s.AddParticipant(domain.Participant{UserID: "U1", Name: "ana the second"})

	got := s.Participants()
	require.Len(t, got, 1)
	assert.Equal(t, "ana the second", got[0].Name)
}
