package app

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/deebugger/retrobot/internal/domain"
	"github.com/deebugger/retrobot/internal/errors"
	"github.com/deebugger/retrobot/internal/metrics"
	"github.com/deebugger/retrobot/internal/present"
	"github.com/deebugger/retrobot/internal/retro"
	"github.com/deebugger/retrobot/internal/vote"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// rosterConcurrency bounds the parallel presence/DND lookups at session start.
const rosterConcurrency = 8

// Service is the application layer. It owns the use cases and is the only
// component that touches the registry, the aggregator, and the messenger
// together. Locks are never held while a messenger call is in flight: session
// state is mutated first, snapshots are taken, then I/O happens.
type Service struct {
	registry *retro.Registry
	msgr     domain.Messenger
	agg      *vote.Aggregator

	defaultLimit int

	// startGroup collapses concurrent start commands for the same channel so
	// the roster is built at most once.
	startGroup singleflight.Group

	shuffleMu sync.Mutex
	shuffle   *rand.Rand
}

var _ domain.RetroService = (*Service)(nil)

// NewService creates the application layer service. shuffleSource seeds the
// reveal ordering; tests pass a fixed seed, main seeds from entropy.
func NewService(registry *retro.Registry, msgr domain.Messenger, defaultLimit int, shuffleSource *rand.Rand) *Service {
	if defaultLimit < 1 {
		defaultLimit = vote.DefaultLimit
	}
	return &Service{
		registry:     registry,
		msgr:         msgr,
		agg:          vote.NewAggregator(msgr),
		defaultLimit: defaultLimit,
		shuffle:      shuffleSource,
	}
}

// notify delivers one message and isolates the failure: delivery errors are
// logged and counted, never propagated.
func (s *Service) notify(ctx context.Context, conversationID, text string) {
	if err := s.msgr.Notify(ctx, conversationID, text); err != nil {
		metrics.NotifyFailures.Inc()
		slog.WarnContext(ctx, "Notification failed",
			"conversation_id", conversationID,
			"error", errors.DeliveryError("notify failed", err),
		)
	}
}

// fanOut sends one DM per participant concurrently. Each recipient fails
// independently; a dead DM never cancels its siblings or the caller.
func (s *Service) fanOut(ctx context.Context, participants []domain.Participant, text string) {
	g := new(errgroup.Group)
	g.SetLimit(rosterConcurrency)
	for _, p := range participants {
		g.Go(func() error {
			s.notify(ctx, p.UserID, text)
			return nil
		})
	}
	_ = g.Wait()
}

// Start begins a new retro session in the channel: registers the session,
// builds the roster of active, non-DND members, and DMs each of them the
// feedback instructions.
func (s *Service) Start(ctx context.Context, channelID string) error {
	_, err, _ := s.startGroup.Do(channelID, func() (any, error) {
		return nil, s.start(ctx, channelID)
	})
	return err
}

func (s *Service) start(ctx context.Context, channelID string) error {
	if existing, ok := s.registry.Get(channelID); ok {
		if existing.Phase() == domain.Collecting {
			s.notify(ctx, channelID, msgAlreadyInProgress(s.msgr.BotUserID()))
		} else {
			s.notify(ctx, channelID, msgStoppedNotSummarized(s.msgr.BotUserID()))
		}
		return nil
	}

	sess, err := s.registry.Create(channelID)
	if err != nil {
		// lost a race with another start for the same channel
		s.notify(ctx, channelID, msgAlreadyInProgress(s.msgr.BotUserID()))
		return nil
	}

	slog.InfoContext(ctx, "Starting a new retro session", "channel_id", channelID)
	metrics.SessionsStarted.Inc()
	metrics.ActiveSessions.Set(float64(s.registry.Len()))

	s.notify(ctx, channelID, msgSessionStarting())

	members, err := s.msgr.ListMembers(ctx, channelID)
	if err != nil {
		// Degrade to an empty roster with a user-visible abort message. The
		// session itself stays registered so the channel can terminate or
		// retry explicitly.
		metrics.RosterLookupFailures.Inc()
		slog.ErrorContext(ctx, "Roster build failed",
			"channel_id", channelID,
			"error", errors.UpstreamError("member listing failed", err),
		)
		s.notify(ctx, channelID, msgRosterFailure())
		return nil
	}

	g := new(errgroup.Group)
	g.SetLimit(rosterConcurrency)
	for _, userID := range members {
		if userID == s.msgr.BotUserID() {
			continue
		}
		g.Go(func() error {
			participant, eligible, err := s.msgr.ResolveParticipant(ctx, userID)
			if err != nil {
				// something went wrong for this one user - just skip them
				metrics.RosterLookupFailures.Inc()
				slog.WarnContext(ctx, "Skipping user after failed eligibility check",
					"user_id", userID, "error", err)
				return nil
			}
			if !eligible {
				return nil
			}
			sess.AddParticipant(participant)
			s.notify(ctx, participant.UserID, msgFeedbackInstructions())
			return nil
		})
	}
	_ = g.Wait()

	slog.InfoContext(ctx, "Roster built",
		"channel_id", channelID,
		"participants", len(sess.Participants()),
	)
	return nil
}

// Stop ends the collection phase: feedback submitted so far is frozen, both
// piles are revealed in shuffled order, and the "needs improvement" items are
// re-posted as vote targets.
func (s *Service) Stop(ctx context.Context, channelID string) error {
	sess, ok := s.registry.Get(channelID)
	if !ok {
		s.notify(ctx, channelID, msgNoSessionToStop(s.msgr.BotUserID()))
		return nil
	}

	// Phase flips before any reveal message goes out, so a concurrent command
	// for this channel observes Voting immediately.
	if err := sess.BeginVoting(); err != nil {
		s.notify(ctx, channelID, msgNoSessionToStop(s.msgr.BotUserID()))
		return nil
	}

	slog.InfoContext(ctx, "Stopping retro session", "channel_id", channelID)

	s.notify(ctx, channelID, msgGatherBack())
	s.fanOut(ctx, sess.Participants(), msgStopDM(channelID))

	workedWell := sess.FeedbackByCategory(domain.WorkedWell)
	s.shuffleFeedback(workedWell)
	s.notify(ctx, channelID, msgWorkedWellHeader())
	for _, fb := range workedWell {
		s.notify(ctx, channelID, msgRevealItem(fb.Text, fb.UserName))
	}

	needsImprovement := sess.FeedbackByCategory(domain.NeedsImprovement)
	s.shuffleFeedback(needsImprovement)
	s.notify(ctx, channelID, msgNeedsImprovementHeader())
	for _, fb := range needsImprovement {
		text := msgRevealItem(fb.Text, fb.UserName)
		ref, err := s.msgr.PostAndTrack(ctx, channelID, text)
		if err != nil {
			// the item is lost as a vote target but the reveal continues
			metrics.NotifyFailures.Inc()
			slog.WarnContext(ctx, "Failed to post vote target", "channel_id", channelID, "error", err)
			continue
		}
		if err := sess.Track(domain.TrackedMessage{Ref: ref, Text: fb.Text}); err != nil {
			slog.WarnContext(ctx, "Dropping tracked message", "channel_id", channelID, "error", err)
		}
	}

	s.notify(ctx, channelID, msgVotingInstructions(s.msgr.BotUserID()))
	return nil
}

func (s *Service) shuffleFeedback(items []domain.Feedback) {
	s.shuffleMu.Lock()
	defer s.shuffleMu.Unlock()
	present.Shuffle(s.shuffle, items)
}

// Summarize prints the ranked vote summary and ends the session. limit <= 0
// falls back to the configured default.
func (s *Service) Summarize(ctx context.Context, channelID string, limit int) error {
	sess, ok := s.registry.Get(channelID)
	if !ok {
		s.notify(ctx, channelID, msgSumNoSession(s.msgr.BotUserID()))
		return nil
	}
	if sess.Phase() == domain.Collecting {
		s.notify(ctx, channelID, msgSumStillCollecting(s.msgr.BotUserID()))
		return nil
	}

	// First close wins; a concurrent summarize for the same channel backs off.
	if err := sess.Close(); err != nil {
		return nil
	}

	if limit < 1 {
		limit = s.defaultLimit
	}

	slog.InfoContext(ctx, "Summing up retro session", "channel_id", channelID, "limit", limit)

	items := s.agg.Summarize(ctx, sess.Tracked(), limit)
	s.notify(ctx, channelID, msgSummaryHeader(len(items)))
	for _, item := range items {
		s.notify(ctx, channelID, vote.Render(item))
	}
	s.notify(ctx, channelID, msgGoodbye())

	s.registry.Remove(channelID)
	metrics.SessionsEnded.WithLabelValues("summarized").Inc()
	metrics.ActiveSessions.Set(float64(s.registry.Len()))
	return nil
}

// Terminate evicts the session immediately from any phase, bypassing the
// summary step, and warns enrolled participants.
func (s *Service) Terminate(ctx context.Context, channelID string) error {
	sess, ok := s.registry.Get(channelID)
	if !ok {
		s.notify(ctx, channelID, msgTerminateNoSession())
		return nil
	}

	slog.InfoContext(ctx, "Terminating retro session", "channel_id", channelID)

	s.fanOut(ctx, sess.Participants(), msgTerminateDM(channelID))

	s.registry.Remove(channelID)
	metrics.SessionsEnded.WithLabelValues("terminated").Inc()
	metrics.ActiveSessions.Set(float64(s.registry.Len()))

	s.notify(ctx, channelID, msgTerminated())
	return nil
}

// Status reports the session phase for the channel.
func (s *Service) Status(ctx context.Context, channelID string) error {
	sess, ok := s.registry.Get(channelID)
	switch {
	case !ok:
		s.notify(ctx, channelID, msgStatusNone())
	case sess.Phase() == domain.Collecting:
		s.notify(ctx, channelID, msgStatusCollecting())
	default:
		s.notify(ctx, channelID, msgStatusVoting())
	}
	return nil
}

// Channels lists every channel with a live session and its stage.
func (s *Service) Channels(ctx context.Context, channelID string) error {
	infos := s.registry.List()
	if len(infos) == 0 {
		s.notify(ctx, channelID, msgChannelsNone())
		return nil
	}

	s.notify(ctx, channelID, msgChannelsHeader())
	for _, info := range infos {
		s.notify(ctx, channelID, msgChannelsEntry(info.ChannelID, stageLabel(info.Phase)))
	}
	return nil
}

func stageLabel(p domain.Phase) string {
	if p == domain.Collecting {
		return "getting feedback"
	}
	return "voting"
}

// Help prints the command reference.
func (s *Service) Help(ctx context.Context, channelID string) error {
	s.notify(ctx, channelID, msgHelp(s.msgr.BotUserID(), s.defaultLimit))
	return nil
}

// WakeUp answers a liveness poke from the channel.
func (s *Service) WakeUp(ctx context.Context, channelID string) error {
	s.notify(ctx, channelID, msgWakeUp())
	return nil
}

// SubmitFeedback routes a direct message into the sender's session.
func (s *Service) SubmitFeedback(ctx context.Context, userID, messageID, text string) error {
	sess, ok := s.findSessionForUser(ctx, userID)
	if !ok {
		return nil
	}

	err := sess.SubmitFeedback(userID, messageID, text)
	s.reportFeedbackOutcome(ctx, "submit", userID, err)
	return nil
}

// EditFeedback applies an edited direct message to the original entry.
func (s *Service) EditFeedback(ctx context.Context, userID, messageID, text string) error {
	sess, ok := s.findSessionForUser(ctx, userID)
	if !ok {
		return nil
	}

	err := sess.EditFeedback(userID, messageID, text)
	s.reportFeedbackOutcome(ctx, "edit", userID, err)
	return nil
}

// DeleteFeedback removes the entry for a deleted direct message. Idempotent.
func (s *Service) DeleteFeedback(ctx context.Context, userID, messageID string) error {
	sess, ok := s.findSessionForUser(ctx, userID)
	if !ok {
		return nil
	}

	sess.DeleteFeedback(userID, messageID)
	metrics.FeedbackReceived.WithLabelValues("delete", "ok").Inc()
	return nil
}

// findSessionForUser locates the session a DM belongs to and answers the user
// when there is none. A user in several sessions feeds the first match.
func (s *Service) findSessionForUser(ctx context.Context, userID string) (*retro.Session, bool) {
	if s.registry.Len() == 0 {
		s.notify(ctx, userID, msgNoSessionsForFeedback())
		return nil, false
	}

	sess, ok := s.registry.FindByParticipant(userID)
	if !ok {
		s.notify(ctx, userID, msgNotEnrolled())
		return nil, false
	}
	return sess, true
}

func (s *Service) reportFeedbackOutcome(ctx context.Context, operation, userID string, err error) {
	switch {
	case err == nil:
		metrics.FeedbackReceived.WithLabelValues(operation, "ok").Inc()
	case errors.IsType(err, errors.TypeValidation):
		metrics.FeedbackReceived.WithLabelValues(operation, "invalid").Inc()
		s.notify(ctx, userID, msgFeedbackUsage())
	case errors.IsType(err, errors.TypeConflict):
		// Feedback after the collection phase has no session-state message to
		// react to, so it is dropped without a reply.
		metrics.FeedbackReceived.WithLabelValues(operation, "late").Inc()
	default:
		metrics.FeedbackReceived.WithLabelValues(operation, "error").Inc()
		slog.WarnContext(ctx, "Feedback handling failed", "user_id", userID, "error", err)
	}
}
