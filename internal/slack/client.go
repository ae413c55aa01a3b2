// Package slack adapts the chat-platform boundary to the Slack Web API and
// socket mode. It owns every wire detail: roster lookups, message delivery
// with retry and rate limiting, reaction polling behind a circuit breaker,
// and the event dispatcher that maps Slack events to retro intents.
package slack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/jonboulle/clockwork"
	"github.com/slack-go/slack"
	"golang.org/x/time/rate"

	"github.com/deebugger/retrobot/internal/domain"
	"github.com/deebugger/retrobot/internal/metrics"
	"github.com/deebugger/retrobot/internal/platform/retry"
)

const voteEmoji = "+1"

// api is the slice of slack.Client this adapter uses, extracted so tests can
// fake the Web API without a network.
type api interface {
	AuthTestContext(ctx context.Context) (*slack.AuthTestResponse, error)
	GetUsersInConversationContext(ctx context.Context, params *slack.GetUsersInConversationParameters) ([]string, string, error)
	GetUserPresenceContext(ctx context.Context, userID string) (*slack.UserPresence, error)
	GetDNDInfoContext(ctx context.Context, userID *string) (*slack.DNDStatus, error)
	GetUserInfoContext(ctx context.Context, userID string) (*slack.User, error)
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	GetReactionsContext(ctx context.Context, item slack.ItemRef, params slack.GetReactionsParameters) ([]slack.ItemReaction, error)
}

// Client implements domain.Messenger on top of the Slack Web API.
type Client struct {
	api       api
	botUserID string
	clock     clockwork.Clock

	// limiter paces chat.postMessage calls; Slack throttles them per channel.
	limiter *rate.Limiter
	policy  retry.Policy

	// breaker guards reactions.get during summarization so a degraded Slack
	// API degrades single messages to zero votes instead of hanging the bot.
	breaker circuitbreaker.CircuitBreaker[int]
}

var _ domain.Messenger = (*Client)(nil)

// NewClient authenticates against Slack and returns the messenger adapter.
func NewClient(ctx context.Context, api api, clock clockwork.Clock, notifyRate float64, notifyBurst int) (*Client, error) {
	identity, err := api.AuthTestContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("slack auth test failed: %w", err)
	}

	c := &Client{
		api:       api,
		botUserID: identity.UserID,
		clock:     clock,
		limiter:   rate.NewLimiter(rate.Limit(notifyRate), notifyBurst),
		policy: retry.Policy{
			MaxAttempts:      3,
			InitialBackoff:   250 * time.Millisecond,
			RateLimitBackoff: 2 * time.Second,
			Clock:            clock,
			OnRetry: func(attempt int, err error, backoff time.Duration) {
				slog.Debug("Retrying Slack call", "attempt", attempt, "backoff", backoff, "error", err)
			},
		},
		breaker: newReactionsBreaker(),
	}
	return c, nil
}

func newReactionsBreaker() circuitbreaker.CircuitBreaker[int] {
	return circuitbreaker.NewBuilder[int]().
		WithFailureRateThreshold(0.6, 5, 10*time.Second).
		WithDelay(30 * time.Second).
		WithSuccessThreshold(1).
		OnStateChanged(func(e circuitbreaker.StateChangedEvent) {
			slog.Warn("Circuit breaker state changed",
				"component", "slack_reactions",
				"from", e.OldState.String(),
				"to", e.NewState.String(),
			)
			metrics.CircuitBreakerStateChanges.WithLabelValues("slack_reactions", e.NewState.String()).Inc()
			metrics.CircuitBreakerState.WithLabelValues("slack_reactions").Set(breakerStateValue(e.NewState))
		}).
		Build()
}

func breakerStateValue(s circuitbreaker.State) float64 {
	switch s {
	case circuitbreaker.ClosedState:
		return 0
	case circuitbreaker.HalfOpenState:
		return 1
	case circuitbreaker.OpenState:
		return 2
	default:
		return -1
	}
}

func (c *Client) BotUserID() string {
	return c.botUserID
}

// ListMembers pages through conversations.members for the channel.
func (c *Client) ListMembers(ctx context.Context, channelID string) ([]string, error) {
	var members []string
	cursor := ""
	for {
		page, next, err := c.api.GetUsersInConversationContext(ctx, &slack.GetUsersInConversationParameters{
			ChannelID: channelID,
			Cursor:    cursor,
			Limit:     200,
		})
		if err != nil {
			return nil, fmt.Errorf("conversations.members failed for %s: %w", channelID, err)
		}
		members = append(members, page...)
		if next == "" {
			return members, nil
		}
		cursor = next
	}
}

// ResolveParticipant implements the roster eligibility check: the user must
// not be inside a do-not-disturb window and must currently be active. Eligible
// users are resolved to their display name.
func (c *Client) ResolveParticipant(ctx context.Context, userID string) (domain.Participant, bool, error) {
	dnd, err := c.api.GetDNDInfoContext(ctx, &userID)
	if err != nil {
		return domain.Participant{}, false, fmt.Errorf("dnd.info failed for %s: %w", userID, err)
	}
	if dndActive(dnd, c.clock.Now()) {
		return domain.Participant{}, false, nil
	}

	presence, err := c.api.GetUserPresenceContext(ctx, userID)
	if err != nil {
		return domain.Participant{}, false, fmt.Errorf("users.getPresence failed for %s: %w", userID, err)
	}
	if presence.Presence != "active" {
		return domain.Participant{}, false, nil
	}

	info, err := c.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return domain.Participant{}, false, fmt.Errorf("users.info failed for %s: %w", userID, err)
	}

	return domain.Participant{UserID: userID, Name: info.Name}, true, nil
}

// dndActive reports whether now falls inside the user's next DND window.
func dndActive(dnd *slack.DNDStatus, now time.Time) bool {
	if dnd == nil || !dnd.Enabled {
		return false
	}
	ts := now.Unix()
	return int64(dnd.NextStartTimestamp) <= ts && ts < int64(dnd.NextEndTimestamp)
}

// Notify posts a message to a channel or user conversation, paced by the rate
// limiter and retried on transient failures.
func (c *Client) Notify(ctx context.Context, conversationID, text string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter interrupted: %w", err)
	}

	return retry.DoVoid(ctx, c.policy, classifySlackError, func() error {
		_, _, err := c.api.PostMessageContext(ctx, conversationID, slack.MsgOptionText(text, false))
		return err
	})
}

// PostAndTrack posts a message and returns the handle needed to poll its
// reactions later.
func (c *Client) PostAndTrack(ctx context.Context, channelID, text string) (domain.MessageRef, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.MessageRef{}, fmt.Errorf("rate limiter interrupted: %w", err)
	}

	return retry.Do(ctx, c.policy, classifySlackError, func() (domain.MessageRef, error) {
		channel, timestamp, err := c.api.PostMessageContext(ctx, channelID, slack.MsgOptionText(text, false))
		if err != nil {
			return domain.MessageRef{}, err
		}
		return domain.MessageRef{ChannelID: channel, Timestamp: timestamp}, nil
	})
}

// VoteCount returns the current :+1: reaction count on a message, going
// through the circuit breaker.
func (c *Client) VoteCount(ctx context.Context, ref domain.MessageRef) (int, error) {
	return failsafe.Get(func() (int, error) {
		reactions, err := c.api.GetReactionsContext(ctx,
			slack.NewRefToMessage(ref.ChannelID, ref.Timestamp),
			slack.NewGetReactionsParameters(),
		)
		if err != nil {
			return 0, fmt.Errorf("reactions.get failed for %s: %w", ref.Timestamp, err)
		}
		return plusOneCount(reactions), nil
	}, c.breaker)
}

// plusOneCount extracts the vote-marker reaction count from a reaction list.
func plusOneCount(reactions []slack.ItemReaction) int {
	for _, r := range reactions {
		if r.Name == voteEmoji {
			return r.Count
		}
	}
	return 0
}

// classifySlackError maps Slack API failures to retry actions: rate limits
// back off longer, permanent API rejections stop immediately, anything else
// is treated as transient.
func classifySlackError(err error) retry.Action {
	var rateLimited *slack.RateLimitedError
	if errors.As(err, &rateLimited) {
		return retry.After
	}

	msg := err.Error()
	for _, permanent := range []string{
		"channel_not_found",
		"user_not_found",
		"is_archived",
		"not_in_channel",
		"invalid_auth",
		"account_inactive",
		"msg_too_long",
	} {
		if strings.Contains(msg, permanent) {
			return retry.Stop
		}
	}
	return retry.Retry
}
