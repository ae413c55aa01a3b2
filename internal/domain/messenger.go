package domain

import "context"

// MessageRef is an opaque handle to a posted chat message, sufficient to poll
// its reactions later.
type MessageRef struct {
	ChannelID string
	Timestamp string
}

// TrackedMessage is a "needs improvement" item re-posted during the reveal
// step specifically so it can receive votes.
type TrackedMessage struct {
	Ref  MessageRef
	Text string
}

// Messenger is the boundary to the chat platform. The core never imports the
// Slack SDK; it talks to this interface and the adapter owns all wire details.
type Messenger interface {
	// BotUserID returns the bot's own platform user ID, used to address the
	// bot in help text and to skip it when building rosters.
	BotUserID() string

	// ListMembers returns the user IDs of all members of a channel.
	ListMembers(ctx context.Context, channelID string) ([]string, error)

	// ResolveParticipant checks a user's eligibility (present, not in a
	// do-not-disturb window) and resolves their display name. ok is false for
	// ineligible users; err is reserved for lookup failures.
	ResolveParticipant(ctx context.Context, userID string) (p Participant, ok bool, err error)

	// Notify posts a message to a conversation (a channel ID or a user ID for
	// a direct message). Fire-and-forget per recipient: failures are reported
	// but callers must not let one recipient's failure abort a fan-out.
	Notify(ctx context.Context, conversationID, text string) error

	// PostAndTrack posts a message to a channel and returns its handle so it
	// can later be polled for votes.
	PostAndTrack(ctx context.Context, channelID, text string) (MessageRef, error)

	// VoteCount returns the current +1-style reaction count on a message.
	VoteCount(ctx context.Context, ref MessageRef) (int, error)
}

// RetroService is the application layer contract. The command dispatcher
// resolves chat events to intents and routes every operation through here.
type RetroService interface {
	Start(ctx context.Context, channelID string) error
	Stop(ctx context.Context, channelID string) error
	Summarize(ctx context.Context, channelID string, limit int) error
	Terminate(ctx context.Context, channelID string) error
	Status(ctx context.Context, channelID string) error
	Channels(ctx context.Context, channelID string) error
	Help(ctx context.Context, channelID string) error
	WakeUp(ctx context.Context, channelID string) error

	SubmitFeedback(ctx context.Context, userID, messageID, text string) error
	EditFeedback(ctx context.Context, userID, messageID, text string) error
	DeleteFeedback(ctx context.Context, userID, messageID string) error
}
