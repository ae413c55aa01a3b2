package slack

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/deebugger/retrobot/internal/domain"
	"github.com/deebugger/retrobot/internal/platform/correlation"
)

// Dispatcher consumes socket-mode events and routes them to the retro
// service: app mentions become commands, direct messages become feedback.
type Dispatcher struct {
	socket    *socketmode.Client
	svc       domain.RetroService
	botUserID string

	connected atomic.Bool
}

func NewDispatcher(socket *socketmode.Client, svc domain.RetroService, botUserID string) *Dispatcher {
	return &Dispatcher{
		socket:    socket,
		svc:       svc,
		botUserID: botUserID,
	}
}

// Ready reports whether the socket-mode connection is established; the HTTP
// readiness probe checks this.
func (d *Dispatcher) Ready() bool {
	return d.connected.Load()
}

// Run starts the event consumer and blocks on the socket-mode connection
// until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	go d.consume(ctx)
	return d.socket.RunContext(ctx)
}

func (d *Dispatcher) consume(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-d.socket.Events:
			if !ok {
				return
			}
			d.handle(ctx, evt)
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnected:
		d.connected.Store(true)
		slog.Info("Connected to Slack in socket mode")
	case socketmode.EventTypeConnectionError:
		d.connected.Store(false)
		slog.Warn("Slack connection error, socket mode will reconnect")
	case socketmode.EventTypeEventsAPI:
		apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			return
		}
		// ack before handling: Slack redelivers unacked events, and command
		// handling can take longer than the ack deadline
		if evt.Request != nil {
			d.socket.Ack(*evt.Request)
		}
		d.route(ctx, apiEvent)
	}
}

func (d *Dispatcher) route(ctx context.Context, apiEvent slackevents.EventsAPIEvent) {
	ctx = correlation.WithID(ctx, correlation.NewID())

	switch ev := apiEvent.InnerEvent.Data.(type) {
	case *slackevents.AppMentionEvent:
		d.handleMention(ctx, ev)
	case *slackevents.MessageEvent:
		d.handleMessage(ctx, ev)
	}
}

// handleMention executes channel commands. Mentions inside direct messages
// are ignored; commands only make sense in the retro channel.
func (d *Dispatcher) handleMention(ctx context.Context, ev *slackevents.AppMentionEvent) {
	parsed := parseIntent(ev.Text, d.botUserID)
	if parsed.kind == intentNone {
		return
	}

	slog.DebugContext(ctx, "Handling command",
		"channel_id", ev.Channel,
		"user_id", ev.User,
	)

	var err error
	switch parsed.kind {
	case intentStart:
		err = d.svc.Start(ctx, ev.Channel)
	case intentStop:
		err = d.svc.Stop(ctx, ev.Channel)
	case intentSum:
		err = d.svc.Summarize(ctx, ev.Channel, parsed.limit)
	case intentHelp:
		err = d.svc.Help(ctx, ev.Channel)
	case intentWakeUp:
		err = d.svc.WakeUp(ctx, ev.Channel)
	case intentStatus:
		err = d.svc.Status(ctx, ev.Channel)
	case intentChannels:
		err = d.svc.Channels(ctx, ev.Channel)
	case intentTerminate:
		err = d.svc.Terminate(ctx, ev.Channel)
	}
	if err != nil {
		slog.ErrorContext(ctx, "Command failed", "channel_id", ev.Channel, "error", err)
	}
}

// handleMessage routes direct messages: plain messages are submissions, edits
// update the original entry via the shared key, deletions remove it. Channel
// traffic and bot echoes are ignored here.
func (d *Dispatcher) handleMessage(ctx context.Context, ev *slackevents.MessageEvent) {
	if ev.ChannelType != "im" {
		return
	}

	var err error
	switch ev.SubType {
	case "message_changed":
		edited := ev.Message
		if edited == nil || edited.User == "" || edited.User == d.botUserID || edited.BotID != "" {
			return
		}
		err = d.svc.EditFeedback(ctx, edited.User, edited.TimeStamp, edited.Text)
	case "message_deleted":
		prev := ev.PreviousMessage
		if prev == nil || prev.User == "" || prev.User == d.botUserID {
			return
		}
		err = d.svc.DeleteFeedback(ctx, prev.User, ev.DeletedTimeStamp)
	case "":
		if ev.User == "" || ev.User == d.botUserID || ev.BotID != "" {
			return
		}
		err = d.svc.SubmitFeedback(ctx, ev.User, ev.TimeStamp, ev.Text)
	}
	if err != nil {
		slog.ErrorContext(ctx, "Feedback handling failed", "user_id", ev.User, "error", err)
	}
}
