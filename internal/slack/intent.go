package slack

import (
	"strconv"
	"strings"
)

type intentKind int

const (
	intentNone intentKind = iota
	intentStart
	intentStop
	intentSum
	intentHelp
	intentWakeUp
	intentStatus
	intentChannels
	intentTerminate
)

// intent is a parsed channel command: what the user asked for and, for sum,
// the requested summary size (0 when absent or not a positive integer).
type intent struct {
	kind  intentKind
	limit int
}

// parseIntent maps the text of a direct bot mention to an intent. Commands
// must directly address the bot; anything else is ignored rather than
// answered, so casual mentions don't trigger the bot.
func parseIntent(text, botUserID string) intent {
	trimmed := strings.TrimSpace(text)
	mention := "<@" + botUserID + ">"
	if !strings.HasPrefix(trimmed, mention) {
		return intent{kind: intentNone}
	}

	command := strings.TrimSpace(strings.TrimPrefix(trimmed, mention))
	lowered := strings.ToLower(command)

	switch {
	case lowered == "start":
		return intent{kind: intentStart}
	case lowered == "stop":
		return intent{kind: intentStop}
	case lowered == "sum" || strings.HasPrefix(lowered, "sum "):
		return intent{kind: intentSum, limit: parseSumLimit(command)}
	case lowered == "help":
		return intent{kind: intentHelp}
	case lowered == "wake up" || lowered == "wakeup":
		return intent{kind: intentWakeUp}
	case lowered == "status":
		return intent{kind: intentStatus}
	case lowered == "channels":
		return intent{kind: intentChannels}
	case lowered == "terminate session":
		return intent{kind: intentTerminate}
	default:
		return intent{kind: intentNone}
	}
}

// parseSumLimit extracts the optional [N] from "sum [N]". Missing, non-numeric
// or non-positive values yield 0, which the service replaces with its default.
func parseSumLimit(command string) int {
	rest := strings.TrimSpace(command[len("sum"):])
	if rest == "" {
		return 0
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0
	}
	return n
}
