package domain

import "strings"

// Category is the feedback pile an item belongs to.
type Category string

const (
	WorkedWell       Category = "worked_well"
	NeedsImprovement Category = "needs_improvement"
)

// Sigil returns the leading character users type for this category.
func (c Category) Sigil() string {
	if c == WorkedWell {
		return "+"
	}
	return "-"
}

// Participant is a user enrolled in a session's roster.
type Participant struct {
	UserID string
	Name   string
}

// Feedback is one stored feedback item, already classified and sigil-stripped.
type Feedback struct {
	UserID   string
	UserName string
	Category Category
	Text     string
}

// Classified is the result of classifying a raw feedback line.
type Classified struct {
	Category Category
	Body     string
}

// ClassifyFeedback decides whether a raw text line is valid feedback and which
// category it belongs to. Rules, in order: the input must not be empty or
// whitespace-only; the first non-whitespace character must be '+' (worked well)
// or '-' (needs improvement); the remainder after the sigil must be non-empty
// once trimmed; multi-line input is rejected outright, not split.
//
// This is the sole place where "what counts as feedback" is decided. Both
// initial submissions and edits go through it.
func ClassifyFeedback(raw string) (Classified, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Classified{}, false
	}
	if strings.ContainsRune(trimmed, '\n') {
		return Classified{}, false
	}

	var category Category
	switch trimmed[0] {
	case '+':
		category = WorkedWell
	case '-':
		category = NeedsImprovement
	default:
		return Classified{}, false
	}

	body := strings.TrimSpace(trimmed[1:])
	if body == "" {
		return Classified{}, false
	}

	return Classified{Category: category, Body: body}, true
}

// FeedbackKey derives the composite store key for a feedback item. Submit,
// edit, and delete all share this derivation; an edit recomputes the same key
// as the original message and overwrites it instead of creating a duplicate.
func FeedbackKey(userID, messageID string) string {
	return userID + "-" + messageID
}
