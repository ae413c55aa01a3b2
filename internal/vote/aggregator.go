// Package vote turns tracked reveal messages plus their reaction counts into
// the ranked, size-bounded summary printed at the end of a session.
package vote

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/deebugger/retrobot/internal/domain"
	"github.com/deebugger/retrobot/internal/metrics"
)

// DefaultLimit is the summary size when `sum` is called without a valid limit.
const DefaultLimit = 3

// Item is one entry of the final summary.
type Item struct {
	Text  string
	Votes int
}

// counter is the single Messenger method the aggregator needs.
type counter interface {
	VoteCount(ctx context.Context, ref domain.MessageRef) (int, error)
}

// Aggregator polls reaction counts and ranks the voted items.
type Aggregator struct {
	counts counter
}

func NewAggregator(counts counter) *Aggregator {
	return &Aggregator{counts: counts}
}

// Summarize fetches the current vote count of every tracked message and
// returns the ranked summary. A failed count fetch degrades that one message
// to zero votes; it never fails the whole summary.
//
// The voted list is truncated to limit in discovery order BEFORE sorting, so
// the result is the first limit voted items by reveal order, not necessarily
// the global top-limit by count.
func (a *Aggregator) Summarize(ctx context.Context, tracked []domain.TrackedMessage, limit int) []Item {
	if limit < 1 {
		limit = DefaultLimit
	}

	voted := make([]Item, 0, len(tracked))
	for _, msg := range tracked {
		count, err := a.counts.VoteCount(ctx, msg.Ref)
		if err != nil {
			slog.WarnContext(ctx, "Vote count fetch failed, treating as zero votes",
				"channel_id", msg.Ref.ChannelID,
				"timestamp", msg.Ref.Timestamp,
				"error", err,
			)
			metrics.VoteFetchFailures.Inc()
			continue
		}
		if count == 0 {
			continue
		}
		voted = append(voted, Item{Text: msg.Text, Votes: count})
	}

	return Rank(voted, limit)
}

// Rank truncates the discovery-ordered voted list to limit, then stable-sorts
// it descending by vote count so ties keep their reveal order.
func Rank(voted []Item, limit int) []Item {
	if limit < 1 {
		limit = DefaultLimit
	}
	if len(voted) > limit {
		voted = voted[:limit]
	}
	out := make([]Item, len(voted))
	copy(out, voted)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Votes > out[j].Votes })
	return out
}

// Render formats one summary line: the vote marker repeated per vote, then the text.
func Render(it Item) string {
	return strings.Repeat(":+1:", it.Votes) + " " + it.Text
}
