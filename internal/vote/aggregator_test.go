package vote

import (
	"context"
	"fmt"
	"testing"

	"github.com/deebugger/retrobot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCounter struct {
	counts map[string]int
	errs   map[string]error
}

func (m *mockCounter) VoteCount(_ context.Context, ref domain.MessageRef) (int, error) {
	if err, ok := m.errs[ref.Timestamp]; ok {
		return 0, err
	}
	return m.counts[ref.Timestamp], nil
}

func tracked(texts ...string) []domain.TrackedMessage {
	out := make([]domain.TrackedMessage, 0, len(texts))
	for i, text := range texts {
		out = append(out, domain.TrackedMessage{
			Ref:  domain.MessageRef{ChannelID: "C1", Timestamp: fmt.Sprintf("ts%d", i)},
			Text: text,
		})
	}
	return out
}

func TestSummarize_TruncatesBeforeSorting(t *testing.T) {
	// counts in tracked order: [5, 0, 2, 7] with limit 3: the zero-vote entry
	// is dropped, the remaining [5, 2, 7] survive truncation, and the sort
	// yields [7, 5, 2].
	counter := &mockCounter{counts: map[string]int{"ts0": 5, "ts1": 0, "ts2": 2, "ts3": 7}}
	agg := NewAggregator(counter)

	got := agg.Summarize(context.Background(), tracked("a", "b", "c", "d"), 3)

	require.Len(t, got, 3)
	assert.Equal(t, []Item{{Text: "d", Votes: 7}, {Text: "a", Votes: 5}, {Text: "c", Votes: 2}}, got)
}

func TestSummarize_TruncationCanHideTopVoted(t *testing.T) {
	// Five voted items with limit 3: only the first three by reveal order are
	// eligible, even though ts3/ts4 have more votes. Preserved behavior.
	counter := &mockCounter{counts: map[string]int{"ts0": 1, "ts1": 2, "ts2": 3, "ts3": 9, "ts4": 8}}
	agg := NewAggregator(counter)

	got := agg.Summarize(context.Background(), tracked("a", "b", "c", "d", "e"), 3)

	require.Len(t, got, 3)
	assert.Equal(t, []Item{{Text: "c", Votes: 3}, {Text: "b", Votes: 2}, {Text: "a", Votes: 1}}, got)
}

func TestSummarize_FetchFailureTreatedAsZero(t *testing.T) {
	counter := &mockCounter{
		counts: map[string]int{"ts0": 4, "ts2": 2},
		errs:   map[string]error{"ts1": fmt.Errorf("reactions.get: upstream unavailable")},
	}
	agg := NewAggregator(counter)

	got := agg.Summarize(context.Background(), tracked("a", "b", "c"), 3)

	require.Len(t, got, 2)
	assert.Equal(t, []Item{{Text: "a", Votes: 4}, {Text: "c", Votes: 2}}, got)
}

func TestSummarize_DefaultLimit(t *testing.T) {
	counter := &mockCounter{counts: map[string]int{"ts0": 1, "ts1": 2, "ts2": 3, "ts3": 4, "ts4": 5}}
	agg := NewAggregator(counter)

	for _, limit := range []int{0, -1, -99} {
		got := agg.Summarize(context.Background(), tracked("a", "b", "c", "d", "e"), limit)
		assert.Len(t, got, DefaultLimit, "limit %d should fall back to default", limit)
	}
}

func TestSummarize_NoTrackedMessages(t *testing.T) {
	agg := NewAggregator(&mockCounter{})
	got := agg.Summarize(context.Background(), nil, 3)
	assert.Empty(t, got)
}

func TestRank_StableOnTies(t *testing.T) {
	voted := []Item{{Text: "first", Votes: 2}, {Text: "second", Votes: 2}, {Text: "third", Votes: 5}}
	got := Rank(voted, 3)
	assert.Equal(t, []Item{{Text: "third", Votes: 5}, {Text: "first", Votes: 2}, {Text: "second", Votes: 2}}, got)
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	voted := []Item{{Text: "a", Votes: 1}, {Text: "b", Votes: 9}}
	_ = Rank(voted, 2)
	assert.Equal(t, "a", voted[0].Text)
}

func TestRender(t *testing.T) {
	assert.Equal(t, ":+1::+1::+1: flaky tests", Render(Item{Text: "flaky tests", Votes: 3}))
	assert.Equal(t, ":+1: single vote", Render(Item{Text: "single vote", Votes: 1}))
}
