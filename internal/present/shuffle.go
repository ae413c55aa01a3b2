// Package present holds the display-ordering policy for the reveal step:
// feedback is shuffled once per category so submission order never implies
// authorship or priority.
package present

import "math/rand/v2"

// Shuffle permutes items in place using the given source. The source is
// injected so tests can pin a seed; production seeds from entropy at startup.
// Randomness here only needs to break stable ordering, nothing stronger.
func Shuffle[T any](r *rand.Rand, items []T) {
	r.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}
