// Package domain defines the core domain types and interfaces.
//
// This package contains concept-oriented files (feedback.go, phase.go, messenger.go, ...)
// with shared types and cross-cutting interfaces. No implementation code - just contracts
// and pure functions. Keeping interfaces here prevents circular imports between the
// application layer and the Slack adapter.
package domain
