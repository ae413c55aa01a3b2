// Package app provides the application service layer.
//
// Orchestrates the retro use cases: session start/stop/summarize/terminate,
// status reporting, and routing of direct-message feedback. Sits between the
// command dispatcher and the session registry. Depends on domain interfaces,
// not concrete implementations.
package app
