// Package push declares the real-time push channel the core produces
// events on and the transport delivers. The transport itself —
// WebSocket/HTTPS framing, delivery retries — is out of scope; this
// package is the interface plus two reference adapters.
package push

import "context"

// Channel is the core-facing event surface. Every method corresponds
// to one of the three push events a running session can emit.
type Channel interface {
	// VoiceFileReady announces one synthesized speech fragment is
	// ready for a given session, in delivery order.
	VoiceFileReady(ctx context.Context, filename string, index int, isLast bool, targetSessionID string) error

	// InactivityReminder delivers a reminder pipeline's response to
	// the session it was armed for.
	InactivityReminder(ctx context.Context, targetSessionID, response string) error

	// SessionActivated announces a session became the active one.
	SessionActivated(ctx context.Context, sessionID string) error
}
