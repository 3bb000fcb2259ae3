package monitor

import "time"

// MonitorMessage is a standardized observability packet. It is emitted by
// the turn coordinator whenever a turn produces a reply (including
// reminder turns the session manager starts), so different monitors can
// display or record it without coupling to graph/turn internals.
type MonitorMessage struct {
	Timestamp   time.Time // When the event occurred
	MessageType string    // "USER" or "ASSISTANT"
	SessionID   string    // Session the message belongs to
	Content     string    // Text content of the message
}

// Monitor defines the lifecycle and message consumption protocol for
// observability plugins. Implementations are responsible for presenting
// the internal message flow to the administrator or end-user.
type Monitor interface {
	// Start initiates the monitoring session and allocates display resources
	// (e.g., clearing the terminal or opening a file handle).
	Start() error

	// Stop gracefully terminates the monitor and releases held resources.
	Stop() error

	// OnMessage receives and displays a monitoring message
	OnMessage(msg MonitorMessage)
}

// SetupEnvironment initializes the global logger at levelStr, prints the
// startup banner, and returns the default CLI monitor for terminal
// visualization. This simplifies the main bootstrap sequence.
func SetupEnvironment(levelStr string) Monitor {
	PrintBanner()
	SetupSlog(levelStr)
	return NewCLIMonitor()
}
