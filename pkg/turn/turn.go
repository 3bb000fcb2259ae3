// Package turn implements the turn coordinator: the entry point that
// builds a turn's initial state, drives the graph executor, persists
// the conversation, and returns the public result.
package turn

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"aurelia/pkg/decision"
	"aurelia/pkg/graph"
	"aurelia/pkg/memory"
	"aurelia/pkg/message"
	"aurelia/pkg/monitor"
	"aurelia/pkg/registry"
)

// Result is handle_turn's public return value.
type Result struct {
	Response          string
	InactivityTimeout int
	Success           bool
}

// Flags carries the boolean turn modifiers passed alongside
// session_id/text/files.
type Flags struct {
	IsAutoResponse     bool
	IsInactivityRemind bool
}

// Coordinator holds everything handle_turn needs across calls:
// the node registry (for seeding available_nodes), the graph executor,
// the memory store, and the per-session state carried between turns so
// the transcript accumulates from one call to the next.
type Coordinator struct {
	Registry       *registry.Registry
	Executor       *graph.Executor
	Sink           graph.Snapshotter
	Store          memory.Store
	Monitor        monitor.Monitor
	DefaultTimeout int

	// HistorySummarizeThreshold/HistoryKeepRecentCount/HistoryMaxChars
	// bound the per-session message cache HandleTurn carries forward
	// between calls, so a long-running session's prompt doesn't grow
	// without limit. Zero disables trimming. The full transcript still
	// reaches the memory collaborator via persist regardless.
	HistorySummarizeThreshold int
	HistoryKeepRecentCount    int
	HistoryMaxChars           int
	HistoryMaxTokens          int

	mu       sync.Mutex
	sessions map[string]graph.State
}

// New builds a Coordinator. defaultTimeout is used when a turn fails
// before the decision node can choose one.
func New(reg *registry.Registry, exec *graph.Executor, sink graph.Snapshotter, store memory.Store, defaultTimeout int) *Coordinator {
	return &Coordinator{
		Registry:       reg,
		Executor:       exec,
		Sink:           sink,
		Store:          store,
		DefaultTimeout: defaultTimeout,
		sessions:       make(map[string]graph.State),
	}
}

// HandleTurn implements handle_turn(session_id, text, files, flags).
func (c *Coordinator) HandleTurn(ctx context.Context, sessionID, text string, files []message.FileDescriptor, flags Flags) Result {
	state := c.seedState(sessionID)
	state.IsAutoResponse = flags.IsAutoResponse
	state.IsInactivityRemind = flags.IsInactivityRemind
	state.Success = false
	state.Error = ""

	ctx = decision.WithTurnInputs(ctx, decision.TurnInputs{Text: text, Files: files})

	result := c.Executor.Run(ctx, sessionID, state)

	if verr := message.ValidateAll(result.Messages); verr != nil {
		slog.Warn("turn: final message validation failed", "session", sessionID, "error", verr)
	}

	if result.Response != "" {
		c.persist(ctx, sessionID, text, result.Response)
		c.notify(sessionID, text, result.Response)
	}

	result = c.trimHistory(sessionID, result)
	c.saveState(sessionID, result)

	if c.Sink != nil {
		c.Sink.Snapshot(sessionID, result, "turn_final")
	}

	timeout := result.InactivityTimeout
	if !result.Success && timeout == 0 {
		timeout = c.DefaultTimeout
	}

	return Result{Response: result.Response, InactivityTimeout: timeout, Success: result.Success}
}

// seedState returns the session's carried-over state, or a fresh one
// seeded with the public node catalog.
func (c *Coordinator) seedState(sessionID string) graph.State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.sessions[sessionID]; ok {
		return s
	}
	return graph.State{AvailableNodes: c.Registry.ListPublic()}
}

func (c *Coordinator) saveState(sessionID string, s graph.State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[sessionID] = s
}

// trimHistory bounds the carried-forward message cache once it passes
// HistorySummarizeThreshold, keeping only the most recent
// HistoryKeepRecentCount messages (further bounded by HistoryMaxChars,
// if set). This is a sliding window, not real summarization: the
// dropped messages are gone from the next turn's prompt assembly, but
// the full transcript still reached the memory store via persist.
// HistorySummarizeThreshold <= 0 disables trimming entirely.
func (c *Coordinator) trimHistory(sessionID string, s graph.State) graph.State {
	if c.HistorySummarizeThreshold <= 0 || len(s.Messages) <= c.HistorySummarizeThreshold {
		return s
	}

	keep := c.HistoryKeepRecentCount
	if keep <= 0 || keep > len(s.Messages) {
		keep = len(s.Messages)
	}
	window := s.Messages[len(s.Messages)-keep:]
	if maxChars := effectiveMaxChars(c.HistoryMaxChars, c.HistoryMaxTokens); maxChars > 0 {
		window = capMessagesByChars(window, maxChars)
	}

	dropped := len(s.Messages) - len(window)
	if dropped > 0 {
		slog.Info("turn: trimmed session transcript cache", "session", sessionID, "kept", len(window), "dropped", dropped)
	}
	s.Messages = append([]message.Message(nil), window...)
	return s
}

// charsPerTokenEstimate approximates HistoryMaxTokens in characters.
// The original token bound comes from actual LLM-reported usage, which
// the turn coordinator has no access to once a turn has finished; this
// is a rough stand-in, not a tokenizer.
const charsPerTokenEstimate = 4

// effectiveMaxChars combines HistoryMaxChars with a HistoryMaxTokens
// estimate and returns the tighter of the two non-zero bounds, or 0 if
// neither is set.
func effectiveMaxChars(maxChars, maxTokens int) int {
	estimate := maxTokens * charsPerTokenEstimate
	switch {
	case maxChars <= 0:
		return estimate
	case estimate <= 0:
		return maxChars
	case estimate < maxChars:
		return estimate
	default:
		return maxChars
	}
}

// capMessagesByChars drops the oldest messages in msgs until the
// remaining tail's combined text fits within maxChars.
func capMessagesByChars(msgs []message.Message, maxChars int) []message.Message {
	total := 0
	for i := len(msgs) - 1; i >= 0; i-- {
		total += len(msgs[i].GetText())
		if total > maxChars {
			return msgs[i+1:]
		}
	}
	return msgs
}

// persist appends the user turn and the assistant turn to the
// append-only conversation log. Best-effort: a memory-store failure
// never fails the turn that triggered it.
func (c *Coordinator) persist(ctx context.Context, sessionID, text, response string) {
	if c.Store == nil {
		return
	}
	if err := c.Store.AppendConversationMessage(ctx, sessionID, memory.SenderUser, text, nil); err != nil {
		slog.Warn("turn: failed to persist user turn", "session", sessionID, "error", err)
	}
	if err := c.Store.AppendConversationMessage(ctx, sessionID, memory.SenderAssistant, response, nil); err != nil {
		slog.Warn("turn: failed to persist assistant turn", "session", sessionID, "error", err)
	}
}

// notify forwards the turn to the attached Monitor, if any, for
// terminal/log visualization. A no-op when Monitor is nil.
func (c *Coordinator) notify(sessionID, text, response string) {
	if c.Monitor == nil {
		return
	}
	now := time.Now()
	if text != "" {
		c.Monitor.OnMessage(monitor.MonitorMessage{Timestamp: now, MessageType: "USER", SessionID: sessionID, Content: text})
	}
	c.Monitor.OnMessage(monitor.MonitorMessage{Timestamp: now, MessageType: "ASSISTANT", SessionID: sessionID, Content: response})
}
