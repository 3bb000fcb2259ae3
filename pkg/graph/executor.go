package graph

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"aurelia/pkg/message"
)

// maxNodeRetries bounds wasted work on a node that keeps returning
// success=false. The reference implementation used both 5 and 10 in
// different places; 10 is the authoritative value.
const maxNodeRetries = 10

// Snapshotter persists a labelled state snapshot. Implemented by
// statelog.Sink; kept as an interface here so the executor's tests can
// substitute a recording fake without touching the filesystem.
type Snapshotter interface {
	Snapshot(sessionID string, state State, label string)
}

// Timer records per-node wall-clock duration. Implemented by
// pkg/monitor's prometheus histogram wrapper.
type Timer interface {
	ObserveNodeDuration(node string, d time.Duration)
}

// Executor drives a State through named node handlers.
type Executor struct {
	nodes  map[string]NodeInfo
	sink   Snapshotter
	timer  Timer
}

// NewExecutor builds an Executor over a fixed node catalog. nodes is
// typically registry.Registry.ListAll() captured once at startup.
func NewExecutor(nodes map[string]NodeInfo, sink Snapshotter, timer Timer) *Executor {
	return &Executor{nodes: nodes, sink: sink, timer: timer}
}

// Run drives initial through the node graph until a node sets
// NextNode to Terminator, then returns the final state. sessionID
// scopes state-log snapshots to the calling session.
func (e *Executor) Run(ctx context.Context, sessionID string, initial State) State {
	state := initial
	current := UnifiedDecisionNode

	for {
		if current == Terminator {
			state.Success = true
			return state
		}

		info, ok := e.nodes[current]
		if !ok {
			state.Success = false
			state.Error = fmt.Sprintf("graph: unknown node %q", current)
			return state
		}

		preCall := state.Clone()

		result, done := e.runWithRetry(ctx, sessionID, info, preCall)
		state = result
		if done && !state.Success {
			return state
		}

		current = state.NextNode
	}
}

// runWithRetry invokes info.Handler, validating its output and
// retrying on failure up to maxNodeRetries, restoring preCall on
// exhaustion. done reports whether the executor should stop (a
// structural failure, or retries exhausted); when done is false the
// caller should continue the loop using the returned state's NextNode.
func (e *Executor) runWithRetry(ctx context.Context, sessionID string, info NodeInfo, preCall State) (State, bool) {
	for attempt := 0; attempt < maxNodeRetries; attempt++ {
		start := time.Now()
		out, err := info.Handler(ctx, preCall)
		elapsed := time.Since(start)
		if e.timer != nil {
			e.timer.ObserveNodeDuration(info.Name, elapsed)
		}

		if err != nil {
			out.Success = false
			if out.Error == "" {
				out.Error = err.Error()
			}
		}

		if verr := message.ValidateAll(out.Messages); verr != nil {
			slog.Warn("graph: structural validation failed, rolling back", "node", info.Name, "error", verr)
			failed := preCall
			failed.Success = false
			failed.Error = verr.Error()
			return failed, true
		}

		if out.Success {
			e.snapshot(sessionID, out, info.Name)
			return out, false
		}

		slog.Warn("graph: node returned failure, retrying", "node", info.Name, "attempt", attempt+1, "max", maxNodeRetries, "error", out.Error)

		rolledBack := preCall
		rolledBack.Error = out.Error
		preCall = rolledBack
	}

	failed := preCall
	failed.Success = false
	e.snapshot(sessionID, failed, info.Name+"_failed")
	return failed, true
}

func (e *Executor) snapshot(sessionID string, state State, label string) {
	if e.sink == nil {
		return
	}
	e.sink.Snapshot(sessionID, state, label)
}
