// Package memory declares the long-term memory store contract the
// unified decision node consumes. The extraction/compression pipeline
// and the vector store behind a concrete implementation are external
// collaborators, out of scope here — this package is the interface
// only.
package memory

import "context"

// Order controls how RecentConversations sorts its results.
type Order string

const (
	OrderOldestFirst Order = "oldest_first"
	OrderNewestFirst Order = "newest_first"
)

// ConversationMetadata carries the bookkeeping the decision node's
// prompt assembly needs about one past conversation.
type ConversationMetadata struct {
	StartTime   string
	EndTime     string
	Participant string
}

// Conversation is one completed, summarized past conversation.
type Conversation struct {
	Text     string
	Metadata ConversationMetadata
}

// Sender discriminates who produced a persisted conversation message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Store is the long-term memory collaborator. Every method is
// best-effort: absence of data is not an error, and a failure here
// must never fail the turn that triggered it.
type Store interface {
	// LoadLatestMemorySnapshot returns a best-effort textual dump of
	// long-term memory. ok=false means "no snapshot yet" (first
	// conversation), not an error.
	LoadLatestMemorySnapshot(ctx context.Context) (snapshot string, ok bool)

	// RecentConversations returns up to limit most recently completed
	// conversations in the requested order.
	RecentConversations(ctx context.Context, limit int, order Order) ([]Conversation, error)

	// AppendConversationMessage appends one message to the session's
	// append-only transcript.
	AppendConversationMessage(ctx context.Context, sessionID string, sender Sender, text string, extras map[string]any) error
}

// Searcher is the memory_search tool node's external collaborator: a
// semantic/episodic lookup over whatever store backs long-term memory.
// Kept separate from Store because a search-by-query call has no
// equivalent among Store's three operations — it is the
// tool-node-facing surface of the same out-of-scope vector store.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}
