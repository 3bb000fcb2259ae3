package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aurelia/pkg/graph"
	"aurelia/pkg/memory"
	"aurelia/pkg/registry"
	"aurelia/pkg/turn"
)

type noopStore struct{}

func (noopStore) LoadLatestMemorySnapshot(context.Context) (string, bool) { return "", false }
func (noopStore) RecentConversations(context.Context, int, memory.Order) ([]memory.Conversation, error) {
	return nil, nil
}
func (noopStore) AppendConversationMessage(context.Context, string, memory.Sender, string, map[string]any) error {
	return nil
}

type noopSink struct{}

func (noopSink) Snapshot(string, graph.State, string) {}

type recordingPush struct {
	mu        sync.Mutex
	reminders []string
}

func (p *recordingPush) VoiceFileReady(context.Context, string, int, bool, string) error { return nil }
func (p *recordingPush) InactivityReminder(_ context.Context, sessionID, response string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reminders = append(p.reminders, sessionID+":"+response)
	return nil
}
func (p *recordingPush) SessionActivated(context.Context, string) error { return nil }

func (p *recordingPush) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.reminders)
}

func newTestCoordinator(t *testing.T, response string) *turn.Coordinator {
	t.Helper()
	reg := registry.New(graph.UnifiedDecisionNode)
	require.NoError(t, reg.Register(graph.NodeInfo{Name: graph.UnifiedDecisionNode, Handler: func(_ context.Context, s graph.State) (graph.State, error) {
		s.Response = response
		s.NextNode = graph.Terminator
		s.Success = true
		return s, nil
	}}))
	reg.Seal()
	exec := graph.NewExecutor(reg.ListAll(), noopSink{}, nil)
	return turn.New(reg, exec, noopSink{}, noopStore{}, 60)
}

func TestManager_SetActive_CancelsPreviousTimer(t *testing.T) {
	p := &recordingPush{}
	m := New(newTestCoordinator(t, "hi"), p, nil, "")

	m.Arm("session-a", 1)
	m.SetActive("session-b")

	time.Sleep(1200 * time.Millisecond)
	assert.Equal(t, 0, p.count())
}

func TestManager_Arm_FiresReminderAfterDelay(t *testing.T) {
	p := &recordingPush{}
	m := New(newTestCoordinator(t, "you still there?"), p, nil, "")

	m.Arm("session-c", 1)
	time.Sleep(1200 * time.Millisecond)

	require.Equal(t, 1, p.count())
	assert.Equal(t, "session-c:you still there?", p.reminders[0])
}

func TestManager_Arm_NonPositiveSecondsDoesNotArm(t *testing.T) {
	p := &recordingPush{}
	m := New(newTestCoordinator(t, "hi"), p, nil, "")

	m.Arm("session-d", -1)
	time.Sleep(200 * time.Millisecond)
	assert.Nil(t, m.timer)
}

func TestManager_Cancel_PreventsFire(t *testing.T) {
	p := &recordingPush{}
	m := New(newTestCoordinator(t, "hi"), p, nil, "")

	m.Arm("session-e", 1)
	m.Cancel("session-e")

	time.Sleep(1200 * time.Millisecond)
	assert.Equal(t, 0, p.count())
}

func TestManager_OnDisconnect_ClearsActiveSessionWhenMatched(t *testing.T) {
	p := &recordingPush{}
	m := New(newTestCoordinator(t, "hi"), p, nil, "")

	m.Arm("session-f", 5)
	m.BindTransport("transport-1", "session-f")
	m.OnDisconnect("transport-1")

	m.mu.Lock()
	active := m.activeSession
	armed := m.timer
	m.mu.Unlock()

	assert.Equal(t, "", active)
	assert.Nil(t, armed)
}

func TestManager_OnDisconnect_IgnoresUnrelatedTransport(t *testing.T) {
	p := &recordingPush{}
	m := New(newTestCoordinator(t, "hi"), p, nil, "")

	m.Arm("session-g", 5)
	m.BindTransport("transport-2", "some-other-session")
	m.OnDisconnect("transport-2")

	m.mu.Lock()
	active := m.activeSession
	m.mu.Unlock()
	assert.Equal(t, "session-g", active)
}

// TestManager_StaleFireIsDropped exercises the active-session gate
// directly: a timer goroutine that reaches fire() after the session it
// was armed for has been superseded must drop silently rather than
// push a reminder to the wrong (or no-longer-active) session.
func TestManager_StaleFireIsDropped(t *testing.T) {
	p := &recordingPush{}
	m := New(newTestCoordinator(t, "hi"), p, nil, "")

	m.SetActive("session-j")
	m.fire("session-h")

	assert.Equal(t, 0, p.count())
}
