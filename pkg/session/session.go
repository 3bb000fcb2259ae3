// Package session implements the session & inactivity timer manager:
// exactly one armed timer bound to the active session, and the
// reminder pipeline that fires when it expires.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"aurelia/pkg/message"
	"aurelia/pkg/monitor"
	"aurelia/pkg/push"
	"aurelia/pkg/speech"
	"aurelia/pkg/turn"
)

// Manager owns the single active session id and the single armed
// timer, both guarded by one mutex so the exactly-one-timer invariant
// holds under concurrent Arm/Cancel/SetActive calls, grounded on the
// buffers-under-one-mutex idiom in haasonsaas-nexus's MessageDebouncer.
type Manager struct {
	Turn    *turn.Coordinator
	Push    push.Channel
	Speech  speech.Synthesizer
	VoiceID string
	Metrics *monitor.Metrics

	mu            sync.Mutex
	activeSession string
	timer         *time.Timer
	lastActivity  time.Time
	transportMap  map[string]string
}

// New builds a Manager bound to the given collaborators. voiceID is
// passed to every reminder's speech-synthesis call.
func New(t *turn.Coordinator, p push.Channel, s speech.Synthesizer, voiceID string) *Manager {
	return &Manager{
		Turn:         t,
		Push:         p,
		Speech:       s,
		VoiceID:      voiceID,
		transportMap: make(map[string]string),
	}
}

// SetActive cancels any armed timer, sets the active session, and
// touches last_activity. Idempotent for the same id — it still
// cancels the timer.
func (m *Manager) SetActive(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelLocked()
	m.activeSession = sessionID
	m.lastActivity = time.Now()
}

// Arm begins by activating sessionID, then — if seconds > 0 — arms a
// one-shot timer that runs the reminder pipeline on fire.
func (m *Manager) Arm(sessionID string, seconds int) {
	m.mu.Lock()
	m.cancelLocked()
	m.activeSession = sessionID
	m.lastActivity = time.Now()
	if seconds <= 0 {
		m.mu.Unlock()
		if m.Metrics != nil {
			m.Metrics.SetActiveSessions(0)
		}
		return
	}
	m.timer = time.AfterFunc(time.Duration(seconds)*time.Second, func() {
		m.fire(sessionID)
	})
	m.mu.Unlock()
	if m.Metrics != nil {
		m.Metrics.SetActiveSessions(1)
	}
}

// Cancel cancels the armed timer unconditionally. It does not change
// active_session_id.
func (m *Manager) Cancel(_ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelLocked()
}

// OnDisconnect maps a transport session to a client session; if the
// mapped client session is the active one, the timer is cancelled and
// active_session_id is cleared.
func (m *Manager) OnDisconnect(transportSessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clientSession, ok := m.transportMap[transportSessionID]
	delete(m.transportMap, transportSessionID)
	if !ok || clientSession != m.activeSession {
		return
	}
	m.cancelLocked()
	m.activeSession = ""
}

// BindTransport records which client session a transport session maps
// to, so a later OnDisconnect can look it up.
func (m *Manager) BindTransport(transportSessionID, clientSessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transportMap[transportSessionID] = clientSessionID
}

func (m *Manager) cancelLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
		if m.Metrics != nil {
			m.Metrics.SetActiveSessions(0)
		}
	}
}

// fire runs the active-session gate and, if it passes, the reminder
// pipeline. Runs on the timer's own goroutine.
func (m *Manager) fire(armedFor string) {
	m.mu.Lock()
	current := m.activeSession
	if current == armedFor {
		// Only clear the bookkeeping pointer when this goroutine owns
		// the timer that is still current — a stale fire racing a
		// fresh Arm() must never null out the new timer's reference.
		m.timer = nil
	}
	m.mu.Unlock()

	if current != armedFor {
		slog.Debug("session: dropping stale timer fire", "armed_for", armedFor, "active", current)
		return
	}

	ctx := context.Background()
	result := m.Turn.HandleTurn(ctx, armedFor, "", []message.FileDescriptor{}, turn.Flags{
		IsAutoResponse:     true,
		IsInactivityRemind: true,
	})

	if result.Response == "" {
		return
	}

	if m.Push != nil {
		if err := m.Push.InactivityReminder(ctx, armedFor, result.Response); err != nil {
			slog.Warn("session: failed to push inactivity reminder", "session", armedFor, "error", err)
		} else if m.Metrics != nil {
			m.Metrics.RecordReminderSent()
		}
	}
	if m.Speech != nil && m.Push != nil {
		delivery := speech.NewOrderedDelivery(m.Push, armedFor)
		if err := m.Speech.SynthesizeAsync(ctx, result.Response, m.VoiceID, armedFor, delivery.OnFragment); err != nil {
			slog.Warn("session: failed to dispatch reminder to speech synthesis", "session", armedFor, "error", err)
		}
	}
}
