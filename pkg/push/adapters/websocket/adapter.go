// Package websocket is a reference push.Channel implementation over a
// plain gorilla/websocket connection map.
package websocket

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SafeConn serializes writes to one connection, since gorilla's Conn
// is not safe for concurrent writers.
type SafeConn struct {
	*websocket.Conn
	mu sync.Mutex
}

func (c *SafeConn) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("websocket push: marshal: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(websocket.TextMessage, data)
}

// Channel maps session id to its live connection. Register/Unregister
// are called by the HTTP upgrade handler, which lives outside this
// package — transport framing is not this package's concern.
type Channel struct {
	mu    sync.RWMutex
	conns map[string]*SafeConn
}

// New builds an empty Channel.
func New() *Channel {
	return &Channel{conns: make(map[string]*SafeConn)}
}

// Register associates a session id with a live connection.
func (c *Channel) Register(sessionID string, conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conns[sessionID] = &SafeConn{Conn: conn}
}

// Unregister drops a session's connection.
func (c *Channel) Unregister(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.conns, sessionID)
}

func (c *Channel) conn(sessionID string) (*SafeConn, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	conn, ok := c.conns[sessionID]
	return conn, ok
}

// VoiceFileReady implements push.Channel.
func (c *Channel) VoiceFileReady(_ context.Context, filename string, index int, isLast bool, targetSessionID string) error {
	conn, ok := c.conn(targetSessionID)
	if !ok {
		return fmt.Errorf("websocket push: session %s not connected", targetSessionID)
	}
	return conn.writeJSON(map[string]any{
		"type":             "voice_file_ready",
		"filename":         filename,
		"index":            index,
		"is_last":          isLast,
		"target_session_id": targetSessionID,
	})
}

// InactivityReminder implements push.Channel.
func (c *Channel) InactivityReminder(_ context.Context, targetSessionID, response string) error {
	conn, ok := c.conn(targetSessionID)
	if !ok {
		return fmt.Errorf("websocket push: session %s not connected", targetSessionID)
	}
	return conn.writeJSON(map[string]any{
		"type":       "inactivity_reminder",
		"response":   response,
		"session_id": targetSessionID,
		"timestamp":  time.Now().UTC(),
	})
}

// SessionActivated implements push.Channel.
func (c *Channel) SessionActivated(_ context.Context, sessionID string) error {
	conn, ok := c.conn(sessionID)
	if !ok {
		return fmt.Errorf("websocket push: session %s not connected", sessionID)
	}
	return conn.writeJSON(map[string]any{
		"type":       "session_activated",
		"session_id": sessionID,
		"timestamp":  time.Now().UTC(),
	})
}
