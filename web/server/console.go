package server

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// ConsoleMessage is one line of scene or culling output
type ConsoleMessage struct {
	Tick      int       `json:"tick"`      // System tick count when the line was logged
	Component string    `json:"component"` // "culling", "ply", ... or the console's default
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Console implements core.Logger by buffering the newest messages for
// /api/console and /api/stream. When full it drops the oldest message.
type Console struct {
	mu        sync.Mutex
	messages  []ConsoleMessage
	limit     int
	dropped   int
	component string
	tick      func() int
	echo      io.Writer
}

// NewConsole creates a console holding up to limit messages. Lines without
// a "component: " prefix are tagged with component.
func NewConsole(limit int, component string) *Console {
	if limit < 1 {
		limit = 1
	}
	return &Console{limit: limit, component: component}
}

// SetTickSource tags later messages with tick(). It must not block on the
// system lock; System.Ticks is safe.
func (c *Console) SetTickSource(tick func() int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tick = tick
}

// SetEcho copies every message to w as well, typically os.Stdout
func (c *Console) SetEcho(w io.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.echo = w
}

// Printf implements core.Logger
func (c *Console) Printf(format string, args ...interface{}) {
	text := fmt.Sprintf(format, args...)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.echo != nil {
		fmt.Fprint(c.echo, text)
	}

	msg := ConsoleMessage{Component: c.component, Message: strings.TrimRight(text, "\n"), Timestamp: time.Now()}
	if c.tick != nil {
		msg.Tick = c.tick()
	}
	if prefix, rest, ok := strings.Cut(msg.Message, ": "); ok && isComponentName(prefix) {
		msg.Component = prefix
		msg.Message = rest
	}

	if len(c.messages) == c.limit {
		c.messages = c.messages[1:]
		c.dropped++
	}
	c.messages = append(c.messages, msg)
}

// Drain returns the buffered messages oldest first, and how many were
// dropped since the last drain, then empties the buffer
func (c *Console) Drain() ([]ConsoleMessage, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	messages := c.messages
	if messages == nil {
		messages = []ConsoleMessage{}
	}
	dropped := c.dropped
	c.messages = nil
	c.dropped = 0
	return messages, dropped
}

// isComponentName accepts a single lowercase word such as "culling"
func isComponentName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
