package notify

import (
	"sync"
	"time"
)

// TTL is how long a published message stays current unless it is
// overwritten first.
const TTL = 3 * time.Second

// Message is a single ephemeral user-facing line. It carries its own expiry
// timestamp so the presentation layer can evaluate Expired on its own tick;
// the channel never schedules callbacks.
type Message struct {
	Text      string
	ExpiresAt time.Time
}

// Expired reports whether the message has outlived its TTL at the given time.
func (m Message) Expired(now time.Time) bool {
	return !now.Before(m.ExpiresAt)
}

// Channel is a single-slot message queue. Publishing while a message is
// active overwrites it immediately; there is no buffering.
type Channel struct {
	mu      sync.Mutex
	current *Message
	nowTime func() time.Time
}

// Option defines a function type to modify the Channel instance.
type Option func(*Channel)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(c *Channel) {
		c.nowTime = nowFunc
	}
}

// NewChannel initializes an empty notification channel.
func NewChannel(options ...Option) *Channel {
	c := &Channel{nowTime: time.Now}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Publish replaces the active message with a fresh one.
func (c *Channel) Publish(text string) {
	expiry := c.nowTime().Add(TTL)
	c.mu.Lock()
	c.current = &Message{Text: text, ExpiresAt: expiry}
	c.mu.Unlock()
}

// Current returns a copy of the active message, or nil once it has expired
// or nothing has been published.
func (c *Channel) Current() *Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	if c.current.Expired(c.nowTime()) {
		c.current = nil
		return nil
	}
	msg := *c.current
	return &msg
}
