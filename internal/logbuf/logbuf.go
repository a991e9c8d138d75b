// Package logbuf keeps the bounded diagnostic log shown next to the arsenal.
//
// The buffer is a sliding window: appending past capacity evicts the oldest
// entry. Sequence numbers keep increasing across evictions for the lifetime
// of the buffer.
package logbuf

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultCapacity retains the 20 most recent entries plus the one just appended.
const DefaultCapacity = 21

// Kind classifies an entry for display.
type Kind int

const (
	KindInfo Kind = iota
	KindSuccess
	KindFault
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindFault:
		return "fault"
	default:
		return "info"
	}
}

// Prefix is the marker rendered in front of the entry text.
func (k Kind) Prefix() string {
	switch k {
	case KindSuccess:
		return "✅ "
	case KindFault:
		return "❌ "
	default:
		return "> "
	}
}

// Entry is one diagnostic line.
type Entry struct {
	Sequence uint64
	Kind     Kind
	Text     string
	At       time.Time
}

func (e Entry) String() string {
	return e.Kind.Prefix() + e.Text
}

type Buffer struct {
	mu       sync.Mutex
	entries  []Entry
	capacity int
	seq      uint64
	logger   zerolog.Logger
	now      func() time.Time
}

type Option func(*Buffer)

// WithLogger mirrors every appended entry to logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(b *Buffer) {
		b.logger = logger
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(b *Buffer) {
		if now != nil {
			b.now = now
		}
	}
}

// New creates a buffer retaining at most capacity entries. A non-positive
// capacity selects DefaultCapacity.
func New(capacity int, opts ...Option) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	b := &Buffer{
		entries:  make([]Entry, 0, capacity),
		capacity: capacity,
		logger:   zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Append records text and returns the stored entry.
func (b *Buffer) Append(kind Kind, text string) Entry {
	b.mu.Lock()
	b.seq++
	entry := Entry{
		Sequence: b.seq,
		Kind:     kind,
		Text:     strings.TrimSpace(text),
		At:       b.now(),
	}
	if len(b.entries) >= b.capacity {
		drop := len(b.entries) - b.capacity + 1
		b.entries = append(b.entries[:0], b.entries[drop:]...)
	}
	b.entries = append(b.entries, entry)
	b.mu.Unlock()

	event := b.logger.Info()
	if kind == KindFault {
		event = b.logger.Warn()
	}
	event.Uint64("seq", entry.Sequence).Str("kind", kind.String()).Msg(entry.Text)
	return entry
}

// Snapshot returns a copy of the retained entries, oldest first.
func (b *Buffer) Snapshot() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// LastSequence is the sequence number of the most recent append, or zero.
func (b *Buffer) LastSequence() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seq
}

func (b *Buffer) Capacity() int {
	return b.capacity
}
