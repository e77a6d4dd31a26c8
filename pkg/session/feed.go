package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/flowdeck/flowdeck/pkg/events"
)

// defaultFeedCapacity bounds how many entries a session feed retains. Clients
// that fall further behind than this miss events and should re-read the
// canvas state instead.
const defaultFeedCapacity = 256

// FeedEntry is one event in a session's feed, stamped with the monotonic
// sequence number clients use as their read cursor.
type FeedEntry struct {
	Seq       uint64           `json:"seq"`
	Type      events.EventType `json:"type"`
	Timestamp time.Time        `json:"timestamp"`
	Event     any              `json:"event"`
}

// Feed is a bounded, ordered buffer of canvas events for one session.
// Appends assign strictly increasing sequence numbers; reads are cursor
// based, so several clients can follow the same feed at their own pace.
type Feed struct {
	mu       sync.Mutex
	entries  []FeedEntry
	capacity int
	nextSeq  uint64
	signal   chan struct{}
	closed   bool
}

func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = defaultFeedCapacity
	}

	return &Feed{
		entries:  make([]FeedEntry, 0, capacity),
		capacity: capacity,
		nextSeq:  1,
		signal:   make(chan struct{}),
	}
}

// Append records an event and wakes every waiting reader. It returns the
// stored entry so callers can log or inspect the assigned sequence.
func (f *Feed) Append(eventType events.EventType, timestamp time.Time, event any) FeedEntry {
	f.mu.Lock()
	defer f.mu.Unlock()

	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	entry := FeedEntry{
		Seq:       f.nextSeq,
		Type:      eventType,
		Timestamp: timestamp,
		Event:     event,
	}
	f.nextSeq++

	f.entries = append(f.entries, entry)
	if len(f.entries) > f.capacity {
		f.entries = f.entries[len(f.entries)-f.capacity:]
	}

	// The bus may still deliver events while the session shuts down; a
	// closed feed keeps accepting entries but no longer signals readers.
	if !f.closed {
		close(f.signal)
		f.signal = make(chan struct{})
	}

	return entry
}

// After returns every retained entry with a sequence greater than seq. The
// result is a copy and never nil, so it serializes as a JSON array.
func (f *Feed) After(seq uint64) []FeedEntry {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.afterLocked(seq)
}

func (f *Feed) afterLocked(seq uint64) []FeedEntry {
	idx := sort.Search(len(f.entries), func(i int) bool {
		return f.entries[i].Seq > seq
	})

	out := make([]FeedEntry, len(f.entries)-idx)
	copy(out, f.entries[idx:])

	return out
}

// Wait blocks until at least one entry newer than seq exists, the timeout
// elapses, the context is cancelled, or the feed is closed. On timeout or
// cancellation it returns an empty slice, which long-poll handlers send back
// as-is.
func (f *Feed) Wait(ctx context.Context, seq uint64, timeout time.Duration) []FeedEntry {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		f.mu.Lock()
		entries := f.afterLocked(seq)
		signal := f.signal
		closed := f.closed
		f.mu.Unlock()

		if len(entries) > 0 || closed {
			return entries
		}

		select {
		case <-ctx.Done():
			return []FeedEntry{}
		case <-timer.C:
			return []FeedEntry{}
		case <-signal:
		}
	}
}

// LastSeq returns the sequence of the newest entry, or zero for an empty
// feed. Clients start polling from this cursor to receive only new events.
func (f *Feed) LastSeq() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.nextSeq - 1
}

// Close releases every waiting reader.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}

	f.closed = true
	close(f.signal)
}
