// Package segment holds the incrementally-assembled text fragments streamed
// back from the realtime API, one store per panel.
package segment

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// ContinuationMarker is appended to segments still receiving deltas.
const ContinuationMarker = " …"

// Segment is one unit of streamed text. Text accumulates append-only until
// Final latches; after that the segment is frozen.
type Segment struct {
	Text      string
	Final     bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Key builds a transcription segment key from a conversation item ID and a
// content part index. A single item may carry several content parts.
func Key(itemID string, contentIndex int) string {
	return fmt.Sprintf("%s:%d", itemID, contentIndex)
}

// Store maps stream keys to segments. Render order is creation order, not
// map order. Safe for concurrent use.
type Store struct {
	mu          sync.Mutex
	segments    map[string]*Segment
	placeholder string
	now         func() time.Time
}

// NewStore creates an empty store that renders placeholder when it holds
// nothing displayable.
func NewStore(placeholder string) *Store {
	return &Store{
		segments:    make(map[string]*Segment),
		placeholder: placeholder,
		now:         time.Now,
	}
}

// Upsert creates the segment for key if absent (empty text, not final) and
// applies mutate to it. UpdatedAt always advances; CreatedAt is set once.
// Mutations that would alter the text of a final segment are ignored, so a
// late delta cannot reopen a finished segment.
func (s *Store) Upsert(key string, mutate func(*Segment)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	seg, ok := s.segments[key]
	if !ok {
		seg = &Segment{CreatedAt: now}
		s.segments[key] = seg
	}

	if seg.Final {
		seg.UpdatedAt = now
		return
	}
	if mutate != nil {
		mutate(seg)
	}
	seg.UpdatedAt = now
}

// Has reports whether key exists in the store.
func (s *Store) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.segments[key]
	return ok
}

// Len returns the number of segments held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.segments)
}

// Reset discards every segment. Idempotent.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.segments = make(map[string]*Segment)
}

// Lines returns the displayable segment texts in creation order: trimmed,
// empty results dropped, continuation marker appended to non-final segments.
// The placeholder stands in only while the store holds no segments at all; a
// store of segments that are all still empty renders as nothing.
func (s *Store) Lines() []string {
	s.mu.Lock()
	empty := len(s.segments) == 0
	ordered := make([]*Segment, 0, len(s.segments))
	for _, seg := range s.segments {
		ordered = append(ordered, seg)
	}
	s.mu.Unlock()

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	lines := make([]string, 0, len(ordered))
	for _, seg := range ordered {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		if !seg.Final {
			text += ContinuationMarker
		}
		lines = append(lines, text)
	}

	if empty {
		return []string{s.placeholder}
	}
	return lines
}

// Render joins Lines with newlines for display.
func (s *Store) Render() string {
	return strings.Join(s.Lines(), "\n")
}
