package registry

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/ovcharenko/daily-reader/pkg/textchunk"
)

var (
	ErrNotFound         = errors.New("no text loaded for this thread")
	ErrNotStarted       = errors.New("delivery is not started for this thread")
	ErrEmptyTitle       = errors.New("title is empty")
	ErrInvalidChunkSize = errors.Errorf("chunk size must be between %d and %d", MinChunkSize, MaxChunkSize)
)

const (
	MinChunkSize     = 1
	MaxChunkSize     = 50
	DefaultChunkSize = 3
)

// AlreadyLoadedError is returned by Load when the thread already has a text
// and force was not requested.
type AlreadyLoadedError struct {
	Title string
}

func (e *AlreadyLoadedError) Error() string {
	return fmt.Sprintf("thread already has %q loaded", e.Title)
}

// Registry owns all reading state. Thread identity is the platform's
// chat ID; the registry treats it as an opaque key.
type Registry struct {
	mu     *sync.RWMutex
	states map[int64]*ReadingState

	defaultChunkSize int
	now              func() time.Time
}

type Config struct {
	DefaultChunkSize int
	Now              func() time.Time // defaults to time.Now, injectable for tests
}

func New(cfg Config) *Registry {
	if cfg.DefaultChunkSize < MinChunkSize || cfg.DefaultChunkSize > MaxChunkSize {
		cfg.DefaultChunkSize = DefaultChunkSize
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Registry{
		mu:               &sync.RWMutex{},
		states:           make(map[int64]*ReadingState),
		defaultChunkSize: cfg.DefaultChunkSize,
		now:              cfg.Now,
	}
}

// Load creates reading state for a thread from raw text. Loading into a
// thread that already has state fails with AlreadyLoadedError unless force
// is set, in which case the old state is replaced.
func (r *Registry) Load(threadID int64, title, content string, force bool) (Snapshot, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Snapshot{}, ErrEmptyTitle
	}
	paragraphs, err := textchunk.SplitParagraphs(content)
	if err != nil {
		return Snapshot{}, err
	}
	chunks, err := textchunk.Group(paragraphs, r.defaultChunkSize)
	if err != nil {
		return Snapshot{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.states[threadID]; ok && !force {
		return Snapshot{}, &AlreadyLoadedError{Title: prev.Title}
	}
	now := r.now()
	state := &ReadingState{
		Title:      title,
		Paragraphs: paragraphs,
		Chunks:     chunks,
		Cursor:     0,
		ChunkSize:  r.defaultChunkSize,
		Started:    false,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	r.states[threadID] = state
	return snapshot(state), nil
}

// Configure changes the chunk size and regroups chunks. The reading
// position, measured in paragraphs already delivered, is preserved: the
// cursor snaps to the chunk boundary not exceeding that offset.
func (r *Registry) Configure(threadID int64, size int) (Snapshot, error) {
	if size < MinChunkSize || size > MaxChunkSize {
		return Snapshot{}, ErrInvalidChunkSize
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.states[threadID]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	offset := state.deliveredParagraphs()
	chunks, err := textchunk.Group(state.Paragraphs, size)
	if err != nil {
		return Snapshot{}, err
	}
	cursor := offset / size
	if offset >= len(state.Paragraphs) || cursor > len(chunks) {
		cursor = len(chunks)
	}
	state.ChunkSize = size
	state.Chunks = chunks
	state.Cursor = cursor
	state.ModifiedAt = r.now()
	return snapshot(state), nil
}

// Start begins timer-driven delivery for a thread. Idempotent.
func (r *Registry) Start(threadID int64) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.states[threadID]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	if !state.Started {
		state.Started = true
		state.ModifiedAt = r.now()
	}
	return snapshot(state), nil
}

// Advanced reports one cursor move: the chunks just delivered, the cursor
// they started from and the chunk total at the moment of the move.
type Advanced struct {
	Chunks      [][]string
	From        int
	TotalChunks int
}

// Advance moves the cursor by at most count chunks. An exhausted thread
// yields no chunks, not an error. From and TotalChunks are taken under the
// same lock as the move, so concurrent callers get disjoint chunk ranges.
func (r *Registry) Advance(threadID int64, count int) (Advanced, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.states[threadID]
	if !ok {
		return Advanced{}, ErrNotFound
	}
	if !state.Started {
		return Advanced{}, ErrNotStarted
	}
	adv := Advanced{From: state.Cursor, TotalChunks: len(state.Chunks)}
	n := count
	if remaining := len(state.Chunks) - state.Cursor; n > remaining {
		n = remaining
	}
	if n <= 0 {
		return adv, nil
	}
	adv.Chunks = state.Chunks[state.Cursor : state.Cursor+n]
	state.Cursor += n
	state.ModifiedAt = r.now()
	return adv, nil
}

// Due returns every thread that is started and has chunks remaining, in
// ascending thread ID order. The scheduler fires once per period, so each
// due thread is delivered to exactly once per period.
func (r *Registry) Due() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	due := make([]int64, 0, len(r.states))
	for threadID, state := range r.states {
		if state.Started && !state.Finished() {
			due = append(due, threadID)
		}
	}
	slices.Sort(due)
	return due
}

// Get returns a read-only snapshot of a thread's state.
func (r *Registry) Get(threadID int64) (Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.states[threadID]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return snapshot(state), nil
}

// All returns snapshots for every loaded thread, in ascending thread ID
// order.
func (r *Registry) All() []ThreadSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.states))
	for threadID := range r.states {
		ids = append(ids, threadID)
	}
	slices.Sort(ids)

	result := make([]ThreadSnapshot, 0, len(ids))
	for _, threadID := range ids {
		result = append(result, ThreadSnapshot{
			ThreadID: threadID,
			Snapshot: snapshot(r.states[threadID]),
		})
	}
	return result
}
