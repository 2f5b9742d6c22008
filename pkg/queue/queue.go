// Package queue accumulates multi-message pastes. Chat platforms cap
// message length, so a long text arrives as several consecutive messages;
// the queue joins them per chat and flushes once the sender goes quiet.
package queue

import (
	"strings"
	"sync"
	"time"
)

type pending struct {
	parts    []string
	expireAt time.Time
}

type PasteQueue struct {
	mu      *sync.Mutex
	pending map[int64]*pending
	stopCh  chan struct{}

	quietPeriod time.Duration // how long a chat must stay silent before flush
	checkEvery  time.Duration
}

type Config struct {
	QuietPeriod time.Duration
	CheckEvery  time.Duration
}

func NewPasteQueue(cfg Config) *PasteQueue {
	if cfg.QuietPeriod == 0 {
		cfg.QuietPeriod = 2 * time.Second
	}
	if cfg.CheckEvery == 0 {
		cfg.CheckEvery = time.Second
	}
	return &PasteQueue{
		mu:          &sync.Mutex{},
		pending:     make(map[int64]*pending),
		stopCh:      make(chan struct{}, 1),
		quietPeriod: cfg.QuietPeriod,
		checkEvery:  cfg.CheckEvery,
	}
}

// Add appends a message part for a chat and pushes the flush deadline out.
func (q *PasteQueue) Add(chatID int64, part string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	p, ok := q.pending[chatID]
	if !ok {
		p = &pending{}
		q.pending[chatID] = p
	}
	p.parts = append(p.parts, part)
	p.expireAt = time.Now().Add(q.quietPeriod)
}

// Has reports whether a chat has an unflushed paste.
func (q *PasteQueue) Has(chatID int64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.pending[chatID]
	return ok
}

// Discard drops an unflushed paste for a chat.
func (q *PasteQueue) Discard(chatID int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.pending, chatID)
}

// Run starts the flush loop. onReady is called with the joined text once a
// chat has been quiet for the configured period.
func (q *PasteQueue) Run(onReady func(chatID int64, text string)) {
	go func() {
		ticker := time.NewTicker(q.checkEvery)
		defer ticker.Stop()
		for {
			select {
			case <-q.stopCh:
				return
			case now := <-ticker.C:
				for chatID, text := range q.takeExpired(now) {
					onReady(chatID, text)
				}
			}
		}
	}()
}

func (q *PasteQueue) Stop() {
	q.stopCh <- struct{}{}
}

func (q *PasteQueue) takeExpired(now time.Time) map[int64]string {
	q.mu.Lock()
	defer q.mu.Unlock()
	expired := make(map[int64]string)
	for chatID, p := range q.pending {
		if !p.expireAt.After(now) {
			expired[chatID] = strings.Join(p.parts, "\n")
			delete(q.pending, chatID)
		}
	}
	return expired
}
