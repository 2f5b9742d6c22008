package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/ovcharenko/daily-reader/internal/registry"
	"github.com/ovcharenko/daily-reader/pkg/webscraper"
)

// Platform is the outbound side of the chat platform: it creates the
// conversation thread a book lives in and delivers chunk text into it.
type Platform interface {
	CreateThread(parentChatID int64, title string) (threadID int64, err error)
	SendChunk(threadID int64, number, total int, text string) error
}

// Scraper extracts a title and article text from a URL.
type Scraper interface {
	Scrape(ctx context.Context, link string) (title, body string, err error)
}

type Service struct {
	reg      *registry.Registry
	platform Platform
	scraper  Scraper
}

func NewService(reg *registry.Registry, platform Platform, scraper Scraper) *Service {
	if scraper == nil {
		scraper = webscraper.New()
	}
	return &Service{reg: reg, platform: platform, scraper: scraper}
}

// LoadText creates a thread for the book and loads its content into the
// registry. The registry mutation completes before any chunk is sent.
func (s *Service) LoadText(parentChatID int64, title, content string, force bool) (int64, registry.Snapshot, error) {
	threadID, err := s.platform.CreateThread(parentChatID, strings.TrimSpace(title))
	if err != nil {
		return 0, registry.Snapshot{}, errors.Wrap(err, "create thread")
	}
	snap, err := s.reg.Load(threadID, title, content, force)
	if err != nil {
		return 0, registry.Snapshot{}, err
	}
	return threadID, snap, nil
}

// LoadFromURL scrapes an article and loads it like LoadText.
func (s *Service) LoadFromURL(ctx context.Context, parentChatID int64, link string, force bool) (int64, registry.Snapshot, error) {
	title, body, err := s.scraper.Scrape(ctx, link)
	if err != nil {
		return 0, registry.Snapshot{}, errors.Wrap(err, "scrape url")
	}
	return s.LoadText(parentChatID, title, body, force)
}

func (s *Service) SetChunkSize(threadID int64, size int) (registry.Snapshot, error) {
	return s.reg.Configure(threadID, size)
}

// Begin turns on daily delivery for the thread.
func (s *Service) Begin(threadID int64) (registry.Snapshot, error) {
	return s.reg.Start(threadID)
}

// More immediately advances the thread by its own chunk size and sends the
// delivered chunks. Returns how many chunks went out and whether the text
// is finished now.
func (s *Service) More(threadID int64) (sent int, finished bool, err error) {
	return s.deliver(threadID)
}

func (s *Service) Status(threadID int64) (registry.Snapshot, error) {
	return s.reg.Get(threadID)
}

// Delivery describes what one thread received during a delivery run.
type Delivery struct {
	ThreadID int64
	Title    string
	Sent     int
	Finished bool
	At       time.Time
	Err      error
}

// DeliverDue advances every due thread by its chunk size and pushes the
// chunks out, stamping each delivery with the run time. Failures are
// collected per thread so one broken thread does not starve the rest.
func (s *Service) DeliverDue(now time.Time) []Delivery {
	due := s.reg.Due()
	deliveries := make([]Delivery, 0, len(due))
	for _, threadID := range due {
		d := Delivery{ThreadID: threadID, At: now}
		if snap, err := s.reg.Get(threadID); err == nil {
			d.Title = snap.Title
		}
		d.Sent, d.Finished, d.Err = s.deliver(threadID)
		deliveries = append(deliveries, d)
	}
	return deliveries
}

func (s *Service) deliver(threadID int64) (sent int, finished bool, err error) {
	snap, err := s.reg.Get(threadID)
	if err != nil {
		return 0, false, err
	}
	adv, err := s.reg.Advance(threadID, snap.ChunkSize)
	if err != nil {
		return 0, false, err
	}
	for i, chunk := range adv.Chunks {
		text := strings.Join(chunk, "\n\n")
		if err := s.platform.SendChunk(threadID, adv.From+i+1, adv.TotalChunks, text); err != nil {
			// cursor already moved; the chunk is considered delivered
			log.Printf("send chunk %d to thread %d: %v", adv.From+i+1, threadID, err)
		}
	}
	return len(adv.Chunks), adv.From+len(adv.Chunks) >= adv.TotalChunks, nil
}

// ThreadStatus is the overview row for the status endpoint and the admin
// analytics command.
type ThreadStatus struct {
	ThreadID          int64  `json:"threadId"`
	Title             string `json:"title"`
	ChunkSize         int    `json:"chunkSize"`
	Cursor            int    `json:"cursor"`
	TotalChunks       int    `json:"totalChunks"`
	Started           bool   `json:"started"`
	CompletionPercent int    `json:"completionPercent"`
}

func (s *Service) Overview() []ThreadStatus {
	all := s.reg.All()
	result := make([]ThreadStatus, 0, len(all))
	for _, t := range all {
		result = append(result, ThreadStatus{
			ThreadID:          t.ThreadID,
			Title:             t.Title,
			ChunkSize:         t.ChunkSize,
			Cursor:            t.Cursor,
			TotalChunks:       t.TotalChunks,
			Started:           t.Started,
			CompletionPercent: CompletionPercent(t.Cursor, t.TotalChunks),
		})
	}
	return result
}

// Analytics summarizes all loaded threads for the admin command.
type Analytics struct {
	TotalThreads     int
	StartedThreads   int
	FinishedThreads  int
	TotalChunks      int
	DeliveredChunks  int
	AverageChunkSize int
}

func (s *Service) Analytics() Analytics {
	all := s.reg.All()
	var a Analytics
	var chunkSizeSum int
	for _, t := range all {
		a.TotalThreads++
		if t.Started {
			a.StartedThreads++
		}
		if t.Finished() {
			a.FinishedThreads++
		}
		a.TotalChunks += t.TotalChunks
		a.DeliveredChunks += t.Cursor
		chunkSizeSum += t.ChunkSize
	}
	if a.TotalThreads > 0 {
		a.AverageChunkSize = chunkSizeSum / a.TotalThreads
	}
	return a
}

func CompletionPercent(cursor, totalChunks int) int {
	if totalChunks <= 0 {
		return 0
	}
	if cursor >= totalChunks {
		return 100
	}
	return int(float64(cursor) / float64(totalChunks) * 100)
}
