package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ovcharenko/daily-reader/internal/registry"
)

type sentChunk struct {
	threadID int64
	number   int
	total    int
	text     string
}

// fakePlatform maps every book onto the chat it was loaded in, like the
// telegram bot does.
type fakePlatform struct {
	sent []sentChunk
}

func (p *fakePlatform) CreateThread(parentChatID int64, title string) (int64, error) {
	return parentChatID, nil
}

func (p *fakePlatform) SendChunk(threadID int64, number, total int, text string) error {
	p.sent = append(p.sent, sentChunk{threadID: threadID, number: number, total: total, text: text})
	return nil
}

type fakeScraper struct {
	title string
	body  string
	err   error
}

func (s *fakeScraper) Scrape(_ context.Context, _ string) (string, string, error) {
	return s.title, s.body, s.err
}

func testService(t *testing.T, chunkSize int, platform *fakePlatform) *Service {
	t.Helper()
	reg := registry.New(registry.Config{DefaultChunkSize: chunkSize})
	return NewService(reg, platform, &fakeScraper{})
}

func TestService_LoadAndMore(t *testing.T) {
	platform := &fakePlatform{}
	svc := testService(t, 1, platform)

	threadID, snap, err := svc.LoadText(42, "Book A", "Para1\n\nPara2\n\nPara3", false)
	require.NoError(t, err)
	require.Equal(t, int64(42), threadID)
	require.Equal(t, 3, snap.TotalChunks)

	// advance requires /start first
	_, _, err = svc.More(threadID)
	require.ErrorIs(t, err, registry.ErrNotStarted)

	_, err = svc.Begin(threadID)
	require.NoError(t, err)

	sent, finished, err := svc.More(threadID)
	require.NoError(t, err)
	require.Equal(t, 1, sent)
	require.False(t, finished)
	require.Equal(t, []sentChunk{{threadID: 42, number: 1, total: 3, text: "Para1"}}, platform.sent)
}

func TestService_MoreRespectsChunkSize(t *testing.T) {
	platform := &fakePlatform{}
	svc := testService(t, 2, platform)

	threadID, _, err := svc.LoadText(1, "Book A", "p1\n\np2\n\np3\n\np4\n\np5", false)
	require.NoError(t, err)
	_, err = svc.Begin(threadID)
	require.NoError(t, err)

	sent, finished, err := svc.More(threadID)
	require.NoError(t, err)
	require.Equal(t, 2, sent)
	require.False(t, finished)
	require.Equal(t, "p1\n\np2", platform.sent[0].text)
	require.Equal(t, "p3\n\np4", platform.sent[1].text)

	sent, finished, err = svc.More(threadID)
	require.NoError(t, err)
	require.Equal(t, 1, sent)
	require.True(t, finished)
	require.Equal(t, "p5", platform.sent[2].text)

	sent, finished, err = svc.More(threadID)
	require.NoError(t, err)
	require.Equal(t, 0, sent)
	require.True(t, finished)
	require.Len(t, platform.sent, 3)
}

func TestService_LoadFromURL(t *testing.T) {
	platform := &fakePlatform{}
	reg := registry.New(registry.Config{DefaultChunkSize: 1})
	svc := NewService(reg, platform, &fakeScraper{title: "Scraped", body: "p1\n\np2"})

	threadID, snap, err := svc.LoadFromURL(context.Background(), 7, "https://example.com/a", false)
	require.NoError(t, err)
	require.Equal(t, int64(7), threadID)
	require.Equal(t, "Scraped", snap.Title)
	require.Equal(t, 2, snap.TotalChunks)
}

func TestService_DeliverDue(t *testing.T) {
	platform := &fakePlatform{}
	svc := testService(t, 1, platform)

	t1, _, err := svc.LoadText(1, "Book A", "a1\n\na2", false)
	require.NoError(t, err)
	t2, _, err := svc.LoadText(2, "Book B", "b1", false)
	require.NoError(t, err)
	_, _, err = svc.LoadText(3, "Book C", "c1", false)
	require.NoError(t, err)

	_, err = svc.Begin(t1)
	require.NoError(t, err)
	_, err = svc.Begin(t2)
	require.NoError(t, err)
	// Book C is loaded but never started: not due

	at := time.Unix(1700000000, 0)
	deliveries := svc.DeliverDue(at)
	require.Len(t, deliveries, 2)
	require.Equal(t, Delivery{ThreadID: t1, Title: "Book A", Sent: 1, Finished: false, At: at}, deliveries[0])
	require.Equal(t, Delivery{ThreadID: t2, Title: "Book B", Sent: 1, Finished: true, At: at}, deliveries[1])
	require.Equal(t, []sentChunk{
		{threadID: 1, number: 1, total: 2, text: "a1"},
		{threadID: 2, number: 1, total: 1, text: "b1"},
	}, platform.sent)

	// Book B finished, drops out of the due set
	deliveries = svc.DeliverDue(time.Now())
	require.Len(t, deliveries, 1)
	require.Equal(t, t1, deliveries[0].ThreadID)
	require.True(t, deliveries[0].Finished)

	deliveries = svc.DeliverDue(time.Now())
	require.Empty(t, deliveries)
}

func TestService_Overview(t *testing.T) {
	platform := &fakePlatform{}
	svc := testService(t, 1, platform)

	t1, _, err := svc.LoadText(1, "Book A", "p1\n\np2\n\np3\n\np4", false)
	require.NoError(t, err)
	_, err = svc.Begin(t1)
	require.NoError(t, err)
	_, _, err = svc.More(t1)
	require.NoError(t, err)

	overview := svc.Overview()
	require.Len(t, overview, 1)
	require.Equal(t, ThreadStatus{
		ThreadID:          1,
		Title:             "Book A",
		ChunkSize:         1,
		Cursor:            1,
		TotalChunks:       4,
		Started:           true,
		CompletionPercent: 25,
	}, overview[0])
}

func TestService_Analytics(t *testing.T) {
	platform := &fakePlatform{}
	svc := testService(t, 1, platform)

	t1, _, err := svc.LoadText(1, "Book A", "p1\n\np2", false)
	require.NoError(t, err)
	_, _, err = svc.LoadText(2, "Book B", "q1", false)
	require.NoError(t, err)

	_, err = svc.Begin(t1)
	require.NoError(t, err)
	_, _, err = svc.More(t1)
	require.NoError(t, err)

	a := svc.Analytics()
	require.Equal(t, 2, a.TotalThreads)
	require.Equal(t, 1, a.StartedThreads)
	require.Equal(t, 0, a.FinishedThreads)
	require.Equal(t, 3, a.TotalChunks)
	require.Equal(t, 1, a.DeliveredChunks)
	require.Equal(t, 1, a.AverageChunkSize)
}

func Test_CompletionPercent(t *testing.T) {
	tests := []struct {
		name        string
		cursor      int
		totalChunks int
		want        int
	}{
		{name: "no chunks", cursor: 0, totalChunks: 0, want: 0},
		{name: "fresh", cursor: 0, totalChunks: 10, want: 0},
		{name: "half", cursor: 5, totalChunks: 10, want: 50},
		{name: "almost", cursor: 9, totalChunks: 10, want: 90},
		{name: "done", cursor: 10, totalChunks: 10, want: 100},
		{name: "single chunk done", cursor: 1, totalChunks: 1, want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, CompletionPercent(tt.cursor, tt.totalChunks))
		})
	}
}
