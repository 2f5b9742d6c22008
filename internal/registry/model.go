package registry

import "time"

// ReadingState holds per-thread reading progress. Paragraphs keep the
// original split so chunks can be regrouped when the chunk size changes.
type ReadingState struct {
	Title      string
	Paragraphs []string
	Chunks     [][]string
	Cursor     int
	ChunkSize  int
	Started    bool
	CreatedAt  time.Time
	ModifiedAt time.Time
}

func (s *ReadingState) Finished() bool {
	return s.Cursor >= len(s.Chunks)
}

// deliveredParagraphs counts paragraphs already sent out, i.e. the reading
// position independent of chunk boundaries.
func (s *ReadingState) deliveredParagraphs() int {
	var n int
	for _, c := range s.Chunks[:s.Cursor] {
		n += len(c)
	}
	return n
}

// Snapshot is a read-only copy of a thread's state for status text and
// the HTTP overview.
type Snapshot struct {
	Title       string
	ChunkSize   int
	Cursor      int
	TotalChunks int
	Started     bool
	CreatedAt   time.Time
	ModifiedAt  time.Time
}

func (s Snapshot) Finished() bool {
	return s.Cursor >= s.TotalChunks
}

// ThreadSnapshot pairs a snapshot with its thread identity.
type ThreadSnapshot struct {
	ThreadID int64
	Snapshot
}

func snapshot(s *ReadingState) Snapshot {
	return Snapshot{
		Title:       s.Title,
		ChunkSize:   s.ChunkSize,
		Cursor:      s.Cursor,
		TotalChunks: len(s.Chunks),
		Started:     s.Started,
		CreatedAt:   s.CreatedAt,
		ModifiedAt:  s.ModifiedAt,
	}
}
