package textchunk

import (
	"strings"

	"github.com/pkg/errors"
)

var ErrNoParagraphs = errors.New("text contains no paragraphs")
var ErrInvalidChunkSize = errors.New("chunk size must be at least 1")

// SplitParagraphs splits raw text into paragraphs on blank-line boundaries.
// Paragraphs are trimmed, empty ones are dropped.
func SplitParagraphs(text string) ([]string, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var paragraphs []string
	var current []string
	flush := func() {
		if len(current) == 0 {
			return
		}
		p := strings.TrimSpace(strings.Join(current, "\n"))
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
		current = current[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()

	if len(paragraphs) == 0 {
		return nil, ErrNoParagraphs
	}
	return paragraphs, nil
}

// Group partitions paragraphs into consecutive groups of chunkSize.
// The last group holds the remainder.
func Group(paragraphs []string, chunkSize int) ([][]string, error) {
	if chunkSize < 1 {
		return nil, ErrInvalidChunkSize
	}
	chunks := make([][]string, 0, (len(paragraphs)+chunkSize-1)/chunkSize)
	for start := 0; start < len(paragraphs); start += chunkSize {
		end := start + chunkSize
		if end > len(paragraphs) {
			end = len(paragraphs)
		}
		chunks = append(chunks, paragraphs[start:end])
	}
	return chunks, nil
}
