package bot

import (
	"fmt"
	"log"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const telegramMessageLengthLimit = 4096

// Sender is the outbound half of the bot: it implements service.Platform
// on top of the shared telegram API client. A telegram chat plays the role
// of the thread, so one chat holds one book and the chat ID is the thread
// identity.
type Sender struct {
	api *tgbotapi.BotAPI
}

func NewSender(api *tgbotapi.BotAPI) *Sender {
	return &Sender{api: api}
}

// CreateThread maps the book onto the chat the command came from. Creation
// is a no-op on telegram: the chat already exists.
func (s *Sender) CreateThread(parentChatID int64, _ string) (int64, error) {
	return parentChatID, nil
}

// SendChunk delivers one chunk, split into several messages when it does
// not fit the telegram message length limit.
func (s *Sender) SendChunk(threadID int64, number, total int, text string) error {
	full := fmt.Sprintf("📖 %d/%d\n\n%s", number, total, text)
	for _, part := range splitByLimit(full, telegramMessageLengthLimit) {
		if _, err := s.api.Send(tgbotapi.NewMessage(threadID, part)); err != nil {
			return err
		}
	}
	return nil
}

// splitByLimit cuts text into pieces of at most limit runes, never breaking
// a rune apart.
func splitByLimit(text string, limit int) []string {
	if limit < 1 {
		log.Printf("invalid message length limit %d, sending as is", limit)
		return []string{text}
	}
	var parts []string
	for len(text) > 0 {
		var i, runes int
		for i < len(text) && runes < limit {
			_, size := utf8.DecodeRuneInString(text[i:])
			i += size
			runes++
		}
		parts = append(parts, text[:i])
		text = text[i:]
	}
	return parts
}
