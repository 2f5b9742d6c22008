package bot

import (
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleAdminMsg(msg *tgbotapi.Message) bool {
	if msg.From == nil {
		return false
	}
	if _, ok := b.adminUsers[msg.From.ID]; !ok {
		return false
	}
	switch msg.Command() {
	case "analytics":
		b.analytics(msg)
	default:
		return false
	}
	return true
}

func (b *Bot) analytics(msg *tgbotapi.Message) {
	a := b.service.Analytics()
	b.sendText(msg.Chat.ID, "📊 Books: "+strconv.Itoa(a.TotalThreads)+"\n"+
		"Started: "+strconv.Itoa(a.StartedThreads)+"\n"+
		"Finished: "+strconv.Itoa(a.FinishedThreads)+"\n"+
		"Chunks delivered: "+strconv.Itoa(a.DeliveredChunks)+"/"+strconv.Itoa(a.TotalChunks)+"\n"+
		"Avg chunk size: "+strconv.Itoa(a.AverageChunkSize))
}
