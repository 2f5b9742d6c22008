package bot

import (
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// message IDs, must exist in the i18n catalog for every language
const (
	greetingMsgID        = "greeting"
	helpMsgID            = "help"
	pongMsgID            = "pong"
	loadUsageMsgID       = "load_usage"
	loadURLUsageMsgID    = "loadurl_usage"
	awaitingContentMsgID = "awaiting_content"
	loadedMsgID          = "loaded"
	alreadyLoadedMsgID   = "already_loaded"
	startedMsgID         = "started"
	chunkSizeSetMsgID    = "chunk_size_set"
	moreSentMsgID        = "more_sent"
	allSentMsgID         = "all_sent"
	finishedMsgID        = "finished"
	statusMsgID          = "status"
	deliveryOnMsgID      = "delivery_on"
	deliveryOffMsgID     = "delivery_off"

	errorEmptyTitleMsgID     = "error_empty_title"
	errorEmptyTextMsgID      = "error_empty_text"
	errorNotLoadedMsgID      = "error_not_loaded"
	errorNotStartedMsgID     = "error_not_started"
	errorChunkSizeMsgID      = "error_chunk_size"
	errorScrapeMsgID         = "error_scrape"
	errorUnknownCommandMsgID = "error_unknown_command"
	errorGenericMsgID        = "error_generic"
	panicMsgID               = "panic"
)

const (
	langCodeEn = "en"
	langCodeRu = "ru"
)

func languageCode(user *tgbotapi.User) string {
	if user != nil && user.LanguageCode == langCodeRu {
		return langCodeRu
	}
	return langCodeEn
}

func (b *Bot) reply(msg *tgbotapi.Message, id string) {
	b.replyArgs(msg, id, nil)
}

func (b *Bot) replyArgs(msg *tgbotapi.Message, id string, args map[string]string) {
	b.sendI18nArgs(msg.Chat.ID, languageCode(msg.From), id, args)
}

func (b *Bot) replyErr(msg *tgbotapi.Message, id string, err error) {
	b.sendErrI18n(msg.Chat.ID, languageCode(msg.From), id, err)
}

func (b *Bot) sendI18n(chatID int64, lang, id string) {
	b.sendI18nArgs(chatID, lang, id, nil)
}

func (b *Bot) sendI18nArgs(chatID int64, lang, id string, args map[string]string) {
	b.sendText(chatID, b.text(lang, id, args))
}

func (b *Bot) sendErrI18n(chatID int64, lang, id string, err error) {
	log.Println(err)
	b.sendText(chatID, b.text(lang, id, nil)+": "+err.Error())
}

func (b *Bot) text(lang, id string, args map[string]string) string {
	var (
		text string
		err  error
	)
	if len(args) == 0 {
		text, err = b.i18n.Get(lang, id)
	} else {
		text, err = b.i18n.GetWithArgs(lang, id, args)
	}
	if err != nil {
		log.Printf("failed to get i18n text for id %s, locale %s: %v", id, lang, err)
		text = "Something went wrong"
	}
	return text
}

func (b *Bot) sendText(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Println("error while sending message:", err)
	}
}
