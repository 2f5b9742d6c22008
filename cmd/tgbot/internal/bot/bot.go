package bot

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ovcharenko/daily-reader/internal/registry"
	"github.com/ovcharenko/daily-reader/internal/service"
	"github.com/ovcharenko/daily-reader/pkg/i18n"
	"github.com/ovcharenko/daily-reader/pkg/queue"
	"github.com/ovcharenko/daily-reader/pkg/textchunk"
	"github.com/ovcharenko/daily-reader/pkg/webscraper"
)

const scrapeTimeout = 15 * time.Second

// pendingLoad remembers a /load that is still waiting for its text.
type pendingLoad struct {
	title string
	force bool
	lang  string
}

type Bot struct {
	service    *service.Service
	api        *tgbotapi.BotAPI
	pasteQueue *queue.PasteQueue
	i18n       *i18n.Catalog
	adminUsers map[int64]struct{}

	pendingMu *sync.Mutex
	pending   map[int64]pendingLoad // chat ID -> load waiting for content
}

type Config struct {
	API        *tgbotapi.BotAPI
	Service    *service.Service
	PasteQueue *queue.PasteQueue
	I18n       *i18n.Catalog
	AdminUsers []int64
}

func NewBot(cfg Config) (*Bot, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	adminUsers := make(map[int64]struct{}, len(cfg.AdminUsers))
	for _, id := range cfg.AdminUsers {
		adminUsers[id] = struct{}{}
	}
	return &Bot{
		service:    cfg.Service,
		api:        cfg.API,
		pasteQueue: cfg.PasteQueue,
		i18n:       cfg.I18n,
		adminUsers: adminUsers,
		pendingMu:  &sync.Mutex{},
		pending:    make(map[int64]pendingLoad),
	}, nil
}

func validateConfig(cfg Config) error {
	if cfg.API == nil {
		return fmt.Errorf("api is nil")
	}
	if cfg.Service == nil {
		return fmt.Errorf("service is nil")
	}
	if cfg.PasteQueue == nil {
		return fmt.Errorf("pasteQueue is nil")
	}
	if cfg.I18n == nil {
		return fmt.Errorf("i18n is nil")
	}
	return nil
}

func (b *Bot) Run() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	b.pasteQueue.Run(b.onPasteReady)
	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if msg := update.Message; msg != nil {
			b.handleMsg(msg)
		}
	}
}

func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
	b.pasteQueue.Stop()
}

func (b *Bot) handlePanic(msg *tgbotapi.Message) {
	if rec := recover(); rec != nil {
		b.reply(msg, panicMsgID)
		log.Println("panic:", rec, "stack:", string(debug.Stack()))
	}
}

func (b *Bot) handleMsg(msg *tgbotapi.Message) {
	defer b.handlePanic(msg)

	switch cmd := msg.Command(); cmd {
	case "start":
		b.start(msg)
	case "load":
		b.load(msg, false)
	case "reload":
		b.load(msg, true)
	case "loadurl":
		b.loadURL(msg)
	case "chunksize":
		b.chunkSize(msg)
	case "more":
		b.more(msg)
	case "status":
		b.status(msg)
	case "help":
		b.help(msg)
	case "ping":
		b.ping(msg)
	default:
		if cmd != "" {
			if b.handleAdminMsg(msg) {
				return
			}
			log.Println("unknown command:", cmd)
			b.reply(msg, errorUnknownCommandMsgID)
			return
		}
		b.onPlainText(msg)
	}

	// command list for bot father
	/*
		/setcommands
		load - load a text into this chat, title as argument
		loadurl - load an article from a link
		reload - replace the loaded text, title as argument
		chunksize - set paragraphs per delivery (1-50)
		start - begin daily delivery
		more - get the next portion right now
		status - show reading progress
		help - commands and usage
	*/
}

// start begins daily delivery, or greets when nothing is loaded yet:
// telegram sends /start on first contact with the bot.
func (b *Bot) start(msg *tgbotapi.Message) {
	_, err := b.service.Begin(msg.Chat.ID)
	if errors.Is(err, registry.ErrNotFound) {
		b.reply(msg, greetingMsgID)
		return
	}
	if err != nil {
		b.replyErr(msg, errorGenericMsgID, err)
		return
	}
	b.reply(msg, startedMsgID)
}

func (b *Bot) load(msg *tgbotapi.Message, force bool) {
	title, content, _ := strings.Cut(msg.CommandArguments(), "\n")
	title = strings.TrimSpace(title)
	if title == "" {
		b.reply(msg, loadUsageMsgID)
		return
	}
	// a new /load supersedes a half-collected previous one: drop its parts
	// so they cannot leak into this book
	b.pasteQueue.Discard(msg.Chat.ID)
	if strings.TrimSpace(content) == "" {
		// text arrives in follow-up messages, collect them via the queue
		b.pendingMu.Lock()
		b.pending[msg.Chat.ID] = pendingLoad{title: title, force: force, lang: languageCode(msg.From)}
		b.pendingMu.Unlock()
		b.replyArgs(msg, awaitingContentMsgID, map[string]string{"title": title})
		return
	}
	b.pendingMu.Lock()
	delete(b.pending, msg.Chat.ID)
	b.pendingMu.Unlock()
	b.completeLoad(msg.Chat.ID, languageCode(msg.From), title, content, force)
}

func (b *Bot) onPlainText(msg *tgbotapi.Message) {
	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	if text == "" {
		return
	}
	b.pendingMu.Lock()
	_, waiting := b.pending[msg.Chat.ID]
	b.pendingMu.Unlock()
	if waiting {
		b.pasteQueue.Add(msg.Chat.ID, text)
	}
}

// onPasteReady completes a pending /load once the sender went quiet.
func (b *Bot) onPasteReady(chatID int64, text string) {
	b.pendingMu.Lock()
	p, ok := b.pending[chatID]
	delete(b.pending, chatID)
	b.pendingMu.Unlock()
	if !ok {
		return
	}
	b.completeLoad(chatID, p.lang, p.title, text, p.force)
}

func (b *Bot) completeLoad(chatID int64, lang, title, content string, force bool) {
	_, snap, err := b.service.LoadText(chatID, title, content, force)
	if err != nil {
		var alreadyLoaded *registry.AlreadyLoadedError
		switch {
		case errors.As(err, &alreadyLoaded):
			b.sendI18nArgs(chatID, lang, alreadyLoadedMsgID, map[string]string{"title": alreadyLoaded.Title})
		case errors.Is(err, registry.ErrEmptyTitle):
			b.sendI18n(chatID, lang, errorEmptyTitleMsgID)
		case errors.Is(err, textchunk.ErrNoParagraphs):
			b.sendI18n(chatID, lang, errorEmptyTextMsgID)
		default:
			b.sendErrI18n(chatID, lang, errorGenericMsgID, err)
		}
		return
	}
	b.sendI18nArgs(chatID, lang, loadedMsgID, map[string]string{
		"title":        snap.Title,
		"total_chunks": strconv.Itoa(snap.TotalChunks),
		"chunk_size":   strconv.Itoa(snap.ChunkSize),
	})
}

func (b *Bot) loadURL(msg *tgbotapi.Message) {
	link := strings.TrimSpace(msg.CommandArguments())
	if link == "" {
		b.reply(msg, loadURLUsageMsgID)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), scrapeTimeout)
	defer cancel()

	_, snap, err := b.service.LoadFromURL(ctx, msg.Chat.ID, link, false)
	if err != nil {
		var alreadyLoaded *registry.AlreadyLoadedError
		switch {
		case errors.As(err, &alreadyLoaded):
			b.replyArgs(msg, alreadyLoadedMsgID, map[string]string{"title": alreadyLoaded.Title})
		case errors.Is(err, webscraper.ErrInvalidLink),
			errors.Is(err, webscraper.ErrNoContent),
			errors.Is(err, textchunk.ErrNoParagraphs):
			b.replyErr(msg, errorScrapeMsgID, err)
		default:
			b.replyErr(msg, errorGenericMsgID, err)
		}
		return
	}
	b.replyArgs(msg, loadedMsgID, map[string]string{
		"title":        snap.Title,
		"total_chunks": strconv.Itoa(snap.TotalChunks),
		"chunk_size":   strconv.Itoa(snap.ChunkSize),
	})
}

func (b *Bot) chunkSize(msg *tgbotapi.Message) {
	size, err := strconv.Atoi(strings.TrimSpace(msg.CommandArguments()))
	if err != nil {
		b.reply(msg, errorChunkSizeMsgID)
		return
	}
	snap, err := b.service.SetChunkSize(msg.Chat.ID, size)
	switch {
	case errors.Is(err, registry.ErrInvalidChunkSize):
		b.reply(msg, errorChunkSizeMsgID)
	case errors.Is(err, registry.ErrNotFound):
		b.reply(msg, errorNotLoadedMsgID)
	case err != nil:
		b.replyErr(msg, errorGenericMsgID, err)
	default:
		b.replyArgs(msg, chunkSizeSetMsgID, map[string]string{
			"chunk_size":   strconv.Itoa(snap.ChunkSize),
			"total_chunks": strconv.Itoa(snap.TotalChunks),
		})
	}
}

func (b *Bot) more(msg *tgbotapi.Message) {
	sent, finished, err := b.service.More(msg.Chat.ID)
	switch {
	case errors.Is(err, registry.ErrNotFound):
		b.reply(msg, errorNotLoadedMsgID)
		return
	case errors.Is(err, registry.ErrNotStarted):
		b.reply(msg, errorNotStartedMsgID)
		return
	case err != nil:
		b.replyErr(msg, errorGenericMsgID, err)
		return
	}
	if sent == 0 {
		b.reply(msg, allSentMsgID)
		return
	}
	b.replyArgs(msg, moreSentMsgID, map[string]string{"count": strconv.Itoa(sent)})
	if finished {
		if snap, err := b.service.Status(msg.Chat.ID); err == nil {
			b.replyArgs(msg, finishedMsgID, map[string]string{"title": snap.Title})
		}
	}
}

func (b *Bot) status(msg *tgbotapi.Message) {
	snap, err := b.service.Status(msg.Chat.ID)
	if errors.Is(err, registry.ErrNotFound) {
		b.reply(msg, errorNotLoadedMsgID)
		return
	}
	if err != nil {
		b.replyErr(msg, errorGenericMsgID, err)
		return
	}
	delivery := deliveryOffMsgID
	if snap.Started {
		delivery = deliveryOnMsgID
	}
	b.replyArgs(msg, statusMsgID, map[string]string{
		"title":        snap.Title,
		"cursor":       strconv.Itoa(snap.Cursor),
		"total_chunks": strconv.Itoa(snap.TotalChunks),
		"chunk_size":   strconv.Itoa(snap.ChunkSize),
		"percent":      strconv.Itoa(service.CompletionPercent(snap.Cursor, snap.TotalChunks)),
		"delivery":     b.text(languageCode(msg.From), delivery, nil),
	})
}

func (b *Bot) help(msg *tgbotapi.Message) {
	b.reply(msg, helpMsgID)
}

func (b *Bot) ping(msg *tgbotapi.Message) {
	b.reply(msg, pongMsgID)
}
