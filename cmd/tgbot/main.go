package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ovcharenko/daily-reader/cmd/tgbot/internal/bot"
	"github.com/ovcharenko/daily-reader/internal/registry"
	"github.com/ovcharenko/daily-reader/internal/scheduler"
	"github.com/ovcharenko/daily-reader/internal/service"
	"github.com/ovcharenko/daily-reader/internal/status"
	"github.com/ovcharenko/daily-reader/pkg/i18n"
	"github.com/ovcharenko/daily-reader/pkg/queue"
	"github.com/ovcharenko/daily-reader/pkg/watcher"
	"github.com/ovcharenko/daily-reader/pkg/webscraper"
)

type config struct {
	TgToken          string  `json:"tg_token"`
	Debug            bool    `json:"debug"`
	DefaultChunkSize int     `json:"default_chunk_size"`
	DeliveryHours    int     `json:"delivery_hours"`
	Admins           []int64 `json:"admins"`
	StatusAddr       string  `json:"status_addr"`
	I18nPath         string  `json:"i18n_path"`
}

func readCfg(path string) (*config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var c config
	if err := json.NewDecoder(f).Decode(&c); err != nil {
		return nil, err
	}
	if c.DefaultChunkSize == 0 {
		c.DefaultChunkSize = registry.DefaultChunkSize
	}
	if c.DeliveryHours == 0 {
		c.DeliveryHours = 24
	}
	return &c, nil
}

func main() {
	if err := run(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := "./cfg.json"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}
	cfg, err := readCfg(cfgPath)
	if err != nil {
		return err
	}

	i18nCatalog, err := i18n.New()
	if err != nil {
		return err
	}
	if cfg.I18nPath != "" {
		w, err := watcher.LoadAndWatch(cfg.I18nPath, i18nCatalog)
		if err != nil {
			return err
		}
		defer w.Close()
	}

	api, err := tgbotapi.NewBotAPI(cfg.TgToken)
	if err != nil {
		return err
	}
	api.Debug = cfg.Debug
	log.Printf("authorized on account %s", api.Self.UserName)

	reg := registry.New(registry.Config{DefaultChunkSize: cfg.DefaultChunkSize})
	svc := service.NewService(reg, bot.NewSender(api), webscraper.New())

	b, err := bot.NewBot(bot.Config{
		API:        api,
		Service:    svc,
		PasteQueue: queue.NewPasteQueue(queue.Config{}),
		I18n:       i18nCatalog,
		AdminUsers: cfg.Admins,
	})
	if err != nil {
		return err
	}

	sched := scheduler.New(scheduler.Config{
		Interval: time.Duration(cfg.DeliveryHours) * time.Hour,
	}, func(runID string, now time.Time) {
		for _, d := range svc.DeliverDue(now) {
			if d.Err != nil {
				log.Printf("delivery run %s at %s: thread %d (%s): %v",
					runID, d.At.Format(time.RFC3339), d.ThreadID, d.Title, d.Err)
				continue
			}
			log.Printf("delivery run %s at %s: thread %d (%s): sent %d chunk(s), finished=%t",
				runID, d.At.Format(time.RFC3339), d.ThreadID, d.Title, d.Sent, d.Finished)
		}
	})
	sched.Run()
	defer sched.Stop()

	if cfg.StatusAddr != "" {
		statusSrv := status.NewServer(cfg.StatusAddr, svc)
		go func() {
			if err := statusSrv.Run(); err != nil {
				log.Printf("status server: %v", err)
			}
		}()
	}

	go b.Run()

	terminate := make(chan os.Signal, 1)
	signal.Notify(terminate, syscall.SIGINT, syscall.SIGTERM)

	<-terminate
	b.Stop()

	return nil
}
