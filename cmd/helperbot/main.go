package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/daus212/it-helper-bot/pkg/audit"
	"github.com/daus212/it-helper-bot/pkg/bot"
	"github.com/daus212/it-helper-bot/pkg/bus"
	"github.com/daus212/it-helper-bot/pkg/channels"
	"github.com/daus212/it-helper-bot/pkg/classifier"
	"github.com/daus212/it-helper-bot/pkg/config"
	"github.com/daus212/it-helper-bot/pkg/knowledge"
	"github.com/daus212/it-helper-bot/pkg/providers"
	"github.com/daus212/it-helper-bot/pkg/ratelimit"
	"github.com/daus212/it-helper-bot/pkg/router"
	"github.com/daus212/it-helper-bot/pkg/utils"
)

func main() {
	configPath := flag.String("c", "", "Path to config file")
	flag.Parse()

	// .env is optional; the config file and real environment still apply.
	godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	utils.SetupLogger(filepath.Join(cfg.Bot.Workspace, "logs"))

	lex := loadLexicon(cfg.Storage.LexiconPath)
	clf, err := classifier.New(lex)
	if err != nil {
		log.Fatalf("invalid lexicon: %v", err)
	}

	kb := knowledge.NewStore(cfg.Storage.KnowledgePath)
	auditLog := audit.NewLog(cfg.Storage.AuditPath)

	limiter := ratelimit.New(
		time.Duration(cfg.RateLimit.WindowSeconds)*time.Second,
		cfg.RateLimit.MaxRequests,
	)

	sweeper := cron.New()
	if _, err := sweeper.AddFunc(cfg.RateLimit.SweepSchedule, limiter.Sweep); err != nil {
		log.Fatalf("invalid sweep schedule %q: %v", cfg.RateLimit.SweepSchedule, err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	client := providers.NewClient(
		cfg.Models.APIKey,
		cfg.Models.APIBase,
		time.Duration(cfg.Models.TimeoutSeconds)*time.Second,
	)

	modelRouter := router.New(router.Config{
		Knowledge:    kb,
		Classifier:   clf,
		Provider:     client,
		APIKey:       cfg.Models.APIKey,
		SystemPrompt: cfg.Models.SystemPrompt,
		FastParams:   modelParams(cfg, cfg.Models.FastModel, cfg.Models.MaxTokensFast),
		DeepParams:   modelParams(cfg, cfg.Models.DeepModel, cfg.Models.MaxTokensDeep),
		Replies: router.Replies{
			ConfigError: cfg.Replies.ConfigError,
			Busy:        cfg.Replies.Busy,
			ServerError: cfg.Replies.ServerError,
			Timeout:     cfg.Replies.Timeout,
			Generic:     cfg.Replies.Generic,
		},
	})

	messageBus := bus.NewMessageBus()
	state := bot.NewState(cfg.Bot.Active)

	chans := make(map[string]channels.Channel)
	if cfg.Channels.WhatsApp.Enabled {
		wa := channels.NewWhatsAppChannel(&cfg.Channels.WhatsApp, messageBus)
		if err := wa.Start(); err != nil {
			log.Printf("error starting WhatsApp channel: %v", err)
		} else {
			chans[wa.Name()] = wa
		}
	}
	if cfg.Channels.Telegram.Enabled {
		tg := channels.NewTelegramChannel(&cfg.Channels.Telegram, messageBus)
		if err := tg.Start(); err != nil {
			log.Printf("error starting Telegram channel: %v", err)
		} else {
			chans[tg.Name()] = tg
		}
	}
	if len(chans) == 0 {
		log.Fatalf("no channels enabled, nothing to do")
	}

	orchestrator := &bot.Orchestrator{
		Bus:      messageBus,
		Channels: chans,
		State:    state,
		Commands: &bot.Commands{
			Owner:     cfg.Bot.OwnerNumber,
			State:     state,
			Knowledge: kb,
			Audit:     auditLog,
		},
		Classifier: clf,
		Limiter:    limiter,
		Router:     modelRouter,
		Audit:      auditLog,
		Replies: bot.Replies{
			RateLimited: cfg.Replies.RateLimited,
			Image:       cfg.Replies.Image,
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go orchestrator.Run(ctx)

	log.Printf("IT Helper Bot started")
	log.Printf("bot status: %s", statusText(state.Active()))
	if cfg.Bot.OwnerNumber != "" {
		log.Printf("owner: %s", cfg.Bot.OwnerNumber)
	}

	<-ctx.Done()

	log.Printf("shutting down")
	for _, ch := range chans {
		if err := ch.Stop(); err != nil {
			log.Printf("error stopping %s channel: %v", ch.Name(), err)
		}
	}
	messageBus.Stop()
}

// loadLexicon falls back to the built-in lexicon when the file is absent.
func loadLexicon(path string) *classifier.Lexicon {
	lex, err := classifier.LoadLexicon(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("error loading lexicon, using built-in: %v", err)
		}
		return classifier.DefaultLexicon()
	}
	log.Printf("lexicon loaded from %s", path)
	return lex
}

func modelParams(cfg *config.Config, model string, maxTokens int) providers.Params {
	return providers.Params{
		Model:            model,
		MaxTokens:        maxTokens,
		Temperature:      cfg.Models.Temperature,
		TopP:             cfg.Models.TopP,
		PresencePenalty:  cfg.Models.PresencePenalty,
		FrequencyPenalty: cfg.Models.FrequencyPenalty,
	}
}

func statusText(active bool) string {
	if active {
		return "Aktif"
	}
	return "Nonaktif"
}
