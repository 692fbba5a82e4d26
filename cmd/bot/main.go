package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vocab_reminder_bot/internal/app"
	"vocab_reminder_bot/internal/infra/config"
	idb "vocab_reminder_bot/internal/infra/database"
	"vocab_reminder_bot/internal/infra/logger"
	"vocab_reminder_bot/internal/infra/scheduler"
	"vocab_reminder_bot/internal/infra/telegram"

	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	appLogger := logger.New(cfg)
	mainLog := appLogger.WithField("component", "main")
	mainLog.WithField("environment", cfg.Environment).Info("Vocab reminder bot starting")

	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		mainLog.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	mainLog.Info("Database connection established")

	itemRepo := idb.NewPostgresItemRepository(db)
	stateStore := idb.NewPostgresStateStore(db)

	bot, err := telebot.NewBot(telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			entry := appLogger.WithError(err).WithField("component", "telebot")
			if c != nil && c.Sender() != nil {
				entry = entry.WithField("sender_id", c.Sender().ID)
			}
			entry.Error("Bot handler error")
		},
	})
	if err != nil {
		mainLog.WithError(err).Fatal("Could not create Telegram bot")
	}

	deliveryClient := telegram.NewTelebotDelivery(bot, cfg.UserChatID, appLogger.WithField("component", "delivery"))
	refreshSignal := app.NewRefreshSignal()

	progressService := app.NewProgressService(
		itemRepo, stateStore, deliveryClient, refreshSignal,
		appLogger.WithField("component", "progress"), cfg.UserChatID,
	)
	reminderService := app.NewReminderService(
		itemRepo, stateStore, deliveryClient, progressService,
		appLogger.WithField("component", "reminder"), cfg.UserChatID,
	)

	progressScheduler := scheduler.NewProgressScheduler(
		progressService, stateStore,
		appLogger.WithField("component", "scheduler"),
		cfg.UserChatID, cfg.CronSpecProgressCheck,
	)
	if err := progressScheduler.Start(); err != nil {
		mainLog.WithError(err).Fatal("Could not start progress scheduler")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	refreshCh, unsubscribe := refreshSignal.Subscribe()
	defer unsubscribe()
	go func() {
		for {
			select {
			case <-refreshCh:
				mainLog.Info("Reminder settings changed out of band")
			case <-ctx.Done():
				return
			}
		}
	}()

	telegram.RegisterBotCommands(ctx, bot, stateStore, reminderService, progressService, deliveryClient, cfg.UserChatID, appLogger.WithField("component", "handlers"))
	telegram.RegisterAdminHandlers(ctx, bot, itemRepo, cfg.AdminTelegramID, appLogger.WithField("component", "handlers"))
	mainLog.Info("Command handlers registered")

	go bot.Start()
	mainLog.Info("Bot started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	mainLog.Info("Shutting down")
	cancel()
	bot.Stop()
	progressScheduler.Stop()
	deliveryClient.Stop()
	mainLog.Info("Shut down gracefully")
}
