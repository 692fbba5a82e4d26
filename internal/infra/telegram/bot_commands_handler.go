package telegram

import (
	"context"
	"fmt"
	"strings"

	"vocab_reminder_bot/internal/app"
	"vocab_reminder_bot/internal/domain/delivery"
	"vocab_reminder_bot/internal/domain/reminder"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterBotCommands wires the user-facing reminder commands and the
// "Got it" callback onto the bot.
func RegisterBotCommands(
	ctx context.Context,
	b *telebot.Bot,
	store reminder.StateStore,
	reminderService app.ReminderService,
	progressService app.ProgressService,
	deliveryClient delivery.Client,
	userID int64,
	baseLogger *logrus.Entry,
) {
	logger := baseLogger.WithField("handler_group", "reminder_commands")

	b.Handle("/start", func(c telebot.Context) error {
		return c.Send("Hi! I drip-feed your flashcards as scheduled reminders. Use /remind to start a cycle and /help for the full command list.")
	})

	b.Handle("/help", func(c telebot.Context) error {
		var help strings.Builder
		help.WriteString("Available commands:\n\n")
		help.WriteString("`/remind <libraryID> [key=value...]`\n - Start or replace a reminder cycle. Options: section, range (all|specific|learned|confused), from, to, format (both|word_only|meaning_only), order (sequential|random), interval (minutes, min 10).\n\n")
		help.WriteString("`/stop`\n - Turn reminders off and cancel everything pending.\n\n")
		help.WriteString("`/progress`\n - Show how far the current cycle has come.\n\n")
		help.WriteString("`/reset`\n - Forget which items were already shown and start the cycle over.\n\n")
		help.WriteString("`/help`\n - Show this message.")
		return c.Send(help.String(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})

	b.Handle("/remind", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := logger.WithField("command", "/remind").WithField("sender_id", senderID)

		settings, err := parseReminderSettings(c.Args())
		if err != nil {
			return c.Send(err.Error())
		}

		granted, err := deliveryClient.RequestPermission(ctx)
		if err != nil {
			logCtx.WithError(err).Error("Permission probe failed")
			return c.Send("Could not verify that I can message you. Please try again later.")
		}
		if !granted {
			return c.Send("I am not allowed to message this chat, so reminders cannot be enabled.")
		}

		if err := app.SaveSettings(ctx, store, userID, settings); err != nil {
			logCtx.WithError(err).Error("Failed to save reminder settings")
			return c.Send("Something went wrong saving your settings. Please try again.")
		}
		// A fresh enable starts a clean completion cycle.
		if err := progressService.Reset(ctx); err != nil {
			logCtx.WithError(err).Error("Failed to reset ledgers")
			return c.Send("Something went wrong resetting your progress. Please try again.")
		}
		if err := reminderService.Reschedule(ctx, settings); err != nil {
			logCtx.WithError(err).Error("Failed to schedule reminder batch")
			return c.Send("Your settings are saved, but scheduling failed. Use /remind again to retry.")
		}

		logCtx.WithField("library_id", settings.LibraryID).Info("Reminder cycle started")
		return c.Send(fmt.Sprintf("Reminders are on: library %s, every %d minutes. I will tell you when you have seen everything.",
			settings.LibraryID, settings.IntervalMinutes))
	})

	b.Handle("/stop", func(c telebot.Context) error {
		logCtx := logger.WithField("command", "/stop").WithField("sender_id", c.Sender().ID)

		settings, err := app.LoadSettings(ctx, store, userID)
		if err != nil {
			logCtx.WithError(err).Error("Failed to load settings")
			return c.Send("Something went wrong. Please try again.")
		}
		if settings == nil || !settings.Enabled {
			return c.Send("Reminders are already off.")
		}

		settings.Enabled = false
		if err := app.SaveSettings(ctx, store, userID, settings); err != nil {
			logCtx.WithError(err).Error("Failed to save disabled settings")
			return c.Send("Something went wrong. Please try again.")
		}
		if err := reminderService.CancelAll(ctx); err != nil {
			logCtx.WithError(err).Error("Failed to cancel pending notifications")
		}
		return c.Send("Reminders are off. Pending notifications were cancelled.")
	})

	b.Handle("/progress", func(c telebot.Context) error {
		logCtx := logger.WithField("command", "/progress").WithField("sender_id", c.Sender().ID)

		settings, err := app.LoadSettings(ctx, store, userID)
		if err != nil {
			logCtx.WithError(err).Error("Failed to load settings")
			return c.Send("Something went wrong. Please try again.")
		}

		progress, err := progressService.Progress(ctx, settings)
		if err != nil {
			logCtx.WithError(err).Error("Failed to compute progress")
			return c.Send("Something went wrong computing your progress. Please try again.")
		}
		if progress == nil {
			return c.Send("No reminder cycle is set up yet. Use /remind to start one.")
		}
		if progress.Total == 0 {
			return c.Send("The current settings match no items.")
		}
		percent := progress.Current * 100 / progress.Total
		return c.Send(fmt.Sprintf("Progress: %d of %d items shown (%d%%).", progress.Current, progress.Total, percent))
	})

	b.Handle("/reset", func(c telebot.Context) error {
		logCtx := logger.WithField("command", "/reset").WithField("sender_id", c.Sender().ID)

		if err := progressService.Reset(ctx); err != nil {
			logCtx.WithError(err).Error("Failed to reset ledgers")
			return c.Send("Something went wrong. Please try again.")
		}
		return c.Send("Progress cleared. The next batch starts from scratch.")
	})

	b.Handle(telebot.OnCallback, func(c telebot.Context) error {
		data := strings.TrimSpace(c.Callback().Data)
		data = strings.TrimPrefix(data, "\f") // telebot prefixes callback uniques

		if itemID, ok := strings.CutPrefix(data, "shown_"); ok {
			if err := progressService.MarkShown(ctx, itemID); err != nil {
				logger.WithError(err).WithField("item_id", itemID).Error("Failed to mark item as shown")
				return c.Respond(&telebot.CallbackResponse{Text: "Something went wrong."})
			}
			return c.Respond(&telebot.CallbackResponse{Text: "Marked as seen."})
		}

		logger.WithField("data", data).Warn("Unhandled callback")
		return c.Respond(&telebot.CallbackResponse{Text: "Unknown action."})
	})
}
