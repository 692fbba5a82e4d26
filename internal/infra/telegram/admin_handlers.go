package telegram

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"vocab_reminder_bot/internal/domain/item"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const maxListedItems = 30

// RegisterAdminHandlers wires the item-management commands, available only
// to the configured admin.
func RegisterAdminHandlers(
	ctx context.Context,
	b *telebot.Bot,
	itemRepo item.Repository,
	adminTelegramID int64,
	baseLogger *logrus.Entry,
) {
	logger := baseLogger.WithField("handler_group", "admin")

	isAdmin := func(c telebot.Context) bool {
		return c.Sender().ID == adminTelegramID
	}

	// /add_item <libraryID>|<sectionID>|<question>|<answer>[|memo]
	b.Handle("/add_item", func(c telebot.Context) error {
		if !isAdmin(c) {
			return c.Send("You are not authorized to manage items.")
		}
		logCtx := logger.WithField("command", "/add_item")

		payload := strings.TrimSpace(c.Message().Payload)
		parts := strings.Split(payload, "|")
		if len(parts) < 4 || len(parts) > 5 {
			return c.Send("Usage: /add_item <libraryID>|<sectionID>|<question>|<answer>[|memo]")
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if parts[0] == "" || parts[1] == "" || parts[2] == "" || parts[3] == "" {
			return c.Send("Library, section, question and answer must all be non-empty.")
		}

		newItem := &item.Item{
			LibraryID: parts[0],
			SectionID: parts[1],
			Question:  parts[2],
			Answer:    parts[3],
		}
		if len(parts) == 5 && parts[4] != "" {
			newItem.Memo = sql.NullString{String: parts[4], Valid: true}
		}

		if err := itemRepo.Create(ctx, newItem); err != nil {
			logCtx.WithError(err).Error("Failed to create item")
			return c.Send("Could not create the item. Please try again.")
		}
		logCtx.WithField("item_id", newItem.ID).Info("Item created")
		return c.Send(fmt.Sprintf("Item created with id `%s` at position %d.", newItem.ID, newItem.DisplayOrder),
			&telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})

	// /set_status <itemID> <learned|confused|undecided>
	b.Handle("/set_status", func(c telebot.Context) error {
		if !isAdmin(c) {
			return c.Send("You are not authorized to manage items.")
		}
		logCtx := logger.WithField("command", "/set_status")

		args := c.Args()
		if len(args) != 2 {
			return c.Send("Usage: /set_status <itemID> <learned|confused|undecided>")
		}
		status := item.StudyStatus(args[1])
		if !status.Valid() {
			return c.Send(fmt.Sprintf("Unknown status %q.", args[1]))
		}

		if err := itemRepo.UpdateStudyStatus(ctx, args[0], status); err != nil {
			logCtx.WithError(err).WithField("item_id", args[0]).Error("Failed to update study status")
			return c.Send("Could not update the item. Does the id exist?")
		}
		return c.Send(fmt.Sprintf("Item %s is now marked %s.", args[0], status))
	})

	// /list_items <libraryID>
	b.Handle("/list_items", func(c telebot.Context) error {
		if !isAdmin(c) {
			return c.Send("You are not authorized to manage items.")
		}
		logCtx := logger.WithField("command", "/list_items")

		args := c.Args()
		if len(args) != 1 {
			return c.Send("Usage: /list_items <libraryID>")
		}

		items, err := itemRepo.ListByLibrary(ctx, args[0])
		if err != nil {
			logCtx.WithError(err).Error("Failed to list items")
			return c.Send("Could not list items. Please try again.")
		}
		if len(items) == 0 {
			return c.Send("That library has no items.")
		}

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("%d items:\n", len(items)))
		for i, it := range items {
			if i == maxListedItems {
				sb.WriteString(fmt.Sprintf("... and %d more\n", len(items)-maxListedItems))
				break
			}
			sb.WriteString(fmt.Sprintf("%d. [%s] %s: %s (%s)\n", it.DisplayOrder, it.ID, it.Question, it.Answer, it.StudyStatus))
		}
		return c.Send(sb.String())
	})
}
