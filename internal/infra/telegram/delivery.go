package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"vocab_reminder_bot/internal/domain/delivery"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const scheduledTagPrefix = "reminder"

// TelebotDelivery implements delivery.Client over a single Telegram chat.
// Future-fired notifications are held as tagged one-shot gocron jobs until
// their trigger time.
type TelebotDelivery struct {
	bot    *telebot.Bot
	chatID int64
	jobs   *gocron.Scheduler
	logger *logrus.Entry
}

func NewTelebotDelivery(b *telebot.Bot, chatID int64, logger *logrus.Entry) *TelebotDelivery {
	jobs := gocron.NewScheduler(time.UTC)
	jobs.StartAsync()
	return &TelebotDelivery{bot: b, chatID: chatID, jobs: jobs, logger: logger}
}

// RequestPermission probes whether the bot can reach the target chat, the
// closest Telegram analogue to a notification-permission prompt.
func (d *TelebotDelivery) RequestPermission(ctx context.Context) (bool, error) {
	if _, err := d.bot.ChatByID(d.chatID); err != nil {
		d.logger.WithError(err).WithField("chat_id", d.chatID).Warn("Target chat is not reachable")
		return false, nil
	}
	return true, nil
}

func (d *TelebotDelivery) ScheduleAt(ctx context.Context, p delivery.Payload, at time.Time) error {
	tag := scheduledTag(p.ItemID, at)
	_, err := d.jobs.Every(1).Day().StartAt(at).LimitRunsTo(1).Tag(tag).Do(func() {
		if err := d.Send(context.Background(), p); err != nil {
			d.logger.WithError(err).WithField("item_id", p.ItemID).Error("Failed to deliver scheduled reminder")
		}
	})
	if err != nil {
		return fmt.Errorf("queue notification for %s: %w", at.Format(time.RFC3339), err)
	}
	return nil
}

func (d *TelebotDelivery) Send(ctx context.Context, p delivery.Payload) error {
	text := fmt.Sprintf("*%s*\n%s", p.Title, p.Body)
	opts := &telebot.SendOptions{ParseMode: telebot.ModeMarkdown}
	if p.ItemID != "" {
		markup := &telebot.ReplyMarkup{}
		btnShown := markup.Data("Got it", fmt.Sprintf("shown_%s", p.ItemID))
		markup.Inline(markup.Row(btnShown))
		opts.ReplyMarkup = markup
	}
	_, err := d.bot.Send(&telebot.User{ID: d.chatID}, text, opts)
	return err
}

func (d *TelebotDelivery) CancelAll(ctx context.Context) error {
	d.jobs.Clear()
	return nil
}

func (d *TelebotDelivery) ListScheduled(ctx context.Context) ([]delivery.Scheduled, error) {
	var out []delivery.Scheduled
	for _, job := range d.jobs.Jobs() {
		for _, tag := range job.Tags() {
			if itemID, at, ok := parseScheduledTag(tag); ok {
				out = append(out, delivery.Scheduled{ItemID: itemID, TriggerAt: at})
			}
		}
	}
	return out, nil
}

// Stop shuts down the job runner. Pending notifications are dropped.
func (d *TelebotDelivery) Stop() {
	d.jobs.Stop()
}

func scheduledTag(itemID string, at time.Time) string {
	return fmt.Sprintf("%s:%s:%d", scheduledTagPrefix, itemID, at.Unix())
}

func parseScheduledTag(tag string) (itemID string, at time.Time, ok bool) {
	parts := strings.Split(tag, ":")
	if len(parts) != 3 || parts[0] != scheduledTagPrefix {
		return "", time.Time{}, false
	}
	unix, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return "", time.Time{}, false
	}
	return parts[1], time.Unix(unix, 0), true
}
