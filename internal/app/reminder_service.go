package app

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"vocab_reminder_bot/internal/domain/delivery"
	"vocab_reminder_bot/internal/domain/item"
	"vocab_reminder_bot/internal/domain/reminder"

	"github.com/sirupsen/logrus"
)

const (
	// BatchSize caps how many notifications one reschedule may queue.
	BatchSize = 50

	// cancelSettleDelay absorbs eventual-consistency lag in the delivery
	// backend between a bulk cancel and the replacement batch.
	cancelSettleDelay = 500 * time.Millisecond

	wordOnlyBody     = "What does this mean? Tap to check yourself."
	meaningOnlyTitle = "Vocabulary quiz"
)

// ReminderService turns the current settings into a batch of future-fired
// notifications and records what was scheduled.
type ReminderService interface {
	// Reschedule replaces every pending notification with a fresh batch
	// computed from s. With nothing left to schedule it runs the
	// completion transition instead.
	Reschedule(ctx context.Context, s *reminder.Settings) error
	// CancelAll drops all pending notifications without touching settings.
	CancelAll(ctx context.Context) error
}

type ReminderServiceImpl struct {
	items    item.Repository
	store    reminder.StateStore
	delivery delivery.Client
	progress ProgressService
	logger   *logrus.Entry
	userID   int64

	rng    *rand.Rand
	now    func() time.Time
	settle time.Duration
}

func NewReminderService(
	items item.Repository,
	store reminder.StateStore,
	dc delivery.Client,
	progress ProgressService,
	logger *logrus.Entry,
	userID int64,
) *ReminderServiceImpl {
	return &ReminderServiceImpl{
		items:    items,
		store:    store,
		delivery: dc,
		progress: progress,
		logger:   logger,
		userID:   userID,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
		settle:   cancelSettleDelay,
	}
}

func (s *ReminderServiceImpl) Reschedule(ctx context.Context, set *reminder.Settings) error {
	if err := s.delivery.CancelAll(ctx); err != nil {
		return fmt.Errorf("cancel pending notifications: %w", err)
	}
	if err := s.settleAfterCancel(ctx); err != nil {
		return err
	}

	if !set.Active() {
		s.logger.Info("Reminders disabled or no library selected, nothing to schedule")
		return nil
	}

	scoped, err := scopedItems(ctx, s.items, set)
	if err != nil {
		return fmt.Errorf("load items: %w", err)
	}
	shown, err := loadShownIDs(ctx, s.store, s.userID, s.logger)
	if err != nil {
		return fmt.Errorf("load shown ids: %w", err)
	}

	targets := TargetItems(set, scoped, shown, s.rng)
	if len(targets) == 0 {
		s.logger.Info("Every target item has been shown, running completion transition")
		_, err := s.progress.CompleteIfActive(ctx)
		return err
	}
	if len(targets) > BatchSize {
		targets = targets[:BatchSize]
	}

	now := s.now()
	ledger := make([]reminder.ScheduledEntry, 0, len(targets))
	for i, it := range targets {
		triggerAt := now.Add(time.Duration(set.IntervalMinutes*(i+1)) * time.Minute)
		payload := buildPayload(set, it, i, triggerAt)
		if err := s.delivery.ScheduleAt(ctx, payload, triggerAt); err != nil {
			// Best-effort fan-out: one failed slot must not sink the batch.
			s.logger.WithError(err).WithField("item_id", it.ID).Error("Failed to schedule notification, skipping item")
			continue
		}
		ledger = append(ledger, reminder.ScheduledEntry{ItemID: it.ID, TriggerAt: triggerAt})
	}

	if err := s.persistLedger(ctx, ledger); err != nil {
		// Losing the ledger degrades progress inference, not delivery.
		s.logger.WithError(err).Error("Failed to persist scheduled ledger")
	}
	s.logger.WithFields(logrus.Fields{
		"library_id": set.LibraryID,
		"scheduled":  len(ledger),
	}).Info("Reminder batch scheduled")
	return nil
}

func (s *ReminderServiceImpl) CancelAll(ctx context.Context) error {
	return s.delivery.CancelAll(ctx)
}

// settleAfterCancel waits out the cancel settling window, honoring context
// cancellation.
func (s *ReminderServiceImpl) settleAfterCancel(ctx context.Context) error {
	if s.settle <= 0 {
		return nil
	}
	timer := time.NewTimer(s.settle)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *ReminderServiceImpl) persistLedger(ctx context.Context, ledger []reminder.ScheduledEntry) error {
	raw, err := json.Marshal(ledger)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, s.userID, reminder.PurposeScheduled, string(raw))
}

// scopedItems loads items by section when one is selected, by library
// otherwise.
func scopedItems(ctx context.Context, repo item.Repository, set *reminder.Settings) ([]item.Item, error) {
	if set.WholeLibrary() {
		return repo.ListByLibrary(ctx, set.LibraryID)
	}
	return repo.ListBySection(ctx, set.SectionID)
}

func buildPayload(set *reminder.Settings, it item.Item, batchIndex int, triggerAt time.Time) delivery.Payload {
	p := delivery.Payload{
		LibraryID:  set.LibraryID,
		ItemID:     it.ID,
		Question:   it.Question,
		Answer:     it.Answer,
		BatchIndex: batchIndex,
		TriggerAt:  triggerAt,
	}
	switch set.Format {
	case reminder.FormatWordOnly:
		p.Title = it.Question
		p.Body = wordOnlyBody
	case reminder.FormatMeaningOnly:
		p.Title = meaningOnlyTitle
		p.Body = it.Answer
	default:
		p.Title = it.Question
		p.Body = it.Answer
		if it.Memo.Valid && it.Memo.String != "" {
			p.Body = fmt.Sprintf("%s (%s)", it.Answer, it.Memo.String)
		}
	}
	return p
}
