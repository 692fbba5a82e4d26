package scheduler

import (
	"context"
	"time"

	"vocab_reminder_bot/internal/app"
	"vocab_reminder_bot/internal/domain/reminder"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ProgressScheduler periodically reconciles progress so that fired-but-
// unopened notifications are folded into the shown ledger and completion
// fires without the user having to interact.
type ProgressScheduler struct {
	cronEngine       *cron.Cron
	progress         app.ProgressService
	store            reminder.StateStore
	logger           *logrus.Entry
	userID           int64
	cronSpecProgress string
}

func NewProgressScheduler(
	progress app.ProgressService,
	store reminder.StateStore,
	logger *logrus.Entry,
	userID int64,
	cronSpecProgress string,
) *ProgressScheduler {
	return &ProgressScheduler{
		cronEngine:       cron.New(cron.WithLocation(time.Local)),
		progress:         progress,
		store:            store,
		logger:           logger,
		userID:           userID,
		cronSpecProgress: cronSpecProgress,
	}
}

func (s *ProgressScheduler) Start() error {
	_, err := s.cronEngine.AddFunc(s.cronSpecProgress, s.reconcileProgress)
	if err != nil {
		return err
	}
	s.cronEngine.Start()
	s.logger.WithField("spec", s.cronSpecProgress).Info("Progress reconciliation scheduler started")
	return nil
}

func (s *ProgressScheduler) reconcileProgress() {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	settings, err := app.LoadSettings(ctx, s.store, s.userID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load settings for progress reconciliation")
		return
	}
	if !settings.Active() {
		return
	}

	progress, err := s.progress.Progress(ctx, settings)
	if err != nil {
		s.logger.WithError(err).Error("Progress reconciliation failed")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"current": progress.Current,
		"total":   progress.Total,
	}).Debug("Progress reconciled")
}

func (s *ProgressScheduler) Stop() {
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("Progress reconciliation scheduler stopped")
}
