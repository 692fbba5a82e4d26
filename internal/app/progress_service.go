package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"vocab_reminder_bot/internal/domain/delivery"
	"vocab_reminder_bot/internal/domain/item"
	"vocab_reminder_bot/internal/domain/reminder"

	"github.com/sirupsen/logrus"
)

const (
	completionTitle = "All done!"
	completionBody  = "You have been shown every item in this cycle. Reminders are now off."

	completionCheckTimeout = 30 * time.Second
)

// ProgressService reconciles the shown-id history against the target set and
// enacts the one-shot completion transition.
type ProgressService interface {
	// Progress returns the completion counters for set, folding in
	// notifications whose trigger time has passed. Returns (nil, nil)
	// when no library is selected.
	Progress(ctx context.Context, set *reminder.Settings) (*reminder.Progress, error)
	// MarkShown records an item as shown (idempotent) and immediately
	// rechecks completion.
	MarkShown(ctx context.Context, itemID string) error
	// CompleteIfActive flips enabled from true to false exactly once,
	// sends the final notification and publishes the refresh signal.
	// Reports whether this call performed the transition; duplicate calls
	// are safe.
	CompleteIfActive(ctx context.Context) (bool, error)
	// Reset clears the shown and scheduled ledgers together, starting a
	// clean completion cycle.
	Reset(ctx context.Context) error
}

type ProgressServiceImpl struct {
	items    item.Repository
	store    reminder.StateStore
	delivery delivery.Client
	signal   *RefreshSignal
	logger   *logrus.Entry
	userID   int64

	now func() time.Time
	// mu serializes every read-modify-write on the shown ledger and the
	// settings record; without it a settings save racing a progress poll
	// could lose updates.
	mu sync.Mutex
}

func NewProgressService(
	items item.Repository,
	store reminder.StateStore,
	dc delivery.Client,
	signal *RefreshSignal,
	logger *logrus.Entry,
	userID int64,
) *ProgressServiceImpl {
	return &ProgressServiceImpl{
		items:    items,
		store:    store,
		delivery: dc,
		signal:   signal,
		logger:   logger,
		userID:   userID,
		now:      time.Now,
	}
}

func (s *ProgressServiceImpl) Progress(ctx context.Context, set *reminder.Settings) (*reminder.Progress, error) {
	if set == nil || set.LibraryID == "" {
		return nil, nil
	}

	scoped, err := scopedItems(ctx, s.items, set)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	// The denominator keeps shown items in; only the range filter applies.
	filtered := FilteredSet(set, scoped)

	shown, err := s.absorbFiredEntries(ctx)
	if err != nil {
		return nil, err
	}

	progress := &reminder.Progress{Total: len(filtered)}
	for _, it := range filtered {
		if _, ok := shown[it.ID]; ok {
			progress.Current++
		}
	}

	if progress.Total > 0 && progress.Current >= progress.Total && set.Enabled {
		// Decoupled from this call's return; CompleteIfActive guards
		// against double transitions on its own.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), completionCheckTimeout)
			defer cancel()
			if _, err := s.CompleteIfActive(ctx); err != nil {
				s.logger.WithError(err).Error("Completion transition failed")
			}
		}()
	}
	return progress, nil
}

// absorbFiredEntries merges scheduled-ledger entries whose trigger time has
// passed into the shown set. A fired-but-unopened notification still counts
// as delivered; the shown ledger alone only grows when the user interacts.
func (s *ProgressServiceImpl) absorbFiredEntries(ctx context.Context) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shown, err := loadShownIDs(ctx, s.store, s.userID, s.logger)
	if err != nil {
		return nil, fmt.Errorf("load shown ids: %w", err)
	}
	scheduled, err := loadScheduled(ctx, s.store, s.userID, s.logger)
	if err != nil {
		return nil, fmt.Errorf("load scheduled ledger: %w", err)
	}

	now := s.now()
	merged := false
	for _, entry := range scheduled {
		if entry.TriggerAt.After(now) {
			continue
		}
		if _, ok := shown[entry.ItemID]; !ok {
			shown[entry.ItemID] = struct{}{}
			merged = true
		}
	}
	if merged {
		if err := saveShownIDs(ctx, s.store, s.userID, shown); err != nil {
			// Write-back is best-effort; the merge still counts for
			// this call.
			s.logger.WithError(err).Error("Failed to write back inferred shown ids")
		}
	}
	return shown, nil
}

func (s *ProgressServiceImpl) MarkShown(ctx context.Context, itemID string) error {
	s.mu.Lock()
	shown, err := loadShownIDs(ctx, s.store, s.userID, s.logger)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("load shown ids: %w", err)
	}
	if _, ok := shown[itemID]; !ok {
		shown[itemID] = struct{}{}
		if err := saveShownIDs(ctx, s.store, s.userID, shown); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("save shown ids: %w", err)
		}
	}
	s.mu.Unlock()

	// Recheck right away so completion is detected as soon as the last
	// item is marked, not only on the next scheduled poll.
	set, err := LoadSettings(ctx, s.store, s.userID)
	if err != nil {
		return err
	}
	if !set.Active() {
		return nil
	}
	scoped, err := scopedItems(ctx, s.items, set)
	if err != nil {
		return fmt.Errorf("load items: %w", err)
	}
	filtered := FilteredSet(set, scoped)
	current := 0
	for _, it := range filtered {
		if _, ok := shown[it.ID]; ok {
			current++
		}
	}
	if len(filtered) > 0 && current >= len(filtered) {
		_, err := s.CompleteIfActive(ctx)
		return err
	}
	return nil
}

func (s *ProgressServiceImpl) CompleteIfActive(ctx context.Context) (bool, error) {
	s.mu.Lock()
	set, err := LoadSettings(ctx, s.store, s.userID)
	if err != nil {
		s.mu.Unlock()
		return false, err
	}
	if !set.Active() {
		s.mu.Unlock()
		return false, nil
	}
	set.Enabled = false
	if err := SaveSettings(ctx, s.store, s.userID, set); err != nil {
		s.mu.Unlock()
		return false, fmt.Errorf("disable settings: %w", err)
	}
	s.mu.Unlock()

	done := delivery.Payload{Title: completionTitle, Body: completionBody, LibraryID: set.LibraryID}
	if err := s.delivery.Send(ctx, done); err != nil {
		s.logger.WithError(err).Error("Failed to send completion notification")
	}
	// The ledgers stay as they are so progress still reads 100% after the
	// transition; the next enable resets them.
	s.signal.Publish()
	s.logger.WithField("library_id", set.LibraryID).Info("Completion transition performed, reminders disabled")
	return true, nil
}

func (s *ProgressServiceImpl) Reset(ctx context.Context) error {
	if err := s.clearLedgers(ctx); err != nil {
		return err
	}
	s.signal.Publish()
	return nil
}

func (s *ProgressServiceImpl) clearLedgers(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	purposes := []reminder.Purpose{
		reminder.PurposeShownIDs,
		reminder.PurposeScheduled,
		reminder.PurposeLastIndex,
	}
	for _, p := range purposes {
		if err := s.store.Remove(ctx, s.userID, p); err != nil {
			return fmt.Errorf("clear %s: %w", p, err)
		}
	}
	return nil
}
