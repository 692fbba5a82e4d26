package app

import (
	"context"
	"encoding/json"
	"sort"

	"vocab_reminder_bot/internal/domain/reminder"

	"github.com/sirupsen/logrus"
)

// LoadSettings reads the persisted reminder settings. A missing or corrupt
// record yields (nil, nil): the engine treats both as "no settings yet".
func LoadSettings(ctx context.Context, store reminder.StateStore, userID int64) (*reminder.Settings, error) {
	raw, ok, err := store.Get(ctx, userID, reminder.PurposeSettings)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var s reminder.Settings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, nil
	}
	return &s, nil
}

// SaveSettings rewrites the settings record wholesale.
func SaveSettings(ctx context.Context, store reminder.StateStore, userID int64, s *reminder.Settings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return store.Set(ctx, userID, reminder.PurposeSettings, string(raw))
}

func loadShownIDs(ctx context.Context, store reminder.StateStore, userID int64, logger *logrus.Entry) (map[string]struct{}, error) {
	ids := make(map[string]struct{})
	raw, ok, err := store.Get(ctx, userID, reminder.PurposeShownIDs)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return ids, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		logger.WithError(err).Warn("Corrupt shown-id ledger, starting empty")
		return ids, nil
	}
	for _, id := range list {
		ids[id] = struct{}{}
	}
	return ids, nil
}

func saveShownIDs(ctx context.Context, store reminder.StateStore, userID int64, ids map[string]struct{}) error {
	list := make([]string, 0, len(ids))
	for id := range ids {
		list = append(list, id)
	}
	sort.Strings(list)
	raw, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return store.Set(ctx, userID, reminder.PurposeShownIDs, string(raw))
}

func loadScheduled(ctx context.Context, store reminder.StateStore, userID int64, logger *logrus.Entry) ([]reminder.ScheduledEntry, error) {
	raw, ok, err := store.Get(ctx, userID, reminder.PurposeScheduled)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var entries []reminder.ScheduledEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		logger.WithError(err).Warn("Corrupt scheduled ledger, treating as empty")
		return nil, nil
	}
	return entries, nil
}
