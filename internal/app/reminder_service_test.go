package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"vocab_reminder_bot/internal/domain/item"
	"vocab_reminder_bot/internal/domain/reminder"
	"vocab_reminder_bot/internal/infra/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID int64 = 42

func newTestEngine(repo *fakeItemRepo, deliv *fakeDelivery, now time.Time) (*ReminderServiceImpl, *ProgressServiceImpl, *memory.StateStore) {
	store := memory.NewStateStore()
	logger := testLogger()
	progress := NewProgressService(repo, store, deliv, NewRefreshSignal(), logger, testUserID)
	progress.now = func() time.Time { return now }
	svc := NewReminderService(repo, store, deliv, progress, logger, testUserID)
	svc.now = func() time.Time { return now }
	svc.settle = 0
	return svc, progress, store
}

func scenarioItems() []item.Item {
	return []item.Item{
		{ID: "a", LibraryID: "L1", SectionID: "S1", Question: "qa", Answer: "aa", DisplayOrder: 2, StudyStatus: item.StatusUndecided},
		{ID: "b", LibraryID: "L1", SectionID: "S1", Question: "qb", Answer: "ab", DisplayOrder: 0, StudyStatus: item.StatusUndecided},
		{ID: "c", LibraryID: "L1", SectionID: "S1", Question: "qc", Answer: "ac", DisplayOrder: 1, StudyStatus: item.StatusConfused},
	}
}

func baseSettings() *reminder.Settings {
	return &reminder.Settings{
		Enabled:         true,
		LibraryID:       "L1",
		SectionID:       reminder.SectionAll,
		Range:           reminder.RangeAll,
		Format:          reminder.FormatBoth,
		Order:           reminder.OrderSequential,
		IntervalMinutes: 15,
	}
}

func storedLedger(t *testing.T, store *memory.StateStore) []reminder.ScheduledEntry {
	t.Helper()
	raw, ok, err := store.Get(context.Background(), testUserID, reminder.PurposeScheduled)
	require.NoError(t, err)
	require.True(t, ok, "scheduled ledger was not persisted")
	var entries []reminder.ScheduledEntry
	require.NoError(t, json.Unmarshal([]byte(raw), &entries))
	return entries
}

func TestRescheduleSequentialBatch(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := &fakeItemRepo{byLibrary: map[string][]item.Item{"L1": scenarioItems()}}
	deliv := &fakeDelivery{}
	svc, _, store := newTestEngine(repo, deliv, now)

	require.NoError(t, svc.Reschedule(context.Background(), baseSettings()))

	assert.Equal(t, 1, deliv.cancelCalls)
	require.Len(t, deliv.scheduled, 3)

	// display_order 0, 1, 2 with trigger times now+15m, +30m, +45m.
	wantIDs := []string{"b", "c", "a"}
	for i, call := range deliv.scheduled {
		assert.Equal(t, wantIDs[i], call.payload.ItemID)
		assert.Equal(t, now.Add(time.Duration(15*(i+1))*time.Minute), call.at)
		assert.Equal(t, i, call.payload.BatchIndex)
		assert.Equal(t, call.at, call.payload.TriggerAt)
		if i > 0 {
			assert.True(t, call.at.After(deliv.scheduled[i-1].at), "trigger times must be strictly increasing")
		}
	}

	ledger := storedLedger(t, store)
	require.Len(t, ledger, 3)
	for i, entry := range ledger {
		assert.Equal(t, wantIDs[i], entry.ItemID)
		assert.Equal(t, deliv.scheduled[i].at, entry.TriggerAt)
	}
}

func TestRescheduleConfusedRangeSchedulesOnlyConfusedItems(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := &fakeItemRepo{byLibrary: map[string][]item.Item{"L1": scenarioItems()}}
	deliv := &fakeDelivery{}
	svc, _, _ := newTestEngine(repo, deliv, now)

	settings := baseSettings()
	settings.Range = reminder.RangeConfused

	require.NoError(t, svc.Reschedule(context.Background(), settings))

	require.Len(t, deliv.scheduled, 1)
	assert.Equal(t, "c", deliv.scheduled[0].payload.ItemID)
}

func TestRescheduleAllItemsShownRunsCompletion(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := &fakeItemRepo{byLibrary: map[string][]item.Item{"L1": scenarioItems()}}
	deliv := &fakeDelivery{}
	svc, _, store := newTestEngine(repo, deliv, now)

	ctx := context.Background()
	settings := baseSettings()
	require.NoError(t, SaveSettings(ctx, store, testUserID, settings))
	require.NoError(t, store.Set(ctx, testUserID, reminder.PurposeShownIDs, `["a","b","c"]`))

	require.NoError(t, svc.Reschedule(ctx, settings))

	assert.Equal(t, 1, deliv.cancelCalls)
	assert.Empty(t, deliv.scheduled, "no batch may be scheduled after completion")
	assert.Equal(t, 1, deliv.sentCompletions())

	stored, err := LoadSettings(ctx, store, testUserID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.False(t, stored.Enabled, "completion must disable the settings")
}

func TestRescheduleWordOnlyFormatHidesAnswer(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := &fakeItemRepo{byLibrary: map[string][]item.Item{"L1": {
		{ID: "x", LibraryID: "L1", SectionID: "S1", Question: "Ambiguous", Answer: "애매모호한", DisplayOrder: 0},
	}}}
	deliv := &fakeDelivery{}
	svc, _, _ := newTestEngine(repo, deliv, now)

	settings := baseSettings()
	settings.Format = reminder.FormatWordOnly

	require.NoError(t, svc.Reschedule(context.Background(), settings))

	require.Len(t, deliv.scheduled, 1)
	p := deliv.scheduled[0].payload
	assert.Equal(t, "Ambiguous", p.Title)
	assert.NotContains(t, p.Body, "애매모호한")
	assert.Equal(t, wordOnlyBody, p.Body)
}

func TestReschedulePayloadFormats(t *testing.T) {
	it := item.Item{
		ID: "x", LibraryID: "L1", Question: "Ambiguous", Answer: "애매모호한",
		Memo: sql.NullString{String: "GRE list 3", Valid: true},
	}

	tests := []struct {
		name      string
		format    reminder.Format
		wantTitle string
		wantBody  string
	}{
		{"both concatenates memo", reminder.FormatBoth, "Ambiguous", "애매모호한 (GRE list 3)"},
		{"word only uses static prompt", reminder.FormatWordOnly, "Ambiguous", wordOnlyBody},
		{"meaning only uses static title", reminder.FormatMeaningOnly, meaningOnlyTitle, "애매모호한"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := baseSettings()
			settings.Format = tt.format
			p := buildPayload(settings, it, 0, time.Now())
			assert.Equal(t, tt.wantTitle, p.Title)
			assert.Equal(t, tt.wantBody, p.Body)
		})
	}
}

func TestRescheduleCapsBatchAtFifty(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	items := make([]item.Item, 120)
	for i := range items {
		items[i] = item.Item{
			ID:           fmt.Sprintf("item-%03d", i),
			LibraryID:    "L1",
			Question:     fmt.Sprintf("q%d", i),
			Answer:       fmt.Sprintf("a%d", i),
			DisplayOrder: i,
		}
	}
	repo := &fakeItemRepo{byLibrary: map[string][]item.Item{"L1": items}}
	deliv := &fakeDelivery{}
	svc, _, store := newTestEngine(repo, deliv, now)

	settings := baseSettings()
	settings.IntervalMinutes = 10

	require.NoError(t, svc.Reschedule(context.Background(), settings))

	require.Len(t, deliv.scheduled, BatchSize)
	assert.Len(t, storedLedger(t, store), BatchSize)

	for i, call := range deliv.scheduled {
		assert.Equal(t, now.Add(time.Duration(10*(i+1))*time.Minute), call.at)
	}
}

func TestRescheduleStrictLedgerOnPartialFailure(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := &fakeItemRepo{byLibrary: map[string][]item.Item{"L1": scenarioItems()}}
	deliv := &fakeDelivery{failItemIDs: map[string]bool{"c": true}}
	svc, _, store := newTestEngine(repo, deliv, now)

	require.NoError(t, svc.Reschedule(context.Background(), baseSettings()))

	// The failed slot is skipped, the batch continues, and the ledger
	// records only what actually went out.
	require.Len(t, deliv.scheduled, 2)
	ledger := storedLedger(t, store)
	require.Len(t, ledger, 2)
	for _, entry := range ledger {
		assert.NotEqual(t, "c", entry.ItemID)
	}
}

func TestRescheduleDisabledSettingsIsNoOp(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := &fakeItemRepo{byLibrary: map[string][]item.Item{"L1": scenarioItems()}}
	deliv := &fakeDelivery{}
	svc, _, store := newTestEngine(repo, deliv, now)

	settings := baseSettings()
	settings.Enabled = false

	require.NoError(t, svc.Reschedule(context.Background(), settings))

	// Pending notifications are still cancelled, but nothing new goes out.
	assert.Equal(t, 1, deliv.cancelCalls)
	assert.Empty(t, deliv.scheduled)
	_, ok, err := store.Get(context.Background(), testUserID, reminder.PurposeScheduled)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRescheduleSectionScopeUsesSectionQuery(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := &fakeItemRepo{
		byLibrary: map[string][]item.Item{"L1": scenarioItems()},
		bySection: map[string][]item.Item{"S9": {
			{ID: "z", LibraryID: "L1", SectionID: "S9", Question: "qz", Answer: "az", DisplayOrder: 0},
		}},
	}
	deliv := &fakeDelivery{}
	svc, _, _ := newTestEngine(repo, deliv, now)

	settings := baseSettings()
	settings.SectionID = "S9"

	require.NoError(t, svc.Reschedule(context.Background(), settings))

	require.Len(t, deliv.scheduled, 1)
	assert.Equal(t, "z", deliv.scheduled[0].payload.ItemID)
}
