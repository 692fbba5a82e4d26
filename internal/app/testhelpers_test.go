package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"vocab_reminder_bot/internal/domain/delivery"
	"vocab_reminder_bot/internal/domain/item"
	"vocab_reminder_bot/internal/infra/memory"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func newStoreAndLogger() (*memory.StateStore, *logrus.Entry) {
	return memory.NewStateStore(), testLogger()
}

type fakeItemRepo struct {
	byLibrary map[string][]item.Item
	bySection map[string][]item.Item
}

func (f *fakeItemRepo) ListByLibrary(_ context.Context, libraryID string) ([]item.Item, error) {
	return f.byLibrary[libraryID], nil
}

func (f *fakeItemRepo) ListBySection(_ context.Context, sectionID string) ([]item.Item, error) {
	return f.bySection[sectionID], nil
}

func (f *fakeItemRepo) GetByID(context.Context, string) (*item.Item, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeItemRepo) Create(context.Context, *item.Item) error {
	return errors.New("not implemented")
}

func (f *fakeItemRepo) UpdateStudyStatus(context.Context, string, item.StudyStatus) error {
	return errors.New("not implemented")
}

type scheduledCall struct {
	payload delivery.Payload
	at      time.Time
}

type fakeDelivery struct {
	mu          sync.Mutex
	scheduled   []scheduledCall
	sent        []delivery.Payload
	cancelCalls int
	failItemIDs map[string]bool
}

func (f *fakeDelivery) RequestPermission(context.Context) (bool, error) {
	return true, nil
}

func (f *fakeDelivery) ScheduleAt(_ context.Context, p delivery.Payload, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failItemIDs[p.ItemID] {
		return errors.New("backend rejected the notification")
	}
	f.scheduled = append(f.scheduled, scheduledCall{payload: p, at: at})
	return nil
}

func (f *fakeDelivery) Send(_ context.Context, p delivery.Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, p)
	return nil
}

func (f *fakeDelivery) CancelAll(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelCalls++
	f.scheduled = nil
	return nil
}

func (f *fakeDelivery) ListScheduled(context.Context) ([]delivery.Scheduled, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]delivery.Scheduled, 0, len(f.scheduled))
	for _, call := range f.scheduled {
		out = append(out, delivery.Scheduled{ItemID: call.payload.ItemID, TriggerAt: call.at})
	}
	return out, nil
}

func (f *fakeDelivery) sentCompletions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.sent {
		if p.Title == completionTitle {
			n++
		}
	}
	return n
}
