package reminder

import "time"

// ScheduledEntry records one notification from the most recent scheduling
// batch. The scheduled ledger lets the progress tracker infer that a
// notification has already fired without consulting the delivery backend.
type ScheduledEntry struct {
	ItemID    string    `json:"id"`
	TriggerAt time.Time `json:"trigger_at"`
}

// Progress is the completion counter pair for the current reminder cycle.
type Progress struct {
	Current int
	Total   int
}
