package reminder

import "context"

// Purpose names one of the persisted engine records for a user.
type Purpose string

const (
	PurposeSettings  Purpose = "settings"
	PurposeShownIDs  Purpose = "shown_ids"
	PurposeScheduled Purpose = "scheduled"
	// PurposeLastIndex is a legacy record from the sequential-cursor era.
	// Nothing writes it anymore; Reset still clears it.
	PurposeLastIndex Purpose = "last_index"
)

// StateStore is durable string storage keyed by user and purpose. Get
// reports presence separately from errors so a missing record is not a
// failure.
type StateStore interface {
	Get(ctx context.Context, userID int64, purpose Purpose) (string, bool, error)
	Set(ctx context.Context, userID int64, purpose Purpose, value string) error
	Remove(ctx context.Context, userID int64, purpose Purpose) error
}
