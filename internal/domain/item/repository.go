package item

import "context"

// Repository defines the operations for retrieving and maintaining flashcard
// items. List methods return items ordered by display_order ascending with
// created_at descending as the tiebreak.
type Repository interface {
	ListByLibrary(ctx context.Context, libraryID string) ([]Item, error)
	ListBySection(ctx context.Context, sectionID string) ([]Item, error)
	GetByID(ctx context.Context, id string) (*Item, error)
	Create(ctx context.Context, it *Item) error
	UpdateStudyStatus(ctx context.Context, id string, status StudyStatus) error
}
