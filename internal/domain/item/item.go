package item

import (
	"database/sql"
	"time"
)

// StudyStatus is the user-declared mastery tag on an item.
type StudyStatus string

const (
	StatusLearned   StudyStatus = "learned"
	StatusConfused  StudyStatus = "confused"
	StatusUndecided StudyStatus = "undecided"
)

// Valid reports whether s is one of the known study statuses.
func (s StudyStatus) Valid() bool {
	switch s {
	case StatusLearned, StatusConfused, StatusUndecided:
		return true
	}
	return false
}

// Item is a single question/answer flashcard. Each item belongs to exactly
// one section and one library.
type Item struct {
	ID           string         `db:"id"`
	LibraryID    string         `db:"library_id"`
	SectionID    string         `db:"section_id"`
	Question     string         `db:"question"`
	Answer       string         `db:"answer"`
	Memo         sql.NullString `db:"memo"`
	StudyStatus  StudyStatus    `db:"study_status"`
	DisplayOrder int            `db:"display_order"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}
