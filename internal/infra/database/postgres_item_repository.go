package database

import (
	"context"
	"database/sql"
	"fmt"

	"vocab_reminder_bot/internal/domain/item"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Custom errors specific to the item repository.
var ErrItemNotFound = fmt.Errorf("item not found")

type PostgresItemRepository struct {
	db *sqlx.DB
}

func NewPostgresItemRepository(db *sqlx.DB) *PostgresItemRepository {
	return &PostgresItemRepository{db: db}
}

const itemColumns = `id, library_id, section_id, question, answer, memo, study_status, display_order, created_at, updated_at`

func (r *PostgresItemRepository) ListByLibrary(ctx context.Context, libraryID string) ([]item.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items
               WHERE library_id = $1
               ORDER BY display_order ASC, created_at DESC`
	items := []item.Item{}
	if err := r.db.SelectContext(ctx, &items, query, libraryID); err != nil {
		return nil, fmt.Errorf("error listing items by library: %w", err)
	}
	return items, nil
}

func (r *PostgresItemRepository) ListBySection(ctx context.Context, sectionID string) ([]item.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items
               WHERE section_id = $1
               ORDER BY display_order ASC, created_at DESC`
	items := []item.Item{}
	if err := r.db.SelectContext(ctx, &items, query, sectionID); err != nil {
		return nil, fmt.Errorf("error listing items by section: %w", err)
	}
	return items, nil
}

func (r *PostgresItemRepository) GetByID(ctx context.Context, id string) (*item.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	it := item.Item{}
	if err := r.db.GetContext(ctx, &it, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("error getting item by ID: %w", err)
	}
	return &it, nil
}

// Create inserts a new item. The next display_order within the section is
// assigned here so callers never race on ordering. A missing ID is filled
// with a fresh UUID.
func (r *PostgresItemRepository) Create(ctx context.Context, it *item.Item) error {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	if it.StudyStatus == "" {
		it.StudyStatus = item.StatusUndecided
	}
	query := `INSERT INTO items (id, library_id, section_id, question, answer, memo, study_status, display_order)
               VALUES ($1, $2, $3, $4, $5, $6, $7,
                       COALESCE((SELECT MAX(display_order) + 1 FROM items WHERE section_id = $3), 0))
               RETURNING display_order, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		it.ID, it.LibraryID, it.SectionID, it.Question, it.Answer, it.Memo, it.StudyStatus,
	).Scan(&it.DisplayOrder, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating item: %w", err)
	}
	return nil
}

func (r *PostgresItemRepository) UpdateStudyStatus(ctx context.Context, id string, status item.StudyStatus) error {
	query := `UPDATE items SET study_status = $2, updated_at = NOW() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("error updating study status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected for study status update: %w", err)
	}
	if affected == 0 {
		return ErrItemNotFound
	}
	return nil
}
