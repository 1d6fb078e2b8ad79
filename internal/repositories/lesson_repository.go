package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lyriclingo/backend/internal/models"
)

// lessonRepository persists lessons in the lessons table.
// Items are stored as a JSON document; a lesson is immutable after insert.
type lessonRepository struct {
	db *sql.DB
}

// NewLessonRepository creates a new lesson repository
func NewLessonRepository(db *sql.DB) *lessonRepository {
	return &lessonRepository{
		db: db,
	}
}

// Create inserts a new lesson with its generated items
func (r *lessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	items, err := json.Marshal(lesson.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal lesson items: %w", err)
	}

	query := `
		INSERT INTO lessons (id, user_id, song_id, items)
		VALUES (?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query, lesson.ID, lesson.UserID, lesson.SongID, items)
	if err != nil {
		return fmt.Errorf("failed to insert lesson: %w", err)
	}

	return nil
}

// GetByID retrieves a lesson by its ID
func (r *lessonRepository) GetByID(ctx context.Context, id string) (*models.Lesson, error) {
	query := `
		SELECT id, user_id, song_id, items, created_at
		FROM lessons
		WHERE id = ?
		LIMIT 1
	`

	var lesson models.Lesson
	var items []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&lesson.ID,
		&lesson.UserID,
		&lesson.SongID,
		&items,
		&lesson.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrLessonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson by id: %w", err)
	}

	if err := json.Unmarshal(items, &lesson.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal lesson items: %w", err)
	}

	return &lesson, nil
}

// DeleteOlderThan removes lessons created before the cutoff together with
// their answers and cursors, in one transaction. Returns the number of
// lessons removed.
func (r *lessonRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM lesson_answers
		WHERE lesson_id IN (SELECT id FROM lessons WHERE created_at < ?)
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale answers: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM session_cursors
		WHERE lesson_id IN (SELECT id FROM lessons WHERE created_at < ?)
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale cursors: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM lessons WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale lessons: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return deleted, nil
}
