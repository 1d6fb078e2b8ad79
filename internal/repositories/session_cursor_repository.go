package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lyriclingo/backend/internal/models"
)

// sessionCursorRepository persists session cursors in the session_cursors table
type sessionCursorRepository struct {
	db *sql.DB
}

// NewSessionCursorRepository creates a new session cursor repository
func NewSessionCursorRepository(db *sql.DB) *sessionCursorRepository {
	return &sessionCursorRepository{
		db: db,
	}
}

// Create inserts the initial cursor for a lesson
func (r *sessionCursorRepository) Create(ctx context.Context, cursor *models.SessionCursor) error {
	query := `
		INSERT INTO session_cursors (lesson_id, current_index, phase)
		VALUES (?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query, cursor.LessonID, cursor.CurrentIndex, cursor.Phase)
	if err != nil {
		return fmt.Errorf("failed to insert session cursor: %w", err)
	}

	return nil
}

// GetByLessonID retrieves the cursor for a lesson
func (r *sessionCursorRepository) GetByLessonID(ctx context.Context, lessonID string) (*models.SessionCursor, error) {
	query := `
		SELECT lesson_id, current_index, phase, updated_at
		FROM session_cursors
		WHERE lesson_id = ?
		LIMIT 1
	`

	var cursor models.SessionCursor
	err := r.db.QueryRowContext(ctx, query, lessonID).Scan(
		&cursor.LessonID,
		&cursor.CurrentIndex,
		&cursor.Phase,
		&cursor.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrCursorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session cursor: %w", err)
	}

	return &cursor, nil
}

// Advance moves the cursor to the given index and phase. The update is guarded
// on the cursor still being in progress, so a cursor that has reached the
// finished phase can never transition again. Returns false when no row was
// updated (cursor missing or already finished).
func (r *sessionCursorRepository) Advance(ctx context.Context, lessonID string, currentIndex int, phase models.SessionPhase) (bool, error) {
	query := `
		UPDATE session_cursors
		SET current_index = ?, phase = ?
		WHERE lesson_id = ? AND phase = ?
	`

	res, err := r.db.ExecContext(ctx, query, currentIndex, phase, lessonID, models.PhaseInProgress)
	if err != nil {
		return false, fmt.Errorf("failed to advance session cursor: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected == 1, nil
}
