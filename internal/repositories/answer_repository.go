package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/lyriclingo/backend/internal/models"
)

// mysqlDuplicateEntry is the MySQL error number for a unique key violation
const mysqlDuplicateEntry = 1062

// answerRepository persists the answer ledger in the lesson_answers table.
// The UNIQUE KEY on (lesson_id, item_index) makes TryInsert an atomic
// check-and-insert: whichever concurrent submission commits first wins.
type answerRepository struct {
	db *sql.DB
}

// NewAnswerRepository creates a new answer repository
func NewAnswerRepository(db *sql.DB) *answerRepository {
	return &answerRepository{
		db: db,
	}
}

// TryInsert records an answer for (lesson_id, item_index). It returns false
// when an answer for that pair already exists; the existing row is never
// overwritten.
func (r *answerRepository) TryInsert(ctx context.Context, answer *models.Answer) (bool, error) {
	query := `
		INSERT INTO lesson_answers (lesson_id, item_index, submitted_input, is_correct, accepted_at)
		VALUES (?, ?, ?, ?, ?)
	`

	res, err := r.db.ExecContext(ctx, query,
		answer.LessonID,
		answer.ItemIndex,
		answer.SubmittedInput,
		answer.IsCorrect,
		answer.AcceptedAt,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert answer: %w", err)
	}

	id, err := res.LastInsertId()
	if err == nil {
		answer.ID = id
	}

	return true, nil
}

// ListByLesson retrieves all recorded answers for a lesson ordered by item index
func (r *answerRepository) ListByLesson(ctx context.Context, lessonID string) ([]models.Answer, error) {
	query := `
		SELECT id, lesson_id, item_index, submitted_input, is_correct, accepted_at
		FROM lesson_answers
		WHERE lesson_id = ?
		ORDER BY item_index
	`

	rows, err := r.db.QueryContext(ctx, query, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query answers: %w", err)
	}
	defer rows.Close()

	var answers []models.Answer
	for rows.Next() {
		var answer models.Answer
		err := rows.Scan(
			&answer.ID,
			&answer.LessonID,
			&answer.ItemIndex,
			&answer.SubmittedInput,
			&answer.IsCorrect,
			&answer.AcceptedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		answers = append(answers, answer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return answers, nil
}
