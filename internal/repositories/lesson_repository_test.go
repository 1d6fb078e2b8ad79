package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyriclingo/backend/internal/models"
)

// setupLessonTestRepository creates a lesson repository with a mock database
func setupLessonTestRepository(t *testing.T) (*lessonRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewLessonRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestNewLessonRepository(t *testing.T) {
	db := &sql.DB{}

	repo := NewLessonRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func testLessonItems() []models.LessonItem {
	return []models.LessonItem{
		{
			Type:         models.ItemTypeFillBlank,
			LineIndex:    0,
			RenderedLine: "walking down the " + models.BlankMarker,
			Options:      []string{"street", "river", "night", "light"},
			CorrectWord:  "street",
		},
		{
			Type:         models.ItemTypeArrange,
			LineIndex:    1,
			CorrectOrder: []string{"shadows", "on", "my", "feet"},
		},
	}
}

func TestLessonRepository_Create(t *testing.T) {
	lesson := &models.Lesson{
		ID:     "c0ffee00-0000-0000-0000-000000000001",
		UserID: 42,
		SongID: 7,
		Items:  testLessonItems(),
	}
	itemsJSON, err := json.Marshal(lesson.Items)
	require.NoError(t, err)

	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO lessons`).
					WithArgs(lesson.ID, 42, 7, itemsJSON).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			expectedError: false,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO lessons`).
					WithArgs(lesson.ID, 42, 7, itemsJSON).
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupLessonTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.Create(context.Background(), lesson)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestLessonRepository_GetByID(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	items := testLessonItems()
	itemsJSON, err := json.Marshal(items)
	require.NoError(t, err)

	tests := []struct {
		name          string
		lessonID      string
		setupMock     func(sqlmock.Sqlmock)
		expectedError error
	}{
		{
			name:     "success",
			lessonID: "lesson-1",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "user_id", "song_id", "items", "created_at"}).
					AddRow("lesson-1", 42, 7, itemsJSON, createdAt)
				mock.ExpectQuery(`SELECT (.+) FROM lessons`).
					WithArgs("lesson-1").
					WillReturnRows(rows)
			},
		},
		{
			name:     "not found",
			lessonID: "missing",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM lessons`).
					WithArgs("missing").
					WillReturnError(sql.ErrNoRows)
			},
			expectedError: ErrLessonNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupLessonTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			lesson, err := repo.GetByID(context.Background(), tt.lessonID)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "lesson-1", lesson.ID)
				assert.Equal(t, 42, lesson.UserID)
				assert.Equal(t, items, lesson.Items)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestLessonRepository_GetByID_CorruptItems(t *testing.T) {
	repo, mock, cleanup := setupLessonTestRepository(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "user_id", "song_id", "items", "created_at"}).
		AddRow("lesson-1", 42, 7, []byte("{not json"), time.Now())
	mock.ExpectQuery(`SELECT (.+) FROM lessons`).
		WithArgs("lesson-1").
		WillReturnRows(rows)

	_, err := repo.GetByID(context.Background(), "lesson-1")
	assert.ErrorContains(t, err, "unmarshal")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepository_DeleteOlderThan(t *testing.T) {
	cutoff := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name            string
		setupMock       func(sqlmock.Sqlmock)
		expectedDeleted int64
		expectedError   bool
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`DELETE FROM lesson_answers`).
					WithArgs(cutoff).
					WillReturnResult(sqlmock.NewResult(0, 5))
				mock.ExpectExec(`DELETE FROM session_cursors`).
					WithArgs(cutoff).
					WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectExec(`DELETE FROM lessons`).
					WithArgs(cutoff).
					WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectCommit()
			},
			expectedDeleted: 2,
		},
		{
			name: "nothing stale",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`DELETE FROM lesson_answers`).
					WithArgs(cutoff).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(`DELETE FROM session_cursors`).
					WithArgs(cutoff).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(`DELETE FROM lessons`).
					WithArgs(cutoff).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectCommit()
			},
			expectedDeleted: 0,
		},
		{
			name: "failure rolls back",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`DELETE FROM lesson_answers`).
					WithArgs(cutoff).
					WillReturnError(errors.New("database error"))
				mock.ExpectRollback()
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupLessonTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			deleted, err := repo.DeleteOlderThan(context.Background(), cutoff)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedDeleted, deleted)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
