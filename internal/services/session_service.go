package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/lyriclingo/backend/internal/models"
	"go.uber.org/zap"
)

// Session engine errors. All are surfaced to the caller; handlers decide the
// user-facing mapping (duplicate and finished map to a conflict).
var (
	ErrDuplicateSubmission = errors.New("duplicate submission")
	ErrInvalidItemIndex    = errors.New("invalid item index")
	ErrAlreadyFinished     = errors.New("lesson already finished")
)

// LedgerStore is the persistence interface for the answer ledger
type LedgerStore interface {
	// TryInsert atomically records an answer for (lessonID, itemIndex).
	//
	// Returns false when an answer for that pair is already recorded; the
	// existing answer stays untouched. A storage failure is returned as an
	// error and must not be treated as an accepted submission.
	TryInsert(ctx context.Context, answer *models.Answer) (bool, error)
	// ListByLesson retrieves all recorded answers for a lesson.
	//
	// If no answers are recorded, an empty slice will be returned.
	ListByLesson(ctx context.Context, lessonID string) ([]models.Answer, error)
}

// SessionCursorRepository is the persistence interface for session cursors
type SessionCursorRepository interface {
	// Create inserts the initial cursor for a lesson.
	Create(ctx context.Context, cursor *models.SessionCursor) error
	// GetByLessonID retrieves the cursor for a lesson.
	//
	// Returns repositories.ErrCursorNotFound when the lesson has no cursor.
	GetByLessonID(ctx context.Context, lessonID string) (*models.SessionCursor, error)
	// Advance conditionally moves an in-progress cursor to the given index and
	// phase. Returns false when the cursor was not in progress anymore.
	Advance(ctx context.Context, lessonID string, currentIndex int, phase models.SessionPhase) (bool, error)
}

// SessionLessonRepository is the lesson read access needed by the session engine
type SessionLessonRepository interface {
	// GetByID retrieves a lesson with its items.
	//
	// Returns repositories.ErrLessonNotFound when no such lesson exists.
	GetByID(ctx context.Context, id string) (*models.Lesson, error)
}

// sessionService drives one practice session: answer submission against the
// ledger, cursor transitions, and summary aggregation.
type sessionService struct {
	lessonRepo SessionLessonRepository
	cursorRepo SessionCursorRepository
	ledger     LedgerStore
	logger     *zap.Logger
}

// NewSessionService creates a new session service
func NewSessionService(
	lessonRepo SessionLessonRepository,
	cursorRepo SessionCursorRepository,
	ledger LedgerStore,
	logger *zap.Logger,
) *sessionService {
	return &sessionService{
		lessonRepo: lessonRepo,
		cursorRepo: cursorRepo,
		ledger:     ledger,
		logger:     logger,
	}
}

// SubmitAnswer evaluates input against the addressed item and, for fill-blank
// items, records the outcome in the ledger. The idempotency key is
// (lessonID, itemIndex) alone: the caller-declared item type is ignored and
// the stored item's variant is authoritative. Arrange outcomes are returned
// but never persisted and never affect the summary.
func (s *sessionService) SubmitAnswer(ctx context.Context, lessonID string, itemIndex int, userInput string) (*models.SubmitAnswerResponse, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	if itemIndex < 0 || itemIndex >= len(lesson.Items) {
		return nil, ErrInvalidItemIndex
	}
	item := lesson.Items[itemIndex]

	correct, err := evaluateItem(item, userInput)
	if err != nil {
		return nil, err
	}

	if item.Type != models.ItemTypeFillBlank {
		// Arrange results are ephemeral
		return &models.SubmitAnswerResponse{Accepted: true, IsCorrect: correct}, nil
	}

	inserted, err := s.ledger.TryInsert(ctx, &models.Answer{
		LessonID:       lessonID,
		ItemIndex:      itemIndex,
		SubmittedInput: userInput,
		IsCorrect:      correct,
		AcceptedAt:     time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, ErrDuplicateSubmission
	}

	return &models.SubmitAnswerResponse{Accepted: true, IsCorrect: correct}, nil
}

// Advance moves the session cursor one item forward, or to the finished phase
// when the last item was current. Advancing a finished session returns
// ErrAlreadyFinished so callers can detect stale transitions.
func (s *sessionService) Advance(ctx context.Context, lessonID string) (*models.SessionCursor, error) {
	cursor, err := s.cursorRepo.GetByLessonID(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if cursor.Phase == models.PhaseFinished {
		return nil, ErrAlreadyFinished
	}

	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	nextIndex := cursor.CurrentIndex + 1
	phase := models.PhaseInProgress
	if nextIndex >= len(lesson.Items) {
		// Terminal: the cursor keeps the last item index
		nextIndex = cursor.CurrentIndex
		phase = models.PhaseFinished
	}

	moved, err := s.cursorRepo.Advance(ctx, lessonID, nextIndex, phase)
	if err != nil {
		return nil, err
	}
	if !moved {
		// Lost a race against a concurrent advance that finished the session
		return nil, ErrAlreadyFinished
	}

	if phase == models.PhaseFinished {
		s.logger.Info("lesson finished", zap.String("lesson_id", lessonID))
	}

	return &models.SessionCursor{
		LessonID:     lessonID,
		CurrentIndex: nextIndex,
		Phase:        phase,
	}, nil
}

// GetSummary aggregates the ledger entries of a lesson. Only recorded
// fill-blank answers count; the re-practice set holds the correct words of
// wrongly answered items, deduplicated. Calling mid-session yields a
// consistent partial result.
func (s *sessionService) GetSummary(ctx context.Context, lessonID string) (*models.Summary, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	answers, err := s.ledger.ListByLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	summary := &models.Summary{
		ScheduledForRepractice: []string{},
	}
	seen := make(map[string]struct{})

	for _, answer := range answers {
		if answer.ItemIndex < 0 || answer.ItemIndex >= len(lesson.Items) {
			continue
		}
		item := lesson.Items[answer.ItemIndex]
		if item.Type != models.ItemTypeFillBlank {
			continue
		}

		summary.Total++
		if answer.IsCorrect {
			summary.Correct++
			continue
		}
		summary.Wrong++

		word := normalizeWord(item.CorrectWord)
		if _, ok := seen[word]; !ok {
			seen[word] = struct{}{}
			summary.ScheduledForRepractice = append(summary.ScheduledForRepractice, word)
		}
	}

	if summary.Total > 0 {
		// One decimal place, stable across recomputation
		summary.Accuracy = math.Round(float64(summary.Correct)/float64(summary.Total)*1000) / 10
	}

	return summary, nil
}
