package models

import "time"

// SessionPhase is the lifecycle phase of a lesson session
type SessionPhase string

// SessionPhase constants. Finished is terminal: a new practice run always
// starts a new lesson with a fresh cursor.
const (
	PhaseInProgress SessionPhase = "in_progress"
	PhaseFinished   SessionPhase = "finished"
)

// SessionCursor tracks the current position within a lesson's item sequence.
// Exactly one cursor exists per lesson and it is mutated only by advancing.
type SessionCursor struct {
	LessonID     string       `json:"lessonId"`
	CurrentIndex int          `json:"currentIndex"`
	Phase        SessionPhase `json:"phase"`
	UpdatedAt    time.Time    `json:"-"`
}

// Answer is one accepted fill-blank answer in the ledger. At most one answer
// exists per (lesson, item index) pair; the first accepted answer is final.
type Answer struct {
	ID             int64     `json:"-"`
	LessonID       string    `json:"lessonId"`
	ItemIndex      int       `json:"itemIndex"`
	SubmittedInput string    `json:"submittedInput"`
	IsCorrect      bool      `json:"isCorrect"`
	AcceptedAt     time.Time `json:"acceptedAt"`
}

// Summary aggregates the recorded answers of one lesson. It is derived on
// demand from the ledger and carries fill-blank results only.
type Summary struct {
	Total                  int      `json:"total"`
	Correct                int      `json:"correct"`
	Wrong                  int      `json:"wrong"`
	Accuracy               float64  `json:"accuracy"`
	ScheduledForRepractice []string `json:"scheduledForRepractice"`
}
