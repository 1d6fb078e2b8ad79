package models

import "time"

// ItemType identifies the exercise variant of a lesson item
type ItemType string

// ItemType constants
const (
	ItemTypeFillBlank ItemType = "fillblank"
	ItemTypeArrange   ItemType = "arrange"
)

// BlankMarker is the placeholder substituted for the hidden word in a rendered line
const BlankMarker = "___"

// LessonItem is one exercise of a lesson. It is a tagged union keyed by Type:
// fill-blank items carry RenderedLine, Options and CorrectWord; arrange items
// carry CorrectOrder. Consumers must switch on Type exhaustively.
type LessonItem struct {
	Type         ItemType `json:"type"`
	LineIndex    int      `json:"lineIndex"`
	RenderedLine string   `json:"renderedLine,omitempty"` // fill-blank: line text with one blank marker
	Options      []string `json:"options,omitempty"`      // fill-blank: 4 distinct choices incl. the correct word
	CorrectWord  string   `json:"correctWord,omitempty"`  // fill-blank only
	CorrectOrder []string `json:"correctOrder,omitempty"` // arrange: words in correct order
}

// Lesson is an ordered, immutable sequence of exercise items for one practice
// session. Items are addressed by zero-based index and never reordered.
type Lesson struct {
	ID        string       `json:"lessonId"`
	UserID    int          `json:"-"`
	SongID    int          `json:"-"`
	Items     []LessonItem `json:"items"`
	CreatedAt time.Time    `json:"-"`
}

// CreateLessonResponse represents a newly created lesson in API responses
type CreateLessonResponse struct {
	LessonID string       `json:"lessonId"`
	Items    []LessonItem `json:"items"`
}

// SubmitAnswerRequest represents an answer submission.
// Type is informational only: the idempotency key is (lessonId, itemIndex)
// and correctness is evaluated against the stored item's variant.
type SubmitAnswerRequest struct {
	ItemIndex int    `json:"itemIndex"`
	Type      string `json:"type,omitempty"`
	UserInput string `json:"userInput"`
}

// SubmitAnswerResponse represents the outcome of an answer submission
type SubmitAnswerResponse struct {
	Accepted  bool `json:"accepted"`
	IsCorrect bool `json:"isCorrect"`
}
