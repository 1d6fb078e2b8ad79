package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lyriclingo/backend/internal/middleware"
	"github.com/lyriclingo/backend/internal/models"
	"github.com/lyriclingo/backend/internal/repositories"
	"github.com/lyriclingo/backend/internal/services"
)

// LessonService is the interface that wraps methods for lesson creation
type LessonService interface {
	// CreateLesson generates a lesson from a random song and persists it with
	// its initial session cursor.
	//
	// Returns services.ErrNoSongs when no usable song exists.
	CreateLesson(ctx context.Context, userID int) (*models.Lesson, error)
}

// SessionService is the interface that wraps methods for driving a practice session
type SessionService interface {
	// SubmitAnswer evaluates input against the addressed item and records
	// fill-blank outcomes in the ledger.
	//
	// Returns services.ErrDuplicateSubmission on replayed submissions and
	// services.ErrInvalidItemIndex for an index outside the item range.
	SubmitAnswer(ctx context.Context, lessonID string, itemIndex int, userInput string) (*models.SubmitAnswerResponse, error)
	// Advance moves the session cursor one item forward, or to the finished
	// phase when the last item was current.
	//
	// Returns services.ErrAlreadyFinished when the session is already finished.
	Advance(ctx context.Context, lessonID string) (*models.SessionCursor, error)
	// GetSummary aggregates the recorded answers of a lesson.
	GetSummary(ctx context.Context, lessonID string) (*models.Summary, error)
}

// LessonHandler handles HTTP requests for lesson sessions
type LessonHandler struct {
	BaseHandler
	lessonService  LessonService
	sessionService SessionService
}

// NewLessonHandler creates a new lesson handler
func NewLessonHandler(lessonSvc LessonService, sessionSvc SessionService, logger *zap.Logger) *LessonHandler {
	return &LessonHandler{
		lessonService:  lessonSvc,
		sessionService: sessionSvc,
		BaseHandler:    BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all lesson handler routes
func (h *LessonHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/lessons", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.CreateLesson)
		r.Post("/{lessonId}/answers", h.SubmitAnswer)
		r.Post("/{lessonId}/advance", h.Advance)
		r.Get("/{lessonId}/summary", h.GetSummary)
	})
}

// CreateLesson handles POST /lessons
// @Summary Start a lesson
// @Description Generate a new lesson for the authenticated user from a random song
// @Tags lessons
// @Produce json
// @Security ApiKeyAuth
// @Success 201 {object} models.CreateLessonResponse "Created lesson"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 422 {object} map[string]string "No usable songs"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /lessons [post]
func (h *LessonHandler) CreateLesson(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	lesson, err := h.lessonService.CreateLesson(r.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrNoSongs) || errors.Is(err, repositories.ErrSongNotFound) {
			h.respondError(w, http.StatusUnprocessableEntity, "no songs available")
			return
		}
		h.logger.Error("failed to create lesson", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.respondJSON(w, http.StatusCreated, models.CreateLessonResponse{
		LessonID: lesson.ID,
		Items:    lesson.Items,
	})
}

// SubmitAnswer handles POST /lessons/{lessonId}/answers
// @Summary Submit an answer
// @Description Evaluate an answer for one lesson item; fill-blank outcomes are recorded once per item
// @Tags lessons
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param lessonId path string true "Lesson ID"
// @Param request body models.SubmitAnswerRequest true "Answer data"
// @Success 200 {object} models.SubmitAnswerResponse "Evaluation outcome"
// @Failure 400 {object} map[string]string "Invalid item index"
// @Failure 404 {object} map[string]string "Lesson not found"
// @Failure 409 {object} map[string]string "Item already answered"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /lessons/{lessonId}/answers [post]
func (h *LessonHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	lessonID := chi.URLParam(r, "lessonId")

	var req models.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.sessionService.SubmitAnswer(r.Context(), lessonID, req.ItemIndex, req.UserInput)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateSubmission):
			h.respondError(w, http.StatusConflict, "item already answered")
		case errors.Is(err, services.ErrInvalidItemIndex):
			h.respondError(w, http.StatusBadRequest, "invalid item index")
		case errors.Is(err, repositories.ErrLessonNotFound):
			h.respondError(w, http.StatusNotFound, "lesson not found")
		default:
			h.logger.Error("failed to submit answer", zap.Error(err))
			h.respondError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// Advance handles POST /lessons/{lessonId}/advance
// @Summary Advance the session
// @Description Move the session cursor to the next item, or finish the session after the last item
// @Tags lessons
// @Produce json
// @Security ApiKeyAuth
// @Param lessonId path string true "Lesson ID"
// @Success 200 {object} models.SessionCursor "New cursor position"
// @Failure 404 {object} map[string]string "Lesson not found"
// @Failure 409 {object} map[string]string "Session already finished"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /lessons/{lessonId}/advance [post]
func (h *LessonHandler) Advance(w http.ResponseWriter, r *http.Request) {
	lessonID := chi.URLParam(r, "lessonId")

	cursor, err := h.sessionService.Advance(r.Context(), lessonID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAlreadyFinished):
			h.respondError(w, http.StatusConflict, "session already finished")
		case errors.Is(err, repositories.ErrLessonNotFound), errors.Is(err, repositories.ErrCursorNotFound):
			h.respondError(w, http.StatusNotFound, "lesson not found")
		default:
			h.logger.Error("failed to advance session", zap.Error(err))
			h.respondError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.respondJSON(w, http.StatusOK, cursor)
}

// GetSummary handles GET /lessons/{lessonId}/summary
// @Summary Get the lesson summary
// @Description Aggregate recorded answers into totals, accuracy and the re-practice word list
// @Tags lessons
// @Produce json
// @Security ApiKeyAuth
// @Param lessonId path string true "Lesson ID"
// @Success 200 {object} models.Summary "Summary"
// @Failure 404 {object} map[string]string "Lesson not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /lessons/{lessonId}/summary [get]
func (h *LessonHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	lessonID := chi.URLParam(r, "lessonId")

	summary, err := h.sessionService.GetSummary(r.Context(), lessonID)
	if err != nil {
		if errors.Is(err, repositories.ErrLessonNotFound) {
			h.respondError(w, http.StatusNotFound, "lesson not found")
			return
		}
		h.logger.Error("failed to get summary", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.respondJSON(w, http.StatusOK, summary)
}
