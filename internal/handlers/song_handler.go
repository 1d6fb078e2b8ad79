package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lyriclingo/backend/internal/models"
	"github.com/lyriclingo/backend/internal/repositories"
)

// SongService is the interface that wraps methods for song business logic
type SongService interface {
	// CreateSong parses raw lyrics text into lines of words and stores the song.
	CreateSong(ctx context.Context, req models.CreateSongRequest) (*models.CreateSongResponse, error)
	// GetSongs retrieves all songs.
	GetSongs(ctx context.Context) ([]models.SongListItem, error)
	// GetSong retrieves one song with its lyrics.
	//
	// Returns repositories.ErrSongNotFound when no such song exists.
	GetSong(ctx context.Context, id int) (*models.Song, error)
	// DeleteSong removes a song.
	//
	// Returns repositories.ErrSongNotFound when no such song exists.
	DeleteSong(ctx context.Context, id int) error
}

// SongHandler handles HTTP requests for song management
type SongHandler struct {
	BaseHandler
	service SongService
}

// NewSongHandler creates a new song handler
func NewSongHandler(svc SongService, logger *zap.Logger) *SongHandler {
	return &SongHandler{
		service:     svc,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all song handler routes; mutations require the admin middleware
func (h *SongHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/songs", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.GetSongs)
		r.Get("/{id}", h.GetSong)
		r.Group(func(r chi.Router) {
			r.Use(adminMiddleware)
			r.Post("/", h.CreateSong)
			r.Delete("/{id}", h.DeleteSong)
		})
	})
}

// CreateSong handles POST /songs
// @Summary Create a song
// @Description Create a song from raw lyrics text; each non-empty line becomes an exercise source
// @Tags songs
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.CreateSongRequest true "Song data"
// @Success 201 {object} models.CreateSongResponse "Created song"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 403 {object} map[string]string "Admin role required"
// @Router /songs [post]
func (h *SongHandler) CreateSong(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSongRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.service.CreateSong(r.Context(), req)
	if err != nil {
		h.logger.Error("failed to create song", zap.Error(err))
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondJSON(w, http.StatusCreated, resp)
}

// GetSongs handles GET /songs
// @Summary List songs
// @Description Get all songs without lyrics
// @Tags songs
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.SongListItem "List of songs"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /songs [get]
func (h *SongHandler) GetSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := h.service.GetSongs(r.Context())
	if err != nil {
		h.logger.Error("failed to get songs", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if songs == nil {
		songs = []models.SongListItem{}
	}

	h.respondJSON(w, http.StatusOK, songs)
}

// GetSong handles GET /songs/{id}
// @Summary Get a song
// @Description Get one song by ID
// @Tags songs
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Song ID"
// @Success 200 {object} models.Song "Song"
// @Failure 404 {object} map[string]string "Song not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /songs/{id} [get]
func (h *SongHandler) GetSong(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid song id")
		return
	}

	song, err := h.service.GetSong(r.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrSongNotFound) {
			h.respondError(w, http.StatusNotFound, "song not found")
			return
		}
		h.logger.Error("failed to get song", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.respondJSON(w, http.StatusOK, song)
}

// DeleteSong handles DELETE /songs/{id}
// @Summary Delete a song
// @Description Delete one song by ID
// @Tags songs
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Song ID"
// @Success 204 "Deleted"
// @Failure 403 {object} map[string]string "Admin role required"
// @Failure 404 {object} map[string]string "Song not found"
// @Router /songs/{id} [delete]
func (h *SongHandler) DeleteSong(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid song id")
		return
	}

	if err := h.service.DeleteSong(r.Context(), id); err != nil {
		if errors.Is(err, repositories.ErrSongNotFound) {
			h.respondError(w, http.StatusNotFound, "song not found")
			return
		}
		h.logger.Error("failed to delete song", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
