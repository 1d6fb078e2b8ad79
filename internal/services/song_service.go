package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lyriclingo/backend/internal/models"
)

// SongRepository is the interface that wraps methods for songs table data access
type SongRepository interface {
	// Create inserts a new song and sets its generated ID.
	Create(ctx context.Context, song *models.Song) error
	// GetAll retrieves all songs without lyrics.
	GetAll(ctx context.Context) ([]models.SongListItem, error)
	// GetByID retrieves a song with its lyrics.
	//
	// Returns repositories.ErrSongNotFound when no such song exists.
	GetByID(ctx context.Context, id int) (*models.Song, error)
	// Delete removes a song by ID.
	//
	// Returns repositories.ErrSongNotFound when no such song exists.
	Delete(ctx context.Context, id int) error
}

// songService implements song management
type songService struct {
	songRepo SongRepository
	logger   *zap.Logger
}

// NewSongService creates a new song service
func NewSongService(songRepo SongRepository, logger *zap.Logger) *songService {
	return &songService{
		songRepo: songRepo,
		logger:   logger,
	}
}

// CreateSong parses raw lyrics text into lines of words and stores the song
func (s *songService) CreateSong(ctx context.Context, req models.CreateSongRequest) (*models.CreateSongResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	lines := parseLyrics(req.Lyrics)
	if len(lines) == 0 {
		return nil, fmt.Errorf("lyrics must contain at least one non-empty line")
	}

	song := &models.Song{
		Title:  title,
		Artist: strings.TrimSpace(req.Artist),
		Lyrics: lines,
	}
	if err := s.songRepo.Create(ctx, song); err != nil {
		return nil, err
	}

	s.logger.Info("song created", zap.Int("song_id", song.ID), zap.Int("lines", len(lines)))

	return &models.CreateSongResponse{ID: song.ID, LineCount: len(lines)}, nil
}

// GetSongs retrieves all songs
func (s *songService) GetSongs(ctx context.Context) ([]models.SongListItem, error) {
	return s.songRepo.GetAll(ctx)
}

// GetSong retrieves one song with its lyrics
func (s *songService) GetSong(ctx context.Context, id int) (*models.Song, error) {
	return s.songRepo.GetByID(ctx, id)
}

// DeleteSong removes a song
func (s *songService) DeleteSong(ctx context.Context, id int) error {
	return s.songRepo.Delete(ctx, id)
}

// parseLyrics splits raw lyrics text into non-empty lines of words
func parseLyrics(raw string) [][]string {
	var lines [][]string
	for _, line := range strings.Split(raw, "\n") {
		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}
		lines = append(lines, words)
	}
	return lines
}
