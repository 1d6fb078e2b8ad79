package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lyriclingo/backend/internal/models"
	"github.com/lyriclingo/backend/internal/repositories"
)

// mockSongRepository is a mock implementation of SongRepository
type mockSongRepository struct {
	songs     map[int]*models.Song
	createErr error
	nextID    int
}

func newMockSongRepository() *mockSongRepository {
	return &mockSongRepository{songs: make(map[int]*models.Song), nextID: 1}
}

func (m *mockSongRepository) Create(ctx context.Context, song *models.Song) error {
	if m.createErr != nil {
		return m.createErr
	}
	song.ID = m.nextID
	m.nextID++
	m.songs[song.ID] = song
	return nil
}

func (m *mockSongRepository) GetAll(ctx context.Context) ([]models.SongListItem, error) {
	items := make([]models.SongListItem, 0, len(m.songs))
	for _, song := range m.songs {
		items = append(items, models.SongListItem{ID: song.ID, Title: song.Title, Artist: song.Artist})
	}
	return items, nil
}

func (m *mockSongRepository) GetByID(ctx context.Context, id int) (*models.Song, error) {
	song, ok := m.songs[id]
	if !ok {
		return nil, repositories.ErrSongNotFound
	}
	return song, nil
}

func (m *mockSongRepository) Delete(ctx context.Context, id int) error {
	if _, ok := m.songs[id]; !ok {
		return repositories.ErrSongNotFound
	}
	delete(m.songs, id)
	return nil
}

func TestSongService_CreateSong(t *testing.T) {
	songRepo := newMockSongRepository()
	svc := NewSongService(songRepo, zap.NewNop())

	resp, err := svc.CreateSong(context.Background(), models.CreateSongRequest{
		Title:  "  Night Drive ",
		Artist: "The Examples",
		Lyrics: "driving through the night\n\n  city lights go by  \n",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.LineCount)
	stored := songRepo.songs[resp.ID]
	require.NotNil(t, stored)
	assert.Equal(t, "Night Drive", stored.Title)
	assert.Equal(t, [][]string{
		{"driving", "through", "the", "night"},
		{"city", "lights", "go", "by"},
	}, stored.Lyrics)
}

func TestSongService_CreateSong_Validation(t *testing.T) {
	svc := NewSongService(newMockSongRepository(), zap.NewNop())
	ctx := context.Background()

	_, err := svc.CreateSong(ctx, models.CreateSongRequest{Title: "", Lyrics: "some words"})
	assert.ErrorContains(t, err, "title")

	_, err = svc.CreateSong(ctx, models.CreateSongRequest{Title: "Empty", Lyrics: "\n  \n\t\n"})
	assert.ErrorContains(t, err, "lyrics")
}

func TestSongService_DeleteSong_NotFound(t *testing.T) {
	svc := NewSongService(newMockSongRepository(), zap.NewNop())

	err := svc.DeleteSong(context.Background(), 99)
	assert.ErrorIs(t, err, repositories.ErrSongNotFound)
}

func TestParseLyrics(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected [][]string
	}{
		{
			name:     "blank lines skipped",
			raw:      "one two\n\nthree",
			expected: [][]string{{"one", "two"}, {"three"}},
		},
		{
			name:     "whitespace collapsed",
			raw:      "  one \t two  ",
			expected: [][]string{{"one", "two"}},
		},
		{
			name:     "empty input",
			raw:      "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLyrics(tt.raw))
		})
	}
}
