package services

import (
	"context"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lyriclingo/backend/internal/models"
	"github.com/lyriclingo/backend/internal/repositories"
)

// mockSongPicker is a mock implementation of SongPicker
type mockSongPicker struct {
	song *models.Song
	err  error
}

func (m *mockSongPicker) GetRandom(ctx context.Context) (*models.Song, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.song, nil
}

// mockLessonRepository is a mock implementation of LessonRepository
type mockLessonRepository struct {
	created   *models.Lesson
	createErr error
	deleted   int64
	deleteErr error
	cutoff    time.Time
}

func (m *mockLessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = lesson
	return nil
}

func (m *mockLessonRepository) GetByID(ctx context.Context, id string) (*models.Lesson, error) {
	if m.created != nil && m.created.ID == id {
		return m.created, nil
	}
	return nil, repositories.ErrLessonNotFound
}

func (m *mockLessonRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	m.cutoff = cutoff
	return m.deleted, nil
}

// richSong has plenty of distinct lines and vocabulary for a full lesson
func richSong() *models.Song {
	return &models.Song{
		ID:    7,
		Title: "Test Song",
		Lyrics: [][]string{
			{"walking", "down", "the", "empty", "street"},
			{"shadows", "falling", "on", "my", "feet"},
			{"every", "light", "is", "burning", "low"},
			{"nowhere", "left", "for", "me", "to", "go"},
			{"morning", "comes", "and", "washes", "clean"},
			{"all", "the", "places", "we", "have", "been"},
			{"singing", "songs", "we", "used", "to", "know"},
			{"watching", "rivers", "overflow"},
		},
	}
}

func setupLessonService(song *models.Song) (*lessonService, *mockLessonRepository, *mockSessionCursorRepository) {
	songRepo := &mockSongPicker{song: song}
	lessonRepo := &mockLessonRepository{}
	cursorRepo := &mockSessionCursorRepository{cursors: make(map[string]*models.SessionCursor)}
	svc := NewLessonService(songRepo, lessonRepo, cursorRepo, zap.NewNop())
	return svc, lessonRepo, cursorRepo
}

func TestLessonService_CreateLesson(t *testing.T) {
	svc, lessonRepo, cursorRepo := setupLessonService(richSong())

	lesson, err := svc.CreateLesson(context.Background(), 42)
	require.NoError(t, err)

	assert.NotEmpty(t, lesson.ID)
	assert.Equal(t, 42, lesson.UserID)
	assert.Equal(t, 7, lesson.SongID)
	require.Len(t, lesson.Items, fillBlankCount+arrangeCount)

	fills, arranges := 0, 0
	for _, item := range lesson.Items {
		switch item.Type {
		case models.ItemTypeFillBlank:
			fills++
		case models.ItemTypeArrange:
			arranges++
		}
	}
	assert.Equal(t, fillBlankCount, fills)
	assert.Equal(t, arrangeCount, arranges)

	// The lesson and its initial cursor are both persisted
	require.NotNil(t, lessonRepo.created)
	assert.Equal(t, lesson.ID, lessonRepo.created.ID)
	cursor, ok := cursorRepo.cursors[lesson.ID]
	require.True(t, ok, "cursor was not created")
	assert.Equal(t, 0, cursor.CurrentIndex)
	assert.Equal(t, models.PhaseInProgress, cursor.Phase)
}

func TestLessonService_CreateLesson_NoSongs(t *testing.T) {
	songRepo := &mockSongPicker{err: repositories.ErrSongNotFound}
	lessonRepo := &mockLessonRepository{}
	cursorRepo := &mockSessionCursorRepository{cursors: make(map[string]*models.SessionCursor)}
	svc := NewLessonService(songRepo, lessonRepo, cursorRepo, zap.NewNop())

	_, err := svc.CreateLesson(context.Background(), 42)
	assert.ErrorIs(t, err, repositories.ErrSongNotFound)
	assert.Nil(t, lessonRepo.created)
}

func TestLessonService_CreateLesson_EmptyLyrics(t *testing.T) {
	svc, _, _ := setupLessonService(&models.Song{ID: 1, Lyrics: [][]string{}})

	_, err := svc.CreateLesson(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNoSongs)
}

func TestLessonService_PurgeStale(t *testing.T) {
	svc, lessonRepo, _ := setupLessonService(richSong())
	lessonRepo.deleted = 3

	deleted, err := svc.PurgeStale(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	// Cutoff lies roughly one day in the past
	assert.WithinDuration(t, time.Now().UTC().Add(-24*time.Hour), lessonRepo.cutoff, time.Minute)
}

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestGenerateItems_FillBlankShape(t *testing.T) {
	items := generateItems(testRand(), richSong().Lyrics)
	require.Len(t, items, fillBlankCount+arrangeCount)

	for _, item := range items {
		if item.Type != models.ItemTypeFillBlank {
			continue
		}

		// Exactly one word of the line is replaced by the blank marker
		assert.Equal(t, 1, strings.Count(item.RenderedLine, models.BlankMarker))

		// Four options, all distinct, including the hidden word
		require.Len(t, item.Options, optionCount)
		seen := make(map[string]struct{})
		foundCorrect := false
		for _, opt := range item.Options {
			lower := strings.ToLower(opt)
			_, dup := seen[lower]
			assert.False(t, dup, "duplicate option %q", opt)
			seen[lower] = struct{}{}
			if opt == item.CorrectWord {
				foundCorrect = true
			}
		}
		assert.True(t, foundCorrect, "options do not contain the correct word")

		// Restoring the hidden word reproduces the original line
		restored := strings.Replace(item.RenderedLine, models.BlankMarker, item.CorrectWord, 1)
		assert.Equal(t, strings.Join(richSong().Lyrics[item.LineIndex], " "), restored)
	}
}

func TestGenerateItems_ArrangeShape(t *testing.T) {
	items := generateItems(testRand(), richSong().Lyrics)

	for _, item := range items {
		if item.Type != models.ItemTypeArrange {
			continue
		}
		assert.Equal(t, richSong().Lyrics[item.LineIndex], item.CorrectOrder)
		assert.Empty(t, item.Options)
		assert.Empty(t, item.CorrectWord)
	}
}

func TestGenerateItems_NoLineReuseWhenSongIsLongEnough(t *testing.T) {
	items := generateItems(testRand(), richSong().Lyrics)

	seen := make(map[int]struct{})
	for _, item := range items {
		_, dup := seen[item.LineIndex]
		assert.False(t, dup, "line %d used twice", item.LineIndex)
		seen[item.LineIndex] = struct{}{}
	}
}

func TestGenerateItems_SmallVocabularySkipsFillBlank(t *testing.T) {
	// Three distinct words total: no fill-blank item can assemble four
	// distinct options, so only arrange items are produced
	lyrics := [][]string{
		{"la", "la", "la"},
		{"oh", "la", "oh"},
		{"hey", "hey"},
	}
	items := generateItems(testRand(), lyrics)

	require.NotEmpty(t, items)
	for _, item := range items {
		assert.Equal(t, models.ItemTypeArrange, item.Type)
	}
}

func TestGenerateItems_ShortSongFallbackAvoidsDuplicates(t *testing.T) {
	lyrics := [][]string{
		{"walking", "down", "the", "street"},
		{"shadows", "on", "my", "feet"},
	}
	items := generateItems(testRand(), lyrics)

	require.NotEmpty(t, items)
	assert.LessOrEqual(t, len(items), fillBlankCount+arrangeCount)

	seen := make(map[string]struct{})
	for _, item := range items {
		sig := itemSignature(item)
		_, dup := seen[sig]
		assert.False(t, dup, "duplicate item %q", sig)
		seen[sig] = struct{}{}
	}
}

func TestBuildOptions_DistinctAndShuffled(t *testing.T) {
	vocab := []string{"alpha", "beta", "gamma", "delta", "epsilon"}

	opts := buildOptions(testRand(), "Alpha", vocab)
	require.Len(t, opts, optionCount)

	assert.Contains(t, opts, "Alpha")
	seen := make(map[string]struct{})
	for _, opt := range opts {
		lower := strings.ToLower(opt)
		_, dup := seen[lower]
		assert.False(t, dup)
		seen[lower] = struct{}{}
	}
}
