package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lyriclingo/backend/internal/models"
)

// Lesson composition: three fill-blank and three arrange items per lesson,
// four answer options per fill-blank item.
const (
	fillBlankCount = 3
	arrangeCount   = 3
	optionCount    = 4
)

// ErrNoSongs is returned when lesson creation finds no usable song
var ErrNoSongs = errors.New("no songs available")

// SongPicker is the song read access needed for lesson generation
type SongPicker interface {
	// GetRandom retrieves one random song with its lyrics.
	//
	// Returns repositories.ErrSongNotFound when no songs exist.
	GetRandom(ctx context.Context) (*models.Song, error)
}

// LessonRepository is the lesson persistence interface for lesson creation
type LessonRepository interface {
	// Create inserts a new lesson with its generated items.
	Create(ctx context.Context, lesson *models.Lesson) error
	// GetByID retrieves a lesson with its items.
	GetByID(ctx context.Context, id string) (*models.Lesson, error)
	// DeleteOlderThan removes lessons created before the cutoff together with
	// their answers and cursors. Returns the number of lessons removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// lessonService creates lessons by generating exercise items from song lyrics
type lessonService struct {
	songRepo   SongPicker
	lessonRepo LessonRepository
	cursorRepo SessionCursorRepository
	logger     *zap.Logger
}

// NewLessonService creates a new lesson service
func NewLessonService(
	songRepo SongPicker,
	lessonRepo LessonRepository,
	cursorRepo SessionCursorRepository,
	logger *zap.Logger,
) *lessonService {
	return &lessonService{
		songRepo:   songRepo,
		lessonRepo: lessonRepo,
		cursorRepo: cursorRepo,
		logger:     logger,
	}
}

// CreateLesson picks a random song, generates the item sequence and persists
// the lesson together with its initial session cursor. The returned items are
// immutable for the lifetime of the lesson.
func (s *lessonService) CreateLesson(ctx context.Context, userID int) (*models.Lesson, error) {
	song, err := s.songRepo.GetRandom(ctx)
	if err != nil {
		return nil, err
	}
	if len(song.Lyrics) == 0 {
		return nil, ErrNoSongs
	}

	r := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), uint64(userID)))
	items := generateItems(r, song.Lyrics)
	if len(items) == 0 {
		return nil, fmt.Errorf("song %d has no usable lines", song.ID)
	}

	lesson := &models.Lesson{
		ID:     uuid.New().String(),
		UserID: userID,
		SongID: song.ID,
		Items:  items,
	}

	if err := s.lessonRepo.Create(ctx, lesson); err != nil {
		return nil, err
	}

	cursor := &models.SessionCursor{
		LessonID:     lesson.ID,
		CurrentIndex: 0,
		Phase:        models.PhaseInProgress,
	}
	if err := s.cursorRepo.Create(ctx, cursor); err != nil {
		return nil, err
	}

	s.logger.Info("lesson created",
		zap.String("lesson_id", lesson.ID),
		zap.Int("user_id", userID),
		zap.Int("song_id", song.ID),
		zap.Int("items", len(items)),
	)

	return lesson, nil
}

// PurgeStale removes abandoned lessons older than the given age together with
// their ledger entries and cursors
func (s *lessonService) PurgeStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	deleted, err := s.lessonRepo.DeleteOlderThan(ctx, time.Now().UTC().Add(-olderThan))
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		s.logger.Info("purged stale lessons", zap.Int64("deleted", deleted))
	}
	return deleted, nil
}

// generateItems builds the lesson item sequence from lyric lines: fill-blank
// items need lines of at least two words, arrange items any non-empty line.
// Lines are not reused across items unless the song is too short, in which
// case a fallback pass reuses lines while avoiding exact duplicate items.
func generateItems(r *rand.Rand, lines [][]string) []models.LessonItem {
	vocab := uniqueLower(flatten(lines))
	// A fill-blank item needs the correct word plus three distinct distractors
	canFill := len(vocab) >= optionCount

	fillCands := make([]int, 0, len(lines))
	arrCands := make([]int, 0, len(lines))
	for i, line := range lines {
		if canFill && len(line) >= 2 {
			fillCands = append(fillCands, i)
		}
		if len(line) >= 1 {
			arrCands = append(arrCands, i)
		}
	}
	r.Shuffle(len(fillCands), func(i, j int) { fillCands[i], fillCands[j] = fillCands[j], fillCands[i] })
	r.Shuffle(len(arrCands), func(i, j int) { arrCands[i], arrCands[j] = arrCands[j], arrCands[i] })

	used := make(map[int]struct{})
	items := make([]models.LessonItem, 0, fillBlankCount+arrangeCount)

	// take consumes candidate indexes, skipping already used lines
	take := func(cands *[]int) (int, bool) {
		for len(*cands) > 0 {
			idx := (*cands)[0]
			*cands = (*cands)[1:]
			if _, ok := used[idx]; ok {
				continue
			}
			used[idx] = struct{}{}
			return idx, true
		}
		return 0, false
	}

	for len(items) < fillBlankCount {
		idx, ok := take(&fillCands)
		if !ok {
			break
		}
		items = append(items, buildFillBlank(r, idx, lines[idx], vocab))
	}

	for len(items) < fillBlankCount+arrangeCount {
		idx, ok := take(&arrCands)
		if !ok {
			break
		}
		items = append(items, buildArrange(idx, lines[idx]))
	}

	// Fallback: not enough distinct lines, allow reuse but never produce the
	// exact same item twice
	if len(items) < fillBlankCount+arrangeCount {
		seen := make(map[string]struct{}, len(items))
		for _, item := range items {
			seen[itemSignature(item)] = struct{}{}
		}

		for _, idx := range r.Perm(len(lines)) {
			if len(items) >= fillBlankCount+arrangeCount {
				break
			}
			line := lines[idx]
			if len(line) == 0 {
				continue
			}

			var cand models.LessonItem
			if canFill && len(items)%2 == 0 && len(line) >= 2 {
				cand = buildFillBlank(r, idx, line, vocab)
			} else {
				cand = buildArrange(idx, line)
			}
			if _, ok := seen[itemSignature(cand)]; ok {
				continue
			}
			seen[itemSignature(cand)] = struct{}{}
			items = append(items, cand)
		}
	}

	return items
}

// buildFillBlank hides a random word of the line behind the blank marker and
// assembles the option set
func buildFillBlank(r *rand.Rand, lineIndex int, line []string, vocab []string) models.LessonItem {
	words := slices.Clone(line)
	hidden := r.IntN(len(words))
	correct := words[hidden]

	return models.LessonItem{
		Type:         models.ItemTypeFillBlank,
		LineIndex:    lineIndex,
		RenderedLine: renderBlank(words, hidden),
		Options:      buildOptions(r, correct, vocab),
		CorrectWord:  correct,
	}
}

func buildArrange(lineIndex int, line []string) models.LessonItem {
	return models.LessonItem{
		Type:         models.ItemTypeArrange,
		LineIndex:    lineIndex,
		CorrectOrder: slices.Clone(line),
	}
}

// buildOptions returns the correct word plus three distinct distractors drawn
// from the song vocabulary, shuffled. Callers must ensure the vocabulary
// holds at least optionCount distinct words.
func buildOptions(r *rand.Rand, correct string, vocab []string) []string {
	correctLower := strings.ToLower(correct)

	cands := make([]string, 0, len(vocab))
	for _, word := range vocab {
		if word == correctLower {
			continue
		}
		cands = append(cands, word)
	}
	r.Shuffle(len(cands), func(i, j int) { cands[i], cands[j] = cands[j], cands[i] })

	opts := make([]string, 0, optionCount)
	opts = append(opts, correct)
	opts = append(opts, cands[:optionCount-1]...)

	r.Shuffle(len(opts), func(i, j int) { opts[i], opts[j] = opts[j], opts[i] })
	return opts
}

// renderBlank joins the line with the hidden word replaced by the blank marker
func renderBlank(words []string, hiddenIdx int) string {
	cp := slices.Clone(words)
	cp[hiddenIdx] = models.BlankMarker
	return strings.Join(cp, " ")
}

func flatten(lines [][]string) []string {
	var out []string
	for _, line := range lines {
		out = append(out, line...)
	}
	return out
}

// uniqueLower returns the unique, lower-cased, non-empty words of the input
func uniqueLower(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, word := range words {
		lower := strings.ToLower(strings.TrimSpace(word))
		if lower == "" {
			continue
		}
		if _, ok := seen[lower]; !ok {
			seen[lower] = struct{}{}
			out = append(out, lower)
		}
	}
	return out
}

// itemSignature identifies an item for duplicate avoidance in the fallback pass
func itemSignature(item models.LessonItem) string {
	if item.Type == models.ItemTypeFillBlank {
		return "F:" + item.RenderedLine
	}
	return "A:" + strconv.Itoa(item.LineIndex)
}
