package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lyriclingo/backend/internal/models"
)

// songRepository persists songs in the songs table.
// Lyrics are stored as a JSON document of word slices, one per line.
type songRepository struct {
	db *sql.DB
}

// NewSongRepository creates a new song repository
func NewSongRepository(db *sql.DB) *songRepository {
	return &songRepository{
		db: db,
	}
}

// Create inserts a new song and sets its generated ID
func (r *songRepository) Create(ctx context.Context, song *models.Song) error {
	lyrics, err := json.Marshal(song.Lyrics)
	if err != nil {
		return fmt.Errorf("failed to marshal lyrics: %w", err)
	}

	query := `
		INSERT INTO songs (title, artist, lyrics)
		VALUES (?, ?, ?)
	`

	res, err := r.db.ExecContext(ctx, query, song.Title, song.Artist, lyrics)
	if err != nil {
		return fmt.Errorf("failed to insert song: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted id: %w", err)
	}
	song.ID = int(id)

	return nil
}

// GetAll retrieves all songs without lyrics
func (r *songRepository) GetAll(ctx context.Context) ([]models.SongListItem, error) {
	query := `
		SELECT id, title, artist
		FROM songs
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	var songs []models.SongListItem
	for rows.Next() {
		var song models.SongListItem
		if err := rows.Scan(&song.ID, &song.Title, &song.Artist); err != nil {
			return nil, fmt.Errorf("failed to scan song: %w", err)
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return songs, nil
}

// GetByID retrieves a song with its lyrics
func (r *songRepository) GetByID(ctx context.Context, id int) (*models.Song, error) {
	query := `
		SELECT id, title, artist, lyrics, created_at
		FROM songs
		WHERE id = ?
		LIMIT 1
	`

	var song models.Song
	var lyrics []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&song.ID,
		&song.Title,
		&song.Artist,
		&lyrics,
		&song.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrSongNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get song by id: %w", err)
	}

	if err := json.Unmarshal(lyrics, &song.Lyrics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal lyrics: %w", err)
	}

	return &song, nil
}

// GetRandom retrieves one random song with its lyrics
func (r *songRepository) GetRandom(ctx context.Context) (*models.Song, error) {
	query := `
		SELECT id, title, artist, lyrics, created_at
		FROM songs
		ORDER BY RAND()
		LIMIT 1
	`

	var song models.Song
	var lyrics []byte
	err := r.db.QueryRowContext(ctx, query).Scan(
		&song.ID,
		&song.Title,
		&song.Artist,
		&lyrics,
		&song.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrSongNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get random song: %w", err)
	}

	if err := json.Unmarshal(lyrics, &song.Lyrics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal lyrics: %w", err)
	}

	return &song, nil
}

// Delete removes a song by ID
func (r *songRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM songs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrSongNotFound
	}

	return nil
}
