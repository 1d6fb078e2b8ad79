package models

import "time"

// Song represents a song whose lyrics feed exercise generation.
// Lyrics holds one slice of words per line.
type Song struct {
	ID        int        `json:"id"`
	Title     string     `json:"title"`
	Artist    string     `json:"artist"`
	Lyrics    [][]string `json:"-"`
	CreatedAt time.Time  `json:"-"`
}

// SongListItem represents a song in list responses
type SongListItem struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// CreateSongRequest represents a request to create a song from raw lyrics text
type CreateSongRequest struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Lyrics string `json:"lyrics"`
}

// CreateSongResponse represents a newly created song
type CreateSongResponse struct {
	ID        int `json:"id"`
	LineCount int `json:"lineCount"`
}
