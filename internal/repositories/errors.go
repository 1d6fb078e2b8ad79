package repositories

import "errors"

// Sentinel errors shared by repositories
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrSongNotFound   = errors.New("song not found")
	ErrLessonNotFound = errors.New("lesson not found")
	ErrCursorNotFound = errors.New("session cursor not found")
)
