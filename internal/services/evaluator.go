package services

import (
	"fmt"
	"strings"

	"github.com/lyriclingo/backend/internal/models"
)

// normalizeWord lower-cases and trims a word for fill-blank comparison
func normalizeWord(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// evaluateItem decides correctness of input for a lesson item. Fill-blank
// comparison is normalized; arrange comparison is an exact, order-sensitive
// match of the space-joined built sequence.
func evaluateItem(item models.LessonItem, input string) (bool, error) {
	switch item.Type {
	case models.ItemTypeFillBlank:
		return normalizeWord(input) == normalizeWord(item.CorrectWord), nil
	case models.ItemTypeArrange:
		return input == strings.Join(item.CorrectOrder, " "), nil
	default:
		return false, fmt.Errorf("unknown item type: %q", item.Type)
	}
}
