package utils

import (
	"fmt"
	"strings"

	"github.com/penpal-app/penpal-api/internal/constants"
)

// CountWords counts whitespace-separated tokens.
func CountWords(content string) uint {
	return uint(len(strings.Fields(content)))
}

// ReadTime formats the estimated reading time for a word count. Anything
// under a minute rounds up to "1 min read".
func ReadTime(wordCount uint) string {
	minutes := wordCount / constants.WordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}
