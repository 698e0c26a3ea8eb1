package content

import "strings"

// WordsPerMinute is the reading speed behind ReadingTime.
const WordsPerMinute = 200

// ReadingTime estimates minutes needed to read doc. Markup is ignored and
// the result is never below one minute.
func ReadingTime(doc string) int {
	words := len(strings.Fields(StripTags(doc)))
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}
