// Package history defines the append-only question/answer log.
package history

import (
	"context"
	"time"
	"unicode/utf8"
)

// DefaultPreviewChars is the answer budget used by summarized history views.
const DefaultPreviewChars = 500

// Entry is one recorded exchange. Entries are immutable once appended.
type Entry struct {
	// ID is the 1-based sequence number assigned at append time. IDs are
	// strictly increasing and never reused, even after Clear.
	ID int64 `json:"id"`

	Question string `json:"question"`
	Answer   string `json:"answer"`

	// Timestamp is when the entry was appended, serialized as RFC 3339.
	Timestamp time.Time `json:"timestamp"`
}

// Driver persists history entries.
type Driver interface {
	// Append records a question and its answer. The entry is either fully
	// recorded or not recorded at all.
	Append(ctx context.Context, question, answer string) (*Entry, error)

	// List returns at most limit of the most recent entries, oldest first.
	// A non-positive limit returns an empty slice.
	List(ctx context.Context, limit int) ([]*Entry, error)

	// Clear discards every entry.
	Clear(ctx context.Context) error

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	// Close releases any resources held by the driver.
	Close() error
}

// Truncate caps answer at max characters for summarized views. It counts
// runes, not bytes, so multi-byte characters are never split.
func Truncate(answer string, max int) string {
	if max <= 0 || utf8.RuneCountInString(answer) <= max {
		return answer
	}
	return string([]rune(answer)[:max])
}

// Summarize returns a copy of e whose answer is capped by Truncate.
func Summarize(e *Entry, max int) *Entry {
	s := *e
	s.Answer = Truncate(e.Answer, max)
	return &s
}

// Now returns the append timestamp used by drivers, in UTC.
func Now() time.Time {
	return time.Now().UTC()
}
