package eventstream

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// Schema names the event payload layout.
	Schema = "legalqa.exchange.v1"

	// EventTypeExchangeRecorded is emitted after a question is answered.
	EventTypeExchangeRecorded = "exchange.recorded"
)

// ExchangeEvent describes one answered question. The answer text itself is
// not carried, only its length.
type ExchangeEvent struct {
	Schema    string    `json:"schema"`
	EventType string    `json:"event_type"`
	EventID   string    `json:"event_id"`
	EmittedAt time.Time `json:"emitted_at"`

	// Sequence is the history entry id, or 0 when the exchange was not
	// recorded.
	Sequence int64 `json:"sequence"`

	Question    string `json:"question"`
	AnswerChars int    `json:"answer_chars"`
	SourceCount int    `json:"source_count"`
	Engine      string `json:"engine"`
}

// NewExchangeEvent stamps a new event with a random id and the current time.
func NewExchangeEvent(sequence int64, question, answer string, sources int, engine string) *ExchangeEvent {
	return &ExchangeEvent{
		Schema:      Schema,
		EventType:   EventTypeExchangeRecorded,
		EventID:     uuid.NewString(),
		EmittedAt:   time.Now().UTC(),
		Sequence:    sequence,
		Question:    question,
		AnswerChars: utf8.RuneCountInString(answer),
		SourceCount: sources,
		Engine:      engine,
	}
}
