// Package lexical ranks catalog records by word overlap with a query.
//
// A record scores 0.5 * title overlap + 0.5 * content overlap, where overlap
// is the share of distinct query words found in the field. Records at or
// below the candidate floor are dropped and the rest are sorted by score,
// highest first, with ties kept in catalog order.
package lexical

import (
	"sort"

	"github.com/papercomputeco/legalqa/pkg/corpus"
)

const (
	// DefaultCandidateFloor is the score a record must exceed to be returned.
	DefaultCandidateFloor = 0.1

	// DefaultCorpusName prefixes every result source label.
	DefaultCorpusName = "Code du travail"

	titleWeight   = 0.5
	contentWeight = 0.5
)

// Result is one scored record.
type Result struct {
	RecordID string  `json:"record_id"`
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	Score    float64 `json:"score"`
	Source   string  `json:"source"`
}

type entry struct {
	record  corpus.Record
	title   TokenSet
	content TokenSet
	clean   string
}

// Index holds pre-tokenized catalog records. It is immutable and safe for
// concurrent use.
type Index struct {
	entries []entry
	byID    map[string]int
	floor   float64
	corpus  string
}

// Option configures an Index.
type Option func(*Index)

// WithCandidateFloor overrides DefaultCandidateFloor.
func WithCandidateFloor(floor float64) Option {
	return func(i *Index) {
		i.floor = floor
	}
}

// WithCorpusName overrides DefaultCorpusName in result sources.
func WithCorpusName(name string) Option {
	return func(i *Index) {
		i.corpus = name
	}
}

// NewIndex tokenizes every record of catalog once.
func NewIndex(catalog *corpus.Catalog, opts ...Option) *Index {
	idx := &Index{
		floor:  DefaultCandidateFloor,
		corpus: DefaultCorpusName,
	}
	for _, opt := range opts {
		opt(idx)
	}

	records := catalog.Records()
	idx.entries = make([]entry, len(records))
	idx.byID = make(map[string]int, len(records))
	for i, r := range records {
		idx.byID[r.ID] = i
		idx.entries[i] = entry{
			record:  r,
			title:   Tokenize(r.Title),
			content: Tokenize(r.Content),
			clean:   CleanTitle(r.Title, r.Content),
		}
	}
	return idx
}

// Len returns the number of indexed records.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// CandidateFloor returns the configured candidate floor.
func (idx *Index) CandidateFloor() float64 {
	return idx.floor
}

// Source returns the display label for a clean title.
func (idx *Index) Source(cleanTitle string) string {
	return idx.corpus + " - " + cleanTitle
}

func (idx *Index) result(e entry, score float64) Result {
	return Result{
		RecordID: e.record.ID,
		Title:    e.clean,
		Content:  e.record.Content,
		Score:    score,
		Source:   idx.Source(e.clean),
	}
}

// Lookup builds the Result for an indexed record with an externally computed
// score. It reports false for unknown ids.
func (idx *Index) Lookup(recordID string, score float64) (Result, bool) {
	i, ok := idx.byID[recordID]
	if !ok {
		return Result{}, false
	}
	return idx.result(idx.entries[i], score), true
}

// Retrieve scores every record against query and returns the candidates in
// descending score order. k <= 0 returns every candidate.
func (idx *Index) Retrieve(query string, k int) []Result {
	q := Tokenize(query)

	results := make([]Result, 0)
	for _, e := range idx.entries {
		score := q.Overlap(e.title)*titleWeight + q.Overlap(e.content)*contentWeight
		if score <= idx.floor {
			continue
		}
		results = append(results, idx.result(e, score))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results
}
