// Package corpus loads the French labor-law text corpus into an immutable,
// ordered Catalog of article records.
//
// Source files live under <data dir>/texts/*.txt. A file may hold several
// articles separated by the "=== ARTICLE ===" delimiter, each article carrying
// a "Titre:" line and a "Contenu:" marker after which the body starts. Files
// without the delimiter become a single record. When nothing loads, a small
// built-in catalog is used so the service is never left without records.
package corpus

// Record is a retrievable unit of knowledge.
type Record struct {
	// ID is unique within a Catalog. It is derived from the source file stem
	// and, for multi-article files, the 1-based article index.
	ID string `json:"id"`

	// Title is a short human-readable label.
	Title string `json:"title"`

	// Content is the full article body. It is never empty.
	Content string `json:"content"`
}

// Catalog is the read-only set of records loaded at startup. Records keep the
// order in which their ids were first seen.
type Catalog struct {
	records []Record
	index   map[string]int
}

// NewCatalog builds a Catalog from records. A record whose id was already seen
// replaces the earlier one in place.
func NewCatalog(records ...Record) *Catalog {
	c := &Catalog{index: make(map[string]int, len(records))}
	for _, r := range records {
		c.put(r)
	}
	return c
}

func (c *Catalog) put(r Record) {
	if i, ok := c.index[r.ID]; ok {
		c.records[i] = r
		return
	}
	c.index[r.ID] = len(c.records)
	c.records = append(c.records, r)
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}

// Records returns a copy of the records in encounter order.
func (c *Catalog) Records() []Record {
	if c == nil {
		return nil
	}
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// Get returns the record with the given id.
func (c *Catalog) Get(id string) (Record, bool) {
	if c == nil {
		return Record{}, false
	}
	i, ok := c.index[id]
	if !ok {
		return Record{}, false
	}
	return c.records[i], true
}
