package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/papercomputeco/legalqa/pkg/logger"
)

const (
	// ArticleDelimiter separates articles inside a source file.
	ArticleDelimiter = "=== ARTICLE ==="

	titleMarker   = "Titre:"
	contentMarker = "Contenu:"

	textsDir = "texts"
)

// Report summarizes a Load call.
type Report struct {
	Files        int  `json:"files"`
	SkippedFiles int  `json:"skipped_files"`
	Records      int  `json:"records"`
	Skipped      int  `json:"skipped_records"`
	Fallback     bool `json:"fallback"`
}

// Loader parses a corpus directory into a Catalog.
type Loader struct {
	logger *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger used for load warnings.
func WithLogger(l *slog.Logger) LoaderOption {
	return func(ld *Loader) {
		ld.logger = l
	}
}

// NewLoader creates a Loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{logger: logger.Nop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads dir/texts/*.txt. It never fails: unreadable files are logged and
// skipped, and an empty result is replaced by the built-in records.
func (l *Loader) Load(dir string) (*Catalog, Report) {
	return l.LoadFS(os.DirFS(dir))
}

// LoadFS is Load over an arbitrary file system rooted at the data directory.
func (l *Loader) LoadFS(fsys fs.FS) (*Catalog, Report) {
	var report Report
	catalog := NewCatalog()

	info, err := fs.Stat(fsys, textsDir)
	switch {
	case err != nil || !info.IsDir():
		l.logger.Warn("corpus texts directory not found", "dir", textsDir, "error", err)
	default:
		files, err := fs.Glob(fsys, path.Join(textsDir, "*.txt"))
		if err != nil {
			l.logger.Warn("listing corpus files", "error", err)
		}

		for _, name := range files {
			report.Files++
			records, skipped, err := l.parseFile(fsys, name)
			if err != nil {
				report.SkippedFiles++
				l.logger.Warn("skipping corpus file", "file", name, "error", err)
				continue
			}
			report.Skipped += skipped
			for _, r := range records {
				catalog.put(r)
			}
		}
	}

	if catalog.Len() == 0 {
		l.logger.Warn("no corpus records loaded, using built-in records")
		catalog = NewCatalog(Builtin()...)
		report.Fallback = true
	}

	report.Records = catalog.Len()
	l.logger.Info("corpus loaded",
		"files", report.Files,
		"skipped_files", report.SkippedFiles,
		"records", report.Records,
		"fallback", report.Fallback,
	)

	return catalog, report
}

var errInvalidUTF8 = errors.New("file is not valid UTF-8")

func (l *Loader) parseFile(fsys fs.FS, name string) ([]Record, int, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, 0, fmt.Errorf("reading %s: %w", name, err)
	}
	if !utf8.Valid(data) {
		return nil, 0, errInvalidUTF8
	}

	stem := strings.TrimSuffix(path.Base(name), path.Ext(name))
	records, skipped := ParseDocument(stem, string(data))
	for _, id := range skipped {
		l.logger.Warn("skipping article without content", "file", name, "record_id", id)
	}
	return records, len(skipped), nil
}

// ParseDocument splits one source document into records. It returns the
// parsed records and the ids of articles dropped for having no content.
func ParseDocument(stem, text string) ([]Record, []string) {
	if !strings.Contains(text, ArticleDelimiter) {
		content := strings.TrimSpace(text)
		if content == "" {
			return nil, []string{stem}
		}
		return []Record{{
			ID:      stem,
			Title:   TitleCase(strings.ReplaceAll(stem, "_", " ")),
			Content: content,
		}}, nil
	}

	var (
		records []Record
		skipped []string
	)
	// Text before the first delimiter is not an article.
	blocks := strings.Split(text, ArticleDelimiter)[1:]
	for i, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		n := i + 1
		id := stem + "_" + strconv.Itoa(n)
		title, content := parseArticle(block)
		if content == "" {
			skipped = append(skipped, id)
			continue
		}
		if title == "" {
			title = "Article " + strconv.Itoa(n)
		}
		records = append(records, Record{ID: id, Title: title, Content: content})
	}
	return records, skipped
}

// parseArticle scans block line by line. A "Titre:" line sets the title; the
// first other line holding "Contenu:" ends the header and the body starts on
// the following line. Without a content marker the whole block is the body.
func parseArticle(block string) (string, string) {
	lines := strings.Split(block, "\n")

	title := ""
	start := 0
	for i, line := range lines {
		if strings.Contains(line, titleMarker) {
			line = strings.ReplaceAll(line, titleMarker, "")
			title = strings.TrimSpace(strings.ReplaceAll(line, contentMarker, ""))
		} else if strings.Contains(line, contentMarker) {
			start = i + 1
			break
		}
	}

	return title, strings.TrimSpace(strings.Join(lines[start:], "\n"))
}
