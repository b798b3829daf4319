package lexical

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/papercomputeco/legalqa/pkg/corpus"
)

const (
	maxDescriptionLen  = 100
	keptDescriptionLen = 50
)

// space matches what Unicode counts as whitespace, so a no-break space before
// the colon ("Article 12\u00a0: ...") still separates the number.
const space = `\s\p{Z}\x{0b}\x{85}\x{1c}-\x{1f}`

var (
	articleNumberRe = regexp.MustCompile(`Article[` + space + `]+(\p{Nd}+)[:` + space + `]`)

	genericTitles = map[string]bool{
		"":         true,
		"articles": true,
		"article":  true,
		"contenu":  true,
	}
)

// CleanTitle returns a presentable title for a record. Empty or generic
// titles are rebuilt from the first "Article <n>" reference in content,
// keeping a short trailing description when one exists. Other titles get
// separators replaced by spaces and are title-cased.
func CleanTitle(title, content string) string {
	if genericTitles[title] {
		if m := articleNumberRe.FindStringSubmatch(content); m != nil {
			return articleTitle(m[1], content)
		}
	}

	title = strings.NewReplacer("-", " ", "_", " ").Replace(title)
	return corpus.TitleCase(title)
}

func articleTitle(num, content string) string {
	descRe := regexp.MustCompile(`Article[` + space + `]+` + regexp.QuoteMeta(num) + `[:` + space + `]+([^\n]+)`)
	m := descRe.FindStringSubmatch(content)
	if m == nil {
		return "Article " + num
	}

	desc := strings.TrimSpace(m[1])
	if desc == "" || utf8.RuneCountInString(desc) >= maxDescriptionLen {
		return "Article " + num
	}
	return "Article " + num + " - " + truncateRunes(desc, keptDescriptionLen)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
