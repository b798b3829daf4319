// Package answer turns ranked retrieval results into the Markdown answer
// returned to users.
package answer

import (
	"fmt"
	"strings"

	"github.com/papercomputeco/legalqa/pkg/lexical"
)

// DefaultRelevantFloor is the score a candidate must exceed to be shown.
const DefaultRelevantFloor = 0.15

const noteLine = "> ℹ️ **Note** : Seuls les articles pertinents pour votre recherche ont été affichés.\n\n"

// Assembler formats answers. The zero value is not usable; use New.
type Assembler struct {
	floor float64
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithRelevantFloor overrides DefaultRelevantFloor.
func WithRelevantFloor(floor float64) Option {
	return func(a *Assembler) {
		a.floor = floor
	}
}

// New creates an Assembler.
func New(opts ...Option) *Assembler {
	a := &Assembler{floor: DefaultRelevantFloor}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RelevantFloor returns the configured relevant floor.
func (a *Assembler) RelevantFloor() float64 {
	return a.floor
}

// Relevant returns the candidates scoring strictly above the relevant floor,
// in their original order.
func (a *Assembler) Relevant(candidates []lexical.Result) []lexical.Result {
	relevant := make([]lexical.Result, 0, len(candidates))
	for _, c := range candidates {
		if c.Score > a.floor {
			relevant = append(relevant, c)
		}
	}
	return relevant
}

// Assemble builds the answer for question from the ranked candidates. When no
// candidate is relevant it returns NoMatch(question). It never fails.
func (a *Assembler) Assemble(question string, candidates []lexical.Result) string {
	relevant := a.Relevant(candidates)
	if len(relevant) == 0 {
		return NoMatch(question)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "### 📚 Articles pertinents trouvés (%d résultat(s))\n\n", len(relevant))

	titles := make([]string, 0, len(relevant))
	for i, r := range relevant {
		fmt.Fprintf(&b, "#### Article %d: %s\n", i+1, r.Title)
		fmt.Fprintf(&b, "**Pertinence:** %s\n\n", Percent(r.Score))
		fmt.Fprintf(&b, "**Contenu:**\n%s\n\n", strings.TrimSpace(r.Content))
		b.WriteString("---\n\n")
		titles = append(titles, r.Title)
	}

	b.WriteString(noteLine)
	fmt.Fprintf(&b, "**(Articles trouvés: %s)**", strings.Join(Unique(titles), ", "))

	return b.String()
}

// NoMatch is the fixed answer used when nothing relevant was found. It quotes
// the question verbatim and lists the themes the corpus covers.
func NoMatch(question string) string {
	var b strings.Builder
	b.WriteString("### 🔍 Aucun article correspondant\n\n")
	fmt.Fprintf(&b, "Je n'ai pas trouvé d'article concernant **'%s'** dans les documents.\n\n", question)
	b.WriteString("#### Thèmes disponibles :\n")
	b.WriteString("*   📘 **Contrat de travail** (clauses, obligations)\n")
	b.WriteString("*   💰 **Rémunération** (salaires, primes, paiement)\n")
	b.WriteString("*   🏖️ **Congés et absence** (RTT, congés payés)\n")
	b.WriteString("*   ⚖️ **Fin de contrat** (licenciement, démission)\n\n")
	b.WriteString("*Veuillez reformuler votre question ou consulter un professionnel.*")
	return b.String()
}

// Percent formats a score in [0,1] as a whole percentage, e.g. 0.2857 -> "29%".
func Percent(score float64) string {
	return fmt.Sprintf("%.0f%%", score*100)
}

// Unique removes duplicates from names, keeping the first occurrence of each.
func Unique(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// SourceNames returns the de-duplicated display sources of results in
// first-seen order.
func SourceNames(results []lexical.Result) []string {
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Source
	}
	return Unique(names)
}
