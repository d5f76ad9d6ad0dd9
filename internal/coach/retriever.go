package coach

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"ecocoach/internal/catalog"
)

// CatalogRetriever ranks catalog challenges and extra tips by how many words
// they share with the query.
type CatalogRetriever struct {
	passages []Passage
	terms    []map[string]struct{}
}

func NewCatalogRetriever(cat *catalog.Catalog, tips ...string) *CatalogRetriever {
	r := &CatalogRetriever{}
	for _, c := range cat.Entries() {
		r.add(Passage{
			Source: fmt.Sprintf("challenge:%d", c.ID),
			Text:   fmt.Sprintf("%s (%s): %s", c.Title, c.Category, c.Description),
		})
	}
	for i, tip := range tips {
		r.add(Passage{Source: fmt.Sprintf("tip:%d", i+1), Text: tip})
	}
	return r
}

func (r *CatalogRetriever) add(p Passage) {
	r.passages = append(r.passages, p)
	r.terms = append(r.terms, termSet(p.Text))
}

func (r *CatalogRetriever) Retrieve(ctx context.Context, query string, k int) ([]Passage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, nil
	}

	q := termSet(query)

	type scored struct {
		idx   int
		score int
	}
	var hits []scored
	for i, terms := range r.terms {
		score := 0
		for t := range q {
			if _, ok := terms[t]; ok {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, scored{idx: i, score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})

	if len(hits) > k {
		hits = hits[:k]
	}

	out := make([]Passage, len(hits))
	for i, h := range hits {
		out[i] = r.passages[h.idx]
	}
	return out, nil
}

func termSet(s string) map[string]struct{} {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		if len(w) < 3 {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}
