package atsscore

import (
	"regexp"
	"sort"
	"strings"
)

// nonWordRe matches anything that is neither an ASCII word character nor whitespace.
// Each match becomes a single space so punctuation never glues two words together.
var nonWordRe = regexp.MustCompile(`[^\w\s]`)

// KeywordCount is a normalized token and how often it occurs in the source text
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// Tokenize lower-cases text, strips punctuation and splits on whitespace.
// No length or stop-word filtering is applied.
func Tokenize(text string) []string {
	text = strings.ToLower(text)
	text = nonWordRe.ReplaceAllString(text, " ")
	return strings.Fields(text)
}

// KeywordCounts returns the ranked keyword frequencies of text, at most MaxKeywords entries.
// Ordering is by descending count; ties keep first-occurrence order.
func (e *Engine) KeywordCounts(text string) []KeywordCount {
	tokens := Tokenize(text)

	index := make(map[string]int, len(tokens))
	counts := make([]KeywordCount, 0, len(tokens))
	for _, tok := range tokens {
		if len(tok) < e.opts.MinTokenLength || e.stopWords.Contains(tok) {
			continue
		}
		if i, ok := index[tok]; ok {
			counts[i].Count++
			continue
		}
		index[tok] = len(counts)
		counts = append(counts, KeywordCount{Keyword: tok, Count: 1})
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})

	if len(counts) > e.opts.MaxKeywords {
		counts = counts[:e.opts.MaxKeywords]
	}
	return counts
}

// ExtractKeywords returns the top keywords of a job description, most frequent first
func (e *Engine) ExtractKeywords(text string) []string {
	counts := e.KeywordCounts(text)
	keywords := make([]string, len(counts))
	for i, kc := range counts {
		keywords[i] = kc.Keyword
	}
	return keywords
}
