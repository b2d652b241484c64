package atsscore

import (
	"math"
	"strings"
)

// ZeroKeywordScore is the score reported when the job description yields no keywords
const ZeroKeywordScore = 0

// MatchKeywords splits keywords into those contained in resumeLower and those absent,
// preserving keyword order. resumeLower must already be lower-cased.
func MatchKeywords(resumeLower string, keywords []string) (matches, missing []string) {
	matches = make([]string, 0, len(keywords))
	missing = make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if strings.Contains(resumeLower, kw) {
			matches = append(matches, kw)
		} else {
			missing = append(missing, kw)
		}
	}
	return matches, missing
}

// Score returns round(matched/total*100), or ZeroKeywordScore when total is zero
func Score(matched, total int) int {
	if total <= 0 {
		return ZeroKeywordScore
	}
	return roundHalfUp(float64(matched) / float64(total) * 100)
}

// AnalyzeSection scores one section of the resume against the extracted keywords.
//
// The whole resume is searched for every section; keyword search is not scoped
// to the section's own text. Scores downstream depend on this, so it is kept.
func (e *Engine) AnalyzeSection(section Section, resume string, keywords []string) SectionAnalysis {
	return e.analyzeLowered(section, strings.ToLower(resume), keywords)
}

func (e *Engine) analyzeLowered(section Section, resumeLower string, keywords []string) SectionAnalysis {
	matches, missing := MatchKeywords(resumeLower, keywords)

	return SectionAnalysis{
		Section:     section,
		Matches:     head(matches, e.opts.MaxMatches),
		Missing:     head(missing, e.opts.MaxMissing),
		ATSScore:    Score(len(matches), len(keywords)),
		Suggestions: Suggest(section, head(missing, e.opts.MaxSuggestions)),
		WeakItems:   []string{},
	}
}

// head returns a copy of at most the first n elements of s
func head(s []string, n int) []string {
	if n < 0 {
		n = 0
	}
	if len(s) < n {
		n = len(s)
	}
	out := make([]string, n)
	copy(out, s[:n])
	return out
}

// roundHalfUp rounds x to the nearest integer, halves toward +Inf
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
