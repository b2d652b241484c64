package atsscore

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultStopWords is the hand-curated list of function words excluded from extraction.
// Most entries are shorter than the minimum token length and are listed anyway so the
// set stays correct if MinTokenLength is lowered.
var defaultStopWords = []string{
	// articles
	"the", "a", "an",
	// conjunctions
	"and", "or", "but",
	// prepositions
	"in", "on", "at", "to", "for", "of", "with", "by", "from", "as",
	// auxiliary verbs
	"is", "was", "are", "were", "been", "be", "have", "has", "had",
	"do", "does", "did", "will", "would", "could", "should", "may", "might", "must", "can",
	// demonstratives
	"this", "that", "these", "those",
	// pronouns
	"i", "you", "he", "she", "it", "we", "they",
}

// StopWords is a set of lower-case tokens ignored by the keyword extractor
type StopWords map[string]struct{}

// DefaultStopWords returns a fresh copy of the built-in stop-word set
func DefaultStopWords() StopWords {
	return NewStopWords(defaultStopWords...)
}

// NewStopWords builds a set from the given words, normalizing case and whitespace
func NewStopWords(words ...string) StopWords {
	sw := make(StopWords, len(words))
	sw.Add(words...)
	return sw
}

// Add inserts words into the set
func (sw StopWords) Add(words ...string) {
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		sw[w] = struct{}{}
	}
}

// Contains reports whether word is a stop word. word must already be lower-case.
func (sw StopWords) Contains(word string) bool {
	_, ok := sw[word]
	return ok
}

// Words returns the set members in sorted order
func (sw StopWords) Words() []string {
	out := make([]string, 0, len(sw))
	for w := range sw {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Stop-word file modes
const (
	StopWordsModeReplace = "replace"
	StopWordsModeExtend  = "extend"
)

// stopWordsFile is the YAML mapping layout accepted by LoadStopWords
type stopWordsFile struct {
	Mode      string   `yaml:"mode"`
	StopWords []string `yaml:"stop_words"`
}

// LoadStopWords reads a stop-word file. Three layouts are accepted:
//
//	mode: extend        # or "replace"
//	stop_words: [with, from, team]
//
// a bare YAML list such as "[with, from, team]", or plain text with one word per
// line where blank lines and lines starting with "#" are skipped.
//
// In extend mode (the default, and the only mode for lists and plain text) the
// words are added to the built-in set; in replace mode they become the whole set.
func LoadStopWords(path string) (StopWords, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stop words file: %w", err)
	}
	return ParseStopWords(data)
}

// ParseStopWords parses a stop-word document in any layout described in LoadStopWords
func ParseStopWords(data []byte) (StopWords, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse stop words: %w", err)
	}
	if len(doc.Content) == 0 {
		return DefaultStopWords(), nil
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.MappingNode:
		var f stopWordsFile
		if err := root.Decode(&f); err != nil {
			return nil, fmt.Errorf("failed to parse stop words: %w", err)
		}
		return f.build()
	case yaml.SequenceNode:
		var words []string
		if err := root.Decode(&words); err != nil {
			return nil, fmt.Errorf("failed to parse stop words: %w", err)
		}
		sw := DefaultStopWords()
		sw.Add(words...)
		return sw, nil
	case yaml.ScalarNode:
		// plain lines fold into a single YAML scalar, so split the raw text instead
		sw := DefaultStopWords()
		sw.Add(plainLines(data)...)
		return sw, nil
	default:
		return nil, fmt.Errorf("unsupported stop words document")
	}
}

func (f stopWordsFile) build() (StopWords, error) {
	switch strings.ToLower(strings.TrimSpace(f.Mode)) {
	case "", StopWordsModeExtend:
		sw := DefaultStopWords()
		sw.Add(f.StopWords...)
		return sw, nil
	case StopWordsModeReplace:
		return NewStopWords(f.StopWords...), nil
	default:
		return nil, fmt.Errorf("unknown stop words mode: %q", f.Mode)
	}
}

func plainLines(data []byte) []string {
	var words []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	return words
}
