// Package atsscore implements the keyword-based resume/job-description matching engine.
//
// Keywords are extracted once from the job description by frequency, then every resume
// section is scored against that same keyword set and missing keywords are turned into
// section-specific suggestions. Everything in this package is pure and deterministic;
// an Engine is immutable after construction and safe for concurrent use.
package atsscore

import "strings"

// Options holds the limits applied by the engine
type Options struct {
	MaxKeywords    int // keywords kept after ranking
	MinTokenLength int // shorter tokens are discarded
	MaxMatches     int // matches shown per section
	MaxMissing     int // missing keywords shown per section
	MaxSuggestions int // suggestions generated per section
}

// DefaultOptions returns the standard engine limits
func DefaultOptions() Options {
	return Options{
		MaxKeywords:    20,
		MinTokenLength: 4,
		MaxMatches:     8,
		MaxMissing:     5,
		MaxSuggestions: 3,
	}
}

// Option configures an Engine
type Option func(*Engine)

// WithStopWords replaces the stop-word set. A nil set keeps the default.
func WithStopWords(sw StopWords) Option {
	return func(e *Engine) {
		if sw != nil {
			e.stopWords = sw
		}
	}
}

// WithOptions overrides the engine limits. Non-positive fields keep their defaults.
func WithOptions(opts Options) Option {
	return func(e *Engine) {
		if opts.MaxKeywords > 0 {
			e.opts.MaxKeywords = opts.MaxKeywords
		}
		if opts.MinTokenLength > 0 {
			e.opts.MinTokenLength = opts.MinTokenLength
		}
		if opts.MaxMatches > 0 {
			e.opts.MaxMatches = opts.MaxMatches
		}
		if opts.MaxMissing > 0 {
			e.opts.MaxMissing = opts.MaxMissing
		}
		if opts.MaxSuggestions > 0 {
			e.opts.MaxSuggestions = opts.MaxSuggestions
		}
	}
}

// Engine extracts keywords and scores resumes against them
type Engine struct {
	stopWords StopWords
	opts      Options
}

// NewEngine creates an engine with the built-in stop words and default limits
func NewEngine(options ...Option) *Engine {
	e := &Engine{
		stopWords: DefaultStopWords(),
		opts:      DefaultOptions(),
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

// Options returns the limits in effect
func (e *Engine) Options() Options {
	return e.opts
}

// StopWords returns the stop words in sorted order
func (e *Engine) StopWords() []string {
	return e.stopWords.Words()
}

// Analyze scores the resume against the job description for all four sections.
// Keywords are extracted once and shared by every section.
func (e *Engine) Analyze(resume, jobDescription string) Result {
	keywords := e.ExtractKeywords(jobDescription)
	resumeLower := strings.ToLower(resume)

	sections := make([]SectionAnalysis, 0, len(sectionOrder))
	for _, section := range sectionOrder {
		sections = append(sections, e.analyzeLowered(section, resumeLower, keywords))
	}

	return Result{
		Keywords: keywords,
		Sections: sections,
	}
}
