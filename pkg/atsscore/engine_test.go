package atsscore_test

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"go-resume-matcher/pkg/atsscore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sampleJD     = "We need a developer skilled in React and TypeScript with strong Communication."
	sampleResume = "Experienced React developer. Strong Communication skills."
)

func TestAnalyze(t *testing.T) {
	engine := atsscore.NewEngine()

	t.Run("Should return four sections in fixed order", func(t *testing.T) {
		result := engine.Analyze(sampleResume, sampleJD)
		require.Len(t, result.Sections, 4)
		for i, want := range []atsscore.Section{"summary", "experience", "skills", "education"} {
			assert.Equal(t, want, result.Sections[i].Section)
		}
	})

	t.Run("Should match the skills scenario", func(t *testing.T) {
		result := engine.Analyze(sampleResume, sampleJD)
		skills, ok := result.Section(atsscore.SectionSkills)
		require.True(t, ok)

		assert.Equal(t, []string{"developer", "react", "strong", "communication"}, skills.Matches)
		assert.Equal(t, []string{"need", "skilled", "typescript"}, skills.Missing)
		assert.Contains(t, skills.Suggestions, "Add skill: typescript")
		assert.Equal(t, 57, skills.ATSScore)
		assert.Equal(t, []string{}, skills.WeakItems)
	})

	// The whole resume is compared for every section, so all sections agree.
	t.Run("Should score every section against the whole resume", func(t *testing.T) {
		result := engine.Analyze(sampleResume, sampleJD)
		first := result.Sections[0]
		for _, s := range result.Sections[1:] {
			assert.Equal(t, first.Matches, s.Matches)
			assert.Equal(t, first.Missing, s.Missing)
			assert.Equal(t, first.ATSScore, s.ATSScore)
		}
	})

	t.Run("Should produce zero scores and empty lists for an empty job description", func(t *testing.T) {
		result := engine.Analyze(sampleResume, "")
		assert.Empty(t, result.Keywords)
		for _, s := range result.Sections {
			assert.Empty(t, s.Matches)
			assert.Empty(t, s.Missing)
			assert.Empty(t, s.Suggestions)
			assert.Equal(t, atsscore.ZeroKeywordScore, s.ATSScore)
		}
		assert.Equal(t, 0, result.OverallScore())
	})

	t.Run("Should truncate display lists but score on full counts", func(t *testing.T) {
		var jd, resume []string
		for i := 0; i < 25; i++ {
			jd = append(jd, fmt.Sprintf("skill%02d", i))
		}
		for i := 0; i < 10; i++ {
			resume = append(resume, fmt.Sprintf("skill%02d", i))
		}

		result := engine.Analyze(strings.Join(resume, " "), strings.Join(jd, " "))
		require.Len(t, result.Keywords, 20)

		for _, s := range result.Sections {
			assert.Len(t, s.Matches, 8)
			assert.Len(t, s.Missing, 5)
			assert.Len(t, s.Suggestions, 3)
			assert.Equal(t, 50, s.ATSScore)
			assert.Equal(t, "skill10", s.Missing[0])
		}
		skills, _ := result.Section(atsscore.SectionSkills)
		assert.Equal(t, []string{"Add skill: skill10", "Add skill: skill11", "Add skill: skill12"}, skills.Suggestions)
	})

	t.Run("Should keep suggestions a prefix-consistent view of missing", func(t *testing.T) {
		result := engine.Analyze("react", "react typescript graphql")
		skills, _ := result.Section(atsscore.SectionSkills)
		assert.Equal(t, []string{"typescript", "graphql"}, skills.Missing)
		assert.Equal(t, []string{"Add skill: typescript", "Add skill: graphql"}, skills.Suggestions)
	})

	t.Run("Should use substring containment", func(t *testing.T) {
		result := engine.Analyze("Built JavaScript tooling", "java kotlin")
		skills, _ := result.Section(atsscore.SectionSkills)
		assert.Equal(t, []string{"java"}, skills.Matches)
		assert.Equal(t, []string{"kotlin"}, skills.Missing)
		assert.Equal(t, 50, skills.ATSScore)
	})
}

func TestAnalyzeInvariants(t *testing.T) {
	engine := atsscore.NewEngine()
	pairs := [][2]string{
		{sampleResume, sampleJD},
		{"", "kubernetes docker terraform ansible"},
		{"kubernetes docker terraform ansible", "kubernetes docker terraform ansible"},
		{"Go developer", strings.Repeat("golang distributed systems reliability ", 10)},
		{"anything", "!!!"},
	}

	for _, p := range pairs {
		resume, jd := p[0], p[1]
		keywords := engine.ExtractKeywords(jd)
		lower := strings.ToLower(resume)
		matches, missing := atsscore.MatchKeywords(lower, keywords)
		assert.Equal(t, len(keywords), len(matches)+len(missing))

		result := engine.Analyze(resume, jd)
		for _, s := range result.Sections {
			assert.GreaterOrEqual(t, s.ATSScore, 0)
			assert.LessOrEqual(t, s.ATSScore, 100)
			assert.LessOrEqual(t, len(s.Matches), 8)
			assert.LessOrEqual(t, len(s.Missing), 5)
			assert.Equal(t, min(3, len(missing)), len(s.Suggestions))
			assert.Equal(t, atsscore.Score(len(matches), len(keywords)), s.ATSScore)
		}
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	engine := atsscore.NewEngine()

	first, err := json.Marshal(engine.Analyze(sampleResume, sampleJD).Sections)
	require.NoError(t, err)
	second, err := json.Marshal(engine.Analyze(sampleResume, sampleJD).Sections)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Contains(t, string(first), `"weakItems":[]`)
	assert.Contains(t, string(first), `"atsScore":57`)
}

func TestAnalyzeSection(t *testing.T) {
	engine := atsscore.NewEngine()
	keywords := []string{"react", "typescript"}

	got := engine.AnalyzeSection(atsscore.SectionEducation, "REACT bootcamp", keywords)
	assert.Equal(t, atsscore.SectionEducation, got.Section)
	assert.Equal(t, []string{"react"}, got.Matches)
	assert.Equal(t, []string{"Consider mentioning typescript in your education section."}, got.Suggestions)
	assert.Equal(t, 50, got.ATSScore)
}

func TestScore(t *testing.T) {
	tests := []struct {
		matched, total, want int
	}{
		{0, 0, atsscore.ZeroKeywordScore},
		{0, 5, 0},
		{5, 5, 100},
		{1, 8, 13},
		{1, 3, 33},
		{2, 3, 67},
		{4, 7, 57},
		{1, 200, 1},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_of_%d", tt.matched, tt.total), func(t *testing.T) {
			assert.Equal(t, tt.want, atsscore.Score(tt.matched, tt.total))
		})
	}
}

func TestEngineOptions(t *testing.T) {
	engine := atsscore.NewEngine(
		atsscore.WithOptions(atsscore.Options{MaxKeywords: 2, MinTokenLength: 2}),
		atsscore.WithStopWords(atsscore.NewStopWords("go")),
	)

	assert.Equal(t, []string{"aws", "sql"}, engine.ExtractKeywords("go aws sql aws sql rust"))
	assert.Equal(t, 8, engine.Options().MaxMatches)
	assert.Equal(t, []string{"go"}, engine.StopWords())
}

func TestOverallScore(t *testing.T) {
	r := atsscore.Result{Sections: []atsscore.SectionAnalysis{
		{ATSScore: 50}, {ATSScore: 51}, {ATSScore: 50}, {ATSScore: 51},
	}}
	assert.Equal(t, 51, r.OverallScore())
	assert.Equal(t, 0, atsscore.Result{}.OverallScore())
}
