package atsscore

// Section is one of the fixed resume categories scored by the matcher
type Section string

const (
	SectionSummary    Section = "summary"
	SectionExperience Section = "experience"
	SectionSkills     Section = "skills"
	SectionEducation  Section = "education"
)

// sectionOrder is the order sections appear in every analysis
var sectionOrder = [...]Section{
	SectionSummary,
	SectionExperience,
	SectionSkills,
	SectionEducation,
}

// Sections returns the four categories in their fixed output order
func Sections() []Section {
	out := make([]Section, len(sectionOrder))
	copy(out, sectionOrder[:])
	return out
}

// Valid reports whether s is one of the four known categories
func (s Section) Valid() bool {
	for _, known := range sectionOrder {
		if s == known {
			return true
		}
	}
	return false
}

func (s Section) String() string {
	return string(s)
}

// SectionAnalysis is the match outcome for one resume section.
// Matches and Missing are display lists and may be truncated; ATSScore is
// always computed from the untruncated counts.
type SectionAnalysis struct {
	Section     Section  `json:"section"`
	Matches     []string `json:"matches"`
	Missing     []string `json:"missing"`
	ATSScore    int      `json:"atsScore"`
	Suggestions []string `json:"suggestions"`
	WeakItems   []string `json:"weakItems"` // reserved, always empty
}

// Result is the aggregate of the four section analyses computed against one keyword set
type Result struct {
	Keywords []string          `json:"keywords"`
	Sections []SectionAnalysis `json:"analysis"`
}

// OverallScore returns the rounded mean of the section scores
func (r Result) OverallScore() int {
	if len(r.Sections) == 0 {
		return 0
	}
	total := 0
	for _, s := range r.Sections {
		total += s.ATSScore
	}
	return roundHalfUp(float64(total) / float64(len(r.Sections)))
}

// Section returns the analysis for the given category, if present
func (r Result) Section(section Section) (SectionAnalysis, bool) {
	for _, s := range r.Sections {
		if s.Section == section {
			return s, true
		}
	}
	return SectionAnalysis{}, false
}
