package atsscore

import "fmt"

// Suggest turns missing keywords into one template sentence each, chosen by section.
// Any section other than summary, experience and skills gets the generic template.
func Suggest(section Section, missing []string) []string {
	out := make([]string, 0, len(missing))
	for _, kw := range missing {
		out = append(out, suggestion(section, kw))
	}
	return out
}

func suggestion(section Section, keyword string) string {
	switch section {
	case SectionSummary:
		return fmt.Sprintf(`Consider adding: "Experienced professional with expertise in %s and proven track record of success."`, keyword)
	case SectionExperience:
		return fmt.Sprintf(`Add bullet point: "Leveraged %s to drive measurable results and improve team efficiency."`, keyword)
	case SectionSkills:
		return fmt.Sprintf("Add skill: %s", keyword)
	default:
		return fmt.Sprintf("Consider mentioning %s in your %s section.", keyword, section)
	}
}
