package matching

import (
	"fmt"
	"strings"
)

// summarize builds the deterministic natural-language match summary from the
// score band and the top matching skills.
func summarize(name string, score float64, matchingSkills []string) string {
	if name == "" {
		name = "This candidate"
	}
	band := scoreBand(score)

	top := matchingSkills
	if len(top) > 3 {
		top = top[:3]
	}
	if len(top) == 0 {
		return fmt.Sprintf("%s is a %s (score %.0f).", name, band, score)
	}
	return fmt.Sprintf("%s is a %s (score %.0f), matching %s.", name, band, score, joinSkills(top))
}

func scoreBand(score float64) string {
	switch {
	case score >= 80:
		return "excellent match"
	case score >= 60:
		return "strong match"
	case score >= 40:
		return "moderate match"
	default:
		return "partial match"
	}
}

func joinSkills(skills []string) string {
	switch len(skills) {
	case 1:
		return skills[0]
	case 2:
		return skills[0] + " and " + skills[1]
	default:
		return strings.Join(skills[:len(skills)-1], ", ") + " and " + skills[len(skills)-1]
	}
}
