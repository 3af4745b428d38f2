package extract

import (
	"regexp"
	"strconv"
	"strings"

	"skillmatch-backend/internal/textnorm"
)

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRe = regexp.MustCompile(`\+?\d[\d\s().\-]{7,}\d`)
	// Matches folded text, so "años" arrives as "anos".
	yearsRe    = regexp.MustCompile(`(\d{1,2})\s*\+?\s*(?:years?|anos?)`)
	nameLine   = regexp.MustCompile(`^(?i)(?:name|nombre)\s*[:\-]\s*(.+)$`)
	locLine    = regexp.MustCompile(`^(?i)(?:location|ubicacion|ciudad|city)\s*[:\-]\s*(.+)$`)
	basedInRe  = regexp.MustCompile(`(?i)(?:based in|vivo en|resido en)[ \t]+([\p{L}][\p{L} \t,.]{1,40})`)
	experience = regexp.MustCompile(`experienc|experiencia`)
)

const yearsContextWindow = 60

func findEmail(text string) string {
	return emailRe.FindString(text)
}

func findPhone(text string) string {
	for _, m := range phoneRe.FindAllString(text, -1) {
		n := 0
		for _, r := range m {
			if r >= '0' && r <= '9' {
				n++
			}
		}
		if n >= 8 && n <= 15 {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

// findYears extracts years of experience: a digit run followed by
// "years"/"años" with "experience"/"experiencia" nearby.
func findYears(text string) int {
	folded := textnorm.Fold(text)
	for _, loc := range yearsRe.FindAllStringSubmatchIndex(folded, -1) {
		start, end := loc[0], loc[1]
		lo := start - yearsContextWindow
		if lo < 0 {
			lo = 0
		}
		hi := end + yearsContextWindow
		if hi > len(folded) {
			hi = len(folded)
		}
		if !experience.MatchString(folded[lo:hi]) {
			continue
		}
		years, err := strconv.Atoi(folded[loc[2]:loc[3]])
		if err != nil || years > 60 {
			continue
		}
		return years
	}
	return 0
}

func findName(text string) string {
	lines := strings.Split(text, "\n")
	for _, line := range lines {
		if m := nameLine.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	// Fallback: a short leading line of capitalized words with no digits
	// usually is the person's name.
	if len(lines) > 0 {
		first := strings.TrimSpace(lines[0])
		if looksLikePersonName(first) {
			return first
		}
	}
	return ""
}

func looksLikePersonName(line string) bool {
	if len(line) == 0 || len(line) > 60 || strings.ContainsAny(line, "0123456789@:,") {
		return false
	}
	words := strings.Fields(line)
	if len(words) < 2 || len(words) > 4 {
		return false
	}
	for _, w := range words {
		r := []rune(w)[0]
		if !(r >= 'A' && r <= 'Z') && !strings.ContainsRune("ÁÉÍÓÚÑ", r) {
			return false
		}
	}
	return true
}

func findLocation(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if m := locLine.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	if m := basedInRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(strings.Trim(m[1], " .,"))
	}
	return ""
}

// Seniority keyword sets checked in rank order so "senior tech lead" reads
// as lead.
var seniorityKeywords = []struct {
	level string
	words []string
}{
	{SeniorityLead, []string{"lead", "tech lead", "principal", "lider tecnico", "staff engineer"}},
	{SenioritySenior, []string{"senior", "sr"}},
	{SeniorityMid, []string{"mid level", "mid-level", "semi senior", "semi-senior", "intermedio"}},
	{SeniorityJunior, []string{"junior", "jr"}},
	{SeniorityIntern, []string{"intern", "trainee", "becario", "practicante", "pasante"}},
}

func findSeniorityKeyword(foldedTokens []string) string {
	set := make(map[string]struct{}, len(foldedTokens))
	joined := " " + strings.ReplaceAll(strings.Join(foldedTokens, " "), "-", " ") + " "
	for _, t := range foldedTokens {
		set[t] = struct{}{}
	}
	for _, group := range seniorityKeywords {
		for _, w := range group.words {
			if strings.Contains(w, " ") || strings.Contains(w, "-") {
				if strings.Contains(joined, " "+strings.ReplaceAll(w, "-", " ")+" ") {
					return group.level
				}
				continue
			}
			if _, ok := set[w]; ok {
				return group.level
			}
		}
	}
	return ""
}

// seniorityFromYears is the fallback when no explicit keyword is present.
// Lead is only ever assigned from an explicit keyword.
func seniorityFromYears(years int) string {
	switch {
	case years >= 8:
		return SenioritySenior
	case years >= 4:
		return SeniorityMid
	case years >= 1:
		return SeniorityJunior
	default:
		return ""
	}
}
