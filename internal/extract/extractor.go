package extract

import (
	"strconv"
	"strings"

	"skillmatch-backend/internal/textnorm"
)

const (
	// MethodDictionary tags results produced by taxonomy matching.
	MethodDictionary = "dictionary"

	// expectedCoverage is the distinct-skill count a resume-length document
	// is expected to reach; coverage saturates there.
	defaultExpectedCoverage = 12
	defaultMethodWeight     = 1.0

	coverageWeight = 0.6
	methodWeight   = 0.4

	defaultProficiency = 3
)

// Extractor converts normalized text into a structured extraction result.
// It is pure computation and safe for concurrent use.
type Extractor struct {
	Taxonomy         *Taxonomy
	ExpectedCoverage int
	MethodWeight     float64
}

// NewExtractor constructs an Extractor over the given taxonomy.
func NewExtractor(taxonomy *Taxonomy) *Extractor {
	return &Extractor{
		Taxonomy:         taxonomy,
		ExpectedCoverage: defaultExpectedCoverage,
		MethodWeight:     defaultMethodWeight,
	}
}

// Extract never fails: text without any recognizable skills yields a result
// with empty skill lists and confidence 0.
func (e *Extractor) Extract(text, language string) Result {
	result := Result{
		Language: language,
		Method:   MethodDictionary,
		Skills:   []Skill{},
	}
	if strings.TrimSpace(text) == "" {
		return result
	}

	tokens := tokenize(text)
	folded := make([]string, len(tokens))
	for i, t := range tokens {
		folded[i] = textnorm.Fold(t)
	}

	result.Skills = e.matchSkills(folded)
	result.Email = findEmail(text)
	result.Phone = findPhone(text)
	result.Name = findName(text)
	result.Location = findLocation(text)
	result.YearsExperience = findYears(text)

	result.Seniority = findSeniorityKeyword(folded)
	if result.Seniority == "" {
		result.Seniority = seniorityFromYears(result.YearsExperience)
	}

	result.Confidence = e.confidence(len(result.Skills))
	return result
}

// matchSkills scans folded tokens with greedy longest-phrase matching
// against the taxonomy. Category markers are consumed without producing a
// skill. Distinct canonical names are kept in first-seen order.
func (e *Extractor) matchSkills(folded []string) []Skill {
	maxLen := e.Taxonomy.MaxPhraseLen()
	seen := make(map[string]int) // canonical → index into out
	out := make([]Skill, 0, 16)

	for i := 0; i < len(folded); {
		matched := 0
		for n := maxLen; n >= 1; n-- {
			if i+n > len(folded) {
				continue
			}
			phrase := strings.Join(folded[i:i+n], " ")
			if e.Taxonomy.IsMarker(phrase) {
				matched = n
				break
			}
			name, category, ok := e.Taxonomy.Lookup(phrase)
			if !ok {
				continue
			}
			prof := defaultProficiency
			next := i + n
			if next < len(folded) {
				if p, ok := proficiencyModifier(folded[next]); ok {
					prof = p
					next++
				}
			}
			years := skillYears(folded, next)
			if idx, dup := seen[name]; dup {
				if prof > out[idx].Proficiency {
					out[idx].Proficiency = prof
				}
				if years > out[idx].Years {
					out[idx].Years = years
				}
			} else {
				seen[name] = len(out)
				out = append(out, Skill{Name: name, Category: category, Proficiency: prof, Years: years})
			}
			matched = n
			break
		}
		if matched == 0 {
			matched = 1
		}
		i += matched
	}
	return out
}

// confidence combines taxonomy coverage with the extraction method weight.
// Zero matches means zero confidence regardless of method, which keeps the
// score monotonic in the number of distinct skills found.
func (e *Extractor) confidence(distinctSkills int) float64 {
	if distinctSkills == 0 {
		return 0
	}
	expected := e.ExpectedCoverage
	if expected <= 0 {
		expected = defaultExpectedCoverage
	}
	coverage := float64(distinctSkills) / float64(expected)
	if coverage > 1 {
		coverage = 1
	}
	weight := e.MethodWeight
	if weight < 0 {
		weight = 0
	} else if weight > 1 {
		weight = 1
	}
	score := coverageWeight*coverage + methodWeight*weight
	if score > 1 {
		score = 1
	}
	return score
}

func proficiencyModifier(folded string) (int, bool) {
	switch folded {
	case "experto", "expert":
		return 5, true
	case "avanzado", "avanzada", "advanced":
		return 4, true
	case "intermedio", "intermedia", "intermediate":
		return 3, true
	case "basico", "basica", "basic", "beginner", "principiante":
		return 2, true
	default:
		return 0, false
	}
}

// skillYears reads a per-skill years annotation immediately after the skill,
// e.g. "Python 5 años" or "React (3 years)".
func skillYears(folded []string, at int) int {
	if at+1 >= len(folded) {
		return 0
	}
	window := strings.Join(folded[at:at+2], " ")
	m := yearsRe.FindStringSubmatch(window)
	if m == nil || !strings.HasPrefix(window, m[0]) {
		return 0
	}
	years, err := strconv.Atoi(m[1])
	if err != nil || years > 60 {
		return 0
	}
	return years
}

// tokenize splits on whitespace and trims surrounding punctuation while
// keeping characters that are part of skill names (c#, c++, node.js, ci/cd).
func tokenize(text string) []string {
	fields := strings.Fields(text)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		t := strings.Trim(f, ",;:()[]{}\"'¡!¿?·|")
		t = strings.TrimRight(t, ".")
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
