package extract

// Seniority levels, ordered.
const (
	SeniorityIntern = "intern"
	SeniorityJunior = "junior"
	SeniorityMid    = "mid"
	SenioritySenior = "senior"
	SeniorityLead   = "lead"
)

// Skill is one recognized skill occurrence.
type Skill struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Proficiency int    `json:"proficiency"`
	Years       int    `json:"years,omitempty"`
}

// Result is the structured output of extraction.
type Result struct {
	Name            string  `json:"name,omitempty"`
	Email           string  `json:"email,omitempty"`
	Phone           string  `json:"phone,omitempty"`
	Location        string  `json:"location,omitempty"`
	Skills          []Skill `json:"skills"`
	YearsExperience int     `json:"yearsExperience,omitempty"`
	Seniority       string  `json:"seniority,omitempty"`
	Language        string  `json:"language"`
	Confidence      float64 `json:"confidence"`
	Method          string  `json:"method"`
}

// SkillNames returns canonical skill names in extraction order.
func (r Result) SkillNames() []string {
	names := make([]string, 0, len(r.Skills))
	for _, s := range r.Skills {
		names = append(names, s.Name)
	}
	return names
}

// ByCategory groups skill names per category, preserving category order.
func (r Result) ByCategory() map[string][]string {
	out := make(map[string][]string, len(Categories))
	for _, c := range Categories {
		out[c] = []string{}
	}
	for _, s := range r.Skills {
		out[s.Category] = append(out[s.Category], s.Name)
	}
	return out
}
