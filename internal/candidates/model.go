package candidates

import (
	"sort"
	"strings"
	"time"

	"skillmatch-backend/internal/textnorm"
)

// Upsert actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionSkipped = "skipped"
)

// Skill is one entry of a candidate's skill set.
type Skill struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Proficiency int    `json:"proficiency"`
	Years       int    `json:"years"`
}

// Candidate represents an employee or external candidate profile.
type Candidate struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	Location        string    `json:"location,omitempty"`
	Department      string    `json:"department,omitempty"`
	Level           string    `json:"level,omitempty"`
	Bio             string    `json:"bio,omitempty"`
	CurrentProject  string    `json:"currentProject,omitempty"`
	YearsExperience int       `json:"yearsExperience,omitempty"`
	Skills          []Skill   `json:"skills"`
	ResumeURL       string    `json:"resumeUrl,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Outcome reports the result of resolving and upserting an extraction.
type Outcome struct {
	CandidateID     string   `json:"candidateId"`
	Action          string   `json:"action"`
	ChangesDetected bool     `json:"changesDetected"`
	ChangeSummary   []string `json:"changeSummary"`
}

// SkillNames returns the candidate's skill names sorted ascending.
func (c Candidate) SkillNames() []string {
	names := make([]string, 0, len(c.Skills))
	for _, s := range c.Skills {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}

// EmailKey is the identity key used for resolution: the e-mail lowercased
// and trimmed. Empty when the candidate has no e-mail.
func EmailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NameKey is the fallback identity key: the name folded and
// whitespace-collapsed.
func NameKey(name string) string {
	return strings.Join(strings.Fields(textnorm.Fold(name)), " ")
}
