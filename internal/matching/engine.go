package matching

import (
	"math"
	"sort"
	"strings"
	"time"

	"skillmatch-backend/internal/candidates"
	"skillmatch-backend/internal/textnorm"
)

// Requirement describes what a candidate pool is evaluated against.
type Requirement struct {
	Ref             string   `json:"ref,omitempty"`
	RequiredSkills  []string `json:"requiredSkills"`
	PreferredSkills []string `json:"preferredSkills"`
	Seniority       string   `json:"seniority,omitempty"`
	Location        string   `json:"location,omitempty"`
}

// MatchResult is one scored candidate. Results are recomputed per
// invocation, never mutated.
type MatchResult struct {
	RequirementRef string    `json:"requirementRef,omitempty"`
	CandidateID    string    `json:"candidateId"`
	CandidateName  string    `json:"candidateName"`
	Score          float64   `json:"score"`
	MatchingSkills []string  `json:"matchingSkills"`
	Summary        string    `json:"summary"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Weights are the tunable scoring constants.
type Weights struct {
	Required          float64
	Preferred         float64
	SeniorityExact    float64
	SeniorityAdjacent float64
	Location          float64
}

// DefaultWeights is the default scoring configuration.
var DefaultWeights = Weights{
	Required:          60,
	Preferred:         25,
	SeniorityExact:    10,
	SeniorityAdjacent: 5,
	Location:          5,
}

// Engine computes ranked matches. It is a pure function over its inputs and
// safe to invoke in parallel.
type Engine struct {
	Weights Weights
}

// NewEngine constructs an Engine with default weights.
func NewEngine() *Engine {
	return &Engine{Weights: DefaultWeights}
}

// Match scores the pool against the requirement and returns results ordered
// by score descending, ties broken by candidate ID ascending. Candidates
// with zero overlap on a non-empty required set are excluded. A requirement
// naming no skills at all matches nothing.
func (e *Engine) Match(req Requirement, pool []candidates.Candidate) []MatchResult {
	required := foldSet(req.RequiredSkills)
	preferred := foldSet(req.PreferredSkills)
	if len(required) == 0 && len(preferred) == 0 {
		return []MatchResult{}
	}

	now := time.Now().UTC()
	out := make([]MatchResult, 0, len(pool))
	for _, c := range pool {
		score, matching, ok := e.score(req, required, preferred, c)
		if !ok {
			continue
		}
		out = append(out, MatchResult{
			RequirementRef: req.Ref,
			CandidateID:    c.ID,
			CandidateName:  c.Name,
			Score:          score,
			MatchingSkills: matching,
			Summary:        summarize(c.Name, score, matching),
			CreatedAt:      now,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].CandidateID < out[j].CandidateID
	})
	return out
}

// score returns the clamped score and the matching skill names, or ok=false
// when the required-skill floor rule excludes the candidate.
func (e *Engine) score(req Requirement, required, preferred map[string]struct{}, c candidates.Candidate) (float64, []string, bool) {
	skills := make(map[string]string, len(c.Skills)) // folded → canonical
	for _, s := range c.Skills {
		skills[textnorm.Fold(s.Name)] = s.Name
	}

	requiredHits := overlap(required, skills)
	if len(required) > 0 && requiredHits == 0 {
		return 0, nil, false
	}

	var score float64
	if len(required) > 0 {
		score += e.Weights.Required * float64(requiredHits) / float64(len(required))
	}
	if len(preferred) > 0 {
		score += e.Weights.Preferred * float64(overlap(preferred, skills)) / float64(len(preferred))
	}
	score += e.seniorityBonus(req.Seniority, c.Level)
	score += e.locationBonus(req.Location, c.Location)

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	score = math.Round(score*100) / 100

	matching := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for folded, canonical := range skills {
		_, inRequired := required[folded]
		_, inPreferred := preferred[folded]
		if !inRequired && !inPreferred {
			continue
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		matching = append(matching, canonical)
	}
	sort.Strings(matching)
	return score, matching, true
}

func (e *Engine) seniorityBonus(wanted, actual string) float64 {
	if strings.TrimSpace(wanted) == "" {
		return e.Weights.SeniorityExact
	}
	w, okW := seniorityRank(wanted)
	a, okA := seniorityRank(actual)
	if !okW || !okA {
		return 0
	}
	switch d := w - a; {
	case d == 0:
		return e.Weights.SeniorityExact
	case d == 1 || d == -1:
		return e.Weights.SeniorityAdjacent
	default:
		return 0
	}
}

func (e *Engine) locationBonus(wanted, actual string) float64 {
	wanted = strings.ToLower(strings.TrimSpace(wanted))
	if wanted == "" {
		return e.Weights.Location
	}
	actual = strings.ToLower(strings.TrimSpace(actual))
	if actual == "" {
		return 0
	}
	if strings.Contains(actual, wanted) || strings.Contains(wanted, actual) {
		return e.Weights.Location
	}
	return 0
}

func seniorityRank(level string) (int, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "intern":
		return 0, true
	case "junior":
		return 1, true
	case "mid":
		return 2, true
	case "senior":
		return 3, true
	case "lead":
		return 4, true
	default:
		return 0, false
	}
}

func foldSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		key := textnorm.Fold(strings.TrimSpace(n))
		if key != "" {
			set[key] = struct{}{}
		}
	}
	return set
}

func overlap(want map[string]struct{}, skills map[string]string) int {
	n := 0
	for folded := range want {
		if _, ok := skills[folded]; ok {
			n++
		}
	}
	return n
}
