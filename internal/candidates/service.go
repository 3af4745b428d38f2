package candidates

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"skillmatch-backend/internal/extract"
	"skillmatch-backend/internal/shared/telemetry"
)

// Service is the candidate resolver and upsert engine. Concurrent upserts
// targeting the same identity key are serialized through a per-key lock; the
// repository's unique constraint backs the same guarantee across processes.
type Service struct {
	Repo  Repo
	locks keyedLocks
	pool  poolCache
}

// NewService constructs a Service over the given repository.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Upsert resolves an extraction to an existing candidate or creates a new
// one. Submitting the same extraction twice yields created exactly once and
// skipped thereafter.
func (s *Service) Upsert(ctx context.Context, res extract.Result, resumeURL string) (Outcome, error) {
	emailKey := EmailKey(res.Email)
	nameKey := NameKey(res.Name)

	if emailKey == "" && nameKey == "" && len(res.Skills) == 0 {
		return Outcome{
			Action:          ActionSkipped,
			ChangesDetected: false,
			ChangeSummary:   []string{"no identity fields or skills extracted"},
		}, nil
	}

	lockKey := emailKey
	if lockKey == "" {
		lockKey = "name:" + nameKey
	}
	unlock := s.locks.lock(lockKey)
	defer unlock()

	existing, found, err := s.resolve(ctx, emailKey, nameKey, res.Location)
	if err != nil {
		return Outcome{}, err
	}

	if !found {
		outcome, err := s.create(ctx, res, resumeURL)
		if !errors.Is(err, ErrDuplicateKey) {
			return outcome, err
		}
		// Lost a cross-process race on the email key; fall through to the
		// update path against the winner's record.
		existing, err = s.Repo.GetByEmailKey(ctx, emailKey)
		if err != nil {
			return Outcome{}, err
		}
	}

	changes := diff(existing, res)
	if len(changes) == 0 {
		return Outcome{
			CandidateID:     existing.ID,
			Action:          ActionSkipped,
			ChangesDetected: false,
			ChangeSummary:   []string{},
		}, nil
	}

	merged := merge(existing, res, resumeURL)
	merged.UpdatedAt = time.Now().UTC()
	if err := s.Repo.Update(ctx, merged); err != nil {
		return Outcome{}, err
	}
	s.pool.invalidate()

	return Outcome{
		CandidateID:     merged.ID,
		Action:          ActionUpdated,
		ChangesDetected: true,
		ChangeSummary:   changes,
	}, nil
}

// Get returns a candidate by ID.
func (s *Service) Get(ctx context.Context, id string) (Candidate, error) {
	return s.Repo.GetByID(ctx, id)
}

// Pool returns the candidate pool for matching. The cached copy is
// invalidated on any candidate write.
func (s *Service) Pool(ctx context.Context) ([]Candidate, error) {
	if cached, ok := s.pool.get(); ok {
		return cached, nil
	}
	list, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	s.pool.set(list)
	return list, nil
}

// resolve looks up an existing candidate: normalized e-mail first, then
// exact folded-name match with optional location preference. Ambiguity
// resolves to the most recently updated record.
func (s *Service) resolve(ctx context.Context, emailKey, nameKey, location string) (Candidate, bool, error) {
	if emailKey != "" {
		candidate, err := s.Repo.GetByEmailKey(ctx, emailKey)
		if err == nil {
			return candidate, true, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Candidate{}, false, err
		}
	}
	if nameKey == "" {
		return Candidate{}, false, nil
	}

	matches, err := s.Repo.ListByNameKey(ctx, nameKey)
	if err != nil {
		return Candidate{}, false, err
	}
	if len(matches) == 0 {
		return Candidate{}, false, nil
	}
	if location != "" {
		located := matches[:0:0]
		for _, m := range matches {
			if locationMatches(location, m.Location) {
				located = append(located, m)
			}
		}
		if len(located) > 0 {
			matches = located
		}
	}
	if len(matches) > 1 {
		sort.Slice(matches, func(i, j int) bool {
			return matches[i].UpdatedAt.After(matches[j].UpdatedAt)
		})
		telemetry.Info("candidate.resolve", map[string]any{
			"name_key":       nameKey,
			"matches":        len(matches),
			"chosen_id":      matches[0].ID,
			"low_confidence": true,
		})
	}
	return matches[0], true, nil
}

func (s *Service) create(ctx context.Context, res extract.Result, resumeURL string) (Outcome, error) {
	now := time.Now().UTC()
	candidate := Candidate{
		ID:              uuid.NewString(),
		Name:            res.Name,
		Email:           strings.TrimSpace(res.Email),
		Phone:           res.Phone,
		Location:        res.Location,
		Level:           res.Seniority,
		YearsExperience: res.YearsExperience,
		Skills:          toCandidateSkills(res.Skills),
		ResumeURL:       resumeURL,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Repo.Create(ctx, candidate); err != nil {
		return Outcome{}, err
	}
	s.pool.invalidate()

	summary := make([]string, 0, len(candidate.Skills)+1)
	summary = append(summary, fmt.Sprintf("new candidate with %d skills", len(candidate.Skills)))
	return Outcome{
		CandidateID:     candidate.ID,
		Action:          ActionCreated,
		ChangesDetected: true,
		ChangeSummary:   summary,
	}, nil
}

// diff compares scalar fields and the skill-name set. Only non-empty
// extracted values count against scalars. Skill-set changes are additions;
// merge unions skills, so a record never loses a skill and re-submitting
// the same extraction stays idempotent. Proficiency alone never triggers a
// change; a higher explicit per-skill years figure does.
func diff(existing Candidate, res extract.Result) []string {
	changes := []string{}

	scalar := func(field, old, new string) {
		if new != "" && !strings.EqualFold(strings.TrimSpace(old), strings.TrimSpace(new)) {
			changes = append(changes, fmt.Sprintf("%s: %q -> %q", field, old, new))
		}
	}
	scalar("location", existing.Location, res.Location)
	scalar("level", existing.Level, res.Seniority)
	scalar("phone", existing.Phone, res.Phone)

	if res.YearsExperience > existing.YearsExperience {
		changes = append(changes, fmt.Sprintf("years_experience: %d -> %d", existing.YearsExperience, res.YearsExperience))
	}

	have := make(map[string]Skill, len(existing.Skills))
	for _, s := range existing.Skills {
		have[s.Name] = s
	}
	for _, s := range res.Skills {
		prev, ok := have[s.Name]
		if !ok {
			changes = append(changes, fmt.Sprintf("skill added: %s", s.Name))
			continue
		}
		if s.Years > prev.Years {
			changes = append(changes, fmt.Sprintf("skill %s: years %d -> %d", s.Name, prev.Years, s.Years))
		}
	}
	return changes
}

// merge applies an extraction onto an existing record: scalars are
// overwritten by newer non-empty values, skills are unioned with
// proficiency/years merged upward.
func merge(existing Candidate, res extract.Result, resumeURL string) Candidate {
	out := existing
	if res.Location != "" {
		out.Location = res.Location
	}
	if res.Seniority != "" {
		out.Level = res.Seniority
	}
	if res.Phone != "" {
		out.Phone = res.Phone
	}
	if res.Email != "" {
		out.Email = strings.TrimSpace(res.Email)
	}
	if res.Name != "" && out.Name == "" {
		out.Name = res.Name
	}
	if res.YearsExperience > out.YearsExperience {
		out.YearsExperience = res.YearsExperience
	}
	if resumeURL != "" {
		out.ResumeURL = resumeURL
	}

	index := make(map[string]int, len(out.Skills))
	merged := make([]Skill, len(out.Skills))
	copy(merged, out.Skills)
	for i, s := range merged {
		index[s.Name] = i
	}
	for _, s := range toCandidateSkills(res.Skills) {
		if i, ok := index[s.Name]; ok {
			if s.Proficiency > merged[i].Proficiency {
				merged[i].Proficiency = s.Proficiency
			}
			if s.Years > merged[i].Years {
				merged[i].Years = s.Years
			}
			continue
		}
		index[s.Name] = len(merged)
		merged = append(merged, s)
	}
	out.Skills = merged
	return out
}

func toCandidateSkills(skills []extract.Skill) []Skill {
	out := make([]Skill, 0, len(skills))
	for _, s := range skills {
		out = append(out, Skill{
			Name:        s.Name,
			Category:    s.Category,
			Proficiency: s.Proficiency,
			Years:       s.Years,
		})
	}
	return out
}

func locationMatches(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedLocks) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}

type poolCache struct {
	mu    sync.RWMutex
	valid bool
	list  []Candidate
}

func (p *poolCache) get() ([]Candidate, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.valid {
		return nil, false
	}
	out := make([]Candidate, len(p.list))
	copy(out, p.list)
	return out, true
}

func (p *poolCache) set(list []Candidate) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.valid = true
	p.list = make([]Candidate, len(list))
	copy(p.list, list)
}

func (p *poolCache) invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.valid = false
	p.list = nil
}
