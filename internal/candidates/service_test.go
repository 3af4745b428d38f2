package candidates

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"skillmatch-backend/internal/extract"
)

func extraction() extract.Result {
	return extract.Result{
		Name:            "Ana Ruiz",
		Email:           "ana.ruiz@example.com",
		Location:        "Madrid",
		Seniority:       "senior",
		YearsExperience: 8,
		Skills: []extract.Skill{
			{Name: "Python", Category: "programming_languages", Proficiency: 4},
			{Name: "Django", Category: "web_technologies", Proficiency: 3},
		},
	}
}

func TestUpsertCreateThenSkip(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	first, err := svc.Upsert(ctx, extraction(), "")
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if first.Action != ActionCreated {
		t.Fatalf("expected created, got %s", first.Action)
	}
	if !first.ChangesDetected {
		t.Fatalf("expected changes detected on create")
	}

	second, err := svc.Upsert(ctx, extraction(), "")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.Action != ActionSkipped {
		t.Fatalf("expected skipped on identical resubmission, got %s", second.Action)
	}
	if second.ChangesDetected {
		t.Fatalf("expected no changes on identical resubmission")
	}
	if second.CandidateID != first.CandidateID {
		t.Fatalf("expected same candidate, got %s vs %s", second.CandidateID, first.CandidateID)
	}
}

func TestUpsertDetectsNewSkillAndLocation(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	created, err := svc.Upsert(ctx, extraction(), "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated := extraction()
	updated.Location = "Barcelona"
	updated.Skills = append(updated.Skills, extract.Skill{Name: "Docker", Category: "cloud_devops", Proficiency: 3})

	outcome, err := svc.Upsert(ctx, updated, "")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if outcome.Action != ActionUpdated {
		t.Fatalf("expected updated, got %s", outcome.Action)
	}
	joined := strings.Join(outcome.ChangeSummary, "; ")
	if !strings.Contains(joined, "location") || !strings.Contains(joined, "Docker") {
		t.Fatalf("expected location and skill changes, got %q", joined)
	}

	candidate, err := svc.Get(ctx, created.CandidateID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if candidate.Location != "Barcelona" {
		t.Fatalf("expected merged location, got %q", candidate.Location)
	}
	if len(candidate.Skills) != 3 {
		t.Fatalf("expected union of 3 skills, got %d", len(candidate.Skills))
	}
}

func TestUpsertNeverRemovesSkills(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	created, err := svc.Upsert(ctx, extraction(), "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// A narrower resubmission mentioning only one known skill.
	narrower := extraction()
	narrower.Skills = narrower.Skills[:1]
	outcome, err := svc.Upsert(ctx, narrower, "")
	if err != nil {
		t.Fatalf("narrower upsert: %v", err)
	}
	if outcome.Action != ActionSkipped {
		t.Fatalf("expected skipped for subset resubmission, got %s", outcome.Action)
	}

	candidate, err := svc.Get(ctx, created.CandidateID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(candidate.Skills) != 2 {
		t.Fatalf("expected skills preserved, got %d", len(candidate.Skills))
	}
}

func TestUpsertSkipsWithoutIdentityOrSkills(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	outcome, err := svc.Upsert(context.Background(), extract.Result{}, "")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if outcome.Action != ActionSkipped {
		t.Fatalf("expected skipped, got %s", outcome.Action)
	}
	if outcome.CandidateID != "" {
		t.Fatalf("expected no candidate, got %s", outcome.CandidateID)
	}
}

func TestUpsertResolvesByNameWhenNoEmail(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	withEmail := extraction()
	created, err := svc.Upsert(ctx, withEmail, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	noEmail := extraction()
	noEmail.Email = ""
	noEmail.Name = "ANA  RUÍZ" // folded and collapsed to the same key
	outcome, err := svc.Upsert(ctx, noEmail, "")
	if err != nil {
		t.Fatalf("name upsert: %v", err)
	}
	if outcome.CandidateID != created.CandidateID {
		t.Fatalf("expected resolution to existing candidate, got %s vs %s", outcome.CandidateID, created.CandidateID)
	}
}

func TestUpsertAmbiguousNamePrefersLocationThenRecency(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	old := time.Now().UTC().Add(-time.Hour)
	recent := time.Now().UTC()

	seed := []Candidate{
		{ID: "c-1", Name: "Ana Ruiz", Location: "Lisbon", UpdatedAt: recent},
		{ID: "c-2", Name: "Ana Ruiz", Location: "Madrid", UpdatedAt: old},
	}
	for _, c := range seed {
		if err := repo.Create(ctx, c); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	svc := NewService(repo)

	res := extract.Result{
		Name:     "Ana Ruiz",
		Location: "Madrid",
		Skills:   []extract.Skill{{Name: "Go", Category: "programming_languages", Proficiency: 3}},
	}
	outcome, err := svc.Upsert(ctx, res, "")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if outcome.CandidateID != "c-2" {
		t.Fatalf("expected location-matching candidate c-2, got %s", outcome.CandidateID)
	}
}

func TestUpsertAmbiguousNameWithoutLocationPicksMostRecent(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	seed := []Candidate{
		{ID: "c-1", Name: "Ana Ruiz", Location: "Lisbon", UpdatedAt: time.Now().UTC()},
		{ID: "c-2", Name: "Ana Ruiz", Location: "Madrid", UpdatedAt: time.Now().UTC().Add(-time.Hour)},
	}
	for _, c := range seed {
		if err := repo.Create(ctx, c); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	svc := NewService(repo)

	res := extract.Result{
		Name:   "Ana Ruiz",
		Skills: []extract.Skill{{Name: "Rust", Category: "programming_languages", Proficiency: 3}},
	}
	outcome, err := svc.Upsert(ctx, res, "")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if outcome.CandidateID != "c-1" {
		t.Fatalf("expected most recently updated candidate c-1, got %s", outcome.CandidateID)
	}
}

func TestUpsertConcurrentSameEmailCreatesOnce(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	const n = 16
	actions := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcome, err := svc.Upsert(ctx, extraction(), "")
			if err != nil {
				t.Errorf("upsert %d: %v", i, err)
				return
			}
			actions[i] = outcome.Action
		}(i)
	}
	wg.Wait()

	created := 0
	for _, a := range actions {
		if a == ActionCreated {
			created++
		}
	}
	if created != 1 {
		t.Fatalf("expected exactly one created, got %d (%v)", created, actions)
	}

	pool, err := svc.Pool(ctx)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	if len(pool) != 1 {
		t.Fatalf("expected one candidate, got %d", len(pool))
	}
}

type countingRepo struct {
	Repo
	mu    sync.Mutex
	lists int
}

func (r *countingRepo) List(ctx context.Context) ([]Candidate, error) {
	r.mu.Lock()
	r.lists++
	r.mu.Unlock()
	return r.Repo.List(ctx)
}

func (r *countingRepo) listCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lists
}

func TestPoolCachedUntilWrite(t *testing.T) {
	repo := &countingRepo{Repo: NewMemoryRepo()}
	svc := NewService(repo)
	ctx := context.Background()

	if _, err := svc.Upsert(ctx, extraction(), ""); err != nil {
		t.Fatalf("seed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.Pool(ctx); err != nil {
			t.Fatalf("pool %d: %v", i, err)
		}
	}
	if got := repo.listCalls(); got != 1 {
		t.Fatalf("expected one repo list for cached reads, got %d", got)
	}

	other := extraction()
	other.Email = "ben@example.com"
	other.Name = "Ben Okafor"
	if _, err := svc.Upsert(ctx, other, ""); err != nil {
		t.Fatalf("write: %v", err)
	}

	pool, err := svc.Pool(ctx)
	if err != nil {
		t.Fatalf("pool after write: %v", err)
	}
	if len(pool) != 2 {
		t.Fatalf("expected refreshed pool of 2, got %d", len(pool))
	}
	if got := repo.listCalls(); got != 2 {
		t.Fatalf("expected cache invalidated by write, got %d list calls", got)
	}
}

func TestDiffReportsYearsUpgradeOnly(t *testing.T) {
	existing := Candidate{
		YearsExperience: 8,
		Skills:          []Skill{{Name: "Python", Proficiency: 3, Years: 5}},
	}

	res := extract.Result{
		YearsExperience: 3, // lower, must not count
		Skills:          []extract.Skill{{Name: "Python", Proficiency: 5, Years: 2}},
	}
	if changes := diff(existing, res); len(changes) != 0 {
		t.Fatalf("expected no changes, got %v", changes)
	}

	res.Skills[0].Years = 7
	changes := diff(existing, res)
	if len(changes) != 1 || !strings.Contains(changes[0], "years 5 -> 7") {
		t.Fatalf("expected per-skill years upgrade, got %v", changes)
	}
}

func TestMergeUnionsSkillsUpward(t *testing.T) {
	existing := Candidate{
		Name:   "Ana Ruiz",
		Skills: []Skill{{Name: "Python", Proficiency: 3, Years: 2}},
	}
	res := extract.Result{
		Skills: []extract.Skill{
			{Name: "Python", Proficiency: 5, Years: 1},
			{Name: "Go", Proficiency: 3},
		},
	}

	merged := merge(existing, res, "https://files/resume.pdf")
	if len(merged.Skills) != 2 {
		t.Fatalf("expected 2 skills, got %d", len(merged.Skills))
	}
	if merged.Skills[0].Proficiency != 5 {
		t.Fatalf("expected proficiency raised to 5, got %d", merged.Skills[0].Proficiency)
	}
	if merged.Skills[0].Years != 2 {
		t.Fatalf("expected years kept at 2, got %d", merged.Skills[0].Years)
	}
	if merged.ResumeURL != "https://files/resume.pdf" {
		t.Fatalf("expected resume URL recorded, got %q", merged.ResumeURL)
	}
}

func TestEmailAndNameKeys(t *testing.T) {
	if got := EmailKey("  Ana.Ruiz@Example.COM "); got != "ana.ruiz@example.com" {
		t.Fatalf("unexpected email key %q", got)
	}
	if got := NameKey("  Ana   RUÍZ "); got != "ana ruiz" {
		t.Fatalf("unexpected name key %q", got)
	}
}
