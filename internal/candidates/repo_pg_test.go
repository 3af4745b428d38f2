package candidates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestPGRepoCreateDerivesIdentityKeys(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()
	candidate := Candidate{
		ID:              "cand-1",
		Name:            "Ana Ruíz",
		Email:           "Ana.Ruiz@Example.com",
		Location:        "Madrid",
		Level:           "senior",
		YearsExperience: 8,
		Skills:          []Skill{{Name: "Python", Category: "programming_languages", Proficiency: 4}},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	mock.ExpectExec("INSERT INTO candidates").
		WithArgs(
			candidate.ID,
			candidate.Name,
			candidate.Email,
			"ana.ruiz@example.com", // email_key
			"ana ruiz",             // name_key
			candidate.Phone,
			candidate.Location,
			candidate.Department,
			candidate.Level,
			candidate.Bio,
			candidate.CurrentProject,
			candidate.YearsExperience,
			sqlmock.AnyArg(), // skills json
			candidate.ResumeURL,
			candidate.CreatedAt,
			candidate.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), candidate); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoCreateMapsUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectExec("INSERT INTO candidates").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err = repo.Create(context.Background(), Candidate{ID: "cand-1", Email: "a@b.com"})
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestPGRepoUpdateNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectExec("UPDATE candidates").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.Update(context.Background(), Candidate{ID: "missing"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoGetByEmailKeyScansSkills(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "name", "email", "phone", "location", "department", "level",
		"bio", "current_project", "years_experience", "skills", "resume_url",
		"created_at", "updated_at",
	}).AddRow(
		"cand-1", "Ana Ruiz", "ana@example.com", "", "Madrid", "", "senior",
		"", "", 8, []byte(`[{"name":"Python","category":"programming_languages","proficiency":4,"years":5}]`), "",
		now, now,
	)
	mock.ExpectQuery("FROM candidates WHERE email_key").
		WithArgs("ana@example.com").
		WillReturnRows(rows)

	candidate, err := repo.GetByEmailKey(context.Background(), "ana@example.com")
	if err != nil {
		t.Fatalf("GetByEmailKey: %v", err)
	}
	if candidate.ID != "cand-1" {
		t.Fatalf("unexpected ID %q", candidate.ID)
	}
	if len(candidate.Skills) != 1 || candidate.Skills[0].Name != "Python" || candidate.Skills[0].Years != 5 {
		t.Fatalf("unexpected skills %+v", candidate.Skills)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectQuery("FROM candidates WHERE id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoListEmptySkillsColumn(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "name", "email", "phone", "location", "department", "level",
		"bio", "current_project", "years_experience", "skills", "resume_url",
		"created_at", "updated_at",
	}).AddRow(
		"cand-1", "Ana Ruiz", "", "", "", "", "", "", "", 0, []byte(nil), "",
		now, now,
	)
	mock.ExpectQuery("FROM candidates ORDER BY id").
		WillReturnRows(rows)

	list, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(list))
	}
	if list[0].Skills == nil || len(list[0].Skills) != 0 {
		t.Fatalf("expected empty non-nil skills, got %+v", list[0].Skills)
	}
}
