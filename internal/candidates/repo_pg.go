package candidates

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const candidateColumns = `
id, name, email, phone, location, department, level, bio, current_project,
years_experience, skills, resume_url, created_at, updated_at`

// Create inserts a new candidate. The partial unique index on email_key maps
// concurrent duplicate inserts to ErrDuplicateKey.
func (r *PGRepo) Create(ctx context.Context, candidate Candidate) error {
	const query = `
INSERT INTO candidates (
	id, name, email, email_key, name_key, phone, location, department, level,
	bio, current_project, years_experience, skills, resume_url, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	skills, err := json.Marshal(candidate.Skills)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		candidate.ID,
		candidate.Name,
		candidate.Email,
		EmailKey(candidate.Email),
		NameKey(candidate.Name),
		candidate.Phone,
		candidate.Location,
		candidate.Department,
		candidate.Level,
		candidate.Bio,
		candidate.CurrentProject,
		candidate.YearsExperience,
		skills,
		candidate.ResumeURL,
		candidate.CreatedAt,
		candidate.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateKey
	}
	return err
}

// Update replaces the mutable fields of an existing candidate.
func (r *PGRepo) Update(ctx context.Context, candidate Candidate) error {
	const query = `
UPDATE candidates
SET name = $2, email = $3, email_key = $4, name_key = $5, phone = $6,
    location = $7, department = $8, level = $9, bio = $10,
    current_project = $11, years_experience = $12, skills = $13,
    resume_url = $14, updated_at = $15
WHERE id = $1`
	skills, err := json.Marshal(candidate.Skills)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query,
		candidate.ID,
		candidate.Name,
		candidate.Email,
		EmailKey(candidate.Email),
		NameKey(candidate.Name),
		candidate.Phone,
		candidate.Location,
		candidate.Department,
		candidate.Level,
		candidate.Bio,
		candidate.CurrentProject,
		candidate.YearsExperience,
		skills,
		candidate.ResumeURL,
		candidate.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID returns a candidate by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Candidate, error) {
	const query = `SELECT ` + candidateColumns + ` FROM candidates WHERE id = $1 LIMIT 1`
	return scanCandidate(r.DB.QueryRowContext(ctx, query, id))
}

// GetByEmailKey resolves a candidate by normalized e-mail.
func (r *PGRepo) GetByEmailKey(ctx context.Context, emailKey string) (Candidate, error) {
	const query = `SELECT ` + candidateColumns + ` FROM candidates WHERE email_key = $1 LIMIT 1`
	return scanCandidate(r.DB.QueryRowContext(ctx, query, emailKey))
}

// ListByNameKey returns candidates with a matching folded name.
func (r *PGRepo) ListByNameKey(ctx context.Context, nameKey string) ([]Candidate, error) {
	const query = `SELECT ` + candidateColumns + ` FROM candidates WHERE name_key = $1 ORDER BY id`
	return r.queryList(ctx, query, nameKey)
}

// List returns the full candidate pool ordered by ID.
func (r *PGRepo) List(ctx context.Context) ([]Candidate, error) {
	const query = `SELECT ` + candidateColumns + ` FROM candidates ORDER BY id`
	return r.queryList(ctx, query)
}

func (r *PGRepo) queryList(ctx context.Context, query string, args ...any) ([]Candidate, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Candidate{}
	for rows.Next() {
		candidate, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, candidate)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (Candidate, error) {
	var c Candidate
	var skills []byte
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.Location,
		&c.Department,
		&c.Level,
		&c.Bio,
		&c.CurrentProject,
		&c.YearsExperience,
		&skills,
		&c.ResumeURL,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Candidate{}, ErrNotFound
	}
	if err != nil {
		return Candidate{}, err
	}
	if len(skills) > 0 {
		if err := json.Unmarshal(skills, &c.Skills); err != nil {
			return Candidate{}, err
		}
	}
	if c.Skills == nil {
		c.Skills = []Skill{}
	}
	return c, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
