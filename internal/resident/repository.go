package resident

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 3 * time.Second

// errShortIDTaken signals a collision on the generated public identifier;
// the service regenerates and retries instead of surfacing it.
var errShortIDTaken = errors.New("short id already taken")

const residentColumns = `key, public_id, name, age, gender, employment_status, civil_status,
		address, contact, household_number, source, created_at, updated_at`

// Repository provides access to resident records.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Insert persists a new record. The unique indexes are the concurrency
// backstop: a dedup-triple violation maps to ErrDuplicate and a public_id
// violation to errShortIDTaken.
func (r *Repository) Insert(ctx context.Context, res Resident) (Resident, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO residents (key, public_id, name, age, gender, employment_status,
			civil_status, address, contact, household_number, source)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at, updated_at
	`, res.Key, res.PublicID, res.Name, res.Age, res.Gender, res.EmploymentStatus,
		res.CivilStatus, res.Address, res.Contact, res.HouseholdNumber, res.Source).
		Scan(&res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return Resident{}, mapUniqueViolation(err)
	}
	return res, nil
}

// Update replaces the mutable fields of the record identified by key.
func (r *Repository) Update(ctx context.Context, key uuid.UUID, in Input) (Resident, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var res Resident
	err := r.db.QueryRow(ctx, `
		UPDATE residents
		SET name=$1, age=$2, gender=$3, employment_status=$4, civil_status=$5,
			address=$6, contact=$7, household_number=$8, updated_at=now()
		WHERE key=$9
		RETURNING `+residentColumns+`
	`, in.Name, in.Age, in.Gender, in.EmploymentStatus, in.CivilStatus,
		in.Address, in.Contact, in.HouseholdNumber, key).
		Scan(scanTargets(&res)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return Resident{}, ErrNotFound
	}
	if err != nil {
		return Resident{}, mapUniqueViolation(err)
	}
	return res, nil
}

// Delete removes the record identified by key.
func (r *Repository) Delete(ctx context.Context, key uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM residents WHERE key=$1`, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all records, optionally filtered by a case-insensitive
// substring match on name, address or household number.
func (r *Repository) List(ctx context.Context, query string) ([]Resident, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT `+residentColumns+`
		FROM residents
		WHERE $1 = ''
		   OR name ILIKE '%' || $1 || '%'
		   OR address ILIKE '%' || $1 || '%'
		   OR household_number ILIKE '%' || $1 || '%'
		ORDER BY created_at
	`, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var residents []Resident
	for rows.Next() {
		var res Resident
		if err := rows.Scan(scanTargets(&res)...); err != nil {
			return nil, err
		}
		residents = append(residents, res)
	}
	return residents, rows.Err()
}

// GetByKey fetches a record by its internal identifier.
func (r *Repository) GetByKey(ctx context.Context, key uuid.UUID) (Resident, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var res Resident
	err := r.db.QueryRow(ctx, `
		SELECT `+residentColumns+`
		FROM residents WHERE key=$1
	`, key).Scan(scanTargets(&res)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return Resident{}, ErrNotFound
	}
	return res, err
}

// GetByPublicID fetches a record by the short identifier embedded in QR codes.
func (r *Repository) GetByPublicID(ctx context.Context, publicID string) (Resident, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var res Resident
	err := r.db.QueryRow(ctx, `
		SELECT `+residentColumns+`
		FROM residents WHERE public_id=$1
	`, publicID).Scan(scanTargets(&res)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return Resident{}, ErrNotFound
	}
	return res, err
}

// TripleExists reports whether the (name, address, contact) triple is already
// registered, optionally ignoring one record (used on edits).
func (r *Repository) TripleExists(ctx context.Context, name, address, contact string, exclude uuid.UUID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM residents
			WHERE name=$1 AND address=$2 AND contact=$3 AND key <> $4
		)
	`, name, address, contact, exclude).Scan(&exists)
	return exists, err
}

// Insights aggregates the demographic counters shown on the dashboard.
func (r *Repository) Insights(ctx context.Context) (Insights, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var ins Insights
	err := r.db.QueryRow(ctx, `
		SELECT count(*),
			count(*) FILTER (WHERE gender = 'Male'),
			count(*) FILTER (WHERE gender = 'Female'),
			count(*) FILTER (WHERE employment_status = 'Employed'),
			count(*) FILTER (WHERE employment_status = 'Unemployed'),
			count(*) FILTER (WHERE employment_status = 'Retired'),
			count(*) FILTER (WHERE civil_status = 'Single'),
			count(*) FILTER (WHERE civil_status = 'Married'),
			count(*) FILTER (WHERE civil_status = 'Divorced'),
			count(*) FILTER (WHERE civil_status = 'Widowed'),
			count(*) FILTER (WHERE age < 18),
			count(*) FILTER (WHERE age >= 18 AND age < 60),
			count(*) FILTER (WHERE age >= 60),
			count(*) FILTER (WHERE source = 'manual'),
			count(*) FILTER (WHERE source = 'csv-upload')
		FROM residents
	`).Scan(&ins.Total,
		&ins.Gender.Male, &ins.Gender.Female,
		&ins.Employment.Employed, &ins.Employment.Unemployed, &ins.Employment.Retired,
		&ins.Civil.Single, &ins.Civil.Married, &ins.Civil.Divorced, &ins.Civil.Widowed,
		&ins.AgeBrackets.Minors, &ins.AgeBrackets.Adults, &ins.AgeBrackets.Seniors,
		&ins.Source.Manual, &ins.Source.CSVUpload)
	return ins, err
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if pgErr.ConstraintName == "residents_public_id_key" {
			return errShortIDTaken
		}
		return ErrDuplicate
	}
	return err
}

func scanTargets(res *Resident) []any {
	return []any{
		&res.Key, &res.PublicID, &res.Name, &res.Age, &res.Gender,
		&res.EmploymentStatus, &res.CivilStatus, &res.Address, &res.Contact,
		&res.HouseholdNumber, &res.Source, &res.CreatedAt, &res.UpdatedAt,
	}
}
