package resident

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

// memStore is an in-memory Store used across the package tests.
type memStore struct {
	records    []Resident
	forcedErrs []error // popped by Insert before touching records
	insights   Insights
}

func (m *memStore) Insert(ctx context.Context, res Resident) (Resident, error) {
	if len(m.forcedErrs) > 0 {
		err := m.forcedErrs[0]
		m.forcedErrs = m.forcedErrs[1:]
		if err != nil {
			return Resident{}, err
		}
	}
	for _, existing := range m.records {
		if existing.PublicID == res.PublicID {
			return Resident{}, errShortIDTaken
		}
		if existing.Name == res.Name && existing.Address == res.Address && existing.Contact == res.Contact {
			return Resident{}, ErrDuplicate
		}
	}
	m.records = append(m.records, res)
	return res, nil
}

func (m *memStore) Update(ctx context.Context, key uuid.UUID, in Input) (Resident, error) {
	for i, existing := range m.records {
		if existing.Key == key {
			existing.Name = in.Name
			existing.Age = in.Age
			existing.Gender = in.Gender
			existing.EmploymentStatus = in.EmploymentStatus
			existing.CivilStatus = in.CivilStatus
			existing.Address = in.Address
			existing.Contact = in.Contact
			existing.HouseholdNumber = in.HouseholdNumber
			m.records[i] = existing
			return existing, nil
		}
	}
	return Resident{}, ErrNotFound
}

func (m *memStore) Delete(ctx context.Context, key uuid.UUID) error {
	for i, existing := range m.records {
		if existing.Key == key {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *memStore) List(ctx context.Context, query string) ([]Resident, error) {
	if query == "" {
		return append([]Resident(nil), m.records...), nil
	}
	var out []Resident
	q := strings.ToLower(query)
	for _, res := range m.records {
		if strings.Contains(strings.ToLower(res.Name), q) ||
			strings.Contains(strings.ToLower(res.Address), q) ||
			strings.Contains(strings.ToLower(res.HouseholdNumber), q) {
			out = append(out, res)
		}
	}
	return out, nil
}

func (m *memStore) GetByKey(ctx context.Context, key uuid.UUID) (Resident, error) {
	for _, existing := range m.records {
		if existing.Key == key {
			return existing, nil
		}
	}
	return Resident{}, ErrNotFound
}

func (m *memStore) GetByPublicID(ctx context.Context, publicID string) (Resident, error) {
	for _, existing := range m.records {
		if existing.PublicID == publicID {
			return existing, nil
		}
	}
	return Resident{}, ErrNotFound
}

func (m *memStore) TripleExists(ctx context.Context, name, address, contact string, exclude uuid.UUID) (bool, error) {
	for _, existing := range m.records {
		if existing.Key == exclude {
			continue
		}
		if existing.Name == name && existing.Address == address && existing.Contact == contact {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) Insights(ctx context.Context) (Insights, error) {
	return m.insights, nil
}

func validInput() Input {
	return Input{
		Name:             "Ana Cruz",
		Age:              34,
		Gender:           "Female",
		EmploymentStatus: "Employed",
		CivilStatus:      "Married",
		Address:          "Purok 2",
		Contact:          "09171234567",
		HouseholdNumber:  "H-12",
	}
}

func TestCreateThenFindByPublicID(t *testing.T) {
	store := &memStore{}
	svc := NewService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if len(created.PublicID) != 6 {
		t.Fatalf("expected 6-character public id, got %q", created.PublicID)
	}
	for _, c := range created.PublicID {
		if !strings.ContainsRune("0123456789abcdef", c) {
			t.Fatalf("public id %q is not lowercase hex", created.PublicID)
		}
	}
	if created.Source != SourceManual {
		t.Fatalf("expected source %q, got %q", SourceManual, created.Source)
	}

	found, err := svc.FindByPublicID(ctx, created.PublicID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}

	in := validInput()
	if found.Name != in.Name || found.Age != in.Age || found.Gender != in.Gender ||
		found.EmploymentStatus != in.EmploymentStatus || found.CivilStatus != in.CivilStatus ||
		found.Address != in.Address || found.Contact != in.Contact ||
		found.HouseholdNumber != in.HouseholdNumber {
		t.Fatalf("found record does not match submitted fields: %+v", found)
	}
}

func TestCreateDuplicateTripleLeavesStoreUnchanged(t *testing.T) {
	store := &memStore{}
	svc := NewService(store)
	ctx := context.Background()

	if _, err := svc.Create(ctx, validInput()); err != nil {
		t.Fatalf("first create: %v", err)
	}

	// Same triple, different everything else.
	in := validInput()
	in.Age = 51
	in.Gender = "Female"
	in.HouseholdNumber = "H-99"

	_, err := svc.Create(ctx, in)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if len(store.records) != 1 {
		t.Fatalf("store mutated on duplicate create: %d records", len(store.records))
	}
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(&memStore{})
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*Input)
		field  string
	}{
		{"missing name", func(in *Input) { in.Name = "  " }, "name"},
		{"negative age", func(in *Input) { in.Age = -1 }, "age"},
		{"bad gender", func(in *Input) { in.Gender = "Other" }, "gender"},
		{"bad employment", func(in *Input) { in.EmploymentStatus = "Student" }, "employmentStatus"},
		{"bad civil status", func(in *Input) { in.CivilStatus = "Separated" }, "civilStatus"},
		{"missing address", func(in *Input) { in.Address = "" }, "address"},
		{"short contact", func(in *Input) { in.Contact = "0917123456" }, "contact"},
		{"non-numeric contact", func(in *Input) { in.Contact = "0917123456a" }, "contact"},
		{"missing household", func(in *Input) { in.HouseholdNumber = "" }, "householdNumber"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)

			_, err := svc.Create(ctx, in)
			var validation *ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if validation.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, validation.Field)
			}
		})
	}
}

func TestCreateRetriesOnShortIDCollision(t *testing.T) {
	store := &memStore{forcedErrs: []error{errShortIDTaken, errShortIDTaken}}
	svc := NewService(store)

	created, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(created.PublicID) != 6 {
		t.Fatalf("expected a regenerated 6-character id, got %q", created.PublicID)
	}
	if len(store.records) != 1 {
		t.Fatalf("expected exactly one stored record, got %d", len(store.records))
	}
}

func TestUpdateNotFound(t *testing.T) {
	svc := NewService(&memStore{})

	name := "Juan"
	_, err := svc.Update(context.Background(), uuid.New(), UpdateInput{Name: &name})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateAppliesPartialEdit(t *testing.T) {
	store := &memStore{}
	svc := NewService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	age := 35
	employment := "unemployed" // normalization applies on edits too
	updated, err := svc.Update(ctx, created.Key, UpdateInput{Age: &age, EmploymentStatus: &employment})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Age != 35 || updated.EmploymentStatus != "Unemployed" {
		t.Fatalf("edit not applied: %+v", updated)
	}
	if updated.Name != created.Name || updated.Contact != created.Contact {
		t.Fatalf("untouched fields changed: %+v", updated)
	}
}

func TestUpdateRechecksDedupTriple(t *testing.T) {
	store := &memStore{}
	svc := NewService(store)
	ctx := context.Background()

	first, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("create first: %v", err)
	}

	second := validInput()
	second.Name = "Ben Reyes"
	second.Contact = "09181234567"
	other, err := svc.Create(ctx, second)
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	// Editing the second record onto the first one's triple must fail.
	_, err = svc.Update(ctx, other.Key, UpdateInput{Name: &first.Name, Contact: &first.Contact})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// Editing a record without changing its own triple stays allowed.
	age := 40
	if _, err := svc.Update(ctx, other.Key, UpdateInput{Age: &age}); err != nil {
		t.Fatalf("self-preserving update: %v", err)
	}
}

func TestDeleteNotFound(t *testing.T) {
	svc := NewService(&memStore{})

	if err := svc.Delete(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListFilters(t *testing.T) {
	store := &memStore{}
	svc := NewService(store)
	ctx := context.Background()

	if _, err := svc.Create(ctx, validInput()); err != nil {
		t.Fatalf("create: %v", err)
	}
	second := validInput()
	second.Name = "Ben Reyes"
	second.Address = "Purok 5"
	second.Contact = "09181234567"
	if _, err := svc.Create(ctx, second); err != nil {
		t.Fatalf("create second: %v", err)
	}

	all, err := svc.List(ctx, "")
	if err != nil || len(all) != 2 {
		t.Fatalf("expected 2 records, got %d (%v)", len(all), err)
	}

	filtered, err := svc.List(ctx, "reyes")
	if err != nil || len(filtered) != 1 || filtered[0].Name != "Ben Reyes" {
		t.Fatalf("filter mismatch: %+v (%v)", filtered, err)
	}
}
