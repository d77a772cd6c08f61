package resident

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	// ErrNotFound is returned when no record matches the identifier.
	ErrNotFound = errors.New("resident not found")
	// ErrDuplicate signals a (name, address, contact) triple already on file.
	ErrDuplicate = errors.New("resident with the same name, address, and contact already exists")
	// ErrNoNewRecords signals an import where nothing survived dedup/validation.
	ErrNoNewRecords = errors.New("no new residents were added")
	// ErrEmptyCollection signals a backup attempt over zero records.
	ErrEmptyCollection = errors.New("no resident data to backup")
)

// shortIDAttempts bounds regeneration when a generated public_id collides.
const shortIDAttempts = 5

// Store is the persistence surface the service depends on.
type Store interface {
	Insert(ctx context.Context, res Resident) (Resident, error)
	Update(ctx context.Context, key uuid.UUID, in Input) (Resident, error)
	Delete(ctx context.Context, key uuid.UUID) error
	List(ctx context.Context, query string) ([]Resident, error)
	GetByKey(ctx context.Context, key uuid.UUID) (Resident, error)
	GetByPublicID(ctx context.Context, publicID string) (Resident, error)
	TripleExists(ctx context.Context, name, address, contact string, exclude uuid.UUID) (bool, error)
	Insights(ctx context.Context) (Insights, error)
}

// Insights aggregates the demographic counters behind the dashboard charts.
type Insights struct {
	Total  int64 `json:"total"`
	Gender struct {
		Male   int64 `json:"male"`
		Female int64 `json:"female"`
	} `json:"gender"`
	Employment struct {
		Employed   int64 `json:"employed"`
		Unemployed int64 `json:"unemployed"`
		Retired    int64 `json:"retired"`
	} `json:"employmentStatus"`
	Civil struct {
		Single   int64 `json:"single"`
		Married  int64 `json:"married"`
		Divorced int64 `json:"divorced"`
		Widowed  int64 `json:"widowed"`
	} `json:"civilStatus"`
	AgeBrackets struct {
		Minors  int64 `json:"minors"`
		Adults  int64 `json:"adults"`
		Seniors int64 `json:"seniors"`
	} `json:"ageBrackets"`
	Source struct {
		Manual    int64 `json:"manual"`
		CSVUpload int64 `json:"csvUpload"`
	} `json:"source"`
}

// Service holds the resident business rules.
type Service struct {
	store Store
}

// NewService creates a Service over the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create validates and persists a manually entered record.
func (s *Service) Create(ctx context.Context, in Input) (Resident, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return Resident{}, err
	}

	exists, err := s.store.TripleExists(ctx, in.Name, in.Address, in.Contact, uuid.Nil)
	if err != nil {
		return Resident{}, err
	}
	if exists {
		return Resident{}, ErrDuplicate
	}

	return s.insertFresh(ctx, in, SourceManual)
}

// insertFresh assigns a new key and short ID and persists the record,
// regenerating the short ID on collision.
func (s *Service) insertFresh(ctx context.Context, in Input, source string) (Resident, error) {
	res := Resident{
		Key:              uuid.New(),
		Name:             in.Name,
		Age:              in.Age,
		Gender:           in.Gender,
		EmploymentStatus: in.EmploymentStatus,
		CivilStatus:      in.CivilStatus,
		Address:          in.Address,
		Contact:          in.Contact,
		HouseholdNumber:  in.HouseholdNumber,
		Source:           source,
	}

	for attempt := 0; attempt < shortIDAttempts; attempt++ {
		res.PublicID = newShortID()
		stored, err := s.store.Insert(ctx, res)
		if errors.Is(err, errShortIDTaken) {
			log.Warn().Str("public_id", res.PublicID).Msg("short id collision, regenerating")
			continue
		}
		if err != nil {
			return Resident{}, err
		}
		return stored, nil
	}

	return Resident{}, fmt.Errorf("could not assign a unique short id after %d attempts", shortIDAttempts)
}

// Update applies a partial edit to the record identified by its internal key.
// The merged result is re-validated, including the uniqueness triple.
func (s *Service) Update(ctx context.Context, key uuid.UUID, up UpdateInput) (Resident, error) {
	current, err := s.store.GetByKey(ctx, key)
	if err != nil {
		return Resident{}, err
	}

	in := up.apply(current)
	in.Normalize()
	if err := in.Validate(); err != nil {
		return Resident{}, err
	}

	exists, err := s.store.TripleExists(ctx, in.Name, in.Address, in.Contact, key)
	if err != nil {
		return Resident{}, err
	}
	if exists {
		return Resident{}, ErrDuplicate
	}

	return s.store.Update(ctx, key, in)
}

// Delete removes the record identified by its internal key.
func (s *Service) Delete(ctx context.Context, key uuid.UUID) error {
	return s.store.Delete(ctx, key)
}

// List returns all records, optionally filtered by a search term.
func (s *Service) List(ctx context.Context, query string) ([]Resident, error) {
	return s.store.List(ctx, query)
}

// FindByPublicID resolves the short identifier embedded in a QR code. This
// path is intentionally unauthenticated: the ID is already distributable.
func (s *Service) FindByPublicID(ctx context.Context, publicID string) (Resident, error) {
	return s.store.GetByPublicID(ctx, publicID)
}

// Insights returns the aggregated demographic counters.
func (s *Service) Insights(ctx context.Context) (Insights, error) {
	return s.store.Insights(ctx)
}
