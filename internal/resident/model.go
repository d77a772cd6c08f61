package resident

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record origin markers.
const (
	SourceManual    = "manual"
	SourceCSVUpload = "csv-upload"
)

var (
	genders            = []string{"Male", "Female"}
	employmentStatuses = []string{"Employed", "Unemployed", "Retired"}
	civilStatuses      = []string{"Single", "Married", "Divorced", "Widowed"}

	contactPattern = regexp.MustCompile(`^[0-9]{11}$`)
)

// Resident is a registry record. Key is the internal identifier used by the
// admin API; PublicID is the short identifier embedded in QR codes.
type Resident struct {
	Key              uuid.UUID `json:"key"`
	PublicID         string    `json:"id"`
	Name             string    `json:"name"`
	Age              int       `json:"age"`
	Gender           string    `json:"gender"`
	EmploymentStatus string    `json:"employmentStatus"`
	CivilStatus      string    `json:"civilStatus"`
	Address          string    `json:"address"`
	Contact          string    `json:"contact"`
	HouseholdNumber  string    `json:"householdNumber"`
	Source           string    `json:"source"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Input carries the caller-supplied fields for a new record.
type Input struct {
	Name             string `json:"name"`
	Age              int    `json:"age"`
	Gender           string `json:"gender"`
	EmploymentStatus string `json:"employmentStatus"`
	CivilStatus      string `json:"civilStatus"`
	Address          string `json:"address"`
	Contact          string `json:"contact"`
	HouseholdNumber  string `json:"householdNumber"`
}

// UpdateInput carries a partial edit. Nil fields keep their current value.
type UpdateInput struct {
	Name             *string `json:"name"`
	Age              *int    `json:"age"`
	Gender           *string `json:"gender"`
	EmploymentStatus *string `json:"employmentStatus"`
	CivilStatus      *string `json:"civilStatus"`
	Address          *string `json:"address"`
	Contact          *string `json:"contact"`
	HouseholdNumber  *string `json:"householdNumber"`
}

// ValidationError points at the first field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Normalize trims free-text fields and canonicalizes the enum fields so that
// "MALE", "male" and "Male" all compare equal.
func (in *Input) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	in.Contact = strings.TrimSpace(in.Contact)
	in.HouseholdNumber = strings.TrimSpace(in.HouseholdNumber)
	in.Gender = capitalizeFirst(in.Gender)
	in.EmploymentStatus = capitalizeFirst(in.EmploymentStatus)
	in.CivilStatus = capitalizeFirst(in.CivilStatus)
}

// Validate checks the normalized input against the record constraints.
func (in *Input) Validate() error {
	if in.Name == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	if in.Age < 0 {
		return &ValidationError{Field: "age", Reason: "must be non-negative"}
	}
	if !contains(genders, in.Gender) {
		return &ValidationError{Field: "gender", Reason: "must be Male or Female"}
	}
	if !contains(employmentStatuses, in.EmploymentStatus) {
		return &ValidationError{Field: "employmentStatus", Reason: "must be Employed, Unemployed or Retired"}
	}
	if !contains(civilStatuses, in.CivilStatus) {
		return &ValidationError{Field: "civilStatus", Reason: "must be Single, Married, Divorced or Widowed"}
	}
	if in.Address == "" {
		return &ValidationError{Field: "address", Reason: "is required"}
	}
	if !contactPattern.MatchString(in.Contact) {
		return &ValidationError{Field: "contact", Reason: "must be exactly 11 digits"}
	}
	if in.HouseholdNumber == "" {
		return &ValidationError{Field: "householdNumber", Reason: "is required"}
	}
	return nil
}

// apply merges the partial edit over the stored record's fields.
func (up *UpdateInput) apply(r Resident) Input {
	in := Input{
		Name:             r.Name,
		Age:              r.Age,
		Gender:           r.Gender,
		EmploymentStatus: r.EmploymentStatus,
		CivilStatus:      r.CivilStatus,
		Address:          r.Address,
		Contact:          r.Contact,
		HouseholdNumber:  r.HouseholdNumber,
	}
	if up.Name != nil {
		in.Name = *up.Name
	}
	if up.Age != nil {
		in.Age = *up.Age
	}
	if up.Gender != nil {
		in.Gender = *up.Gender
	}
	if up.EmploymentStatus != nil {
		in.EmploymentStatus = *up.EmploymentStatus
	}
	if up.CivilStatus != nil {
		in.CivilStatus = *up.CivilStatus
	}
	if up.Address != nil {
		in.Address = *up.Address
	}
	if up.Contact != nil {
		in.Contact = *up.Contact
	}
	if up.HouseholdNumber != nil {
		in.HouseholdNumber = *up.HouseholdNumber
	}
	return in
}

func capitalizeFirst(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func contains(set []string, value string) bool {
	for _, item := range set {
		if item == value {
			return true
		}
	}
	return false
}
