package resident

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// backupColumns is the fixed export field set. The public ID and internal key
// are deliberately excluded from backups.
var backupColumns = []string{
	"name", "age", "gender", "employmentStatus", "civilStatus",
	"address", "contact", "householdNumber", "source",
}

// ImportResult reports the outcome of a CSV bulk import.
type ImportResult struct {
	Inserted int        `json:"inserted"`
	Skipped  int        `json:"skipped"`
	Rejected []RowIssue `json:"rejected"`
}

// RowIssue identifies a rejected CSV row and why it was rejected.
type RowIssue struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

type candidate struct {
	row int
	in  Input
}

// ImportCSV streams a resident CSV row by row: normalizes and validates each
// row, de-duplicates within the batch and against the store, and inserts the
// survivors one by one so a late failure does not abort earlier inserts.
// Returns ErrNoNewRecords (with counts still populated) when nothing landed.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader) (ImportResult, error) {
	var result ImportResult

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return result, ErrNoNewRecords
	}
	if err != nil {
		return result, fmt.Errorf("read csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	field := func(record []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return record[idx]
	}

	var candidates []candidate
	seen := make(map[string]struct{})

	for row := 2; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			result.Rejected = append(result.Rejected, RowIssue{Row: row, Reason: "malformed row"})
			continue
		}

		ageStr := strings.TrimSpace(field(record, "age"))
		age, err := strconv.Atoi(ageStr)
		if err != nil {
			result.Rejected = append(result.Rejected, RowIssue{Row: row, Reason: "age must be a number"})
			continue
		}

		in := Input{
			Name:             field(record, "name"),
			Age:              age,
			Gender:           field(record, "gender"),
			EmploymentStatus: field(record, "employmentstatus"),
			CivilStatus:      field(record, "civilstatus"),
			Address:          field(record, "address"),
			Contact:          field(record, "contact"),
			HouseholdNumber:  field(record, "householdnumber"),
		}
		in.Normalize()
		if err := in.Validate(); err != nil {
			result.Rejected = append(result.Rejected, RowIssue{Row: row, Reason: err.Error()})
			continue
		}

		// Same-batch duplicates count as skipped, same as store duplicates.
		tripleKey := in.Name + "\x00" + in.Address + "\x00" + in.Contact
		if _, dup := seen[tripleKey]; dup {
			result.Skipped++
			continue
		}
		seen[tripleKey] = struct{}{}

		candidates = append(candidates, candidate{row: row, in: in})
	}

	for _, c := range candidates {
		exists, err := s.store.TripleExists(ctx, c.in.Name, c.in.Address, c.in.Contact, uuid.Nil)
		if err != nil {
			return result, err
		}
		if exists {
			result.Skipped++
			continue
		}

		_, err = s.insertFresh(ctx, c.in, SourceCSVUpload)
		if errors.Is(err, ErrDuplicate) {
			// Raced against a concurrent insert of the same triple.
			result.Skipped++
			continue
		}
		if err != nil {
			log.Warn().Err(err).Int("row", c.row).Msg("csv import: insert failed")
			result.Rejected = append(result.Rejected, RowIssue{Row: c.row, Reason: "insert failed"})
			continue
		}
		result.Inserted++
	}

	if result.Inserted == 0 {
		return result, ErrNoNewRecords
	}
	return result, nil
}

// Backup serializes the whole collection to CSV and names the artifact with
// a millisecond timestamp. Fails with ErrEmptyCollection on zero records.
func (s *Service) Backup(ctx context.Context) (string, []byte, error) {
	residents, err := s.store.List(ctx, "")
	if err != nil {
		return "", nil, err
	}
	if len(residents) == 0 {
		return "", nil, ErrEmptyCollection
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(backupColumns); err != nil {
		return "", nil, err
	}
	for _, res := range residents {
		record := []string{
			res.Name,
			strconv.Itoa(res.Age),
			res.Gender,
			res.EmploymentStatus,
			res.CivilStatus,
			res.Address,
			res.Contact,
			res.HouseholdNumber,
			res.Source,
		}
		if err := writer.Write(record); err != nil {
			return "", nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", nil, err
	}

	filename := fmt.Sprintf("resident-backup-%d.csv", time.Now().UnixMilli())
	return filename, buf.Bytes(), nil
}
