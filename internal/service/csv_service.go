package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"roster/internal/logging"
	"roster/internal/model"

	"go.uber.org/zap"
)

// CSVHeader is the column order written by Export. Import accepts the
// columns in any order and requires only name and code.
var CSVHeader = []string{"id", "name", "code", "major", "gpa"}

type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ImportReport summarizes one Import call.
type ImportReport struct {
	Total    int        `json:"total"`
	Imported int        `json:"imported"`
	Updated  int        `json:"updated"`
	Skipped  int        `json:"skipped"`
	Errors   []RowError `json:"errors,omitempty"`
}

// CSVService moves roster records in and out of CSV files.
type CSVService struct {
	store     *RosterStore
	validator *Validator
	logger    *zap.Logger
}

func NewCSVService(store *RosterStore, validator *Validator, logger *zap.Logger) *CSVService {
	return &CSVService{store: store, validator: validator, logger: logging.OrNop(logger)}
}

// Import validates every row with the form rules and upserts the valid ones
// in a single save. Rows carrying an id update that record; rows without
// one get a fresh id and are skipped when their code is already present.
func (s *CSVService) Import(ctx context.Context, r io.Reader) (ImportReport, error) {
	var report ImportReport

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return report, nil
	}
	if err != nil {
		return report, &ValidationError{Field: "file", Message: "Could not read CSV header: " + err.Error()}
	}
	cols, err := columnIndex(header)
	if err != nil {
		return report, err
	}

	existingCodes := make(map[string]bool)
	for _, st := range s.store.Students() {
		existingCodes[strings.ToLower(st.Code)] = true
	}

	var batch []model.Student
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			report.Total++
			report.Errors = append(report.Errors, RowError{Line: line, Message: err.Error()})
			continue
		}
		report.Total++

		student, err := s.validator.Parse(StudentForm{
			Name:  field(record, cols, "name"),
			Code:  field(record, cols, "code"),
			Major: field(record, cols, "major"),
			GPA:   field(record, cols, "gpa"),
		})
		if err != nil {
			report.Errors = append(report.Errors, RowError{Line: line, Message: err.Error()})
			continue
		}

		if id := strings.TrimSpace(field(record, cols, "id")); id != "" {
			student.ID = id
			if _, ok := s.store.Find(id); ok {
				report.Updated++
			} else {
				report.Imported++
			}
		} else {
			code := strings.ToLower(student.Code)
			if existingCodes[code] {
				s.logger.Debug("skipping duplicate student code", zap.String("code", student.Code), zap.Int("line", line))
				report.Skipped++
				continue
			}
			student.ID = s.store.NewID()
			report.Imported++
		}
		existingCodes[strings.ToLower(student.Code)] = true
		batch = append(batch, student)
	}

	if len(batch) == 0 {
		return report, nil
	}
	if err := s.store.UpsertBatch(ctx, batch); err != nil {
		return report, err
	}
	s.logger.Info("csv import finished",
		zap.Int("total", report.Total),
		zap.Int("imported", report.Imported),
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped),
		zap.Int("errors", len(report.Errors)))
	return report, nil
}

// Export writes the roster in insertion order with CSVHeader.
func (s *CSVService) Export(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(CSVHeader); err != nil {
		return err
	}
	for _, st := range s.store.Students() {
		gpa := ""
		if st.GPA != nil {
			gpa = FormatGPA(*st.GPA)
		}
		if err := writer.Write([]string{st.ID, st.Name, st.Code, st.Major, gpa}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func columnIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, required := range []string{"name", "code"} {
		if _, ok := cols[required]; !ok {
			return nil, &ValidationError{Field: "file", Message: fmt.Sprintf("CSV header is missing the %q column.", required)}
		}
	}
	return cols, nil
}

func field(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}
