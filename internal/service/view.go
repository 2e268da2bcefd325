package service

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"roster/internal/model"
)

type SortField string

const (
	SortByName  SortField = "name"
	SortByCode  SortField = "code"
	SortByMajor SortField = "major"
	SortByGPA   SortField = "gpa"
)

type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// SortSpec is the table ordering, written "field.direction" (e.g. "gpa.desc").
type SortSpec struct {
	Field     SortField
	Direction SortDirection
}

// DefaultSort is name ascending.
func DefaultSort() SortSpec {
	return SortSpec{Field: SortByName, Direction: Ascending}
}

func (s SortSpec) String() string {
	return string(s.Field) + "." + string(s.Direction)
}

// ParseSortSpec accepts the sort selector values, e.g. "name.asc".
func ParseSortSpec(v string) (SortSpec, error) {
	field, dir, ok := strings.Cut(strings.TrimSpace(v), ".")
	if !ok {
		return SortSpec{}, fmt.Errorf("invalid sort %q: want field.direction", v)
	}
	spec := SortSpec{Field: SortField(field), Direction: SortDirection(dir)}
	switch spec.Field {
	case SortByName, SortByCode, SortByMajor, SortByGPA:
	default:
		return SortSpec{}, fmt.Errorf("invalid sort field %q", field)
	}
	switch spec.Direction {
	case Ascending, Descending:
	default:
		return SortSpec{}, fmt.Errorf("invalid sort direction %q", dir)
	}
	return spec, nil
}

// SortOptions lists every selector value in display order.
func SortOptions() []SortSpec {
	var out []SortSpec
	for _, f := range []SortField{SortByName, SortByCode, SortByMajor, SortByGPA} {
		for _, d := range []SortDirection{Ascending, Descending} {
			out = append(out, SortSpec{Field: f, Direction: d})
		}
	}
	return out
}

// Derive filters students by query and orders them by spec. The input is
// not modified. Equal keys keep their roster order in both directions.
func Derive(students []model.Student, query string, spec SortSpec) []model.Student {
	q := strings.ToLower(strings.TrimSpace(query))

	rows := make([]model.Student, 0, len(students))
	for _, s := range students {
		if matches(s, q) {
			rows = append(rows, s)
		}
	}

	compare := comparator(spec.Field)
	if spec.Direction == Descending {
		asc := compare
		compare = func(a, b model.Student) int { return -asc(a, b) }
	}
	slices.SortStableFunc(rows, compare)
	return rows
}

func matches(s model.Student, q string) bool {
	if q == "" {
		return true
	}
	for _, field := range []string{s.Name, s.Code, s.Major} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func comparator(field SortField) func(a, b model.Student) int {
	switch field {
	case SortByGPA:
		return func(a, b model.Student) int { return cmp.Compare(a.GPAOrZero(), b.GPAOrZero()) }
	case SortByCode:
		return byText(func(s model.Student) string { return s.Code })
	case SortByMajor:
		return byText(func(s model.Student) string { return s.Major })
	default:
		return byText(func(s model.Student) string { return s.Name })
	}
}

func byText(key func(model.Student) string) func(a, b model.Student) int {
	return func(a, b model.Student) int {
		return strings.Compare(strings.ToLower(key(a)), strings.ToLower(key(b)))
	}
}
