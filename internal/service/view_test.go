package service

import (
	"strings"
	"testing"

	"roster/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(students []model.Student) []string {
	out := make([]string, len(students))
	for i, s := range students {
		out[i] = s.ID
	}
	return out
}

func sampleRoster() []model.Student {
	return []model.Student{
		{ID: "1", Name: "charlie", Code: "C3", Major: "Physics", GPA: model.Float(3.0)},
		{ID: "2", Name: "alice", Code: "A1", Major: "Math", GPA: model.Float(3.9)},
		{ID: "3", Name: "ALICE", Code: "A2", GPA: nil},
		{ID: "4", Name: "Bob", Code: "B1", Major: "math", GPA: model.Float(3.0)},
		{ID: "5", Name: "dora", Code: "D1", Major: "Biology", GPA: model.Float(1.5)},
	}
}

func TestDeriveFilter(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"Empty query keeps everything", "", []string{"1", "2", "3", "4", "5"}},
		{"Whitespace query keeps everything", "   ", []string{"1", "2", "3", "4", "5"}},
		{"Case-insensitive name", "ali", []string{"2", "3"}},
		{"Code match", "b1", []string{"4"}},
		{"Major match", "MATH", []string{"2", "4"}},
		{"Missing major does not match", "physics", []string{"1"}},
		{"No match", "zzz", []string{}},
	}

	spec := SortSpec{Field: SortByCode, Direction: Ascending}
	roster := sampleRoster()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Derive(roster, tt.query, spec)
			wantSet := map[string]bool{}
			for _, id := range tt.want {
				wantSet[id] = true
			}
			assert.Len(t, got, len(tt.want))
			for _, s := range got {
				assert.True(t, wantSet[s.ID], "unexpected %s", s.ID)
			}
		})
	}
}

func TestDeriveFilterProperty(t *testing.T) {
	roster := sampleRoster()
	for _, q := range []string{"a", "A", "li", "1", "o", "h", "x"} {
		got := map[string]bool{}
		for _, s := range Derive(roster, q, DefaultSort()) {
			got[s.ID] = true
		}
		for _, s := range roster {
			want := containsFold(s.Name, q) || containsFold(s.Code, q) || containsFold(s.Major, q)
			assert.Equal(t, want, got[s.ID], "query %q record %s", q, s.ID)
		}
	}
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func TestDeriveSort(t *testing.T) {
	roster := sampleRoster()
	tests := []struct {
		spec string
		want []string
	}{
		{"name.asc", []string{"2", "3", "4", "1", "5"}},
		{"name.desc", []string{"5", "1", "4", "2", "3"}},
		{"code.asc", []string{"2", "3", "4", "1", "5"}},
		{"major.asc", []string{"3", "5", "2", "4", "1"}},
		{"major.desc", []string{"1", "2", "4", "5", "3"}},
		{"gpa.asc", []string{"3", "5", "1", "4", "2"}},
		{"gpa.desc", []string{"2", "1", "4", "5", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			spec, err := ParseSortSpec(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(Derive(roster, "", spec)))
		})
	}
}

func TestDeriveSortIsStableAndRepeatable(t *testing.T) {
	roster := sampleRoster()
	for _, spec := range SortOptions() {
		first := Derive(roster, "", spec)
		second := Derive(roster, "", spec)
		assert.Equal(t, ids(first), ids(second), spec.String())
	}
}

func TestDeriveDoesNotModifyInput(t *testing.T) {
	roster := sampleRoster()
	before := ids(roster)
	Derive(roster, "a", SortSpec{Field: SortByGPA, Direction: Descending})
	assert.Equal(t, before, ids(roster))
}

func TestParseSortSpec(t *testing.T) {
	spec, err := ParseSortSpec("gpa.desc")
	require.NoError(t, err)
	assert.Equal(t, SortSpec{Field: SortByGPA, Direction: Descending}, spec)
	assert.Equal(t, "gpa.desc", spec.String())

	for _, bad := range []string{"", "name", "age.asc", "name.up", ".asc"} {
		_, err := ParseSortSpec(bad)
		assert.Error(t, err, bad)
	}

	assert.Equal(t, "name.asc", DefaultSort().String())
	assert.Len(t, SortOptions(), 8)
}
