// Package render turns a derived student list into table rows.
package render

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"roster/internal/model"
)

// Row is one displayed student. Fields hold plain text; WriteHTML escapes them.
type Row struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
	Name  string `json:"name"`
	Badge string `json:"badge,omitempty"`
	Code  string `json:"code"`
	Major string `json:"major"`
	GPA   string `json:"gpa"`
}

// Table is what a UI paints: rows in display order and whether the
// empty-state indicator is visible.
type Table struct {
	Rows  []Row `json:"rows"`
	Empty bool  `json:"empty"`
}

// Render builds the table for students in the given order.
func Render(students []model.Student) Table {
	rows := make([]Row, 0, len(students))
	for i, s := range students {
		major := s.Major
		if major == "" {
			major = model.Placeholder
		}
		gpa := model.Placeholder
		if s.GPA != nil {
			gpa = strconv.FormatFloat(*s.GPA, 'f', -1, 64)
		}
		rows = append(rows, Row{
			Index: i + 1,
			ID:    s.ID,
			Name:  s.Name,
			Badge: s.Badge(),
			Code:  s.Code,
			Major: major,
			GPA:   gpa,
		})
	}
	return Table{Rows: rows, Empty: len(rows) == 0}
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML escapes the characters that could open markup or break out of
// an attribute value.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// WriteHTML writes one <tr> per row. Each row carries edit and delete
// buttons tagged with data-action and data-id.
func (t Table) WriteHTML(w io.Writer) error {
	for _, r := range t.Rows {
		if err := r.writeHTML(w); err != nil {
			return err
		}
	}
	return nil
}

// HTML is WriteHTML into a string.
func (t Table) HTML() string {
	var b strings.Builder
	_ = t.WriteHTML(&b)
	return b.String()
}

func (r Row) writeHTML(w io.Writer) error {
	badge := ""
	if r.Badge != "" {
		badge = ` <span class="badge">` + EscapeHTML(r.Badge) + `</span>`
	}
	id := EscapeHTML(r.ID)
	path := EscapeHTML(url.PathEscape(r.ID))
	_, err := fmt.Fprintf(w, `<tr>
  <td>%d</td>
  <td>%s%s</td>
  <td><code>%s</code></td>
  <td>%s</td>
  <td>%s</td>
  <td>
    <div class="row-actions">
      <button type="submit" formaction="/students/%s/edit" data-action="edit" data-id="%s">Edit</button>
      <button type="submit" formaction="/students/%s/delete" data-action="delete" class="danger" data-id="%s">Delete</button>
    </div>
  </td>
</tr>
`, r.Index, EscapeHTML(r.Name), badge, EscapeHTML(r.Code), EscapeHTML(r.Major), EscapeHTML(r.GPA), path, id, path, id)
	return err
}
