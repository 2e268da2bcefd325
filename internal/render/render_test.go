package render

import (
	"strings"
	"testing"

	"roster/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	table := Render([]model.Student{
		{ID: "a", Name: "Ann", Code: "S1", Major: "Math", GPA: model.Float(3.9)},
		{ID: "b", Name: "Ben", Code: "S2"},
		{ID: "c", Name: "Cat", Code: "S3", GPA: model.Float(1.5)},
		{ID: "d", Name: "Dee", Code: "S4", GPA: model.Float(4)},
	})

	require.Len(t, table.Rows, 4)
	assert.False(t, table.Empty)

	assert.Equal(t, Row{Index: 1, ID: "a", Name: "Ann", Badge: model.BadgeHonor, Code: "S1", Major: "Math", GPA: "3.9"}, table.Rows[0])
	assert.Equal(t, Row{Index: 2, ID: "b", Name: "Ben", Code: "S2", Major: "-", GPA: "-"}, table.Rows[1])
	assert.Equal(t, model.BadgeNeedsSupport, table.Rows[2].Badge)
	assert.Equal(t, "4", table.Rows[3].GPA)
}

func TestRenderEmpty(t *testing.T) {
	table := Render(nil)
	assert.True(t, table.Empty)
	assert.Empty(t, table.Rows)
	assert.Equal(t, "", table.HTML())
}

func TestEscapeHTML(t *testing.T) {
	assert.Equal(t, "&lt;script&gt;alert(&quot;x&quot;) &amp; &#039;y&#039;&lt;/script&gt;",
		EscapeHTML(`<script>alert("x") & 'y'</script>`))
	assert.Equal(t, "plain", EscapeHTML("plain"))
	assert.Equal(t, "&amp;amp;", EscapeHTML("&amp;"))
}

func TestWriteHTMLEscapesUserText(t *testing.T) {
	table := Render([]model.Student{{
		ID:    "x1",
		Name:  `<img src=x onerror="boom">`,
		Code:  `A&B`,
		Major: `'quoted'`,
		GPA:   model.Float(3.6),
	}})

	out := table.HTML()
	assert.NotContains(t, out, "<img")
	assert.Contains(t, out, "&lt;img src=x onerror=&quot;boom&quot;&gt;")
	assert.Contains(t, out, "<code>A&amp;B</code>")
	assert.Contains(t, out, "<td>&#039;quoted&#039;</td>")
	assert.Contains(t, out, `<span class="badge">Honor</span>`)
	assert.Contains(t, out, `data-action="edit" data-id="x1"`)
	assert.Contains(t, out, `data-action="delete" class="danger" data-id="x1"`)
	assert.Equal(t, 1, strings.Count(out, "<tr>"))
}
