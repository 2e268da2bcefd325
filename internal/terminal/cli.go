package terminal

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"roster/internal/render"
	"roster/internal/service"
)

// CLI adapts one-shot commands to the controller. The form is filled from
// flags, confirmations come from --yes or a y/N answer on the input, and
// the last painted table is printed on demand.
type CLI struct {
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer
	styles Styles

	form      service.StudentForm
	label     string
	assumeYes bool
	table     render.Table
}

func NewCLI(in io.Reader, out, errOut io.Writer) *CLI {
	return &CLI{
		in:     bufio.NewReader(in),
		out:    out,
		errOut: errOut,
		styles: DefaultStyles(),
	}
}

// AssumeYes answers every confirmation without asking.
func (c *CLI) AssumeYes(yes bool) { c.assumeYes = yes }

// SetForm replaces the form the next Submit reads.
func (c *CLI) SetForm(form service.StudentForm) { c.form = form }

func (c *CLI) ReadForm() service.StudentForm { return c.form }

func (c *CLI) FillForm(form service.StudentForm) { c.form = form }

func (c *CLI) SetSubmitLabel(label string) { c.label = label }

func (c *CLI) Notify(message string) {
	fmt.Fprintln(c.errOut, c.styles.Notice.Render(message))
}

func (c *CLI) Confirm(prompt string) bool {
	if c.assumeYes {
		return true
	}
	fmt.Fprint(c.errOut, c.styles.Prompt.Render(prompt)+" [y/N] ")
	answer, err := c.in.ReadString('\n')
	if err != nil && answer == "" {
		fmt.Fprintln(c.errOut)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

func (c *CLI) Paint(table render.Table) { c.table = table }

// Table is the most recently painted table.
func (c *CLI) Table() render.Table { return c.table }

// PrintTable writes the most recently painted table to the output.
func (c *CLI) PrintTable() {
	fmt.Fprint(c.out, FormatTable(c.table, c.styles))
}

// PrintTableFor writes a table for the given rows without touching the
// painted one.
func (c *CLI) PrintTableFor(table render.Table) {
	fmt.Fprint(c.out, FormatTable(table, c.styles))
}
