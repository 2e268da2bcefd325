// Package controller runs the roster's commands: every user action mutates
// the store, re-derives the visible list and repaints it through a UI.
package controller

import (
	"context"
	"errors"
	"fmt"
	"io"

	"roster/internal/logging"
	"roster/internal/metrics"
	"roster/internal/model"
	"roster/internal/render"
	"roster/internal/service"

	"go.uber.org/zap"
)

const (
	LabelSave   = "Save"
	LabelUpdate = "Update"

	PromptClear        = "Clear all students?"
	fallbackDeleteName = "this student"
)

// Table button actions.
const (
	ActionEdit   = "edit"
	ActionDelete = "delete"
)

// UI is everything the controller needs from the screen. Implementations
// are the HTTP page, the CLI and the TUI; tests use a mock.
type UI interface {
	ReadForm() service.StudentForm
	FillForm(form service.StudentForm)
	SetSubmitLabel(label string)
	Notify(message string)
	Confirm(prompt string) bool
	Paint(table render.Table)
}

// Mode says whether the next submit creates a record or updates one.
type Mode struct {
	editingID string
}

func CreateMode() Mode { return Mode{} }

func EditingMode(id string) Mode { return Mode{editingID: id} }

// Editing returns the id being edited, if any.
func (m Mode) Editing() (string, bool) {
	return m.editingID, m.editingID != ""
}

func (m Mode) String() string {
	if m.editingID == "" {
		return "create"
	}
	return "editing(" + m.editingID + ")"
}

// Controller holds the view state and form mode for one user. It is not
// safe for concurrent use; adapters serialize events.
type Controller struct {
	store     *service.RosterStore
	csv       *service.CSVService
	validator *service.Validator
	ui        UI
	logger    *zap.Logger
	metrics   *metrics.Metrics

	query string
	sort  service.SortSpec
	mode  Mode
}

type Option func(*Controller)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) { c.logger = logging.OrNop(logger) }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

func New(store *service.RosterStore, ui UI, opts ...Option) *Controller {
	c := &Controller{
		store:     store,
		validator: service.NewValidator(),
		ui:        ui,
		logger:    zap.NewNop(),
		sort:      service.DefaultSort(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.csv = service.NewCSVService(store, c.validator, c.logger)
	return c
}

func (c *Controller) Query() string { return c.query }

func (c *Controller) Sort() service.SortSpec { return c.sort }

func (c *Controller) Mode() Mode { return c.mode }

func (c *Controller) Store() *service.RosterStore { return c.store }

// Start loads the roster and paints the first frame. A corrupt blob is
// reported to the user and the editor continues with an empty roster; any
// other read error is returned.
func (c *Controller) Start(ctx context.Context) error {
	if err := c.store.Load(ctx); err != nil {
		if !errors.Is(err, service.ErrCorruptRoster) {
			c.logger.Error("failed to load roster", zap.Error(err))
			c.ui.Notify("Could not load students: " + err.Error())
			return err
		}
		c.ui.Notify(fmt.Sprintf("Saved students could not be read and were set aside under %q. Starting with an empty list.", c.store.CorruptKey()))
	}
	c.ResetForm()
	c.Render()
	return nil
}

// Current is the list on screen right now.
func (c *Controller) Current() []model.Student {
	return service.Derive(c.store.Students(), c.query, c.sort)
}

// Derive computes a list for other view state without changing this one.
func (c *Controller) Derive(query string, spec service.SortSpec) []model.Student {
	return service.Derive(c.store.Students(), query, spec)
}

// Render re-derives the list and paints it.
func (c *Controller) Render() {
	c.metrics.SetRosterSize(c.store.Len())
	c.ui.Paint(render.Render(c.Current()))
}

// Submit creates or updates a record from the form. Rejected input is
// reported to the user and left in the form.
func (c *Controller) Submit(ctx context.Context) error {
	student, err := c.validator.Parse(c.ui.ReadForm())
	if err != nil {
		c.ui.Notify(err.Error())
		c.metrics.ObserveCommand("submit", metrics.OutcomeRejected)
		return err
	}

	if id, ok := c.mode.Editing(); ok {
		student.ID = id
	} else {
		student.ID = c.store.NewID()
	}

	err = c.store.Upsert(ctx, student)
	c.Render()
	if err != nil {
		return c.storageFailed("submit", err)
	}
	c.logger.Info("student saved", zap.String("id", student.ID), zap.Stringer("mode", c.mode))
	c.metrics.ObserveCommand("submit", metrics.OutcomeOK)
	c.ResetForm()
	return nil
}

// Edit loads a record into the form and switches to update mode. Unknown
// ids are ignored.
func (c *Controller) Edit(id string) {
	student, ok := c.store.Find(id)
	if !ok {
		c.metrics.ObserveCommand("edit", metrics.OutcomeNoop)
		return
	}
	c.ui.FillForm(service.FormFromStudent(student))
	c.ui.SetSubmitLabel(LabelUpdate)
	c.mode = EditingMode(id)
	c.metrics.ObserveCommand("edit", metrics.OutcomeOK)
}

// DeletePrompt is the confirmation text for deleting id.
func (c *Controller) DeletePrompt(id string) string {
	name := fallbackDeleteName
	if student, ok := c.store.Find(id); ok && student.Name != "" {
		name = student.Name
	}
	return "Delete " + name + "?"
}

// Delete removes a record after the user confirms.
func (c *Controller) Delete(ctx context.Context, id string) error {
	if !c.ui.Confirm(c.DeletePrompt(id)) {
		c.metrics.ObserveCommand("delete", metrics.OutcomeCancelled)
		return nil
	}

	err := c.store.Remove(ctx, id)
	if editing, ok := c.mode.Editing(); ok && editing == id {
		c.ResetForm()
	}
	c.Render()
	if err != nil {
		return c.storageFailed("delete", err)
	}
	c.logger.Info("student deleted", zap.String("id", id))
	c.metrics.ObserveCommand("delete", metrics.OutcomeOK)
	return nil
}

// HandleAction dispatches a table button click.
func (c *Controller) HandleAction(ctx context.Context, action, id string) error {
	switch action {
	case ActionEdit:
		c.Edit(id)
		return nil
	case ActionDelete:
		return c.Delete(ctx, id)
	}
	return fmt.Errorf("unknown action %q", action)
}

func (c *Controller) Search(query string) {
	c.query = query
	c.metrics.ObserveCommand("search", metrics.OutcomeOK)
	c.Render()
}

func (c *Controller) SortBy(spec service.SortSpec) {
	c.sort = spec
	c.metrics.ObserveCommand("sort", metrics.OutcomeOK)
	c.Render()
}

// SetSort parses a selector value such as "gpa.desc". Invalid values leave
// the current order in place.
func (c *Controller) SetSort(value string) error {
	spec, err := service.ParseSortSpec(value)
	if err != nil {
		c.metrics.ObserveCommand("sort", metrics.OutcomeRejected)
		return err
	}
	c.SortBy(spec)
	return nil
}

// Seed fills an empty roster with examples.
func (c *Controller) Seed(ctx context.Context) error {
	seeded, err := c.store.Seed(ctx)
	c.Render()
	if err != nil {
		return c.storageFailed("seed", err)
	}
	if !seeded {
		c.metrics.ObserveCommand("seed", metrics.OutcomeNoop)
		return nil
	}
	c.logger.Info("roster seeded", zap.Int("count", c.store.Len()))
	c.metrics.ObserveCommand("seed", metrics.OutcomeOK)
	return nil
}

// Clear empties the roster after the user confirms.
func (c *Controller) Clear(ctx context.Context) error {
	if !c.ui.Confirm(PromptClear) {
		c.metrics.ObserveCommand("clear", metrics.OutcomeCancelled)
		return nil
	}
	err := c.store.Clear(ctx)
	c.Render()
	c.ResetForm()
	if err != nil {
		return c.storageFailed("clear", err)
	}
	c.logger.Info("roster cleared")
	c.metrics.ObserveCommand("clear", metrics.OutcomeOK)
	return nil
}

// ResetForm blanks the form and returns to create mode.
func (c *Controller) ResetForm() {
	c.ui.FillForm(service.StudentForm{})
	c.ui.SetSubmitLabel(LabelSave)
	c.mode = CreateMode()
}

// Import reads CSV rows into the roster and repaints.
func (c *Controller) Import(ctx context.Context, r io.Reader) (service.ImportReport, error) {
	report, err := c.csv.Import(ctx, r)
	c.Render()
	if err != nil {
		if service.IsValidationError(err) {
			c.ui.Notify(err.Error())
			c.metrics.ObserveCommand("import", metrics.OutcomeRejected)
			return report, err
		}
		return report, c.storageFailed("import", err)
	}
	c.ui.Notify(fmt.Sprintf("Imported %d, updated %d, skipped %d, rejected %d.",
		report.Imported, report.Updated, report.Skipped, len(report.Errors)))
	c.metrics.ObserveCommand("import", metrics.OutcomeOK)
	return report, nil
}

// Export writes the whole roster as CSV.
func (c *Controller) Export(w io.Writer) error {
	return c.csv.Export(w)
}

func (c *Controller) storageFailed(command string, err error) error {
	c.logger.Error("command failed", zap.String("command", command), zap.Error(err))
	c.metrics.ObserveCommand(command, metrics.OutcomeError)
	c.ui.Notify("Could not save students: " + err.Error())
	return err
}
