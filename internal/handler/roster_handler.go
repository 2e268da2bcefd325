package handler

import (
	"context"
	_ "embed"
	"encoding/json"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"time"

	"roster/internal/controller"
	"roster/internal/logging"
	"roster/internal/render"
	"roster/internal/service"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

//go:embed templates/page.html
var pageHTML string

var pageTemplate = template.Must(template.New("page").Parse(pageHTML))

const maxUploadSize = 10 << 20 // 10MB

// RosterHandler serves the roster page and its JSON API. All requests that
// touch the controller run one at a time.
type RosterHandler struct {
	mu     sync.Mutex
	ctrl   *controller.Controller
	page   *pageUI
	logger *zap.Logger
}

// NewRosterHandler builds the page adapter and its controller. Call Start
// before serving.
func NewRosterHandler(store *service.RosterStore, logger *zap.Logger, opts ...controller.Option) *RosterHandler {
	page := &pageUI{}
	logger = logging.OrNop(logger)
	opts = append([]controller.Option{controller.WithLogger(logger)}, opts...)
	return &RosterHandler{
		ctrl:   controller.New(store, page, opts...),
		page:   page,
		logger: logger,
	}
}

// Start loads the roster. Notices raised while loading are shown on the
// first page view.
func (h *RosterHandler) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.page.beginRequest("/", false)
	return h.ctrl.Start(ctx)
}

type sortOption struct {
	Value    string
	Label    string
	Selected bool
}

type pageData struct {
	Notices       []string
	Prompt        string
	PendingAction string
	Form          service.StudentForm
	SubmitLabel   string
	Query         string
	SortOptions   []sortOption
	Rows          template.HTML
	Empty         bool
}

var sortLabels = map[service.SortField]string{
	service.SortByName:  "Name",
	service.SortByCode:  "Student ID",
	service.SortByMajor: "Major",
	service.SortByGPA:   "GPA",
}

// writePage renders the page. Table rows arrive already escaped.
func (h *RosterHandler) writePage(w http.ResponseWriter, status int) {
	current := h.ctrl.Sort()
	var opts []sortOption
	for _, spec := range service.SortOptions() {
		arrow := "↑"
		if spec.Direction == service.Descending {
			arrow = "↓"
		}
		opts = append(opts, sortOption{
			Value:    spec.String(),
			Label:    sortLabels[spec.Field] + " " + arrow,
			Selected: spec == current,
		})
	}

	data := pageData{
		Notices:       h.page.notices,
		Prompt:        h.page.prompt,
		PendingAction: h.page.pendingAction,
		Form:          h.page.form,
		SubmitLabel:   h.page.submitLabel,
		Query:         h.ctrl.Query(),
		SortOptions:   opts,
		Rows:          template.HTML(h.page.table.HTML()),
		Empty:         h.page.table.Empty,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		h.logger.Error("failed to render page", zap.Error(err))
	}
}

// command runs fn against the controller with this request's confirmation
// flag, then renders the page. Validation failures answer 422 and storage
// failures 500; the page is rendered either way.
func (h *RosterHandler) command(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.page.beginRequest(r.URL.Path, r.FormValue("confirm") == "yes")
	status := http.StatusOK
	if err := fn(r.Context()); err != nil {
		status = http.StatusInternalServerError
		if service.IsValidationError(err) {
			status = http.StatusUnprocessableEntity
		}
	}
	h.writePage(w, status)
	h.page.endRequest()
}

// Page shows the current state. Notices raised by Start appear on the first
// view only.
func (h *RosterHandler) Page(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.writePage(w, http.StatusOK)
	h.page.endRequest()
}

func (h *RosterHandler) Submit(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, func(ctx context.Context) error {
		h.page.form = service.StudentForm{
			Name:  r.FormValue("name"),
			Code:  r.FormValue("code"),
			Major: r.FormValue("major"),
			GPA:   r.FormValue("gpa"),
		}
		return h.ctrl.Submit(ctx)
	})
}

func (h *RosterHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	h.command(w, r, func(ctx context.Context) error {
		return h.ctrl.HandleAction(ctx, controller.ActionEdit, id)
	})
}

func (h *RosterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	h.command(w, r, func(ctx context.Context) error {
		return h.ctrl.HandleAction(ctx, controller.ActionDelete, id)
	})
}

func (h *RosterHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, func(context.Context) error {
		h.ctrl.ResetForm()
		return nil
	})
}

func (h *RosterHandler) Search(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, func(context.Context) error {
		h.ctrl.Search(r.FormValue("q"))
		return nil
	})
}

func (h *RosterHandler) Sort(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, func(context.Context) error {
		if err := h.ctrl.SetSort(r.FormValue("sort")); err != nil {
			h.page.Notify("Unknown sort order.")
			return &service.ValidationError{Field: "sort", Message: err.Error()}
		}
		return nil
	})
}

func (h *RosterHandler) Seed(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, h.ctrl.Seed)
}

func (h *RosterHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, h.ctrl.Clear)
}

// ListStudents returns the derived list as JSON. q and sort default to the
// page's current view state and do not change it.
func (h *RosterHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	h.mu.Lock()
	q := h.ctrl.Query()
	if query.Has("q") {
		q = query.Get("q")
	}
	spec := h.ctrl.Sort()
	if raw := query.Get("sort"); raw != "" {
		parsed, err := service.ParseSortSpec(raw)
		if err != nil {
			h.mu.Unlock()
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		spec = parsed
	}
	table := render.Render(h.ctrl.Derive(q, spec))
	total := h.ctrl.Store().Len()
	h.mu.Unlock()

	response := map[string]interface{}{
		"data":  table.Rows,
		"empty": table.Empty,
		"query": q,
		"sort":  spec.String(),
		"total": total,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Warn("error encoding response", zap.Error(err))
	}
}

func (h *RosterHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	total := h.ctrl.Store().Len()
	h.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ok",
		"service":   "roster",
		"students":  total,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}
