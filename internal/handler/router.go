package handler

import (
	"net/http"

	"roster/internal/logging"
	"roster/internal/metrics"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// NewRouter mounts the page, API and operational routes behind CORS and an
// access log.
func NewRouter(h *RosterHandler, m *metrics.Metrics, allowedOrigins []string, logger *zap.Logger) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", h.Page).Methods("GET")
	r.HandleFunc("/search", h.Search).Methods("POST")
	r.HandleFunc("/sort", h.Sort).Methods("POST")
	r.HandleFunc("/students", h.Submit).Methods("POST")
	r.HandleFunc("/students/{id}/edit", h.Edit).Methods("POST")
	r.HandleFunc("/students/{id}/delete", h.Delete).Methods("POST")
	r.HandleFunc("/reset", h.Reset).Methods("POST")
	r.HandleFunc("/seed", h.Seed).Methods("POST")
	r.HandleFunc("/clear", h.Clear).Methods("POST")
	r.HandleFunc("/import", h.Import).Methods("POST")
	r.HandleFunc("/export", h.Export).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/students", h.ListStudents).Methods("GET")
	api.HandleFunc("/import", h.Import).Methods("POST")

	r.HandleFunc("/health", h.Health).Methods("GET")
	if m != nil {
		r.Handle("/metrics", m.Handler()).Methods("GET")
	}

	accessLog := zap.NewStdLog(logging.OrNop(logger)).Writer()
	cors := handlers.CORS(
		handlers.AllowedOrigins(allowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
	)
	return handlers.CombinedLoggingHandler(accessLog, cors(r))
}
