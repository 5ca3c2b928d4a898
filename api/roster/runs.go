package roster

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mpelletier/rosterd/core/roster/runlog"
)

// NewRunLogHandler returns an HTTP handler exposing run logs via GET /api/roster/runs.
// Requests must include an Authorization header with "Bearer <token>" when token is non-empty.
// Filters: start/end (RFC3339), staff_id, student_id, strategy.
func NewRunLogHandler(store runlog.LogStore, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token != "" {
			auth := r.Header.Get("Authorization")
			if auth != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		q := runlog.LogQuery{}
		if s := r.URL.Query().Get("start"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.Start = t
			}
		}
		if s := r.URL.Query().Get("end"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.End = t
			}
		}
		q.StaffID = r.URL.Query().Get("staff_id")
		q.StudentID = r.URL.Query().Get("student_id")
		q.Strategy = r.URL.Query().Get("strategy")
		records, err := store.Query(r.Context(), q)
		if errors.Is(err, runlog.ErrClosed) {
			http.Error(w, "run log unavailable", http.StatusServiceUnavailable)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
