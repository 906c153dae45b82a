package http

import (
	"net/http"
	"strconv"

	"github.com/studyforge/studyforge/internal/exam"
)

// GET /attempts/{attemptID} — full review: ordered verdicts with user and
// canonical answers.
func GetAttemptHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r, "attemptID")
		if !ok {
			http.Error(w, "attemptID required", http.StatusBadRequest)
			return
		}
		a, err := store.GetAttempt(r.Context(), id)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, a)
	}
}

// GET /attempts/recent?limit=N&exam_id=M — newest attempts first.
func ListAttemptsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := exam.ListOpts{Limit: 10}
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				opts.Limit = n
			}
		}
		if v := r.URL.Query().Get("exam_id"); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				opts.ExamID = n
			}
		}
		sums, err := store.ListAttempts(r.Context(), opts)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, sums)
	}
}

// DELETE /attempts/{attemptID}
func DeleteAttemptHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r, "attemptID")
		if !ok {
			http.Error(w, "attemptID required", http.StatusBadRequest)
			return
		}
		if err := store.DeleteAttempt(r.Context(), id); err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, map[string]bool{"deleted": true})
	}
}

// POST /attempts/{attemptID}/questions/{questionID}/override — flip one
// verdict and recompute the score.
func OverrideHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attemptID, ok := urlID(r, "attemptID")
		if !ok {
			http.Error(w, "attemptID required", http.StatusBadRequest)
			return
		}
		questionID, ok := urlID(r, "questionID")
		if !ok {
			http.Error(w, "questionID required", http.StatusBadRequest)
			return
		}
		res, err := store.Override(r.Context(), attemptID, questionID)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, res)
	}
}
