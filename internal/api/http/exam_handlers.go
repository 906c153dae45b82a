package http

import (
	"encoding/json"
	"net/http"

	"github.com/studyforge/studyforge/internal/exam"
)

// POST /exams — ingest an assembled exam. Question authoring lives upstream;
// this is the hand-off from the question bank.
func PutExamHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var e exam.Exam
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		saved, err := store.PutExam(r.Context(), e)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, exam.Sanitize(saved))
	}
}

// GET /exams/{examID} — student-safe exam, answer keys stripped.
func GetExamHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r, "examID")
		if !ok {
			http.Error(w, "examID required", http.StatusBadRequest)
			return
		}
		e, err := store.GetExam(r.Context(), id)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, e)
	}
}

// POST /exams/{examID}/grade — the authoritative grading round-trip. Body is
// the answer sheet; absent answers are graded incorrect. Creates the Attempt.
func GradeExamHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r, "examID")
		if !ok {
			http.Error(w, "examID required", http.StatusBadRequest)
			return
		}
		var answers []exam.UserAnswer
		if err := json.NewDecoder(r.Body).Decode(&answers); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		report, err := store.Grade(r.Context(), id, answers)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, report)
	}
}

// GET /exams/{examID}/preview-answers — canonical answers for practice-mode
// self-checks. Never part of official scoring.
func PreviewAnswersHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r, "examID")
		if !ok {
			http.Error(w, "examID required", http.StatusBadRequest)
			return
		}
		answers, err := store.PreviewAnswers(r.Context(), id)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, map[string]any{"answers": answers})
	}
}
