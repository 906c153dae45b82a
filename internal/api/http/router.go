package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/studyforge/studyforge/internal/exam"
)

// Mount attaches the exam and attempt API onto a router. The gateway mounts
// it behind its middleware stack; tests mount it bare.
func Mount(r chi.Router, store exam.Store) {
	r.Post("/exams", PutExamHandler(store))
	r.Get("/exams/{examID}", GetExamHandler(store))
	r.Post("/exams/{examID}/grade", GradeExamHandler(store))
	r.Get("/exams/{examID}/preview-answers", PreviewAnswersHandler(store))

	r.Get("/attempts/recent", ListAttemptsHandler(store))
	r.Get("/attempts/{attemptID}", GetAttemptHandler(store))
	r.Delete("/attempts/{attemptID}", DeleteAttemptHandler(store))
	r.Post("/attempts/{attemptID}/questions/{questionID}/override", OverrideHandler(store))
}
