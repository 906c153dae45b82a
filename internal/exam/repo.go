package exam

import (
	"context"
	"errors"
)

var (
	ErrExamNotFound    = errors.New("exam not found")
	ErrAttemptNotFound = errors.New("attempt not found")
	ErrVerdictNotFound = errors.New("verdict not found")
	ErrNoQuestions     = errors.New("exam has no questions")
)

// ListOpts filters the recent-attempts listing.
type ListOpts struct {
	ExamID int64 // 0 = all exams
	Limit  int
	Offset int
}

// Store is the persistence surface for exams and graded attempts. Grade is
// the only way an Attempt comes into existence; Override is the only
// mutation allowed afterwards.
type Store interface {
	PutExam(ctx context.Context, e Exam) (Exam, error)
	// GetExam returns the exam with canonical answers stripped.
	GetExam(ctx context.Context, id int64) (Exam, error)
	// PreviewAnswers returns the canonical answers in question order.
	PreviewAnswers(ctx context.Context, examID int64) ([]PreviewAnswer, error)

	// Grade evaluates answers against the exam's answer key, persists the
	// resulting Attempt with its ordered verdicts, and returns the report.
	Grade(ctx context.Context, examID int64, answers []UserAnswer) (GradeReport, error)

	GetAttempt(ctx context.Context, id int64) (Attempt, error)
	ListAttempts(ctx context.Context, opts ListOpts) ([]AttemptSummary, error)
	DeleteAttempt(ctx context.Context, id int64) error

	// Override flips the correctness of one verdict and recomputes the
	// attempt's score from the full verdict set. Applying it twice to the
	// same question restores the original verdict and score.
	Override(ctx context.Context, attemptID, questionID int64) (OverrideResult, error)
}
