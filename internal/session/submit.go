package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/studyforge/studyforge/internal/exam"
	"github.com/studyforge/studyforge/internal/grading"
)

// ErrBadGradeResponse marks a grading response the client must not trust,
// e.g. one without an attempt id. The session is rolled back, not Reviewed.
var ErrBadGradeResponse = errors.New("invalid grading response")

// GradingAPI is the slice of the grading service the submitter needs.
type GradingAPI interface {
	Grade(ctx context.Context, examID int64, answers []exam.UserAnswer) (exam.GradeReport, error)
}

// PreviewAPI fetches canonical answers for practice-mode self-checks.
type PreviewAPI interface {
	PreviewAnswers(ctx context.Context, examID int64) ([]exam.PreviewAnswer, error)
}

// Submitter turns a session into a persisted attempt via the authoritative
// grading service. One round-trip per successful submission; a second call
// while one is in flight is rejected, never fired concurrently.
type Submitter struct {
	api GradingAPI
}

func NewSubmitter(api GradingAPI) *Submitter { return &Submitter{api: api} }

// Submit snapshots the session's answers, grades them remotely and moves the
// session to Reviewed. On any failure the session returns to InProgress with
// its answers intact.
func (sub *Submitter) Submit(ctx context.Context, s *Session) (exam.GradeReport, error) {
	examID, sheet, err := s.beginSubmit()
	if err != nil {
		return exam.GradeReport{}, err
	}
	report, err := sub.api.Grade(ctx, examID, sheet)
	if err != nil {
		s.rollbackSubmit()
		return exam.GradeReport{}, fmt.Errorf("submit exam %d: %w", examID, err)
	}
	if report.AttemptID == 0 {
		s.rollbackSubmit()
		return exam.GradeReport{}, fmt.Errorf("submit exam %d: %w: missing attempt id", examID, ErrBadGradeResponse)
	}
	s.completeSubmit()
	return report, nil
}

// Checker is the practice-mode "check answer" path. It prefetches the
// canonical answers once and then evaluates local answers with the same
// rules the server grades with. Purely ephemeral: nothing is persisted and
// a check can be repeated any number of times.
type Checker struct {
	canonical map[int64]any
}

func NewChecker(ctx context.Context, api PreviewAPI, examID int64) (*Checker, error) {
	answers, err := api.PreviewAnswers(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("fetch preview answers for exam %d: %w", examID, err)
	}
	m := make(map[int64]any, len(answers))
	for _, a := range answers {
		m[a.QuestionID] = a.CorrectAnswer
	}
	return &Checker{canonical: m}, nil
}

// Check grades the session's current answer for one question locally.
func (c *Checker) Check(s *Session, questionID int64) (bool, error) {
	var qtype string
	found := false
	for _, q := range s.Questions() {
		if q.ID == questionID {
			qtype = q.Type
			found = true
			break
		}
	}
	if !found {
		return false, ErrUnknownQuestion
	}
	canonical, ok := c.canonical[questionID]
	if !ok {
		return false, ErrUnknownQuestion
	}
	return grading.IsCorrect(qtype, canonical, s.Answer(questionID)), nil
}

// Reveal exposes the canonical answer for one question, for the UI's
// "show answer" affordance after a self-check.
func (c *Checker) Reveal(questionID int64) (any, bool) {
	v, ok := c.canonical[questionID]
	return v, ok
}
