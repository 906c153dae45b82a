// Package session holds the client-owned working state of one in-progress
// exam: the loaded questions, the answer sheet, bookmarks, and the
// navigation cursor. It performs no I/O; submission lives in Submitter.
package session

import (
	"errors"
	"sync"

	"github.com/studyforge/studyforge/internal/exam"
	"github.com/studyforge/studyforge/internal/grading"
)

// State is the session lifecycle. Modeling it explicitly keeps submit
// re-entrancy and post-grade edits structurally impossible instead of
// guarded by ad hoc flags.
type State int

const (
	StateEmpty State = iota
	StateLoaded
	StateInProgress
	StateSubmitting
	StateReviewed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoaded:
		return "loaded"
	case StateInProgress:
		return "in_progress"
	case StateSubmitting:
		return "submitting"
	case StateReviewed:
		return "reviewed"
	}
	return "unknown"
}

var (
	ErrNoExam          = errors.New("no exam loaded")
	ErrUnknownQuestion = errors.New("question not in loaded exam")
	ErrSubmitInFlight  = errors.New("submission already in flight")
	ErrAlreadyGraded   = errors.New("session already graded")
)

type Session struct {
	mu        sync.Mutex
	state     State
	examID    int64
	questions []exam.Question
	answers   map[int64]any
	bookmarks map[int64]struct{}
	cursor    int
}

func New() *Session {
	return &Session{answers: map[int64]any{}, bookmarks: map[int64]struct{}{}}
}

// Load replaces the whole session with a freshly assembled exam: answers and
// bookmarks cleared, cursor at 0. Allowed from any state, so loading a new
// exam is also how a reviewed session is discarded.
func (s *Session) Load(examID int64, questions []exam.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateLoaded
	s.examID = examID
	s.questions = append([]exam.Question(nil), questions...)
	s.answers = map[int64]any{}
	s.bookmarks = map[int64]struct{}{}
	s.cursor = 0
}

// Reset returns the session to the unloaded state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateEmpty
	s.examID = 0
	s.questions = nil
	s.answers = map[int64]any{}
	s.bookmarks = map[int64]struct{}{}
	s.cursor = 0
}

// SetAnswer records the user's answer for one question, overwriting any
// prior value. The value's shape is not validated against the question type;
// the grading rules normalize whatever arrives. Rejected once a submission
// has been dispatched.
func (s *Session) SetAnswer(questionID int64, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateEmpty:
		return ErrNoExam
	case StateSubmitting:
		return ErrSubmitInFlight
	case StateReviewed:
		return ErrAlreadyGraded
	}
	if !s.hasQuestion(questionID) {
		return ErrUnknownQuestion
	}
	s.answers[questionID] = value
	s.state = StateInProgress
	return nil
}

// ToggleBookmark flips a question's bookmark. Two calls restore the set.
func (s *Session) ToggleBookmark(questionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateEmpty {
		return ErrNoExam
	}
	if !s.hasQuestion(questionID) {
		return ErrUnknownQuestion
	}
	if _, ok := s.bookmarks[questionID]; ok {
		delete(s.bookmarks, questionID)
	} else {
		s.bookmarks[questionID] = struct{}{}
	}
	return nil
}

func (s *Session) Bookmarked(questionID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.bookmarks[questionID]
	return ok
}

// GoTo moves the cursor, clamped to [0, len-1]. No-op on an empty session.
func (s *Session) GoTo(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor = s.clamp(index)
}

func (s *Session) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor = s.clamp(s.cursor + 1)
}

func (s *Session) Prev() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor = s.clamp(s.cursor - 1)
}

func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Current returns the question under the cursor.
func (s *Session) Current() (exam.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.questions) == 0 {
		return exam.Question{}, false
	}
	return s.questions[s.cursor], true
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) ExamID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.examID
}

func (s *Session) Questions() []exam.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]exam.Question(nil), s.questions...)
}

// Answer returns the recorded answer for a question, nil if unanswered.
func (s *Session) Answer(questionID int64) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers[questionID]
}

// Unanswered lists question ids with no recorded answer, in exam order. The
// UI uses this to warn before a gappy submission; submission itself never
// blocks on it.
func (s *Session) Unanswered() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []int64
	for _, q := range s.questions {
		if !grading.Answered(s.answers[q.ID]) {
			out = append(out, q.ID)
		}
	}
	return out
}

func (s *Session) hasQuestion(id int64) bool {
	for _, q := range s.questions {
		if q.ID == id {
			return true
		}
	}
	return false
}

func (s *Session) clamp(i int) int {
	n := len(s.questions)
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// beginSubmit snapshots the answer sheet and moves the session into
// Submitting. Edits made after the snapshot do not change what is graded.
func (s *Session) beginSubmit() (int64, []exam.UserAnswer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateEmpty:
		return 0, nil, ErrNoExam
	case StateSubmitting:
		return 0, nil, ErrSubmitInFlight
	case StateReviewed:
		return 0, nil, ErrAlreadyGraded
	}
	sheet := make([]exam.UserAnswer, 0, len(s.questions))
	for _, q := range s.questions {
		if v, ok := s.answers[q.ID]; ok {
			sheet = append(sheet, exam.UserAnswer{QuestionID: q.ID, Response: v})
		}
	}
	s.state = StateSubmitting
	return s.examID, sheet, nil
}

// completeSubmit moves a Submitting session to Reviewed.
func (s *Session) completeSubmit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitting {
		s.state = StateReviewed
	}
}

// rollbackSubmit returns a failed submission to InProgress with the answer
// sheet untouched, so retrying is safe.
func (s *Session) rollbackSubmit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitting {
		s.state = StateInProgress
	}
}
