package exam

import (
	"context"
	"sync"
	"time"
)

// memoryStore is the zero-setup Store used by tests and offline demos. It
// mirrors the SQL store's semantics exactly.
type memoryStore struct {
	mu       sync.RWMutex
	nextExam int64
	nextAtt  int64
	exams    map[int64]Exam
	attempts map[int64]Attempt
}

func NewInMemoryStore() Store {
	return &memoryStore{
		nextExam: 1,
		nextAtt:  1,
		exams:    map[int64]Exam{},
		attempts: map[int64]Attempt{},
	}
}

func (m *memoryStore) PutExam(_ context.Context, e Exam) (Exam, error) {
	if len(e.Questions) == 0 {
		return Exam{}, ErrNoQuestions
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == 0 {
		e.ID = m.nextExam
		m.nextExam++
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().Unix()
	}
	m.exams[e.ID] = e
	return e, nil
}

func (m *memoryStore) GetExam(_ context.Context, id int64) (Exam, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.exams[id]
	if !ok {
		return Exam{}, ErrExamNotFound
	}
	return Sanitize(e), nil
}

func (m *memoryStore) PreviewAnswers(_ context.Context, examID int64) ([]PreviewAnswer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.exams[examID]
	if !ok {
		return nil, ErrExamNotFound
	}
	out := make([]PreviewAnswer, 0, len(e.Questions))
	for _, q := range e.Questions {
		out = append(out, PreviewAnswer{QuestionID: q.ID, CorrectAnswer: q.Answer})
	}
	return out, nil
}

func (m *memoryStore) Grade(_ context.Context, examID int64, answers []UserAnswer) (GradeReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.exams[examID]
	if !ok {
		return GradeReport{}, ErrExamNotFound
	}
	verdicts, pct := Evaluate(e.Questions, answers)
	a := Attempt{
		ID:         m.nextAtt,
		ExamID:     examID,
		ExamTitle:  e.Title,
		ScorePct:   pct,
		FinishedAt: time.Now().Unix(),
		Verdicts:   verdicts,
	}
	m.nextAtt++
	m.attempts[a.ID] = a
	return GradeReport{ScorePct: pct, PerQuestion: verdicts, AttemptID: a.ID}, nil
}

func (m *memoryStore) GetAttempt(_ context.Context, id int64) (Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attempts[id]
	if !ok {
		return Attempt{}, ErrAttemptNotFound
	}
	// Copy verdicts so callers cannot mutate store state in place.
	vs := make([]Verdict, len(a.Verdicts))
	copy(vs, a.Verdicts)
	a.Verdicts = vs
	return a, nil
}

func (m *memoryStore) ListAttempts(_ context.Context, opts ListOpts) ([]AttemptSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []AttemptSummary{}
	// Newest first; attempt ids are monotonic.
	for id := m.nextAtt - 1; id >= 1; id-- {
		a, ok := m.attempts[id]
		if !ok {
			continue
		}
		if opts.ExamID != 0 && a.ExamID != opts.ExamID {
			continue
		}
		out = append(out, AttemptSummary{
			ID:            a.ID,
			ExamID:        a.ExamID,
			ExamTitle:     a.ExamTitle,
			ScorePct:      a.ScorePct,
			FinishedAt:    a.FinishedAt,
			QuestionCount: len(a.Verdicts),
		})
	}
	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return []AttemptSummary{}, nil
		}
		out = out[opts.Offset:]
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *memoryStore) DeleteAttempt(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.attempts[id]; !ok {
		return ErrAttemptNotFound
	}
	delete(m.attempts, id)
	return nil
}

func (m *memoryStore) Override(_ context.Context, attemptID, questionID int64) (OverrideResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return OverrideResult{}, ErrAttemptNotFound
	}
	idx := -1
	for i, v := range a.Verdicts {
		if v.QuestionID == questionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return OverrideResult{}, ErrVerdictNotFound
	}
	a.Verdicts[idx].Correct = !a.Verdicts[idx].Correct
	a.ScorePct = Rescore(a.Verdicts)
	m.attempts[attemptID] = a
	return OverrideResult{
		QuestionID:  questionID,
		NewCorrect:  a.Verdicts[idx].Correct,
		NewScorePct: a.ScorePct,
	}, nil
}
