// Package review owns the post-grading side of an attempt: the single
// mutation allowed on a persisted attempt is flipping one verdict's
// correctness, with the score recomputed from the full verdict set.
package review

import (
	"context"
	"fmt"
	"sync"

	"github.com/studyforge/studyforge/internal/exam"
)

// OverrideAPI is the slice of the grading service needed for durable
// override writes.
type OverrideAPI interface {
	Override(ctx context.Context, attemptID, questionID int64) (exam.OverrideResult, error)
}

// Overrider applies verdict overrides local-state-first: the returned
// attempt always carries the flip, and the durable write is issued in the
// same call. Applying the same override twice restores both the verdict and
// the score.
type Overrider struct {
	mu  sync.Mutex
	api OverrideAPI
}

func NewOverrider(api OverrideAPI) *Overrider { return &Overrider{api: api} }

// Apply flips the correctness of one verdict in the attempt and recomputes
// scorePct over the whole verdict sequence. If the durable write fails, the
// returned attempt still reflects the flip and the error reports the failed
// write so the caller can surface it.
func (o *Overrider) Apply(ctx context.Context, a exam.Attempt, questionID int64) (exam.Attempt, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	idx := -1
	for i, v := range a.Verdicts {
		if v.QuestionID == questionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return a, fmt.Errorf("override attempt %d question %d: %w", a.ID, questionID, exam.ErrVerdictNotFound)
	}

	verdicts := make([]exam.Verdict, len(a.Verdicts))
	copy(verdicts, a.Verdicts)
	verdicts[idx].Correct = !verdicts[idx].Correct
	a.Verdicts = verdicts
	a.ScorePct = exam.Rescore(verdicts)

	if _, err := o.api.Override(ctx, a.ID, questionID); err != nil {
		return a, fmt.Errorf("persist override for attempt %d question %d: %w", a.ID, questionID, err)
	}
	return a, nil
}
