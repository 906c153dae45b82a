package review

import (
	"context"
	"errors"
	"testing"

	"github.com/studyforge/studyforge/internal/exam"
)

type fakeOverrideAPI struct {
	err   error
	calls int
}

func (f *fakeOverrideAPI) Override(_ context.Context, _, _ int64) (exam.OverrideResult, error) {
	f.calls++
	return exam.OverrideResult{}, f.err
}

func gradedAttempt() exam.Attempt {
	return exam.Attempt{
		ID:       21,
		ExamID:   3,
		ScorePct: 50,
		Verdicts: []exam.Verdict{
			{QuestionID: 1, Correct: true},
			{QuestionID: 2, Correct: false},
			{QuestionID: 3, Correct: true},
			{QuestionID: 4, Correct: false},
		},
	}
}

func TestApplyFlipsAndRescores(t *testing.T) {
	api := &fakeOverrideAPI{}
	o := NewOverrider(api)

	a, err := o.Apply(context.Background(), gradedAttempt(), 2)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !a.Verdicts[1].Correct {
		t.Fatal("verdict not flipped")
	}
	if a.ScorePct != 75.0 {
		t.Fatalf("ScorePct = %v, want 75.0", a.ScorePct)
	}
	if api.calls != 1 {
		t.Fatalf("durable write issued %d times, want 1", api.calls)
	}

	// Second override on the same question restores verdict and score.
	a, err = o.Apply(context.Background(), a, 2)
	if err != nil {
		t.Fatalf("second Apply: %v", err)
	}
	if a.Verdicts[1].Correct {
		t.Fatal("second override did not restore verdict")
	}
	if a.ScorePct != 50.0 {
		t.Fatalf("ScorePct = %v, want 50.0", a.ScorePct)
	}
}

func TestApplyLocalFirstOnWriteFailure(t *testing.T) {
	api := &fakeOverrideAPI{err: errors.New("write rejected")}
	o := NewOverrider(api)

	orig := gradedAttempt()
	a, err := o.Apply(context.Background(), orig, 2)
	if err == nil {
		t.Fatal("Apply succeeded, want write error")
	}
	// The flip is reflected locally even though the write failed.
	if !a.Verdicts[1].Correct || a.ScorePct != 75.0 {
		t.Fatalf("local state = %+v, want flip applied", a)
	}
	// The input attempt was not mutated in place.
	if orig.Verdicts[1].Correct {
		t.Fatal("input attempt mutated")
	}
}

func TestApplyUnknownQuestion(t *testing.T) {
	api := &fakeOverrideAPI{}
	o := NewOverrider(api)

	a, err := o.Apply(context.Background(), gradedAttempt(), 99)
	if !errors.Is(err, exam.ErrVerdictNotFound) {
		t.Fatalf("err = %v, want ErrVerdictNotFound", err)
	}
	if a.ScorePct != 50.0 {
		t.Fatalf("score changed on failed precondition: %v", a.ScorePct)
	}
	if api.calls != 0 {
		t.Fatal("durable write issued for invalid override")
	}
}
