package exam

import (
	"context"
	"errors"
	"testing"
)

func seedExam(t *testing.T, s Store) Exam {
	t.Helper()
	e, err := s.PutExam(context.Background(), Exam{
		Title: "Biology midterm",
		Questions: []Question{
			{ID: 1, Stem: "Capital of France?", Type: "mcq", Options: []string{"London", "Paris"}, Answer: "Paris"},
			{ID: 2, Stem: "The sun orbits the earth.", Type: "truefalse", Answer: "false"},
			{ID: 3, Stem: "Which are mammals?", Type: "multi", Options: []string{"Whale", "Shark", "Bat"}, Answer: []any{"Whale", "Bat"}},
			{ID: 4, Stem: "Powerhouse of the cell?", Type: "short", Answer: "mitochondria"},
		},
	})
	if err != nil {
		t.Fatalf("PutExam: %v", err)
	}
	return e
}

func TestGradeScenario(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	e := seedExam(t, s)

	// One correct mcq, one wrong truefalse, one multi in a different order,
	// one short left blank.
	report, err := s.Grade(ctx, e.ID, []UserAnswer{
		{QuestionID: 1, Response: "paris"},
		{QuestionID: 2, Response: "true"},
		{QuestionID: 3, Response: []any{"Bat", "Whale"}},
	})
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if report.ScorePct != 50.0 {
		t.Fatalf("ScorePct = %v, want 50.0", report.ScorePct)
	}
	if report.AttemptID == 0 {
		t.Fatal("missing attempt id")
	}
	if len(report.PerQuestion) != 4 {
		t.Fatalf("got %d verdicts, want 4", len(report.PerQuestion))
	}
	wantCorrect := []bool{true, false, true, false}
	for i, v := range report.PerQuestion {
		if v.Correct != wantCorrect[i] {
			t.Errorf("verdict %d (q%d): correct = %v, want %v", i, v.QuestionID, v.Correct, wantCorrect[i])
		}
	}
	// Blank short answer is still present, marked incorrect.
	if last := report.PerQuestion[3]; last.UserAnswer != nil || last.Correct {
		t.Errorf("blank answer verdict = %+v, want unanswered incorrect", last)
	}
}

func TestOverrideToggleRestoresScore(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	e := seedExam(t, s)

	report, err := s.Grade(ctx, e.ID, []UserAnswer{
		{QuestionID: 1, Response: "Paris"},
		{QuestionID: 2, Response: "true"},
		{QuestionID: 3, Response: []any{"Whale", "Bat"}},
	})
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if report.ScorePct != 50.0 {
		t.Fatalf("initial ScorePct = %v, want 50.0", report.ScorePct)
	}

	res, err := s.Override(ctx, report.AttemptID, 2)
	if err != nil {
		t.Fatalf("Override: %v", err)
	}
	if !res.NewCorrect || res.NewScorePct != 75.0 {
		t.Fatalf("first override = %+v, want correct=true score=75.0", res)
	}

	res, err = s.Override(ctx, report.AttemptID, 2)
	if err != nil {
		t.Fatalf("second Override: %v", err)
	}
	if res.NewCorrect || res.NewScorePct != 50.0 {
		t.Fatalf("second override = %+v, want correct=false score=50.0", res)
	}

	a, err := s.GetAttempt(ctx, report.AttemptID)
	if err != nil {
		t.Fatalf("GetAttempt: %v", err)
	}
	if a.ScorePct != 50.0 {
		t.Fatalf("persisted ScorePct = %v, want 50.0", a.ScorePct)
	}
}

func TestOverrideUnknownQuestion(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	e := seedExam(t, s)
	report, _ := s.Grade(ctx, e.ID, nil)

	if _, err := s.Override(ctx, report.AttemptID, 999); !errors.Is(err, ErrVerdictNotFound) {
		t.Fatalf("err = %v, want ErrVerdictNotFound", err)
	}
	if _, err := s.Override(ctx, 999, 1); !errors.Is(err, ErrAttemptNotFound) {
		t.Fatalf("err = %v, want ErrAttemptNotFound", err)
	}
}

func TestGetExamStripsAnswers(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	e := seedExam(t, s)

	got, err := s.GetExam(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetExam: %v", err)
	}
	for _, q := range got.Questions {
		if q.Answer != nil {
			t.Fatalf("question %d leaked canonical answer %v", q.ID, q.Answer)
		}
	}
	// The stored exam still has its keys for grading and preview.
	pa, err := s.PreviewAnswers(ctx, e.ID)
	if err != nil {
		t.Fatalf("PreviewAnswers: %v", err)
	}
	if len(pa) != 4 || pa[0].CorrectAnswer != "Paris" {
		t.Fatalf("preview answers = %+v", pa)
	}
}

func TestListAndDeleteAttempts(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	e := seedExam(t, s)

	var last int64
	for i := 0; i < 3; i++ {
		r, err := s.Grade(ctx, e.ID, nil)
		if err != nil {
			t.Fatalf("Grade: %v", err)
		}
		last = r.AttemptID
	}

	sums, err := s.ListAttempts(ctx, ListOpts{Limit: 2})
	if err != nil {
		t.Fatalf("ListAttempts: %v", err)
	}
	if len(sums) != 2 || sums[0].ID != last {
		t.Fatalf("ListAttempts = %+v, want newest first, 2 rows", sums)
	}
	if sums[0].QuestionCount != 4 {
		t.Fatalf("QuestionCount = %d, want 4", sums[0].QuestionCount)
	}

	if err := s.DeleteAttempt(ctx, last); err != nil {
		t.Fatalf("DeleteAttempt: %v", err)
	}
	if _, err := s.GetAttempt(ctx, last); !errors.Is(err, ErrAttemptNotFound) {
		t.Fatalf("err = %v, want ErrAttemptNotFound", err)
	}
	if err := s.DeleteAttempt(ctx, last); !errors.Is(err, ErrAttemptNotFound) {
		t.Fatalf("double delete err = %v, want ErrAttemptNotFound", err)
	}
}

func TestScoreInvariant(t *testing.T) {
	cases := []struct {
		correct, total int
		want           float64
	}{
		{0, 1, 0}, {1, 1, 100}, {2, 4, 50}, {3, 4, 75}, {1, 3, 33.33}, {2, 3, 66.67},
	}
	for _, c := range cases {
		if got := Score(c.correct, c.total); got != c.want {
			t.Errorf("Score(%d,%d) = %v, want %v", c.correct, c.total, got, c.want)
		}
	}
	if got := Score(0, 0); got != 0 {
		t.Errorf("Score(0,0) = %v, want 0", got)
	}
}
