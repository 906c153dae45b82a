package exam_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/studyforge/studyforge/internal/db"
	"github.com/studyforge/studyforge/internal/exam"
)

func openSQLStore(t *testing.T) *exam.SQLStore {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })
	return exam.NewSQLStore(dbh)
}

func seedSQLExam(t *testing.T, s exam.Store) exam.Exam {
	t.Helper()
	e, err := s.PutExam(context.Background(), exam.Exam{
		Title: "History final",
		Questions: []exam.Question{
			{ID: 1, Stem: "Year WW2 ended?", Type: "short", Answer: "1945"},
			{ID: 2, Stem: "Rome fell in 476.", Type: "truefalse", Answer: "true"},
			{ID: 3, Stem: "Axis powers?", Type: "multi", Options: []string{"Germany", "France", "Japan"}, Answer: []any{"Germany", "Japan"}},
			{ID: 4, Stem: "First Roman emperor?", Type: "mcq", Options: []string{"Caesar", "Augustus"}, Answer: "Augustus"},
		},
	})
	if err != nil {
		t.Fatalf("PutExam: %v", err)
	}
	if e.ID == 0 {
		t.Fatal("PutExam returned no id")
	}
	return e
}

func TestSQLStoreGradeAndReview(t *testing.T) {
	ctx := context.Background()
	s := openSQLStore(t)
	e := seedSQLExam(t, s)

	report, err := s.Grade(ctx, e.ID, []exam.UserAnswer{
		{QuestionID: 1, Response: " 1945 "},
		{QuestionID: 2, Response: "false"},
		{QuestionID: 3, Response: []any{"japan", "germany"}},
	})
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if report.ScorePct != 50.0 {
		t.Fatalf("ScorePct = %v, want 50.0", report.ScorePct)
	}

	a, err := s.GetAttempt(ctx, report.AttemptID)
	if err != nil {
		t.Fatalf("GetAttempt: %v", err)
	}
	if a.ExamTitle != "History final" || len(a.Verdicts) != 4 {
		t.Fatalf("attempt = %+v", a)
	}
	// Verdict order follows question order.
	for i, v := range a.Verdicts {
		if v.QuestionID != int64(i+1) {
			t.Fatalf("verdict %d has question %d", i, v.QuestionID)
		}
	}
	if a.Verdicts[0].CorrectAnswer != "1945" || a.Verdicts[0].UserAnswer != " 1945 " {
		t.Fatalf("verdict round-trip = %+v", a.Verdicts[0])
	}
	if a.Verdicts[3].Correct || a.Verdicts[3].UserAnswer != nil {
		t.Fatalf("unanswered verdict = %+v", a.Verdicts[3])
	}
}

func TestSQLStoreOverrideToggle(t *testing.T) {
	ctx := context.Background()
	s := openSQLStore(t)
	e := seedSQLExam(t, s)

	report, err := s.Grade(ctx, e.ID, []exam.UserAnswer{
		{QuestionID: 1, Response: "1945"},
		{QuestionID: 3, Response: []any{"Germany", "Japan"}},
	})
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if report.ScorePct != 50.0 {
		t.Fatalf("ScorePct = %v, want 50.0", report.ScorePct)
	}

	res, err := s.Override(ctx, report.AttemptID, 2)
	if err != nil {
		t.Fatalf("Override: %v", err)
	}
	if !res.NewCorrect || res.NewScorePct != 75.0 {
		t.Fatalf("override = %+v", res)
	}
	res, err = s.Override(ctx, report.AttemptID, 2)
	if err != nil {
		t.Fatalf("second Override: %v", err)
	}
	if res.NewCorrect || res.NewScorePct != 50.0 {
		t.Fatalf("second override = %+v", res)
	}

	if _, err := s.Override(ctx, report.AttemptID, 42); !errors.Is(err, exam.ErrVerdictNotFound) {
		t.Fatalf("err = %v, want ErrVerdictNotFound", err)
	}
	if _, err := s.Override(ctx, 4242, 1); !errors.Is(err, exam.ErrAttemptNotFound) {
		t.Fatalf("err = %v, want ErrAttemptNotFound", err)
	}
}

func TestSQLStoreListAndDelete(t *testing.T) {
	ctx := context.Background()
	s := openSQLStore(t)
	e := seedSQLExam(t, s)

	var ids []int64
	for i := 0; i < 3; i++ {
		r, err := s.Grade(ctx, e.ID, nil)
		if err != nil {
			t.Fatalf("Grade: %v", err)
		}
		ids = append(ids, r.AttemptID)
	}

	sums, err := s.ListAttempts(ctx, exam.ListOpts{Limit: 10})
	if err != nil {
		t.Fatalf("ListAttempts: %v", err)
	}
	if len(sums) != 3 || sums[0].ID != ids[2] {
		t.Fatalf("ListAttempts = %+v, want 3 rows newest first", sums)
	}
	if sums[0].QuestionCount != 4 {
		t.Fatalf("QuestionCount = %d, want 4", sums[0].QuestionCount)
	}

	if err := s.DeleteAttempt(ctx, ids[2]); err != nil {
		t.Fatalf("DeleteAttempt: %v", err)
	}
	if _, err := s.GetAttempt(ctx, ids[2]); !errors.Is(err, exam.ErrAttemptNotFound) {
		t.Fatalf("err = %v, want ErrAttemptNotFound", err)
	}
	if err := s.DeleteAttempt(ctx, ids[2]); !errors.Is(err, exam.ErrAttemptNotFound) {
		t.Fatalf("double delete err = %v", err)
	}
}

func TestSQLStoreSanitizesExam(t *testing.T) {
	ctx := context.Background()
	s := openSQLStore(t)
	e := seedSQLExam(t, s)

	got, err := s.GetExam(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetExam: %v", err)
	}
	for _, q := range got.Questions {
		if q.Answer != nil {
			t.Fatalf("question %d leaked canonical answer", q.ID)
		}
	}
	pa, err := s.PreviewAnswers(ctx, e.ID)
	if err != nil {
		t.Fatalf("PreviewAnswers: %v", err)
	}
	if len(pa) != 4 || pa[3].CorrectAnswer != "Augustus" {
		t.Fatalf("preview = %+v", pa)
	}
	if _, err := s.GetExam(ctx, 999); !errors.Is(err, exam.ErrExamNotFound) {
		t.Fatalf("err = %v, want ErrExamNotFound", err)
	}
}
