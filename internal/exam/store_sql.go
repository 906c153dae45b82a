package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	syncx "github.com/studyforge/studyforge/internal/sync"
)

type SQLStore struct {
	db     *sql.DB
	events *syncx.EventRepo
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, events: syncx.NewEventRepo(db)}
}

func (s *SQLStore) PutExam(ctx context.Context, e Exam) (Exam, error) {
	if len(e.Questions) == 0 {
		return Exam{}, ErrNoQuestions
	}
	qj, err := json.Marshal(e.Questions)
	if err != nil {
		return Exam{}, err
	}
	now := time.Now().Unix()
	if e.ID != 0 {
		_, err = s.db.ExecContext(ctx,
			`UPDATE exams SET title=$1, questions_json=$2 WHERE id=$3`,
			e.Title, string(qj), e.ID)
		return e, err
	}
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO exams (title, questions_json, created_at)
		 VALUES ($1,$2,$3) RETURNING id`,
		e.Title, string(qj), now).Scan(&e.ID)
	if err != nil {
		return Exam{}, err
	}
	e.CreatedAt = now
	return e, nil
}

// GetExam returns a student-safe exam, answer keys stripped.
func (s *SQLStore) GetExam(ctx context.Context, id int64) (Exam, error) {
	e, err := s.getExamFull(ctx, id)
	if err != nil {
		return Exam{}, err
	}
	return Sanitize(e), nil
}

func (s *SQLStore) getExamFull(ctx context.Context, id int64) (Exam, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, questions_json, created_at FROM exams WHERE id=$1`, id)
	var e Exam
	var qjson string
	if err := row.Scan(&e.ID, &e.Title, &qjson, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Exam{}, ErrExamNotFound
		}
		return Exam{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &e.Questions); err != nil {
		return Exam{}, fmt.Errorf("decode exam %d questions: %w", id, err)
	}
	return e, nil
}

func (s *SQLStore) PreviewAnswers(ctx context.Context, examID int64) ([]PreviewAnswer, error) {
	e, err := s.getExamFull(ctx, examID)
	if err != nil {
		return nil, err
	}
	out := make([]PreviewAnswer, 0, len(e.Questions))
	for _, q := range e.Questions {
		out = append(out, PreviewAnswer{QuestionID: q.ID, CorrectAnswer: q.Answer})
	}
	return out, nil
}

func (s *SQLStore) Grade(ctx context.Context, examID int64, answers []UserAnswer) (GradeReport, error) {
	e, err := s.getExamFull(ctx, examID)
	if err != nil {
		return GradeReport{}, err
	}
	verdicts, pct := Evaluate(e.Questions, answers)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return GradeReport{}, err
	}
	defer tx.Rollback()

	var attemptID int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO attempts (exam_id, score_pct, finished_at)
		 VALUES ($1,$2,$3) RETURNING id`,
		examID, pct, time.Now().Unix()).Scan(&attemptID)
	if err != nil {
		return GradeReport{}, err
	}
	for i, v := range verdicts {
		rj, _ := json.Marshal(v.UserAnswer)
		cj, _ := json.Marshal(v.CorrectAnswer)
		_, err = tx.ExecContext(ctx,
			`INSERT INTO attempt_answers (attempt_id, question_id, position, response_json, correct_json, correct)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			attemptID, v.QuestionID, i, string(rj), string(cj), v.Correct)
		if err != nil {
			return GradeReport{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return GradeReport{}, err
	}

	s.audit(ctx, syncx.EventAttemptGraded, attemptID, map[string]any{
		"exam_id": examID, "score_pct": pct, "questions": len(verdicts),
	})
	return GradeReport{ScorePct: pct, PerQuestion: verdicts, AttemptID: attemptID}, nil
}

func (s *SQLStore) GetAttempt(ctx context.Context, id int64) (Attempt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT a.id, a.exam_id, e.title, a.score_pct, a.finished_at
		 FROM attempts a JOIN exams e ON e.id = a.exam_id
		 WHERE a.id=$1`, id)
	var a Attempt
	if err := row.Scan(&a.ID, &a.ExamID, &a.ExamTitle, &a.ScorePct, &a.FinishedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, ErrAttemptNotFound
		}
		return Attempt{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT question_id, response_json, correct_json, correct
		 FROM attempt_answers WHERE attempt_id=$1 ORDER BY position`, id)
	if err != nil {
		return Attempt{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var v Verdict
		var rj, cj string
		if err := rows.Scan(&v.QuestionID, &rj, &cj, &v.Correct); err != nil {
			return Attempt{}, err
		}
		_ = json.Unmarshal([]byte(rj), &v.UserAnswer)
		_ = json.Unmarshal([]byte(cj), &v.CorrectAnswer)
		a.Verdicts = append(a.Verdicts, v)
	}
	if err := rows.Err(); err != nil {
		return Attempt{}, err
	}
	return a, nil
}

func (s *SQLStore) ListAttempts(ctx context.Context, opts ListOpts) ([]AttemptSummary, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	q := `SELECT a.id, a.exam_id, e.title, a.score_pct, a.finished_at,
	             (SELECT COUNT(*) FROM attempt_answers aa WHERE aa.attempt_id = a.id)
	      FROM attempts a JOIN exams e ON e.id = a.exam_id`
	args := []any{}
	if opts.ExamID != 0 {
		q += ` WHERE a.exam_id=$1`
		args = append(args, opts.ExamID)
	}
	q += fmt.Sprintf(` ORDER BY a.finished_at DESC, a.id DESC LIMIT %d OFFSET %d`, limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []AttemptSummary{}
	for rows.Next() {
		var sum AttemptSummary
		if err := rows.Scan(&sum.ID, &sum.ExamID, &sum.ExamTitle, &sum.ScorePct, &sum.FinishedAt, &sum.QuestionCount); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteAttempt(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM attempts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAttemptNotFound
	}
	s.audit(ctx, syncx.EventAttemptDeleted, id, nil)
	return nil
}

// Override flips one verdict inside a transaction and recomputes the score
// from the full verdict set, so two overrides on the same question cancel
// exactly.
func (s *SQLStore) Override(ctx context.Context, attemptID, questionID int64) (OverrideResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return OverrideResult{}, err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM attempts WHERE id=$1`, attemptID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return OverrideResult{}, ErrAttemptNotFound
		}
		return OverrideResult{}, err
	}

	var correct bool
	err = tx.QueryRowContext(ctx,
		`SELECT correct FROM attempt_answers WHERE attempt_id=$1 AND question_id=$2`,
		attemptID, questionID).Scan(&correct)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return OverrideResult{}, ErrVerdictNotFound
		}
		return OverrideResult{}, err
	}
	correct = !correct
	_, err = tx.ExecContext(ctx,
		`UPDATE attempt_answers SET correct=$1 WHERE attempt_id=$2 AND question_id=$3`,
		correct, attemptID, questionID)
	if err != nil {
		return OverrideResult{}, err
	}

	var total, right int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(CASE WHEN correct THEN 1 END)
		 FROM attempt_answers WHERE attempt_id=$1`, attemptID).Scan(&total, &right)
	if err != nil {
		return OverrideResult{}, err
	}
	pct := Score(right, total)
	if _, err = tx.ExecContext(ctx,
		`UPDATE attempts SET score_pct=$1 WHERE id=$2`, pct, attemptID); err != nil {
		return OverrideResult{}, err
	}
	if err := tx.Commit(); err != nil {
		return OverrideResult{}, err
	}

	s.audit(ctx, syncx.EventAttemptOverridden, attemptID, map[string]any{
		"question_id": questionID, "new_correct": correct, "new_score_pct": pct,
	})
	return OverrideResult{QuestionID: questionID, NewCorrect: correct, NewScorePct: pct}, nil
}

// audit appends to the event log; a failed append never fails the operation.
func (s *SQLStore) audit(ctx context.Context, typ string, attemptID int64, data map[string]any) {
	if err := s.events.Append(ctx, typ, fmt.Sprintf("%d", attemptID), data); err != nil {
		log.Printf("event log append (%s, attempt %d): %v", typ, attemptID, err)
	}
}
