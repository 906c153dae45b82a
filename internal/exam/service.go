package exam

import (
	"math"

	"github.com/studyforge/studyforge/internal/grading"
)

// Evaluate grades a full answer sheet against the exam's questions. Verdicts
// come back in question order; questions without a matching answer are graded
// as unanswered (incorrect). The second return is the raw score percentage.
func Evaluate(questions []Question, answers []UserAnswer) ([]Verdict, float64) {
	byID := make(map[int64]any, len(answers))
	for _, a := range answers {
		// Last write per question id wins, matching the session's edit order.
		byID[a.QuestionID] = a.Response
	}

	verdicts := make([]Verdict, 0, len(questions))
	correct := 0
	for _, q := range questions {
		resp := byID[q.ID]
		ok := grading.IsCorrect(q.Type, q.Answer, resp)
		verdicts = append(verdicts, Verdict{
			QuestionID:    q.ID,
			Correct:       ok,
			CorrectAnswer: q.Answer,
			UserAnswer:    resp,
		})
		if ok {
			correct++
		}
	}
	return verdicts, Score(correct, len(questions))
}

// Score computes the percentage invariant: 100 * correct / total, rounded to
// two decimals. Always derived from full counts, never patched incrementally.
func Score(correct, total int) float64 {
	if total < 1 {
		total = 1
	}
	pct := 100 * float64(correct) / float64(total)
	return math.Round(pct*100) / 100
}

// Rescore recomputes an attempt's percentage from its verdict sequence.
func Rescore(verdicts []Verdict) float64 {
	correct := 0
	for _, v := range verdicts {
		if v.Correct {
			correct++
		}
	}
	return Score(correct, len(verdicts))
}

// Sanitize strips canonical answers so an exam can be served to a test taker.
func Sanitize(e Exam) Exam {
	qs := make([]Question, len(e.Questions))
	copy(qs, e.Questions)
	for i := range qs {
		qs[i].Answer = nil
	}
	e.Questions = qs
	return e
}
