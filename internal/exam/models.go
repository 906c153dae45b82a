package exam

// Question is one item of a loaded exam. Immutable once stored.
type Question struct {
	ID       int64    `json:"id"`
	Stem     string   `json:"stem"`
	Type     string   `json:"type"` // mcq, multi, truefalse, short, cloze
	Options  []string `json:"options,omitempty"`
	Concepts []int64  `json:"concepts,omitempty"`

	// Answer is the canonical answer: a string, or a []string for multi.
	// Stripped before an exam is served to a test taker.
	Answer any `json:"answer,omitempty"`
}

type Exam struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
	CreatedAt int64      `json:"created_at,omitempty"`
}

// UserAnswer is one element of a grade request body.
type UserAnswer struct {
	QuestionID int64 `json:"questionId"`
	Response   any   `json:"response"`
}

// Verdict is the per-question outcome of grading.
type Verdict struct {
	QuestionID    int64 `json:"questionId"`
	Correct       bool  `json:"correct"`
	CorrectAnswer any   `json:"correctAnswer"`
	UserAnswer    any   `json:"userAnswer"`
}

// GradeReport is the grade endpoint's response.
type GradeReport struct {
	ScorePct    float64   `json:"scorePct"`
	PerQuestion []Verdict `json:"perQuestion"`
	AttemptID   int64     `json:"attemptId"`
}

// Attempt is the durable record of a graded exam. Verdicts keep the exam's
// question order. ScorePct always equals 100*correct/total over Verdicts.
type Attempt struct {
	ID         int64     `json:"id"`
	ExamID     int64     `json:"exam_id"`
	ExamTitle  string    `json:"exam_title,omitempty"`
	ScorePct   float64   `json:"score_pct"`
	FinishedAt int64     `json:"finished_at"`
	Verdicts   []Verdict `json:"verdicts"`
}

// AttemptSummary is the dashboard listing row for one attempt.
type AttemptSummary struct {
	ID            int64   `json:"id"`
	ExamID        int64   `json:"exam_id"`
	ExamTitle     string  `json:"exam_title,omitempty"`
	ScorePct      float64 `json:"score_pct"`
	FinishedAt    int64   `json:"finished_at"`
	QuestionCount int     `json:"question_count"`
}

// PreviewAnswer pairs a question id with its canonical answer for the
// practice-mode self-check path. Never used for official scoring.
type PreviewAnswer struct {
	QuestionID    int64 `json:"questionId"`
	CorrectAnswer any   `json:"correctAnswer"`
}

// OverrideResult reports the effect of flipping one verdict.
type OverrideResult struct {
	QuestionID  int64   `json:"questionId"`
	NewCorrect  bool    `json:"newCorrect"`
	NewScorePct float64 `json:"newScorePct"`
}
