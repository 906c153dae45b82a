// Package client is the HTTP client for the grading service. The session
// submitter, practice checker and override coordinator all talk to the
// server through it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/studyforge/studyforge/internal/exam"
)

type Client struct {
	base  string
	token string
	http  *http.Client
}

type Config struct {
	BaseURL string
	Token   string // optional bearer token
	Timeout time.Duration
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	base := cfg.BaseURL
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return &Client{
		base:  base,
		token: cfg.Token,
		http:  &http.Client{Timeout: timeout},
	}
}

// Grade runs the single authoritative grading round-trip for a submission.
func (c *Client) Grade(ctx context.Context, examID int64, answers []exam.UserAnswer) (exam.GradeReport, error) {
	var report exam.GradeReport
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/exams/%d/grade", examID), answers, &report)
	return report, err
}

func (c *Client) GetAttempt(ctx context.Context, attemptID int64) (exam.Attempt, error) {
	var a exam.Attempt
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/attempts/%d", attemptID), nil, &a)
	return a, err
}

func (c *Client) PreviewAnswers(ctx context.Context, examID int64) ([]exam.PreviewAnswer, error) {
	var out struct {
		Answers []exam.PreviewAnswer `json:"answers"`
	}
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/exams/%d/preview-answers", examID), nil, &out)
	return out.Answers, err
}

// Override asks the server to flip one verdict.
func (c *Client) Override(ctx context.Context, attemptID, questionID int64) (exam.OverrideResult, error) {
	var res exam.OverrideResult
	err := c.do(ctx, http.MethodPost,
		fmt.Sprintf("/attempts/%d/questions/%d/override", attemptID, questionID), nil, &res)
	return res, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(buf)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		return fmt.Errorf("%s %s: %s", method, path, res.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}
