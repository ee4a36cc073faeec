// Package ailink turns page content into the structured analysis result and
// answers follow-up queries against a stored analysis. It owns prompt
// construction and the narrow parsers for what the model sends back; the
// wire-level provider call lives behind driver.Driver.
package ailink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/webinsights/webinsights/internal/ailink/driver"
	"github.com/webinsights/webinsights/internal/ailink/driver/gemini"
	"github.com/webinsights/webinsights/internal/core"
)

const defaultTimeout = 60 * time.Second

// Service coordinates prompt construction, driver execution, and response
// decoding. The zero value is not usable; construct with NewService or
// populate Driver and Model directly (tests do the latter).
type Service struct {
	Driver  driver.Driver
	Model   string
	Timeout time.Duration
	Clock   func() time.Time
}

// NewService wires a Service to the Gemini driver described by cfg.
func NewService(cfg Config) *Service {
	client := gemini.NewClient(cfg.BaseURL, cfg.APIKey)

	return &Service{
		Driver:  client,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	}
}

// AnalyzeContent produces the structured analysis for one homepage. The URL
// field of the result is always canonicalURL, whatever the model returned.
// With no questions the result carries an empty answers list; with questions
// it carries exactly one answer per question, in the caller's order.
func (s *Service) AnalyzeContent(ctx context.Context, content, canonicalURL string, questions []string) (*core.AnalysisResult, error) {
	if s == nil || s.Driver == nil {
		return nil, errors.New("ailink driver not configured")
	}

	raw, err := s.generate(ctx, analyzePrompt(content, questions))
	if err != nil {
		return nil, err
	}
	raw = stripCodeFence(raw)

	if len(questions) > 0 {
		var parsed core.AnalysisResult
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			return nil, fmt.Errorf("decode analysis: %w", err)
		}
		parsed.URL = canonicalURL
		if strings.TrimSpace(parsed.AnalysisTimestamp) == "" {
			parsed.AnalysisTimestamp = s.timestamp()
		}
		parsed.ExtractedAnswers = alignAnswers(questions, parsed.ExtractedAnswers)
		return &parsed, nil
	}

	var info core.CompanyInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return nil, fmt.Errorf("decode company profile: %w", err)
	}

	return &core.AnalysisResult{
		URL:               canonicalURL,
		AnalysisTimestamp: s.timestamp(),
		CompanyInfo:       info,
		ExtractedAnswers:  []core.ExtractedAnswer{},
	}, nil
}

// Followup answers one conversational query against a stored analysis and
// reports which parts of the analysis the model says it used.
func (s *Service) Followup(ctx context.Context, session *core.Session, history []core.ConversationTurn, query string) (string, []string, error) {
	if s == nil || s.Driver == nil {
		return "", nil, errors.New("ailink driver not configured")
	}
	if session == nil {
		return "", nil, errors.New("session is required")
	}

	analysisJSON, err := json.Marshal(session.Analysis)
	if err != nil {
		return "", nil, fmt.Errorf("encode analysis: %w", err)
	}

	raw, err := s.generate(ctx, followupPrompt(string(analysisJSON), history, query))
	if err != nil {
		return "", nil, err
	}

	reply, sources := ParseFollowupReply(raw)
	return reply, sources, nil
}

func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := s.Driver.Generate(ctx, &driver.Request{
		Model:  s.Model,
		Prompt: prompt,
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Text) == "" {
		return "", errors.New("empty response content")
	}
	return resp.Text, nil
}

func (s *Service) timestamp() string {
	now := time.Now
	if s != nil && s.Clock != nil {
		now = s.Clock
	}
	return now().UTC().Format(time.RFC3339)
}

// alignAnswers pairs each caller question with the model's answer for it,
// preserving caller order. Answers are matched by question text first, then
// by position; a question the model skipped gets an empty answer rather
// than shifting the rest.
func alignAnswers(questions []string, answers []core.ExtractedAnswer) []core.ExtractedAnswer {
	used := make([]bool, len(answers))
	aligned := make([]core.ExtractedAnswer, 0, len(questions))

	for i, q := range questions {
		answer := ""
		matched := -1
		for j, a := range answers {
			if !used[j] && strings.EqualFold(strings.TrimSpace(a.Question), strings.TrimSpace(q)) {
				matched = j
				break
			}
		}
		if matched < 0 && i < len(answers) && !used[i] {
			matched = i
		}
		if matched >= 0 {
			used[matched] = true
			answer = answers[matched].Answer
		}
		aligned = append(aligned, core.ExtractedAnswer{Question: q, Answer: answer})
	}

	return aligned
}
