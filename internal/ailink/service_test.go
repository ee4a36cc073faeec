package ailink

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/webinsights/webinsights/internal/ailink/driver"
	"github.com/webinsights/webinsights/internal/core"
)

type stubDriver struct {
	text    string
	err     error
	lastReq *driver.Request
}

func (s *stubDriver) Generate(ctx context.Context, req *driver.Request) (*driver.Response, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &driver.Response{Text: s.text, FinishReason: "STOP"}, nil
}

func (s *stubDriver) Name() string { return "stub" }

func fixedClock() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestAnalyzeContentWithoutQuestions(t *testing.T) {
	drv := &stubDriver{text: "```json\n{\"industry\":\"Footwear\",\"company_size\":null,\"location\":null,\"core_products_services\":[\"shoes\"],\"unique_selling_proposition\":null,\"target_audience\":null,\"contact_info\":null}\n```"}
	svc := &Service{Driver: drv, Model: "gemini-2.0-flash", Clock: fixedClock}

	result, err := svc.AnalyzeContent(context.Background(), "page text", "https://example.com/", nil)
	require.NoError(t, err)
	require.Equal(t, "https://example.com/", result.URL)
	require.Equal(t, "2025-06-01T12:00:00Z", result.AnalysisTimestamp)
	require.NotNil(t, result.CompanyInfo.Industry)
	require.Equal(t, "Footwear", *result.CompanyInfo.Industry)
	require.Empty(t, result.ExtractedAnswers)
	require.NotNil(t, result.ExtractedAnswers)
}

func TestAnalyzeContentWithQuestionsPairsAnswersInOrder(t *testing.T) {
	// Model returns the answers out of order; alignment restores caller order.
	drv := &stubDriver{text: `{"url":"https://model-invented.example/","analysis_timestamp":"2025-06-01T00:00:00Z","company_info":{"industry":null,"company_size":null,"location":null,"core_products_services":[],"unique_selling_proposition":null,"target_audience":null,"contact_info":null},"extracted_answers":[{"question":"Who do they target?","answer":"Runners"},{"question":"What do they sell?","answer":"Shoes"}]}`}
	svc := &Service{Driver: drv, Model: "gemini-2.0-flash", Clock: fixedClock}

	questions := []string{"What do they sell?", "Who do they target?"}
	result, err := svc.AnalyzeContent(context.Background(), "page text", "https://example.com/", questions)
	require.NoError(t, err)

	// URL is force-overwritten with the canonical URL.
	require.Equal(t, "https://example.com/", result.URL)

	require.Len(t, result.ExtractedAnswers, 2)
	require.Equal(t, "What do they sell?", result.ExtractedAnswers[0].Question)
	require.Equal(t, "Shoes", result.ExtractedAnswers[0].Answer)
	require.Equal(t, "Who do they target?", result.ExtractedAnswers[1].Question)
	require.Equal(t, "Runners", result.ExtractedAnswers[1].Answer)
}

func TestAnalyzeContentSkippedQuestionGetsEmptyAnswer(t *testing.T) {
	drv := &stubDriver{text: `{"url":"u","analysis_timestamp":"t","company_info":{"industry":null,"company_size":null,"location":null,"core_products_services":[],"unique_selling_proposition":null,"target_audience":null,"contact_info":null},"extracted_answers":[{"question":"What do they sell?","answer":"Shoes"}]}`}
	svc := &Service{Driver: drv, Model: "m", Clock: fixedClock}

	questions := []string{"What do they sell?", "Where are they based?"}
	result, err := svc.AnalyzeContent(context.Background(), "text", "https://example.com/", questions)
	require.NoError(t, err)
	require.Len(t, result.ExtractedAnswers, 2)
	require.Equal(t, "Where are they based?", result.ExtractedAnswers[1].Question)
	require.Equal(t, "", result.ExtractedAnswers[1].Answer)
}

func TestAnalyzeContentRejectsUndecodableOutput(t *testing.T) {
	drv := &stubDriver{text: "I cannot analyze this page."}
	svc := &Service{Driver: drv, Model: "m"}

	_, err := svc.AnalyzeContent(context.Background(), "text", "https://example.com/", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode company profile")
}

func TestFollowupParsesSources(t *testing.T) {
	drv := &stubDriver{text: "Answer: They sell shoes.\nContext Sources: industry, core_products_services"}
	svc := &Service{Driver: drv, Model: "m"}

	session := &core.Session{URL: "https://example.com/", Analysis: core.AnalysisResult{URL: "https://example.com/"}}
	reply, sources, err := svc.Followup(context.Background(), session, nil, "What do they sell?")
	require.NoError(t, err)
	require.Equal(t, "They sell shoes.", reply)
	require.Equal(t, []string{"industry", "core_products_services"}, sources)
}

func TestFollowupIncludesHistoryInPrompt(t *testing.T) {
	drv := &stubDriver{text: "Answer: ok\nContext Sources: industry"}
	svc := &Service{Driver: drv, Model: "m"}

	history := []core.ConversationTurn{{Role: "user", Content: "earlier question"}}
	session := &core.Session{URL: "https://example.com/"}
	_, _, err := svc.Followup(context.Background(), session, history, "and now?")
	require.NoError(t, err)
	require.Contains(t, drv.lastReq.Prompt, "earlier question")
	require.Contains(t, drv.lastReq.Prompt, "User: and now?")
}
