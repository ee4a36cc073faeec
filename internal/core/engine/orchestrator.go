// Package engine sequences the gateway's two protocols: analyze (validate →
// canonicalize → extract → analyze → persist) and converse (validate →
// lookup → generate → respond). Each step is terminal on failure; a request
// that fails mid-protocol leaves no session behind.
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/webinsights/webinsights/internal/core"
)

// Stages an upstream failure can originate from.
const (
	StageExtract  = "extract"
	StageAnalyze  = "analyze"
	StageConverse = "converse"
)

// UpstreamError marks a failure of an external collaborator (extractor or
// generative engine) so the HTTP layer can map it to a gateway error rather
// than an internal one.
type UpstreamError struct {
	Stage string
	Err   error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Extractor fetches a homepage and returns its plain text.
type Extractor interface {
	HomepageText(ctx context.Context, url string) (string, error)
}

// Analyzer produces structured analyses and conversational follow-ups.
type Analyzer interface {
	AnalyzeContent(ctx context.Context, content, canonicalURL string, questions []string) (*core.AnalysisResult, error)
	Followup(ctx context.Context, session *core.Session, history []core.ConversationTurn, query string) (string, []string, error)
}

// SessionManager creates and retrieves analysis sessions.
type SessionManager interface {
	Create(ctx context.Context, url string, analysis core.AnalysisResult) (string, error)
	Get(ctx context.Context, id string) (*core.Session, error)
}

// Orchestrator coordinates the collaborators for both protocols. It holds
// no mutable state and is safe for concurrent use.
type Orchestrator struct {
	Extractor Extractor
	Analyzer  Analyzer
	Sessions  SessionManager
}

// Analyze runs the full analyze protocol and returns the structured result
// plus the id of the session it was cached under.
func (o *Orchestrator) Analyze(ctx context.Context, req core.WebsiteRequest) (*core.AnalysisWithSession, error) {
	canonical, err := CanonicalURL(req.URL)
	if err != nil {
		return nil, err
	}

	content, err := o.Extractor.HomepageText(ctx, canonical)
	if err != nil {
		return nil, &UpstreamError{Stage: StageExtract, Err: err}
	}

	analysis, err := o.Analyzer.AnalyzeContent(ctx, content, canonical, req.Questions)
	if err != nil {
		return nil, &UpstreamError{Stage: StageAnalyze, Err: err}
	}

	sessionID, err := o.Sessions.Create(ctx, canonical, *analysis)
	if err != nil {
		return nil, err
	}

	return &core.AnalysisWithSession{
		AnalysisResult: *analysis,
		SessionID:      sessionID,
	}, nil
}

// Converse answers a follow-up query against a previously cached analysis.
// The returned URL is the one stored in the session.
func (o *Orchestrator) Converse(ctx context.Context, req core.ConversationalRequest) (*core.ConversationalResponse, error) {
	if strings.TrimSpace(req.SessionID) == "" {
		return nil, core.ErrMissingSessionID
	}

	session, err := o.Sessions.Get(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	reply, sources, err := o.Analyzer.Followup(ctx, session, req.ConversationHistory, req.Query)
	if err != nil {
		return nil, &UpstreamError{Stage: StageConverse, Err: err}
	}

	return &core.ConversationalResponse{
		URL:            session.URL,
		UserQuery:      req.Query,
		AgentResponse:  reply,
		ContextSources: sources,
	}, nil
}
