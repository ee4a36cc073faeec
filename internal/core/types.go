// Package core holds the domain model shared by the gateway engine, the
// store, and the HTTP surface: the structured analysis result, session
// records, and the request/response shapes for the two endpoints.
package core

// ContactInfo captures contact details discovered on a homepage.
// Every field is nullable; the model frequently finds none of them.
type ContactInfo struct {
	Email       *string           `json:"email"`
	Phone       *string           `json:"phone"`
	SocialMedia map[string]string `json:"social_media"`
}

// CompanyInfo is the fixed-schema company profile produced by the
// analysis step.
type CompanyInfo struct {
	Industry                 *string      `json:"industry"`
	CompanySize              *string      `json:"company_size"`
	Location                 *string      `json:"location"`
	CoreProductsServices     []string     `json:"core_products_services"`
	UniqueSellingProposition *string      `json:"unique_selling_proposition"`
	TargetAudience           *string      `json:"target_audience"`
	ContactInfo              *ContactInfo `json:"contact_info"`
}

// ExtractedAnswer pairs a caller-supplied question with the model's answer.
type ExtractedAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// AnalysisResult is the structured analysis stored in a session. URL is
// always the canonical homepage URL, regardless of what the model returned.
// ExtractedAnswers is empty unless the caller supplied questions.
type AnalysisResult struct {
	URL               string            `json:"url"`
	AnalysisTimestamp string            `json:"analysis_timestamp"`
	CompanyInfo       CompanyInfo       `json:"company_info"`
	ExtractedAnswers  []ExtractedAnswer `json:"extracted_answers"`
}

// AnalysisWithSession is the /analyze response body: the analysis plus the
// id of the session it was cached under.
type AnalysisWithSession struct {
	AnalysisResult
	SessionID string `json:"session_id"`
}

// Session is the persisted, immutable record linking a session id to one
// completed analysis. Follow-ups read it; nothing mutates it.
type Session struct {
	URL      string         `json:"url"`
	Analysis AnalysisResult `json:"analysis"`
}

// WebsiteRequest is the /analyze request body.
type WebsiteRequest struct {
	URL       string   `json:"url"`
	Questions []string `json:"questions,omitempty"`
}

// ConversationTurn is one prior exchange supplied by the caller. It is
// forwarded to the model for the single follow-up call and never stored.
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConversationalRequest is the /converse request body.
type ConversationalRequest struct {
	SessionID           string             `json:"session_id"`
	Query               string             `json:"query"`
	ConversationHistory []ConversationTurn `json:"conversation_history,omitempty"`
}

// ConversationalResponse is the /converse response body. URL is the one
// stored in the session, never re-derived from the request.
type ConversationalResponse struct {
	URL            string   `json:"url"`
	UserQuery      string   `json:"user_query"`
	AgentResponse  string   `json:"agent_response"`
	ContextSources []string `json:"context_sources"`
}
