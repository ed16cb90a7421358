package mock

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/DukeRupert/careerlift/internal/ai"
	"github.com/DukeRupert/careerlift/internal/domain"
)

// ProviderName is reported alongside every response
const ProviderName = "Mock"

// Provider is a mock AI provider for testing and development
type Provider struct {
	logger *slog.Logger

	mu sync.Mutex

	// Configurable responses for testing
	CompleteResponse *ai.Completion
	CompleteError    error

	// Call tracking for testing
	CompleteCalls int
	LastRequest   ai.CompletionRequest
}

// New creates a new mock AI provider
func New(logger *slog.Logger) *Provider {
	return &Provider{
		logger: logger,
	}
}

// Name implements ai.CompletionProvider.
func (p *Provider) Name() string {
	return ProviderName
}

// Complete returns the configured response, or a canned answer shaped for
// the request's query type.
func (p *Provider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.Completion, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.CompleteCalls++
	p.LastRequest = req

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// If a custom response or error is set, use it
	if p.CompleteError != nil {
		return nil, p.CompleteError
	}
	if p.CompleteResponse != nil {
		resp := *p.CompleteResponse
		return &resp, nil
	}

	content, ok := cannedResponses[domain.QueryKind(req.QueryType)]
	if !ok {
		content = cannedResponses[domain.QueryKindBasic]
	}

	p.logger.Debug("Mock AI completion", "query_type", req.QueryType, "user_id", req.UserID)

	return &ai.Completion{
		Content: content,
		Model:   "mock-llm-v1",
		Usage: ai.UsageInfo{
			Model:        "mock-llm-v1",
			InputTokens:  len(req.System+req.User) / 4,
			OutputTokens: len(content) / 4,
			Duration:     250 * time.Millisecond,
		},
	}, nil
}

// Calls returns the number of Complete calls so far
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.CompleteCalls
}

// Reset clears call counters and custom responses for testing
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.CompleteCalls = 0
	p.LastRequest = ai.CompletionRequest{}
	p.CompleteResponse = nil
	p.CompleteError = nil
}

var cannedResponses = map[domain.QueryKind]string{
	domain.QueryKindBasic: `{
  "careers": [
    {"title": "Data Analyst", "description": "Turns raw business data into reports and dashboards that guide decisions.", "fitScore": 88,
     "resources": [{"label": "Google Data Analytics Certificate", "url": "https://www.coursera.org/professional-certificates/google-data-analytics"}, {"label": "Mode SQL Tutorial", "url": "https://mode.com/sql-tutorial/"}]},
    {"title": "Product Manager", "description": "Owns a product's roadmap and works across engineering, design and sales to ship it.", "fitScore": 74,
     "resources": [{"label": "Product School Blog", "url": "https://productschool.com/blog"}, {"label": "Inspired by Marty Cagan", "url": "https://www.svpg.com/books/inspired-how-to-create-tech-products-customers-love-2nd-edition/"}]},
    {"title": "UX Researcher", "description": "Studies how people use products and feeds findings back into design.", "fitScore": 69,
     "resources": [{"label": "Nielsen Norman Group Articles", "url": "https://www.nngroup.com/articles/"}, {"label": "Just Enough Research", "url": "https://abookapart.com/products/just-enough-research"}]}
  ],
  "extraNotes": "Your analytical background fits data-heavy roles best."
}`,
	domain.QueryKindDetailed: `{
  "careers": [
    {"title": "Data Engineer", "description": "Builds and runs the pipelines that move data into warehouses and lakes.", "fitScore": 86,
     "requiredSkills": ["SQL", "Python", "Airflow"], "salaryRange": "$95,000 - $140,000", "outlook": "Strong growth as more teams centralise data.",
     "resources": [{"label": "Data Engineering Zoomcamp", "url": "https://github.com/DataTalksClub/data-engineering-zoomcamp"}]}
  ],
  "industryTrends": "Cloud data platforms keep absorbing on-premise workloads.",
  "extraNotes": "Pair SQL depth with one orchestration tool."
}`,
	domain.QueryKindInterview: `{
  "questions": [{"question": "Tell me about yourself.", "sampleAnswer": "I moved from support into analytics after automating our weekly reporting.", "tip": "Keep it under two minutes."}],
  "starExamples": [{"situation": "Reports took a day to build.", "task": "Cut the effort.", "action": "Wrote SQL views and a scheduled dashboard.", "result": "Saved six hours a week."}],
  "commonMistakes": ["Not researching the company"],
  "bodyLanguageTips": ["Maintain steady eye contact"],
  "closingQuestions": ["What does success look like in the first 90 days?"]
}`,
	domain.QueryKindResume: `{
  "skillsToHighlight": ["SQL", "Stakeholder communication"],
  "actionVerbs": ["Automated", "Reduced", "Launched"],
  "metricsAdvice": "Attach a number to every bullet: time saved, revenue, users.",
  "formatTips": ["Use a single column layout"],
  "atsKeywords": ["data analysis", "dashboards"],
  "overallScore": 72,
  "improvements": [{"area": "Summary", "suggestion": "Lead with your target role.", "priority": "high"}]
}`,
	domain.QueryKindRoadmap: `{
  "roadmap": [
    {"name": "Foundation", "duration": "0-6 months", "skills": ["SQL", "Spreadsheets", "Statistics"], "milestones": ["Finish an analytics certificate"],
     "resources": [{"label": "Khan Academy Statistics", "url": "https://www.khanacademy.org/math/statistics-probability"}]},
    {"name": "Growth", "duration": "6-18 months", "skills": ["Python", "BI tools", "A/B testing"], "milestones": ["Ship three portfolio projects"],
     "resources": [{"label": "Kaggle Learn", "url": "https://www.kaggle.com/learn"}]}
  ],
  "estimatedTimeToGoal": "2-3 years",
  "keyInsights": "Consistent portfolio work matters more than certificates."
}`,
	domain.QueryKindSalaryInsights: `{
  "entry": {"min": 55000, "max": 70000, "currency": "USD"},
  "mid": {"min": 75000, "max": 100000, "currency": "USD"},
  "senior": {"min": 105000, "max": 140000, "currency": "USD"},
  "tips": ["Anchor with market data from several sources"],
  "notes": "Ranges vary with company size and remote policy."
}`,
}
