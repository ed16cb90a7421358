package ai

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/DukeRupert/careerlift/internal/domain"
)

// Prompt is the assembled system and user turn for one guidance request.
type Prompt struct {
	System string
	User   string
}

// RequiredField returns the top-level key a response for kind must carry.
func RequiredField(kind domain.QueryKind) string {
	switch kind {
	case domain.QueryKindBasic, domain.QueryKindDetailed:
		return "careers"
	case domain.QueryKindInterview:
		return "questions"
	case domain.QueryKindResume:
		return "improvements"
	case domain.QueryKindRoadmap:
		return "roadmap"
	case domain.QueryKindSalaryInsights:
		return "entry"
	default:
		return ""
	}
}

// BuildPrompt assembles the prompt for kind. extraContext, when non-empty
// and not JSON null, must be a JSON object and is appended compacted.
func BuildPrompt(kind domain.QueryKind, profileText string, extraContext json.RawMessage) (Prompt, error) {
	system, ok := systemPrompts[kind]
	if !ok {
		return Prompt{}, fmt.Errorf("unknown query kind %q", kind)
	}

	user := profileText
	trimmed := bytes.TrimSpace(extraContext)
	if len(trimmed) > 0 && string(trimmed) != "null" {
		if trimmed[0] != '{' {
			return Prompt{}, fmt.Errorf("extra context must be a JSON object")
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return Prompt{}, fmt.Errorf("compact extra context: %w", err)
		}
		user = profileText + "\n\nAdditional context: " + buf.String()
	}

	return Prompt{System: system, User: user}, nil
}

const jsonOnly = "\n\nReturn a single JSON object and nothing else. Use exactly this structure:\n"

var systemPrompts = map[domain.QueryKind]string{
	domain.QueryKindBasic: `You are a career counselor. Read the user's profile and recommend exactly 3 careers that suit it.

Each career needs a job title, a short description of the role (2-3 sentences), a fitScore from 0 to 100 showing how closely it matches the profile, and 2 learning resources with a label and a url.` + jsonOnly + `{
  "careers": [
    {
      "title": "string",
      "description": "string",
      "fitScore": 0,
      "resources": [{"label": "string", "url": "string"}]
    }
  ],
  "extraNotes": "optional summary paragraph"
}`,

	domain.QueryKindDetailed: `You are a career counselor. Read the user's profile and recommend 5 careers in depth.

Each career needs a job title, a description of the role (3-4 sentences), a fitScore from 0 to 100, the key skills it requires, an expected salary range such as "$80,000 - $120,000", the job market outlook for the next five years, and 3 learning resources with a label and a url.` + jsonOnly + `{
  "careers": [
    {
      "title": "string",
      "description": "string",
      "fitScore": 0,
      "requiredSkills": ["string"],
      "salaryRange": "string",
      "outlook": "string",
      "resources": [{"label": "string", "url": "string"}]
    }
  ],
  "industryTrends": "paragraph about relevant industry trends",
  "extraNotes": "personalized advice"
}`,

	domain.QueryKindInterview: `You are an interview coach. Prepare the user for interviews for their target role, drawing on their background.

Include 10 likely questions with a sample answer and a tip for each, 3 STAR examples built from their experience, 5 common mistakes to avoid, 5 body language tips, and 3 questions the candidate can ask at the end of the interview.` + jsonOnly + `{
  "questions": [{"question": "string", "sampleAnswer": "string", "tip": "string"}],
  "starExamples": [{"situation": "string", "task": "string", "action": "string", "result": "string"}],
  "commonMistakes": ["string"],
  "bodyLanguageTips": ["string"],
  "closingQuestions": ["string"]
}`,

	domain.QueryKindResume: `You are a resume writer who knows how applicant tracking systems read resumes. Review the user's resume content and suggest how to improve it.

List the skills worth emphasizing, 10 strong action verbs, advice on quantifying achievements, formatting recommendations, industry keywords for ATS matching, an overallScore from 0 to 100 for the current resume, and concrete improvements each tagged with a priority.` + jsonOnly + `{
  "skillsToHighlight": ["string"],
  "actionVerbs": ["string"],
  "metricsAdvice": "string",
  "formatTips": ["string"],
  "atsKeywords": ["string"],
  "overallScore": 0,
  "improvements": [{"area": "string", "suggestion": "string", "priority": "high|medium|low"}]
}`,

	domain.QueryKindRoadmap: `You are a career development advisor. Build a roadmap from the user's current level to their target career.

Use 4 phases named Foundation, Growth, Mastery and Leadership. Each phase needs a duration estimate such as "0-6 months", 3-5 skills to develop, 3-4 concrete milestones, and 2 learning resources with a label and a url.` + jsonOnly + `{
  "roadmap": [
    {
      "name": "string",
      "duration": "string",
      "skills": ["string"],
      "milestones": ["string"],
      "resources": [{"label": "string", "url": "string"}]
    }
  ],
  "estimatedTimeToGoal": "string",
  "keyInsights": "string"
}`,

	domain.QueryKindSalaryInsights: `You are a compensation analyst. Estimate annual salary ranges for the role and location the user gives.

Report entry, mid and senior level ranges as whole numbers in the local currency (ISO 4217 code), up to 5 negotiation tips, and a short note on what drives pay for this role in that market.` + jsonOnly + `{
  "entry": {"min": 0, "max": 0, "currency": "USD"},
  "mid": {"min": 0, "max": 0, "currency": "USD"},
  "senior": {"min": 0, "max": 0, "currency": "USD"},
  "tips": ["string"],
  "notes": "string"
}`,
}
