package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// QueryKind identifies which guidance template a request uses.
type QueryKind string

const (
	QueryKindBasic          QueryKind = "basic"
	QueryKindDetailed       QueryKind = "detailed"
	QueryKindInterview      QueryKind = "interview"
	QueryKindResume         QueryKind = "resume"
	QueryKindRoadmap        QueryKind = "roadmap"
	QueryKindSalaryInsights QueryKind = "salary_insights"
)

// QueryKinds lists every supported kind in display order.
var QueryKinds = []QueryKind{
	QueryKindBasic,
	QueryKindDetailed,
	QueryKindInterview,
	QueryKindResume,
	QueryKindRoadmap,
	QueryKindSalaryInsights,
}

// Valid checks if the kind is supported.
func (k QueryKind) Valid() bool {
	switch k {
	case QueryKindBasic, QueryKindDetailed, QueryKindInterview,
		QueryKindResume, QueryKindRoadmap, QueryKindSalaryInsights:
		return true
	default:
		return false
	}
}

// String returns the string representation of the kind.
func (k QueryKind) String() string {
	return string(k)
}

// InputSummaryLength is how many characters of the profile text are kept
// in the query history.
const InputSummaryLength = 100

// MaxProfileTextLength bounds the free-text profile accepted per request.
const MaxProfileTextLength = 20000

// GuidanceRequest is a validated request for AI career guidance.
type GuidanceRequest struct {
	UserID       uuid.UUID
	Kind         QueryKind
	ProfileText  string
	ExtraContext json.RawMessage // nil or a JSON object
}

// Validate checks required fields and the shape of the extra context.
func (r *GuidanceRequest) Validate(op string) error {
	var verr *ValidationError
	add := func(field, msg string) {
		if verr == nil {
			verr = NewValidationError(op, field, msg)
			return
		}
		verr.Fields[field] = msg
	}

	switch {
	case r.Kind == "":
		add("query_type", "is required")
	case !r.Kind.Valid():
		add("query_type", "must be one of basic, detailed, interview, resume, roadmap, salary_insights")
	}

	if strings.TrimSpace(r.ProfileText) == "" {
		add("profile_text", "is required")
	} else if utf8.RuneCountInString(r.ProfileText) > MaxProfileTextLength {
		add("profile_text", "is too long")
	}

	if len(r.ExtraContext) > 0 && !isJSONNull(r.ExtraContext) {
		trimmed := bytes.TrimSpace(r.ExtraContext)
		if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
			add("extra_context", "must be a JSON object")
		}
	}

	if verr != nil {
		return verr
	}
	return nil
}

// HasExtraContext reports whether a non-null extra context was supplied.
func (r *GuidanceRequest) HasExtraContext() bool {
	return len(r.ExtraContext) > 0 && !isJSONNull(r.ExtraContext)
}

func isJSONNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

// InputSummary truncates profile text for the history table without
// splitting a multi-byte character.
func InputSummary(profileText string) string {
	text := strings.TrimSpace(profileText)
	if utf8.RuneCountInString(text) <= InputSummaryLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:InputSummaryLength])
}

// GuidanceResult is a successful guidance response.
type GuidanceResult struct {
	Kind             QueryKind
	Payload          json.RawMessage // JSON object returned by the model
	Model            string
	Provider         string
	QueriesRemaining int
	Plan             Plan
	HistoryID        *uuid.UUID // nil if the history write failed
}

// HistoryEntry is one row of the append-only query history.
type HistoryEntry struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Kind          QueryKind
	InputSummary  string
	ModelResponse json.RawMessage
	CreatedAt     time.Time
}

// SavedCareer is a career recommendation bookmarked by a user.
type SavedCareer struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	Title   string
	Content json.RawMessage
	SavedAt time.Time
}
