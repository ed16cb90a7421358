package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Experience levels accepted on a profile.
const (
	ExperienceEntry  = "entry"
	ExperienceMid    = "mid"
	ExperienceSenior = "senior"
)

// Profile limits.
const (
	MaxProfileFieldLength = 200
	MaxProfileListItems   = 20
)

// Profile is the career profile of a user, including their plan.
type Profile struct {
	ID               uuid.UUID
	Email            string
	FullName         string
	Education        string
	ExperienceLevel  string
	Location         string
	Interests        []string
	Goals            []string
	Plan             Plan
	QueriesToday     int
	LastQueryReset   *time.Time
	StripeCustomerID string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// UpsertProfileParams contains the editable profile fields. The plan and
// usage counters are never set through this path.
type UpsertProfileParams struct {
	UserID          uuid.UUID
	Email           string
	FullName        string
	Education       string
	ExperienceLevel string
	Location        string
	Interests       []string
	Goals           []string
}

// Normalize trims whitespace and drops empty list entries.
func (p *UpsertProfileParams) Normalize() {
	p.Email = strings.TrimSpace(p.Email)
	p.FullName = strings.TrimSpace(p.FullName)
	p.Education = strings.TrimSpace(p.Education)
	p.ExperienceLevel = strings.ToLower(strings.TrimSpace(p.ExperienceLevel))
	p.Location = strings.TrimSpace(p.Location)
	p.Interests = compactList(p.Interests)
	p.Goals = compactList(p.Goals)
}

// Validate checks field lengths and the experience level.
func (p *UpsertProfileParams) Validate(op string) error {
	var verr *ValidationError
	add := func(field, msg string) {
		if verr == nil {
			verr = NewValidationError(op, field, msg)
			return
		}
		verr.Fields[field] = msg
	}

	for field, value := range map[string]string{
		"email":     p.Email,
		"full_name": p.FullName,
		"education": p.Education,
		"location":  p.Location,
	} {
		if utf8.RuneCountInString(value) > MaxProfileFieldLength {
			add(field, "is too long")
		}
	}

	switch p.ExperienceLevel {
	case "", ExperienceEntry, ExperienceMid, ExperienceSenior:
	default:
		add("experience_level", "must be one of entry, mid, senior")
	}

	if len(p.Interests) > MaxProfileListItems {
		add("interests", "has too many entries")
	}
	if len(p.Goals) > MaxProfileListItems {
		add("goals", "has too many entries")
	}

	if verr != nil {
		return verr
	}
	return nil
}

func compactList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
