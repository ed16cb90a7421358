package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Skill categories offered by the self-assessment.
const (
	SkillCategoryTechnical = "Technical"
	SkillCategorySoft      = "Soft"
	SkillCategoryCreative  = "Creative"
	SkillCategoryBusiness  = "Business"
)

// SkillCategories lists every category in display order.
var SkillCategories = []string{
	SkillCategoryTechnical,
	SkillCategorySoft,
	SkillCategoryCreative,
	SkillCategoryBusiness,
}

const (
	MinSkillRating     = 1
	MaxSkillRating     = 10
	MaxSkillNameLength = 100
	MaxSkillsPerUser   = 100
	MaxGoalLength      = 500
)

// Skill is one self-rated skill from the user's assessment.
type Skill struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Category  string
	Name      string
	Rating    int
	CreatedAt time.Time
}

// SkillRating is one entry of a submitted assessment.
type SkillRating struct {
	Category string
	Name     string
	Rating   int
}

// NormalizeSkillCategory maps a category case-insensitively onto its
// canonical spelling.
func NormalizeSkillCategory(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, c := range SkillCategories {
		if strings.EqualFold(s, c) {
			return c, true
		}
	}
	return "", false
}

// ValidateSkillRatings normalizes a full assessment. Every problem is
// reported under a field keyed by the entry's position.
func ValidateSkillRatings(op string, ratings []SkillRating) ([]SkillRating, error) {
	var verr *ValidationError
	fail := func(field, msg string) {
		if verr == nil {
			verr = NewValidationError(op, field, msg)
			return
		}
		verr.Fields[field] = msg
	}

	if len(ratings) > MaxSkillsPerUser {
		return nil, NewValidationError(op, "skills", fmt.Sprintf("must contain at most %d entries", MaxSkillsPerUser))
	}

	out := make([]SkillRating, 0, len(ratings))
	seen := make(map[string]bool, len(ratings))
	for i, r := range ratings {
		prefix := fmt.Sprintf("skills[%d]", i)

		category, ok := NormalizeSkillCategory(r.Category)
		if !ok {
			fail(prefix+".category", "must be one of "+strings.Join(SkillCategories, ", "))
		}

		name := strings.TrimSpace(r.Name)
		switch {
		case name == "":
			fail(prefix+".skill_name", "is required")
		case utf8.RuneCountInString(name) > MaxSkillNameLength:
			fail(prefix+".skill_name", "is too long")
		}

		if r.Rating < MinSkillRating || r.Rating > MaxSkillRating {
			fail(prefix+".rating", fmt.Sprintf("must be between %d and %d", MinSkillRating, MaxSkillRating))
		}

		key := category + "\x00" + strings.ToLower(name)
		if ok && name != "" && seen[key] {
			fail(prefix+".skill_name", "is listed twice in this category")
		}
		seen[key] = true

		out = append(out, SkillRating{Category: category, Name: name, Rating: r.Rating})
	}

	if verr != nil {
		return nil, verr
	}
	return out, nil
}

// Goal is a career goal the user is working towards.
type Goal struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Text        string
	Completed   bool
	CompletedAt *time.Time
	CreatedAt   time.Time
}

// NormalizeGoal trims the goal text and checks its length.
func NormalizeGoal(op, text string) (string, error) {
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return "", NewValidationError(op, "goal", "is required")
	case utf8.RuneCountInString(text) > MaxGoalLength:
		return "", NewValidationError(op, "goal", fmt.Sprintf("must be at most %d characters", MaxGoalLength))
	}
	return text, nil
}

// DashboardStats summarizes a user's progress.
type DashboardStats struct {
	CareerQueries  int64
	SavedCareers   int64
	Achievements   int64
	SkillsAssessed int64
	TopSkills      []Skill
	OpenGoals      []Goal
}
