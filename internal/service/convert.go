package service

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/DukeRupert/careerlift/internal/domain"
	"github.com/DukeRupert/careerlift/internal/repository"
	"github.com/sqlc-dev/pqtype"
)

// toNullString converts a string to sql.NullString.
func toNullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{
		String: s,
		Valid:  s != "",
	}
}

// fromNullString converts sql.NullString to string.
func fromNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func fromNullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func toNullRawMessage(raw json.RawMessage) pqtype.NullRawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return pqtype.NullRawMessage{}
	}
	return pqtype.NullRawMessage{RawMessage: raw, Valid: true}
}

func repoProfileToDomain(p repository.Profile) domain.Profile {
	interests := p.Interests
	if interests == nil {
		interests = []string{}
	}
	goals := p.Goals
	if goals == nil {
		goals = []string{}
	}
	return domain.Profile{
		ID:               p.ID,
		Email:            fromNullString(p.Email),
		FullName:         fromNullString(p.FullName),
		Education:        fromNullString(p.Education),
		ExperienceLevel:  fromNullString(p.ExperienceLevel),
		Location:         fromNullString(p.Location),
		Interests:        interests,
		Goals:            goals,
		Plan:             domain.Plan(p.SubscriptionPlan),
		QueriesToday:     int(p.QueriesToday),
		LastQueryReset:   fromNullTime(p.LastQueryReset),
		StripeCustomerID: fromNullString(p.StripeCustomerID),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func repoHistoryToDomain(h repository.CareerQueryHistory) domain.HistoryEntry {
	return domain.HistoryEntry{
		ID:            h.ID,
		UserID:        h.UserID,
		Kind:          domain.QueryKind(h.QueryType),
		InputSummary:  h.InputSummary,
		ModelResponse: h.ModelResponse,
		CreatedAt:     h.CreatedAt,
	}
}

func repoSavedCareerToDomain(c repository.SavedCareer) domain.SavedCareer {
	var content json.RawMessage
	if c.Content.Valid {
		content = c.Content.RawMessage
	}
	return domain.SavedCareer{
		ID:      c.ID,
		UserID:  c.UserID,
		Title:   c.Title,
		Content: content,
		SavedAt: c.SavedAt,
	}
}

func repoSkillToDomain(s repository.Skill) domain.Skill {
	return domain.Skill{
		ID:        s.ID,
		UserID:    s.UserID,
		Category:  s.Category,
		Name:      s.SkillName,
		Rating:    int(s.Rating),
		CreatedAt: s.CreatedAt,
	}
}

func repoSkillsToDomain(rows []repository.Skill) []domain.Skill {
	skills := make([]domain.Skill, len(rows))
	for i, row := range rows {
		skills[i] = repoSkillToDomain(row)
	}
	return skills
}

func repoGoalToDomain(g repository.CareerGoal) domain.Goal {
	return domain.Goal{
		ID:          g.ID,
		UserID:      g.UserID,
		Text:        g.Goal,
		Completed:   g.Completed,
		CompletedAt: fromNullTime(g.CompletedAt),
		CreatedAt:   g.CreatedAt,
	}
}

func repoGoalsToDomain(rows []repository.CareerGoal) []domain.Goal {
	goals := make([]domain.Goal, len(rows))
	for i, row := range rows {
		goals[i] = repoGoalToDomain(row)
	}
	return goals
}
