package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Store adds multi-statement operations on top of the generated queries.
type Store struct {
	*Queries
	db *sql.DB
}

// NewStore creates a Store backed by db.
func NewStore(db *sql.DB) *Store {
	return &Store{
		Queries: New(db),
		db:      db,
	}
}

// ExecTx runs fn inside a transaction, committing only when fn succeeds.
func (s *Store) ExecTx(ctx context.Context, fn func(*Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(s.Queries.WithTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ReplaceSkills swaps the user's whole skill assessment. An empty arg
// clears it.
func (s *Store) ReplaceSkills(ctx context.Context, arg InsertSkillsParams) ([]Skill, error) {
	skills := []Skill{}
	err := s.ExecTx(ctx, func(q *Queries) error {
		if _, err := q.DeleteSkillsByUser(ctx, arg.UserID); err != nil {
			return fmt.Errorf("delete skills: %w", err)
		}
		if len(arg.Categories) == 0 {
			return nil
		}
		rows, err := q.InsertSkills(ctx, arg)
		if err != nil {
			return fmt.Errorf("insert skills: %w", err)
		}
		skills = rows
		return nil
	})
	if err != nil {
		return nil, err
	}
	return skills, nil
}

// CompleteGoalParams identifies the goal and describes the achievement
// recorded when it is completed. The achievement description is the goal
// text.
type CompleteGoalParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Title  string
	Icon   sql.NullString
}

// CompleteGoal marks an open goal completed and records an achievement in
// the same transaction. An already completed goal is returned unchanged
// with completedNow false. A goal the user does not own yields
// sql.ErrNoRows.
func (s *Store) CompleteGoal(ctx context.Context, arg CompleteGoalParams) (goal CareerGoal, completedNow bool, err error) {
	err = s.ExecTx(ctx, func(q *Queries) error {
		g, err := q.CompleteCareerGoal(ctx, CompleteCareerGoalParams{ID: arg.ID, UserID: arg.UserID})
		if errors.Is(err, sql.ErrNoRows) {
			goal, err = q.GetCareerGoal(ctx, GetCareerGoalParams{ID: arg.ID, UserID: arg.UserID})
			return err
		}
		if err != nil {
			return err
		}

		if _, err := q.CreateAchievement(ctx, CreateAchievementParams{
			UserID:      g.UserID,
			Title:       arg.Title,
			Description: sql.NullString{String: g.Goal, Valid: g.Goal != ""},
			Icon:        arg.Icon,
		}); err != nil {
			return fmt.Errorf("record achievement: %w", err)
		}

		goal = g
		completedNow = true
		return nil
	})
	return goal, completedNow, err
}
