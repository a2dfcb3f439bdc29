package entity

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidGoal = errors.New("invalid goal")

type GoalType string

const (
	GoalScreenTime   GoalType = "screen_time"
	GoalAppLimit     GoalType = "app_limit"
	GoalFocusTime    GoalType = "focus_time"
	GoalContentLimit GoalType = "content_limit"
	GoalCustom       GoalType = "custom"
)

type GoalPeriod string

const (
	PeriodDaily   GoalPeriod = "daily"
	PeriodWeekly  GoalPeriod = "weekly"
	PeriodMonthly GoalPeriod = "monthly"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// UserGoal is a self-declared usage target. Target is expressed in hours per Period.
type UserGoal struct {
	ID          string     `json:"id" db:"id"`
	Type        GoalType   `json:"type" db:"type"`
	Description string     `json:"description" db:"description"`
	Target      float64    `json:"target" db:"target"`
	Period      GoalPeriod `json:"period" db:"period"`
	Apps        []string   `json:"apps,omitempty" db:"-"`
	Categories  []string   `json:"categories,omitempty" db:"-"`
	Priority    Priority   `json:"priority" db:"priority"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
}

func (g UserGoal) Validate() error {
	if strings.TrimSpace(g.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidGoal)
	}
	if g.Target < 0 {
		return fmt.Errorf("%w: target must not be negative", ErrInvalidGoal)
	}
	switch g.Type {
	case GoalScreenTime, GoalAppLimit, GoalFocusTime, GoalContentLimit, GoalCustom:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidGoal, g.Type)
	}
	switch g.Period {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
	default:
		return fmt.Errorf("%w: unknown period %q", ErrInvalidGoal, g.Period)
	}
	switch g.Priority {
	case PriorityHigh, PriorityMedium, PriorityLow:
	default:
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidGoal, g.Priority)
	}
	return nil
}
