package query

import (
	"fmt"
	"strings"
	"time"

	"screenusage/entity"
)

const listSeparator = "||"

type goalRow struct {
	ID          string  `db:"id"`
	Type        string  `db:"type"`
	Description string  `db:"description"`
	Target      float64 `db:"target"`
	Period      string  `db:"period"`
	Priority    string  `db:"priority"`
	Apps        string  `db:"apps"`
	Categories  string  `db:"categories"`
	CreatedAt   string  `db:"created_at"`
}

// Goal operations

func (db *Database) InsertGoal(g entity.UserGoal) error {
	_, err := db.Exec(`
	INSERT INTO goals (id, type, description, target, period, priority, apps, categories, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID,
		string(g.Type),
		g.Description,
		g.Target,
		string(g.Period),
		string(g.Priority),
		strings.Join(g.Apps, listSeparator),
		strings.Join(g.Categories, listSeparator),
		g.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("InsertGoal: %w", err)
	}
	return nil
}

// DeleteGoal reports whether a goal with that id existed.
func (db *Database) DeleteGoal(id string) (bool, error) {
	res, err := db.Exec("DELETE FROM goals WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("DeleteGoal: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (db *Database) GetAllGoals() ([]entity.UserGoal, error) {
	rows := []goalRow{}
	err := db.Select(&rows, `
	SELECT id, type, description, target, period, priority, apps, categories, created_at
	FROM goals
	ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("GetAllGoals: %w", err)
	}
	goals := make([]entity.UserGoal, 0, len(rows))
	for _, r := range rows {
		created, _ := time.Parse(time.RFC3339Nano, r.CreatedAt)
		goals = append(goals, entity.UserGoal{
			ID:          r.ID,
			Type:        entity.GoalType(r.Type),
			Description: r.Description,
			Target:      r.Target,
			Period:      entity.GoalPeriod(r.Period),
			Priority:    entity.Priority(r.Priority),
			Apps:        splitList(r.Apps),
			Categories:  splitList(r.Categories),
			CreatedAt:   created,
		})
	}
	return goals, nil
}

func splitList(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	return strings.Split(csv, listSeparator)
}
