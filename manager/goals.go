package manager

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"screenusage/entity"
	"screenusage/query"
)

var ErrGoalNotFound = errors.New("goal not found")

// GoalStore holds the user's goals in memory, mirrored into the state database
// when one is given. It is created once at startup and shared by all requests.
type GoalStore struct {
	db    *query.Database
	goals map[string]entity.UserGoal
	mutex sync.RWMutex
	now   func() time.Time
}

// NewGoalStore loads the goals already saved in db. db may be nil for a store
// that lives only as long as the process.
func NewGoalStore(db *query.Database) (*GoalStore, error) {
	gs := &GoalStore{
		db:    db,
		goals: make(map[string]entity.UserGoal),
		now:   time.Now,
	}

	if err := gs.Refresh(); err != nil {
		return nil, err
	}

	return gs, nil
}

// Refresh reloads the in-memory goals from the database.
func (gs *GoalStore) Refresh() error {
	if gs.db == nil {
		return nil
	}
	saved, err := gs.db.GetAllGoals()
	if err != nil {
		return err
	}

	newGoals := make(map[string]entity.UserGoal, len(saved))
	for _, g := range saved {
		newGoals[g.ID] = g
	}

	gs.mutex.Lock()
	gs.goals = newGoals
	gs.mutex.Unlock()

	return nil
}

// List returns every goal, oldest first.
func (gs *GoalStore) List() []entity.UserGoal {
	gs.mutex.RLock()
	defer gs.mutex.RUnlock()

	out := make([]entity.UserGoal, 0, len(gs.goals))
	for _, g := range gs.goals {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (gs *GoalStore) Get(id string) (entity.UserGoal, error) {
	gs.mutex.RLock()
	defer gs.mutex.RUnlock()

	g, ok := gs.goals[id]
	if !ok {
		return entity.UserGoal{}, fmt.Errorf("%w: %s", ErrGoalNotFound, id)
	}
	return g, nil
}

// Add validates goal, gives it a fresh id and creation time, and stores it.
func (gs *GoalStore) Add(goal entity.UserGoal) (entity.UserGoal, error) {
	goal.Description = strings.TrimSpace(goal.Description)
	if err := goal.Validate(); err != nil {
		return entity.UserGoal{}, err
	}
	goal.ID = uuid.NewString()
	goal.CreatedAt = gs.now().UTC()

	if gs.db != nil {
		if err := gs.db.InsertGoal(goal); err != nil {
			return entity.UserGoal{}, err
		}
	}

	gs.mutex.Lock()
	gs.goals[goal.ID] = goal
	gs.mutex.Unlock()

	return goal, nil
}

// Remove deletes the goal with id and reports whether it existed.
func (gs *GoalStore) Remove(id string) (bool, error) {
	if gs.db != nil {
		if _, err := gs.db.DeleteGoal(id); err != nil {
			return false, err
		}
	}

	gs.mutex.Lock()
	defer gs.mutex.Unlock()
	_, existed := gs.goals[id]
	delete(gs.goals, id)

	return existed, nil
}
