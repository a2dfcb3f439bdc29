package manager

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screenusage/entity"
	"screenusage/query"
)

func newGoal(desc string) entity.UserGoal {
	return entity.UserGoal{
		Type:        entity.GoalAppLimit,
		Description: desc,
		Target:      2,
		Period:      entity.PeriodDaily,
		Apps:        []string{"Google Chrome", "Slack"},
		Priority:    entity.PriorityHigh,
	}
}

func TestGoalStoreInMemory(t *testing.T) {
	t.Parallel()
	gs, err := NewGoalStore(nil)
	require.NoError(t, err)

	g, err := gs.Add(newGoal("  Less browsing  "))
	require.NoError(t, err)
	assert.NotEmpty(t, g.ID)
	assert.Equal(t, "Less browsing", g.Description)
	assert.False(t, g.CreatedAt.IsZero())

	got, err := gs.Get(g.ID)
	require.NoError(t, err)
	assert.Equal(t, g, got)

	removed, err := gs.Remove(g.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = gs.Remove(g.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = gs.Get(g.ID)
	assert.ErrorIs(t, err, ErrGoalNotFound)
}

func TestGoalStoreRejectsInvalidGoal(t *testing.T) {
	t.Parallel()
	gs, err := NewGoalStore(nil)
	require.NoError(t, err)

	bad := newGoal("ok")
	bad.Period = "hourly"
	_, err = gs.Add(bad)
	assert.ErrorIs(t, err, entity.ErrInvalidGoal)

	_, err = gs.Add(newGoal("   "))
	assert.ErrorIs(t, err, entity.ErrInvalidGoal)
	assert.Empty(t, gs.List())
}

func TestGoalStoreListOrder(t *testing.T) {
	t.Parallel()
	gs, err := NewGoalStore(nil)
	require.NoError(t, err)
	base := time.Date(2024, 10, 19, 8, 0, 0, 0, time.UTC)
	tick := 0
	gs.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	first, _ := gs.Add(newGoal("first"))
	second, _ := gs.Add(newGoal("second"))
	third, _ := gs.Add(newGoal("third"))

	list := gs.List()
	require.Len(t, list, 3)
	assert.Equal(t, []string{first.ID, second.ID, third.ID}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestGoalStorePersistsToStateDatabase(t *testing.T) {
	t.Parallel()
	db, err := query.InitDatabase(query.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gs, err := NewGoalStore(db)
	require.NoError(t, err)
	kept, err := gs.Add(newGoal("Less browsing"))
	require.NoError(t, err)
	dropped, err := gs.Add(newGoal("Drop me"))
	require.NoError(t, err)
	_, err = gs.Remove(dropped.ID)
	require.NoError(t, err)

	reloaded, err := NewGoalStore(db)
	require.NoError(t, err)
	list := reloaded.List()
	require.Len(t, list, 1)
	assert.Equal(t, kept.ID, list[0].ID)
	assert.Equal(t, []string{"Google Chrome", "Slack"}, list[0].Apps)
	assert.Nil(t, list[0].Categories)
	assert.True(t, kept.CreatedAt.Equal(list[0].CreatedAt))
}

func TestGoalStoreConcurrentAccess(t *testing.T) {
	t.Parallel()
	gs, err := NewGoalStore(nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g, err := gs.Add(newGoal("parallel"))
			if err == nil {
				_ = gs.List()
				_, _ = gs.Get(g.ID)
			}
		}()
	}
	wg.Wait()
	assert.Len(t, gs.List(), 20)
}
