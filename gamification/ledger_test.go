package gamification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrantUpdatesTotalAndLevel(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	u := createUser(t, db, "ada")

	require.NoError(t, svc.Grant(ctx, u.ID, 950, SourceTaskCompleted))
	got := reloadUser(t, db, u.ID)
	assert.Equal(t, 950, got.TotalXP)
	assert.Equal(t, 9, got.CurrentLevel)

	require.NoError(t, svc.Grant(ctx, u.ID, 100, SourceTaskCompleted))
	got = reloadUser(t, db, u.ID)
	assert.Equal(t, 1050, got.TotalXP)
	assert.Equal(t, 10, got.CurrentLevel)
}

func TestGrantRejectsNonPositiveAmount(t *testing.T) {
	svc, db, _ := newTestService(t)
	u := createUser(t, db, "ada")

	for _, amount := range []int{0, -5} {
		err := svc.Grant(context.Background(), u.ID, amount, SourceTaskCreated)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
	assert.Equal(t, 0, reloadUser(t, db, u.ID).TotalXP)
}

func TestGrantMissingUserIsNoop(t *testing.T) {
	svc, _, _ := newTestService(t)
	assert.NoError(t, svc.Grant(context.Background(), 4242, 10, SourceTaskCreated))
}

func TestXPForTaskCompletion(t *testing.T) {
	assert.Equal(t, 10, XPForTaskCompletion(0))
	assert.Equal(t, 30, XPForTaskCompletion(2))
	assert.Equal(t, 110, XPForTaskCompletion(10))
}
