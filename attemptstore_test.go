package acestudy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewAttempt(t *testing.T) {
	a := testAttempt()
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, []int{-1, -1, -1}, a.State.UserAnswers)
	assert.Equal(t, 600, a.State.SecondsRemaining)
	assert.Equal(t, 10, a.State.TimeLimit)
	assert.False(t, a.State.Finished)
	assert.NotEqual(t, a.ID, testAttempt().ID)
}

func TestAttemptResumeSyncsClock(t *testing.T) {
	a := testAttempt()

	p := a.Resume(a.StartedAt.Add(90 * time.Second))
	assert.Equal(t, 510, p.SecondsRemaining())
	assert.False(t, p.Finished())

	p = a.Resume(a.StartedAt.Add(11 * time.Minute))
	assert.True(t, p.Finished())
	assert.Equal(t, 600, p.Finish().TimeSpent)
}

func TestAttemptRecord(t *testing.T) {
	a := testAttempt()
	p := a.Resume(a.StartedAt)
	p.SelectOption(2)
	a.Record(p)

	assert.Equal(t, 2, a.State.UserAnswers[0])
	assert.Equal(t, -1, a.Resume(a.StartedAt).Snapshot().UserAnswers[1])
}
