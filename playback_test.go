package acestudy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeQuestions() GenerationResult {
	return GenerationResult{
		Questions: []Question{
			{Text: "q1", Options: []string{"a", "b", "c", "d"}, CorrectIndex: 2},
			{Text: "q2", Options: []string{"a", "b", "c", "d"}, CorrectIndex: 1},
			{Text: "q3", Options: []string{"a", "b", "c", "d"}, CorrectIndex: 3},
		},
		Sources:         []Source{},
		Recommendations: []StudyMaterial{},
	}
}

func TestPlaybackScoring(t *testing.T) {
	// answers [0, -1, correct]: only the last one scores
	result := threeQuestions()
	p := RestorePlayback(PlaybackState{
		Questions:    result.Questions,
		UserAnswers:  []int{0, -1, 3},
		CurrentIndex: 2,
	})

	session := p.Finish()
	assert.True(t, session.IsComplete)
	assert.Equal(t, 1, session.Score)
	assert.Equal(t, []int{0, -1, 3}, session.UserAnswers)
	assert.Equal(t, 0, session.TimeSpent)
}

func TestPlaybackAdvanceRequiresAnswer(t *testing.T) {
	p := NewPlayback(threeQuestions(), 0)

	assert.False(t, p.Advance())
	index, _, selected, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, 0, index)
	assert.Equal(t, -1, selected)

	p.SelectOption(2)
	assert.True(t, p.Advance())
	index, _, _, _ = p.Current()
	assert.Equal(t, 1, index)
}

func TestPlaybackSelectOverwritesAndIgnoresOutOfRange(t *testing.T) {
	p := NewPlayback(threeQuestions(), 0)

	p.SelectOption(1)
	p.SelectOption(3)
	p.SelectOption(7)
	p.SelectOption(-1)

	_, _, selected, _ := p.Current()
	assert.Equal(t, 3, selected)
}

func TestPlaybackRetreat(t *testing.T) {
	p := NewPlayback(threeQuestions(), 0)

	p.Retreat()
	index, _, _, _ := p.Current()
	assert.Equal(t, 0, index)

	p.SelectOption(0)
	p.Advance()
	p.Retreat()
	index, _, selected, _ := p.Current()
	assert.Equal(t, 0, index)
	assert.Equal(t, 0, selected, "answers survive navigation")
}

func TestPlaybackFinishesOnLastQuestion(t *testing.T) {
	p := NewPlayback(threeQuestions(), 0)
	for _, answer := range []int{2, 1, 0} {
		p.SelectOption(answer)
		require.True(t, p.Advance())
	}

	assert.True(t, p.Finished())
	select {
	case <-p.Done():
	default:
		t.Fatal("Done should be closed after finishing")
	}

	session := p.Finish()
	assert.Equal(t, 2, session.Score)

	// finished playbacks ignore input and keep their record
	p.SelectOption(3)
	p.Retreat()
	assert.False(t, p.Advance())
	assert.Equal(t, session, p.Finish())
}

func TestPlaybackTimerExpiry(t *testing.T) {
	p := NewPlayback(threeQuestions(), 1)
	assert.Equal(t, 60, p.SecondsRemaining())

	for i := 0; i < 59; i++ {
		p.Tick()
	}
	assert.False(t, p.Finished())
	assert.Equal(t, 1, p.SecondsRemaining())

	p.Tick()
	assert.True(t, p.Finished())

	session := p.Finish()
	assert.True(t, session.IsComplete)
	assert.Equal(t, 60, session.TimeSpent)
	assert.Equal(t, 0, session.Score)
}

func TestPlaybackUntimedIgnoresTicks(t *testing.T) {
	p := NewPlayback(threeQuestions(), 0)
	for i := 0; i < 1000; i++ {
		p.Tick()
	}
	p.SyncElapsed(100000)
	assert.False(t, p.Finished())
	assert.Equal(t, 0, p.Session().TimeSpent)
}

func TestPlaybackSyncElapsed(t *testing.T) {
	p := NewPlayback(threeQuestions(), 2)

	p.SyncElapsed(30)
	assert.Equal(t, 90, p.SecondsRemaining())

	// the clock never runs backwards
	p.SyncElapsed(10)
	assert.Equal(t, 90, p.SecondsRemaining())

	p.SyncElapsed(500)
	assert.True(t, p.Finished())
	assert.Equal(t, 0, p.SecondsRemaining())
	assert.Equal(t, 120, p.Finish().TimeSpent)
}

func TestPlaybackSnapshotRoundTrip(t *testing.T) {
	p := NewPlayback(threeQuestions(), 5)
	p.SelectOption(2)
	p.Advance()
	p.SelectOption(0)
	p.Tick()

	restored := RestorePlayback(p.Snapshot())
	assert.Equal(t, p.Snapshot(), restored.Snapshot())

	index, _, selected, _ := restored.Current()
	assert.Equal(t, 1, index)
	assert.Equal(t, 0, selected)
	assert.Equal(t, 299, restored.SecondsRemaining())
}

func TestRestoreFinishedPlayback(t *testing.T) {
	p := NewPlayback(threeQuestions(), 0)
	session := p.Finish()

	restored := RestorePlayback(p.Snapshot())
	assert.True(t, restored.Finished())
	assert.Equal(t, session, restored.Finish())
	<-restored.Done()
}

func TestPlaybackEmptyQuiz(t *testing.T) {
	p := NewPlayback(GenerationResult{}, 0)
	_, _, _, ok := p.Current()
	assert.False(t, ok)
	assert.False(t, p.Advance())
	assert.Equal(t, 0, p.Finish().Score)
}

func TestCountdownFinishesPlayback(t *testing.T) {
	p := NewPlayback(threeQuestions(), 1)
	c := StartCountdown(p, time.Millisecond)
	defer c.Stop()

	assert.Eventually(t, p.Finished, 5*time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool {
		select {
		case <-c.Exited():
			return true
		default:
			return false
		}
	}, time.Second, time.Millisecond)
	assert.Equal(t, 60, p.Finish().TimeSpent)
}

func TestCountdownStop(t *testing.T) {
	p := NewPlayback(threeQuestions(), 10)
	c := StartCountdown(p, time.Hour)

	c.Stop()
	c.Stop()
	<-c.Exited()
	assert.False(t, p.Finished())
	assert.Equal(t, 600, p.SecondsRemaining())
}

func TestCountdownExitsWhenFinishedEarly(t *testing.T) {
	p := NewPlayback(threeQuestions(), 0)
	c := StartCountdown(p, time.Millisecond)

	p.Finish()
	select {
	case <-c.Exited():
	case <-time.After(time.Second):
		t.Fatal("countdown did not exit after the playback finished")
	}
}
