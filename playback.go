package acestudy

import (
	"sync"
	"time"
)

// Playback is the state of one quiz being answered. It is either answering
// the question at Index or finished; a finished playback never changes.
type Playback struct {
	mu sync.Mutex

	questions        []Question
	answers          []int
	index            int
	timeLimit        int // minutes, 0 = untimed
	secondsRemaining int
	finished         bool
	score            int
	sources          []Source
	recommendations  []StudyMaterial

	done chan struct{}
}

// PlaybackState is the serializable form of a Playback
type PlaybackState struct {
	Questions        []Question      `json:"questions"`
	UserAnswers      []int           `json:"userAnswers"`
	CurrentIndex     int             `json:"currentIndex"`
	TimeLimit        int             `json:"timeLimit"`
	SecondsRemaining int             `json:"secondsRemaining"`
	Finished         bool            `json:"finished"`
	Score            int             `json:"score"`
	Sources          []Source        `json:"groundingSources"`
	Recommendations  []StudyMaterial `json:"recommendations"`
}

// NewPlayback starts answering a generated quiz. timeLimit is in minutes.
func NewPlayback(result GenerationResult, timeLimit int) *Playback {
	if timeLimit < 0 {
		timeLimit = 0
	}
	answers := make([]int, len(result.Questions))
	for i := range answers {
		answers[i] = -1
	}

	return &Playback{
		questions:        result.Questions,
		answers:          answers,
		timeLimit:        timeLimit,
		secondsRemaining: timeLimit * 60,
		sources:          result.Sources,
		recommendations:  result.Recommendations,
		done:             make(chan struct{}),
	}
}

// RestorePlayback rebuilds a playback from a snapshot
func RestorePlayback(s PlaybackState) *Playback {
	p := &Playback{
		questions:        s.Questions,
		answers:          append([]int(nil), s.UserAnswers...),
		index:            s.CurrentIndex,
		timeLimit:        s.TimeLimit,
		secondsRemaining: s.SecondsRemaining,
		finished:         s.Finished,
		score:            s.Score,
		sources:          s.Sources,
		recommendations:  s.Recommendations,
		done:             make(chan struct{}),
	}
	for len(p.answers) < len(p.questions) {
		p.answers = append(p.answers, -1)
	}
	if p.index < 0 || p.index >= len(p.questions) {
		p.index = 0
	}
	if p.finished {
		close(p.done)
	}
	return p
}

// Snapshot returns a copy of the current state
func (p *Playback) Snapshot() PlaybackState {
	p.mu.Lock()
	defer p.mu.Unlock()

	return PlaybackState{
		Questions:        p.questions,
		UserAnswers:      append([]int(nil), p.answers...),
		CurrentIndex:     p.index,
		TimeLimit:        p.timeLimit,
		SecondsRemaining: p.secondsRemaining,
		Finished:         p.finished,
		Score:            p.score,
		Sources:          p.sources,
		Recommendations:  p.recommendations,
	}
}

// Current returns the question being answered and the option selected for
// it, or ok=false for an empty quiz
func (p *Playback) Current() (index int, q Question, selected int, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.questions) == 0 {
		return 0, Question{}, -1, false
	}
	return p.index, p.questions[p.index], p.answers[p.index], true
}

// Len is the number of questions
func (p *Playback) Len() int {
	return len(p.questions)
}

// Timed reports whether the quiz has a time limit
func (p *Playback) Timed() bool {
	return p.timeLimit > 0
}

// SecondsRemaining is the time left on the clock, 0 when untimed
func (p *Playback) SecondsRemaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.secondsRemaining
}

// Finished reports whether the playback has reached its terminal state
func (p *Playback) Finished() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.finished
}

// Done is closed when the playback finishes
func (p *Playback) Done() <-chan struct{} {
	return p.done
}

// SelectOption records (or overwrites) the answer to the current question.
// Out of range options and finished playbacks are ignored.
func (p *Playback) SelectOption(option int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.finished || len(p.questions) == 0 {
		return
	}
	if option < 0 || option >= len(p.questions[p.index].Options) {
		return
	}
	p.answers[p.index] = option
}

// Advance moves to the next question, or finishes on the last one. It does
// nothing until the current question is answered and reports whether it
// moved.
func (p *Playback) Advance() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.finished || len(p.questions) == 0 || p.answers[p.index] == -1 {
		return false
	}
	if p.index == len(p.questions)-1 {
		p.finish()
		return true
	}
	p.index++
	return true
}

// Retreat moves to the previous question, stopping at the first
func (p *Playback) Retreat() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.finished || p.index == 0 {
		return
	}
	p.index--
}

// Tick consumes one second of a timed quiz and finishes it when the clock
// reaches zero
func (p *Playback) Tick() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.finished || p.timeLimit == 0 {
		return
	}
	p.secondsRemaining--
	if p.secondsRemaining <= 0 {
		p.secondsRemaining = 0
		p.finish()
	}
}

// SyncElapsed fast forwards the clock to elapsed seconds since the quiz
// started. The clock never runs backwards.
func (p *Playback) SyncElapsed(elapsed int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.finished || p.timeLimit == 0 {
		return
	}
	remaining := p.timeLimit*60 - elapsed
	if remaining < p.secondsRemaining {
		p.secondsRemaining = remaining
	}
	if p.secondsRemaining <= 0 {
		p.secondsRemaining = 0
		p.finish()
	}
}

// Finish ends the playback if it is still running and returns the terminal
// session. Calling it again returns the same record.
func (p *Playback) Finish() Session {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.finished {
		p.finish()
	}
	return p.session()
}

// Session returns the record as it stands. IsComplete is false until the
// playback finishes.
func (p *Playback) Session() Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session()
}

func (p *Playback) finish() {
	score := 0
	for i, q := range p.questions {
		if p.answers[i] >= 0 && p.answers[i] == q.CorrectIndex {
			score++
		}
	}
	p.score = score
	p.finished = true
	close(p.done)
}

func (p *Playback) session() Session {
	timeSpent := 0
	if p.timeLimit > 0 {
		timeSpent = p.timeLimit*60 - p.secondsRemaining
	}
	return Session{
		Questions:       p.questions,
		UserAnswers:     append([]int(nil), p.answers...),
		Score:           p.score,
		IsComplete:      p.finished,
		TimeSpent:       timeSpent,
		Sources:         p.sources,
		Recommendations: p.recommendations,
	}
}

// Countdown drives a timed playback from a ticker
type Countdown struct {
	stop     chan struct{}
	stopOnce sync.Once
	exited   chan struct{}
}

// StartCountdown ticks p every interval until it finishes or Stop is called.
// Untimed playbacks are never ticked.
func StartCountdown(p *Playback, interval time.Duration) *Countdown {
	c := &Countdown{
		stop:   make(chan struct{}),
		exited: make(chan struct{}),
	}

	go func() {
		defer close(c.exited)
		if !p.Timed() {
			select {
			case <-p.Done():
			case <-c.stop:
			}
			return
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.Tick()
			case <-p.Done():
				return
			case <-c.stop:
				return
			}
		}
	}()

	return c
}

// Stop halts the countdown and waits for its goroutine to exit
func (c *Countdown) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
	<-c.exited
}

// Exited is closed once the countdown goroutine has returned
func (c *Countdown) Exited() <-chan struct{} {
	return c.exited
}
