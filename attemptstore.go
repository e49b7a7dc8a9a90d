package acestudy

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Attempt is one user's run through a generated quiz
type Attempt struct {
	ID        string        `json:"id"`
	Context   StudyContext  `json:"context"`
	State     PlaybackState `json:"state"`
	StartedAt time.Time     `json:"startedAt"`
	CreatedAt time.Time     `json:"createdAt"`
}

// NewAttempt starts an attempt on a generated quiz
func NewAttempt(sc StudyContext, result GenerationResult) *Attempt {
	now := time.Now().UTC()
	return &Attempt{
		ID:        uuid.NewString(),
		Context:   sc,
		State:     NewPlayback(result, sc.TimeLimit).Snapshot(),
		StartedAt: now,
		CreatedAt: now,
	}
}

// Resume rebuilds the playback with the clock synced to now
func (a *Attempt) Resume(now time.Time) *Playback {
	p := RestorePlayback(a.State)
	p.SyncElapsed(int(now.Sub(a.StartedAt) / time.Second))
	return p
}

// Record stores the playback state back into the attempt
func (a *Attempt) Record(p *Playback) {
	a.State = p.Snapshot()
}

// AttemptStore keeps attempts between requests
type AttemptStore interface {
	Create(ctx context.Context, a *Attempt) error
	Get(ctx context.Context, id string) (*Attempt, error)
	Save(ctx context.Context, a *Attempt) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// NewAttemptStore opens the store selected by ATTEMPT_STORE
func NewAttemptStore(ctx context.Context, cfg Config) (AttemptStore, error) {
	switch cfg.AttemptStore {
	case "", "sqlite":
		db, err := OpenDB(cfg.SQLiteDSN)
		if err != nil {
			return nil, err
		}
		if err := db.CreateTables(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	case "redis":
		return NewRedisAttemptStore(ctx, cfg.RedisAddr, cfg.AttemptTTL)
	}
	return nil, fmt.Errorf("unknown attempt store %q", cfg.AttemptStore)
}
