package service

import (
	"context"
	"errors"
	"time"

	"playback_lights/internal/logger"
	"playback_lights/internal/models"
)

const (
	DefaultQueueSize = 32

	// attemptTimeout bounds one synchronization attempt, network calls included.
	attemptTimeout = 30 * time.Second
)

var ErrLoopStopped = errors.New("sync loop is not running")

// SyncSnapshot is what the status endpoint reports.
type SyncSnapshot struct {
	State  SyncState          `json:"state"`
	Player models.PlayerState `json:"player"`
}

type job func(ctx context.Context)

// EventLoop serializes every access to the engine and player tracker onto a
// single goroutine, so one attempt finishes before the next starts.
type EventLoop struct {
	engine *SyncEngine
	player *PlayerTracker
	queue  chan job
	done   chan struct{}
	log    *logger.Logger
}

func NewEventLoop(engine *SyncEngine, player *PlayerTracker, queueSize int, log *logger.Logger) *EventLoop {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if log == nil {
		log = logger.Nop()
	}
	return &EventLoop{
		engine: engine,
		player: player,
		queue:  make(chan job, queueSize),
		done:   make(chan struct{}),
		log:    log,
	}
}

// Run processes queued work until ctx is canceled.
func (l *EventLoop) Run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-l.queue:
			j(ctx)
		}
	}
}

// Submit queues a player event. A non-nil player snapshot replaces the
// tracked one right before the event is handled.
func (l *EventLoop) Submit(ctx context.Context, ev models.PlayerEvent, player *models.PlayerState) error {
	return l.enqueue(ctx, func(runCtx context.Context) {
		l.player.Update(player)

		attemptCtx, cancel := context.WithTimeout(runCtx, attemptTimeout)
		defer cancel()

		start := time.Now()
		err := l.engine.HandleEvent(attemptCtx, ev)
		l.log.Debugw("sync_attempt_done",
			"kind", ev.Kind, "is_paused", ev.IsPaused,
			"took", time.Since(start), "err", err)
	})
}

// Snapshot reads the cache and player state from the loop goroutine.
func (l *EventLoop) Snapshot(ctx context.Context) (SyncSnapshot, error) {
	out := make(chan SyncSnapshot, 1)
	err := l.enqueue(ctx, func(context.Context) {
		out <- SyncSnapshot{State: l.engine.State(), Player: l.player.Current()}
	})
	if err != nil {
		return SyncSnapshot{}, err
	}
	select {
	case s := <-out:
		return s, nil
	case <-l.done:
		return SyncSnapshot{}, ErrLoopStopped
	case <-ctx.Done():
		return SyncSnapshot{}, ctx.Err()
	}
}

func (l *EventLoop) enqueue(ctx context.Context, j job) error {
	select {
	case <-l.done:
		return ErrLoopStopped
	default:
	}
	select {
	case l.queue <- j:
		return nil
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}
