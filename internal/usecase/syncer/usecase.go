package syncer

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"wanzo-portfolio/internal/domain/syncqueue"
)

const batchSize = 50

// Pusher replays one queued mutation against the remote system of record.
type Pusher interface {
	PushMutation(ctx context.Context, item syncqueue.Item) error
}

// Usecase drains the outbox. The enabled flag is read once at startup; when
// disabled, writes still queue locally but the queue is never drained.
type Usecase struct {
	queue      syncqueue.Repository
	pusher     Pusher
	enabled    bool
	interval   time.Duration
	maxRetries int
	log        *logrus.Logger
}

func NewUsecase(queue syncqueue.Repository, pusher Pusher, enabled bool, interval time.Duration, maxRetries int, log *logrus.Logger) *Usecase {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Usecase{
		queue:      queue,
		pusher:     pusher,
		enabled:    enabled,
		interval:   interval,
		maxRetries: maxRetries,
		log:        log,
	}
}

// Start launches the drain loop. It returns immediately; the loop stops when
// ctx is canceled.
func (u *Usecase) Start(ctx context.Context) {
	if !u.enabled {
		u.log.Info("sync disabled, outbox will not be drained")
		return
	}
	go func() {
		ticker := time.NewTicker(u.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := u.DrainOnce(ctx); err != nil {
					u.log.WithError(err).Warn("outbox drain failed")
				} else if n > 0 {
					u.log.WithField("pushed", n).Info("outbox drained")
				}
			}
		}
	}()
}

// DrainOnce pushes one batch in priority order. A failed push increments the
// retry counter; items past maxRetries are parked (kept, but out of the
// dequeue order) until an operator intervenes.
func (u *Usecase) DrainOnce(ctx context.Context) (int, error) {
	items, err := u.queue.NextBatch(ctx, batchSize)
	if err != nil {
		return 0, err
	}
	pushed := 0
	for i := range items {
		item := items[i]
		if u.maxRetries > 0 && item.Retries >= u.maxRetries {
			// legacy rows from before the counter hit the ceiling
			u.park(ctx, &item)
			continue
		}
		if err := u.pusher.PushMutation(ctx, item); err != nil {
			item.Retries++
			if u.maxRetries > 0 && item.Retries >= u.maxRetries {
				u.park(ctx, &item)
				continue
			}
			if uerr := u.queue.Update(ctx, &item); uerr != nil {
				u.log.WithError(uerr).WithField("item", item.ID).Warn("retry counter update failed")
			}
			continue
		}
		if err := u.queue.Remove(ctx, item.ID); err != nil {
			u.log.WithError(err).WithField("item", item.ID).Warn("outbox remove failed")
			continue
		}
		pushed++
	}
	return pushed, nil
}

func (u *Usecase) park(ctx context.Context, item *syncqueue.Item) {
	item.Parked = true
	if err := u.queue.Update(ctx, item); err != nil {
		u.log.WithError(err).WithField("item", item.ID).Warn("park update failed")
		return
	}
	u.log.WithField("item", item.ID).WithField("entity", item.Entity).
		Error("outbox item parked after max retries")
}
