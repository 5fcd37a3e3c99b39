package main

import (
	"context"
	"time"
)

const (
	completionInterval  = 30 * time.Minute
	tokenPruneInterval  = 24 * time.Hour
	staleTokenAge       = 70 * 24 * time.Hour
	limiterSweepSeconds = 60
)

// completeFinishedStaysEvery30Mins marks confirmed reservations whose
// check-out has passed as completed.
func (app *application) completeFinishedStaysEvery30Mins(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(completionInterval)
		defer ticker.Stop()

		// Run once immediately
		app.completeFinishedStays(ctx)

		// Then run every 30 minutes
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				app.completeFinishedStays(ctx)
			}
		}
	}()
}

func (app *application) completeFinishedStays(ctx context.Context) {
	n, err := app.service.CompleteDue(ctx)
	if err != nil {
		app.logger.Errorf("Error completing finished stays: %v", err)
		return
	}
	app.logger.Infof("Marked %d reservations as completed at %s", n, time.Now().Format(time.RFC1123))
}

// pruneStalePushTokensDaily drops devices that have not refreshed their
// token for 70 days.
func (app *application) pruneStalePushTokensDaily(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(tokenPruneInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := app.pushTokens.PruneStale(ctx, staleTokenAge)
				if err != nil {
					app.logger.Errorf("Error pruning stale push tokens: %v", err)
					continue
				}
				app.logger.Infow("pruned stale push tokens", "count", n)
			}
		}
	}()
}

type sweeper interface {
	Sweep()
}

// sweepRateLimiter frees the windows of clients that went quiet.
func (app *application) sweepRateLimiter(ctx context.Context) {
	s, ok := app.rateLimiter.(sweeper)
	if !ok {
		return
	}
	go func() {
		ticker := time.NewTicker(limiterSweepSeconds * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}
