package impl

import (
	"context"
	"log/slog"
	"time"

	"boutique/internal/domain/repository"

	"go.uber.org/fx"
)

// sweepInterval is how often expired refresh sessions and action tokens are
// purged. Expiry checks already run on every read, so the sweep only keeps
// the tables from accumulating dead rows.
const sweepInterval = time.Hour

// expiryJanitor periodically deletes expired refresh sessions and action
// tokens from the store.
type expiryJanitor struct {
	sessionRepo repository.RefreshSessionRepository
	actionRepo  repository.ActionTokenRepository
	logger      *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// ExpiryJanitorParams holds dependencies for the expiry janitor, injected by Fx.
type ExpiryJanitorParams struct {
	fx.In
	fx.Lifecycle

	SessionRepo repository.RefreshSessionRepository
	ActionRepo  repository.ActionTokenRepository
	Logger      *slog.Logger
}

// RegisterExpiryJanitor hooks the periodic sweep into the application
// lifecycle.
func RegisterExpiryJanitor(params ExpiryJanitorParams) {
	janitor := newExpiryJanitor(params.SessionRepo, params.ActionRepo, params.Logger)

	params.Append(fx.Hook{
		OnStart: func(context.Context) error {
			janitor.start()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			return janitor.stop(ctx)
		},
	})
}

func newExpiryJanitor(
	sessionRepo repository.RefreshSessionRepository,
	actionRepo repository.ActionTokenRepository,
	logger *slog.Logger,
) *expiryJanitor {
	return &expiryJanitor{
		sessionRepo: sessionRepo,
		actionRepo:  actionRepo,
		logger:      logger,
		done:        make(chan struct{}),
	}
}

func (j *expiryJanitor) start() {
	ctx, cancel := context.WithCancel(context.Background())
	j.cancel = cancel

	go func() {
		defer close(j.done)

		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()

		j.sweep(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				j.sweep(ctx)
			}
		}
	}()
}

func (j *expiryJanitor) stop(ctx context.Context) error {
	j.cancel()

	select {
	case <-j.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// sweep deletes expired rows from both token tables. Failures are logged and
// retried on the next tick, never escalated.
func (j *expiryJanitor) sweep(ctx context.Context) {
	if err := j.sessionRepo.DeleteExpired(ctx); err != nil {
		j.logger.Warn("Expired refresh session sweep failed", slog.Any("error", err))
	}
	if err := j.actionRepo.DeleteExpired(ctx); err != nil {
		j.logger.Warn("Expired action token sweep failed", slog.Any("error", err))
	}
}
