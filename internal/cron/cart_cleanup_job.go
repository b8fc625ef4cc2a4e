package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/internal/cart"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/db/models"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/enums"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/logger"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/outbox"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/outbox/payloads"
	"github.com/google/uuid"
)

const (
	defaultCartIdleWindow = 30 * 24 * time.Hour
	cartCleanupBatchSize  = 200
)

type idleCartReader interface {
	FindIdleGuestCarts(ctx context.Context, cutoff time.Time, limit int) ([]models.Cart, error)
}

type abandoningCartRepo interface {
	UpdateStatusIf(ctx context.Context, cartID uuid.UUID, from, to enums.CartStatus) (int64, error)
}

type cartRepoFactory func(tx *gorm.DB) abandoningCartRepo

func defaultCartRepoFactory(tx *gorm.DB) abandoningCartRepo {
	return cart.NewRepository(tx)
}

// CartCleanupJobParams configure the idle guest cart sweeper.
type CartCleanupJobParams struct {
	Logger      *logger.Logger
	DB          txRunner
	Carts       idleCartReader
	Outbox      outboxEmitter
	RepoFactory cartRepoFactory
	IdleWindow  time.Duration
}

// NewCartCleanupJob builds the cron job that marks stale guest carts
// abandoned. User carts are left alone; signed-in customers keep their
// carts until they act on them.
func NewCartCleanupJob(params CartCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("carts reader required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	factory := params.RepoFactory
	if factory == nil {
		factory = defaultCartRepoFactory
	}
	window := params.IdleWindow
	if window <= 0 {
		window = defaultCartIdleWindow
	}
	return &cartCleanupJob{
		logg:        params.Logger,
		db:          params.DB,
		carts:       params.Carts,
		outbox:      params.Outbox,
		repoFactory: factory,
		window:      window,
		now:         time.Now,
	}, nil
}

type cartCleanupJob struct {
	logg        *logger.Logger
	db          txRunner
	carts       idleCartReader
	outbox      outboxEmitter
	repoFactory cartRepoFactory
	window      time.Duration
	now         func() time.Time
}

func (j *cartCleanupJob) Name() string { return "cart-cleanup" }

func (j *cartCleanupJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	cutoff := now.Add(-j.window)
	idle, err := j.carts.FindIdleGuestCarts(ctx, cutoff, cartCleanupBatchSize)
	if err != nil {
		return fmt.Errorf("query idle carts: %w", err)
	}

	abandoned := 0
	var errs []error
	for _, stale := range idle {
		done, err := j.abandon(ctx, stale, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("cart %s: %w", stale.ID, err))
			continue
		}
		if done {
			abandoned++
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"eligible":  len(idle),
		"abandoned": abandoned,
	})
	j.logg.Info(logCtx, "cart cleanup loop complete")
	return multierr.Combine(errs...)
}

func (j *cartCleanupJob) abandon(ctx context.Context, stale models.Cart, now time.Time) (bool, error) {
	abandoned := false
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.repoFactory(tx).UpdateStatusIf(ctx, stale.ID, enums.CartStatusActive, enums.CartStatusAbandoned)
		if err != nil {
			return err
		}
		if rows == 0 {
			// Lost the race to a checkout or merge; nothing to flag.
			return nil
		}
		abandoned = true
		return j.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCartAbandoned,
			AggregateType: enums.AggregateCart,
			AggregateID:   stale.ID,
			Actor:         &outbox.ActorRef{Kind: enums.ActorKindSystem},
			Version:       1,
			OccurredAt:    now,
			Data: payloads.CartAbandonedEvent{
				CartID:         stale.ID,
				UserID:         stale.UserID,
				GuestToken:     stale.GuestToken,
				ItemCount:      len(stale.Items),
				LastActivityAt: stale.UpdatedAt,
			},
		})
	})
	return abandoned, err
}
