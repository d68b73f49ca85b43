// Package auction owns the auction lifecycle: configuration against an
// approved disposal request, activation, and settlement. The bid ledger lives
// in its own package and never mutates auction state.
package auction

import (
	"context"
	"errors"
	"time"

	"fleetauctiongo/internal/audit"
	"fleetauctiongo/internal/models"
	"fleetauctiongo/internal/store"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// Timer keys carry only a TTL; the deadline watcher reacts to their
	// expiry events.
	StartTimerPrefix = "auction_start:"
	EndTimerPrefix   = "auction_end:"
)

// ErrNoBids is returned by Close when the auction has no valid bids; the
// caller has to cancel explicitly instead.
var ErrNoBids = &models.DomainError{
	Kind:    models.KindBusinessRule,
	Message: "cannot close an auction with no bids",
}

// CreateInput is the auction configuration supplied against an approved
// disposal request.
type CreateInput struct {
	Type          string
	StartingPrice float64
	ReservePrice  *float64
	StartsAt      time.Time
	EndsAt        time.Time
}

type IAuctionService interface {
	Create(ctx context.Context, disposalID string, in CreateInput) (*models.Auction, error)
	// Activate flips a scheduled auction to active once its start date is
	// reached; driven by the deadline watcher.
	Activate(ctx context.Context, id string) (*models.Auction, error)
	// Close settles: determines the winner, checks the reserve and awards.
	Close(ctx context.Context, id string) (*models.Auction, error)
	Cancel(ctx context.Context, id string) (*models.Auction, error)
	Get(ctx context.Context, id string) (*models.Auction, error)
	List(ctx context.Context, status string, limit, offset int) ([]models.Auction, error)
}

type auctionService struct {
	store       store.Store
	sink        audit.Sink
	rdc         *redis.Client // nil disables deadline timers
	minDuration time.Duration
}

func NewAuctionService(st store.Store, sink audit.Sink, rdc *redis.Client, minDuration time.Duration) IAuctionService {
	return &auctionService{
		store:       st,
		sink:        sink,
		rdc:         rdc,
		minDuration: minDuration,
	}
}

func (svc *auctionService) Create(ctx context.Context, disposalID string, in CreateInput) (*models.Auction, error) {
	auctionType := models.AuctionType(in.Type)
	if !models.ValidAuctionType(auctionType) {
		return nil, models.Validationf("unknown auction type %q", in.Type)
	}
	if in.StartingPrice <= 0 {
		return nil, models.Validationf("starting price must be greater than zero")
	}
	if in.ReservePrice != nil && *in.ReservePrice < in.StartingPrice {
		return nil, models.Validationf("reserve price must not be below the starting price")
	}
	if in.EndsAt.Sub(in.StartsAt) < svc.minDuration {
		return nil, models.Validationf("auction duration must be at least %d days",
			int(svc.minDuration.Hours()/24))
	}
	now := time.Now().UTC()
	if in.EndsAt.Before(now) {
		return nil, models.Validationf("auction end date must be in the future")
	}

	status := models.AuctionScheduled
	if !in.StartsAt.After(now) {
		status = models.AuctionActive
	}
	a := &models.Auction{
		ID:            uuid.NewString(),
		DisposalID:    disposalID,
		Type:          auctionType,
		StartingPrice: in.StartingPrice,
		ReservePrice:  in.ReservePrice,
		StartsAt:      in.StartsAt.UTC(),
		EndsAt:        in.EndsAt.UTC(),
		Status:        status,
		CreatedAt:     now,
	}

	err := svc.store.CreateAuction(ctx, a)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, models.NotFoundf("disposal request %s not found", disposalID)
	case errors.Is(err, store.ErrStaleState):
		return nil, models.InvalidStatef("disposal request %s is not approved for auction", disposalID)
	case errors.Is(err, store.ErrAuctionExists):
		return nil, models.InvalidStatef("disposal request %s already has an auction", disposalID)
	case err != nil:
		return nil, err
	}

	svc.scheduleTimers(ctx, a)
	svc.sink.Emit(ctx, "auction.created", map[string]any{
		"auction_id":  a.ID,
		"disposal_id": a.DisposalID,
		"status":      string(a.Status),
		"ends_at":     a.EndsAt.Format(time.RFC3339),
	})
	return a, nil
}

func (svc *auctionService) Activate(ctx context.Context, id string) (*models.Auction, error) {
	err := svc.store.MarkAuctionActive(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, models.NotFoundf("auction %s not found", id)
	case errors.Is(err, store.ErrStaleState):
		return nil, models.InvalidStatef("auction %s is not scheduled", id)
	case err != nil:
		return nil, err
	}
	a, err := svc.store.GetAuction(ctx, id)
	if err != nil {
		return nil, err
	}
	svc.sink.Emit(ctx, "auction.opened", map[string]any{
		"auction_id":  a.ID,
		"disposal_id": a.DisposalID,
	})
	return a, nil
}

func (svc *auctionService) Close(ctx context.Context, id string) (*models.Auction, error) {
	a, err := svc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != models.AuctionActive {
		return nil, models.InvalidStatef("auction %s is not active", id)
	}

	winning, err := svc.store.HighestBid(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoBids
	}
	if err != nil {
		return nil, err
	}

	if a.ReservePrice != nil && winning.Amount < *a.ReservePrice {
		// The auction stays active; the operator may extend or cancel.
		return nil, models.BusinessRulef(
			"reserve price not met: highest bid %.2f is below reserve %.2f",
			winning.Amount, *a.ReservePrice)
	}

	settled, err := svc.store.SettleAuction(ctx, id, winning)
	switch {
	case errors.Is(err, store.ErrStaleState):
		return nil, models.InvalidStatef("auction %s is not active", id)
	case err != nil:
		return nil, err
	}

	svc.dropTimers(ctx, id)
	svc.sink.Emit(ctx, "auction.awarded", map[string]any{
		"auction_id":  settled.ID,
		"disposal_id": settled.DisposalID,
		"winner":      settled.WinnerName,
		"amount":      settled.WinningAmount,
	})
	return settled, nil
}

func (svc *auctionService) Cancel(ctx context.Context, id string) (*models.Auction, error) {
	a, err := svc.store.CancelAuction(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, models.NotFoundf("auction %s not found", id)
	case errors.Is(err, store.ErrStaleState):
		return nil, models.InvalidStatef("auction %s is already finished", id)
	case err != nil:
		return nil, err
	}

	svc.dropTimers(ctx, id)
	svc.sink.Emit(ctx, "auction.cancelled", map[string]any{
		"auction_id":  a.ID,
		"disposal_id": a.DisposalID,
	})
	return a, nil
}

func (svc *auctionService) Get(ctx context.Context, id string) (*models.Auction, error) {
	a, err := svc.store.GetAuction(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, models.NotFoundf("auction %s not found", id)
	}
	return a, err
}

func (svc *auctionService) List(ctx context.Context, status string, limit, offset int) ([]models.Auction, error) {
	st := models.AuctionStatus(status)
	if status != "" && !models.ValidAuctionStatus(st) {
		return nil, models.Validationf("unknown auction status %q", status)
	}
	return svc.store.ListAuctions(ctx, st, limit, offset)
}

// scheduleTimers arms the start and end TTL keys. Timer loss is tolerable: an
// operator can still activate or close by hand, so failures only get logged.
func (svc *auctionService) scheduleTimers(ctx context.Context, a *models.Auction) {
	if svc.rdc == nil {
		return
	}
	if a.Status == models.AuctionScheduled {
		ttl := time.Until(a.StartsAt)
		if ttl > 0 {
			if err := svc.rdc.Set(ctx, StartTimerPrefix+a.ID, 1, ttl).Err(); err != nil {
				zap.L().Warn("auction.timer_start", zap.String("id", a.ID), zap.Error(err))
			}
		}
	}
	ttl := time.Until(a.EndsAt)
	if ttl > 0 {
		if err := svc.rdc.Set(ctx, EndTimerPrefix+a.ID, 1, ttl).Err(); err != nil {
			zap.L().Warn("auction.timer_end", zap.String("id", a.ID), zap.Error(err))
		}
	}
}

func (svc *auctionService) dropTimers(ctx context.Context, id string) {
	if svc.rdc == nil {
		return
	}
	_ = svc.rdc.Del(ctx, StartTimerPrefix+id, EndTimerPrefix+id).Err()
}
