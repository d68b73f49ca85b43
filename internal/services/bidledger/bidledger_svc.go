// Package bidledger accepts bids against active auctions. The ledger is
// append-only: it never mutates auction or disposal state, and an accepted
// bid is never updated or deleted.
package bidledger

import (
	"context"
	"errors"
	"time"

	"fleetauctiongo/internal/audit"
	"fleetauctiongo/internal/models"
	"fleetauctiongo/internal/store"

	"github.com/google/uuid"
)

type BidInput struct {
	BidderName    string
	BidderContact string
	Amount        float64
	Notes         string
}

type IBidLedger interface {
	PlaceBid(ctx context.Context, auctionID string, in BidInput) (*models.Bid, error)
	// HighestBid returns nil when the auction exists but has no valid bids.
	HighestBid(ctx context.Context, auctionID string) (*models.Bid, error)
	ListBids(ctx context.Context, auctionID string) ([]models.Bid, error)
}

type bidLedger struct {
	store        store.Store
	sink         audit.Sink
	minIncrement float64
}

func NewBidLedger(st store.Store, sink audit.Sink, minIncrement float64) IBidLedger {
	return &bidLedger{store: st, sink: sink, minIncrement: minIncrement}
}

func (svc *bidLedger) PlaceBid(ctx context.Context, auctionID string, in BidInput) (*models.Bid, error) {
	if in.BidderName == "" {
		return nil, models.Validationf("bidder name is required")
	}
	if in.BidderContact == "" {
		return nil, models.Validationf("bidder contact is required")
	}
	if in.Amount <= 0 {
		return nil, models.Validationf("bid amount must be greater than zero")
	}

	bid := &models.Bid{
		ID:            uuid.NewString(),
		AuctionID:     auctionID,
		BidderName:    in.BidderName,
		BidderContact: in.BidderContact,
		Amount:        in.Amount,
		Notes:         in.Notes,
		IsValid:       true,
		PlacedAt:      time.Now().UTC(),
	}

	// The store re-checks the auction state and the minimum-bid condition
	// under a lock on the auction, so a concurrent bid cannot slip under a
	// stale highest-bid snapshot.
	accepted, err := svc.store.AppendBid(ctx, bid, svc.minIncrement)
	var tooLow *store.BidTooLowError
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, models.NotFoundf("auction %s not found", auctionID)
	case errors.Is(err, store.ErrAuctionNotActive):
		return nil, models.InvalidStatef("auction %s is not open for bidding", auctionID)
	case errors.As(err, &tooLow):
		return nil, models.Validationf("bid of %.2f is below the minimum acceptable bid of %.2f",
			in.Amount, tooLow.Minimum)
	case err != nil:
		return nil, err
	}

	svc.sink.Emit(ctx, "bid.placed", map[string]any{
		"auction_id": auctionID,
		"bid_id":     accepted.ID,
		"bidder":     accepted.BidderName,
		"amount":     accepted.Amount,
	})
	return accepted, nil
}

func (svc *bidLedger) HighestBid(ctx context.Context, auctionID string) (*models.Bid, error) {
	if _, err := svc.store.GetAuction(ctx, auctionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, models.NotFoundf("auction %s not found", auctionID)
		}
		return nil, err
	}
	bid, err := svc.store.HighestBid(ctx, auctionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return bid, err
}

func (svc *bidLedger) ListBids(ctx context.Context, auctionID string) ([]models.Bid, error) {
	if _, err := svc.store.GetAuction(ctx, auctionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, models.NotFoundf("auction %s not found", auctionID)
		}
		return nil, err
	}
	return svc.store.ListBids(ctx, auctionID)
}
