// Package store is the record-store boundary: three collections
// (disposal_requests, auctions, bids) behind one interface. Writes that carry
// a cross-entity guard (auction creation, settlement, bid acceptance) are
// single transactions so a rejected operation never leaves a partial write.
package store

import (
	"context"
	"errors"
	"fmt"

	"fleetauctiongo/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")

	// ErrStaleState means a conditional write found the record outside the
	// expected state. The caller translates it to an invalid-state error.
	ErrStaleState = errors.New("record not in expected state")

	// ErrAuctionExists guards the one-active-auction-per-request invariant.
	ErrAuctionExists = errors.New("disposal request already has a non-cancelled auction")

	ErrAuctionNotActive = errors.New("auction is not active")
)

// BidTooLowError is returned from inside the bid-insert transaction, naming
// the minimum the ledger would have accepted at that instant.
type BidTooLowError struct {
	Minimum float64
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid below minimum acceptable amount of %.2f", e.Minimum)
}

type Store interface {
	// Disposal requests.
	CreateDisposal(ctx context.Context, d *models.DisposalRequest) error
	GetDisposal(ctx context.Context, id string) (*models.DisposalRequest, error)
	ListDisposals(ctx context.Context, status models.DisposalStatus, limit, offset int) ([]models.DisposalRequest, error)
	// DecideDisposal moves a pending request to approved/rejected in one
	// conditional write; ErrStaleState when the request is no longer pending.
	DecideDisposal(ctx context.Context, id string, approval models.ApprovalStatus, status models.DisposalStatus, note string) (*models.DisposalRequest, error)
	// TransitionDisposal is a plain guarded status move (e.g. sold →
	// transferred, driven by the external ownership-transfer collaborator).
	TransitionDisposal(ctx context.Context, id string, from, to models.DisposalStatus) (*models.DisposalRequest, error)

	// Auctions. CreateAuction enforces, in one transaction: the parent request
	// is approved, no non-cancelled auction exists for it, and the parent
	// moves to bidding_open together with the insert.
	CreateAuction(ctx context.Context, a *models.Auction) error
	GetAuction(ctx context.Context, id string) (*models.Auction, error)
	ListAuctions(ctx context.Context, status models.AuctionStatus, limit, offset int) ([]models.Auction, error)
	// MarkAuctionActive flips scheduled → active.
	MarkAuctionActive(ctx context.Context, id string) error
	// SettleAuction moves an active auction to awarded, records the winner and
	// sets the parent request to sold, all in one transaction.
	SettleAuction(ctx context.Context, id string, winning *models.Bid) (*models.Auction, error)
	// CancelAuction moves a scheduled/active auction to cancelled and the
	// parent request back to listed.
	CancelAuction(ctx context.Context, id string) (*models.Auction, error)

	// Bids. AppendBid locks the auction row, re-validates the minimum-bid
	// condition against the current highest valid bid and inserts, so two
	// concurrent bids can never both succeed against the same snapshot.
	AppendBid(ctx context.Context, b *models.Bid, minIncrement float64) (*models.Bid, error)
	// HighestBid returns the highest valid bid; the earliest one wins ties.
	// ErrNotFound when the auction has no valid bids.
	HighestBid(ctx context.Context, auctionID string) (*models.Bid, error)
	ListBids(ctx context.Context, auctionID string) ([]models.Bid, error)
}
