package store

import (
	"context"
	"sort"
	"sync"

	"fleetauctiongo/internal/models"
)

// MemStore is a mutex-guarded in-memory Store. It backs the memory driver and
// the service tests; the single lock gives it the same per-operation atomicity
// and per-auction bid serialisation the Postgres store gets from transactions.
type MemStore struct {
	mu        sync.Mutex
	disposals map[string]models.DisposalRequest
	auctions  map[string]models.Auction
	bids      map[string][]models.Bid // auctionID -> append-only ledger
}

func NewMemStore() *MemStore {
	return &MemStore{
		disposals: make(map[string]models.DisposalRequest),
		auctions:  make(map[string]models.Auction),
		bids:      make(map[string][]models.Bid),
	}
}

var _ Store = (*MemStore)(nil)

func (s *MemStore) CreateDisposal(_ context.Context, d *models.DisposalRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disposals[d.ID] = *d
	return nil
}

func (s *MemStore) GetDisposal(_ context.Context, id string) (*models.DisposalRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.disposals[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (s *MemStore) ListDisposals(_ context.Context, status models.DisposalStatus, limit, offset int) ([]models.DisposalRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 {
		limit = 10
	}
	var all []models.DisposalRequest
	for _, d := range s.disposals {
		if status != "" && d.Status != status {
			continue
		}
		all = append(all, d)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return page(all, limit, offset), nil
}

func (s *MemStore) DecideDisposal(_ context.Context, id string, approval models.ApprovalStatus, status models.DisposalStatus, note string) (*models.DisposalRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.disposals[id]
	if !ok {
		return nil, ErrNotFound
	}
	if d.ApprovalStatus != models.ApprovalPending {
		return nil, ErrStaleState
	}
	d.ApprovalStatus = approval
	d.Status = status
	d.RejectReason = note
	s.disposals[id] = d
	return &d, nil
}

func (s *MemStore) TransitionDisposal(_ context.Context, id string, from, to models.DisposalStatus) (*models.DisposalRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.disposals[id]
	if !ok {
		return nil, ErrNotFound
	}
	if d.Status != from {
		return nil, ErrStaleState
	}
	d.Status = to
	s.disposals[id] = d
	return &d, nil
}

func (s *MemStore) CreateAuction(_ context.Context, a *models.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.disposals[a.DisposalID]
	if !ok {
		return ErrNotFound
	}
	if d.ApprovalStatus != models.ApprovalApproved {
		return ErrStaleState
	}
	for _, existing := range s.auctions {
		if existing.DisposalID == a.DisposalID && existing.Status != models.AuctionCancelled {
			return ErrAuctionExists
		}
	}
	s.auctions[a.ID] = *a
	d.Status = models.DisposalBiddingOpen
	s.disposals[d.ID] = d
	return nil
}

func (s *MemStore) GetAuction(_ context.Context, id string) (*models.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.auctions[id]
	if !ok {
		return nil, ErrNotFound
	}
	s.fillDerived(&a)
	return &a, nil
}

func (s *MemStore) ListAuctions(_ context.Context, status models.AuctionStatus, limit, offset int) ([]models.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 {
		limit = 10
	}
	var all []models.Auction
	for _, a := range s.auctions {
		if status != "" && a.Status != status {
			continue
		}
		s.fillDerived(&a)
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].EndsAt.After(all[j].EndsAt) })
	return page(all, limit, offset), nil
}

func (s *MemStore) MarkAuctionActive(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.auctions[id]
	if !ok {
		return ErrNotFound
	}
	if a.Status != models.AuctionScheduled {
		return ErrStaleState
	}
	a.Status = models.AuctionActive
	s.auctions[id] = a
	return nil
}

func (s *MemStore) SettleAuction(_ context.Context, id string, winning *models.Bid) (*models.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.auctions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if a.Status != models.AuctionActive {
		return nil, ErrStaleState
	}
	a.Status = models.AuctionAwarded
	a.WinnerName = winning.BidderName
	a.WinningBidID = winning.ID
	a.WinningAmount = winning.Amount
	s.auctions[id] = a

	if d, ok := s.disposals[a.DisposalID]; ok {
		d.Status = models.DisposalSold
		s.disposals[d.ID] = d
	}
	s.fillDerived(&a)
	return &a, nil
}

func (s *MemStore) CancelAuction(_ context.Context, id string) (*models.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.auctions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if a.Status != models.AuctionScheduled && a.Status != models.AuctionActive {
		return nil, ErrStaleState
	}
	a.Status = models.AuctionCancelled
	s.auctions[id] = a

	if d, ok := s.disposals[a.DisposalID]; ok && d.Status == models.DisposalBiddingOpen {
		d.Status = models.DisposalListed
		s.disposals[d.ID] = d
	}
	s.fillDerived(&a)
	return &a, nil
}

func (s *MemStore) AppendBid(_ context.Context, b *models.Bid, minIncrement float64) (*models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.auctions[b.AuctionID]
	if !ok {
		return nil, ErrNotFound
	}
	if a.Status != models.AuctionActive {
		return nil, ErrAuctionNotActive
	}

	var highest float64
	for _, prev := range s.bids[b.AuctionID] {
		if prev.IsValid && prev.Amount > highest {
			highest = prev.Amount
		}
	}
	minNext := models.MinimumNextBid(a.StartingPrice, highest, minIncrement)
	if b.Amount < minNext {
		return nil, &BidTooLowError{Minimum: minNext}
	}
	s.bids[b.AuctionID] = append(s.bids[b.AuctionID], *b)
	return b, nil
}

func (s *MemStore) HighestBid(_ context.Context, auctionID string) (*models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.auctions[auctionID]; !ok {
		return nil, ErrNotFound
	}
	var best *models.Bid
	for i := range s.bids[auctionID] {
		b := s.bids[auctionID][i]
		if !b.IsValid {
			continue
		}
		// Strictly-greater keeps the earliest bid on equal amounts: the
		// ledger is in acceptance order.
		if best == nil || b.Amount > best.Amount {
			best = &b
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	out := *best
	return &out, nil
}

func (s *MemStore) ListBids(_ context.Context, auctionID string) ([]models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Bid, len(s.bids[auctionID]))
	copy(out, s.bids[auctionID])
	return out, nil
}

// fillDerived computes the read-only bid views; callers hold s.mu.
func (s *MemStore) fillDerived(a *models.Auction) {
	a.BidCount = 0
	a.HighestBid = 0
	for _, b := range s.bids[a.ID] {
		if !b.IsValid {
			continue
		}
		a.BidCount++
		if b.Amount > a.HighestBid {
			a.HighestBid = b.Amount
		}
	}
}

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}
