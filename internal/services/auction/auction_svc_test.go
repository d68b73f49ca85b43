package auction

import (
	"context"
	"testing"
	"time"

	"fleetauctiongo/internal/audit"
	"fleetauctiongo/internal/models"
	"fleetauctiongo/internal/registry"
	"fleetauctiongo/internal/services/bidledger"
	"fleetauctiongo/internal/services/disposal"
	"fleetauctiongo/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store     *store.MemStore
	disposals disposal.IDisposalService
	auctions  IAuctionService
	ledger    bidledger.IBidLedger
}

func newFixture() *fixture {
	st := store.NewMemStore()
	reg := registry.NewStaticRegistry(models.Vehicle{ID: "veh-1", Make: "Ford", Model: "F-250"})
	return &fixture{
		store:     st,
		disposals: disposal.NewDisposalService(st, reg, audit.NopSink{}),
		auctions:  NewAuctionService(st, audit.NopSink{}, nil, 7*24*time.Hour),
		ledger:    bidledger.NewBidLedger(st, audit.NopSink{}, 1000),
	}
}

// approvedRequest submits and approves a disposal request for veh-1.
func (f *fixture) approvedRequest(t *testing.T) *models.DisposalRequest {
	t.Helper()
	req, err := f.disposals.Submit(context.Background(), disposal.SubmitInput{
		VehicleID:      "veh-1",
		RequesterID:    "usr-1",
		Reason:         "excessive_maintenance",
		Method:         "auction",
		Condition:      "fair",
		Mileage:        182000,
		EstimatedValue: 100000,
	})
	require.NoError(t, err)
	req, err = f.disposals.Approve(context.Background(), req.ID)
	require.NoError(t, err)
	return req
}

func activeWindow() (time.Time, time.Time) {
	now := time.Now().UTC()
	return now.Add(-time.Minute), now.Add(7 * 24 * time.Hour)
}

func reserve(v float64) *float64 { return &v }

func TestCreateValidation(t *testing.T) {
	f := newFixture()
	req := f.approvedRequest(t)
	startsAt, endsAt := activeWindow()

	tests := []struct {
		name string
		in   CreateInput
	}{
		{"unknown type", CreateInput{Type: "dutch", StartingPrice: 70000, StartsAt: startsAt, EndsAt: endsAt}},
		{"zero starting price", CreateInput{Type: "public", StartingPrice: 0, StartsAt: startsAt, EndsAt: endsAt}},
		{"reserve below starting price", CreateInput{Type: "public", StartingPrice: 70000, ReservePrice: reserve(60000), StartsAt: startsAt, EndsAt: endsAt}},
		{"window below seven days", CreateInput{Type: "public", StartingPrice: 70000, StartsAt: startsAt, EndsAt: startsAt.Add(6 * 24 * time.Hour)}},
		{"window already over", CreateInput{Type: "public", StartingPrice: 70000, StartsAt: startsAt.Add(-9 * 24 * time.Hour), EndsAt: startsAt.Add(-time.Hour)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auctions.Create(context.Background(), req.ID, tt.in)
			require.Error(t, err)
			assert.Equal(t, models.KindValidation, models.KindOf(err))
		})
	}
}

func TestCreateGuards(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	startsAt, endsAt := activeWindow()
	in := CreateInput{Type: "public", StartingPrice: 70000, StartsAt: startsAt, EndsAt: endsAt}

	_, err := f.auctions.Create(ctx, "nope", in)
	require.Error(t, err)
	assert.Equal(t, models.KindNotFound, models.KindOf(err))

	pending, err := f.disposals.Submit(ctx, disposal.SubmitInput{
		VehicleID: "veh-1", RequesterID: "usr-1", Reason: "upgrade",
		Method: "auction", Condition: "good",
	})
	require.NoError(t, err)
	_, err = f.auctions.Create(ctx, pending.ID, in)
	require.Error(t, err)
	assert.Equal(t, models.KindInvalidState, models.KindOf(err))
}

func TestCreateOpensBidding(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	req := f.approvedRequest(t)
	startsAt, endsAt := activeWindow()

	a, err := f.auctions.Create(ctx, req.ID, CreateInput{
		Type: "public", StartingPrice: 70000, StartsAt: startsAt, EndsAt: endsAt,
	})
	require.NoError(t, err)
	assert.Equal(t, models.AuctionActive, a.Status)

	updated, err := f.disposals.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DisposalBiddingOpen, updated.Status)

	// Only one non-cancelled auction per request.
	_, err = f.auctions.Create(ctx, req.ID, CreateInput{
		Type: "online", StartingPrice: 50000, StartsAt: startsAt, EndsAt: endsAt,
	})
	require.Error(t, err)
	assert.Equal(t, models.KindInvalidState, models.KindOf(err))
}

func TestCreateScheduledThenActivate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	req := f.approvedRequest(t)
	startsAt := time.Now().UTC().Add(time.Hour)

	a, err := f.auctions.Create(ctx, req.ID, CreateInput{
		Type: "sealed_bid", StartingPrice: 70000,
		StartsAt: startsAt, EndsAt: startsAt.Add(8 * 24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, models.AuctionScheduled, a.Status)

	a, err = f.auctions.Activate(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AuctionActive, a.Status)

	_, err = f.auctions.Activate(ctx, a.ID)
	require.Error(t, err)
	assert.Equal(t, models.KindInvalidState, models.KindOf(err))
}

func TestCloseWithNoBids(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	req := f.approvedRequest(t)
	startsAt, endsAt := activeWindow()

	a, err := f.auctions.Create(ctx, req.ID, CreateInput{
		Type: "public", StartingPrice: 70000, StartsAt: startsAt, EndsAt: endsAt,
	})
	require.NoError(t, err)

	_, err = f.auctions.Close(ctx, a.ID)
	require.ErrorIs(t, err, ErrNoBids)
	assert.Equal(t, models.KindBusinessRule, models.KindOf(err))

	unchanged, err := f.auctions.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AuctionActive, unchanged.Status)
}

func TestCloseReserveNotMet(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	req := f.approvedRequest(t)
	startsAt, endsAt := activeWindow()

	a, err := f.auctions.Create(ctx, req.ID, CreateInput{
		Type: "public", StartingPrice: 70000, ReservePrice: reserve(85000),
		StartsAt: startsAt, EndsAt: endsAt,
	})
	require.NoError(t, err)

	for _, amount := range []float64{71000, 80000, 82000} {
		_, err := f.ledger.PlaceBid(ctx, a.ID, bidledger.BidInput{
			BidderName: "Acme Salvage", BidderContact: "bids@acme.example", Amount: amount,
		})
		require.NoError(t, err)
	}

	_, err = f.auctions.Close(ctx, a.ID)
	require.Error(t, err)
	assert.Equal(t, models.KindBusinessRule, models.KindOf(err))
	assert.Contains(t, err.Error(), "reserve price not met")

	// The auction stays active and the request stays open for bidding.
	unchanged, err := f.auctions.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AuctionActive, unchanged.Status)

	parent, err := f.disposals.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DisposalBiddingOpen, parent.Status)
}

func TestCloseAwardsHighestBid(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	req := f.approvedRequest(t)
	startsAt, endsAt := activeWindow()

	a, err := f.auctions.Create(ctx, req.ID, CreateInput{
		Type: "public", StartingPrice: 70000, ReservePrice: reserve(85000),
		StartsAt: startsAt, EndsAt: endsAt,
	})
	require.NoError(t, err)

	bidders := []struct {
		name   string
		amount float64
	}{
		{"Acme Salvage", 71000},
		{"Bravo Fleet Buyers", 80000},
		{"Cardinal Auto", 86000},
	}
	for _, b := range bidders {
		_, err := f.ledger.PlaceBid(ctx, a.ID, bidledger.BidInput{
			BidderName: b.name, BidderContact: b.name + "@example.com", Amount: b.amount,
		})
		require.NoError(t, err)
	}

	settled, err := f.auctions.Close(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AuctionAwarded, settled.Status)
	assert.Equal(t, "Cardinal Auto", settled.WinnerName)
	assert.Equal(t, 86000.0, settled.WinningAmount)
	assert.Equal(t, 3, settled.BidCount)

	parent, err := f.disposals.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DisposalSold, parent.Status)

	// Awarded is terminal.
	_, err = f.auctions.Close(ctx, a.ID)
	require.Error(t, err)
	assert.Equal(t, models.KindInvalidState, models.KindOf(err))

	// The external ownership transfer can now be recorded.
	transferred, err := f.disposals.MarkTransferred(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DisposalTransferred, transferred.Status)
}

func TestCloseWithoutReserve(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	req := f.approvedRequest(t)
	startsAt, endsAt := activeWindow()

	a, err := f.auctions.Create(ctx, req.ID, CreateInput{
		Type: "online", StartingPrice: 70000, StartsAt: startsAt, EndsAt: endsAt,
	})
	require.NoError(t, err)

	_, err = f.ledger.PlaceBid(ctx, a.ID, bidledger.BidInput{
		BidderName: "Acme Salvage", BidderContact: "bids@acme.example", Amount: 70000,
	})
	require.NoError(t, err)

	settled, err := f.auctions.Close(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AuctionAwarded, settled.Status)
	assert.Equal(t, 70000.0, settled.WinningAmount)
}

func TestCancelReturnsRequestToListed(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	req := f.approvedRequest(t)
	startsAt, endsAt := activeWindow()

	a, err := f.auctions.Create(ctx, req.ID, CreateInput{
		Type: "public", StartingPrice: 70000, StartsAt: startsAt, EndsAt: endsAt,
	})
	require.NoError(t, err)

	cancelled, err := f.auctions.Cancel(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AuctionCancelled, cancelled.Status)

	parent, err := f.disposals.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DisposalListed, parent.Status)

	// A cancelled auction may be superseded by a fresh one.
	replacement, err := f.auctions.Create(ctx, req.ID, CreateInput{
		Type: "online", StartingPrice: 65000, StartsAt: startsAt, EndsAt: endsAt,
	})
	require.NoError(t, err)
	assert.Equal(t, models.AuctionActive, replacement.Status)

	_, err = f.auctions.Cancel(ctx, cancelled.ID)
	require.Error(t, err)
	assert.Equal(t, models.KindInvalidState, models.KindOf(err))
}

func TestListByStatus(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	req := f.approvedRequest(t)
	startsAt, endsAt := activeWindow()

	a, err := f.auctions.Create(ctx, req.ID, CreateInput{
		Type: "public", StartingPrice: 70000, StartsAt: startsAt, EndsAt: endsAt,
	})
	require.NoError(t, err)

	active, err := f.auctions.List(ctx, "active", 10, 0)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, a.ID, active[0].ID)

	awarded, err := f.auctions.List(ctx, "awarded", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, awarded)

	_, err = f.auctions.List(ctx, "paused", 10, 0)
	require.Error(t, err)
	assert.Equal(t, models.KindValidation, models.KindOf(err))
}
