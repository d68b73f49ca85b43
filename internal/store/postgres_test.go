package store

import (
	"context"
	"testing"
	"time"

	"fleetauctiongo/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(db), mock
}

func testBid(amount float64) *models.Bid {
	return &models.Bid{
		ID:            "bid-1",
		AuctionID:     "auc-1",
		BidderName:    "Acme Salvage",
		BidderContact: "bids@acme.example",
		Amount:        amount,
		IsValid:       true,
		PlacedAt:      time.Now().UTC(),
	}
}

func TestAppendBidAtExactMinimum(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT starting_price, status FROM auctions").
		WithArgs("auc-1").
		WillReturnRows(sqlmock.NewRows([]string{"starting_price", "status"}).
			AddRow(70000.0, "active"))
	mock.ExpectQuery("FROM bids WHERE auction_id").
		WithArgs("auc-1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(70500.0))
	mock.ExpectExec("INSERT INTO bids").
		WithArgs("bid-1", "auc-1", "Acme Salvage", "bids@acme.example",
			71500.0, "", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	accepted, err := st.AppendBid(context.Background(), testBid(71500), 1000)
	require.NoError(t, err)
	assert.Equal(t, "bid-1", accepted.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendBidTooLowRollsBack(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT starting_price, status FROM auctions").
		WithArgs("auc-1").
		WillReturnRows(sqlmock.NewRows([]string{"starting_price", "status"}).
			AddRow(70000.0, "active"))
	mock.ExpectQuery("FROM bids WHERE auction_id").
		WithArgs("auc-1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(70500.0))
	mock.ExpectRollback()

	_, err := st.AppendBid(context.Background(), testBid(70800), 1000)
	var tooLow *BidTooLowError
	require.ErrorAs(t, err, &tooLow)
	assert.Equal(t, 71500.0, tooLow.Minimum)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendBidClosedAuction(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT starting_price, status FROM auctions").
		WithArgs("auc-1").
		WillReturnRows(sqlmock.NewRows([]string{"starting_price", "status"}).
			AddRow(70000.0, "awarded"))
	mock.ExpectRollback()

	_, err := st.AppendBid(context.Background(), testBid(90000), 1000)
	require.ErrorIs(t, err, ErrAuctionNotActive)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAuctionRejectsDuplicate(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT approval_status FROM disposal_requests").
		WithArgs("disp-1").
		WillReturnRows(sqlmock.NewRows([]string{"approval_status"}).AddRow("approved"))
	mock.ExpectQuery("FROM auctions WHERE disposal_id").
		WithArgs("disp-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	now := time.Now().UTC()
	err := st.CreateAuction(context.Background(), &models.Auction{
		ID: "auc-2", DisposalID: "disp-1", Type: models.AuctionPublic,
		StartingPrice: 70000, StartsAt: now, EndsAt: now.Add(7 * 24 * time.Hour),
		Status: models.AuctionActive, CreatedAt: now,
	})
	require.ErrorIs(t, err, ErrAuctionExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAuctionRequiresApproval(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT approval_status FROM disposal_requests").
		WithArgs("disp-1").
		WillReturnRows(sqlmock.NewRows([]string{"approval_status"}).AddRow("pending"))
	mock.ExpectRollback()

	now := time.Now().UTC()
	err := st.CreateAuction(context.Background(), &models.Auction{
		ID: "auc-1", DisposalID: "disp-1", Type: models.AuctionPublic,
		StartingPrice: 70000, StartsAt: now, EndsAt: now.Add(7 * 24 * time.Hour),
		Status: models.AuctionActive, CreatedAt: now,
	})
	require.ErrorIs(t, err, ErrStaleState)
	require.NoError(t, mock.ExpectationsWereMet())
}
