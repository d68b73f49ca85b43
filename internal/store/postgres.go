package store

import (
	"context"
	"database/sql"
	"errors"

	"fleetauctiongo/internal/models"
)

// PostgresStore implements Store over database/sql with the pgx driver.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

var _ Store = (*PostgresStore)(nil)

const disposalColumns = `id, disposal_number, vehicle_id, requester_id, reason, method,
       condition, mileage, estimated_value, approval_status, status, reject_reason,
       requested_at, created_at, updated_at`

func (s *PostgresStore) CreateDisposal(ctx context.Context, d *models.DisposalRequest) error {
	const q = `INSERT INTO disposal_requests (` + disposalColumns + `)
	           VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`
	_, err := s.db.ExecContext(ctx, q,
		d.ID, d.DisposalNumber, d.VehicleID, d.RequesterID, d.Reason, d.Method,
		d.Condition, d.Mileage, d.EstimatedValue, d.ApprovalStatus, d.Status,
		d.RejectReason, d.RequestedAt, d.CreatedAt, d.UpdatedAt)
	return err
}

func scanDisposal(row interface{ Scan(...any) error }) (*models.DisposalRequest, error) {
	d := &models.DisposalRequest{}
	err := row.Scan(&d.ID, &d.DisposalNumber, &d.VehicleID, &d.RequesterID,
		&d.Reason, &d.Method, &d.Condition, &d.Mileage, &d.EstimatedValue,
		&d.ApprovalStatus, &d.Status, &d.RejectReason,
		&d.RequestedAt, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *PostgresStore) GetDisposal(ctx context.Context, id string) (*models.DisposalRequest, error) {
	const q = `SELECT ` + disposalColumns + ` FROM disposal_requests WHERE id = $1`
	return scanDisposal(s.db.QueryRowContext(ctx, q, id))
}

func (s *PostgresStore) ListDisposals(ctx context.Context, status models.DisposalStatus, limit, offset int) ([]models.DisposalRequest, error) {
	if limit <= 0 {
		limit = 10
	}
	base := `SELECT ` + disposalColumns + ` FROM disposal_requests`
	var (
		rows *sql.Rows
		err  error
	)
	if status != "" {
		rows, err = s.db.QueryContext(ctx,
			base+` WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
			status, limit, offset)
	} else {
		rows, err = s.db.QueryContext(ctx,
			base+` ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]models.DisposalRequest, 0, limit)
	for rows.Next() {
		d, err := scanDisposal(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *d)
	}
	return list, rows.Err()
}

func (s *PostgresStore) DecideDisposal(ctx context.Context, id string, approval models.ApprovalStatus, status models.DisposalStatus, note string) (*models.DisposalRequest, error) {
	const q = `UPDATE disposal_requests
	              SET approval_status = $2, status = $3, reject_reason = $4, updated_at = now()
	            WHERE id = $1 AND approval_status = 'pending'`
	res, err := s.db.ExecContext(ctx, q, id, approval, status, note)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := s.GetDisposal(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrStaleState
	}
	return s.GetDisposal(ctx, id)
}

func (s *PostgresStore) TransitionDisposal(ctx context.Context, id string, from, to models.DisposalStatus) (*models.DisposalRequest, error) {
	const q = `UPDATE disposal_requests SET status = $3, updated_at = now()
	            WHERE id = $1 AND status = $2`
	res, err := s.db.ExecContext(ctx, q, id, from, to)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := s.GetDisposal(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrStaleState
	}
	return s.GetDisposal(ctx, id)
}

func (s *PostgresStore) CreateAuction(ctx context.Context, a *models.Auction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var approval models.ApprovalStatus
	err = tx.QueryRowContext(ctx,
		`SELECT approval_status FROM disposal_requests WHERE id = $1 FOR UPDATE`,
		a.DisposalID).Scan(&approval)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if approval != models.ApprovalApproved {
		return ErrStaleState
	}

	var existing int
	err = tx.QueryRowContext(ctx,
		`SELECT count(*) FROM auctions WHERE disposal_id = $1 AND status <> 'cancelled'`,
		a.DisposalID).Scan(&existing)
	if err != nil {
		return err
	}
	if existing > 0 {
		return ErrAuctionExists
	}

	var reserve sql.NullFloat64
	if a.ReservePrice != nil {
		reserve = sql.NullFloat64{Float64: *a.ReservePrice, Valid: true}
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO auctions (id, disposal_id, auction_type, starting_price, reserve_price,
		                       starts_at, ends_at, status, created_at)
		      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		a.ID, a.DisposalID, a.Type, a.StartingPrice, reserve,
		a.StartsAt, a.EndsAt, a.Status, a.CreatedAt)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE disposal_requests SET status = 'bidding_open', updated_at = now() WHERE id = $1`,
		a.DisposalID)
	if err != nil {
		return err
	}
	return tx.Commit()
}

const auctionColumns = `a.id, a.disposal_id, a.auction_type, a.starting_price, a.reserve_price,
       a.starts_at, a.ends_at, a.status, a.winner_name, a.winning_bid_id, a.winning_amount,
       a.created_at,
       (SELECT count(*) FROM bids b WHERE b.auction_id = a.id AND b.is_valid),
       coalesce((SELECT max(b.amount) FROM bids b WHERE b.auction_id = a.id AND b.is_valid), 0)`

func scanAuction(row interface{ Scan(...any) error }) (*models.Auction, error) {
	a := &models.Auction{}
	var reserve sql.NullFloat64
	err := row.Scan(&a.ID, &a.DisposalID, &a.Type, &a.StartingPrice, &reserve,
		&a.StartsAt, &a.EndsAt, &a.Status, &a.WinnerName, &a.WinningBidID,
		&a.WinningAmount, &a.CreatedAt, &a.BidCount, &a.HighestBid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if reserve.Valid {
		a.ReservePrice = &reserve.Float64
	}
	return a, nil
}

func (s *PostgresStore) GetAuction(ctx context.Context, id string) (*models.Auction, error) {
	const q = `SELECT ` + auctionColumns + ` FROM auctions a WHERE a.id = $1`
	return scanAuction(s.db.QueryRowContext(ctx, q, id))
}

func (s *PostgresStore) ListAuctions(ctx context.Context, status models.AuctionStatus, limit, offset int) ([]models.Auction, error) {
	if limit <= 0 {
		limit = 10
	}
	base := `SELECT ` + auctionColumns + ` FROM auctions a`
	var (
		rows *sql.Rows
		err  error
	)
	if status != "" {
		rows, err = s.db.QueryContext(ctx,
			base+` WHERE a.status = $1 ORDER BY a.ends_at DESC LIMIT $2 OFFSET $3`,
			status, limit, offset)
	} else {
		rows, err = s.db.QueryContext(ctx,
			base+` ORDER BY a.ends_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]models.Auction, 0, limit)
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *a)
	}
	return list, rows.Err()
}

func (s *PostgresStore) MarkAuctionActive(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE auctions SET status = 'active' WHERE id = $1 AND status = 'scheduled'`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := s.GetAuction(ctx, id); err != nil {
			return err
		}
		return ErrStaleState
	}
	return nil
}

func (s *PostgresStore) SettleAuction(ctx context.Context, id string, winning *models.Bid) (*models.Auction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var (
		disposalID string
		status     models.AuctionStatus
	)
	err = tx.QueryRowContext(ctx,
		`SELECT disposal_id, status FROM auctions WHERE id = $1 FOR UPDATE`,
		id).Scan(&disposalID, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if status != models.AuctionActive {
		return nil, ErrStaleState
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE auctions SET status = 'awarded', winner_name = $2,
		        winning_bid_id = $3, winning_amount = $4
		  WHERE id = $1`,
		id, winning.BidderName, winning.ID, winning.Amount)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE disposal_requests SET status = 'sold', updated_at = now() WHERE id = $1`,
		disposalID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetAuction(ctx, id)
}

func (s *PostgresStore) CancelAuction(ctx context.Context, id string) (*models.Auction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var (
		disposalID string
		status     models.AuctionStatus
	)
	err = tx.QueryRowContext(ctx,
		`SELECT disposal_id, status FROM auctions WHERE id = $1 FOR UPDATE`,
		id).Scan(&disposalID, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if status != models.AuctionScheduled && status != models.AuctionActive {
		return nil, ErrStaleState
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE auctions SET status = 'cancelled' WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE disposal_requests SET status = 'listed', updated_at = now()
		  WHERE id = $1 AND status = 'bidding_open'`, disposalID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetAuction(ctx, id)
}

// AppendBid holds a row lock on the auction for the duration of the check and
// insert, which serialises concurrent bids per auction.
func (s *PostgresStore) AppendBid(ctx context.Context, b *models.Bid, minIncrement float64) (*models.Bid, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var (
		starting float64
		status   models.AuctionStatus
	)
	err = tx.QueryRowContext(ctx,
		`SELECT starting_price, status FROM auctions WHERE id = $1 FOR UPDATE`,
		b.AuctionID).Scan(&starting, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if status != models.AuctionActive {
		return nil, ErrAuctionNotActive
	}

	var highest float64
	err = tx.QueryRowContext(ctx,
		`SELECT coalesce(max(amount), 0) FROM bids WHERE auction_id = $1 AND is_valid`,
		b.AuctionID).Scan(&highest)
	if err != nil {
		return nil, err
	}

	minNext := models.MinimumNextBid(starting, highest, minIncrement)
	if b.Amount < minNext {
		return nil, &BidTooLowError{Minimum: minNext}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO bids (id, auction_id, bidder_name, bidder_contact, amount,
		                   notes, is_valid, placed_at)
		      VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		b.ID, b.AuctionID, b.BidderName, b.BidderContact, b.Amount,
		b.Notes, b.IsValid, b.PlacedAt)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return b, nil
}

const bidColumns = `id, auction_id, bidder_name, bidder_contact, amount, notes, is_valid, placed_at`

func scanBid(row interface{ Scan(...any) error }) (*models.Bid, error) {
	b := &models.Bid{}
	err := row.Scan(&b.ID, &b.AuctionID, &b.BidderName, &b.BidderContact,
		&b.Amount, &b.Notes, &b.IsValid, &b.PlacedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *PostgresStore) HighestBid(ctx context.Context, auctionID string) (*models.Bid, error) {
	// Ties break to the earliest recorded bid.
	const q = `SELECT ` + bidColumns + ` FROM bids
	            WHERE auction_id = $1 AND is_valid
	            ORDER BY amount DESC, placed_at ASC, id ASC LIMIT 1`
	return scanBid(s.db.QueryRowContext(ctx, q, auctionID))
}

func (s *PostgresStore) ListBids(ctx context.Context, auctionID string) ([]models.Bid, error) {
	const q = `SELECT ` + bidColumns + ` FROM bids
	            WHERE auction_id = $1 ORDER BY placed_at ASC, id ASC`
	rows, err := s.db.QueryContext(ctx, q, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *b)
	}
	return list, rows.Err()
}
