package models

import "time"

// DisposalReason explains why a fleet asset is being retired.
type DisposalReason string

const (
	ReasonEndOfLife            DisposalReason = "end_of_life"
	ReasonExcessiveMaintenance DisposalReason = "excessive_maintenance"
	ReasonAccidentDamage       DisposalReason = "accident_damage"
	ReasonUpgrade              DisposalReason = "upgrade"
	ReasonPolicyChange         DisposalReason = "policy_change"
)

func ValidDisposalReason(r DisposalReason) bool {
	switch r {
	case ReasonEndOfLife, ReasonExcessiveMaintenance, ReasonAccidentDamage,
		ReasonUpgrade, ReasonPolicyChange:
		return true
	default:
		return false
	}
}

// DisposalMethod is the recommended way to dispose of the asset.
type DisposalMethod string

const (
	MethodAuction   DisposalMethod = "auction"
	MethodBestOffer DisposalMethod = "best_offer"
	MethodTradeIn   DisposalMethod = "trade_in"
	MethodScrap     DisposalMethod = "scrap"
	MethodDonation  DisposalMethod = "donation"
)

func ValidDisposalMethod(m DisposalMethod) bool {
	switch m {
	case MethodAuction, MethodBestOffer, MethodTradeIn, MethodScrap, MethodDonation:
		return true
	default:
		return false
	}
}

// ConditionRating grades the asset at request time.
type ConditionRating string

const (
	ConditionExcellent ConditionRating = "excellent"
	ConditionGood      ConditionRating = "good"
	ConditionFair      ConditionRating = "fair"
	ConditionPoor      ConditionRating = "poor"
	ConditionSalvage   ConditionRating = "salvage"
)

func ValidConditionRating(c ConditionRating) bool {
	switch c {
	case ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor, ConditionSalvage:
		return true
	default:
		return false
	}
}

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

type DisposalStatus string

const (
	DisposalPendingApproval DisposalStatus = "pending_approval"
	DisposalListed          DisposalStatus = "listed"
	DisposalBiddingOpen     DisposalStatus = "bidding_open"
	DisposalSold            DisposalStatus = "sold"
	DisposalTransferred     DisposalStatus = "transferred"
	DisposalCancelled       DisposalStatus = "cancelled"
)

func ValidDisposalStatus(s DisposalStatus) bool {
	switch s {
	case DisposalPendingApproval, DisposalListed, DisposalBiddingOpen,
		DisposalSold, DisposalTransferred, DisposalCancelled:
		return true
	default:
		return false
	}
}

type AuctionType string

const (
	AuctionPublic    AuctionType = "public"
	AuctionSealedBid AuctionType = "sealed_bid"
	AuctionOnline    AuctionType = "online"
)

func ValidAuctionType(t AuctionType) bool {
	switch t {
	case AuctionPublic, AuctionSealedBid, AuctionOnline:
		return true
	default:
		return false
	}
}

type AuctionStatus string

const (
	AuctionScheduled AuctionStatus = "scheduled"
	AuctionActive    AuctionStatus = "active"
	AuctionClosed    AuctionStatus = "closed"
	AuctionAwarded   AuctionStatus = "awarded"
	AuctionCancelled AuctionStatus = "cancelled"
)

func ValidAuctionStatus(s AuctionStatus) bool {
	switch s {
	case AuctionScheduled, AuctionActive, AuctionClosed, AuctionAwarded, AuctionCancelled:
		return true
	default:
		return false
	}
}

// DisposalRequest is a proposal to retire a fleet asset. The approval status
// and the lifecycle status move independently but in lock step: a request is
// approved+listed, then bidding_open once an auction exists, then sold.
type DisposalRequest struct {
	ID             string          `json:"id"`
	DisposalNumber string          `json:"disposal_number"`
	VehicleID      string          `json:"vehicle_id"`
	RequesterID    string          `json:"requester_id"`
	Reason         DisposalReason  `json:"reason"`
	Method         DisposalMethod  `json:"recommended_method"`
	Condition      ConditionRating `json:"condition_rating"`
	Mileage        int64           `json:"mileage"`
	EstimatedValue float64         `json:"estimated_value"`
	ApprovalStatus ApprovalStatus  `json:"approval_status"`
	Status         DisposalStatus  `json:"status"`
	RejectReason   string          `json:"reject_reason,omitempty"`
	RequestedAt    time.Time       `json:"requested_at"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"-"`
}

// Auction is a time-boxed bidding window against one approved disposal
// request. BidCount and HighestBid are derived on read, never stored
// authoritatively. Winner fields are written once, at settlement.
type Auction struct {
	ID            string        `json:"id"`
	DisposalID    string        `json:"disposal_id"`
	Type          AuctionType   `json:"auction_type"`
	StartingPrice float64       `json:"starting_price"`
	ReservePrice  *float64      `json:"reserve_price,omitempty"`
	StartsAt      time.Time     `json:"starts_at"`
	EndsAt        time.Time     `json:"ends_at"`
	Status        AuctionStatus `json:"status"`
	WinnerName    string        `json:"winner,omitempty"`
	WinningBidID  string        `json:"winning_bid_id,omitempty"`
	WinningAmount float64       `json:"winning_amount,omitempty"`
	BidCount      int           `json:"bid_count"`
	HighestBid    float64       `json:"highest_bid"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Bid is append-only: once accepted it is never updated or deleted by the
// engine. A correction supersedes with is_valid=false rather than retracting.
type Bid struct {
	ID            string    `json:"id"`
	AuctionID     string    `json:"auction_id"`
	BidderName    string    `json:"bidder_name"`
	BidderContact string    `json:"bidder_contact"`
	Amount        float64   `json:"amount"`
	Notes         string    `json:"notes,omitempty"`
	IsValid       bool      `json:"is_valid"`
	PlacedAt      time.Time `json:"placed_at"`
}

// Vehicle is the read-only view supplied by the vehicle registry.
type Vehicle struct {
	ID     string `json:"id"`
	VIN    string `json:"vin"`
	Make   string `json:"make"`
	Model  string `json:"model"`
	Year   int    `json:"year"`
	Status string `json:"status"`
}

// MinimumNextBid is the smallest acceptable amount for the next bid:
// max(startingPrice, highest+increment). With an empty ledger highest is 0,
// so the first bid only has to reach the starting price.
func MinimumNextBid(startingPrice, highest, increment float64) float64 {
	next := highest + increment
	if startingPrice > next {
		return startingPrice
	}
	return next
}
