package auctionhandler

import "time"

type CreateAuctionBody struct {
	Type          string    `json:"auction_type"   binding:"required"      example:"public"`
	StartingPrice float64   `json:"starting_price" binding:"required,gt=0" example:"70000"`
	ReservePrice  *float64  `json:"reserve_price"  binding:"omitempty,gt=0" example:"85000"`
	StartsAt      time.Time `json:"starts_at"      binding:"required"      example:"2026-09-01T09:00:00Z"`
	EndsAt        time.Time `json:"ends_at"        binding:"required"      example:"2026-09-10T17:00:00Z"`
} // @name CreateAuctionRequest

type PlaceBidBody struct {
	BidderName    string  `json:"bidder_name"    binding:"required"      example:"Acme Salvage"`
	BidderContact string  `json:"bidder_contact" binding:"required"      example:"bids@acme.example"`
	Amount        float64 `json:"amount"         binding:"required,gt=0" example:"71000"`
	Notes         string  `json:"notes"          binding:"omitempty"     example:"pickup within a week"`
} // @name PlaceBidRequest

type ListAuctionsQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=scheduled active closed awarded cancelled"`
	Limit  int    `form:"limit,default=10"  binding:"gte=0,lte=100"`
	Offset int    `form:"offset,default=0"  binding:"gte=0"`
} // @name ListAuctionsQuery
