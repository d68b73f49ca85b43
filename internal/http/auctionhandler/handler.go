package auctionhandler

import (
	"net/http"

	"fleetauctiongo/internal/http/httperr"
	"fleetauctiongo/internal/services/auction"
	"fleetauctiongo/internal/services/bidledger"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	auctions auction.IAuctionService
	ledger   bidledger.IBidLedger
}

func New(auctions auction.IAuctionService, ledger bidledger.IBidLedger) *Handler {
	return &Handler{auctions: auctions, ledger: ledger}
}

func (h *Handler) Register(r gin.IRoutes) {
	r.POST("/disposal-requests/:id/auctions", h.create)
	r.GET("/auctions", h.list)
	r.GET("/auctions/:id", h.info)
	r.POST("/auctions/:id/bids", h.bid)
	r.GET("/auctions/:id/bids", h.bids)
	r.POST("/auctions/:id/close", h.close)
	r.POST("/auctions/:id/cancel", h.cancel)
}

// @Summary		Configure an auction
// @Description	Creates the auction for an approved disposal request and opens bidding.
// @Tags			Auctions
// @Param			id		path		string				true	"Disposal request ID"
// @Param			body	body		CreateAuctionBody	true	"Auction configuration"
// @Success		201		{object}	models.Auction
// @Failure		400		{object}	httperr.ErrorResponse
// @Failure		409		{object}	httperr.ErrorResponse
// @Router			/disposal-requests/{id}/auctions [post]
func (h *Handler) create(c *gin.Context) {
	var body CreateAuctionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		httperr.Bad(c, err)
		return
	}
	a, err := h.auctions.Create(c.Request.Context(), c.Param("id"), auction.CreateInput{
		Type:          body.Type,
		StartingPrice: body.StartingPrice,
		ReservePrice:  body.ReservePrice,
		StartsAt:      body.StartsAt,
		EndsAt:        body.EndsAt,
	})
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// @Summary		List auctions
// @Tags			Auctions
// @Param			status	query		string	false	"Status filter"	Enums(scheduled,active,closed,awarded,cancelled)
// @Param			limit	query		int		false	"Max results"	default(10)
// @Param			offset	query		int		false	"Offset"		default(0)
// @Success		200		{array}		models.Auction
// @Failure		400		{object}	httperr.ErrorResponse
// @Router			/auctions [get]
func (h *Handler) list(c *gin.Context) {
	var q ListAuctionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.Bad(c, err)
		return
	}
	out, err := h.auctions.List(c.Request.Context(), q.Status, q.Limit, q.Offset)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary		Get auction details
// @Description	Includes the derived bid count and current highest bid.
// @Tags			Auctions
// @Param			id	path		string	true	"Auction ID"
// @Success		200	{object}	models.Auction
// @Failure		404	{object}	httperr.ErrorResponse
// @Router			/auctions/{id} [get]
func (h *Handler) info(c *gin.Context) {
	a, err := h.auctions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// @Summary		Place a bid
// @Description	Accepted when the amount reaches max(starting price, highest bid + minimum increment).
// @Tags			Auctions
// @Param			id		path		string			true	"Auction ID"
// @Param			body	body		PlaceBidBody	true	"Bid payload"
// @Success		201		{object}	models.Bid
// @Failure		400		{object}	httperr.ErrorResponse
// @Failure		409		{object}	httperr.ErrorResponse
// @Router			/auctions/{id}/bids [post]
func (h *Handler) bid(c *gin.Context) {
	var body PlaceBidBody
	if err := c.ShouldBindJSON(&body); err != nil {
		httperr.Bad(c, err)
		return
	}
	b, err := h.ledger.PlaceBid(c.Request.Context(), c.Param("id"), bidledger.BidInput{
		BidderName:    body.BidderName,
		BidderContact: body.BidderContact,
		Amount:        body.Amount,
		Notes:         body.Notes,
	})
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// @Summary		List bids for an auction
// @Tags			Auctions
// @Param			id	path		string	true	"Auction ID"
// @Success		200	{array}		models.Bid
// @Failure		404	{object}	httperr.ErrorResponse
// @Router			/auctions/{id}/bids [get]
func (h *Handler) bids(c *gin.Context) {
	out, err := h.ledger.ListBids(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary		Close an auction
// @Description	Settles: awards the highest valid bid when the reserve is met and marks the asset sold.
// @Tags			Auctions
// @Param			id	path		string	true	"Auction ID"
// @Success		200	{object}	models.Auction
// @Failure		409	{object}	httperr.ErrorResponse
// @Failure		422	{object}	httperr.ErrorResponse
// @Router			/auctions/{id}/close [post]
func (h *Handler) close(c *gin.Context) {
	a, err := h.auctions.Close(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// @Summary		Cancel an auction
// @Description	Returns the disposal request to listed so a new auction can be configured.
// @Tags			Auctions
// @Param			id	path		string	true	"Auction ID"
// @Success		200	{object}	models.Auction
// @Failure		409	{object}	httperr.ErrorResponse
// @Router			/auctions/{id}/cancel [post]
func (h *Handler) cancel(c *gin.Context) {
	a, err := h.auctions.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}
