package disposalhandler

import (
	"net/http"

	"fleetauctiongo/internal/http/httperr"
	"fleetauctiongo/internal/services/disposal"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc disposal.IDisposalService
}

func New(svc disposal.IDisposalService) *Handler { return &Handler{svc: svc} }

func (h *Handler) Register(r gin.IRoutes) {
	r.POST("/disposal-requests", h.submit)
	r.GET("/disposal-requests", h.list)
	r.GET("/disposal-requests/:id", h.info)
	r.POST("/disposal-requests/:id/approve", h.approve)
	r.POST("/disposal-requests/:id/reject", h.reject)
	r.POST("/disposal-requests/:id/transfer", h.transfer)
}

// @Summary		Submit a disposal request
// @Description	Proposes retiring a fleet asset. The vehicle must exist in the registry.
// @Tags			Disposals
// @Param			body	body		SubmitDisposalBody	true	"Request payload"
// @Success		201		{object}	models.DisposalRequest
// @Failure		400		{object}	httperr.ErrorResponse
// @Router			/disposal-requests [post]
func (h *Handler) submit(c *gin.Context) {
	var body SubmitDisposalBody
	if err := c.ShouldBindJSON(&body); err != nil {
		httperr.Bad(c, err)
		return
	}
	req, err := h.svc.Submit(c.Request.Context(), disposal.SubmitInput{
		VehicleID:      body.VehicleID,
		RequesterID:    body.RequesterID,
		Reason:         body.Reason,
		Method:         body.Method,
		Condition:      body.Condition,
		Mileage:        body.Mileage,
		EstimatedValue: body.EstimatedValue,
	})
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

// @Summary		List disposal requests
// @Tags			Disposals
// @Param			status	query		string	false	"Status filter"
// @Param			limit	query		int		false	"Max results"	default(10)
// @Param			offset	query		int		false	"Offset"		default(0)
// @Success		200		{array}		models.DisposalRequest
// @Failure		400		{object}	httperr.ErrorResponse
// @Router			/disposal-requests [get]
func (h *Handler) list(c *gin.Context) {
	var q ListDisposalsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.Bad(c, err)
		return
	}
	out, err := h.svc.List(c.Request.Context(), q.Status, q.Limit, q.Offset)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary		Get a disposal request
// @Tags			Disposals
// @Param			id	path		string	true	"Disposal request ID"
// @Success		200	{object}	models.DisposalRequest
// @Failure		404	{object}	httperr.ErrorResponse
// @Router			/disposal-requests/{id} [get]
func (h *Handler) info(c *gin.Context) {
	req, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// @Summary		Approve a disposal request
// @Description	Moves a pending request to approved/listed so an auction can be configured.
// @Tags			Disposals
// @Param			id	path		string	true	"Disposal request ID"
// @Success		200	{object}	models.DisposalRequest
// @Failure		404	{object}	httperr.ErrorResponse
// @Failure		409	{object}	httperr.ErrorResponse
// @Router			/disposal-requests/{id}/approve [post]
func (h *Handler) approve(c *gin.Context) {
	req, err := h.svc.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// @Summary		Reject a disposal request
// @Description	Terminal: a rejected request cannot transition again.
// @Tags			Disposals
// @Param			id		path		string				true	"Disposal request ID"
// @Param			body	body		RejectDisposalBody	true	"Rejection reason"
// @Success		200		{object}	models.DisposalRequest
// @Failure		409		{object}	httperr.ErrorResponse
// @Router			/disposal-requests/{id}/reject [post]
func (h *Handler) reject(c *gin.Context) {
	var body RejectDisposalBody
	if err := c.ShouldBindJSON(&body); err != nil {
		httperr.Bad(c, err)
		return
	}
	req, err := h.svc.Reject(c.Request.Context(), c.Param("id"), body.Reason)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// @Summary		Record an ownership transfer
// @Description	Called by the external ownership-transfer process after a sale.
// @Tags			Disposals
// @Param			id	path		string	true	"Disposal request ID"
// @Success		200	{object}	models.DisposalRequest
// @Failure		409	{object}	httperr.ErrorResponse
// @Router			/disposal-requests/{id}/transfer [post]
func (h *Handler) transfer(c *gin.Context) {
	req, err := h.svc.MarkTransferred(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}
