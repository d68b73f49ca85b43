// Package httperr maps domain error kinds onto HTTP statuses and the
// {kind, message} wire shape shared by every endpoint.
package httperr

import (
	"net/http"

	"fleetauctiongo/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Kind    models.ErrorKind `json:"kind"`
	Message string           `json:"message"`
} // @name ErrorResponse

func Write(c *gin.Context, err error) {
	kind := models.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case models.KindValidation:
		status = http.StatusBadRequest
	case models.KindNotFound:
		status = http.StatusNotFound
	case models.KindInvalidState:
		status = http.StatusConflict
	case models.KindBusinessRule:
		status = http.StatusUnprocessableEntity
	default:
		zap.L().Error("http.internal", zap.Error(err))
		kind = "internal"
	}
	c.JSON(status, ErrorResponse{Kind: kind, Message: err.Error()})
}

// Bad reports a body/query binding failure as a validation error.
func Bad(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Kind:    models.KindValidation,
		Message: err.Error(),
	})
}
