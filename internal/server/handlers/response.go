package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
	"github.com/mamadbah2/shroomtrack/internal/repository/lock"
	"github.com/mamadbah2/shroomtrack/internal/service/crm"
	"github.com/mamadbah2/shroomtrack/internal/service/finance"
	"github.com/mamadbah2/shroomtrack/internal/service/inventory"
	"github.com/mamadbah2/shroomtrack/internal/service/processing"
	"github.com/mamadbah2/shroomtrack/internal/service/procurement"
	"github.com/mamadbah2/shroomtrack/internal/service/recipes"
	"github.com/mamadbah2/shroomtrack/internal/service/sales"
	"github.com/mamadbah2/shroomtrack/pkg/clients/whatsapp"
)

// unprocessable lists the business rule violations reported as 422.
var unprocessable = []error{
	processing.ErrInvalidIntake,
	processing.ErrMassBalance,
	processing.ErrWastageReason,
	finance.ErrInvalidRate,
	sales.ErrCancelReason,
	sales.ErrEmptyOrder,
	crm.ErrInvalidPhone,
	crm.ErrInvalidCustomerType,
	procurement.ErrComplaintReason,
	procurement.ErrResolution,
	procurement.ErrQuantity,
	inventory.ErrItemName,
	inventory.ErrSupplierName,
	inventory.ErrPackCount,
}

// conflicts lists errors caused by the current state of a record.
var conflicts = []error{
	models.ErrInvalidTransition,
	processing.ErrNotComplete,
	recipes.ErrDuplicateRecipe,
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound), errors.Is(err, inventory.ErrNoMatchingGoods):
		return http.StatusNotFound
	case errors.Is(err, lock.ErrBusy), errors.Is(err, whatsapp.ErrDisabled):
		return http.StatusServiceUnavailable
	}
	for _, target := range conflicts {
		if errors.Is(err, target) {
			return http.StatusConflict
		}
	}
	for _, target := range unprocessable {
		if errors.Is(err, target) {
			return http.StatusUnprocessableEntity
		}
	}
	return http.StatusInternalServerError
}

func respond(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, models.APIResponse{Success: true, Data: data, Message: message})
}

func ok(c *gin.Context, data interface{}) {
	respond(c, http.StatusOK, data, "")
}

func done(c *gin.Context, message string) {
	respond(c, http.StatusOK, nil, message)
}

func created(c *gin.Context, data interface{}) {
	respond(c, http.StatusCreated, data, "")
}

// fail maps err to a status code and writes the error envelope. Internal
// errors are logged and their detail withheld.
func fail(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		message = "internal error"
	}
	c.AbortWithStatusJSON(status, models.APIResponse{Success: false, Message: message})
}

// bind decodes the JSON body into dst, writing a 400 on failure.
func bind(c *gin.Context, logger *zap.Logger, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		logger.Warn("invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusBadRequest, models.APIResponse{Success: false, Message: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
