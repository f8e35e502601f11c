package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/pharmacy"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/infrastructure/logger"
	"github.com/hms/backend/internal/interfaces/http/dto"
	"github.com/hms/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError converts application errors to HTTP responses.
// Rejected receipts answer 422 with every violation; domain errors use their mapped status;
// anything else is logged and answered with 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID := middleware.GetRequestID(c)

	var rejected *pharmacy.ReceiptRejectedError
	if errors.As(err, &rejected) {
		c.JSON(http.StatusUnprocessableEntity, dto.NewReceiptRejectedResponse(
			fmt.Sprintf("Receipt rejected with %d violation(s)", len(rejected.Violations)),
			requestID,
			toViolationDetails(rejected.Violations),
		))
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, domainErr.Message, requestID))
		return
	}

	_ = c.Error(err)
	logger.GetGinLogger(c).Error("Unhandled error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeInternal,
		"An unexpected error occurred",
		requestID,
	))
}

// bindJSON binds the request body, answering 400 and returning false on failure
func (h *BaseHandler) bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.bindError(c, err)
		return false
	}
	return true
}

// bindQuery binds query parameters, answering 400 and returning false on failure
func (h *BaseHandler) bindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.bindError(c, err)
		return false
	}
	return true
}

func (h *BaseHandler) bindError(c *gin.Context, err error) {
	if details := middleware.ValidationDetails(err); details != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Invalid request: "+err.Error())
}

// uuidParam parses a UUID path parameter, answering 400 and returning false when malformed
func (h *BaseHandler) uuidParam(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "Invalid "+label+" format")
		return uuid.Nil, false
	}
	return id, true
}

func toViolationDetails(violations []pharmacy.Violation) []dto.ViolationDetail {
	details := make([]dto.ViolationDetail, len(violations))
	for i, v := range violations {
		d := dto.ViolationDetail{
			Kind:         string(v.Kind),
			Field:        v.Field,
			Message:      v.Message,
			MaxRemaining: v.MaxRemaining,
		}
		if !v.IsOrderLevel() {
			d.ItemID = v.ItemID.String()
		}
		details[i] = d
	}
	return details
}
