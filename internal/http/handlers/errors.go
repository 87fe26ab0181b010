package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/natannielz/Ticket-Bus-sub000/internal/domain"
	"github.com/natannielz/Ticket-Bus-sub000/internal/http/middleware"
)

func respondDomain(c *gin.Context, status int, code, message string, details any) {
	payload := gin.H{
		"error":   message,
		"code":    code,
		"message": message,
	}
	if details != nil {
		payload["details"] = details
	}
	if reqID := middleware.GetRequestID(c); reqID != "" {
		payload["request_id"] = reqID
	}
	c.JSON(status, payload)
}

// RespondDomainError maps domain errors to HTTP responses. Conflict kinds get
// structured details so the operator can act without re-reading logs.
func RespondDomainError(c *gin.Context, err error) {
	var (
		conflict domain.ResourceConflictError
		capErr   domain.InsufficientCapacityError
		depErr   domain.DependencyConflictError
	)
	switch {
	case domain.IsValidation(err):
		respondDomain(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case domain.IsNotFound(err):
		respondDomain(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.As(err, &conflict):
		respondDomain(c, http.StatusConflict, "resource_conflict", err.Error(), gin.H{
			"resource":    conflict.Resource,
			"resource_id": conflict.ResourceID,
			"schedule_id": conflict.ScheduleID,
			"days":        conflict.Days,
		})
	case errors.As(err, &capErr):
		respondDomain(c, http.StatusConflict, "insufficient_capacity", err.Error(), gin.H{
			"schedule_id": capErr.ScheduleID,
			"trip_date":   capErr.TripDate,
			"requested":   capErr.Requested,
			"available":   capErr.Available,
		})
	case errors.As(err, &depErr):
		respondDomain(c, http.StatusConflict, "dependency_conflict", err.Error(), gin.H{
			"resource":    depErr.Resource,
			"resource_id": depErr.ResourceID,
		})
	default:
		respondDomain(c, http.StatusInternalServerError, "internal_error", "terjadi kesalahan", nil)
	}
}
