package reservation

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type CreateHoldRequest struct {
	ModelPublicID string    `json:"model_public_id" binding:"required"`
	BookingID     string    `json:"booking_id" binding:"required"`
	StartDate     time.Time `json:"start_date" binding:"required"`
	EndDate       time.Time `json:"end_date" binding:"required"`
}

type ConfirmRequest struct {
	PaymentReference string `json:"payment_reference" binding:"required"`
	Notes            string `json:"notes"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	fleet := rg.Group("/fleet")
	{
		fleet.POST("/reservations/temporary", h.CreateHold)
		fleet.POST("/reservations/:id/confirm", h.Confirm)
		fleet.DELETE("/reservations/:id", h.Cancel)
		fleet.GET("/reservations/:id", h.GetReservation)
		fleet.GET("/models/:publicId/availability-count", h.CheckAvailability)
	}
}

func (h *Handler) CreateHold(c *gin.Context) {
	var req CreateHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	hold, err := h.service.CreateHold(c.Request.Context(), req.ModelPublicID, req.BookingID, req.StartDate, req.EndDate)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidDateRange):
			respondError(c, http.StatusBadRequest, "INVALID_DATE_RANGE", err.Error())
		case errors.Is(err, ErrNoVehicleAvailable):
			respondError(c, http.StatusConflict, "NO_VEHICLE_AVAILABLE",
				fmt.Sprintf("No vehicles of model %s available for the requested dates", req.ModelPublicID))
		case errors.Is(err, ErrStorageUnavailable):
			respondError(c, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Reservation storage is temporarily unavailable, retry later")
		default:
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create reservation")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": gin.H{"reservation": hold}})
}

func (h *Handler) Confirm(c *gin.Context) {
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "payment_reference is required")
		return
	}

	reservationID := c.Param("id")
	rec, err := h.service.Confirm(c.Request.Context(), reservationID, req.PaymentReference, req.Notes)
	if err != nil {
		h.respondLifecycleError(c, reservationID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"reservation_id": rec.ID,
			"vehicle_id":     rec.VehicleID,
			"status":         rec.Status,
			"confirmed_at":   rec.ConfirmedAt,
		},
	})
}

func (h *Handler) Cancel(c *gin.Context) {
	reservationID := c.Param("id")
	reason := c.Query("reason")

	if err := h.service.Cancel(c.Request.Context(), reservationID, reason); err != nil {
		h.respondLifecycleError(c, reservationID, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) GetReservation(c *gin.Context) {
	rec, err := h.service.GetReservation(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondLifecycleError(c, c.Param("id"), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"reservation": rec}})
}

func (h *Handler) CheckAvailability(c *gin.Context) {
	modelPublicID := c.Param("publicId")

	start, err := time.Parse(time.RFC3339, c.Query("start_date"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_DATE_RANGE", "start_date must be RFC3339")
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end_date"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_DATE_RANGE", "end_date must be RFC3339")
		return
	}

	count, err := h.service.CheckAvailability(c.Request.Context(), modelPublicID, start, end)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidDateRange):
			respondError(c, http.StatusBadRequest, "INVALID_DATE_RANGE", err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to check availability")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"model_public_id": modelPublicID,
			"available_count": count,
			"start_date":      start,
			"end_date":        end,
		},
	})
}

func (h *Handler) respondLifecycleError(c *gin.Context, reservationID string, err error) {
	var transition *StateTransitionError
	switch {
	case errors.Is(err, ErrReservationNotFound):
		respondError(c, http.StatusNotFound, "RESERVATION_NOT_FOUND",
			fmt.Sprintf("Reservation %s not found", reservationID))
	case errors.Is(err, ErrReservationExpired):
		respondError(c, http.StatusGone, "RESERVATION_EXPIRED",
			fmt.Sprintf("Reservation %s has expired", reservationID))
	case errors.As(err, &transition):
		respondError(c, http.StatusConflict, "INVALID_STATE_TRANSITION", transition.Error())
	case errors.Is(err, ErrInvalidStateTransition):
		respondError(c, http.StatusConflict, "INVALID_STATE_TRANSITION", err.Error())
	case errors.Is(err, ErrStorageUnavailable):
		respondError(c, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Reservation storage is temporarily unavailable, retry later")
	default:
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Reservation operation failed")
	}
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
