package fleet

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	fleet := rg.Group("/fleet")
	{
		fleet.POST("/models", h.CreateModel)
		fleet.GET("/models", h.ListModels)

		fleet.POST("/vehicles", h.AddVehicle)
		fleet.GET("/vehicles", h.ListVehicles)
		fleet.PATCH("/vehicles/:id/status", h.UpdateVehicleStatus)

		fleet.GET("/dashboard", h.Dashboard)
	}
}

func (h *Handler) CreateModel(c *gin.Context) {
	var req CreateModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	m, err := h.service.CreateModel(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid car model fields")
		case errors.Is(err, ErrDuplicateModel):
			respondError(c, http.StatusConflict, "DUPLICATE_MODEL", "Car model already exists")
		default:
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create car model")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": gin.H{"model": m}})
}

func (h *Handler) ListModels(c *gin.Context) {
	models, err := h.service.ListModels(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list car models")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"models": models}})
}

func (h *Handler) AddVehicle(c *gin.Context) {
	var req AddVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	v, err := h.service.AddVehicle(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid vehicle fields")
		case errors.Is(err, ErrModelNotFound):
			respondError(c, http.StatusNotFound, "MODEL_NOT_FOUND", "Car model not found")
		case errors.Is(err, ErrDuplicatePlate):
			respondError(c, http.StatusConflict, "DUPLICATE_PLATE", "License plate already registered")
		default:
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to add vehicle")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": gin.H{"vehicle": v}})
}

func (h *Handler) ListVehicles(c *gin.Context) {
	ownerID := c.Query("owner_id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	vehicles, total, err := h.service.ListVehicles(c.Request.Context(), ownerID, limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list vehicles")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"vehicles": vehicles,
			"total":    total,
		},
	})
}

func (h *Handler) UpdateVehicleStatus(c *gin.Context) {
	var req struct {
		Status          string `json:"status" binding:"required"`
		MaintenanceNote string `json:"maintenance_note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	err := h.service.UpdateVehicleStatus(c.Request.Context(), c.Param("id"), req.Status, req.MaintenanceNote)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownStatus):
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown vehicle status")
		case errors.Is(err, ErrVehicleNotFound):
			respondError(c, http.StatusNotFound, "VEHICLE_NOT_FOUND", "Vehicle not found")
		default:
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update vehicle status")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) Dashboard(c *gin.Context) {
	ownerID := c.Query("owner_id")
	if ownerID == "" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "owner_id is required")
		return
	}

	summary, err := h.service.Dashboard(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load dashboard")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"dashboard": summary}})
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
