package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"salon-queue-backend/internal/model"
)

type serviceRequest struct {
	Name            string  `json:"name" binding:"required"`
	Description     string  `json:"description"`
	Price           float64 `json:"price" binding:"min=0"`
	DurationMinutes int     `json:"duration_minutes"`
}

// ListServices handles GET /api/services.
func (h *Handler) ListServices(c *gin.Context) {
	var services []model.ServiceType
	if err := h.store.DB().WithContext(c.Request.Context()).Order("name ASC").Find(&services).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list services"})
		return
	}
	c.JSON(http.StatusOK, services)
}

// CreateService handles POST /api/services.
func (h *Handler) CreateService(c *gin.Context) {
	var req serviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.DurationMinutes <= 0 {
		req.DurationMinutes = 30
	}

	service := model.ServiceType{
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
	}
	if err := h.store.DB().WithContext(c.Request.Context()).Create(&service).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create service"})
		return
	}

	c.JSON(http.StatusCreated, service)
}

// UpdateService handles PUT /api/services/:id.
func (h *Handler) UpdateService(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service id"})
		return
	}

	var req serviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var service model.ServiceType
	if err := h.store.DB().WithContext(c.Request.Context()).First(&service, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "service not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load service"})
		}
		return
	}

	service.Name = req.Name
	service.Description = req.Description
	service.Price = req.Price
	if req.DurationMinutes > 0 {
		service.DurationMinutes = req.DurationMinutes
	}
	if err := h.store.DB().WithContext(c.Request.Context()).Save(&service).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update service"})
		return
	}

	c.JSON(http.StatusOK, service)
}
