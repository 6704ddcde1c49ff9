package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"salon-queue-backend/internal/model"
	"salon-queue-backend/internal/store"
)

type clientRequest struct {
	Name          string `json:"name" binding:"required"`
	Phone         string `json:"phone"`
	ServiceTypeID *int64 `json:"service_type_id"`
}

// RegisterClient handles POST /api/clients: a new client joins the queue.
// The arrival timestamp is assigned by the store, not by the caller.
func (h *Handler) RegisterClient(c *gin.Context) {
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	client, err := h.store.RegisterClient(c.Request.Context(), store.RegisterClientInput{
		Name:          req.Name,
		Phone:         req.Phone,
		ServiceTypeID: req.ServiceTypeID,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNameRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		case errors.Is(err, store.ErrServiceNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown service type"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register client"})
		}
		return
	}

	c.JSON(http.StatusCreated, client)
}

// ListClients handles GET /api/clients: the full staff listing with joined
// service info, in arrival order.
func (h *Handler) ListClients(c *gin.Context) {
	var clients []model.Client
	err := h.store.DB().WithContext(c.Request.Context()).
		Preload("ServiceType").
		Order("arrived_at ASC, id ASC").
		Find(&clients).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list clients"})
		return
	}

	c.JSON(http.StatusOK, clients)
}

// UpdateClient handles PUT /api/clients/:id: administrative edit of
// name/phone/service. Arrival time is immutable.
func (h *Handler) UpdateClient(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}

	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	client, err := h.store.UpdateClient(c.Request.Context(), id, store.RegisterClientInput{
		Name:          req.Name,
		Phone:         req.Phone,
		ServiceTypeID: req.ServiceTypeID,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrClientNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
		case errors.Is(err, store.ErrServiceNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown service type"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update client"})
		}
		return
	}

	c.JSON(http.StatusOK, client)
}

// DeleteClient handles DELETE /api/clients/:id. Clients referenced by a
// service event are part of the audit history and cannot be removed.
func (h *Handler) DeleteClient(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}

	if err := h.store.DeleteClient(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, store.ErrClientNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
		case errors.Is(err, store.ErrClientReferenced):
			c.JSON(http.StatusConflict, gin.H{"error": "client has service history"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete client"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}
