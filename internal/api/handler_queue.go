package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"salon-queue-backend/internal/model"
	"salon-queue-backend/internal/store"
)

// calledClient is the wire shape shared by peek and call-next responses.
type calledClient struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

func toCalledClient(c model.Client) calledClient {
	return calledClient{ID: c.ID, Name: c.Name, Phone: c.Phone}
}

// GetQueue handles GET /api/queue: the full waiting queue in FIFO order.
func (h *Handler) GetQueue(c *gin.Context) {
	clients, err := h.store.WaitingQueue(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read queue"})
		return
	}
	c.JSON(http.StatusOK, clients)
}

// PeekNext handles GET /api/queue/next: the public display's read-only view
// of the queue head. An empty queue is a normal answer, not an error.
func (h *Handler) PeekNext(c *gin.Context) {
	head, err := h.store.PeekNext(c.Request.Context())
	if errors.Is(err, store.ErrEmptyQueue) {
		c.JSON(http.StatusOK, gin.H{"status": "empty"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to peek queue"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "client": toCalledClient(head)})
}

// CallNext handles POST /api/queue/next: claims the queue head and opens a
// service event for it. A successful claim is announced to the public
// display through the notification pool.
func (h *Handler) CallNext(c *gin.Context) {
	client, err := h.store.CallNext(c.Request.Context())
	if errors.Is(err, store.ErrEmptyQueue) {
		c.JSON(http.StatusOK, gin.H{"status": "empty"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to call next client"})
		return
	}

	if h.pool != nil {
		h.pool.Dispatch(client.ID)
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "client": toCalledClient(client)})
}

// ListInService handles GET /api/events/open.
func (h *Handler) ListInService(c *gin.Context) {
	entries, err := h.store.ListInService(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list open events"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

type finishRequest struct {
	AmountPaid *float64 `json:"amount_paid"`
}

// FinishEvent handles POST /api/events/:id/finish: closes an open service
// event, recording duration and payment.
func (h *Handler) FinishEvent(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	var req finishRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	event, err := h.store.Finish(c.Request.Context(), id, req.AmountPaid)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrEventNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "service event not found"})
		case errors.Is(err, store.ErrAlreadyFinished):
			c.JSON(http.StatusConflict, gin.H{"error": "service event is already finished"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to finish event"})
		}
		return
	}

	c.JSON(http.StatusOK, event)
}
