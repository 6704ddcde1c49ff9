package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"salon-queue-backend/config"
	"salon-queue-backend/internal/mw"
	"salon-queue-backend/internal/notification"
	"salon-queue-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, cfg *config.ServerConfig, webpushOptions *webpush.Options, pool *notification.WorkerPool) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, webpushOptions, pool)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 10*time.Minute)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Registration and administrative client edits
		api.POST("/clients", handler.RegisterClient)
		api.GET("/clients", handler.ListClients)
		api.PUT("/clients/:id", handler.UpdateClient)
		api.DELETE("/clients/:id", handler.DeleteClient)

		// Queue lifecycle
		api.GET("/queue", handler.GetQueue)
		api.GET("/queue/next", caching, handler.PeekNext) // public display, read-only
		api.POST("/queue/next", handler.CallNext)
		api.GET("/events/open", handler.ListInService)
		api.POST("/events/:id/finish", handler.FinishEvent)

		// Reporting
		api.GET("/metrics/average-wait", caching, handler.GetAverageWait)
		api.GET("/metrics/daily", caching, handler.GetDailyReport)
		api.GET("/metrics/totals", caching, handler.GetTotals)
		api.GET("/metrics/top-services", caching, handler.GetTopServices)
		api.GET("/metrics/recent", handler.GetRecentFinished)

		// Service catalog
		api.GET("/services", handler.ListServices)
		api.POST("/services", handler.CreateService)
		api.PUT("/services/:id", handler.UpdateService)

		// Public display push subscriptions
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
