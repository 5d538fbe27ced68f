package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"deskbook-agent/config"
	"deskbook-agent/internal/mw"
)

// NewRouter creates the status API router.
func NewRouter(cfg *config.ServerConfig, h *Handler, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	// Only explicit weeks are cached; the bare path follows the latest cycle.
	caching := mw.CacheWithQuery(cache.New(ttl, 2*ttl), ttl)

	r.GET("/healthz", h.GetHealth)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/status", h.GetStatus)

		// GET /api/bookings?monday=2024-01-01
		api.GET("/bookings", caching, h.GetBookings)

		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
