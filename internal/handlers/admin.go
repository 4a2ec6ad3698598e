package handlers

import (
	"net/http"
	"time"

	"promo-campaign/internal/model"
	"promo-campaign/internal/repository"
	"promo-campaign/internal/service"
	"promo-campaign/internal/transport"
	"promo-campaign/pkg/promo"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the HTTP surface: health, metrics, the webhook through
// which the chat transport delivers inbound updates, and the admin
// endpoints through which codes are pre-provisioned before the campaign
// runs.
func NewRouter(svc *service.Redemption, codes repository.CodeRepository, updates chan<- transport.Update, token string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/updates", requireToken(token), updatesHandler(updates))

	admin := router.Group("/admin", requireToken(token))
	{
		admin.POST("/codes", provisionCodesHandler(codes))
		admin.GET("/stats", statsHandler(svc))
	}

	return router
}

// updatesHandler handles POST /updates: one inbound unit of participant
// input from the transport collaborator.
func updatesHandler(updates chan<- transport.Update) gin.HandlerFunc {
	return func(c *gin.Context) {
		var u transport.Update
		if err := c.ShouldBindJSON(&u); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if u.Identity == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "identity is required"})
			return
		}

		select {
		case updates <- u:
			c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
		case <-c.Request.Context().Done():
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "shutting down"})
		}
	}
}

// requireToken guards a route with the shared static token header.
func requireToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" || c.GetHeader("X-Admin-Token") != token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// provisionCodesHandler handles POST /admin/codes
func provisionCodesHandler(codes repository.CodeRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.ProvisionCodesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		accepted := make([]string, 0, len(req.Codes))
		var rejected []string
		for _, raw := range req.Codes {
			if !promo.Validate(raw) {
				rejected = append(rejected, raw)
				continue
			}
			accepted = append(accepted, promo.Canonicalize(raw))
		}

		inserted, err := codes.Provision(c.Request.Context(), accepted, time.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to provision codes"})
			return
		}

		c.JSON(http.StatusCreated, model.ProvisionCodesResponse{
			Inserted: inserted,
			Rejected: rejected,
		})
	}
}

// statsHandler handles GET /admin/stats
func statsHandler(svc *service.Redemption) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := svc.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get stats"})
			return
		}

		c.JSON(http.StatusOK, stats)
	}
}
