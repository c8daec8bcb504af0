package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/toolsuite/shortener/internal/errors"
	"github.com/toolsuite/shortener/internal/models"
	"github.com/toolsuite/shortener/internal/ratelimit"
	"github.com/toolsuite/shortener/internal/services"
)

// SetupRoutes configures all Gin API routes and injects the handler
// dependencies. The click events channel is handed in by the caller so the
// redirect handler shares the buffer with the worker pool; nothing here is
// a package-level singleton.
//
// A redirect request moves through: admission (rate limit middleware) →
// resolve → click accounting → 302. Rate limiting applies to every route
// registered after the middleware; /health is registered before it so
// probes are never throttled.
func SetupRoutes(router *gin.Engine, links *services.LinkService, clicks *services.ClickService, limiter *ratelimit.Limiter, clickEvents chan<- models.ClickEvent, baseURL string) {
	router.GET("/health", HealthCheckHandler)

	router.Use(RateLimitMiddleware(limiter))

	api := router.Group("/api/v1")
	{
		api.POST("/links", CreateShortLinkHandler(links, baseURL))
		api.GET("/links/:shortCode/stats", GetLinkStatsHandler(links, clicks, baseURL))
		api.GET("/my-links", ListMyLinksHandler(links, baseURL))
		api.GET("/stats", GlobalStatsHandler(links))
	}

	// Redirection route at root level: this is where users hit their short
	// URLs (e.g. localhost:8080/abc123).
	router.GET("/:shortCode", RedirectHandler(links, clickEvents))
}

// HealthCheckHandler handles the /health route to verify service status.
func HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RateLimitMiddleware rejects clients that exhausted their admission window.
// Admission is keyed by client IP and is a pure boolean decision: a denial
// becomes a 429, nothing else changes.
func RateLimitMiddleware(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limited",
				"message": "Rate limit exceeded. Please try again later.",
			})
			return
		}
		c.Next()
	}
}

// CreateLinkRequest represents the JSON request body for creating a link.
// custom_code is optional; when present it is reserved verbatim.
type CreateLinkRequest struct {
	LongURL    string `json:"long_url" binding:"required"`
	CustomCode string `json:"custom_code,omitempty"`
}

// RecentClickResponse is one entry of the recent click history in the
// analytics response.
type RecentClickResponse struct {
	Timestamp time.Time `json:"timestamp"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent,omitempty"`
	Referrer  string    `json:"referrer"`
}

// CreateShortLinkHandler handles the creation of a shortened URL.
func CreateShortLinkHandler(links *services.LinkService, baseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateLinkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_request",
				"message": "Invalid request body: " + err.Error(),
			})
			return
		}

		link, err := links.CreateLink(req.LongURL, req.CustomCode, c.ClientIP())
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrInvalidURL):
				c.JSON(http.StatusBadRequest, gin.H{
					"error":   "invalid_url",
					"message": "Please provide a valid absolute URL",
				})
			case errors.Is(err, apperrors.ErrCodeTaken):
				c.JSON(http.StatusConflict, gin.H{
					"error":   "code_taken",
					"message": "This custom code is already taken",
				})
			case errors.Is(err, apperrors.ErrShortCodeGenerationFailed):
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"error":   "generation_exhausted",
					"message": "Unable to generate unique short code. Please try again later.",
				})
			default:
				log.Printf("Error creating link: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{
					"error":   "internal_error",
					"message": "Failed to create short link",
				})
			}
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"id":         link.ID,
			"long_url":   link.LongURL,
			"short_url":  shortURL(baseURL, link.ShortCode),
			"short_code": link.ShortCode,
			"created_at": link.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
}

// RedirectHandler handles the redirection from a short URL to the original
// long URL. The click counter is incremented before the response goes out;
// the click event itself is queued for the worker pool with a non-blocking
// send. Neither accounting step may fail the redirect.
func RedirectHandler(links *services.LinkService, clickEvents chan<- models.ClickEvent) gin.HandlerFunc {
	return func(c *gin.Context) {
		shortCode := c.Param("shortCode")

		longURL, err := links.Resolve(c.Request.Context(), shortCode)
		if err != nil {
			if errors.Is(err, apperrors.ErrShortCodeNotFound) {
				c.JSON(http.StatusNotFound, gin.H{
					"error":   "not_found",
					"message": "The requested short link does not exist",
				})
				return
			}
			log.Printf("Error resolving link for %s: %v", shortCode, err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": "Internal server error",
			})
			return
		}

		if err := links.IncrementClickCount(shortCode); err != nil {
			log.Printf("ERROR: failed to increment click count for %s: %v", shortCode, err)
		}

		event := models.ClickEvent{
			ShortCode: shortCode,
			Timestamp: time.Now(),
			UserAgent: c.GetHeader("User-Agent"),
			IPAddress: c.ClientIP(),
			Referrer:  c.GetHeader("Referer"),
		}
		select {
		case clickEvents <- event:
		default:
			// Full buffer: drop the event rather than delaying the user.
			log.Printf("WARNING: click events channel is full, dropping click event for %s", shortCode)
		}

		c.Redirect(http.StatusFound, longURL)
	}
}

// GetLinkStatsHandler handles the retrieval of analytics for a specific
// link: aggregated counts from the click ledger plus the most recent
// clicks, newest last.
func GetLinkStatsHandler(links *services.LinkService, clicks *services.ClickService, baseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		shortCode := c.Param("shortCode")

		link, err := links.GetLinkByShortCode(shortCode)
		if err != nil {
			if errors.Is(err, apperrors.ErrShortCodeNotFound) {
				c.JSON(http.StatusNotFound, gin.H{
					"error":   "not_found",
					"message": "The requested short link does not exist",
				})
				return
			}
			log.Printf("Error retrieving stats for %s: %v", shortCode, err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": "Internal server error",
			})
			return
		}

		stats, err := clicks.Aggregate(shortCode, time.Now())
		if err != nil {
			log.Printf("Error aggregating clicks for %s: %v", shortCode, err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": "Internal server error",
			})
			return
		}

		recent, err := clicks.Recent(shortCode, services.RecentClicksLimit)
		if err != nil {
			log.Printf("Error loading recent clicks for %s: %v", shortCode, err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": "Internal server error",
			})
			return
		}

		recentClicks := make([]RecentClickResponse, 0, len(recent))
		for _, click := range recent {
			recentClicks = append(recentClicks, RecentClickResponse{
				Timestamp: click.Timestamp.UTC(),
				IPAddress: click.IPAddress,
				UserAgent: click.UserAgent,
				Referrer:  click.Referrer,
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"short_code":    link.ShortCode,
			"long_url":      link.LongURL,
			"short_url":     shortURL(baseURL, link.ShortCode),
			"total_clicks":  stats.TotalClicks,
			"today_clicks":  stats.TodayClicks,
			"weekly_clicks": stats.WeeklyClicks,
			"created_at":    link.CreatedAt.UTC().Format(time.RFC3339),
			"recent_clicks": recentClicks,
		})
	}
}

// ListMyLinksHandler returns the links created by the calling client,
// newest first. The client key is the caller's IP, the same key the
// redirect path records as creator.
func ListMyLinksHandler(links *services.LinkService, baseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := services.ListMyLinksLimit
		if raw := c.Query("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil {
				limit = n
			}
		}

		mine, err := links.ListByCreator(c.ClientIP(), limit)
		if err != nil {
			log.Printf("Error listing links for %s: %v", c.ClientIP(), err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": "Internal server error",
			})
			return
		}

		out := make([]gin.H, 0, len(mine))
		for _, link := range mine {
			out = append(out, gin.H{
				"id":         link.ID,
				"long_url":   link.LongURL,
				"short_url":  shortURL(baseURL, link.ShortCode),
				"short_code": link.ShortCode,
				"clicks":     link.ClickCount,
				"created_at": link.CreatedAt.UTC().Format(time.RFC3339),
			})
		}
		c.JSON(http.StatusOK, gin.H{"links": out})
	}
}

// GlobalStatsHandler returns service-wide totals.
func GlobalStatsHandler(links *services.LinkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := links.GetGlobalStats(time.Now())
		if err != nil {
			log.Printf("Error computing global stats: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": "Internal server error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"total_links":    stats.TotalLinks,
			"total_clicks":   stats.TotalClicks,
			"today_links":    stats.TodayLinks,
			"active_clients": stats.ActiveClients,
		})
	}
}

func shortURL(baseURL, shortCode string) string {
	return baseURL + "/" + shortCode
}
