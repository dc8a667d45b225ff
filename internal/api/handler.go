package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"flight-loadgen/internal/models"
	"flight-loadgen/internal/service"
	"flight-loadgen/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	eventService *service.EventService
}

// NewHandler creates a new HTTP handler
func NewHandler(eventService *service.EventService) *Handler {
	return &Handler{
		eventService: eventService,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/events", h.receiveEvent)
	}
}

func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// receiveEvent accepts one order event posted by the load generator
func (h *Handler) receiveEvent(c *gin.Context) {
	var event models.OrderEvent

	if err := c.ShouldBindJSON(&event); err != nil {
		util.EventsRejectedTotal.WithLabelValues("body").Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	ack, err := h.eventService.Accept(c.Request.Context(), event, "http")
	if err != nil {
		if errors.Is(err, service.ErrInvalidEvent) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid order event",
				"details": err.Error(),
			})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Failed to accept order event",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, ack)
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
