package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"geosynth.app/internal/ports"
)

// HealthResponse is the body of GET /api/health
type HealthResponse struct {
	Status     string                        `json:"status"`
	Components map[string]ports.HealthStatus `json:"components"`
	Timestamp  time.Time                     `json:"timestamp"`
}

// getHealth handles GET /api/health. Any unhealthy component turns the
// response into a 503.
func (s *HTTPServerAdapter) getHealth(c *gin.Context) {
	components := s.healthChecker.CheckAll(c.Request.Context())

	response := HealthResponse{
		Status:     "healthy",
		Components: components,
		Timestamp:  time.Now().UTC(),
	}
	status := http.StatusOK
	for _, component := range components {
		if component.Status != "healthy" {
			response.Status = "unhealthy"
			status = http.StatusServiceUnavailable
			break
		}
	}

	c.JSON(status, response)
}

// getMetrics handles GET /api/metrics requests
func (s *HTTPServerAdapter) getMetrics(c *gin.Context) {
	metrics, err := s.metrics.GetMetrics(c.Request.Context())
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}
