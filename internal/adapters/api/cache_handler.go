package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"geosynth.app/internal/ports"
)

// SuccessResponse represents a successful HTTP response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ClearResponse reports how many entries a clear removed
type ClearResponse struct {
	Message string `json:"message"`
	Removed int    `json:"removed"`
}

// invalidateCountry handles DELETE /api/cache/countries/:code
func (s *HTTPServerAdapter) invalidateCountry(c *gin.Context) {
	code, ok := s.bindCode(c)
	if !ok {
		return
	}

	if err := s.profiles.Invalidate(c.Request.Context(), code); err != nil {
		s.handleError(c, err)
		return
	}

	s.logger.Info("Country cache invalidated", ports.F("code", code))
	c.JSON(http.StatusOK, SuccessResponse{Message: "Cache entries for " + code + " removed"})
}

// clearCache handles DELETE /api/cache
func (s *HTTPServerAdapter) clearCache(c *gin.Context) {
	removed, err := s.profiles.ClearAll(c.Request.Context())
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, ClearResponse{Message: "Cache cleared", Removed: removed})
}

// getCacheStats handles GET /api/cache/stats
func (s *HTTPServerAdapter) getCacheStats(c *gin.Context) {
	stats, err := s.cacheStats.Stats(c.Request.Context())
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
