package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	analyticsdomain "github.com/smallbiznis/vyapar/internal/analytics/domain"
)

const maxTopProductsLimit = 50

func (s *Server) GetDashboardSummary(c *gin.Context) {
	resp, err := s.analyticsSvc.DashboardSummary(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetRevenueTrend(c *gin.Context) {
	// 0 lets the service apply the configured default period.
	days, err := parsePositiveInt(c.Query("days"), 0)
	if err != nil {
		AbortWithError(c, analyticsdomain.ErrInvalidPeriod)
		return
	}

	resp, err := s.analyticsSvc.RevenueTrend(c.Request.Context(), days)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetTopProducts(c *gin.Context) {
	limit, err := parsePositiveInt(c.Query("limit"), maxTopProductsLimit)
	if err != nil {
		AbortWithError(c, newValidationError("limit", "invalid_limit", "limit must be between 1 and 50"))
		return
	}

	resp, err := s.analyticsSvc.TopProducts(c.Request.Context(), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if resp == nil {
		resp = []analyticsdomain.TopProduct{}
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetLowStock(c *gin.Context) {
	resp, err := s.analyticsSvc.LowStock(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProductionSummary(c *gin.Context) {
	resp, err := s.analyticsSvc.ProductionSummary(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProfitSummary(c *gin.Context) {
	resp, err := s.analyticsSvc.ProfitSummary(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInventoryValuation(c *gin.Context) {
	resp, err := s.analyticsSvc.InventoryValuation(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
