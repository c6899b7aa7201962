package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	stockdomain "github.com/smallbiznis/vyapar/internal/stock/domain"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
)

type adjustStockRequest struct {
	ProductID      string          `json:"product_id"`
	RawMaterialID  string          `json:"raw_material_id"`
	QuantityChange decimal.Decimal `json:"quantity_change"`
	Notes          string          `json:"notes"`
}

func (s *Server) AdjustStock(c *gin.Context) {
	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.stockSvc.Adjust(c.Request.Context(), stockdomain.AdjustRequest{
		ProductID:     strings.TrimSpace(req.ProductID),
		RawMaterialID: strings.TrimSpace(req.RawMaterialID),
		Quantity:      req.QuantityChange,
		Notes:         strings.TrimSpace(req.Notes),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListStockMovements(c *gin.Context) {
	var query struct {
		pagination.Pagination
		ProductID     string `form:"product_id"`
		RawMaterialID string `form:"raw_material_id"`
		MovementType  string `form:"movement_type"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := validateIDFilters(
		idFilter{field: "product_id", value: query.ProductID},
		idFilter{field: "raw_material_id", value: query.RawMaterialID},
	); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.stockSvc.List(c.Request.Context(), stockdomain.ListMovementRequest{
		Pagination:    query.Pagination,
		ProductID:     strings.TrimSpace(query.ProductID),
		RawMaterialID: strings.TrimSpace(query.RawMaterialID),
		MovementType:  strings.TrimSpace(query.MovementType),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ReconcileStock(c *gin.Context) {
	drifts, err := s.stockSvc.Reconcile(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if drifts == nil {
		drifts = []stockdomain.Drift{}
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"consistent": len(drifts) == 0,
		"drifts":     drifts,
	}})
}

func isStockValidationError(err error) bool {
	switch err {
	case stockdomain.ErrInvalidCompany,
		stockdomain.ErrInvalidID,
		stockdomain.ErrInvalidMovementTarget,
		stockdomain.ErrInvalidMovementType,
		stockdomain.ErrInvalidQuantity,
		stockdomain.ErrInvalidReference:
		return true
	default:
		return false
	}
}
