package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	purchasedomain "github.com/smallbiznis/vyapar/internal/purchase/domain"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
)

func (s *Server) CreatePurchase(c *gin.Context) {
	var req purchasedomain.CreatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.SupplierID = strings.TrimSpace(req.SupplierID)

	resp, err := s.purchaseSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListPurchases(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status     string `form:"status"`
		SupplierID string `form:"supplier_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := validateIDFilters(idFilter{field: "supplier_id", value: query.SupplierID}); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.purchaseSvc.List(c.Request.Context(), purchasedomain.ListPurchaseRequest{
		Pagination: query.Pagination,
		Status:     strings.ToLower(strings.TrimSpace(query.Status)),
		SupplierID: strings.TrimSpace(query.SupplierID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPurchaseByID(c *gin.Context) {
	resp, err := s.purchaseSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isPurchaseValidationError(err error) bool {
	switch err {
	case purchasedomain.ErrInvalidCompany,
		purchasedomain.ErrInvalidID,
		purchasedomain.ErrInvalidStatus,
		purchasedomain.ErrEmptyItems,
		purchasedomain.ErrInvalidQuantity,
		purchasedomain.ErrInvalidUnitPrice,
		purchasedomain.ErrSupplierRequired:
		return true
	default:
		return false
	}
}
