package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	productiondomain "github.com/smallbiznis/vyapar/internal/production/domain"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
)

func (s *Server) CreateProductionBatch(c *gin.Context) {
	var req productiondomain.CreateProductionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ProductID = strings.TrimSpace(req.ProductID)

	resp, err := s.productionSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListProductionBatches(c *gin.Context) {
	var query struct {
		pagination.Pagination
		ProductID string `form:"product_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productionSvc.List(c.Request.Context(), productiondomain.ListProductionRequest{
		Pagination: query.Pagination,
		ProductID:  strings.TrimSpace(query.ProductID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProductionBatchByID(c *gin.Context) {
	resp, err := s.productionSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isProductionValidationError(err error) bool {
	switch err {
	case productiondomain.ErrInvalidCompany,
		productiondomain.ErrInvalidID,
		productiondomain.ErrInvalidQuantityProduced,
		productiondomain.ErrInvalidQuantityUsed,
		productiondomain.ErrEmptyItems:
		return true
	default:
		return false
	}
}
