package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	rawmaterialdomain "github.com/smallbiznis/vyapar/internal/rawmaterial/domain"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
)

func (s *Server) CreateRawMaterial(c *gin.Context) {
	var req rawmaterialdomain.CreateRawMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Unit = strings.TrimSpace(req.Unit)

	resp, err := s.rawMaterialSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListRawMaterials(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Search          string `form:"search"`
		IncludeInactive string `form:"include_inactive"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	includeInactive, err := parseIncludeInactive(query.IncludeInactive)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.rawMaterialSvc.List(c.Request.Context(), rawmaterialdomain.ListRawMaterialRequest{
		Pagination:      query.Pagination,
		Search:          strings.TrimSpace(query.Search),
		IncludeInactive: includeInactive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetRawMaterialByID(c *gin.Context) {
	resp, err := s.rawMaterialSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateRawMaterial(c *gin.Context) {
	var req rawmaterialdomain.UpdateRawMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.rawMaterialSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteRawMaterial(c *gin.Context) {
	if err := s.rawMaterialSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func isRawMaterialValidationError(err error) bool {
	switch err {
	case rawmaterialdomain.ErrInvalidCompany,
		rawmaterialdomain.ErrInvalidID,
		rawmaterialdomain.ErrInvalidName,
		rawmaterialdomain.ErrInvalidCostPrice,
		rawmaterialdomain.ErrInvalidThreshold,
		rawmaterialdomain.ErrInvalidStock:
		return true
	default:
		return false
	}
}
