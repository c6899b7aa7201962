package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	ledgerdomain "github.com/smallbiznis/vyapar/internal/ledger/domain"
)

func (s *Server) ListCustomerBalances(c *gin.Context) {
	resp, err := s.ledgerSvc.CustomerBalances(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if resp == nil {
		resp = []ledgerdomain.Balance{}
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCustomerStatement(c *gin.Context) {
	resp, err := s.ledgerSvc.CustomerStatement(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSupplierBalances(c *gin.Context) {
	resp, err := s.ledgerSvc.SupplierBalances(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if resp == nil {
		resp = []ledgerdomain.Balance{}
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSupplierStatement(c *gin.Context) {
	resp, err := s.ledgerSvc.SupplierStatement(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isLedgerValidationError(err error) bool {
	switch err {
	case ledgerdomain.ErrInvalidCompany,
		ledgerdomain.ErrInvalidID:
		return true
	default:
		return false
	}
}
