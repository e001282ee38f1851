package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/coa_posting_engine/internal/core/ports/services"
	"github.com/SscSPs/coa_posting_engine/internal/dto"
	"github.com/gin-gonic/gin"
)

type resolverHandler struct {
	resolver portssvc.ResolverSvc
}

// RegisterResolverRoutes registers the read-only resolution routes.
func RegisterResolverRoutes(rg *gin.RouterGroup, resolver portssvc.ResolverSvc) {
	h := &resolverHandler{resolver: resolver}

	coaGroup := rg.Group("/coa")
	{
		coaGroup.GET("/resolve", h.resolveAccount)
		coaGroup.GET("/canonical-table", h.canonicalTable)
	}
}

// resolveAccount answers which account a (category, type, direction, usage) would post to.
func (h *resolverHandler) resolveAccount(c *gin.Context) {
	var params dto.ResolveAccountParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err, "query parameters")
		return
	}

	res, err := h.resolver.ResolveAccount(c.Request.Context(), params.ToDomain())
	if err != nil {
		respondWithError(c, err, "resolve account")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *resolverHandler) canonicalTable(c *gin.Context) {
	c.JSON(http.StatusOK, h.resolver.CanonicalTable())
}
