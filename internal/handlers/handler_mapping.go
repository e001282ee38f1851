package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/coa_posting_engine/internal/core/ports/services"
	"github.com/SscSPs/coa_posting_engine/internal/dto"
	"github.com/SscSPs/coa_posting_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

type mappingRuleHandler struct {
	mappingService portssvc.MappingRuleSvcFacade
}

// RegisterMappingRuleRoutes registers the mapping table routes.
func RegisterMappingRuleRoutes(rg *gin.RouterGroup, mappingService portssvc.MappingRuleSvcFacade) {
	h := &mappingRuleHandler{mappingService: mappingService}

	rules := rg.Group("/mapping-rules")
	{
		rules.GET("", h.listMappingRules)
		rules.PUT("", h.upsertMappingRule)
	}
}

type listMappingRulesParams struct {
	IncludeInactive bool `form:"includeInactive"`
}

func (h *mappingRuleHandler) listMappingRules(c *gin.Context) {
	var params listMappingRulesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err, "query parameters")
		return
	}

	rules, err := h.mappingService.ListMappingRules(c.Request.Context(), params.IncludeInactive)
	if err != nil {
		respondWithError(c, err, "list mapping rules")
		return
	}
	c.JSON(http.StatusOK, dto.ToMappingRuleResponses(rules))
}

// upsertMappingRule stores a rule keyed by (category, type). isActive=false retires it.
func (h *mappingRuleHandler) upsertMappingRule(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)

	var req dto.UpsertMappingRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "request format")
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	logger = logger.With(slog.String("category", req.Category), slog.String("type", req.Type))
	logger.Info("Received request to upsert mapping rule")

	rule, err := h.mappingService.UpsertMappingRule(c.Request.Context(), req, userID)
	if err != nil {
		respondWithError(c, err, "save mapping rule")
		return
	}

	logger.Info("Mapping rule saved successfully", slog.Bool("active", rule.IsActive))
	c.JSON(http.StatusOK, dto.ToMappingRuleResponse(rule))
}
