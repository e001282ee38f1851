package dto

import (
	"time"

	"github.com/SscSPs/coa_posting_engine/internal/core/domain"
)

// UpsertMappingRuleRequest creates, edits or soft-deletes (isActive=false) a mapping rule.
type UpsertMappingRuleRequest struct {
	Category    string `json:"category" binding:"required,max=100"`
	Type        string `json:"type" binding:"max=100"`
	RevenueCode string `json:"revenueCode" binding:"max=20"`
	COGSCode    string `json:"cogsCode" binding:"max=20"`
	AssetCode   string `json:"assetCode" binding:"max=20"`
	IsActive    *bool  `json:"isActive"` // Optional, defaults to true
}

// MappingRuleResponse defines the data returned for a mapping rule.
type MappingRuleResponse struct {
	Category      string    `json:"category"`
	Type          string    `json:"type"`
	RevenueCode   string    `json:"revenueCode,omitempty"`
	COGSCode      string    `json:"cogsCode,omitempty"`
	AssetCode     string    `json:"assetCode,omitempty"`
	IsActive      bool      `json:"isActive"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// ToMappingRuleResponse converts a domain.MappingRule to its DTO.
func ToMappingRuleResponse(r *domain.MappingRule) MappingRuleResponse {
	return MappingRuleResponse{
		Category:      r.Category,
		Type:          r.Type,
		RevenueCode:   r.RevenueCode,
		COGSCode:      r.COGSCode,
		AssetCode:     r.AssetCode,
		IsActive:      r.IsActive,
		LastUpdatedAt: r.LastUpdatedAt,
		LastUpdatedBy: r.LastUpdatedBy,
	}
}

// ToMappingRuleResponses converts a slice of rules.
func ToMappingRuleResponses(rules []domain.MappingRule) []MappingRuleResponse {
	responses := make([]MappingRuleResponse, len(rules))
	for i := range rules {
		responses[i] = ToMappingRuleResponse(&rules[i])
	}
	return responses
}
