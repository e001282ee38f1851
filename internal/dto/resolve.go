package dto

import "github.com/SscSPs/coa_posting_engine/internal/core/domain"

// ResolveAccountParams are the query parameters of the resolve endpoint.
type ResolveAccountParams struct {
	Category  string `form:"category"`
	Type      string `form:"type"`
	Direction string `form:"direction" binding:"omitempty,oneof=IN OUT"`
	Usage     string `form:"usage" binding:"omitempty,oneof=REVENUE EXPENSE COGS INVENTORY CASH BANK RECEIVABLE PAYABLE OUTPUT_TAX INPUT_TAX"`
}

// ToDomain fills the defaults: direction IN, and the main-leg usage for the direction.
func (p ResolveAccountParams) ToDomain() domain.ResolveRequest {
	req := domain.ResolveRequest{
		Category:  p.Category,
		Type:      p.Type,
		Direction: domain.PaymentDirection(p.Direction),
		Usage:     domain.Usage(p.Usage),
	}
	if req.Direction == "" {
		req.Direction = domain.DirectionIn
	}
	if req.Usage == "" {
		req.Usage = domain.UsageRevenue
		if req.Direction == domain.DirectionOut {
			req.Usage = domain.UsageExpense
		}
	}
	return req
}
