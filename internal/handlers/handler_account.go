package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/coa_posting_engine/internal/core/ports/services"
	"github.com/SscSPs/coa_posting_engine/internal/dto"
	"github.com/SscSPs/coa_posting_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to the account directory.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{
		accountService: as,
	}
}

// RegisterAccountRoutes registers routes related to accounts.
func RegisterAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts")
	{
		accounts.GET("", h.listAccounts)
		accounts.GET("/trial-balance", h.getTrialBalance)
		accounts.GET("/:code", h.getAccount)
		accounts.PUT("/:code", h.upsertAccount)
	}
}

// listAccounts returns accounts filtered by type, prefix, name and status.
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)

	var params dto.ListAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err, "query parameters")
		return
	}

	logger.Debug("Received request to list accounts", slog.String("type", params.Type), slog.String("prefix", params.Prefix))

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), params.ToFilter())
	if err != nil {
		respondWithError(c, err, "list accounts")
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponses(accounts))
}

// getAccount returns one account by code.
func (h *accountHandler) getAccount(c *gin.Context) {
	code := c.Param("code")

	account, err := h.accountService.GetAccountByCode(c.Request.Context(), code)
	if err != nil {
		respondWithError(c, err, "retrieve account")
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// upsertAccount creates the account at :code or updates it.
func (h *accountHandler) upsertAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	code := c.Param("code")

	var req dto.UpsertAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "request format")
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	logger = logger.With(slog.String("account_code", code))
	logger.Info("Received request to upsert account", slog.String("account_type", string(req.AccountType)))

	account, err := h.accountService.UpsertAccount(c.Request.Context(), code, req, userID)
	if err != nil {
		respondWithError(c, err, "save account")
		return
	}

	logger.Info("Account saved successfully")
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// getTrialBalance lists non-zero balances split into debit and credit columns.
func (h *accountHandler) getTrialBalance(c *gin.Context) {
	tb, err := h.accountService.GetTrialBalance(c.Request.Context())
	if err != nil {
		respondWithError(c, err, "build trial balance")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rows":        tb.Rows,
		"totalDebit":  tb.TotalDebit,
		"totalCredit": tb.TotalCredit,
		"balanced":    tb.IsBalanced(),
	})
}
