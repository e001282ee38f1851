package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	portssvc "github.com/SscSPs/coa_posting_engine/internal/core/ports/services"
	"github.com/SscSPs/coa_posting_engine/internal/dto"
	"github.com/SscSPs/coa_posting_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader may carry the idempotency key instead of the request body.
const IdempotencyKeyHeader = "Idempotency-Key"

// postingHandler handles HTTP requests that post to the general ledger.
type postingHandler struct {
	postingService portssvc.PostingSvcFacade
}

func newPostingHandler(ps portssvc.PostingSvcFacade) *postingHandler {
	return &postingHandler{
		postingService: ps,
	}
}

// RegisterPostingRoutes registers posting and stock routes.
func RegisterPostingRoutes(rg *gin.RouterGroup, postingService portssvc.PostingSvcFacade) {
	h := newPostingHandler(postingService)

	postings := rg.Group("/postings")
	{
		postings.POST("", h.postTransaction)
		postings.GET("", h.listPostings)
		postings.GET("/:transactionID", h.getPosting)
		postings.POST("/:transactionID/reversal", h.reversePosting)
	}

	rg.GET("/stock/:itemID", h.getStockLevel)
}

// idempotencyKey prefers the body value, then the header.
func idempotencyKey(c *gin.Context, fromBody string) string {
	if key := strings.TrimSpace(fromBody); key != "" {
		return key
	}
	return strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
}

// postTransaction resolves, composes and commits one business transaction.
// A new posting answers 201, a replay of an earlier request answers 200.
func (h *postingHandler) postTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)

	var req dto.PostTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "request format")
		return
	}
	req.IdempotencyKey = idempotencyKey(c, req.IdempotencyKey)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	logger = logger.With(slog.String("idempotency_key", req.IdempotencyKey), slog.String("domain", req.Context.Domain))
	logger.Info("Received request to post transaction")

	result, err := h.postingService.PostTransaction(c.Request.Context(), req, userID)
	if err != nil {
		respondWithError(c, err, "post transaction")
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	logger.Info("Transaction posted", slog.String("transaction_id", result.TransactionID), slog.Bool("replayed", result.Replayed))
	c.JSON(status, dto.ToPostingResponse(result))
}

// reversePosting posts the mirror entry of :transactionID.
func (h *postingHandler) reversePosting(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	transactionID := c.Param("transactionID")

	var req dto.ReversePostingRequest
	// the body is optional
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err, "request format")
			return
		}
	}
	req.IdempotencyKey = idempotencyKey(c, req.IdempotencyKey)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	logger = logger.With(slog.String("transaction_id", transactionID))
	logger.Info("Received request to reverse posting")

	result, err := h.postingService.ReversePosting(c.Request.Context(), transactionID, req, userID)
	if err != nil {
		respondWithError(c, err, "reverse posting")
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	logger.Info("Posting reversed", slog.String("reversal_id", result.TransactionID), slog.Bool("replayed", result.Replayed))
	c.JSON(status, dto.ToPostingResponse(result))
}

func (h *postingHandler) getPosting(c *gin.Context) {
	transactionID := c.Param("transactionID")

	result, err := h.postingService.GetPosting(c.Request.Context(), transactionID)
	if err != nil {
		respondWithError(c, err, "retrieve posting")
		return
	}
	c.JSON(http.StatusOK, dto.ToPostingResponse(result))
}

// listPostings returns postings newest first, paginated with nextToken.
func (h *postingHandler) listPostings(c *gin.Context) {
	var params dto.ListPostingsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err, "query parameters")
		return
	}

	resp, err := h.postingService.ListPostings(c.Request.Context(), params)
	if err != nil {
		respondWithError(c, err, "list postings")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *postingHandler) getStockLevel(c *gin.Context) {
	level, err := h.postingService.GetStockLevel(c.Request.Context(), c.Param("itemID"))
	if err != nil {
		respondWithError(c, err, "retrieve stock level")
		return
	}
	c.JSON(http.StatusOK, level)
}
