package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SscSPs/general_ledger/internal/core/ports/services"
	"github.com/SscSPs/general_ledger/internal/dto"
	"github.com/SscSPs/general_ledger/internal/platform/logging"
)

// transactionHandler handles postings, reversals and transaction lookups.
type transactionHandler struct {
	posting portssvc.PostingSvc
}

func newTransactionHandler(posting portssvc.PostingSvc) *transactionHandler {
	return &transactionHandler{posting: posting}
}

func registerTransactionRoutes(rg *gin.RouterGroup, posting portssvc.PostingSvc) {
	h := newTransactionHandler(posting)

	txns := rg.Group("/transactions")
	{
		txns.POST("", h.postTransaction)
		txns.GET("/:reference", h.getTransaction)
		txns.POST("/:reference/reverse", h.reverseTransaction)
	}
}

// ReferenceResponse names the transaction a write committed.
type ReferenceResponse struct {
	Reference  string `json:"reference"`
	ReversalOf string `json:"reversalOf,omitempty"`
}

func (h *transactionHandler) postTransaction(c *gin.Context) {
	var body dto.PostBody
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}
	req, err := body.ToRequest()
	if err != nil {
		respondError(c, err, "Invalid posting")
		return
	}

	reference, err := h.posting.Post(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to post transaction")
		return
	}

	logging.GetLoggerFromCtx(c.Request.Context()).Info("Transaction posted", slog.String("reference", reference))
	c.JSON(http.StatusCreated, ReferenceResponse{Reference: reference})
}

func (h *transactionHandler) getTransaction(c *gin.Context) {
	txn, err := h.posting.GetTransaction(c.Request.Context(), c.Param("reference"))
	if err != nil {
		respondError(c, err, "Failed to retrieve transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

func (h *transactionHandler) reverseTransaction(c *gin.Context) {
	original := c.Param("reference")

	var body dto.ReverseBody
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}
	req, err := body.ToRequest(original)
	if err != nil {
		respondError(c, err, "Invalid reversal")
		return
	}

	reference, err := h.posting.Reverse(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to reverse transaction")
		return
	}

	logging.GetLoggerFromCtx(c.Request.Context()).Info("Transaction reversed",
		slog.String("reference", reference), slog.String("reversal_of", original))
	c.JSON(http.StatusCreated, ReferenceResponse{Reference: reference, ReversalOf: original})
}
