package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	portssvc "github.com/SscSPs/general_ledger/internal/core/ports/services"
	"github.com/SscSPs/general_ledger/internal/dto"
)

// reportingHandler handles HTTP requests related to balances and reports
type reportingHandler struct {
	trialBalance portssvc.TrialBalanceSvc
}

func newReportingHandler(tb portssvc.TrialBalanceSvc) *reportingHandler {
	return &reportingHandler{trialBalance: tb}
}

func registerReportingRoutes(rg *gin.RouterGroup, tb portssvc.TrialBalanceSvc) {
	h := newReportingHandler(tb)

	rg.GET("/balances", h.getAccountBalances)
	reports := rg.Group("/reports")
	{
		reports.GET("/trial-balance", h.getTrialBalance)
	}
}

// asOfParams reads ?asOf=YYYY-MM-DD (today by default) and the optional ?userID filter.
func asOfParams(c *gin.Context) (time.Time, *int64, error) {
	asOf, err := dto.ParseQueryDate("asOf", c.Query("asOf"), time.Now())
	if err != nil {
		return time.Time{}, nil, err
	}

	raw := c.Query("userID")
	if raw == "" {
		return asOf, nil, nil
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		return time.Time{}, nil, apperrors.NewValidationError("userID must be a positive integer, got %q", raw)
	}
	return asOf, &userID, nil
}

func (h *reportingHandler) getAccountBalances(c *gin.Context) {
	asOf, userID, err := asOfParams(c)
	if err != nil {
		respondError(c, err, "Invalid balance query")
		return
	}

	balances, err := h.trialBalance.GetAccountBalances(c.Request.Context(), asOf, userID)
	if err != nil {
		respondError(c, err, "Failed to compute balances")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountBalancesResponse(balances))
}

func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	asOf, userID, err := asOfParams(c)
	if err != nil {
		respondError(c, err, "Invalid trial balance query")
		return
	}

	report, err := h.trialBalance.TrialBalance(c.Request.Context(), asOf, userID)
	if err != nil {
		respondError(c, err, "Failed to generate trial balance")
		return
	}
	c.JSON(http.StatusOK, dto.ToTrialBalanceResponse(report))
}
