package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SscSPs/general_ledger/internal/core/ports/services"
	"github.com/SscSPs/general_ledger/internal/dto"
	"github.com/SscSPs/general_ledger/internal/platform/logging"
)

// voucherTypeHandler handles HTTP requests related to voucher types.
type voucherTypeHandler struct {
	registry portssvc.VoucherTypeRegistrySvc
}

func newVoucherTypeHandler(registry portssvc.VoucherTypeRegistrySvc) *voucherTypeHandler {
	return &voucherTypeHandler{registry: registry}
}

func registerVoucherTypeRoutes(rg *gin.RouterGroup, registry portssvc.VoucherTypeRegistrySvc) {
	h := newVoucherTypeHandler(registry)

	vt := rg.Group("/voucher-types")
	{
		vt.POST("", h.registerVoucherType)
		vt.GET("/:slug", h.listVoucherTypes)
		vt.GET("/:slug/active", h.getActiveVoucherType)
		vt.POST("/:slug/retire", h.retireVoucherType)
	}
}

// registerVoucherType registers a new version of a voucher type.
// Overlapping windows answer 409.
func (h *voucherTypeHandler) registerVoucherType(c *gin.Context) {
	var body dto.VoucherTypeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}
	req, err := body.ToRequest()
	if err != nil {
		respondError(c, err, "Invalid voucher type")
		return
	}

	vt, err := h.registry.RegisterFromRequest(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to register voucher type")
		return
	}

	logging.GetLoggerFromCtx(c.Request.Context()).Info("Voucher type registered",
		slog.String("slug", vt.Slug()), slog.Int64("voucher_type_id", vt.ID()))
	c.JSON(http.StatusCreated, dto.ToVoucherTypeResponse(vt))
}

func (h *voucherTypeHandler) listVoucherTypes(c *gin.Context) {
	versions, err := h.registry.List(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err, "Failed to list voucher types")
		return
	}

	resp := make([]dto.VoucherTypeResponse, len(versions))
	for i, vt := range versions {
		resp[i] = dto.ToVoucherTypeResponse(vt)
	}
	c.JSON(http.StatusOK, resp)
}

// getActiveVoucherType resolves the version of :slug active on ?asOf (today by default).
func (h *voucherTypeHandler) getActiveVoucherType(c *gin.Context) {
	asOf, err := dto.ParseQueryDate("asOf", c.Query("asOf"), time.Now())
	if err != nil {
		respondError(c, err, "Invalid asOf")
		return
	}

	vt, err := h.registry.Resolve(c.Request.Context(), c.Param("slug"), asOf)
	if err != nil {
		respondError(c, err, "Failed to resolve voucher type")
		return
	}
	c.JSON(http.StatusOK, dto.ToVoucherTypeResponse(vt))
}

func (h *voucherTypeHandler) retireVoucherType(c *gin.Context) {
	var body dto.RetireVoucherTypeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}
	from, to, err := body.Dates()
	if err != nil {
		respondError(c, err, "Invalid retirement window")
		return
	}

	vt, err := h.registry.Retire(c.Request.Context(), c.Param("slug"), from, to)
	if err != nil {
		respondError(c, err, "Failed to retire voucher type")
		return
	}
	c.JSON(http.StatusOK, dto.ToVoucherTypeResponse(vt))
}
