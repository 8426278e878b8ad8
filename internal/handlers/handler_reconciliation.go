package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/SscSPs/async_payments_app/internal/core/domain"
	portssvc "github.com/SscSPs/async_payments_app/internal/core/ports/services"
	"github.com/SscSPs/async_payments_app/internal/dto"
	"github.com/SscSPs/async_payments_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reconciliationHandler exposes manual reconciliation and on-demand sweeps.
type reconciliationHandler struct {
	reconciliationService portssvc.ReconciliationSvc
}

func registerReconciliationRoutes(rg *gin.RouterGroup, reconciliationService portssvc.ReconciliationSvc) {
	h := &reconciliationHandler{reconciliationService: reconciliationService}

	rec := rg.Group("/reconciliation")
	{
		rec.POST("/ledgers/:asyncAccountID", h.reconcileLedger)
		rec.POST("/sweeps/ledgers", h.sweep(reconciliationService.SweepAndBlockOrReconcile))
		rec.POST("/sweeps/rollback", h.sweep(reconciliationService.RollbackExpiredPending))
		rec.POST("/sweeps/reprocess", h.sweep(reconciliationService.ReprocessPending))
	}
}

// RegisterReconciliationRoutes is the exported form used by tests.
func RegisterReconciliationRoutes(rg *gin.RouterGroup, reconciliationService portssvc.ReconciliationSvc) {
	registerReconciliationRoutes(rg, reconciliationService)
}

// reconcileLedger godoc
// @Summary Reconcile an async ledger
// @Description Moves the async balance into the owner's sync ledger. A blocked ledger is only reconciled with unblock=true.
// @Tags reconciliation
// @Produce  json
// @Param   asyncAccountID path string true "Async ledger ID"
// @Param   unblock query bool false "Unblock a blocked ledger"
// @Success 200 {object} dto.ReconciliationResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Ledger not found"
// @Failure 422 {object} map[string]string "Ledger blocked"
// @Failure 500 {object} map[string]string "Failed to reconcile ledger"
// @Security BearerAuth
// @Router /reconciliation/ledgers/{asyncAccountID} [post]
func (h *reconciliationHandler) reconcileLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	asyncAccountID := c.Param("asyncAccountID")

	var params dto.ReconcileLedgerParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ReconcileLedger", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	logger = logger.With(slog.String("async_account_id", asyncAccountID), slog.Bool("unblock", params.Unblock))
	result, err := h.reconciliationService.ReconcileLedger(c.Request.Context(), asyncAccountID, params.Unblock)
	if err != nil {
		respondError(c, logger, err, "Failed to reconcile ledger")
		return
	}

	logger.Info("Ledger reconciled", slog.String("moved", result.MovedAmount.String()))
	c.JSON(http.StatusOK, dto.ToReconciliationResponse(result))
}

// sweep godoc
// @Summary Run a sweep now
// @Description Runs one pass of the ledger, rollback or reprocess job and returns its report
// @Tags reconciliation
// @Produce  json
// @Success 200 {object} domain.SweepReport
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /reconciliation/sweeps/ledgers [post]
// @Router /reconciliation/sweeps/rollback [post]
// @Router /reconciliation/sweeps/reprocess [post]
func (h *reconciliationHandler) sweep(run func(ctx context.Context) domain.SweepReport) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := run(c.Request.Context())
		middleware.GetLoggerFromCtx(c.Request.Context()).Info("Sweep triggered",
			slog.String("job", report.Job),
			slog.Int("succeeded", report.Succeeded),
			slog.Int("failed", report.Failed))
		c.JSON(http.StatusOK, report)
	}
}
