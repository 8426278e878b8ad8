package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/async_payments_app/internal/core/ports/services"
	"github.com/SscSPs/async_payments_app/internal/dto"
	"github.com/SscSPs/async_payments_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler handles HTTP requests for the caller's ledger pair.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvc
}

func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvc) {
	h := &ledgerHandler{ledgerService: ledgerService}

	ledgers := rg.Group("/ledgers")
	{
		ledgers.POST("", h.openLedgers)
		ledgers.GET("/me", h.getMyLedgers)
	}
}

// RegisterLedgerRoutes is the exported form used by tests.
func RegisterLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvc) {
	registerLedgerRoutes(rg, ledgerService)
}

// openLedgers godoc
// @Summary Open the caller's ledgers
// @Description Opens the sync and async ledger of the caller together. The caller's identity must be registered first.
// @Tags ledgers
// @Produce  json
// @Success 201 {object} dto.LedgersResponse
// @Failure 400 {object} map[string]string "Identity not registered"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Ledgers already open"
// @Failure 500 {object} map[string]string "Failed to open ledgers"
// @Security BearerAuth
// @Router /ledgers [post]
func (h *ledgerHandler) openLedgers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	pair, err := h.ledgerService.OpenLedgers(c.Request.Context(), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to open ledgers")
		return
	}

	logger.Info("Ledgers opened", slog.String("sync_account_id", pair.Sync.AccountID), slog.String("async_account_id", pair.Async.AccountID))
	c.JSON(http.StatusCreated, dto.ToLedgersResponse(pair))
}

// getMyLedgers godoc
// @Summary Get the caller's ledgers
// @Description Returns the balances of the caller's sync and async ledgers
// @Tags ledgers
// @Produce  json
// @Success 200 {object} dto.LedgersResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Ledgers not found"
// @Failure 500 {object} map[string]string "Failed to retrieve ledgers"
// @Security BearerAuth
// @Router /ledgers/me [get]
func (h *ledgerHandler) getMyLedgers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	pair, err := h.ledgerService.GetLedgers(c.Request.Context(), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve ledgers")
		return
	}
	c.JSON(http.StatusOK, dto.ToLedgersResponse(pair))
}
