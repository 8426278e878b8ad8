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

// transactionHandler handles HTTP requests related to transfers.
type transactionHandler struct {
	transactionService portssvc.TransactionSvcFacade
}

func newTransactionHandler(ts portssvc.TransactionSvcFacade) *transactionHandler {
	return &transactionHandler{transactionService: ts}
}

// registerTransactionRoutes registers routes related to transactions.
func registerTransactionRoutes(rg *gin.RouterGroup, transactionService portssvc.TransactionSvcFacade) {
	h := newTransactionHandler(transactionService)

	txns := rg.Group("/transactions")
	{
		txns.POST("", h.createTransaction)
		txns.GET("", h.searchTransactions)
		txns.GET("/sent", h.listSent)
		txns.GET("/received", h.listReceived)
		txns.GET("/:transactionID", h.getTransaction)
		txns.GET("/:transactionID/status", h.getStatus)
		txns.POST("/:transactionID/reverse", h.reverseTransaction)
	}
}

// RegisterTransactionRoutes is the exported form used by tests.
func RegisterTransactionRoutes(rg *gin.RouterGroup, transactionService portssvc.TransactionSvcFacade) {
	registerTransactionRoutes(rg, transactionService)
}

// createTransaction godoc
// @Summary Execute a transfer
// @Description Routes the transfer by channel: ASYNC_INTERNAL tops up the caller's async ledger, INTERNET moves sync to sync, SMS/NFC/BLUETOOTH move async to async.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transaction body dto.CreateTransactionRequest true "Transfer details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Ledger not found"
// @Failure 422 {object} map[string]string "Insufficient funds, blocked ledger, limit exceeded or KYC required"
// @Failure 500 {object} map[string]string "Failed to execute transfer"
// @Security BearerAuth
// @Router /transactions [post]
func (h *transactionHandler) createTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	if err := domain.ValidateAmount(req.Amount); err != nil {
		logger.Warn("Rejected transfer amount", slog.String("amount", req.Amount.String()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	originUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Origin user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(
		slog.String("dest_user_id", req.DestUserID),
		slog.String("channel", string(req.Channel)),
		slog.String("amount", req.Amount.String()),
	)
	logger.Info("Received request to execute transfer")

	txn, err := h.transactionService.Execute(c.Request.Context(), req.ToTransferRequest(originUserID))
	if err != nil {
		respondError(c, logger, err, "Failed to execute transfer")
		return
	}

	logger.Info("Transfer executed", slog.String("transaction_id", txn.TransactionID), slog.String("status", string(txn.Status)))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// getTransaction godoc
// @Summary Get a transaction by ID
// @Description Retrieves a transaction the caller is a party to
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 500 {object} map[string]string "Failed to retrieve transaction"
// @Security BearerAuth
// @Router /transactions/{transactionID} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("transaction_id", transactionID))
	txn, err := h.transactionService.GetTransaction(c.Request.Context(), transactionID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve transaction")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// getStatus godoc
// @Summary Poll a transaction status
// @Description Answers from the in-memory status cache and falls back to the store
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionStatusResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 500 {object} map[string]string "Failed to retrieve status"
// @Security BearerAuth
// @Router /transactions/{transactionID}/status [get]
func (h *transactionHandler) getStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	resp, err := h.transactionService.GetStatus(c.Request.Context(), transactionID)
	if err != nil {
		respondError(c, logger.With(slog.String("transaction_id", transactionID)), err, "Failed to retrieve status")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// reverseTransaction godoc
// @Summary Reverse a pending transaction
// @Description Returns the value of a PENDING transaction to its origin and marks it ROLLBACK. Reversing a ROLLBACK transaction is a no-op.
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Transaction already settled or failed"
// @Failure 422 {object} map[string]string "Value can no longer be recovered"
// @Failure 500 {object} map[string]string "Failed to reverse transaction"
// @Security BearerAuth
// @Router /transactions/{transactionID}/reverse [post]
func (h *transactionHandler) reverseTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("transaction_id", transactionID))
	logger.Info("Received request to reverse transaction")

	// Only parties may reverse; GetTransaction hides everything else as not found.
	if _, err := h.transactionService.GetTransaction(c.Request.Context(), transactionID, userID); err != nil {
		respondError(c, logger, err, "Failed to reverse transaction")
		return
	}

	txn, err := h.transactionService.Reverse(c.Request.Context(), transactionID)
	if err != nil {
		respondError(c, logger, err, "Failed to reverse transaction")
		return
	}

	logger.Info("Transaction reversed", slog.String("status", string(txn.Status)))
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// searchTransactions godoc
// @Summary Search the caller's transactions
// @Description Lists transactions where the caller is origin or destination, newest first
// @Tags transactions
// @Produce  json
// @Param   status query string false "Status filter"
// @Param   kind query string false "Operation kind filter"
// @Param   channel query string false "Channel filter"
// @Param   gateway query string false "Gateway filter"
// @Param   minAmount query string false "Minimum amount"
// @Param   maxAmount query string false "Maximum amount"
// @Param   from query string false "Created at or after (RFC3339)"
// @Param   to query string false "Created before (RFC3339)"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token for the next page"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list transactions"
// @Security BearerAuth
// @Router /transactions [get]
func (h *transactionHandler) searchTransactions(c *gin.Context) {
	h.list(c, "search", h.transactionService.SearchTransactions)
}

// listSent godoc
// @Summary List transactions sent by the caller
// @Tags transactions
// @Produce  json
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token for the next page"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /transactions/sent [get]
func (h *transactionHandler) listSent(c *gin.Context) {
	h.list(c, "sent", h.transactionService.ListSent)
}

// listReceived godoc
// @Summary List transactions received by the caller
// @Tags transactions
// @Produce  json
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token for the next page"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /transactions/received [get]
func (h *transactionHandler) listReceived(c *gin.Context) {
	h.list(c, "received", h.transactionService.ListReceived)
}

type listFunc func(ctx context.Context, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)

func (h *transactionHandler) list(c *gin.Context, view string, fetch listFunc) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("view", view))

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := fetch(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, logger, err, "Failed to list transactions")
		return
	}

	logger.Info("Transactions listed", slog.Int("count", len(resp.Transactions)))
	c.JSON(http.StatusOK, resp)
}
