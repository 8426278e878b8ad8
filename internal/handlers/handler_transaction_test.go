package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/async_payments_app/internal/apperrors"
	"github.com/SscSPs/async_payments_app/internal/core/domain"
	portssvc "github.com/SscSPs/async_payments_app/internal/core/ports/services"
	"github.com/SscSPs/async_payments_app/internal/dto"
	"github.com/SscSPs/async_payments_app/internal/handlers"
	"github.com/SscSPs/async_payments_app/internal/middleware"
	"github.com/SscSPs/async_payments_app/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock TransactionService ---
type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) Execute(ctx context.Context, req domain.TransferRequest) (*domain.Transaction, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionService) ExecuteOperation(ctx context.Context, op domain.OperationRequest) (*domain.Transaction, error) {
	args := m.Called(ctx, op)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionService) Reverse(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionService) GetTransaction(ctx context.Context, transactionID string, requestingUserID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionService) GetStatus(ctx context.Context, transactionID string) (*dto.TransactionStatusResponse, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TransactionStatusResponse), args.Error(1)
}

func (m *MockTransactionService) ListSent(ctx context.Context, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListTransactionsResponse), args.Error(1)
}

func (m *MockTransactionService) ListReceived(ctx context.Context, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListTransactionsResponse), args.Error(1)
}

func (m *MockTransactionService) SearchTransactions(ctx context.Context, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListTransactionsResponse), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.TransactionSvcFacade = (*MockTransactionService)(nil)

// --- Test Suite ---
type TransactionHandlerTestSuite struct {
	suite.Suite
	router                 *gin.Engine
	mockTransactionService *MockTransactionService
	jwtSecret              string
}

// generateTestToken creates a short-lived JWT for testing.
func generateTestToken(secret, userID string) (string, error) {
	return utils.GenerateJWT(userID, secret, time.Hour)
}

func (suite *TransactionHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	handlers.RegisterValidators()
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	// Use the actual AuthMiddleware
	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockTransactionService = new(MockTransactionService)

	v1 := suite.router.Group("/api/v1")
	handlers.RegisterTransactionRoutes(v1, suite.mockTransactionService)
}

func (suite *TransactionHandlerTestSuite) do(method, url, userID string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, url, reader)
	token, err := generateTestToken(suite.jwtSecret, userID)
	suite.Require().NoError(err, "Failed to sign test token")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func sampleTransaction(origin, dest string, status domain.TransactionStatus) *domain.Transaction {
	now := time.Now().UTC()
	return &domain.Transaction{
		TransactionID: uuid.NewString(),
		OriginUserID:  origin,
		DestUserID:    dest,
		Amount:        decimal.NewFromInt(50),
		OperationKind: domain.OperationAsyncTransfer,
		Channel:       domain.ChannelNFC,
		Gateway:       domain.GatewayInternal,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// --- Test Cases ---

func (suite *TransactionHandlerTestSuite) TestCreateTransaction_Success() {
	origin, dest := uuid.NewString(), uuid.NewString()
	expected := sampleTransaction(origin, dest, domain.StatusPending)

	suite.mockTransactionService.On("Execute",
		mock.Anything,
		mock.MatchedBy(func(r domain.TransferRequest) bool {
			return r.OriginUserID == origin && r.DestUserID == dest &&
				r.Channel == domain.ChannelNFC && r.Amount.Equal(decimal.NewFromInt(50))
		}),
	).Return(expected, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/transactions", origin, map[string]any{
		"destUserID": dest,
		"amount":     "50",
		"channel":    "NFC",
	})

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.TransactionResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(expected.TransactionID, resp.TransactionID)
	suite.Equal(domain.StatusPending, resp.Status)
	suite.mockTransactionService.AssertExpectations(suite.T())
}

func (suite *TransactionHandlerTestSuite) TestCreateTransaction_InvalidBody() {
	origin := uuid.NewString()

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing destination", map[string]any{"amount": "10", "channel": "NFC"}},
		{"zero amount", map[string]any{"destUserID": "bob", "amount": "0", "channel": "NFC"}},
		{"negative amount", map[string]any{"destUserID": "bob", "amount": "-5", "channel": "NFC"}},
		{"unknown channel", map[string]any{"destUserID": "bob", "amount": "10", "channel": "CARRIER_PIGEON"}},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			w := suite.do(http.MethodPost, "/api/v1/transactions", origin, tt.body)
			suite.Equal(http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
	suite.mockTransactionService.AssertNotCalled(suite.T(), "Execute", mock.Anything, mock.Anything)
}

func (suite *TransactionHandlerTestSuite) TestCreateTransaction_SubCentAmount() {
	origin := uuid.NewString()

	for _, amount := range []string{"0.005", "0.001", "10.125"} {
		suite.Run(amount, func() {
			w := suite.do(http.MethodPost, "/api/v1/transactions", origin, map[string]any{
				"destUserID": "bob", "amount": amount, "channel": "INTERNET",
			})
			suite.Equal(http.StatusBadRequest, w.Code, w.Body.String())
			suite.Contains(w.Body.String(), "decimal places")
		})
	}
	suite.mockTransactionService.AssertNotCalled(suite.T(), "Execute", mock.Anything, mock.Anything)
}

func (suite *TransactionHandlerTestSuite) TestCreateTransaction_BusinessErrors() {
	origin := uuid.NewString()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"limit exceeded", fmt.Errorf("%w: 600 above 500", apperrors.ErrLimitExceeded), http.StatusUnprocessableEntity},
		{"kyc required", apperrors.ErrKycRequired, http.StatusUnprocessableEntity},
		{"insufficient funds", apperrors.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{"blocked", apperrors.ErrLedgerBlocked, http.StatusUnprocessableEntity},
		{"daily limit", apperrors.ErrDailyLimitExceeded, http.StatusUnprocessableEntity},
		{"account not found", apperrors.ErrAccountNotFound, http.StatusNotFound},
		{"invalid routing", apperrors.ErrInvalidArgument, http.StatusBadRequest},
		{"store fault", apperrors.NewAppError(500, "failed to begin transaction", fmt.Errorf("conn refused")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.mockTransactionService.On("Execute", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			w := suite.do(http.MethodPost, "/api/v1/transactions", origin, map[string]any{
				"destUserID": "bob", "amount": "600", "channel": "SMS",
			})
			suite.Equal(tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus == http.StatusInternalServerError {
				suite.Contains(w.Body.String(), "Failed to execute transfer")
				suite.NotContains(w.Body.String(), "conn refused")
			}
		})
	}
}

func (suite *TransactionHandlerTestSuite) TestGetStatus() {
	userID := uuid.NewString()
	txID := uuid.NewString()
	suite.mockTransactionService.On("GetStatus", mock.Anything, txID).
		Return(&dto.TransactionStatusResponse{TransactionID: txID, Status: domain.StatusSettled, Source: "cache"}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/transactions/"+txID+"/status", userID, nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.TransactionStatusResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(domain.StatusSettled, resp.Status)
	suite.Equal("cache", resp.Source)
}

func (suite *TransactionHandlerTestSuite) TestReverse() {
	origin := uuid.NewString()
	pending := sampleTransaction(origin, "bob", domain.StatusPending)
	reversed := *pending
	reversed.Status = domain.StatusRollback

	suite.mockTransactionService.On("GetTransaction", mock.Anything, pending.TransactionID, origin).Return(pending, nil).Once()
	suite.mockTransactionService.On("Reverse", mock.Anything, pending.TransactionID).Return(&reversed, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/transactions/"+pending.TransactionID+"/reverse", origin, nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.TransactionResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(domain.StatusRollback, resp.Status)
	suite.mockTransactionService.AssertExpectations(suite.T())
}

func (suite *TransactionHandlerTestSuite) TestReverse_AlreadySettled() {
	origin := uuid.NewString()
	settled := sampleTransaction(origin, "bob", domain.StatusSettled)

	suite.mockTransactionService.On("GetTransaction", mock.Anything, settled.TransactionID, origin).Return(settled, nil).Once()
	suite.mockTransactionService.On("Reverse", mock.Anything, settled.TransactionID).
		Return(nil, fmt.Errorf("%w: transaction is SETTLED", apperrors.ErrAlreadyProcessed)).Once()

	w := suite.do(http.MethodPost, "/api/v1/transactions/"+settled.TransactionID+"/reverse", origin, nil)
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *TransactionHandlerTestSuite) TestReverse_NotAParty() {
	stranger := uuid.NewString()
	txID := uuid.NewString()
	suite.mockTransactionService.On("GetTransaction", mock.Anything, txID, stranger).
		Return(nil, fmt.Errorf("transaction %s: %w", txID, apperrors.ErrNotFound)).Once()

	w := suite.do(http.MethodPost, "/api/v1/transactions/"+txID+"/reverse", stranger, nil)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockTransactionService.AssertNotCalled(suite.T(), "Reverse", mock.Anything, mock.Anything)
}

func (suite *TransactionHandlerTestSuite) TestListSent_PassesParams() {
	userID := uuid.NewString()
	limit := 10
	expected := &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses([]domain.Transaction{*sampleTransaction(userID, "bob", domain.StatusSettled)}),
	}

	suite.mockTransactionService.On("ListSent",
		mock.AnythingOfType("*context.valueCtx"), // Context carries values from middleware
		userID,
		mock.MatchedBy(func(p dto.ListTransactionsParams) bool {
			return p.Limit == limit && p.Status == domain.StatusSettled
		}),
	).Return(expected, nil).Once()

	url := fmt.Sprintf("/api/v1/transactions/sent?limit=%d&status=SETTLED", limit)
	w := suite.do(http.MethodGet, url, userID, nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.ListTransactionsResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Transactions, 1)
	suite.mockTransactionService.AssertExpectations(suite.T())
	suite.mockTransactionService.AssertNotCalled(suite.T(), "SearchTransactions", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionHandlerTestSuite) TestSearch_InvalidStatus() {
	w := suite.do(http.MethodGet, "/api/v1/transactions?status=DONE", uuid.NewString(), nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *TransactionHandlerTestSuite) TestUnauthorized() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

// --- Run Test Suite ---
func TestTransactionHandler(t *testing.T) {
	suite.Run(t, new(TransactionHandlerTestSuite))
}
