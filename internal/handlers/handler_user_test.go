package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SscSPs/async_payments_app/internal/apperrors"
	"github.com/SscSPs/async_payments_app/internal/core/domain"
	portssvc "github.com/SscSPs/async_payments_app/internal/core/ports/services"
	"github.com/SscSPs/async_payments_app/internal/dto"
	"github.com/SscSPs/async_payments_app/internal/handlers"
	"github.com/SscSPs/async_payments_app/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) CreateUser(ctx context.Context, userID string, req dto.CreateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) ValidateKYC(ctx context.Context, userID string, actorID string) (*domain.User, error) {
	args := m.Called(ctx, userID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

var _ portssvc.UserSvcFacade = (*MockUserService)(nil)

type UserHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockService *MockUserService
	secret      string
}

const operatorID = "ops-1"

func (suite *UserHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.secret = "test-secret-key-that-is-long-enough"
	suite.router = gin.New()
	suite.mockService = new(MockUserService)

	v1 := suite.router.Group("/api/v1", middleware.AuthMiddleware(suite.secret))
	admin := v1.Group("", middleware.RequireAdmin([]string{operatorID}))
	handlers.RegisterUserRoutes(v1, admin, suite.mockService)
}

func (suite *UserHandlerTestSuite) do(method, url, userID string, body any) *httptest.ResponseRecorder {
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		suite.Require().NoError(err)
	}
	req, _ := http.NewRequest(method, url, bytes.NewReader(raw))
	token, err := generateTestToken(suite.secret, userID)
	suite.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *UserHandlerTestSuite) TestCreateUser_UsesCaller() {
	req := dto.CreateUserRequest{Name: "Alice", Email: "alice@example.com", Document: "123"}
	suite.mockService.On("CreateUser", mock.Anything, "alice", req).
		Return(&domain.User{UserID: "alice", Name: "Alice", Email: "alice@example.com", Document: "123"}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/users", "alice", req)

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.UserResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("alice", resp.UserID)
	suite.False(resp.KYCValidated)
}

func (suite *UserHandlerTestSuite) TestCreateUser_Duplicate() {
	suite.mockService.On("CreateUser", mock.Anything, "alice", mock.Anything).Return(nil, apperrors.ErrDuplicate).Once()

	w := suite.do(http.MethodPost, "/api/v1/users", "alice", map[string]string{
		"name": "Alice", "email": "alice@example.com", "document": "123",
	})
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *UserHandlerTestSuite) TestCreateUser_InvalidEmail() {
	w := suite.do(http.MethodPost, "/api/v1/users", "alice", map[string]string{
		"name": "Alice", "email": "not-an-email", "document": "123",
	})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockService.AssertNotCalled(suite.T(), "CreateUser", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *UserHandlerTestSuite) TestValidateKYC_Operator() {
	suite.mockService.On("ValidateKYC", mock.Anything, "alice", operatorID).
		Return(&domain.User{UserID: "alice", KYCValidated: true}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/users/alice/kyc", operatorID, nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.UserResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.True(resp.KYCValidated)
}

func (suite *UserHandlerTestSuite) TestValidateKYC_RefusesNonOperator() {
	w := suite.do(http.MethodPost, "/api/v1/users/alice/kyc", "alice", nil)

	suite.Equal(http.StatusForbidden, w.Code)
	suite.mockService.AssertNotCalled(suite.T(), "ValidateKYC", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *UserHandlerTestSuite) TestGetUser_NotFound() {
	suite.mockService.On("GetUserByID", mock.Anything, "ghost").Return(nil, apperrors.ErrNotFound).Once()

	w := suite.do(http.MethodGet, "/api/v1/users/ghost", "alice", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func TestUserHandler(t *testing.T) {
	suite.Run(t, new(UserHandlerTestSuite))
}
