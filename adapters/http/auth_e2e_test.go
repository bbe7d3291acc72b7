package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/talent-match/adapters/persistence"
	authUC "github.com/khoahotran/talent-match/internal/application/usecase/auth"
	employerUC "github.com/khoahotran/talent-match/internal/application/usecase/employer"
	"github.com/khoahotran/talent-match/internal/config"
	"github.com/khoahotran/talent-match/migrations"
	"github.com/khoahotran/talent-match/pkg/auth"
	"github.com/khoahotran/talent-match/pkg/logger"
)

type AuthE2ETestSuite struct {
	suite.Suite
	Router   *gin.Engine
	email    string
	password string
}

func (s *AuthE2ETestSuite) SetupSuite() {
	cfg, err := config.LoadConfig("../..")
	if err != nil {
		s.T().Fatalf("Failed to load config for E2E test: %v", err)
	}
	if err := migrations.Up(cfg.DB.DSN); err != nil {
		s.T().Fatalf("E2E test failed to migrate: %v", err)
	}

	appLogger := logger.NewZapLogger("development")
	dbPool, err := persistence.NewPostgresPool(context.Background(), cfg, appLogger)
	if err != nil {
		s.T().Fatalf("E2E test failed to connect postgres: %v", err)
	}
	s.T().Cleanup(dbPool.Close)

	userRepo := persistence.NewPostgresUserRepo(dbPool)
	employerRepo := persistence.NewPostgresEmployerRepo(dbPool)
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)

	authHandler := NewAuthHandler(
		authUC.NewLoginUseCase(userRepo, jwtSvc, appLogger),
		nil,
		authUC.NewSignupEmployerUseCase(userRepo, employerRepo, jwtSvc, appLogger),
		appLogger,
	)
	employerHandler := NewEmployerHandler(employerUC.NewEmployerUseCase(employerRepo, nil, appLogger), nil, nil, nil)

	gin.SetMode(gin.TestMode)
	s.Router = NewRouter(Handlers{
		Auth:        authHandler,
		Talent:      &TalentHandler{},
		Feed:        &FeedHandler{},
		Opportunity: &OpportunityHandler{},
		Employer:    employerHandler,
		Booking:     &BookingHandler{},
	}, jwtSvc, appLogger)

	s.email = "e2e_" + uuid.NewString()[:8] + "@example.com"
	s.password = "e2e_test_password_123"
}

func TestAuthE2E(t *testing.T) {
	if os.Getenv("E2E_TESTS") == "" {
		t.Skip("Skipping E2E tests. Set E2E_TESTS=1 to run.")
	}
	suite.Run(t, new(AuthE2ETestSuite))
}

func (s *AuthE2ETestSuite) postJSON(path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(raw))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)
	return rr
}

func (s *AuthE2ETestSuite) get(path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)
	return rr
}

func (s *AuthE2ETestSuite) Test_Signup_Login_Flow() {
	rr := s.postJSON("/api/auth/signup/employer", gin.H{
		"email": s.email, "password": s.password, "company_name": "E2E Corp",
	})
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())

	rr = s.postJSON("/api/auth/signup/employer", gin.H{
		"email": s.email, "password": s.password, "company_name": "E2E Corp",
	})
	assert.Equal(s.T(), http.StatusConflict, rr.Code)

	rr = s.postJSON("/api/auth/login", gin.H{"email": s.email, "password": "wrongpassword"})
	assert.Equal(s.T(), http.StatusUnauthorized, rr.Code)

	rr = s.postJSON("/api/auth/login", gin.H{"email": s.email, "password": s.password})
	s.Require().Equal(http.StatusOK, rr.Code)

	var token TokenDTO
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &token))
	assert.NotEmpty(s.T(), token.AccessToken)
	assert.Equal(s.T(), string(auth.RoleEmployer), token.Role)

	assert.Equal(s.T(), http.StatusOK, s.get("/api/employer/profile", token.AccessToken).Code)
	assert.Equal(s.T(), http.StatusForbidden, s.get("/api/talent/profile", token.AccessToken).Code)
	assert.Equal(s.T(), http.StatusUnauthorized, s.get("/api/employer/profile", "").Code)
}
