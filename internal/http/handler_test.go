package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/highwaynet/ucc-service/internal/auth"
	"github.com/highwaynet/ucc-service/internal/config"
	"github.com/highwaynet/ucc-service/internal/http/middleware"
	"github.com/highwaynet/ucc-service/internal/model"
	"github.com/highwaynet/ucc-service/internal/repository"
	"github.com/highwaynet/ucc-service/internal/service"
)

type stubPromotionStore struct {
	contracts   map[string]*model.Contract
	updatedCode string
	updatedTo   model.ContractStatus
}

func (s *stubPromotionStore) GetContract(_ context.Context, _ int64) (*model.Contract, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubPromotionStore) GetContractByCode(_ context.Context, code string) (*model.Contract, error) {
	contract, ok := s.contracts[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return contract, nil
}

func (s *stubPromotionStore) StretchIDs(_ context.Context, _ int64) ([]string, error) {
	return nil, nil
}

func (s *stubPromotionStore) PromoteDraft(_ context.Context, _, _ int64) (*repository.PromotionResult, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubPromotionStore) UpdateStatusByCode(_ context.Context, code string, _, to model.ContractStatus, _ int64) error {
	s.updatedCode = code
	s.updatedTo = to
	return nil
}

func (s *stubPromotionStore) ListWorkLocations(_ context.Context, _ int64) ([]repository.WorkLocationDetail, error) {
	return nil, nil
}

func (s *stubPromotionStore) ListNHDetails(_ context.Context, _ int64) ([]model.NHDetail, []repository.NHStateDetailView, error) {
	return nil, nil, nil
}

func (s *stubPromotionStore) PIUOffices(_ context.Context, _ int64) ([]model.Office, error) {
	return nil, nil
}

type stubDocumentStore struct{}

func (stubDocumentStore) ListByContract(_ context.Context, _ int64) ([]model.Document, error) {
	return nil, nil
}

type stubAuditStore struct{}

func (stubAuditStore) Insert(_ context.Context, _ *model.ChangeLog) error { return nil }

const testSecret = "test-secret"

func signToken(t *testing.T, designation string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":     7,
		"designation": designation,
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newApproveRouter(store *stubPromotionStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Alloc: config.AllocConfig{MaxRetries: 3}}
	uccSvc := service.NewUCCService(store, stubDocumentStore{}, stubAuditStore{}, cfg, zerolog.Nop())
	handler := NewHandler(nil, uccSvc, nil, nil, nil, nil, nil, nil, zerolog.Nop())
	authMiddleware := middleware.Auth(auth.NewParser(testSecret))
	return NewRouter(handler, authMiddleware, "test")
}

// The permanent code contains slashes, so it travels in the request body
// rather than a path segment.
func TestApproveReachableWithSlashedCode(t *testing.T) {
	store := &stubPromotionStore{contracts: map[string]*model.Contract{
		"N/0207/ABC001/MH": {ID: 1, Status: model.StatusBalanceForAward},
	}}
	router := newApproveRouter(store)

	body := `{"ucc":"N/0207/ABC001/MH","decision":"AWARDED"}`
	req := httptest.NewRequest(http.MethodPost, "/ucc/approve", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+signToken(t, ""))
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "N/0207/ABC001/MH", store.updatedCode)
	assert.Equal(t, model.StatusAwarded, store.updatedTo)
}

func TestApproveRequiresCodeInBody(t *testing.T) {
	router := newApproveRouter(&stubPromotionStore{})

	req := httptest.NewRequest(http.MethodPost, "/ucc/approve", strings.NewReader(`{"decision":"AWARDED"}`))
	req.Header.Set("Authorization", "Bearer "+signToken(t, ""))
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestApproveReviewerGateOverHTTP(t *testing.T) {
	store := &stubPromotionStore{contracts: map[string]*model.Contract{
		"N/0207/ABC001/MH": {ID: 1, Status: model.StatusBalanceForAward},
	}}
	router := newApproveRouter(store)

	body := `{"ucc":"N/0207/ABC001/MH","decision":"APPROVED"}`
	req := httptest.NewRequest(http.MethodPost, "/ucc/approve", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+signToken(t, ""))
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	req = httptest.NewRequest(http.MethodPost, "/ucc/approve", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+signToken(t, model.DesignationITHead))
	req.Header.Set("Content-Type", "application/json")

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, model.StatusApproved, store.updatedTo)
}
