package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/highwaynet/ucc-service/internal/config"
	"github.com/highwaynet/ucc-service/internal/model"
	"github.com/highwaynet/ucc-service/internal/repository"
)

type fakePromotionStore struct {
	contract      *model.Contract
	byCode        map[string]*model.Contract
	promoteErrs   []error
	promoteCalls  int
	statusUpdates []model.ContractStatus
	statusErr     error
}

func (f *fakePromotionStore) GetContract(_ context.Context, _ int64) (*model.Contract, error) {
	if f.contract == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.contract, nil
}

func (f *fakePromotionStore) GetContractByCode(_ context.Context, code string) (*model.Contract, error) {
	contract, ok := f.byCode[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return contract, nil
}

func (f *fakePromotionStore) StretchIDs(_ context.Context, _ int64) ([]string, error) {
	return []string{"S1"}, nil
}

func (f *fakePromotionStore) PromoteDraft(_ context.Context, _, _ int64) (*repository.PromotionResult, error) {
	f.promoteCalls++
	if len(f.promoteErrs) > 0 {
		err := f.promoteErrs[0]
		f.promoteErrs = f.promoteErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &repository.PromotionResult{
		PermanentCode: "N/0207/ABC001/MH",
		StretchName:   "NH-48 S1",
		PackageCode:   "001",
	}, nil
}

func (f *fakePromotionStore) UpdateStatusByCode(_ context.Context, _ string, _, to model.ContractStatus, _ int64) error {
	if f.statusErr != nil {
		return f.statusErr
	}
	f.statusUpdates = append(f.statusUpdates, to)
	return nil
}

func (f *fakePromotionStore) ListWorkLocations(_ context.Context, _ int64) ([]repository.WorkLocationDetail, error) {
	return nil, nil
}

func (f *fakePromotionStore) ListNHDetails(_ context.Context, _ int64) ([]model.NHDetail, []repository.NHStateDetailView, error) {
	return nil, nil, nil
}

func (f *fakePromotionStore) PIUOffices(_ context.Context, _ int64) ([]model.Office, error) {
	return nil, nil
}

type fakeReviewDocumentStore struct{}

func (fakeReviewDocumentStore) ListByContract(_ context.Context, _ int64) ([]model.Document, error) {
	return nil, nil
}

func newUCCService(store *fakePromotionStore, retries int) *UCCService {
	cfg := &config.Config{Alloc: config.AllocConfig{MaxRetries: retries}}
	return NewUCCService(store, fakeReviewDocumentStore{}, &fakeAuditStore{}, cfg, zerolog.Nop())
}

func TestSubmitFinalUCCSuccess(t *testing.T) {
	store := &fakePromotionStore{contract: &model.Contract{ID: 1, Status: model.StatusDraft}}
	svc := newUCCService(store, 3)

	result, err := svc.SubmitFinalUCC(context.Background(), model.Principal{UserID: 7}, 1)
	require.NoError(t, err)
	assert.Equal(t, "N/0207/ABC001/MH", result.PermanentCode)
	assert.Equal(t, "Status updated successfully", result.Message)
	assert.Equal(t, 1, store.promoteCalls)
}

func TestSubmitFinalUCCRetriesOnCollision(t *testing.T) {
	store := &fakePromotionStore{
		contract:    &model.Contract{ID: 1, Status: model.StatusDraft},
		promoteErrs: []error{gorm.ErrDuplicatedKey, gorm.ErrDuplicatedKey, nil},
	}
	svc := newUCCService(store, 3)

	result, err := svc.SubmitFinalUCC(context.Background(), model.Principal{UserID: 7}, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, store.promoteCalls)
	assert.Equal(t, "N/0207/ABC001/MH", result.PermanentCode)
}

func TestSubmitFinalUCCGivesUpAfterMaxRetries(t *testing.T) {
	store := &fakePromotionStore{
		contract:    &model.Contract{ID: 1, Status: model.StatusDraft},
		promoteErrs: []error{gorm.ErrDuplicatedKey, gorm.ErrDuplicatedKey, gorm.ErrDuplicatedKey},
	}
	svc := newUCCService(store, 3)

	_, err := svc.SubmitFinalUCC(context.Background(), model.Principal{UserID: 7}, 1)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 3, store.promoteCalls)
}

func TestSubmitFinalUCCMapsExhaustedCodes(t *testing.T) {
	store := &fakePromotionStore{
		contract:    &model.Contract{ID: 1, Status: model.StatusDraft},
		promoteErrs: []error{repository.ErrCodesExhausted},
	}
	svc := newUCCService(store, 3)

	_, err := svc.SubmitFinalUCC(context.Background(), model.Principal{UserID: 7}, 1)
	assert.ErrorIs(t, err, ErrCodesExhausted)
	assert.Equal(t, 1, store.promoteCalls)
}

func TestSubmitFinalUCCRejectsNonDraft(t *testing.T) {
	store := &fakePromotionStore{contract: &model.Contract{ID: 1, Status: model.StatusBalanceForAward}}
	svc := newUCCService(store, 3)

	_, err := svc.SubmitFinalUCC(context.Background(), model.Principal{UserID: 7}, 1)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 0, store.promoteCalls)
}

func TestSubmitFinalUCCMapsStaleStatus(t *testing.T) {
	store := &fakePromotionStore{
		contract:    &model.Contract{ID: 1, Status: model.StatusDraft},
		promoteErrs: []error{repository.ErrStaleStatus},
	}
	svc := newUCCService(store, 3)

	_, err := svc.SubmitFinalUCC(context.Background(), model.Principal{UserID: 7}, 1)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestApproveRequiresReviewerForApproved(t *testing.T) {
	store := &fakePromotionStore{byCode: map[string]*model.Contract{
		"N/0207/ABC001/MH": {ID: 1, Status: model.StatusBalanceForAward},
	}}
	svc := newUCCService(store, 3)

	err := svc.Approve(context.Background(), model.Principal{UserID: 7}, "N/0207/ABC001/MH", "APPROVED")
	assert.ErrorIs(t, err, ErrPermissionDenied)

	reviewer := model.Principal{UserID: 8, Designation: model.DesignationITHead}
	err = svc.Approve(context.Background(), reviewer, "N/0207/ABC001/MH", "APPROVED")
	require.NoError(t, err)
	assert.Equal(t, []model.ContractStatus{model.StatusApproved}, store.statusUpdates)
}

func TestApproveAwardedWithoutReviewer(t *testing.T) {
	store := &fakePromotionStore{byCode: map[string]*model.Contract{
		"N/0207/ABC001/MH": {ID: 1, Status: model.StatusBalanceForAward},
	}}
	svc := newUCCService(store, 3)

	err := svc.Approve(context.Background(), model.Principal{UserID: 7}, "N/0207/ABC001/MH", "AWARDED")
	require.NoError(t, err)
	assert.Equal(t, []model.ContractStatus{model.StatusAwarded}, store.statusUpdates)
}

func TestApproveRejectsUnknownDecision(t *testing.T) {
	svc := newUCCService(&fakePromotionStore{}, 3)

	err := svc.Approve(context.Background(), model.Principal{UserID: 7}, "N/0207/ABC001/MH", "CANCELLED")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestApproveRejectsTerminalContract(t *testing.T) {
	store := &fakePromotionStore{byCode: map[string]*model.Contract{
		"N/0207/ABC001/MH": {ID: 1, Status: model.StatusApproved},
	}}
	svc := newUCCService(store, 3)

	reviewer := model.Principal{UserID: 8, Designation: model.DesignationITHead}
	err := svc.Approve(context.Background(), reviewer, "N/0207/ABC001/MH", "REJECTED")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestApproveMapsStaleStatusRace(t *testing.T) {
	store := &fakePromotionStore{
		byCode: map[string]*model.Contract{
			"N/0207/ABC001/MH": {ID: 1, Status: model.StatusBalanceForAward},
		},
		statusErr: repository.ErrStaleStatus,
	}
	svc := newUCCService(store, 3)

	err := svc.Approve(context.Background(), model.Principal{UserID: 7}, "N/0207/ABC001/MH", "AWARDED")
	assert.ErrorIs(t, err, ErrConflict)
}
