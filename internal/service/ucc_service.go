package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/highwaynet/ucc-service/internal/config"
	"github.com/highwaynet/ucc-service/internal/model"
	"github.com/highwaynet/ucc-service/internal/repository"
)

// PromotionStore is the contract repository surface the promotion and
// approval flows use.
type PromotionStore interface {
	GetContract(ctx context.Context, id int64) (*model.Contract, error)
	GetContractByCode(ctx context.Context, code string) (*model.Contract, error)
	StretchIDs(ctx context.Context, contractID int64) ([]string, error)
	PromoteDraft(ctx context.Context, draftID, userID int64) (*repository.PromotionResult, error)
	UpdateStatusByCode(ctx context.Context, code string, from, to model.ContractStatus, userID int64) error
	ListWorkLocations(ctx context.Context, contractID int64) ([]repository.WorkLocationDetail, error)
	ListNHDetails(ctx context.Context, contractID int64) ([]model.NHDetail, []repository.NHStateDetailView, error)
	PIUOffices(ctx context.Context, contractID int64) ([]model.Office, error)
}

type ReviewDocumentStore interface {
	ListByContract(ctx context.Context, contractID int64) ([]model.Document, error)
}

type UCCService struct {
	contracts  PromotionStore
	documents  ReviewDocumentStore
	audit      AuditStore
	maxRetries int
	log        zerolog.Logger
}

func NewUCCService(contracts PromotionStore, documents ReviewDocumentStore, audit AuditStore, cfg *config.Config, log zerolog.Logger) *UCCService {
	retries := cfg.Alloc.MaxRetries
	if retries < 1 {
		retries = 1
	}
	return &UCCService{
		contracts:  contracts,
		documents:  documents,
		audit:      audit,
		maxRetries: retries,
		log:        log,
	}
}

type SubmitResult struct {
	PermanentCode string `json:"permanentUcc"`
	StretchName   string `json:"stretchName"`
	Message       string `json:"message"`
}

// SubmitFinalUCC promotes a draft to BALANCE_FOR_AWARD with a freshly
// allocated permanent code. A concurrent submission for the same stretch
// loses the package-code insert with a duplicate-key error; the loop
// re-runs the whole promotion so the retry reads a fresh high-water mark.
func (s *UCCService) SubmitFinalUCC(ctx context.Context, principal model.Principal, draftID int64) (*SubmitResult, error) {
	contract, err := s.contracts.GetContract(ctx, draftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: draft %d", ErrNotFound, draftID)
		}
		return nil, err
	}
	if contract.Status != model.StatusDraft {
		return nil, fmt.Errorf("%w: contract %d already has status %s", ErrConflict, draftID, contract.Status)
	}

	var result *repository.PromotionResult
	for attempt := 1; ; attempt++ {
		result, err = s.contracts.PromoteDraft(ctx, draftID, principal.UserID)
		if err == nil {
			break
		}
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			if attempt >= s.maxRetries {
				s.log.Warn().Int64("draft_id", draftID).Int("attempts", attempt).
					Msg("package code allocation kept colliding")
				return nil, fmt.Errorf("%w: package code allocation contention", ErrConflict)
			}
			s.log.Debug().Int64("draft_id", draftID).Int("attempt", attempt).
				Msg("package code collision, retrying promotion")
			continue
		case errors.Is(err, repository.ErrCodesExhausted):
			return nil, fmt.Errorf("%w: stretch has no free package codes", ErrCodesExhausted)
		case errors.Is(err, repository.ErrStaleStatus):
			return nil, fmt.Errorf("%w: draft %d was promoted concurrently", ErrConflict, draftID)
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("%w: draft %d has no stretches", ErrNotFound, draftID)
		default:
			return nil, err
		}
	}

	s.writeAudit(ctx, principal, result.PermanentCode, "status", string(model.StatusBalanceForAward))
	s.log.Info().Int64("draft_id", draftID).Str("permanent_ucc", result.PermanentCode).
		Str("package_code", result.PackageCode).Msg("draft promoted")

	return &SubmitResult{
		PermanentCode: result.PermanentCode,
		StretchName:   result.StretchName,
		Message:       "Status updated successfully",
	}, nil
}

// approvalTargets maps the accepted decision verbs to terminal statuses.
// APPROVED and REJECTED require the reviewer designation.
var approvalTargets = map[string]struct {
	status       model.ContractStatus
	reviewerOnly bool
}{
	"AWARDED":  {model.StatusAwarded, false},
	"APPROVED": {model.StatusApproved, true},
	"REJECTED": {model.StatusRejected, true},
}

// Approve moves a BALANCE_FOR_AWARD contract to a terminal status.
func (s *UCCService) Approve(ctx context.Context, principal model.Principal, code, decision string) error {
	target, ok := approvalTargets[decision]
	if !ok {
		return fmt.Errorf("%w: unknown decision %q", ErrInvalidInput, decision)
	}
	if target.reviewerOnly && !principal.IsReviewer() {
		return fmt.Errorf("%w: decision %s requires the %s designation", ErrPermissionDenied, decision, model.DesignationITHead)
	}

	contract, err := s.contracts.GetContractByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: contract %s", ErrNotFound, code)
		}
		return err
	}
	if contract.Status != model.StatusBalanceForAward {
		return fmt.Errorf("%w: contract %s has status %s", ErrConflict, code, contract.Status)
	}

	err = s.contracts.UpdateStatusByCode(ctx, code, model.StatusBalanceForAward, target.status, principal.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return fmt.Errorf("%w: contract %s changed status concurrently", ErrConflict, code)
		}
		return err
	}

	s.writeAudit(ctx, principal, code, "status", string(target.status))
	return nil
}

type ReviewWorkLocation struct {
	ID         int64           `json:"id"`
	NameOfWork string          `json:"nameOfWork"`
	IssueKind  model.IssueKind `json:"issueNature"`
	StartKm    int             `json:"startKm"`
	StartMetre int             `json:"startMetre"`
	StartLat   float64         `json:"startLat"`
	StartLong  float64         `json:"startLong"`
	EndKm      *int            `json:"endKm,omitempty"`
	EndMetre   *int            `json:"endMetre,omitempty"`
	EndLat     *float64        `json:"endLat,omitempty"`
	EndLong    *float64        `json:"endLong,omitempty"`
	Lane       int             `json:"lane"`
}

type ReviewNHState struct {
	StateID       int64   `json:"stateId"`
	StateName     string  `json:"stateName"`
	DistrictIDs   string  `json:"districtIds"`
	StateDistance float64 `json:"stateDistance"`
}

// Review is everything the pre-submission summary page shows.
type Review struct {
	ContractID     int64                `json:"uccId"`
	PermanentCode  *string              `json:"permanentUcc,omitempty"`
	ContractName   string               `json:"contractName"`
	ShortName      string               `json:"shortName"`
	Status         model.ContractStatus `json:"status"`
	ContractLength float64              `json:"contractLength"`
	StretchIDs     []string             `json:"stretchIds"`
	PIU            []model.Office       `json:"piu"`
	WorkLocations  []ReviewWorkLocation `json:"workLocations"`
	NHDetails      []model.NHDetail     `json:"nhDetails"`
	NHStates       []ReviewNHState      `json:"nhStateDetails"`
	Documents      []model.Document     `json:"documents"`
}

// GetReview assembles the full draft summary in one response.
func (s *UCCService) GetReview(ctx context.Context, contractID int64) (*Review, error) {
	contract, err := s.contracts.GetContract(ctx, contractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: contract %d", ErrNotFound, contractID)
		}
		return nil, err
	}

	stretchIDs, err := s.contracts.StretchIDs(ctx, contractID)
	if err != nil {
		return nil, err
	}
	pius, err := s.contracts.PIUOffices(ctx, contractID)
	if err != nil {
		return nil, err
	}
	workRows, err := s.contracts.ListWorkLocations(ctx, contractID)
	if err != nil {
		return nil, err
	}
	nhDetails, nhStates, err := s.contracts.ListNHDetails(ctx, contractID)
	if err != nil {
		return nil, err
	}
	docs, err := s.documents.ListByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	review := &Review{
		ContractID:     contract.ID,
		PermanentCode:  contract.PermanentCode,
		ContractName:   contract.ContractName,
		ShortName:      contract.ShortName,
		Status:         contract.Status,
		ContractLength: contract.ContractLength,
		StretchIDs:     stretchIDs,
		PIU:            pius,
		NHDetails:      nhDetails,
		Documents:      docs,
	}
	for _, row := range workRows {
		review.WorkLocations = append(review.WorkLocations, ReviewWorkLocation{
			ID:         row.ID,
			NameOfWork: row.NameOfWork,
			IssueKind:  row.IssueKind,
			StartKm:    row.StartKm,
			StartMetre: row.StartMetre,
			StartLat:   row.StartLat,
			StartLong:  row.StartLong,
			EndKm:      row.EndKm,
			EndMetre:   row.EndMetre,
			EndLat:     row.EndLat,
			EndLong:    row.EndLong,
			Lane:       row.Lane,
		})
	}
	for _, state := range nhStates {
		review.NHStates = append(review.NHStates, ReviewNHState{
			StateID:       state.StateID,
			StateName:     state.StateName,
			DistrictIDs:   state.DistrictIDs,
			StateDistance: state.StateDistance,
		})
	}
	return review, nil
}

func (s *UCCService) writeAudit(ctx context.Context, principal model.Principal, contractCode, field, value string) {
	err := s.audit.Insert(ctx, &model.ChangeLog{
		ContractID:    contractCode,
		FeatureModule: featureModuleUCC,
		ChangedField:  field,
		NewValue:      value,
		ChangedBy:     principal.UserID,
	})
	if err != nil {
		s.log.Error().Err(err).Str("contract", contractCode).Str("field", field).Msg("change log write failed")
	}
}
