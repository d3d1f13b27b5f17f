package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/highwaynet/ucc-service/internal/config"
	"github.com/highwaynet/ucc-service/internal/model"
	"github.com/highwaynet/ucc-service/internal/repository"
)

// DraftStore is the slice of the contract repository the draft manager uses.
type DraftStore interface {
	CreateDraft(ctx context.Context, stretchIDs []string, userID int64) (int64, error)
	GetContract(ctx context.Context, id int64) (*model.Contract, error)
	StretchIDs(ctx context.Context, contractID int64) ([]string, error)
	InsertWorkLocations(ctx context.Context, contractID int64, rows []model.WorkLocation, contractName string, contractLength float64, userID int64) error
	GetWorkLocation(ctx context.Context, id int64) (*model.WorkLocation, error)
	UpdateWorkLocation(ctx context.Context, row *model.WorkLocation, userID int64) error
	UpdateContractDetails(ctx context.Context, update repository.ContractDetailsUpdate, userID int64) error
	SaveNHDetails(ctx context.Context, contractID int64, details []model.NHDetail, stateDetails []model.NHStateDetail, userID int64) error
}

// ReferenceStore resolves read-only reference data for draft operations.
type ReferenceStore interface {
	ByIDs(ctx context.Context, stretchIDs []string) ([]model.Stretch, error)
	WorkTypeByName(ctx context.Context, name string) (*model.WorkType, error)
	UserOffices(ctx context.Context, userID int64) ([]model.Office, []model.Office, error)
	StateByName(ctx context.Context, name string) (*model.State, error)
}

// AuditStore appends change-log entries after tracked mutations.
type AuditStore interface {
	Insert(ctx context.Context, entry *model.ChangeLog) error
}

type DraftService struct {
	contracts DraftStore
	refs      ReferenceStore
	audit     AuditStore
	allowed   map[string]struct{}
	log       zerolog.Logger
}

func NewDraftService(contracts DraftStore, refs ReferenceStore, audit AuditStore, cfg *config.Config, log zerolog.Logger) *DraftService {
	allowed := make(map[string]struct{}, len(cfg.UCC.AllowedWorkTypes))
	for _, name := range cfg.UCC.AllowedWorkTypes {
		allowed[name] = struct{}{}
	}
	return &DraftService{
		contracts: contracts,
		refs:      refs,
		audit:     audit,
		allowed:   allowed,
		log:       log,
	}
}

const featureModuleUCC = "UCC"

// CreateDraft persists a Draft contract referencing the given stretches.
func (s *DraftService) CreateDraft(ctx context.Context, principal model.Principal, stretchIDs []string) (int64, error) {
	if len(stretchIDs) == 0 {
		return 0, fmt.Errorf("%w: stretch set must not be empty", ErrInvalidInput)
	}
	draftID, err := s.contracts.CreateDraft(ctx, stretchIDs, principal.UserID)
	if err != nil {
		return 0, err
	}
	s.writeAudit(ctx, principal, fmt.Sprintf("%d", draftID), "status", string(model.StatusDraft))
	return draftID, nil
}

type SegmentInput struct {
	StartChainage model.Chainage `json:"startChainage"`
	EndChainage   model.Chainage `json:"endChainage"`
	EndLane       int            `json:"endLane"`
}

type BlackSpotInput struct {
	Chainage model.Chainage `json:"chainage"`
	EndLane  int            `json:"endLane"`
}

type WorkEntryInput struct {
	WorkType   string           `json:"workType"`
	Segments   []SegmentInput   `json:"segment"`
	BlackSpots []BlackSpotInput `json:"blackSpot"`
}

type AddWorkLocationsInput struct {
	DraftID    int64
	StretchIDs []string
	Entries    []WorkEntryInput
}

type AddWorkLocationsResult struct {
	DraftID        int64          `json:"draftUccId"`
	GeneratedName  string         `json:"generatedName"`
	ContractLength string         `json:"contractLength"`
	PIU            []model.Office `json:"piu"`
	RO             []model.Office `json:"ro"`
	State          *model.State   `json:"state,omitempty"`
}

// AddWorkLocations validates and persists work entries against a draft,
// creating the draft first when no draft id is supplied. The generated
// display name and accumulated contract length are derived here.
func (s *DraftService) AddWorkLocations(ctx context.Context, principal model.Principal, input AddWorkLocationsInput) (*AddWorkLocationsResult, error) {
	if len(input.Entries) == 0 {
		return nil, fmt.Errorf("%w: typeOfWorks must not be empty", ErrInvalidInput)
	}

	draftID := input.DraftID
	var stretchIDs []string
	if draftID == 0 {
		if len(input.StretchIDs) == 0 {
			return nil, fmt.Errorf("%w: stretch set must not be empty", ErrInvalidInput)
		}
		created, err := s.contracts.CreateDraft(ctx, input.StretchIDs, principal.UserID)
		if err != nil {
			return nil, err
		}
		draftID = created
		stretchIDs = input.StretchIDs
	} else {
		contract, err := s.contracts.GetContract(ctx, draftID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: draft %d", ErrNotFound, draftID)
			}
			return nil, err
		}
		if contract.Status != model.StatusDraft {
			return nil, fmt.Errorf("%w: contract %d is no longer a draft", ErrConflict, draftID)
		}
		stretchIDs, err = s.contracts.StretchIDs(ctx, draftID)
		if err != nil {
			return nil, err
		}
	}

	stretches, err := s.refs.ByIDs(ctx, stretchIDs)
	if err != nil {
		return nil, err
	}
	projectNames := make([]string, 0, len(stretches))
	for _, stretch := range stretches {
		projectNames = append(projectNames, stretch.ProjectName)
	}
	projects := strings.Join(projectNames, ",")

	var rows []model.WorkLocation
	var fragments []string
	totalLength := 0.0

	for _, entry := range input.Entries {
		if _, ok := s.allowed[entry.WorkType]; !ok {
			return nil, fmt.Errorf("%w: invalid workType %q", ErrInvalidInput, entry.WorkType)
		}
		workType, err := s.refs.WorkTypeByName(ctx, entry.WorkType)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: work type %q", ErrNotFound, entry.WorkType)
			}
			return nil, err
		}

		for _, segment := range entry.Segments {
			fragments = append(fragments, fmt.Sprintf(
				"%s on %s from %d + %d to %d + %d",
				workType.NameOfWork, projects,
				segment.StartChainage.Kilometer, segment.StartChainage.Meter,
				segment.EndChainage.Kilometer, segment.EndChainage.Meter,
			))
			totalLength += segmentLength(segment.StartChainage, segment.EndChainage)
			rows = append(rows, segmentRow(segment, workType.ID))
		}
		for _, spot := range entry.BlackSpots {
			fragments = append(fragments, fmt.Sprintf(
				"%s on %s from %d + %d",
				workType.NameOfWork, projects,
				spot.Chainage.Kilometer, spot.Chainage.Meter,
			))
			rows = append(rows, blackSpotRow(spot, workType.ID))
		}
	}

	generatedName := strings.Join(fragments, " and ")

	if err := s.contracts.InsertWorkLocations(ctx, draftID, rows, generatedName, totalLength, principal.UserID); err != nil {
		return nil, err
	}
	s.writeAudit(ctx, principal, fmt.Sprintf("%d", draftID), "work_locations", generatedName)

	result := &AddWorkLocationsResult{
		DraftID:        draftID,
		GeneratedName:  generatedName,
		ContractLength: fmt.Sprintf("%.2f Km", totalLength),
	}

	pius, ros, err := s.refs.UserOffices(ctx, principal.UserID)
	if err == nil {
		result.PIU = trimOfficePrefix(pius, "PIU ")
		result.RO = trimOfficePrefix(ros, "RO ")
		if len(result.RO) > 0 {
			if state, err := s.refs.StateByName(ctx, result.RO[0].Name); err == nil {
				result.State = state
			}
		}
	}

	return result, nil
}

// segmentLength converts a chainage pair to kilometres:
// (endKm - startKm) + (endMetre - startMetre)/1000.
func segmentLength(start, end model.Chainage) float64 {
	return float64(end.Kilometer-start.Kilometer) + float64(end.Meter-start.Meter)/1000
}

func segmentRow(segment SegmentInput, workTypeID int64) model.WorkLocation {
	endKm := segment.EndChainage.Kilometer
	endMetre := segment.EndChainage.Meter
	endLat := segment.EndChainage.Lat
	endLong := segment.EndChainage.Long
	return model.WorkLocation{
		WorkTypeID: workTypeID,
		IssueKind:  model.IssueSegment,
		StartKm:    segment.StartChainage.Kilometer,
		StartMetre: segment.StartChainage.Meter,
		StartLat:   segment.StartChainage.Lat,
		StartLong:  segment.StartChainage.Long,
		EndKm:      &endKm,
		EndMetre:   &endMetre,
		EndLat:     &endLat,
		EndLong:    &endLong,
		Lane:       segment.EndLane,
		Status:     model.StatusDraft,
	}
}

func blackSpotRow(spot BlackSpotInput, workTypeID int64) model.WorkLocation {
	return model.WorkLocation{
		WorkTypeID: workTypeID,
		IssueKind:  model.IssueBlackSpot,
		StartKm:    spot.Chainage.Kilometer,
		StartMetre: spot.Chainage.Meter,
		StartLat:   spot.Chainage.Lat,
		StartLong:  spot.Chainage.Long,
		Lane:       spot.EndLane,
		Status:     model.StatusDraft,
	}
}

func trimOfficePrefix(offices []model.Office, prefix string) []model.Office {
	trimmed := make([]model.Office, len(offices))
	for i, office := range offices {
		office.Name = strings.TrimPrefix(office.Name, prefix)
		trimmed[i] = office
	}
	return trimmed
}

type UpdateWorkLocationInput struct {
	WorkType  string
	Segment   *SegmentInput
	BlackSpot *BlackSpotInput
}

// UpdateWorkLocation rewrites a work entry while the owning contract is
// still a draft.
func (s *DraftService) UpdateWorkLocation(ctx context.Context, principal model.Principal, id int64, input UpdateWorkLocationInput) error {
	row, err := s.contracts.GetWorkLocation(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: work location %d", ErrNotFound, id)
		}
		return err
	}

	contract, err := s.contracts.GetContract(ctx, row.ContractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: contract %d", ErrNotFound, row.ContractID)
		}
		return err
	}
	if contract.Status != model.StatusDraft {
		return fmt.Errorf("%w: contract %d has already been promoted", ErrConflict, contract.ID)
	}

	if input.WorkType != "" {
		if _, ok := s.allowed[input.WorkType]; !ok {
			return fmt.Errorf("%w: invalid workType %q", ErrInvalidInput, input.WorkType)
		}
		workType, err := s.refs.WorkTypeByName(ctx, input.WorkType)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: work type %q", ErrNotFound, input.WorkType)
			}
			return err
		}
		row.WorkTypeID = workType.ID
	}

	switch {
	case input.Segment != nil:
		updated := segmentRow(*input.Segment, row.WorkTypeID)
		updated.ID = row.ID
		updated.ContractID = row.ContractID
		*row = updated
	case input.BlackSpot != nil:
		updated := blackSpotRow(*input.BlackSpot, row.WorkTypeID)
		updated.ID = row.ID
		updated.ContractID = row.ContractID
		*row = updated
	default:
		return fmt.Errorf("%w: segment or blackSpot data required", ErrInvalidInput)
	}

	if err := s.contracts.UpdateWorkLocation(ctx, row, principal.UserID); err != nil {
		return err
	}
	s.writeAudit(ctx, principal, fmt.Sprintf("%d", row.ContractID), "work_location", fmt.Sprintf("updated entry %d", id))
	return nil
}

type ContractDetailsInput struct {
	ContractID           int64
	ShortName            string
	ContractName         string
	ImplementationModeID *int64
	SchemeID             *int64
	ROID                 *int64
	StateID              *int64
	ContractLength       float64
	PIUIDs               []int64
}

// UpdateContractDetails refreshes draft-only master fields.
func (s *DraftService) UpdateContractDetails(ctx context.Context, principal model.Principal, input ContractDetailsInput) error {
	contract, err := s.contracts.GetContract(ctx, input.ContractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: contract %d", ErrNotFound, input.ContractID)
		}
		return err
	}
	if contract.Status != model.StatusDraft {
		return fmt.Errorf("%w: contract %d is no longer a draft", ErrConflict, input.ContractID)
	}

	err = s.contracts.UpdateContractDetails(ctx, repository.ContractDetailsUpdate{
		ContractID:           input.ContractID,
		ShortName:            input.ShortName,
		ContractName:         input.ContractName,
		ImplementationModeID: input.ImplementationModeID,
		SchemeID:             input.SchemeID,
		ROID:                 input.ROID,
		StateID:              input.StateID,
		ContractLength:       input.ContractLength,
		PIUIDs:               input.PIUIDs,
	}, principal.UserID)
	if err != nil {
		return err
	}
	s.writeAudit(ctx, principal, fmt.Sprintf("%d", input.ContractID), "contract_details", input.ContractName)
	return nil
}

type NHDetailInput struct {
	NHNumber      string  `json:"nhNumber"`
	StartChainage float64 `json:"startChainage"`
	EndChainage   float64 `json:"endChainage"`
	Length        float64 `json:"length"`
}

type NHStateDetailInput struct {
	StateID       int64   `json:"stateId"`
	DistrictIDs   string  `json:"districtIds"`
	StateDistance float64 `json:"stateDistance"`
}

// SaveNHDetails records highway spans and per-state distances for a draft.
func (s *DraftService) SaveNHDetails(ctx context.Context, principal model.Principal, draftID int64, details []NHDetailInput, stateDetails []NHStateDetailInput) error {
	if len(details) == 0 && len(stateDetails) == 0 {
		return fmt.Errorf("%w: nh details must not be empty", ErrInvalidInput)
	}
	contract, err := s.contracts.GetContract(ctx, draftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: contract %d", ErrNotFound, draftID)
		}
		return err
	}
	if contract.Status != model.StatusDraft {
		return fmt.Errorf("%w: contract %d is no longer a draft", ErrConflict, draftID)
	}

	nhRows := make([]model.NHDetail, 0, len(details))
	for _, d := range details {
		nhRows = append(nhRows, model.NHDetail{
			NHNumber:      d.NHNumber,
			StartChainage: d.StartChainage,
			EndChainage:   d.EndChainage,
			Length:        d.Length,
		})
	}
	stateRows := make([]model.NHStateDetail, 0, len(stateDetails))
	for _, d := range stateDetails {
		stateRows = append(stateRows, model.NHStateDetail{
			StateID:       d.StateID,
			DistrictIDs:   d.DistrictIDs,
			StateDistance: d.StateDistance,
		})
	}

	if err := s.contracts.SaveNHDetails(ctx, draftID, nhRows, stateRows, principal.UserID); err != nil {
		return err
	}
	s.writeAudit(ctx, principal, fmt.Sprintf("%d", draftID), "nh_details", fmt.Sprintf("%d spans, %d states", len(nhRows), len(stateRows)))
	return nil
}

// Audit writes are best effort: a failed log line must not fail the
// mutation that already committed.
func (s *DraftService) writeAudit(ctx context.Context, principal model.Principal, contractID, field, value string) {
	err := s.audit.Insert(ctx, &model.ChangeLog{
		ContractID:    contractID,
		FeatureModule: featureModuleUCC,
		ChangedField:  field,
		NewValue:      value,
		ChangedBy:     principal.UserID,
	})
	if err != nil {
		s.log.Error().Err(err).Str("contract", contractID).Str("field", field).Msg("change log write failed")
	}
}
