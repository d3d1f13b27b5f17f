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

type fakeDraftStore struct {
	contracts map[int64]*model.Contract
	stretches map[int64][]string
	nextID    int64

	insertedRows   []model.WorkLocation
	insertedName   string
	insertedLength float64
	updatedRow     *model.WorkLocation
}

func newFakeDraftStore() *fakeDraftStore {
	return &fakeDraftStore{
		contracts: map[int64]*model.Contract{},
		stretches: map[int64][]string{},
		nextID:    100,
	}
}

func (f *fakeDraftStore) CreateDraft(_ context.Context, stretchIDs []string, _ int64) (int64, error) {
	f.nextID++
	f.contracts[f.nextID] = &model.Contract{ID: f.nextID, Status: model.StatusDraft}
	f.stretches[f.nextID] = stretchIDs
	return f.nextID, nil
}

func (f *fakeDraftStore) GetContract(_ context.Context, id int64) (*model.Contract, error) {
	contract, ok := f.contracts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return contract, nil
}

func (f *fakeDraftStore) StretchIDs(_ context.Context, contractID int64) ([]string, error) {
	return f.stretches[contractID], nil
}

func (f *fakeDraftStore) InsertWorkLocations(_ context.Context, _ int64, rows []model.WorkLocation, name string, length float64, _ int64) error {
	f.insertedRows = rows
	f.insertedName = name
	f.insertedLength = length
	return nil
}

func (f *fakeDraftStore) GetWorkLocation(_ context.Context, id int64) (*model.WorkLocation, error) {
	if f.updatedRow != nil && f.updatedRow.ID == id {
		return f.updatedRow, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDraftStore) UpdateWorkLocation(_ context.Context, row *model.WorkLocation, _ int64) error {
	f.updatedRow = row
	return nil
}

func (f *fakeDraftStore) UpdateContractDetails(_ context.Context, _ repository.ContractDetailsUpdate, _ int64) error {
	return nil
}

func (f *fakeDraftStore) SaveNHDetails(_ context.Context, _ int64, _ []model.NHDetail, _ []model.NHStateDetail, _ int64) error {
	return nil
}

type fakeReferenceStore struct {
	workTypes map[string]int64
}

func (f *fakeReferenceStore) ByIDs(_ context.Context, stretchIDs []string) ([]model.Stretch, error) {
	stretches := make([]model.Stretch, len(stretchIDs))
	for i, id := range stretchIDs {
		stretches[i] = model.Stretch{StretchID: id, ProjectName: "NH-48 " + id}
	}
	return stretches, nil
}

func (f *fakeReferenceStore) WorkTypeByName(_ context.Context, name string) (*model.WorkType, error) {
	id, ok := f.workTypes[name]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.WorkType{ID: id, NameOfWork: name}, nil
}

func (f *fakeReferenceStore) UserOffices(_ context.Context, _ int64) ([]model.Office, []model.Office, error) {
	return []model.Office{{ID: 1, Name: "PIU Jaipur"}}, []model.Office{{ID: 2, Name: "RO Rajasthan"}}, nil
}

func (f *fakeReferenceStore) StateByName(_ context.Context, name string) (*model.State, error) {
	if name != "Rajasthan" {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.State{ID: 8, Name: "Rajasthan", Code: "RJ"}, nil
}

type fakeAuditStore struct {
	entries []model.ChangeLog
}

func (f *fakeAuditStore) Insert(_ context.Context, entry *model.ChangeLog) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func newDraftService(store *fakeDraftStore, audit *fakeAuditStore) *DraftService {
	cfg := &config.Config{
		UCC: config.UCCConfig{
			AllowedWorkTypes: []string{"Routine Maintenance", "Bridge Repair"},
		},
	}
	refs := &fakeReferenceStore{workTypes: map[string]int64{
		"Routine Maintenance": 11,
		"Bridge Repair":       12,
	}}
	return NewDraftService(store, refs, audit, cfg, zerolog.Nop())
}

func TestCreateDraftRequiresStretches(t *testing.T) {
	svc := newDraftService(newFakeDraftStore(), &fakeAuditStore{})

	_, err := svc.CreateDraft(context.Background(), model.Principal{UserID: 7}, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAddWorkLocationsBuildsNameAndLength(t *testing.T) {
	store := newFakeDraftStore()
	svc := newDraftService(store, &fakeAuditStore{})

	result, err := svc.AddWorkLocations(context.Background(), model.Principal{UserID: 7}, AddWorkLocationsInput{
		StretchIDs: []string{"S1"},
		Entries: []WorkEntryInput{
			{
				WorkType: "Routine Maintenance",
				Segments: []SegmentInput{
					{
						StartChainage: model.Chainage{Kilometer: 10, Meter: 200},
						EndChainage:   model.Chainage{Kilometer: 12, Meter: 700},
						EndLane:       2,
					},
				},
				BlackSpots: []BlackSpotInput{
					{Chainage: model.Chainage{Kilometer: 5, Meter: 100}, EndLane: 1},
				},
			},
		},
	})
	require.NoError(t, err)

	assert.Equal(t,
		"Routine Maintenance on NH-48 S1 from 10 + 200 to 12 + 700"+
			" and Routine Maintenance on NH-48 S1 from 5 + 100",
		result.GeneratedName)
	assert.Equal(t, "2.50 Km", result.ContractLength)
	assert.InDelta(t, 2.5, store.insertedLength, 1e-9)

	require.Len(t, store.insertedRows, 2)
	assert.Equal(t, model.IssueSegment, store.insertedRows[0].IssueKind)
	require.NotNil(t, store.insertedRows[0].EndKm)
	assert.Equal(t, 12, *store.insertedRows[0].EndKm)
	assert.Equal(t, model.IssueBlackSpot, store.insertedRows[1].IssueKind)
	assert.Nil(t, store.insertedRows[1].EndKm)
}

func TestAddWorkLocationsDecoratesOffices(t *testing.T) {
	store := newFakeDraftStore()
	svc := newDraftService(store, &fakeAuditStore{})

	result, err := svc.AddWorkLocations(context.Background(), model.Principal{UserID: 7}, AddWorkLocationsInput{
		StretchIDs: []string{"S1"},
		Entries: []WorkEntryInput{
			{
				WorkType: "Bridge Repair",
				BlackSpots: []BlackSpotInput{
					{Chainage: model.Chainage{Kilometer: 1, Meter: 0}},
				},
			},
		},
	})
	require.NoError(t, err)

	require.Len(t, result.PIU, 1)
	assert.Equal(t, "Jaipur", result.PIU[0].Name)
	require.Len(t, result.RO, 1)
	assert.Equal(t, "Rajasthan", result.RO[0].Name)
	require.NotNil(t, result.State)
	assert.Equal(t, "RJ", result.State.Code)
}

func TestAddWorkLocationsRejectsUnknownWorkType(t *testing.T) {
	svc := newDraftService(newFakeDraftStore(), &fakeAuditStore{})

	_, err := svc.AddWorkLocations(context.Background(), model.Principal{UserID: 7}, AddWorkLocationsInput{
		StretchIDs: []string{"S1"},
		Entries: []WorkEntryInput{
			{
				WorkType:   "Demolition",
				BlackSpots: []BlackSpotInput{{Chainage: model.Chainage{Kilometer: 1}}},
			},
		},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAddWorkLocationsRejectsPromotedContract(t *testing.T) {
	store := newFakeDraftStore()
	store.contracts[50] = &model.Contract{ID: 50, Status: model.StatusBalanceForAward}
	svc := newDraftService(store, &fakeAuditStore{})

	_, err := svc.AddWorkLocations(context.Background(), model.Principal{UserID: 7}, AddWorkLocationsInput{
		DraftID: 50,
		Entries: []WorkEntryInput{
			{
				WorkType:   "Routine Maintenance",
				BlackSpots: []BlackSpotInput{{Chainage: model.Chainage{Kilometer: 1}}},
			},
		},
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAddWorkLocationsRequiresEntries(t *testing.T) {
	svc := newDraftService(newFakeDraftStore(), &fakeAuditStore{})

	_, err := svc.AddWorkLocations(context.Background(), model.Principal{UserID: 7}, AddWorkLocationsInput{
		StretchIDs: []string{"S1"},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateWorkLocationRejectsPromotedContract(t *testing.T) {
	store := newFakeDraftStore()
	store.contracts[60] = &model.Contract{ID: 60, Status: model.StatusAwarded}
	store.updatedRow = &model.WorkLocation{ID: 9, ContractID: 60, WorkTypeID: 11}
	svc := newDraftService(store, &fakeAuditStore{})

	err := svc.UpdateWorkLocation(context.Background(), model.Principal{UserID: 7}, 9, UpdateWorkLocationInput{
		BlackSpot: &BlackSpotInput{Chainage: model.Chainage{Kilometer: 2}},
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUpdateContractDetailsWritesAudit(t *testing.T) {
	store := newFakeDraftStore()
	store.contracts[70] = &model.Contract{ID: 70, Status: model.StatusDraft}
	audit := &fakeAuditStore{}
	svc := newDraftService(store, audit)

	err := svc.UpdateContractDetails(context.Background(), model.Principal{UserID: 7}, ContractDetailsInput{
		ContractID:   70,
		ContractName: "Widening of NH-48",
	})
	require.NoError(t, err)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, "contract_details", audit.entries[0].ChangedField)
}

func TestSegmentLength(t *testing.T) {
	got := segmentLength(
		model.Chainage{Kilometer: 10, Meter: 200},
		model.Chainage{Kilometer: 12, Meter: 700},
	)
	assert.InDelta(t, 2.5, got, 1e-9)

	// metres may decrease across the span
	got = segmentLength(
		model.Chainage{Kilometer: 10, Meter: 900},
		model.Chainage{Kilometer: 12, Meter: 100},
	)
	assert.InDelta(t, 1.2, got, 1e-9)
}
