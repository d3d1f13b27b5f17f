package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/highwaynet/ucc-service/internal/model"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

// CreateDraft inserts a Draft master row and its ordered stretch set.
func (r *ContractRepository) CreateDraft(ctx context.Context, stretchIDs []string, userID int64) (int64, error) {
	var draftID int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Raw(`
			INSERT INTO ucc_master (status, created_by)
			VALUES (?, ?)
			RETURNING id
		`, model.StatusDraft, userID).Scan(&draftID).Error; err != nil {
			return err
		}
		for i, stretchID := range stretchIDs {
			if err := tx.Exec(`
				INSERT INTO ucc_stretches (ucc_id, stretch_id, position)
				VALUES (?, ?, ?)
			`, draftID, stretchID, i).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return draftID, nil
}

func (r *ContractRepository) GetContract(ctx context.Context, id int64) (*model.Contract, error) {
	var contract model.Contract
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			id,
			permanent_ucc AS permanent_code,
			contract_name,
			short_name,
			status,
			phase_code,
			corridor_code,
			implementation_mode_id,
			scheme_id,
			ro_id,
			state_id,
			contract_length,
			stretch_name,
			created_by,
			created_at,
			updated_by,
			updated_at
		FROM ucc_master
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&contract).Error
	if err != nil {
		return nil, err
	}
	if contract.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &contract, nil
}

func (r *ContractRepository) GetContractByCode(ctx context.Context, code string) (*model.Contract, error) {
	var contract model.Contract
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			id,
			permanent_ucc AS permanent_code,
			contract_name,
			status,
			created_by,
			created_at
		FROM ucc_master
		WHERE permanent_ucc = ?
		LIMIT 1
	`, code).Scan(&contract).Error
	if err != nil {
		return nil, err
	}
	if contract.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &contract, nil
}

// StretchIDs returns the draft's stretch set in caller-supplied order.
func (r *ContractRepository) StretchIDs(ctx context.Context, contractID int64) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Raw(`
		SELECT stretch_id
		FROM ucc_stretches
		WHERE ucc_id = ?
		ORDER BY position ASC
	`, contractID).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// InsertWorkLocations persists one row per entry and refreshes the derived
// display name and accumulated contract length in the same transaction.
func (r *ContractRepository) InsertWorkLocations(
	ctx context.Context,
	contractID int64,
	rows []model.WorkLocation,
	contractName string,
	contractLength float64,
	userID int64,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			if err := tx.Exec(`
				INSERT INTO ucc_work_locations (
					ucc_id, work_type_id, issue_kind,
					start_km, start_metre, start_lat, start_long,
					end_km, end_metre, end_lat, end_long,
					lane, status, created_by
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`,
				contractID, row.WorkTypeID, row.IssueKind,
				row.StartKm, row.StartMetre, row.StartLat, row.StartLong,
				row.EndKm, row.EndMetre, row.EndLat, row.EndLong,
				row.Lane, model.StatusDraft, userID,
			).Error; err != nil {
				return err
			}
		}
		return tx.Exec(`
			UPDATE ucc_master
			SET contract_name = ?,
				contract_length = contract_length + ?,
				updated_by = ?,
				updated_at = NOW()
			WHERE id = ?
		`, contractName, contractLength, userID, contractID).Error
	})
}

func (r *ContractRepository) GetWorkLocation(ctx context.Context, id int64) (*model.WorkLocation, error) {
	var row model.WorkLocation
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			id,
			ucc_id AS contract_id,
			work_type_id,
			issue_kind,
			start_km, start_metre, start_lat, start_long,
			end_km, end_metre, end_lat, end_long,
			lane,
			status,
			created_by,
			created_at
		FROM ucc_work_locations
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

func (r *ContractRepository) UpdateWorkLocation(ctx context.Context, row *model.WorkLocation, userID int64) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE ucc_work_locations
		SET work_type_id = ?,
			issue_kind = ?,
			start_km = ?, start_metre = ?, start_lat = ?, start_long = ?,
			end_km = ?, end_metre = ?, end_lat = ?, end_long = ?,
			lane = ?,
			updated_by = ?,
			updated_at = NOW()
		WHERE id = ?
	`,
		row.WorkTypeID, row.IssueKind,
		row.StartKm, row.StartMetre, row.StartLat, row.StartLong,
		row.EndKm, row.EndMetre, row.EndLat, row.EndLong,
		row.Lane, userID, row.ID,
	).Error
}

type ContractDetailsUpdate struct {
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

// UpdateContractDetails refreshes draft master fields and upserts the PIU
// links in one transaction.
func (r *ContractRepository) UpdateContractDetails(ctx context.Context, update ContractDetailsUpdate, userID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`
			UPDATE ucc_master
			SET short_name = ?,
				contract_name = ?,
				implementation_mode_id = ?,
				scheme_id = ?,
				ro_id = ?,
				state_id = ?,
				contract_length = ?,
				updated_by = ?,
				updated_at = NOW()
			WHERE id = ?
		`,
			update.ShortName, update.ContractName,
			update.ImplementationModeID, update.SchemeID,
			update.ROID, update.StateID,
			update.ContractLength, userID, update.ContractID,
		).Error; err != nil {
			return err
		}

		for _, piuID := range update.PIUIDs {
			var existing int64
			if err := tx.Raw(`
				SELECT id FROM ucc_piu
				WHERE ucc_id = ? AND piu_id = ?
				LIMIT 1
			`, update.ContractID, piuID).Scan(&existing).Error; err != nil {
				return err
			}
			if existing != 0 {
				if err := tx.Exec(`
					UPDATE ucc_piu SET updated_by = ?, updated_at = NOW() WHERE id = ?
				`, userID, existing).Error; err != nil {
					return err
				}
				continue
			}
			if err := tx.Exec(`
				INSERT INTO ucc_piu (ucc_id, piu_id, created_by)
				VALUES (?, ?, ?)
			`, update.ContractID, piuID, userID).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveNHDetails inserts highway spans and per-state distances together.
func (r *ContractRepository) SaveNHDetails(
	ctx context.Context,
	contractID int64,
	details []model.NHDetail,
	stateDetails []model.NHStateDetail,
	userID int64,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, d := range details {
			if err := tx.Exec(`
				INSERT INTO ucc_nh_details (
					ucc_id, nh_number, start_chainage, end_chainage, length, status, created_by
				) VALUES (?, ?, ?, ?, ?, ?, ?)
			`, contractID, d.NHNumber, d.StartChainage, d.EndChainage, d.Length, model.StatusDraft, userID).Error; err != nil {
				return err
			}
		}
		for _, s := range stateDetails {
			if err := tx.Exec(`
				INSERT INTO ucc_nh_state_details (
					ucc_id, state_id, district_ids, nh_state_distance, created_by
				) VALUES (?, ?, ?, ?, ?)
			`, contractID, s.StateID, s.DistrictIDs, s.StateDistance, userID).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateStatusByCode moves a promoted contract to a terminal status. The
// guard on the current status makes lost approval races visible.
func (r *ContractRepository) UpdateStatusByCode(ctx context.Context, code string, from, to model.ContractStatus, userID int64) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE ucc_master
		SET status = ?, updated_by = ?, updated_at = NOW()
		WHERE permanent_ucc = ? AND status = ?
	`, to, userID, code, from)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}

// ListWorkLocations returns every work entry of a contract with its work
// type name, ordered for the review page.
func (r *ContractRepository) ListWorkLocations(ctx context.Context, contractID int64) ([]WorkLocationDetail, error) {
	var rows []WorkLocationDetail
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			wl.id,
			wl.ucc_id AS contract_id,
			wl.issue_kind,
			wl.start_km, wl.start_metre, wl.start_lat, wl.start_long,
			wl.end_km, wl.end_metre, wl.end_lat, wl.end_long,
			wl.lane,
			wl.status,
			tow.name_of_work
		FROM ucc_work_locations wl
		JOIN type_of_work tow ON tow.id = wl.work_type_id
		WHERE wl.ucc_id = ?
		ORDER BY tow.name_of_work ASC, wl.id ASC
	`, contractID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type WorkLocationDetail struct {
	ID         int64
	ContractID int64
	IssueKind  model.IssueKind
	StartKm    int
	StartMetre int
	StartLat   float64
	StartLong  float64
	EndKm      *int
	EndMetre   *int
	EndLat     *float64
	EndLong    *float64
	Lane       int
	Status     model.ContractStatus
	NameOfWork string
}

// ListNHDetails returns highway spans and state distances for the review page.
func (r *ContractRepository) ListNHDetails(ctx context.Context, contractID int64) ([]model.NHDetail, []NHStateDetailView, error) {
	var details []model.NHDetail
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, ucc_id AS contract_id, nh_number, start_chainage, end_chainage, length, status
		FROM ucc_nh_details
		WHERE ucc_id = ?
		ORDER BY id ASC
	`, contractID).Scan(&details).Error
	if err != nil {
		return nil, nil, err
	}

	var states []NHStateDetailView
	err = r.db.WithContext(ctx).Raw(`
		SELECT
			nsd.id,
			nsd.ucc_id AS contract_id,
			nsd.state_id,
			ms.state_name,
			nsd.district_ids,
			nsd.nh_state_distance AS state_distance
		FROM ucc_nh_state_details nsd
		JOIN ml_states ms ON ms.state_id = nsd.state_id
		WHERE nsd.ucc_id = ?
		ORDER BY nsd.nh_state_distance DESC
	`, contractID).Scan(&states).Error
	if err != nil {
		return nil, nil, err
	}
	return details, states, nil
}

type NHStateDetailView struct {
	ID            int64
	ContractID    int64
	StateID       int64
	StateName     string
	DistrictIDs   string
	StateDistance float64
}

// PIUOffices resolves the PIU offices linked to a contract.
func (r *ContractRepository) PIUOffices(ctx context.Context, contractID int64) ([]model.Office, error) {
	var offices []model.Office
	err := r.db.WithContext(ctx).Raw(`
		SELECT oom.office_id AS id, oom.office_name AS name, oom.office_type AS type, oom.parent_id
		FROM ucc_piu up
		JOIN or_office_master oom ON oom.office_id = up.piu_id
		WHERE up.ucc_id = ?
		ORDER BY oom.office_name ASC
	`, contractID).Scan(&offices).Error
	if err != nil {
		return nil, err
	}
	return offices, nil
}
