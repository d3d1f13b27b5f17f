package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/highwaynet/ucc-service/internal/model"
)

type StretchRepository struct {
	db *gorm.DB
}

func NewStretchRepository(db *gorm.DB) *StretchRepository {
	return &StretchRepository{db: db}
}

// ByIDs loads stretch reference rows with computed length and geometry.
func (r *StretchRepository) ByIDs(ctx context.Context, stretchIDs []string) ([]model.Stretch, error) {
	if len(stretchIDs) == 0 {
		return []model.Stretch{}, nil
	}
	var stretches []model.Stretch
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			stretch_id,
			stretch_code,
			phase_code,
			corridor_code,
			project_name,
			program_name,
			phase,
			scheme,
			nh,
			corridor_id,
			ST_Length(geom::geography) / 1000 AS length_km,
			ST_AsGeoJSON(geom) AS geo_json
		FROM gis_stretches
		WHERE stretch_id IN ?
	`, stretchIDs).Scan(&stretches).Error
	if err != nil {
		return nil, err
	}
	return stretches, nil
}

// UserStretches resolves the stretches of every contract mapped to the user.
func (r *StretchRepository) UserStretches(ctx context.Context, userID int64) ([]model.Stretch, error) {
	var stretchIDs []string
	err := r.db.WithContext(ctx).Raw(`
		SELECT DISTINCT seg.stretch_id
		FROM ucc_user_mappings mp
		JOIN gis_ucc_segments seg ON seg.ucc = mp.ucc_code
		WHERE mp.user_id = ?
	`, userID).Scan(&stretchIDs).Error
	if err != nil {
		return nil, err
	}
	if len(stretchIDs) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.ByIDs(ctx, stretchIDs)
}

// SplitLine cuts the contract's centerline between two points and returns
// the sub-line coordinates. The spatial work stays inside PostGIS.
func (r *StretchRepository) SplitLine(ctx context.Context, uccCode string, start, end model.Chainage) ([][]float64, error) {
	var geoJSON string
	err := r.db.WithContext(ctx).Raw(`
		SELECT ST_AsGeoJSON(
			ST_LineSubstring(
				(ST_Dump(geom)).geom,
				ST_LineLocatePoint((ST_Dump(geom)).geom, ST_SetSRID(ST_Point(?, ?), 4326)),
				ST_LineLocatePoint((ST_Dump(geom)).geom, ST_SetSRID(ST_Point(?, ?), 4326))
			)
		) AS segment
		FROM gis_centerlines
		WHERE ucc = ?
		LIMIT 1
	`, start.Lat, start.Long, end.Lat, end.Long, uccCode).Scan(&geoJSON).Error
	if err != nil {
		return nil, err
	}
	if geoJSON == "" {
		return nil, gorm.ErrRecordNotFound
	}

	var line struct {
		Coordinates [][]float64 `json:"coordinates"`
	}
	if err := json.Unmarshal([]byte(geoJSON), &line); err != nil {
		return nil, fmt.Errorf("decode segment geometry: %w", err)
	}
	return line.Coordinates, nil
}

// WorkTypeByName resolves a work type from the fixed catalogue.
func (r *StretchRepository) WorkTypeByName(ctx context.Context, name string) (*model.WorkType, error) {
	var workType model.WorkType
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, name_of_work
		FROM type_of_work
		WHERE name_of_work = ?
		LIMIT 1
	`, name).Scan(&workType).Error
	if err != nil {
		return nil, err
	}
	if workType.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &workType, nil
}

// UserOffices resolves the PIU offices behind the user's contracts and
// their parent ROs.
func (r *StretchRepository) UserOffices(ctx context.Context, userID int64) ([]model.Office, []model.Office, error) {
	var pius []model.Office
	err := r.db.WithContext(ctx).Raw(`
		SELECT DISTINCT oom.office_id AS id, oom.office_name AS name, oom.office_type AS type, oom.parent_id
		FROM ucc_user_mappings mp
		JOIN ucc_master um ON um.permanent_ucc = mp.ucc_code
		JOIN ucc_piu up ON up.ucc_id = um.id
		JOIN or_office_master oom ON oom.office_id = up.piu_id AND oom.office_type = 'PIU'
		WHERE mp.user_id = ?
		ORDER BY oom.office_name ASC
	`, userID).Scan(&pius).Error
	if err != nil {
		return nil, nil, err
	}

	parentIDs := make([]int64, 0, len(pius))
	seen := make(map[int64]struct{})
	for _, piu := range pius {
		if piu.ParentID == nil {
			continue
		}
		if _, ok := seen[*piu.ParentID]; ok {
			continue
		}
		seen[*piu.ParentID] = struct{}{}
		parentIDs = append(parentIDs, *piu.ParentID)
	}
	if len(parentIDs) == 0 {
		return pius, []model.Office{}, nil
	}

	var ros []model.Office
	err = r.db.WithContext(ctx).Raw(`
		SELECT office_id AS id, office_name AS name, office_type AS type, parent_id
		FROM or_office_master
		WHERE office_id IN ? AND office_type = 'RO'
		ORDER BY office_name ASC
	`, parentIDs).Scan(&ros).Error
	if err != nil {
		return nil, nil, err
	}
	return pius, ros, nil
}

// StateByName looks up a state by its display name.
func (r *StretchRepository) StateByName(ctx context.Context, name string) (*model.State, error) {
	var state model.State
	err := r.db.WithContext(ctx).Raw(`
		SELECT state_id AS id, state_name AS name, state_code AS code
		FROM ml_states
		WHERE state_name = ?
		LIMIT 1
	`, name).Scan(&state).Error
	if err != nil {
		return nil, err
	}
	if state.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &state, nil
}

func (r *StretchRepository) ImplementationModes(ctx context.Context) ([]model.ImplementationMode, error) {
	var modes []model.ImplementationMode
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, mode_name
		FROM ucc_implementation_mode
		ORDER BY mode_name ASC
	`).Scan(&modes).Error
	if err != nil {
		return nil, err
	}
	return modes, nil
}
