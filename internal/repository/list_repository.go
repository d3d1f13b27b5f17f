package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/highwaynet/ucc-service/internal/model"
)

// ContractFilters is the caller's sparse filter set for the blended list.
// UCCCodes and StretchIDs bound the visible universe; the rest are optional
// dimensions ANDed together.
type ContractFilters struct {
	StretchIDs []string
	UCCCodes   []string
	PIU        []string
	RO         []string
	Program    []string
	Phase      []string
	TypeOfWork []string
	Scheme     []string
	Corridor   []string
	Search     string
}

type ListRepository struct {
	db *gorm.DB
}

func NewListRepository(db *gorm.DB) *ListRepository {
	return &ListRepository{db: db}
}

// MappedUCCCodes returns the permanent codes the user is mapped to.
func (r *ListRepository) MappedUCCCodes(ctx context.Context, userID int64) ([]string, error) {
	var codes []string
	err := r.db.WithContext(ctx).Raw(`
		SELECT ucc_code
		FROM ucc_user_mappings
		WHERE user_id = ?
		ORDER BY ucc_code ASC
	`, userID).Scan(&codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}

// appendInFilter adds "<column> IN (?,...)" with one placeholder per value.
func appendInFilter(clauses []string, args []interface{}, column string, values []string) ([]string, []interface{}) {
	if len(values) == 0 {
		return clauses, args
	}
	placeholders := make([]string, len(values))
	for i := range values {
		placeholders[i] = "?"
	}
	clauses = append(clauses, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ",")))
	for _, value := range values {
		args = append(args, value)
	}
	return clauses, args
}

// segmentPredicates builds the conjunctive WHERE fragment for the
// denormalized segments source. Everything is parameterized.
func segmentPredicates(f ContractFilters) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if len(f.StretchIDs) > 0 {
		clauses, args = appendInFilter(clauses, args, "stretch_id", f.StretchIDs)
	} else {
		clauses, args = appendInFilter(clauses, args, "ucc", f.UCCCodes)
	}
	clauses, args = appendInFilter(clauses, args, "piu", f.PIU)
	clauses, args = appendInFilter(clauses, args, "ro", f.RO)
	clauses, args = appendInFilter(clauses, args, "program_name", f.Program)
	clauses, args = appendInFilter(clauses, args, "phase_code", f.Phase)
	clauses, args = appendInFilter(clauses, args, "type_of_work", f.TypeOfWork)
	clauses, args = appendInFilter(clauses, args, "scheme", f.Scheme)
	clauses, args = appendInFilter(clauses, args, "corridor_code", f.Corridor)

	if f.Search != "" {
		clauses = append(clauses, `(
			project_name ILIKE ?
			OR piu ILIKE ?
			OR ucc ILIKE ?
			OR type_of_work ILIKE ?
		)`)
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern, pattern, pattern)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// masterPredicates builds the WHERE fragment for the normalized master
// source. Name-valued dimensions resolve through reference tables.
func masterPredicates(f ContractFilters) (string, []interface{}) {
	clauses := []string{"um.permanent_ucc IS NOT NULL"}
	var args []interface{}

	if len(f.StretchIDs) > 0 {
		placeholders := strings.TrimRight(strings.Repeat("?,", len(f.StretchIDs)), ",")
		clauses = append(clauses, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM ucc_stretches us
			WHERE us.ucc_id = um.id AND us.stretch_id IN (%s)
		)`, placeholders))
		for _, id := range f.StretchIDs {
			args = append(args, id)
		}
	} else {
		clauses, args = appendInFilter(clauses, args, "um.permanent_ucc", f.UCCCodes)
	}

	if len(f.PIU) > 0 {
		placeholders := strings.TrimRight(strings.Repeat("?,", len(f.PIU)), ",")
		clauses = append(clauses, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM ucc_piu up
			JOIN or_office_master oom ON oom.office_id = up.piu_id
			WHERE up.ucc_id = um.id AND oom.office_name IN (%s)
		)`, placeholders))
		for _, name := range f.PIU {
			args = append(args, name)
		}
	}
	if len(f.RO) > 0 {
		placeholders := strings.TrimRight(strings.Repeat("?,", len(f.RO)), ",")
		clauses = append(clauses, fmt.Sprintf(`um.ro_id IN (
			SELECT office_id FROM or_office_master WHERE office_type = 'RO' AND office_name IN (%s)
		)`, placeholders))
		for _, name := range f.RO {
			args = append(args, name)
		}
	}
	if len(f.Program) > 0 {
		placeholders := strings.TrimRight(strings.Repeat("?,", len(f.Program)), ",")
		clauses = append(clauses, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM ucc_stretches us
			JOIN gis_stretches gs ON gs.stretch_id = us.stretch_id
			WHERE us.ucc_id = um.id AND gs.program_name IN (%s)
		)`, placeholders))
		for _, name := range f.Program {
			args = append(args, name)
		}
	}
	clauses, args = appendInFilter(clauses, args, "um.phase_code::text", f.Phase)
	if len(f.TypeOfWork) > 0 {
		placeholders := strings.TrimRight(strings.Repeat("?,", len(f.TypeOfWork)), ",")
		clauses = append(clauses, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM ucc_work_locations wl
			JOIN type_of_work tow ON tow.id = wl.work_type_id
			WHERE wl.ucc_id = um.id AND tow.name_of_work IN (%s)
		)`, placeholders))
		for _, name := range f.TypeOfWork {
			args = append(args, name)
		}
	}
	if len(f.Scheme) > 0 {
		placeholders := strings.TrimRight(strings.Repeat("?,", len(f.Scheme)), ",")
		clauses = append(clauses, fmt.Sprintf(`um.scheme_id IN (
			SELECT scheme_id FROM scheme_master WHERE scheme_name IN (%s)
		)`, placeholders))
		for _, name := range f.Scheme {
			args = append(args, name)
		}
	}
	clauses, args = appendInFilter(clauses, args, "um.corridor_code::text", f.Corridor)

	if f.Search != "" {
		clauses = append(clauses, `(
			um.contract_name ILIKE ?
			OR um.permanent_ucc ILIKE ?
			OR um.stretch_name ILIKE ?
			OR EXISTS (
				SELECT 1 FROM ucc_work_locations wl
				JOIN type_of_work tow ON tow.id = wl.work_type_id
				WHERE wl.ucc_id = um.id AND tow.name_of_work ILIKE ?
			)
		)`)
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern, pattern, pattern)
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

// ListSegmentRows pages through Source A: one denormalized row per contract
// with geometry attached.
func (r *ListRepository) ListSegmentRows(ctx context.Context, f ContractFilters, limit, offset int) ([]model.ContractRow, error) {
	where, args := segmentPredicates(f)
	query := `
		SELECT DISTINCT ON (ucc)
			ucc,
			project_name,
			piu,
			ro,
			type_of_work,
			stretch_id,
			total_length,
			revised_length,
			corridor_code,
			phase_code,
			scheme,
			program_name,
			project_status,
			ST_AsGeoJSON(geom) AS geo_json
		FROM gis_ucc_segments
	` + where + `
		ORDER BY ucc ASC
		LIMIT ? OFFSET ?
	`
	args = append(args, limit, offset)

	var rows []model.ContractRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Source = model.SourceSegments
	}
	return rows, nil
}

// CountSegmentRows computes Source A's total over the full filtered set.
func (r *ListRepository) CountSegmentRows(ctx context.Context, f ContractFilters) (int64, error) {
	where, args := segmentPredicates(f)
	var count int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(DISTINCT ucc) FROM gis_ucc_segments
	`+where, args...).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ListMasterRows pages through Source B: the master table joined to offices
// and work-type names.
func (r *ListRepository) ListMasterRows(ctx context.Context, f ContractFilters, limit, offset int) ([]model.ContractRow, error) {
	where, args := masterPredicates(f)
	query := `
		SELECT
			um.permanent_ucc AS ucc,
			um.contract_name AS project_name,
			STRING_AGG(DISTINCT oom.office_name, ', ') AS piu,
			STRING_AGG(DISTINCT tow.name_of_work, ', ') AS type_of_work,
			um.contract_length AS total_length,
			um.scheme_id::text AS scheme,
			um.corridor_code::text AS corridor_code,
			um.phase_code::text AS phase_code,
			um.stretch_name,
			um.status AS project_status
		FROM ucc_master um
		LEFT JOIN ucc_piu up ON up.ucc_id = um.id
		LEFT JOIN or_office_master oom ON oom.office_id = up.piu_id AND oom.office_type = 'PIU'
		LEFT JOIN ucc_work_locations wl ON wl.ucc_id = um.id
		LEFT JOIN type_of_work tow ON tow.id = wl.work_type_id
	` + where + `
		GROUP BY um.id
		ORDER BY um.permanent_ucc ASC
		LIMIT ? OFFSET ?
	`
	args = append(args, limit, offset)

	var rows []model.ContractRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Source = model.SourceMaster
	}
	return rows, nil
}

// CountMasterRows computes Source B's total over the full filtered set.
func (r *ListRepository) CountMasterRows(ctx context.Context, f ContractFilters) (int64, error) {
	where, args := masterPredicates(f)
	var count int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM ucc_master um
	`+where, args...).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// StretchNames builds the id-to-name lookup used to decorate list rows.
func (r *ListRepository) StretchNames(ctx context.Context, stretchIDs []string) (map[string]string, error) {
	if len(stretchIDs) == 0 {
		return map[string]string{}, nil
	}
	var rows []struct {
		StretchID   string
		ProjectName string
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT stretch_id, project_name
		FROM gis_stretches
		WHERE stretch_id IN ?
	`, stretchIDs).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(rows))
	for _, row := range rows {
		names[row.StretchID] = row.ProjectName
	}
	return names, nil
}

// EditCounts returns change-log counts per contract code in one grouped
// query rather than one count per row.
func (r *ListRepository) EditCounts(ctx context.Context, codes []string) (map[string]int64, error) {
	if len(codes) == 0 {
		return map[string]int64{}, nil
	}
	var rows []struct {
		UCCID string
		Count int64
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT ucc_id, COUNT(*) AS count
		FROM ucc_change_log
		WHERE ucc_id IN ?
		GROUP BY ucc_id
	`, codes).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.UCCID] = row.Count
	}
	return counts, nil
}
