package repository

import (
	"context"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/highwaynet/ucc-service/internal/model"
)

// Phase and corridor arrive as zero-padded strings from the GIS reference
// data; the master row stores them numerically.
func atoiOrNull(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}

// PromotionResult is what a successful draft promotion produced.
type PromotionResult struct {
	PermanentCode string
	StretchName   string
	PackageCode   string
}

type longestStretchRow struct {
	StretchID    string
	StretchCode  string
	PhaseCode    string
	CorridorCode string
	ProjectName  string
}

// PromoteDraft runs the entire promotion as one transaction: package-code
// allocation, master update, bulk status flips on work locations, documents
// and NH details, and the caller-to-contract mapping upsert. A concurrent
// allocation for the same stretch surfaces as gorm.ErrDuplicatedKey; the
// service retries around this call.
func (r *ContractRepository) PromoteDraft(ctx context.Context, draftID, userID int64) (*PromotionResult, error) {
	var result PromotionResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stretchIDs []string
		if err := tx.Raw(`
			SELECT stretch_id
			FROM ucc_stretches
			WHERE ucc_id = ?
			ORDER BY position ASC
		`, draftID).Scan(&stretchIDs).Error; err != nil {
			return err
		}
		if len(stretchIDs) == 0 {
			return gorm.ErrRecordNotFound
		}

		// Longest stretch supplies phase/corridor/stretch codes and the
		// display name. Ties resolve to the earliest caller-supplied stretch.
		var longest longestStretchRow
		if err := tx.Raw(`
			SELECT
				gs.stretch_id,
				gs.stretch_code,
				gs.phase_code,
				gs.corridor_code,
				gs.project_name
			FROM gis_stretches gs
			JOIN ucc_stretches us ON us.stretch_id = gs.stretch_id AND us.ucc_id = ?
			WHERE gs.stretch_id IN ?
			ORDER BY ST_Length(gs.geom) DESC, us.position ASC
			LIMIT 1
		`, draftID, stretchIDs).Scan(&longest).Error; err != nil {
			return err
		}
		if longest.StretchID == "" {
			return gorm.ErrRecordNotFound
		}

		var stateCode string
		if err := tx.Raw(`
			SELECT ms.state_code
			FROM ucc_nh_state_details nsd
			JOIN ml_states ms ON ms.state_id = nsd.state_id
			WHERE nsd.ucc_id = ?
			ORDER BY nsd.nh_state_distance DESC
			LIMIT 1
		`, draftID).Scan(&stateCode).Error; err != nil {
			return err
		}
		if stateCode == "" {
			stateCode = "XX"
		}

		packageCode, err := allocatePackageCode(tx, longest.StretchID, userID)
		if err != nil {
			return err
		}

		permanentCode := composePermanentCode(
			longest.PhaseCode, longest.CorridorCode, longest.StretchCode, packageCode, stateCode,
		)

		update := tx.Exec(`
			UPDATE ucc_master
			SET status = ?,
				phase_code = ?,
				corridor_code = ?,
				permanent_ucc = ?,
				stretch_name = ?,
				updated_by = ?,
				updated_at = NOW()
			WHERE id = ? AND status = ?
		`,
			model.StatusBalanceForAward,
			atoiOrNull(longest.PhaseCode), atoiOrNull(longest.CorridorCode),
			permanentCode, longest.ProjectName,
			userID, draftID, model.StatusDraft,
		)
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			return ErrStaleStatus
		}

		if err := tx.Exec(`
			UPDATE ucc_work_locations
			SET status = ?, updated_by = ?, updated_at = NOW()
			WHERE ucc_id = ? AND status = ?
		`, model.StatusBalanceForAward, userID, draftID, model.StatusDraft).Error; err != nil {
			return err
		}

		if err := tx.Exec(`
			UPDATE documents_master
			SET status = ?
			WHERE ucc_id = ? AND status = ? AND NOT is_deleted
		`, model.StatusBalanceForAward, draftID, model.StatusDraft).Error; err != nil {
			return err
		}

		if err := tx.Exec(`
			UPDATE ucc_nh_details
			SET status = ?
			WHERE ucc_id = ? AND status = ?
		`, model.StatusBalanceForAward, draftID, model.StatusDraft).Error; err != nil {
			return err
		}

		var mappingID int64
		if err := tx.Raw(`
			SELECT id FROM ucc_user_mappings
			WHERE ucc_code = ? AND user_id = ?
			LIMIT 1
		`, permanentCode, userID).Scan(&mappingID).Error; err != nil {
			return err
		}
		if mappingID != 0 {
			if err := tx.Exec(`
				UPDATE ucc_user_mappings
				SET status = ?, updated_by = ?, updated_at = NOW()
				WHERE id = ?
			`, model.StatusBalanceForAward, userID, mappingID).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Exec(`
				INSERT INTO ucc_user_mappings (ucc_code, user_id, status, created_by)
				VALUES (?, ?, ?, ?)
			`, permanentCode, userID, model.StatusBalanceForAward, userID).Error; err != nil {
				return err
			}
		}

		result = PromotionResult{
			PermanentCode: permanentCode,
			StretchName:   longest.ProjectName,
			PackageCode:   packageCode,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
