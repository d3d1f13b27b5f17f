package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/highwaynet/ucc-service/internal/model"
)

type ChangeLogRepository struct {
	db *gorm.DB
}

func NewChangeLogRepository(db *gorm.DB) *ChangeLogRepository {
	return &ChangeLogRepository{db: db}
}

// Insert appends one audit entry. Entries are immutable once written.
func (r *ChangeLogRepository) Insert(ctx context.Context, entry *model.ChangeLog) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO ucc_change_log (
			ucc_id, feature_module, changed_field, new_value, changed_by
		) VALUES (?, ?, ?, ?, ?)
	`, entry.ContractID, entry.FeatureModule, entry.ChangedField, entry.NewValue, entry.ChangedBy).Error
}

func (r *ChangeLogRepository) ListByUser(
	ctx context.Context,
	userID int64,
	featureModule string,
	limit, offset int,
) ([]model.ChangeLog, error) {
	var entries []model.ChangeLog
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, ucc_id AS contract_id, feature_module, changed_field,
			new_value, changed_by, changed_at
		FROM ucc_change_log
		WHERE changed_by = ? AND feature_module = ?
		ORDER BY changed_at DESC
		LIMIT ? OFFSET ?
	`, userID, featureModule, limit, offset).Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *ChangeLogRepository) CountByUser(ctx context.Context, userID int64, featureModule string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*)
		FROM ucc_change_log
		WHERE changed_by = ? AND feature_module = ?
	`, userID, featureModule).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
