package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/highwaynet/ucc-service/internal/model"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Insert(ctx context.Context, doc *model.Document) (*model.Document, error) {
	var saved model.Document
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO documents_master (
			ucc_id, document_type, document_name, key_name, document_path,
			status, is_deleted, created_by
		) VALUES (?, ?, ?, ?, ?, ?, FALSE, ?)
		RETURNING id, ucc_id AS contract_id, document_type, document_name,
			key_name, document_path, status, is_deleted, created_by, created_at
	`,
		doc.ContractID, doc.DocumentType, doc.DocumentName,
		doc.KeyName, doc.DocumentPath, doc.Status, doc.CreatedBy,
	).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id int64) (*model.Document, error) {
	var doc model.Document
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, ucc_id AS contract_id, document_type, document_name,
			key_name, document_path, status, is_deleted, created_by, created_at
		FROM documents_master
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&doc).Error
	if err != nil {
		return nil, err
	}
	if doc.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &doc, nil
}

func (r *DocumentRepository) ListByContract(ctx context.Context, contractID int64) ([]model.Document, error) {
	var docs []model.Document
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, ucc_id AS contract_id, document_type, document_name,
			key_name, document_path, status, is_deleted, created_by, created_at
		FROM documents_master
		WHERE ucc_id = ? AND NOT is_deleted
		ORDER BY created_at DESC
	`, contractID).Scan(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// SoftDelete marks the metadata row deleted; object-store removal is the
// service's concern.
func (r *DocumentRepository) SoftDelete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE documents_master
		SET is_deleted = TRUE
		WHERE id = ?
	`, id).Error
}
