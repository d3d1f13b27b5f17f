package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/highwaynet/ucc-service/internal/config"
	"github.com/highwaynet/ucc-service/internal/model"
)

// DocumentStore is the metadata side of document handling.
type DocumentStore interface {
	Insert(ctx context.Context, doc *model.Document) (*model.Document, error)
	GetByID(ctx context.Context, id int64) (*model.Document, error)
	ListByContract(ctx context.Context, contractID int64) ([]model.Document, error)
	SoftDelete(ctx context.Context, id int64) error
}

// ObjectStore is the blob side. Failures here map to ErrUpstream.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	ObjectURL(key string) string
}

// DraftCreator lets an upload open a draft when none exists yet.
type DraftCreator interface {
	CreateDraft(ctx context.Context, stretchIDs []string, userID int64) (int64, error)
	GetContract(ctx context.Context, id int64) (*model.Contract, error)
}

type DocumentService struct {
	documents DocumentStore
	objects   ObjectStore
	contracts DraftCreator
	audit     AuditStore
	folder    string
	log       zerolog.Logger
}

func NewDocumentService(
	documents DocumentStore,
	objects ObjectStore,
	contracts DraftCreator,
	audit AuditStore,
	cfg *config.Config,
	log zerolog.Logger,
) *DocumentService {
	folder := strings.Trim(cfg.S3.MainFolder, "/")
	if sub := strings.Trim(cfg.S3.SubFolder, "/"); sub != "" {
		folder = folder + "/" + sub
	}
	return &DocumentService{
		documents: documents,
		objects:   objects,
		contracts: contracts,
		audit:     audit,
		folder:    folder,
		log:       log,
	}
}

type UploadInput struct {
	DraftID      int64
	StretchIDs   []string
	DocumentType string
	FileName     string
	ContentType  string
	Body         io.Reader
}

type UploadResult struct {
	DraftID  int64          `json:"draftUccId"`
	Document model.Document `json:"document"`
}

// Upload stores the file in the object store first, then records the
// metadata row. A missing draft id opens a fresh draft so documents can
// arrive before the work locations do.
func (s *DocumentService) Upload(ctx context.Context, principal model.Principal, input UploadInput) (*UploadResult, error) {
	if input.FileName == "" || input.Body == nil {
		return nil, fmt.Errorf("%w: file required", ErrInvalidInput)
	}
	if input.DocumentType == "" {
		return nil, fmt.Errorf("%w: documentType required", ErrInvalidInput)
	}

	draftID := input.DraftID
	if draftID == 0 {
		if len(input.StretchIDs) == 0 {
			return nil, fmt.Errorf("%w: stretch set must not be empty", ErrInvalidInput)
		}
		created, err := s.contracts.CreateDraft(ctx, input.StretchIDs, principal.UserID)
		if err != nil {
			return nil, err
		}
		draftID = created
	} else {
		contract, err := s.contracts.GetContract(ctx, draftID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: draft %d", ErrNotFound, draftID)
			}
			return nil, err
		}
		if contract.Status.Terminal() {
			return nil, fmt.Errorf("%w: contract %d is closed", ErrConflict, draftID)
		}
	}

	// The uuid prefix keeps same-named uploads from clobbering each other.
	key := fmt.Sprintf("%s/%s-%s", s.folder, uuid.NewString(), input.FileName)
	if err := s.objects.Put(ctx, key, input.Body, input.ContentType); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("object store put failed")
		return nil, fmt.Errorf("%w: object store put: %v", ErrUpstream, err)
	}

	saved, err := s.documents.Insert(ctx, &model.Document{
		ContractID:   draftID,
		DocumentType: input.DocumentType,
		DocumentName: input.FileName,
		KeyName:      key,
		DocumentPath: s.objects.ObjectURL(key),
		Status:       model.StatusDraft,
		CreatedBy:    principal.UserID,
	})
	if err != nil {
		// Roll the orphaned object back; the metadata row is the source of truth.
		if delErr := s.objects.Delete(ctx, key); delErr != nil {
			s.log.Error().Err(delErr).Str("key", key).Msg("orphaned object cleanup failed")
		}
		return nil, err
	}

	s.writeAudit(ctx, principal, draftID, "document", input.FileName)
	return &UploadResult{DraftID: draftID, Document: *saved}, nil
}

func (s *DocumentService) List(ctx context.Context, contractID int64) ([]model.Document, error) {
	return s.documents.ListByContract(ctx, contractID)
}

// DownloadURL returns a time-limited link to the stored object.
func (s *DocumentService) DownloadURL(ctx context.Context, id int64) (string, error) {
	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: document %d", ErrNotFound, id)
		}
		return "", err
	}
	if doc.IsDeleted {
		return "", fmt.Errorf("%w: document %d is deleted", ErrNotFound, id)
	}
	url, err := s.objects.PresignGet(ctx, doc.KeyName, 15*time.Minute)
	if err != nil {
		return "", fmt.Errorf("%w: presign: %v", ErrUpstream, err)
	}
	return url, nil
}

// Delete removes the object and soft-deletes the metadata row. Deleting an
// already-deleted document is a no-op.
func (s *DocumentService) Delete(ctx context.Context, principal model.Principal, id int64) error {
	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: document %d", ErrNotFound, id)
		}
		return err
	}
	if doc.IsDeleted {
		return nil
	}
	if err := s.objects.Delete(ctx, doc.KeyName); err != nil {
		return fmt.Errorf("%w: object store delete: %v", ErrUpstream, err)
	}
	if err := s.documents.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.writeAudit(ctx, principal, doc.ContractID, "document_deleted", doc.DocumentName)
	return nil
}

func (s *DocumentService) writeAudit(ctx context.Context, principal model.Principal, contractID int64, field, value string) {
	err := s.audit.Insert(ctx, &model.ChangeLog{
		ContractID:    fmt.Sprintf("%d", contractID),
		FeatureModule: featureModuleUCC,
		ChangedField:  field,
		NewValue:      value,
		ChangedBy:     principal.UserID,
	})
	if err != nil {
		s.log.Error().Err(err).Int64("contract", contractID).Str("field", field).Msg("change log write failed")
	}
}
