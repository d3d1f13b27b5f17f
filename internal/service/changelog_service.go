package service

import (
	"context"
	"fmt"

	"github.com/highwaynet/ucc-service/internal/model"
)

// ChangeLogStore pages a user's audit trail.
type ChangeLogStore interface {
	Insert(ctx context.Context, entry *model.ChangeLog) error
	ListByUser(ctx context.Context, userID int64, featureModule string, limit, offset int) ([]model.ChangeLog, error)
	CountByUser(ctx context.Context, userID int64, featureModule string) (int64, error)
}

type ChangeLogService struct {
	logs ChangeLogStore
}

func NewChangeLogService(logs ChangeLogStore) *ChangeLogService {
	return &ChangeLogService{logs: logs}
}

// Add records one audit entry on behalf of the caller.
func (s *ChangeLogService) Add(ctx context.Context, principal model.Principal, contractCode, featureModule, field, value string) error {
	if contractCode == "" || featureModule == "" || field == "" {
		return fmt.Errorf("%w: uccId, featureModule and changedField are required", ErrInvalidInput)
	}
	return s.logs.Insert(ctx, &model.ChangeLog{
		ContractID:    contractCode,
		FeatureModule: featureModule,
		ChangedField:  field,
		NewValue:      value,
		ChangedBy:     principal.UserID,
	})
}

// LogPage is the paged audit-trail envelope.
type LogPage struct {
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalCount int64             `json:"totalCount"`
	TotalPages int               `json:"totalPages"`
	Message    string            `json:"message,omitempty"`
	Entries    []model.ChangeLog `json:"entries"`
}

// List pages the caller's own entries for one feature module, newest
// first. An out-of-range page clamps to the last valid page.
func (s *ChangeLogService) List(ctx context.Context, principal model.Principal, featureModule string, page, pageSize int) (*LogPage, error) {
	if featureModule == "" {
		featureModule = featureModuleUCC
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	totalCount, err := s.logs.CountByUser(ctx, principal.UserID, featureModule)
	if err != nil {
		return nil, err
	}
	pages := totalPages(totalCount, pageSize)

	message := ""
	if pages > 0 && page > pages {
		page = pages
		message = pageClampMessage
	}

	entries := []model.ChangeLog{}
	if totalCount > 0 {
		entries, err = s.logs.ListByUser(ctx, principal.UserID, featureModule, pageSize, (page-1)*pageSize)
		if err != nil {
			return nil, err
		}
	}

	return &LogPage{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: pages,
		Message:    message,
		Entries:    entries,
	}, nil
}
