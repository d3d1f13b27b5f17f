package service

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/highwaynet/ucc-service/internal/model"
	"github.com/highwaynet/ucc-service/internal/repository"
)

// ListStore is the two-source list repository surface.
type ListStore interface {
	MappedUCCCodes(ctx context.Context, userID int64) ([]string, error)
	ListSegmentRows(ctx context.Context, f repository.ContractFilters, limit, offset int) ([]model.ContractRow, error)
	CountSegmentRows(ctx context.Context, f repository.ContractFilters) (int64, error)
	ListMasterRows(ctx context.Context, f repository.ContractFilters, limit, offset int) ([]model.ContractRow, error)
	CountMasterRows(ctx context.Context, f repository.ContractFilters) (int64, error)
	StretchNames(ctx context.Context, stretchIDs []string) (map[string]string, error)
	EditCounts(ctx context.Context, codes []string) (map[string]int64, error)
}

type ContractListService struct {
	lists ListStore
	log   zerolog.Logger
}

func NewContractListService(lists ListStore, log zerolog.Logger) *ContractListService {
	return &ContractListService{lists: lists, log: log}
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// ListQuery is the caller's filter and paging input for the blended list.
type ListQuery struct {
	StretchIDs []string
	PIU        []string
	RO         []string
	Program    []string
	Phase      []string
	TypeOfWork []string
	Scheme     []string
	Corridor   []string
	Search     string
	Page       int
	PageSize   int
}

func (q *ListQuery) normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
}

func (q ListQuery) filters() repository.ContractFilters {
	return repository.ContractFilters{
		StretchIDs: q.StretchIDs,
		PIU:        q.PIU,
		RO:         q.RO,
		Program:    q.Program,
		Phase:      q.Phase,
		TypeOfWork: q.TypeOfWork,
		Scheme:     q.Scheme,
		Corridor:   q.Corridor,
		Search:     q.Search,
	}
}

// GetContracts blends both backing sources into one page. The visible
// universe is the explicit stretch set when given, otherwise the caller's
// mapped contract codes; a caller with neither sees an empty page, not an
// error. Each source is paged with the same window and the fetched rows are
// merged ordered by contract code, segments source first on ties.
func (s *ContractListService) GetContracts(ctx context.Context, principal model.Principal, query ListQuery) (*model.Page, error) {
	query.normalize()
	filters := query.filters()

	if len(filters.StretchIDs) == 0 {
		codes, err := s.lists.MappedUCCCodes(ctx, principal.UserID)
		if err != nil {
			return nil, err
		}
		if len(codes) == 0 {
			return &model.Page{
				Page:     query.Page,
				PageSize: query.PageSize,
				Rows:     []model.ContractRow{},
			}, nil
		}
		filters.UCCCodes = codes
	}

	segmentCount, err := s.lists.CountSegmentRows(ctx, filters)
	if err != nil {
		return nil, err
	}
	masterCount, err := s.lists.CountMasterRows(ctx, filters)
	if err != nil {
		return nil, err
	}
	totalCount := segmentCount + masterCount

	offset := (query.Page - 1) * query.PageSize
	segmentRows, err := s.lists.ListSegmentRows(ctx, filters, query.PageSize, offset)
	if err != nil {
		return nil, err
	}
	masterRows, err := s.lists.ListMasterRows(ctx, filters, query.PageSize, offset)
	if err != nil {
		return nil, err
	}

	rows := mergeRows(segmentRows, masterRows)
	if err := s.decorate(ctx, principal, rows); err != nil {
		return nil, err
	}

	return &model.Page{
		Page:       query.Page,
		PageSize:   query.PageSize,
		TotalCount: totalCount,
		TotalPages: totalPages(totalCount, query.PageSize),
		Rows:       rows,
	}, nil
}

// ExportContracts returns every filtered row from both sources, unpaged,
// for CSV and spreadsheet downloads.
func (s *ContractListService) ExportContracts(ctx context.Context, principal model.Principal, query ListQuery) ([]model.ContractRow, error) {
	query.normalize()
	filters := query.filters()

	if len(filters.StretchIDs) == 0 {
		codes, err := s.lists.MappedUCCCodes(ctx, principal.UserID)
		if err != nil {
			return nil, err
		}
		if len(codes) == 0 {
			return []model.ContractRow{}, nil
		}
		filters.UCCCodes = codes
	}

	segmentCount, err := s.lists.CountSegmentRows(ctx, filters)
	if err != nil {
		return nil, err
	}
	masterCount, err := s.lists.CountMasterRows(ctx, filters)
	if err != nil {
		return nil, err
	}

	var segmentRows, masterRows []model.ContractRow
	if segmentCount > 0 {
		segmentRows, err = s.lists.ListSegmentRows(ctx, filters, int(segmentCount), 0)
		if err != nil {
			return nil, err
		}
	}
	if masterCount > 0 {
		masterRows, err = s.lists.ListMasterRows(ctx, filters, int(masterCount), 0)
		if err != nil {
			return nil, err
		}
	}

	rows := mergeRows(segmentRows, masterRows)
	if err := s.decorate(ctx, principal, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

const pageClampMessage = "Requested page is beyond the last page; returning the last page."

// GetMyStretchContracts serves the caller's segments-source contracts only.
// An out-of-range page clamps to the last valid page instead of erroring.
func (s *ContractListService) GetMyStretchContracts(ctx context.Context, principal model.Principal, query ListQuery) (*model.Page, error) {
	query.normalize()
	filters := query.filters()

	if len(filters.StretchIDs) == 0 {
		codes, err := s.lists.MappedUCCCodes(ctx, principal.UserID)
		if err != nil {
			return nil, err
		}
		if len(codes) == 0 {
			return &model.Page{
				Page:     query.Page,
				PageSize: query.PageSize,
				Rows:     []model.ContractRow{},
			}, nil
		}
		filters.UCCCodes = codes
	}

	totalCount, err := s.lists.CountSegmentRows(ctx, filters)
	if err != nil {
		return nil, err
	}
	pages := totalPages(totalCount, query.PageSize)

	message := ""
	if pages > 0 && query.Page > pages {
		query.Page = pages
		message = pageClampMessage
	}

	var rows []model.ContractRow
	if totalCount > 0 {
		offset := (query.Page - 1) * query.PageSize
		rows, err = s.lists.ListSegmentRows(ctx, filters, query.PageSize, offset)
		if err != nil {
			return nil, err
		}
	}
	if rows == nil {
		rows = []model.ContractRow{}
	}
	if err := s.decorate(ctx, principal, rows); err != nil {
		return nil, err
	}

	return &model.Page{
		Page:       query.Page,
		PageSize:   query.PageSize,
		TotalCount: totalCount,
		TotalPages: pages,
		Message:    message,
		Rows:       rows,
	}, nil
}

// decorate attaches stretch names to every row and, for reviewers only,
// the per-contract edit count.
func (s *ContractListService) decorate(ctx context.Context, principal model.Principal, rows []model.ContractRow) error {
	var stretchIDs []string
	seen := map[string]struct{}{}
	for _, row := range rows {
		if row.StretchID == nil || *row.StretchID == "" {
			continue
		}
		if _, ok := seen[*row.StretchID]; ok {
			continue
		}
		seen[*row.StretchID] = struct{}{}
		stretchIDs = append(stretchIDs, *row.StretchID)
	}
	if len(stretchIDs) > 0 {
		names, err := s.lists.StretchNames(ctx, stretchIDs)
		if err != nil {
			return err
		}
		for i := range rows {
			if rows[i].StretchID == nil {
				continue
			}
			if name, ok := names[*rows[i].StretchID]; ok && name != "" {
				rows[i].StretchName = name
			}
		}
	}

	if !principal.IsReviewer() {
		return nil
	}
	codes := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.UCC != "" {
			codes = append(codes, row.UCC)
		}
	}
	counts, err := s.lists.EditCounts(ctx, codes)
	if err != nil {
		return err
	}
	for i := range rows {
		count := counts[rows[i].UCC]
		rows[i].EditCount = &count
	}
	return nil
}

// mergeRows interleaves the two sources ordered by contract code. Both
// inputs arrive sorted; appending segments first and sorting stably keeps
// the segments row ahead of the master row for the same code.
func mergeRows(segmentRows, masterRows []model.ContractRow) []model.ContractRow {
	rows := make([]model.ContractRow, 0, len(segmentRows)+len(masterRows))
	rows = append(rows, segmentRows...)
	rows = append(rows, masterRows...)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].UCC < rows[j].UCC
	})
	return rows
}

func totalPages(totalCount int64, pageSize int) int {
	if totalCount == 0 || pageSize < 1 {
		return 0
	}
	return int((totalCount + int64(pageSize) - 1) / int64(pageSize))
}
