package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/highwaynet/ucc-service/internal/model"
)

// StretchStore is the GIS reference surface the stretch endpoints use.
type StretchStore interface {
	UserStretches(ctx context.Context, userID int64) ([]model.Stretch, error)
	SplitLine(ctx context.Context, uccCode string, start, end model.Chainage) ([][]float64, error)
	ImplementationModes(ctx context.Context) ([]model.ImplementationMode, error)
}

type StretchService struct {
	stretches StretchStore
}

func NewStretchService(stretches StretchStore) *StretchService {
	return &StretchService{stretches: stretches}
}

// UserStretches returns the stretches behind the caller's mapped contracts.
func (s *StretchService) UserStretches(ctx context.Context, principal model.Principal) ([]model.Stretch, error) {
	stretches, err := s.stretches.UserStretches(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no stretches mapped to user %d", ErrNotFound, principal.UserID)
		}
		return nil, err
	}
	return stretches, nil
}

// SplitStretchLine cuts a contract's centerline between two chainage points.
func (s *StretchService) SplitStretchLine(ctx context.Context, uccCode string, start, end model.Chainage) ([][]float64, error) {
	if uccCode == "" {
		return nil, fmt.Errorf("%w: ucc required", ErrInvalidInput)
	}
	coords, err := s.stretches.SplitLine(ctx, uccCode, start, end)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no centerline for %s", ErrNotFound, uccCode)
		}
		return nil, err
	}
	return coords, nil
}

func (s *StretchService) ImplementationModes(ctx context.Context) ([]model.ImplementationMode, error) {
	return s.stretches.ImplementationModes(ctx)
}
