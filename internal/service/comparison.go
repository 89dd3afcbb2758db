package service

import (
	"context"
	"time"

	"github.com/deppfellow/tg-miniapp/internal/model"
)

type ComparisonService struct {
	users       *UserService
	comparisons ComparisonStore
	now         func() time.Time
}

func NewComparisonService(users *UserService, comparisons ComparisonStore, now func() time.Time) *ComparisonService {
	return &ComparisonService{users: users, comparisons: comparisons, now: now}
}

func (s *ComparisonService) List(ctx context.Context, telegramID int64) ([]model.Comparison, error) {
	userID, err := s.users.Resolve(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	comparisons, err := s.comparisons.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if comparisons == nil {
		comparisons = []model.Comparison{}
	}
	return comparisons, nil
}

func (s *ComparisonService) Create(ctx context.Context, telegramID int64, req *model.CreateComparisonRequest) (*model.Comparison, error) {
	userID, err := s.users.Resolve(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	return s.comparisons.Create(ctx, userID, req.ToNewComparison(s.now()))
}

func (s *ComparisonService) Delete(ctx context.Context, telegramID int64, rawID string) (*DeleteResult, error) {
	userID, err := s.users.Resolve(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	if _, err := s.comparisons.Delete(ctx, userID, id); err != nil {
		return nil, err
	}
	return &DeleteResult{Success: true}, nil
}
