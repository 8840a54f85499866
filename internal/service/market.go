package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/localmarkets/marketplace/internal/domain"
	"github.com/localmarkets/marketplace/internal/marketday"
)

const marketSearchLimit = 10

type MarketRepository interface {
	FindAll(ctx context.Context) ([]domain.Market, error)
	FindByID(ctx context.Context, id uint) (domain.Market, error)
	Search(ctx context.Context, term string, limit int) ([]domain.Market, error)
	CreateSuggestion(ctx context.Context, s domain.MarketSuggestion) (domain.MarketSuggestion, error)
}

type MarketService struct {
	repo MarketRepository
	calc *marketday.Calculator
}

func NewMarketService(repo MarketRepository, calc *marketday.Calculator) *MarketService {
	return &MarketService{
		repo: repo,
		calc: calc,
	}
}

func (s *MarketService) ListMarkets(ctx context.Context) ([]domain.Market, error) {
	markets, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	for i := range markets {
		s.attachSchedule(&markets[i])
	}

	return markets, nil
}

func (s *MarketService) GetMarket(ctx context.Context, id uint) (domain.Market, error) {
	market, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Market{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	s.attachSchedule(&market)

	return market, nil
}

// SearchMarkets matches markets by name or location. A blank query returns
// every market.
func (s *MarketService) SearchMarkets(ctx context.Context, q string) ([]domain.Market, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return s.ListMarkets(ctx)
	}

	markets, err := s.repo.Search(ctx, q, marketSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("s.repo.Search -> %w", err)
	}

	for i := range markets {
		s.attachSchedule(&markets[i])
	}

	return markets, nil
}

func (s *MarketService) SuggestMarket(ctx context.Context, suggestion domain.MarketSuggestion) (domain.MarketSuggestion, error) {
	created, err := s.repo.CreateSuggestion(ctx, suggestion)
	if err != nil {
		return domain.MarketSuggestion{}, fmt.Errorf("s.repo.CreateSuggestion -> %w", err)
	}

	return created, nil
}

func (s *MarketService) attachSchedule(m *domain.Market) {
	if m.PrevDate == nil || m.NextDate == nil {
		return
	}

	schedule, err := s.calc.Compute(*m.PrevDate, *m.NextDate, 0)
	if err != nil {
		zap.L().Debug("market schedule skipped", zap.Uint("marketID", m.ID), zap.Error(err))
		return
	}

	m.Schedule = &schedule
}
