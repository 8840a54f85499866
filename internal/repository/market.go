package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/localmarkets/marketplace/internal/domain"
	"github.com/localmarkets/marketplace/internal/repository/dao"
)

var (
	ErrMarketNotFound = dao.ErrMarketNotFound
)

type MarketDAO interface {
	FindAll(ctx context.Context) ([]dao.Market, error)
	FindByID(ctx context.Context, id uint) (dao.Market, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Search(ctx context.Context, term string, limit int) ([]dao.Market, error)
	FindScheduled(ctx context.Context) ([]dao.Market, error)
	UpdateDates(ctx context.Context, id uint, prev, next time.Time) error
	Upsert(ctx context.Context, market dao.Market) (dao.Market, error)
	InsertSuggestion(ctx context.Context, s dao.MarketSuggestion) (dao.MarketSuggestion, error)
}

type MarketRepository struct {
	dao MarketDAO
}

func NewMarketRepository(dao MarketDAO) *MarketRepository {
	return &MarketRepository{
		dao: dao,
	}
}

func (r *MarketRepository) FindAll(ctx context.Context) ([]domain.Market, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	return marketsDaoToDomain(found), nil
}

func (r *MarketRepository) FindByID(ctx context.Context, id uint) (domain.Market, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Market{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return marketDaoToDomain(found), nil
}

func (r *MarketRepository) Exists(ctx context.Context, id uint) (bool, error) {
	ok, err := r.dao.Exists(ctx, id)
	if err != nil {
		return false, fmt.Errorf("r.dao.Exists -> %w", err)
	}

	return ok, nil
}

func (r *MarketRepository) Search(ctx context.Context, term string, limit int) ([]domain.Market, error) {
	found, err := r.dao.Search(ctx, term, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.Search -> %w", err)
	}

	return marketsDaoToDomain(found), nil
}

func (r *MarketRepository) FindScheduled(ctx context.Context) ([]domain.Market, error) {
	found, err := r.dao.FindScheduled(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindScheduled -> %w", err)
	}

	return marketsDaoToDomain(found), nil
}

func (r *MarketRepository) UpdateDates(ctx context.Context, id uint, prev, next time.Time) error {
	if err := r.dao.UpdateDates(ctx, id, prev, next); err != nil {
		return fmt.Errorf("r.dao.UpdateDates -> %w", err)
	}

	return nil
}

func (r *MarketRepository) Upsert(ctx context.Context, market domain.Market) (domain.Market, error) {
	saved, err := r.dao.Upsert(ctx, dao.Market{
		Name:        market.Name,
		Description: market.Description,
		Location:    market.Location,
		Image:       market.Image,
		Images:      market.Images,
		PrevDate:    market.PrevDate,
		NextDate:    market.NextDate,
	})
	if err != nil {
		return domain.Market{}, fmt.Errorf("r.dao.Upsert -> %w", err)
	}

	return marketDaoToDomain(saved), nil
}

func (r *MarketRepository) CreateSuggestion(ctx context.Context, s domain.MarketSuggestion) (domain.MarketSuggestion, error) {
	created, err := r.dao.InsertSuggestion(ctx, dao.MarketSuggestion{
		Name:     s.Name,
		Location: s.Location,
		Contact:  s.Contact,
	})
	if err != nil {
		return domain.MarketSuggestion{}, fmt.Errorf("r.dao.InsertSuggestion -> %w", err)
	}

	return domain.MarketSuggestion{
		ID:        created.ID,
		Name:      created.Name,
		Location:  created.Location,
		Contact:   created.Contact,
		CreatedAt: created.CreatedAt,
	}, nil
}

func marketsDaoToDomain(markets []dao.Market) []domain.Market {
	result := make([]domain.Market, 0, len(markets))
	for _, m := range markets {
		result = append(result, marketDaoToDomain(m))
	}

	return result
}

func marketDaoToDomain(m dao.Market) domain.Market {
	market := domain.Market{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Location:    m.Location,
		Image:       m.Image,
		Images:      append([]string{}, m.Images...),
		PrevDate:    m.PrevDate,
		NextDate:    m.NextDate,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}

	if len(m.Vendors) > 0 {
		market.Vendors = make([]domain.Vendor, 0, len(m.Vendors))
		for _, v := range m.Vendors {
			market.Vendors = append(market.Vendors, vendorDaoToDomain(v))
		}
	}

	return market
}
