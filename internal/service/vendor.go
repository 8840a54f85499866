package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/localmarkets/marketplace/internal/domain"
	"github.com/localmarkets/marketplace/internal/repository"
)

var (
	ErrVendorNotFound = repository.ErrVendorNotFound
	ErrEmptyGood      = errors.New("item must not be empty")
)

type VendorRepository interface {
	FindByUserID(ctx context.Context, userID uint) (domain.Vendor, error)
	AddGood(ctx context.Context, userID uint, item string) error
	RemoveGood(ctx context.Context, userID uint, item string) error
	CountProducts(ctx context.Context, vendorID uint) (int64, error)
}

type VendorService struct {
	repo VendorRepository
}

func NewVendorService(repo VendorRepository) *VendorService {
	return &VendorService{
		repo: repo,
	}
}

func (s *VendorService) GetDashboard(ctx context.Context, userID uint) (domain.Dashboard, error) {
	vendor, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return domain.Dashboard{}, fmt.Errorf("s.repo.FindByUserID -> %w", err)
	}

	count, err := s.repo.CountProducts(ctx, vendor.ID)
	if err != nil {
		return domain.Dashboard{}, fmt.Errorf("s.repo.CountProducts -> %w", err)
	}

	dashboard := domain.Dashboard{
		Vendor:       vendor,
		ProductCount: count,
	}
	if vendor.Market != nil {
		dashboard.Market = *vendor.Market
		dashboard.Vendor.Market = nil
	}

	return dashboard, nil
}

// AddGood records item on the vendor's goods list and returns the list.
// Adding an item that is already listed is a no-op.
func (s *VendorService) AddGood(ctx context.Context, userID uint, item string) ([]string, error) {
	item = strings.TrimSpace(item)
	if item == "" {
		return nil, ErrEmptyGood
	}

	if err := s.repo.AddGood(ctx, userID, item); err != nil {
		return nil, fmt.Errorf("s.repo.AddGood -> %w", err)
	}

	return s.goods(ctx, userID)
}

func (s *VendorService) RemoveGood(ctx context.Context, userID uint, item string) ([]string, error) {
	item = strings.TrimSpace(item)
	if item == "" {
		return nil, ErrEmptyGood
	}

	if err := s.repo.RemoveGood(ctx, userID, item); err != nil {
		return nil, fmt.Errorf("s.repo.RemoveGood -> %w", err)
	}

	return s.goods(ctx, userID)
}

func (s *VendorService) goods(ctx context.Context, userID uint) ([]string, error) {
	vendor, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByUserID -> %w", err)
	}

	return vendor.GoodsSold, nil
}
