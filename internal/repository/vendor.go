package repository

import (
	"context"
	"fmt"

	"github.com/localmarkets/marketplace/internal/domain"
	"github.com/localmarkets/marketplace/internal/repository/dao"
)

var (
	ErrVendorNotFound = dao.ErrVendorNotFound
)

type VendorDAO interface {
	FindByUserID(ctx context.Context, userID uint) (dao.Vendor, error)
	FindByPhone(ctx context.Context, phone string) (dao.Vendor, error)
	AddGood(ctx context.Context, userID uint, item string) error
	RemoveGood(ctx context.Context, userID uint, item string) error
	CountProducts(ctx context.Context, vendorID uint) (int64, error)
}

type VendorRepository struct {
	dao VendorDAO
}

func NewVendorRepository(dao VendorDAO) *VendorRepository {
	return &VendorRepository{
		dao: dao,
	}
}

func (r *VendorRepository) FindByUserID(ctx context.Context, userID uint) (domain.Vendor, error) {
	found, err := r.dao.FindByUserID(ctx, userID)
	if err != nil {
		return domain.Vendor{}, fmt.Errorf("r.dao.FindByUserID -> %w", err)
	}

	return vendorDaoToDomain(found), nil
}

func (r *VendorRepository) FindByPhone(ctx context.Context, phone string) (domain.Vendor, error) {
	found, err := r.dao.FindByPhone(ctx, phone)
	if err != nil {
		return domain.Vendor{}, fmt.Errorf("r.dao.FindByPhone -> %w", err)
	}

	return vendorDaoToDomain(found), nil
}

func (r *VendorRepository) AddGood(ctx context.Context, userID uint, item string) error {
	if err := r.dao.AddGood(ctx, userID, item); err != nil {
		return fmt.Errorf("r.dao.AddGood -> %w", err)
	}

	return nil
}

func (r *VendorRepository) RemoveGood(ctx context.Context, userID uint, item string) error {
	if err := r.dao.RemoveGood(ctx, userID, item); err != nil {
		return fmt.Errorf("r.dao.RemoveGood -> %w", err)
	}

	return nil
}

func (r *VendorRepository) CountProducts(ctx context.Context, vendorID uint) (int64, error) {
	count, err := r.dao.CountProducts(ctx, vendorID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountProducts -> %w", err)
	}

	return count, nil
}

func vendorDomainToDao(v domain.Vendor) dao.Vendor {
	goods := v.GoodsSold
	if goods == nil {
		goods = []string{}
	}

	return dao.Vendor{
		ID:        v.ID,
		Name:      v.Name,
		Phone:     v.Phone,
		Email:     v.Email,
		Website:   v.Website,
		GoodsSold: goods,
		MarketID:  v.MarketID,
		UserID:    v.UserID,
	}
}

func vendorDaoToDomain(v dao.Vendor) domain.Vendor {
	vendor := domain.Vendor{
		ID:        v.ID,
		Name:      v.Name,
		Phone:     v.Phone,
		Email:     v.Email,
		Website:   v.Website,
		GoodsSold: append([]string{}, v.GoodsSold...),
		MarketID:  v.MarketID,
		UserID:    v.UserID,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}

	if v.Market.ID != 0 {
		market := marketDaoToDomain(v.Market)
		vendor.Market = &market
	}

	if len(v.Products) > 0 {
		vendor.Products = make([]domain.Product, 0, len(v.Products))
		for _, p := range v.Products {
			vendor.Products = append(vendor.Products, productDaoToDomain(p))
		}
	}

	return vendor
}
