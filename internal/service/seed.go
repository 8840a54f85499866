package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/localmarkets/marketplace/internal/domain"
	"github.com/localmarkets/marketplace/internal/repository"
)

type SeedMarket struct {
	Market  domain.Market
	Vendors []SeedVendor
}

type SeedVendor struct {
	Registration domain.Registration
	Goods        []string
	Products     []domain.Product
}

type SeedReport struct {
	Markets        int
	Vendors        int
	SkippedVendors int
	Products       int
}

type SeedMarketRepository interface {
	Upsert(ctx context.Context, market domain.Market) (domain.Market, error)
}

type SeedVendorRepository interface {
	FindByPhone(ctx context.Context, phone string) (domain.Vendor, error)
}

type SeedProductRepository interface {
	Create(ctx context.Context, product domain.Product) (domain.Product, error)
}

// Seeder loads catalogue fixtures. Markets are matched by name and vendors by
// phone, so running it twice leaves the data unchanged.
type Seeder struct {
	markets  SeedMarketRepository
	users    AuthUserRepository
	vendors  SeedVendorRepository
	products SeedProductRepository
}

func NewSeeder(markets SeedMarketRepository, users AuthUserRepository, vendors SeedVendorRepository, products SeedProductRepository) *Seeder {
	return &Seeder{
		markets:  markets,
		users:    users,
		vendors:  vendors,
		products: products,
	}
}

func (s *Seeder) Seed(ctx context.Context, markets []SeedMarket) (SeedReport, error) {
	var report SeedReport

	for _, sm := range markets {
		market, err := s.markets.Upsert(ctx, sm.Market)
		if err != nil {
			return report, fmt.Errorf("s.markets.Upsert(%s) -> %w", sm.Market.Name, err)
		}
		report.Markets++

		for _, sv := range sm.Vendors {
			created, err := s.seedVendor(ctx, market.ID, sv)
			if err != nil {
				return report, err
			}
			if !created {
				report.SkippedVendors++
				continue
			}
			report.Vendors++
			report.Products += len(sv.Products)
		}
	}

	return report, nil
}

func (s *Seeder) seedVendor(ctx context.Context, marketID uint, sv SeedVendor) (bool, error) {
	reg := sv.Registration

	_, err := s.vendors.FindByPhone(ctx, reg.Phone)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrVendorNotFound) {
		return false, fmt.Errorf("s.vendors.FindByPhone(%s) -> %w", reg.Phone, err)
	}

	hashedPassword, err := hashPassword(reg.Password)
	if err != nil {
		return false, err
	}

	goods := sv.Goods
	if goods == nil {
		goods = []string{}
	}

	_, vendor, err := s.users.CreateWithVendor(ctx, domain.User{
		Name:     reg.Name,
		Phone:    reg.Phone,
		Email:    reg.Email,
		Password: hashedPassword,
	}, domain.Vendor{
		Name:      reg.Name,
		Phone:     reg.Phone,
		Email:     reg.Email,
		Website:   reg.Website,
		GoodsSold: goods,
		MarketID:  marketID,
	})
	if err != nil {
		return false, fmt.Errorf("s.users.CreateWithVendor(%s) -> %w", reg.Phone, err)
	}

	for _, p := range sv.Products {
		p.VendorID = vendor.ID
		if _, err = s.products.Create(ctx, p); err != nil {
			return false, fmt.Errorf("s.products.Create(%s) -> %w", p.Name, err)
		}
	}

	return true, nil
}
