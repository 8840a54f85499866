package repository

import (
	"context"
	"fmt"

	"github.com/localmarkets/marketplace/internal/domain"
	"github.com/localmarkets/marketplace/internal/repository/dao"
)

var (
	ErrProductNotFound = dao.ErrProductNotFound
)

type ProductDAO interface {
	Search(ctx context.Context, term string, tokens []string, offset, limit int) ([]dao.Product, int64, error)
	FindAll(ctx context.Context, query dao.ProductQuery) ([]dao.Product, error)
	FindByID(ctx context.Context, id uint) (dao.Product, error)
	FindOwned(ctx context.Context, id, userID uint) (dao.Product, error)
	Insert(ctx context.Context, product dao.Product) (dao.Product, error)
	Update(ctx context.Context, userID uint, product dao.Product, replaceImages bool) (dao.Product, error)
	DeleteOwned(ctx context.Context, id, userID uint) (dao.Product, error)
}

type ProductRepository struct {
	dao ProductDAO
}

func NewProductRepository(dao ProductDAO) *ProductRepository {
	return &ProductRepository{
		dao: dao,
	}
}

// Search returns the requested page of products matching term together with
// the total number of matches.
func (r *ProductRepository) Search(ctx context.Context, term string, tokens []string, page, limit int) ([]domain.Product, int64, error) {
	found, total, err := r.dao.Search(ctx, term, tokens, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("r.dao.Search -> %w", err)
	}

	return productsDaoToDomain(found), total, nil
}

func (r *ProductRepository) FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	found, err := r.dao.FindAll(ctx, dao.ProductQuery{UserID: filter.UserID, MarketID: filter.MarketID})
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	return productsDaoToDomain(found), nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id uint) (domain.Product, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return productDaoToDomain(found), nil
}

func (r *ProductRepository) FindOwned(ctx context.Context, id, userID uint) (domain.Product, error) {
	found, err := r.dao.FindOwned(ctx, id, userID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("r.dao.FindOwned -> %w", err)
	}

	return productDaoToDomain(found), nil
}

func (r *ProductRepository) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	created, err := r.dao.Insert(ctx, productDomainToDao(product))
	if err != nil {
		return domain.Product{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return productDaoToDomain(created), nil
}

func (r *ProductRepository) Update(ctx context.Context, userID uint, product domain.Product, replaceImages bool) (domain.Product, error) {
	updated, err := r.dao.Update(ctx, userID, productDomainToDao(product), replaceImages)
	if err != nil {
		return domain.Product{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return productDaoToDomain(updated), nil
}

func (r *ProductRepository) DeleteOwned(ctx context.Context, id, userID uint) (domain.Product, error) {
	deleted, err := r.dao.DeleteOwned(ctx, id, userID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("r.dao.DeleteOwned -> %w", err)
	}

	return productDaoToDomain(deleted), nil
}

func productDomainToDao(p domain.Product) dao.Product {
	tags := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		tags = append(tags, string(t))
	}

	images := make([]dao.ProductImage, 0, len(p.Images))
	for i, url := range p.Images {
		images = append(images, dao.ProductImage{URL: url, Position: i})
	}

	return dao.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Image:       p.Image,
		Images:      images,
		Tags:        tags,
		VendorID:    p.VendorID,
	}
}

func productsDaoToDomain(products []dao.Product) []domain.Product {
	result := make([]domain.Product, 0, len(products))
	for _, p := range products {
		result = append(result, productDaoToDomain(p))
	}

	return result
}

func productDaoToDomain(p dao.Product) domain.Product {
	product := domain.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Image:       p.Image,
		Images:      make([]string, 0, len(p.Images)),
		Tags:        make([]domain.Tag, 0, len(p.Tags)),
		VendorID:    p.VendorID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}

	for _, img := range p.Images {
		product.Images = append(product.Images, img.URL)
	}
	for _, t := range p.Tags {
		product.Tags = append(product.Tags, domain.Tag(t))
	}

	if p.Vendor.ID != 0 {
		vendor := vendorDaoToDomain(p.Vendor)
		product.Vendor = &vendor
	}

	return product
}
