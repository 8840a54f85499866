package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/localmarkets/marketplace/internal/domain"
	"github.com/localmarkets/marketplace/internal/media"
	"github.com/localmarkets/marketplace/internal/metrics"
	"github.com/localmarkets/marketplace/internal/repository"
)

const (
	DefaultSearchLimit = 12
	MaxSearchLimit     = 100
)

var (
	ErrProductNotFound  = repository.ErrProductNotFound
	ErrUnsupportedImage = media.ErrUnsupportedType
	ErrImageTooLarge    = media.ErrTooLarge
	ErrInvalidPage      = errors.New("page and limit must be positive integers")
)

type ProductRepository interface {
	Search(ctx context.Context, term string, tokens []string, page, limit int) ([]domain.Product, int64, error)
	FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	FindByID(ctx context.Context, id uint) (domain.Product, error)
	FindOwned(ctx context.Context, id, userID uint) (domain.Product, error)
	Create(ctx context.Context, product domain.Product) (domain.Product, error)
	Update(ctx context.Context, userID uint, product domain.Product, replaceImages bool) (domain.Product, error)
	DeleteOwned(ctx context.Context, id, userID uint) (domain.Product, error)
}

type VendorFinder interface {
	FindByUserID(ctx context.Context, userID uint) (domain.Vendor, error)
}

type MediaStore interface {
	Check(f media.File) error
	Upload(ctx context.Context, f media.File) (string, error)
	Delete(ctx context.Context, url string) error
}

type ProductService struct {
	repo    ProductRepository
	vendors VendorFinder
	media   MediaStore
}

func NewProductService(repo ProductRepository, vendors VendorFinder, media MediaStore) *ProductService {
	return &ProductService{
		repo:    repo,
		vendors: vendors,
		media:   media,
	}
}

// SearchProducts returns one page of products whose name, description, tags
// or vendor name match q. A blank q matches every product.
func (s *ProductService) SearchProducts(ctx context.Context, q string, page, limit int) (domain.ProductPage, error) {
	if page < 1 || limit < 1 {
		return domain.ProductPage{}, ErrInvalidPage
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	q = strings.TrimSpace(q)
	tokens := strings.Fields(strings.ToUpper(q))

	products, total, err := s.repo.Search(ctx, q, tokens, page, limit)
	if err != nil {
		return domain.ProductPage{}, fmt.Errorf("s.repo.Search -> %w", err)
	}

	return domain.ProductPage{
		Products:   products,
		Pagination: domain.NewPagination(total, page, limit),
	}, nil
}

func (s *ProductService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	products, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return products, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id uint) (domain.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return product, nil
}

// CreateProduct stores a product for the vendor owned by userID. The first
// file becomes the primary image and the rest are kept in order.
func (s *ProductService) CreateProduct(ctx context.Context, userID uint, product domain.Product, files []media.File) (domain.Product, error) {
	vendor, err := s.vendors.FindByUserID(ctx, userID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("s.vendors.FindByUserID -> %w", err)
	}

	urls, err := s.uploadAll(ctx, files)
	if err != nil {
		return domain.Product{}, err
	}

	product.ID = 0
	product.VendorID = vendor.ID
	product.Image, product.Images = splitImages(urls)

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		s.deleteAll(ctx, urls)
		return domain.Product{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

// UpdateProduct rewrites an owned product. Supplying files replaces the whole
// image set; the superseded objects are removed once the row is saved.
func (s *ProductService) UpdateProduct(ctx context.Context, userID uint, product domain.Product, files []media.File) (domain.Product, error) {
	existing, err := s.repo.FindOwned(ctx, product.ID, userID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("s.repo.FindOwned -> %w", err)
	}

	product.VendorID = existing.VendorID
	product.Image, product.Images = existing.Image, existing.Images

	replace := len(files) > 0
	var urls []string
	if replace {
		urls, err = s.uploadAll(ctx, files)
		if err != nil {
			return domain.Product{}, err
		}
		product.Image, product.Images = splitImages(urls)
	}

	updated, err := s.repo.Update(ctx, userID, product, replace)
	if err != nil {
		s.deleteAll(ctx, urls)
		return domain.Product{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	if replace {
		s.deleteAll(ctx, existing.ImageURLs())
	}

	updated.CreatedAt = existing.CreatedAt
	return updated, nil
}

// DeleteProduct removes an owned product and then its stored images. Image
// removal failures are logged and never fail the call.
func (s *ProductService) DeleteProduct(ctx context.Context, userID, id uint) error {
	deleted, err := s.repo.DeleteOwned(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("s.repo.DeleteOwned -> %w", err)
	}

	s.deleteAll(ctx, deleted.ImageURLs())

	return nil
}

func (s *ProductService) uploadAll(ctx context.Context, files []media.File) ([]string, error) {
	for _, f := range files {
		if err := s.media.Check(f); err != nil {
			return nil, err
		}
	}

	urls := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			url, err := s.media.Upload(gctx, f)
			if err != nil {
				return fmt.Errorf("s.media.Upload(%s) -> %w", f.Name, err)
			}
			urls[i] = url
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.deleteAll(ctx, urls)
		return nil, err
	}

	return urls, nil
}

func (s *ProductService) deleteAll(ctx context.Context, urls []string) {
	for _, url := range urls {
		if url == "" {
			continue
		}
		if err := s.media.Delete(context.WithoutCancel(ctx), url); err != nil {
			metrics.MediaDeleteFailures.Inc()
			zap.L().Warn("failed to delete product image", zap.String("url", url), zap.Error(err))
		}
	}
}

func splitImages(urls []string) (string, []string) {
	if len(urls) == 0 {
		return "", []string{}
	}

	return urls[0], append([]string{}, urls[1:]...)
}
