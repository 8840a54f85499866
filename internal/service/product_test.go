package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localmarkets/marketplace/internal/domain"
	"github.com/localmarkets/marketplace/internal/media"
)

func newTestProductService() (*ProductService, *fakeProductRepo, *fakeMedia) {
	repo := newFakeProductRepo()
	vendors := newFakeVendorRepo(domain.Vendor{ID: 20, UserID: 2, Phone: "+15550000002"})
	store := &fakeMedia{}
	return NewProductService(repo, vendors, store), repo, store
}

func files(names ...string) []media.File {
	out := make([]media.File, 0, len(names))
	for _, n := range names {
		out = append(out, media.File{Name: n, Size: 1, Body: strings.NewReader("x")})
	}
	return out
}

func TestProductService_SearchProducts(t *testing.T) {
	svc, repo, _ := newTestProductService()

	page, err := svc.SearchProducts(context.Background(), "  fresh bread ", 2, 500)
	require.NoError(t, err)
	assert.Equal(t, "fresh bread", repo.lastQuery.term)
	assert.Equal(t, []string{"FRESH", "BREAD"}, repo.lastQuery.tokens)
	assert.Equal(t, MaxSearchLimit, repo.lastQuery.limit)
	assert.Equal(t, domain.Pagination{Total: 25, Pages: 1, Page: 2, Limit: 100}, page.Pagination)

	_, err = svc.SearchProducts(context.Background(), "", 0, 12)
	assert.ErrorIs(t, err, ErrInvalidPage)
	_, err = svc.SearchProducts(context.Background(), "", 1, 0)
	assert.ErrorIs(t, err, ErrInvalidPage)
}

func TestProductService_CreateProduct(t *testing.T) {
	svc, repo, store := newTestProductService()

	created, err := svc.CreateProduct(context.Background(), 2, domain.Product{
		Name:  "Rye",
		Price: 4.5,
		Tags:  []domain.Tag{domain.TagBread},
	}, files("a.jpg", "b.png", "c.webp"))
	require.NoError(t, err)
	assert.Equal(t, uint(20), created.VendorID)
	assert.Equal(t, "https://cdn.test/products/a.jpg", created.Image)
	assert.Equal(t, []string{"https://cdn.test/products/b.png", "https://cdn.test/products/c.webp"}, created.Images)
	assert.Len(t, store.uploaded, 3)
	assert.Len(t, repo.products, 1)
}

func TestProductService_CreateProduct_NoVendor(t *testing.T) {
	svc, _, store := newTestProductService()

	_, err := svc.CreateProduct(context.Background(), 99, domain.Product{Name: "Rye"}, files("a.jpg"))
	assert.ErrorIs(t, err, ErrVendorNotFound)
	assert.Empty(t, store.uploaded)
}

func TestProductService_CreateProduct_RejectsBadImage(t *testing.T) {
	svc, repo, store := newTestProductService()
	store.checkErr = media.ErrUnsupportedType

	_, err := svc.CreateProduct(context.Background(), 2, domain.Product{Name: "Rye"}, files("a.gif"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
	assert.Empty(t, store.uploaded)
	assert.Empty(t, repo.products)
}

func TestProductService_CreateProduct_CleansUpOnUploadFailure(t *testing.T) {
	svc, repo, store := newTestProductService()
	store.failOn = "b.png"

	_, err := svc.CreateProduct(context.Background(), 2, domain.Product{Name: "Rye"}, files("a.jpg", "b.png"))
	require.Error(t, err)
	assert.ElementsMatch(t, store.uploaded, store.deleted)
	assert.Empty(t, repo.products)
}

func TestProductService_CreateProduct_CleansUpOnStoreFailure(t *testing.T) {
	svc, repo, store := newTestProductService()
	repo.createErr = errors.New("insert failed")

	_, err := svc.CreateProduct(context.Background(), 2, domain.Product{Name: "Rye"}, files("a.jpg", "b.png"))
	assert.ErrorContains(t, err, "insert failed")
	assert.ElementsMatch(t, []string{"https://cdn.test/products/a.jpg", "https://cdn.test/products/b.png"}, store.deleted)
}

func TestProductService_UpdateProduct_ReplacesImages(t *testing.T) {
	svc, repo, store := newTestProductService()
	repo.products[1] = domain.Product{ID: 1, Name: "Rye", VendorID: 20, Image: "https://cdn.test/products/old.jpg", Images: []string{"https://cdn.test/products/old2.jpg"}}
	repo.owners[1] = 2

	updated, err := svc.UpdateProduct(context.Background(), 2, domain.Product{ID: 1, Name: "Dark rye", Price: 5}, files("new.jpg"))
	require.NoError(t, err)
	assert.True(t, repo.replaced)
	assert.Equal(t, "Dark rye", updated.Name)
	assert.Equal(t, "https://cdn.test/products/new.jpg", updated.Image)
	assert.Empty(t, updated.Images)
	assert.Equal(t, []string{"https://cdn.test/products/old.jpg", "https://cdn.test/products/old2.jpg"}, store.deleted)
}

func TestProductService_UpdateProduct_KeepsImagesWithoutFiles(t *testing.T) {
	svc, repo, store := newTestProductService()
	repo.products[1] = domain.Product{ID: 1, Name: "Rye", VendorID: 20, Image: "https://cdn.test/products/old.jpg"}
	repo.owners[1] = 2

	updated, err := svc.UpdateProduct(context.Background(), 2, domain.Product{ID: 1, Name: "Rye loaf"}, nil)
	require.NoError(t, err)
	assert.False(t, repo.replaced)
	assert.Equal(t, "https://cdn.test/products/old.jpg", updated.Image)
	assert.Empty(t, store.deleted)
}

func TestProductService_UpdateProduct_NotOwned(t *testing.T) {
	svc, repo, store := newTestProductService()
	repo.products[1] = domain.Product{ID: 1, Name: "Rye", VendorID: 30}
	repo.owners[1] = 3

	_, err := svc.UpdateProduct(context.Background(), 2, domain.Product{ID: 1, Name: "Mine now"}, files("a.jpg"))
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Empty(t, store.uploaded)
}

func TestProductService_DeleteProduct(t *testing.T) {
	svc, repo, store := newTestProductService()
	repo.products[1] = domain.Product{ID: 1, Image: "https://cdn.test/products/a.jpg", Images: []string{"https://cdn.test/products/b.jpg"}}
	repo.owners[1] = 2
	store.deleteErr = errors.New("media host down")

	require.NoError(t, svc.DeleteProduct(context.Background(), 2, 1))
	assert.Empty(t, repo.products)
	assert.Len(t, store.deleted, 2)

	assert.ErrorIs(t, svc.DeleteProduct(context.Background(), 2, 1), ErrProductNotFound)
}
