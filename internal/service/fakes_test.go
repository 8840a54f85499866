package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/localmarkets/marketplace/internal/domain"
	"github.com/localmarkets/marketplace/internal/media"
	"github.com/localmarkets/marketplace/internal/repository"
)

type fakeUserRepo struct {
	byPhone   map[string]domain.User
	created   []domain.Vendor
	createErr error
	nextID    uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byPhone: map[string]domain.User{}}
}

func (f *fakeUserRepo) CreateWithVendor(_ context.Context, user domain.User, vendor domain.Vendor) (domain.User, domain.Vendor, error) {
	if f.createErr != nil {
		return domain.User{}, domain.Vendor{}, f.createErr
	}
	f.nextID++
	user.ID = f.nextID
	vendor.ID = f.nextID + 100
	vendor.UserID = user.ID
	f.byPhone[user.Phone] = user
	f.created = append(f.created, vendor)
	return user, vendor, nil
}

func (f *fakeUserRepo) FindByPhone(_ context.Context, phone string) (domain.User, error) {
	u, ok := f.byPhone[phone]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uint) (domain.User, error) {
	for _, u := range f.byPhone {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, repository.ErrUserNotFound
}

type fakeMarketRepo struct {
	markets     map[uint]domain.Market
	suggestions []domain.MarketSuggestion
	updates     map[uint][2]time.Time
	searched    string
	err         error
}

func newFakeMarketRepo(markets ...domain.Market) *fakeMarketRepo {
	f := &fakeMarketRepo{markets: map[uint]domain.Market{}, updates: map[uint][2]time.Time{}}
	for _, m := range markets {
		f.markets[m.ID] = m
	}
	return f
}

func (f *fakeMarketRepo) Exists(_ context.Context, id uint) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.markets[id]
	return ok, nil
}

func (f *fakeMarketRepo) FindAll(_ context.Context) ([]domain.Market, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Market
	for id := uint(1); id <= uint(len(f.markets)+10); id++ {
		if m, ok := f.markets[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMarketRepo) FindByID(_ context.Context, id uint) (domain.Market, error) {
	m, ok := f.markets[id]
	if !ok {
		return domain.Market{}, repository.ErrMarketNotFound
	}
	return m, nil
}

func (f *fakeMarketRepo) Search(ctx context.Context, term string, _ int) ([]domain.Market, error) {
	f.searched = term
	return f.FindAll(ctx)
}

func (f *fakeMarketRepo) FindScheduled(ctx context.Context) ([]domain.Market, error) {
	return f.FindAll(ctx)
}

func (f *fakeMarketRepo) UpdateDates(_ context.Context, id uint, prev, next time.Time) error {
	f.updates[id] = [2]time.Time{prev, next}
	return nil
}

func (f *fakeMarketRepo) Upsert(_ context.Context, m domain.Market) (domain.Market, error) {
	for id, existing := range f.markets {
		if existing.Name == m.Name {
			m.ID = id
			f.markets[id] = m
			return m, nil
		}
	}
	m.ID = uint(len(f.markets) + 1)
	f.markets[m.ID] = m
	return m, nil
}

func (f *fakeMarketRepo) CreateSuggestion(_ context.Context, s domain.MarketSuggestion) (domain.MarketSuggestion, error) {
	s.ID = uint(len(f.suggestions) + 1)
	f.suggestions = append(f.suggestions, s)
	return s, nil
}

type fakeVendorRepo struct {
	byUser  map[uint]domain.Vendor
	byPhone map[string]domain.Vendor
	count   int64
}

func newFakeVendorRepo(vendors ...domain.Vendor) *fakeVendorRepo {
	f := &fakeVendorRepo{byUser: map[uint]domain.Vendor{}, byPhone: map[string]domain.Vendor{}}
	for _, v := range vendors {
		f.byUser[v.UserID] = v
		f.byPhone[v.Phone] = v
	}
	return f
}

func (f *fakeVendorRepo) FindByUserID(_ context.Context, userID uint) (domain.Vendor, error) {
	v, ok := f.byUser[userID]
	if !ok {
		return domain.Vendor{}, repository.ErrVendorNotFound
	}
	return v, nil
}

func (f *fakeVendorRepo) FindByPhone(_ context.Context, phone string) (domain.Vendor, error) {
	v, ok := f.byPhone[phone]
	if !ok {
		return domain.Vendor{}, repository.ErrVendorNotFound
	}
	return v, nil
}

func (f *fakeVendorRepo) AddGood(_ context.Context, userID uint, item string) error {
	v, ok := f.byUser[userID]
	if !ok {
		return nil
	}
	for _, g := range v.GoodsSold {
		if g == item {
			return nil
		}
	}
	v.GoodsSold = append(v.GoodsSold, item)
	f.byUser[userID] = v
	return nil
}

func (f *fakeVendorRepo) RemoveGood(_ context.Context, userID uint, item string) error {
	v, ok := f.byUser[userID]
	if !ok {
		return repository.ErrVendorNotFound
	}
	kept := []string{}
	for _, g := range v.GoodsSold {
		if g != item {
			kept = append(kept, g)
		}
	}
	v.GoodsSold = kept
	f.byUser[userID] = v
	return nil
}

func (f *fakeVendorRepo) CountProducts(context.Context, uint) (int64, error) {
	return f.count, nil
}

type fakeProductRepo struct {
	products  map[uint]domain.Product
	owners    map[uint]uint
	createErr error
	updateErr error
	lastQuery struct {
		term        string
		tokens      []string
		page, limit int
	}
	replaced bool
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[uint]domain.Product{}, owners: map[uint]uint{}}
}

func (f *fakeProductRepo) Search(_ context.Context, term string, tokens []string, page, limit int) ([]domain.Product, int64, error) {
	f.lastQuery.term, f.lastQuery.tokens, f.lastQuery.page, f.lastQuery.limit = term, tokens, page, limit
	return []domain.Product{}, 25, nil
}

func (f *fakeProductRepo) FindAll(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	var out []domain.Product
	for id, p := range f.products {
		if filter.UserID != 0 && f.owners[id] != filter.UserID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProductRepo) FindByID(_ context.Context, id uint) (domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return domain.Product{}, repository.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeProductRepo) FindOwned(ctx context.Context, id, userID uint) (domain.Product, error) {
	if f.owners[id] != userID {
		return domain.Product{}, repository.ErrProductNotFound
	}
	return f.FindByID(ctx, id)
}

func (f *fakeProductRepo) Create(_ context.Context, p domain.Product) (domain.Product, error) {
	if f.createErr != nil {
		return domain.Product{}, f.createErr
	}
	p.ID = uint(len(f.products) + 1)
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeProductRepo) Update(_ context.Context, userID uint, p domain.Product, replace bool) (domain.Product, error) {
	if f.updateErr != nil {
		return domain.Product{}, f.updateErr
	}
	if f.owners[p.ID] != userID {
		return domain.Product{}, repository.ErrProductNotFound
	}
	f.replaced = replace
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeProductRepo) DeleteOwned(ctx context.Context, id, userID uint) (domain.Product, error) {
	p, err := f.FindOwned(ctx, id, userID)
	if err != nil {
		return domain.Product{}, err
	}
	delete(f.products, id)
	return p, nil
}

type fakeMedia struct {
	mu        sync.Mutex
	uploaded  []string
	deleted   []string
	failOn    string
	deleteErr error
	checkErr  error
}

func (f *fakeMedia) Check(media.File) error {
	return f.checkErr
}

func (f *fakeMedia) Upload(_ context.Context, file media.File) (string, error) {
	if file.Name == f.failOn {
		return "", io.ErrUnexpectedEOF
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	url := "https://cdn.test/products/" + file.Name
	f.uploaded = append(f.uploaded, url)
	return url, nil
}

func (f *fakeMedia) Delete(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, url)
	return f.deleteErr
}
