package v1

import (
	"context"
	"io"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/localmarkets/marketplace/internal/api/middleware"
	"github.com/localmarkets/marketplace/internal/config"
	"github.com/localmarkets/marketplace/internal/domain"
	"github.com/localmarkets/marketplace/internal/media"
)

const testSigningKey = "handler-test-key"

var testAPIConfig = &config.APIConfig{
	JWTSigningKey: testSigningKey,
	TokenTTL:      time.Hour,
}

// newTestRouter mounts routes behind the same session middleware the server
// uses. Handlers under authed receive a user id.
func newTestRouter(mount func(public, authed *gin.RouterGroup)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("lm_session", cookie.NewStore([]byte("session-secret"))))

	public := r.Group("/api")
	authed := r.Group("/api", middleware.NewAuthenticator(testSigningKey).RequireUser())
	mount(public, authed)

	return r
}

type fakeAuthService struct {
	registered []domain.Registration
	registerFn func(reg domain.Registration) (domain.User, error)
	loginFn    func(phone, password string) (domain.User, error)
}

func (f *fakeAuthService) Register(_ context.Context, reg domain.Registration) (domain.User, error) {
	f.registered = append(f.registered, reg)
	return f.registerFn(reg)
}

func (f *fakeAuthService) Login(_ context.Context, phone, password string) (domain.User, error) {
	return f.loginFn(phone, password)
}

type fakeUserService struct {
	users map[uint]domain.User
	err   error
}

func (f *fakeUserService) GetUser(_ context.Context, id uint) (domain.User, error) {
	if f.err != nil {
		return domain.User{}, f.err
	}
	return f.users[id], nil
}

type fakeMarketService struct {
	markets     []domain.Market
	err         error
	query       string
	suggestions []domain.MarketSuggestion
}

func (f *fakeMarketService) ListMarkets(context.Context) ([]domain.Market, error) {
	return f.markets, f.err
}

func (f *fakeMarketService) GetMarket(_ context.Context, id uint) (domain.Market, error) {
	if f.err != nil {
		return domain.Market{}, f.err
	}
	for _, m := range f.markets {
		if m.ID == id {
			return m, nil
		}
	}
	return domain.Market{}, errMarketMissing
}

func (f *fakeMarketService) SearchMarkets(_ context.Context, q string) ([]domain.Market, error) {
	f.query = q
	return f.markets, f.err
}

func (f *fakeMarketService) SuggestMarket(_ context.Context, s domain.MarketSuggestion) (domain.MarketSuggestion, error) {
	s.ID = uint(len(f.suggestions) + 1)
	f.suggestions = append(f.suggestions, s)
	return s, f.err
}

type createCall struct {
	userID  uint
	product domain.Product
	files   []string
}

type fakeProductService struct {
	products map[uint]domain.Product
	owners   map[uint]uint
	filter   domain.ProductFilter
	search   []any
	created  []createCall
	updated  []createCall
	deleted  []uint
	err      error
}

func (f *fakeProductService) SearchProducts(_ context.Context, q string, page, limit int) (domain.ProductPage, error) {
	f.search = []any{q, page, limit}
	if f.err != nil {
		return domain.ProductPage{}, f.err
	}
	return domain.ProductPage{
		Products:   []domain.Product{},
		Pagination: domain.NewPagination(0, page, limit),
	}, nil
}

func (f *fakeProductService) ListProducts(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	f.filter = filter
	out := []domain.Product{}
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, f.err
}

func (f *fakeProductService) GetProduct(_ context.Context, id uint) (domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return domain.Product{}, errProductMissing
	}
	return p, nil
}

func (f *fakeProductService) CreateProduct(_ context.Context, userID uint, p domain.Product, files []media.File) (domain.Product, error) {
	if f.err != nil {
		return domain.Product{}, f.err
	}
	f.created = append(f.created, createCall{userID: userID, product: p, files: readAll(files)})
	p.ID = 100
	return p, nil
}

func (f *fakeProductService) UpdateProduct(_ context.Context, userID uint, p domain.Product, files []media.File) (domain.Product, error) {
	if f.owners[p.ID] != userID {
		return domain.Product{}, errProductMissing
	}
	f.updated = append(f.updated, createCall{userID: userID, product: p, files: readAll(files)})
	return p, nil
}

func (f *fakeProductService) DeleteProduct(_ context.Context, userID, id uint) error {
	if f.owners[id] != userID {
		return errProductMissing
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func readAll(files []media.File) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		b, _ := io.ReadAll(f.Body)
		out = append(out, f.Name+":"+string(b))
	}
	return out
}

type fakeVendorService struct {
	goods []string
	err   error
}

func (f *fakeVendorService) GetDashboard(_ context.Context, userID uint) (domain.Dashboard, error) {
	if f.err != nil {
		return domain.Dashboard{}, f.err
	}
	return domain.Dashboard{
		Vendor:       domain.Vendor{ID: 3, UserID: userID, GoodsSold: f.goods},
		Market:       domain.Market{ID: 1, Name: "Ferry Plaza"},
		ProductCount: 2,
	}, nil
}

func (f *fakeVendorService) AddGood(_ context.Context, _ uint, item string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.goods = append(f.goods, item)
	return f.goods, nil
}

func (f *fakeVendorService) RemoveGood(_ context.Context, _ uint, item string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	kept := f.goods[:0]
	for _, g := range f.goods {
		if g != item {
			kept = append(kept, g)
		}
	}
	f.goods = kept
	return f.goods, nil
}
