package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localmarkets/marketplace/internal/domain"
	"github.com/localmarkets/marketplace/internal/marketday"
	"github.com/localmarkets/marketplace/internal/media"
	"github.com/localmarkets/marketplace/internal/service"
)

type fakeMarkets struct {
	markets     []domain.Market
	suggestions []domain.MarketSuggestion
}

func (f *fakeMarkets) GetMarket(_ context.Context, id uint) (domain.Market, error) {
	for _, m := range f.markets {
		if m.ID == id {
			return m, nil
		}
	}
	return domain.Market{}, fmt.Errorf("s.repo.FindByID -> %w", service.ErrMarketNotFound)
}

func (f *fakeMarkets) SearchMarkets(_ context.Context, q string) ([]domain.Market, error) {
	out := []domain.Market{}
	for _, m := range f.markets {
		if q == "" || strings.Contains(strings.ToLower(m.Name), strings.ToLower(q)) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMarkets) SuggestMarket(_ context.Context, s domain.MarketSuggestion) (domain.MarketSuggestion, error) {
	f.suggestions = append(f.suggestions, s)
	return s, nil
}

type fakeProducts struct {
	products []domain.Product
	search   []int
	created  []domain.Product
	deleted  []uint
	err      error
}

func (f *fakeProducts) SearchProducts(_ context.Context, _ string, page, limit int) (domain.ProductPage, error) {
	f.search = []int{page, limit}
	return domain.ProductPage{
		Products:   f.products,
		Pagination: domain.NewPagination(int64(len(f.products))+int64(limit), page, limit),
	}, nil
}

func (f *fakeProducts) ListProducts(_ context.Context, _ domain.ProductFilter) ([]domain.Product, error) {
	return f.products, nil
}

func (f *fakeProducts) CreateProduct(_ context.Context, _ uint, p domain.Product, _ []media.File) (domain.Product, error) {
	if f.err != nil {
		return domain.Product{}, f.err
	}
	f.created = append(f.created, p)
	return p, nil
}

func (f *fakeProducts) DeleteProduct(_ context.Context, _, id uint) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeVendors struct {
	goods []string
}

func (f *fakeVendors) GetDashboard(_ context.Context, userID uint) (domain.Dashboard, error) {
	return domain.Dashboard{
		Vendor: domain.Vendor{ID: 2, UserID: userID, Name: "Hill Farm", GoodsSold: f.goods},
		Market: domain.Market{ID: 1, Name: "Ferry Plaza"},
	}, nil
}

func (f *fakeVendors) AddGood(_ context.Context, _ uint, item string) ([]string, error) {
	f.goods = append(f.goods, item)
	return f.goods, nil
}

func (f *fakeVendors) RemoveGood(_ context.Context, _ uint, item string) ([]string, error) {
	var kept []string
	for _, g := range f.goods {
		if g != item {
			kept = append(kept, g)
		}
	}
	f.goods = kept
	return f.goods, nil
}

type fakeAuth struct{}

func (fakeAuth) Login(_ context.Context, phone, password string) (domain.User, error) {
	if phone == "+14155550100" && password == "s3cretpass" {
		return domain.User{ID: 7}, nil
	}
	return domain.User{}, service.ErrWrongPassword
}

type fixture struct {
	router   *gin.Engine
	markets  *fakeMarkets
	products *fakeProducts
	vendors  *fakeVendors
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	next := time.Date(2024, time.May, 11, 0, 0, 0, 0, time.UTC)
	f := &fixture{
		markets: &fakeMarkets{markets: []domain.Market{
			{ID: 1, Name: "Ferry Plaza", Location: "San Francisco", Schedule: &marketday.Schedule{Interval: 7, Next: next}},
			{ID: 2, Name: "Union Square", Location: "New York"},
		}},
		products: &fakeProducts{products: []domain.Product{
			{ID: 10, Name: "Sourdough", Price: 8, Description: "Naturally leavened", Vendor: &domain.Vendor{Name: "Hill Farm", MarketID: 1}},
			{ID: 11, Name: "Honey", Price: 12.5, Vendor: &domain.Vendor{Name: "Bee Happy", MarketID: 1}},
		}},
		vendors: &fakeVendors{goods: []string{"bread"}},
	}

	r := gin.New()
	r.Use(sessions.Sessions("lm_session", cookie.NewStore([]byte("session-secret"))))
	require.NoError(t, NewHandler(f.markets, f.products, f.vendors, fakeAuth{}).Mount(r))
	f.router = r

	return f
}

func (f *fixture) do(method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) login(t *testing.T) []*http.Cookie {
	t.Helper()
	w := f.do(http.MethodPost, "/login", url.Values{"phone": {"+14155550100"}, "password": {"s3cretpass"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/dashboard", w.Header().Get("Location"))
	return w.Result().Cookies()
}

func TestTemplatesParse(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)
	for _, name := range []string{"index.html", "market.html", "search.html", "login.html", "dashboard.html", "error.html"} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}
}

func TestHandleIndex(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ferry Plaza")
	assert.Contains(t, w.Body.String(), "Union Square")
	assert.Contains(t, w.Body.String(), "Sat, May 11 2024")

	w = f.do(http.MethodGet, "/?q=ferry", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Union Square")
	assert.NotContains(t, w.Body.String(), "Suggest a new market")
}

func TestHandleIndex_NoMatchOffersSuggestion(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/?q=riverside", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Suggest a new market")
	assert.Contains(t, w.Body.String(), `action="/suggest"`)
}

func TestHandleSuggest(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/suggest", url.Values{"name": {"Riverside"}, "location": {"Sacramento"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/?suggested=1", w.Header().Get("Location"))
	require.Len(t, f.markets.suggestions, 1)
	assert.Equal(t, "Sacramento", f.markets.suggestions[0].Location)

	w = f.do(http.MethodPost, "/suggest", url.Values{"name": {""}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, f.markets.suggestions, 1)
}

func TestHandleMarket(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/markets/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Sourdough")
	assert.Contains(t, w.Body.String(), "/markets/1?product=10")
	assert.NotContains(t, w.Body.String(), `class="modal"`)

	w = f.do(http.MethodGet, "/markets/1?product=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `class="modal"`)
	assert.Contains(t, w.Body.String(), "Naturally leavened")

	w = f.do(http.MethodGet, "/markets/1?product=99", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `class="modal"`)

	w = f.do(http.MethodGet, "/markets/3", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleSearch(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/search?q=bread&page=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int{2, searchPageSize}, f.products.search)
	body := w.Body.String()
	assert.Contains(t, body, "Sourdough")
	assert.Contains(t, body, "/search?page=1&amp;q=bread")
	assert.Contains(t, body, "/markets/1?product=10")

	w = f.do(http.MethodGet, "/search?page=oops", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int{1, searchPageSize}, f.products.search)
}

func TestDashboard_RequiresSession(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/dashboard", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = f.do(http.MethodPost, "/login", url.Values{"phone": {"+14155550100"}, "password": {"nope-nope"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Wrong phone number or password")
}

func TestDashboard_Goods(t *testing.T) {
	f := newFixture(t)
	cookies := f.login(t)

	w := f.do(http.MethodGet, "/dashboard", nil, cookies...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Hill Farm")
	assert.Contains(t, w.Body.String(), "Ferry Plaza")

	w = f.do(http.MethodPost, "/dashboard/goods", url.Values{"item": {" jam "}}, cookies...)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, []string{"bread", "jam"}, f.vendors.goods)

	w = f.do(http.MethodPost, "/dashboard/goods/remove", url.Values{"item": {"bread"}}, cookies...)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, []string{"jam"}, f.vendors.goods)

	w = f.do(http.MethodPost, "/dashboard/goods", url.Values{"item": {"  "}}, cookies...)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/dashboard?error="))
}

func TestDashboard_Products(t *testing.T) {
	f := newFixture(t)
	cookies := f.login(t)

	w := f.do(http.MethodPost, "/dashboard/products", url.Values{"name": {"Rye"}, "price": {"5"}, "tags": {"bread"}}, cookies...)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
	require.Len(t, f.products.created, 1)
	assert.Equal(t, []domain.Tag{domain.TagBread}, f.products.created[0].Tags)

	w = f.do(http.MethodPost, "/dashboard/products", url.Values{"name": {"Rye"}, "price": {"free"}}, cookies...)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "error=")
	assert.Len(t, f.products.created, 1)

	w = f.do(http.MethodPost, "/dashboard/products/10/delete", nil, cookies...)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, []uint{10}, f.products.deleted)
}

func TestDashboard_ProductsRejected(t *testing.T) {
	f := newFixture(t)
	cookies := f.login(t)

	w := f.do(http.MethodPost, "/dashboard/products", url.Values{"name": {"Rye"}, "price": {"NaN"}}, cookies...)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "error=")

	f.products.err = fmt.Errorf("s.vendors.FindByUserID -> %w", service.ErrVendorNotFound)
	w = f.do(http.MethodPost, "/dashboard/products", url.Values{"name": {"Rye"}, "price": {"5"}}, cookies...)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard?error="+url.QueryEscape("only vendors can add products"), w.Header().Get("Location"))

	f.products.err = errors.New("connection reset")
	w = f.do(http.MethodPost, "/dashboard/products", url.Values{"name": {"Rye"}, "price": {"5"}}, cookies...)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, f.products.created)
}

func TestFormatDay(t *testing.T) {
	d := time.Date(2024, time.May, 11, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Sat, May 11 2024", formatDay(d))
	assert.Equal(t, "Sat, May 11 2024", formatDay(&d))
	assert.Empty(t, formatDay((*time.Time)(nil)))
	assert.Empty(t, formatDay(time.Time{}))
	assert.Empty(t, formatDay("x"))
}

