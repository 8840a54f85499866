// Package web renders the server-side pages: the market grid, market detail
// with its product modal, product search and the vendor dashboard.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/localmarkets/marketplace/internal/api/middleware"
	"github.com/localmarkets/marketplace/internal/domain"
	"github.com/localmarkets/marketplace/internal/media"
)

//go:embed templates/*.html
var templatesFS embed.FS

type ViewData map[string]any

type MarketService interface {
	GetMarket(ctx context.Context, id uint) (domain.Market, error)
	SearchMarkets(ctx context.Context, q string) ([]domain.Market, error)
	SuggestMarket(ctx context.Context, suggestion domain.MarketSuggestion) (domain.MarketSuggestion, error)
}

type ProductService interface {
	SearchProducts(ctx context.Context, q string, page, limit int) (domain.ProductPage, error)
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	CreateProduct(ctx context.Context, userID uint, product domain.Product, files []media.File) (domain.Product, error)
	DeleteProduct(ctx context.Context, userID, id uint) error
}

type VendorService interface {
	GetDashboard(ctx context.Context, userID uint) (domain.Dashboard, error)
	AddGood(ctx context.Context, userID uint, item string) ([]string, error)
	RemoveGood(ctx context.Context, userID uint, item string) ([]string, error)
}

type AuthService interface {
	Login(ctx context.Context, phone, password string) (domain.User, error)
}

type Handler struct {
	markets  MarketService
	products ProductService
	vendors  VendorService
	auth     AuthService
}

func NewHandler(markets MarketService, products ProductService, vendors VendorService, auth AuthService) *Handler {
	return &Handler{
		markets:  markets,
		products: products,
		vendors:  vendors,
		auth:     auth,
	}
}

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("template.ParseFS -> %w", err)
	}

	return tmpl, nil
}

// Mount installs the templates on r and registers every page route. The
// session middleware must already be in r's chain.
func (h *Handler) Mount(r *gin.Engine) error {
	tmpl, err := Templates()
	if err != nil {
		return err
	}
	r.SetHTMLTemplate(tmpl)

	r.GET("/", h.HandleIndex)
	r.POST("/suggest", h.HandleSuggest)
	r.GET("/markets/:marketID", h.HandleMarket)
	r.GET("/search", h.HandleSearch)
	r.GET("/login", h.HandleLoginPage)
	r.POST("/login", h.HandleLogin)
	r.POST("/logout", h.HandleLogout)

	dashboard := r.Group("/dashboard", requireSession())
	{
		dashboard.GET("", h.HandleDashboard)
		dashboard.POST("/goods", h.HandleAddGood)
		dashboard.POST("/goods/remove", h.HandleRemoveGood)
		dashboard.POST("/products", h.HandleCreateProduct)
		dashboard.POST("/products/:productID/delete", h.HandleDeleteProduct)
	}

	return nil
}

var funcMap = template.FuncMap{
	"price": func(p float64) string { return fmt.Sprintf("%.2f", p) },
	"day":   formatDay,
	"add":   func(a, b int) int { return a + b },
	"sub":   func(a, b int) int { return a - b },
	"searchURL": func(q string, page int) string {
		v := url.Values{}
		if q != "" {
			v.Set("q", q)
		}
		v.Set("page", strconv.Itoa(page))
		return "/search?" + v.Encode()
	},
	"productURL": func(marketID, productID uint) string {
		return fmt.Sprintf("/markets/%d?product=%d", marketID, productID)
	},
}

func formatDay(v any) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format("Mon, Jan 2 2006")
	case *time.Time:
		if t == nil {
			return ""
		}
		return formatDay(*t)
	}

	return ""
}

// withUser adds the session user, if any, to data.
func withUser(ctx *gin.Context, data ViewData) ViewData {
	if data == nil {
		data = ViewData{}
	}
	if id, ok := sessionUserID(ctx); ok {
		data["UserID"] = id
	}

	return data
}

func sessionUserID(ctx *gin.Context) (uint, bool) {
	id, ok := sessions.Default(ctx).Get(middleware.SessionUserKey).(uint)
	return id, ok && id != 0
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}

	return uint(id), true
}
