package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/localmarkets/marketplace/internal/api/handler/v1/request"
	"github.com/localmarkets/marketplace/internal/domain"
	"github.com/localmarkets/marketplace/internal/service"
)

const searchPageSize = service.DefaultSearchLimit

// HandleIndex renders the market grid. A query that matches nothing shows
// the suggest-a-market form instead.
func (h *Handler) HandleIndex(ctx *gin.Context) {
	q := ctx.Query("q")

	markets, err := h.markets.SearchMarkets(ctx.Request.Context(), q)
	if err != nil {
		renderError(ctx, http.StatusInternalServerError, "h.markets.SearchMarkets", err)
		return
	}

	ctx.HTML(http.StatusOK, "index.html", withUser(ctx, ViewData{
		"Markets":     markets,
		"Query":       q,
		"ShowSuggest": q != "" && len(markets) == 0,
		"Suggested":   ctx.Query("suggested") != "",
	}))
}

func (h *Handler) HandleSuggest(ctx *gin.Context) {
	var req request.SuggestMarketRequest
	err := ctx.ShouldBind(&req)
	if err == nil {
		err = req.Validate()
	}
	if err != nil {
		ctx.HTML(http.StatusBadRequest, "index.html", withUser(ctx, ViewData{
			"Markets":      []domain.Market{},
			"Query":        req.Name,
			"ShowSuggest":  true,
			"SuggestError": err.Error(),
		}))
		return
	}

	if _, err = h.markets.SuggestMarket(ctx.Request.Context(), req.ToDomain()); err != nil {
		renderError(ctx, http.StatusInternalServerError, "h.markets.SuggestMarket", err)
		return
	}

	ctx.Redirect(http.StatusSeeOther, "/?suggested=1")
}

// HandleMarket renders a market and its products. ?product=<id> opens the
// detail modal for that product when it belongs to the market.
func (h *Handler) HandleMarket(ctx *gin.Context) {
	marketID, ok := parseID(ctx.Param("marketID"))
	if !ok {
		renderError(ctx, http.StatusNotFound, "parseID", errors.New("bad market id"))
		return
	}

	market, err := h.markets.GetMarket(ctx.Request.Context(), marketID)
	if err != nil {
		if errors.Is(err, service.ErrMarketNotFound) {
			renderError(ctx, http.StatusNotFound, "h.markets.GetMarket", err)
			return
		}
		renderError(ctx, http.StatusInternalServerError, "h.markets.GetMarket", err)
		return
	}

	products, err := h.products.ListProducts(ctx.Request.Context(), domain.ProductFilter{MarketID: marketID})
	if err != nil {
		renderError(ctx, http.StatusInternalServerError, "h.products.ListProducts", err)
		return
	}

	data := ViewData{
		"Market":   market,
		"Products": products,
	}
	if productID, ok := parseID(ctx.Query("product")); ok {
		for i := range products {
			if products[i].ID == productID {
				data["Selected"] = products[i]
				break
			}
		}
	}

	ctx.HTML(http.StatusOK, "market.html", withUser(ctx, data))
}

func (h *Handler) HandleSearch(ctx *gin.Context) {
	query, err := request.ParseSearchQuery(ctx.Query("q"), ctx.Query("page"), "", searchPageSize)
	if err != nil {
		query = request.SearchQuery{Q: ctx.Query("q"), Page: 1, Limit: searchPageSize}
	}

	page, err := h.products.SearchProducts(ctx.Request.Context(), query.Q, query.Page, query.Limit)
	if err != nil {
		renderError(ctx, http.StatusInternalServerError, "h.products.SearchProducts", err)
		return
	}

	ctx.HTML(http.StatusOK, "search.html", withUser(ctx, ViewData{
		"Query":      query.Q,
		"Products":   page.Products,
		"Pagination": page.Pagination,
		"HasPrev":    page.Pagination.Page > 1,
		"HasNext":    page.Pagination.Page < page.Pagination.Pages,
	}))
}

func renderError(ctx *gin.Context, status int, op string, err error) {
	if status >= http.StatusInternalServerError {
		zap.L().Error("page failed", zap.String("op", op), zap.String("path", ctx.Request.URL.Path), zap.Error(err))
	}

	ctx.HTML(status, "error.html", withUser(ctx, ViewData{
		"Status":  status,
		"Message": http.StatusText(status),
	}))
}
