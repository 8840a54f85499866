package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/localmarkets/marketplace/internal/api/handler/v1/request"
	"github.com/localmarkets/marketplace/internal/api/handler/v1/response"
	"github.com/localmarkets/marketplace/internal/domain"
	"github.com/localmarkets/marketplace/internal/service"
)

type MarketService interface {
	ListMarkets(ctx context.Context) ([]domain.Market, error)
	GetMarket(ctx context.Context, id uint) (domain.Market, error)
	SearchMarkets(ctx context.Context, q string) ([]domain.Market, error)
	SuggestMarket(ctx context.Context, suggestion domain.MarketSuggestion) (domain.MarketSuggestion, error)
}

type MarketHandler struct {
	svc MarketService
}

func NewMarketHandler(svc MarketService) *MarketHandler {
	return &MarketHandler{
		svc: svc,
	}
}

// HandleListMarkets godoc
// @Summary      List markets
// @Description  Lists every market with its computed schedule.
// @Tags         markets
// @Produce      json
// @Success      200      {array}    domain.Market
// @Failure      500      {object}   response.Err
// @Router       /markets [get]
func (h *MarketHandler) HandleListMarkets(ctx *gin.Context) {
	markets, err := h.svc.ListMarkets(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListMarkets -> h.svc.ListMarkets -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, markets)
}

// HandleGetMarket godoc
// @Summary      Get a market
// @Description  Returns a market with its vendors and schedule.
// @Tags         markets
// @Produce      json
// @Param        marketID path      int true "market ID"
// @Success      200      {object}   domain.Market
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /markets/{marketID} [get]
func (h *MarketHandler) HandleGetMarket(ctx *gin.Context) {
	marketID, respErr := parseID(ctx.Param("marketID"), "market id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	market, err := h.svc.GetMarket(ctx.Request.Context(), marketID)
	if err != nil {
		if errors.Is(err, service.ErrMarketNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("market", "id", marketID))
			return
		}

		err = fmt.Errorf("v1.HandleGetMarket -> h.svc.GetMarket -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, market)
}

// HandleSearchMarkets godoc
// @Summary      Search markets
// @Description  Case-insensitive match on name and location. A blank query lists every market.
// @Tags         markets
// @Produce      json
// @Param        q        query     string false "search term"
// @Success      200      {array}    domain.Market
// @Failure      500      {object}   response.Err
// @Router       /markets/search [get]
func (h *MarketHandler) HandleSearchMarkets(ctx *gin.Context) {
	markets, err := h.svc.SearchMarkets(ctx.Request.Context(), ctx.Query("q"))
	if err != nil {
		err = fmt.Errorf("v1.HandleSearchMarkets -> h.svc.SearchMarkets -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, markets)
}

// HandleSuggestMarket godoc
// @Summary      Suggest a market
// @Description  Records a market a visitor could not find.
// @Tags         markets
// @Accept       json
// @Produce      json
// @Param        request   body      request.SuggestMarketRequest true "request body"
// @Success      201      {object}   domain.MarketSuggestion
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /markets/suggestions [post]
func (h *MarketHandler) HandleSuggestMarket(ctx *gin.Context) {
	var req request.SuggestMarketRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	suggestion, err := h.svc.SuggestMarket(ctx.Request.Context(), req.ToDomain())
	if err != nil {
		err = fmt.Errorf("v1.HandleSuggestMarket -> h.svc.SuggestMarket -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, suggestion)
}
