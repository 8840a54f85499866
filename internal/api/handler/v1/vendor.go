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

type VendorService interface {
	GetDashboard(ctx context.Context, userID uint) (domain.Dashboard, error)
	AddGood(ctx context.Context, userID uint, item string) ([]string, error)
	RemoveGood(ctx context.Context, userID uint, item string) ([]string, error)
}

type VendorHandler struct {
	svc VendorService
}

func NewVendorHandler(svc VendorService) *VendorHandler {
	return &VendorHandler{
		svc: svc,
	}
}

// HandleGetDashboard godoc
// @Summary      Vendor dashboard
// @Description  The caller's vendor profile, its market and product count.
// @Tags         vendor
// @Produce      json
// @Success      200      {object}   domain.Dashboard
// @Failure      401      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /vendor/dashboard [get]
// @Security     BearerAuth
func (h *VendorHandler) HandleGetDashboard(ctx *gin.Context) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	dashboard, err := h.svc.GetDashboard(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrVendorNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("vendor", "user id", userID))
			return
		}

		err = fmt.Errorf("v1.HandleGetDashboard -> h.svc.GetDashboard -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, dashboard)
}

// HandleAddGood godoc
// @Summary      Add a good to the goods-sold list
// @Tags         vendor
// @Accept       json
// @Produce      json
// @Param        request   body      request.GoodRequest true "request body"
// @Success      200      {object}   response.GoodsResponse
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /vendor/goods [post]
// @Security     BearerAuth
func (h *VendorHandler) HandleAddGood(ctx *gin.Context) {
	h.changeGoods(ctx, h.svc.AddGood, "AddGood")
}

// HandleRemoveGood godoc
// @Summary      Remove a good from the goods-sold list
// @Tags         vendor
// @Accept       json
// @Produce      json
// @Param        request   body      request.GoodRequest true "request body"
// @Success      200      {object}   response.GoodsResponse
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /vendor/goods [delete]
// @Security     BearerAuth
func (h *VendorHandler) HandleRemoveGood(ctx *gin.Context) {
	h.changeGoods(ctx, h.svc.RemoveGood, "RemoveGood")
}

type goodsChange func(ctx context.Context, userID uint, item string) ([]string, error)

func (h *VendorHandler) changeGoods(ctx *gin.Context, change goodsChange, op string) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.GoodRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	goods, err := change(ctx.Request.Context(), userID, req.Item)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyGood):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrVendorNotFound):
			response.RenderErr(ctx, response.ErrNotFound("vendor", "user id", userID))
		default:
			err = fmt.Errorf("v1.Handle%s -> h.svc.%s -> %w", op, op, err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, response.GoodsResponse{GoodsSold: goods})
}
