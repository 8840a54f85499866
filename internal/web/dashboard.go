package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/localmarkets/marketplace/internal/api/handler/v1/request"
	"github.com/localmarkets/marketplace/internal/api/middleware"
	"github.com/localmarkets/marketplace/internal/domain"
	"github.com/localmarkets/marketplace/internal/service"
)

const ctxUserKey = "webUserID"

// requireSession redirects anonymous visitors to the login page.
func requireSession() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID, ok := sessionUserID(ctx)
		if !ok {
			ctx.Redirect(http.StatusSeeOther, "/login")
			ctx.Abort()
			return
		}

		ctx.Set(ctxUserKey, userID)
		ctx.Next()
	}
}

func (h *Handler) HandleLoginPage(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "login.html", withUser(ctx, nil))
}

func (h *Handler) HandleLogin(ctx *gin.Context) {
	req := request.LoginRequest{
		Phone:    strings.TrimSpace(ctx.PostForm("phone")),
		Password: ctx.PostForm("password"),
	}
	if err := req.Validate(); err != nil {
		ctx.HTML(http.StatusBadRequest, "login.html", withUser(ctx, ViewData{"Error": err.Error(), "Phone": req.Phone}))
		return
	}

	user, err := h.auth.Login(ctx.Request.Context(), req.Phone, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) || errors.Is(err, service.ErrWrongPassword) {
			ctx.HTML(http.StatusUnauthorized, "login.html", withUser(ctx, ViewData{
				"Error": "Wrong phone number or password",
				"Phone": req.Phone,
			}))
			return
		}
		renderError(ctx, http.StatusInternalServerError, "h.auth.Login", err)
		return
	}

	sess := sessions.Default(ctx)
	sess.Set(middleware.SessionUserKey, user.ID)
	if err = sess.Save(); err != nil {
		renderError(ctx, http.StatusInternalServerError, "sess.Save", err)
		return
	}

	ctx.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *Handler) HandleLogout(ctx *gin.Context) {
	sess := sessions.Default(ctx)
	sess.Clear()
	sess.Options(sessions.Options{Path: "/", MaxAge: -1})
	_ = sess.Save()

	ctx.Redirect(http.StatusSeeOther, "/")
}

// HandleDashboard shows the vendor profile, the goods-sold list and the
// vendor's products. ?error= carries a message from a failed form post.
func (h *Handler) HandleDashboard(ctx *gin.Context) {
	userID := ctx.GetUint(ctxUserKey)

	dashboard, err := h.vendors.GetDashboard(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrVendorNotFound) {
			renderError(ctx, http.StatusNotFound, "h.vendors.GetDashboard", err)
			return
		}
		renderError(ctx, http.StatusInternalServerError, "h.vendors.GetDashboard", err)
		return
	}

	products, err := h.products.ListProducts(ctx.Request.Context(), domain.ProductFilter{UserID: userID})
	if err != nil {
		renderError(ctx, http.StatusInternalServerError, "h.products.ListProducts", err)
		return
	}

	ctx.HTML(http.StatusOK, "dashboard.html", withUser(ctx, ViewData{
		"Dashboard": dashboard,
		"Products":  products,
		"Tags":      domain.AllTags,
		"Error":     ctx.Query("error"),
	}))
}

func (h *Handler) HandleAddGood(ctx *gin.Context) {
	h.changeGoods(ctx, h.vendors.AddGood, "h.vendors.AddGood")
}

func (h *Handler) HandleRemoveGood(ctx *gin.Context) {
	h.changeGoods(ctx, h.vendors.RemoveGood, "h.vendors.RemoveGood")
}

type goodsChange func(ctx context.Context, userID uint, item string) ([]string, error)

func (h *Handler) changeGoods(ctx *gin.Context, change goodsChange, op string) {
	req := request.GoodRequest{Item: ctx.PostForm("item")}
	if err := req.Validate(); err != nil {
		redirectWithError(ctx, err.Error())
		return
	}

	if _, err := change(ctx.Request.Context(), ctx.GetUint(ctxUserKey), req.Item); err != nil {
		if errors.Is(err, service.ErrEmptyGood) {
			redirectWithError(ctx, err.Error())
			return
		}
		renderError(ctx, http.StatusInternalServerError, op, err)
		return
	}

	ctx.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *Handler) HandleCreateProduct(ctx *gin.Context) {
	var form request.ProductForm
	if err := ctx.ShouldBind(&form); err != nil {
		redirectWithError(ctx, err.Error())
		return
	}
	if err := form.Validate(); err != nil {
		redirectWithError(ctx, err.Error())
		return
	}

	files, closeFiles, err := form.Files()
	if err != nil {
		redirectWithError(ctx, err.Error())
		return
	}
	defer closeFiles()

	_, err = h.products.CreateProduct(ctx.Request.Context(), ctx.GetUint(ctxUserKey), form.ToDomain(0), files)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedImage) || errors.Is(err, service.ErrImageTooLarge) {
			redirectWithError(ctx, err.Error())
			return
		}
		if errors.Is(err, service.ErrVendorNotFound) {
			redirectWithError(ctx, "only vendors can add products")
			return
		}
		renderError(ctx, http.StatusInternalServerError, "h.products.CreateProduct", err)
		return
	}

	ctx.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *Handler) HandleDeleteProduct(ctx *gin.Context) {
	productID, ok := parseID(ctx.Param("productID"))
	if !ok {
		renderError(ctx, http.StatusNotFound, "parseID", errors.New("bad product id"))
		return
	}

	if err := h.products.DeleteProduct(ctx.Request.Context(), ctx.GetUint(ctxUserKey), productID); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			renderError(ctx, http.StatusNotFound, "h.products.DeleteProduct", err)
			return
		}
		renderError(ctx, http.StatusInternalServerError, "h.products.DeleteProduct", err)
		return
	}

	ctx.Redirect(http.StatusSeeOther, "/dashboard")
}

func redirectWithError(ctx *gin.Context, msg string) {
	ctx.Redirect(http.StatusSeeOther, "/dashboard?error="+url.QueryEscape(msg))
}
