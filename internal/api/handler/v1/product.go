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
	"github.com/localmarkets/marketplace/internal/media"
	"github.com/localmarkets/marketplace/internal/service"
)

type ProductService interface {
	SearchProducts(ctx context.Context, q string, page, limit int) (domain.ProductPage, error)
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	GetProduct(ctx context.Context, id uint) (domain.Product, error)
	CreateProduct(ctx context.Context, userID uint, product domain.Product, files []media.File) (domain.Product, error)
	UpdateProduct(ctx context.Context, userID uint, product domain.Product, files []media.File) (domain.Product, error)
	DeleteProduct(ctx context.Context, userID, id uint) error
}

type ProductHandler struct {
	svc ProductService
}

func NewProductHandler(svc ProductService) *ProductHandler {
	return &ProductHandler{
		svc: svc,
	}
}

// HandleListProducts godoc
// @Summary      List products
// @Description  Lists products, optionally narrowed to one vendor user or one market.
// @Tags         products
// @Produce      json
// @Param        userId   query     int false "owner user ID"
// @Param        marketId query     int false "market ID"
// @Success      200      {array}    domain.Product
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /products [get]
func (h *ProductHandler) HandleListProducts(ctx *gin.Context) {
	userID, respErr := parseOptionalID(ctx.Query("userId"), "user id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	marketID, respErr := parseOptionalID(ctx.Query("marketId"), "market id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	h.renderList(ctx, domain.ProductFilter{UserID: userID, MarketID: marketID})
}

// HandleListMarketProducts godoc
// @Summary      List the products of a market
// @Tags         products
// @Produce      json
// @Param        marketID path      int true "market ID"
// @Success      200      {array}    domain.Product
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /products/market/{marketID} [get]
func (h *ProductHandler) HandleListMarketProducts(ctx *gin.Context) {
	marketID, respErr := parseID(ctx.Param("marketID"), "market id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	h.renderList(ctx, domain.ProductFilter{MarketID: marketID})
}

// HandleListOwnProducts godoc
// @Summary      List the caller's products
// @Tags         vendor
// @Produce      json
// @Success      200      {array}    domain.Product
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /vendor/products [get]
// @Security     BearerAuth
func (h *ProductHandler) HandleListOwnProducts(ctx *gin.Context) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	h.renderList(ctx, domain.ProductFilter{UserID: userID})
}

func (h *ProductHandler) renderList(ctx *gin.Context, filter domain.ProductFilter) {
	products, err := h.svc.ListProducts(ctx.Request.Context(), filter)
	if err != nil {
		err = fmt.Errorf("v1.renderList -> h.svc.ListProducts -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, products)
}

// HandleSearchProducts godoc
// @Summary      Search products
// @Description  Matches name, description and tags. Results are paginated.
// @Tags         products
// @Produce      json
// @Param        q        query     string false "search term"
// @Param        page     query     int    false "page number, starting at 1"
// @Param        limit    query     int    false "page size, at most 100"
// @Success      200      {object}   domain.ProductPage
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /products/search [get]
func (h *ProductHandler) HandleSearchProducts(ctx *gin.Context) {
	query, err := request.ParseSearchQuery(ctx.Query("q"), ctx.Query("page"), ctx.Query("limit"), service.DefaultSearchLimit)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	page, err := h.svc.SearchProducts(ctx.Request.Context(), query.Q, query.Page, query.Limit)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPage) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}

		err = fmt.Errorf("v1.HandleSearchProducts -> h.svc.SearchProducts -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, page)
}

// HandleGetProduct godoc
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        productID path     int true "product ID"
// @Success      200      {object}   domain.Product
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /products/{productID} [get]
func (h *ProductHandler) HandleGetProduct(ctx *gin.Context) {
	productID, respErr := parseID(ctx.Param("productID"), "product id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	product, err := h.svc.GetProduct(ctx.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("product", "id", productID))
			return
		}

		err = fmt.Errorf("v1.HandleGetProduct -> h.svc.GetProduct -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, product)
}

// HandleCreateProduct godoc
// @Summary      Create a product
// @Description  Multipart form. The first image becomes the primary one.
// @Tags         products
// @Accept       multipart/form-data
// @Produce      json
// @Param        name        formData  string true  "name"
// @Param        description formData  string false "description"
// @Param        price       formData  number true  "price"
// @Param        tags        formData  []string false "tags" collectionFormat(multi)
// @Param        images      formData  file   false "images"
// @Success      201      {object}   domain.Product
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /products [post]
// @Security     BearerAuth
func (h *ProductHandler) HandleCreateProduct(ctx *gin.Context) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	form, files, closeFiles, respErr := bindProductForm(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	defer closeFiles()

	product, err := h.svc.CreateProduct(ctx.Request.Context(), userID, form.ToDomain(0), files)
	if err != nil {
		if respErr = productErr(err, 0); respErr != nil {
			response.RenderErr(ctx, respErr)
			return
		}

		err = fmt.Errorf("v1.HandleCreateProduct -> h.svc.CreateProduct -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, product)
}

// HandleUpdateProduct godoc
// @Summary      Update a product
// @Description  Multipart form. Sending images replaces every existing image.
// @Tags         products
// @Accept       multipart/form-data
// @Produce      json
// @Param        productID   path      int    true  "product ID"
// @Param        name        formData  string true  "name"
// @Param        description formData  string false "description"
// @Param        price       formData  number true  "price"
// @Param        tags        formData  []string false "tags" collectionFormat(multi)
// @Param        images      formData  file   false "images"
// @Success      200      {object}   domain.Product
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /products/{productID} [put]
// @Security     BearerAuth
func (h *ProductHandler) HandleUpdateProduct(ctx *gin.Context) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	productID, respErr := parseID(ctx.Param("productID"), "product id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	form, files, closeFiles, respErr := bindProductForm(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	defer closeFiles()

	product, err := h.svc.UpdateProduct(ctx.Request.Context(), userID, form.ToDomain(productID), files)
	if err != nil {
		if respErr = productErr(err, productID); respErr != nil {
			response.RenderErr(ctx, respErr)
			return
		}

		err = fmt.Errorf("v1.HandleUpdateProduct -> h.svc.UpdateProduct -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, product)
}

// HandleDeleteProduct godoc
// @Summary      Delete a product
// @Tags         products
// @Param        productID path     int true "product ID"
// @Success      204
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /products/{productID} [delete]
// @Security     BearerAuth
func (h *ProductHandler) HandleDeleteProduct(ctx *gin.Context) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	productID, respErr := parseID(ctx.Param("productID"), "product id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteProduct(ctx.Request.Context(), userID, productID); err != nil {
		if respErr = productErr(err, productID); respErr != nil {
			response.RenderErr(ctx, respErr)
			return
		}

		err = fmt.Errorf("v1.HandleDeleteProduct -> h.svc.DeleteProduct -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// bindProductForm reads the multipart body. Browsers that post tags[] and
// images[] are accepted alongside the plain field names.
func bindProductForm(ctx *gin.Context) (*request.ProductForm, []media.File, func(), *response.Err) {
	var form request.ProductForm
	if err := ctx.ShouldBind(&form); err != nil {
		return nil, nil, nil, response.ErrBadRequest(err)
	}

	if mf, err := ctx.MultipartForm(); err == nil && mf != nil {
		form.Tags = append(form.Tags, mf.Value["tags[]"]...)
		form.Images = append(form.Images, mf.File["images[]"]...)
	}

	if err := form.Validate(); err != nil {
		return nil, nil, nil, response.ErrBadRequest(err)
	}

	files, closeFiles, err := form.Files()
	if err != nil {
		return nil, nil, nil, response.ErrBadRequest(err)
	}

	return &form, files, closeFiles, nil
}

// productErr maps the expected product failures; nil means the error is
// unexpected.
func productErr(err error, productID uint) *response.Err {
	switch {
	case errors.Is(err, service.ErrUnsupportedImage), errors.Is(err, service.ErrImageTooLarge):
		return response.ErrBadRequest(err)
	case errors.Is(err, service.ErrVendorNotFound):
		return response.ErrPermissionDenied(errors.New("only vendors can manage products"))
	case errors.Is(err, service.ErrProductNotFound):
		return response.ErrNotFound("product", "id", productID)
	}

	return nil
}
