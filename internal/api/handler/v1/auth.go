package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/localmarkets/marketplace/internal/api/handler/v1/request"
	"github.com/localmarkets/marketplace/internal/api/handler/v1/response"
	"github.com/localmarkets/marketplace/internal/api/middleware"
	"github.com/localmarkets/marketplace/internal/config"
	"github.com/localmarkets/marketplace/internal/domain"
	"github.com/localmarkets/marketplace/internal/pkg/jwthelper"
	"github.com/localmarkets/marketplace/internal/service"
)

type AuthService interface {
	Register(ctx context.Context, reg domain.Registration) (domain.User, error)
	Login(ctx context.Context, phone, password string) (domain.User, error)
}

type UserService interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
}

type AuthHandler struct {
	conf  *config.APIConfig
	svc   AuthService
	users UserService
}

func NewAuthHandler(conf *config.APIConfig, svc AuthService, users UserService) *AuthHandler {
	return &AuthHandler{
		conf:  conf,
		svc:   svc,
		users: users,
	}
}

// HandleRegister godoc
// @Summary      Register a vendor account
// @Description  Creates a user and its vendor profile under an existing market.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request   body      request.RegisterRequest true "request body"
// @Success      201      {object}   response.RegisterResponse
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /auth/register [post]
func (h *AuthHandler) HandleRegister(ctx *gin.Context) {
	var req request.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, err := h.svc.Register(ctx.Request.Context(), req.ToDomain())
	if err != nil {
		if errors.Is(err, service.ErrPhoneExists) {
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrPhoneExists))
			return
		}
		if errors.Is(err, service.ErrMarketNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("market", "id", req.MarketID))
			return
		}

		err = fmt.Errorf("v1.HandleRegister -> h.svc.Register -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, response.RegisterResponse{
		ID:    user.ID,
		Phone: user.Phone,
		Name:  user.Name,
	})
}

// HandleLogin godoc
// @Summary      Login with phone and password
// @Description  Starts a cookie session and returns a bearer token for non-browser clients.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request   body      request.LoginRequest true "request body"
// @Success      200      {object}   response.LoginResponse
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /auth/login [post]
func (h *AuthHandler) HandleLogin(ctx *gin.Context) {
	req := request.LoginRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	user, err := h.svc.Login(ctx.Request.Context(), req.Phone, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) || errors.Is(err, service.ErrWrongPassword) {
			response.RenderErr(ctx, response.ErrWrongCredentials(err))

			return
		}

		err = fmt.Errorf("v1.HandleLogin -> h.svc.Login -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	token, err := jwthelper.GenerateToken([]byte(h.conf.JWTSigningKey), user.ID, ctx.Request.UserAgent(), h.conf.TokenTTL)
	if err != nil {
		err = fmt.Errorf("v1.HandleLogin -> jwthelper.GenerateToken -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	sess := sessions.Default(ctx)
	sess.Set(middleware.SessionUserKey, user.ID)
	if err = sess.Save(); err != nil {
		err = fmt.Errorf("v1.HandleLogin -> sess.Save -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.LoginResponse{
		Token: token,
		User:  user,
	})
}

// HandleLogout godoc
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Failure      500      {object}   response.Err
// @Router       /auth/logout [post]
func (h *AuthHandler) HandleLogout(ctx *gin.Context) {
	sess := sessions.Default(ctx)
	sess.Clear()
	sess.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := sess.Save(); err != nil {
		err = fmt.Errorf("v1.HandleLogout -> sess.Save -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleSession godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200      {object}   domain.User
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /auth/session [get]
// @Security     BearerAuth
func (h *AuthHandler) HandleSession(ctx *gin.Context) {
	userID, respErr := currentUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	user, err := h.users.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.RenderErr(ctx, response.ErrUnauthorized(err))
			return
		}

		err = fmt.Errorf("v1.HandleSession -> h.users.GetUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, user)
}
