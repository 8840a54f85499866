package middleware

import (
	"errors"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/localmarkets/marketplace/internal/api/handler/v1/response"
	"github.com/localmarkets/marketplace/internal/pkg/jwthelper"
)

const (
	SessionUserKey   = "user_id"
	ContextUserIDKey = "userID"
)

var (
	errNotAuthenticated = errors.New("no session or bearer token")
)

type Authenticator struct {
	signingKey []byte
}

func NewAuthenticator(signingKey string) *Authenticator {
	return &Authenticator{
		signingKey: []byte(signingKey),
	}
}

// RequireUser resolves the caller from the session cookie or a bearer token
// and stores the user id in the gin context. Anonymous requests get a 401.
func (a *Authenticator) RequireUser() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID, err := a.resolve(ctx)
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthorized(err))
			return
		}

		ctx.Set(ContextUserIDKey, userID)
		ctx.Next()
	}
}

func (a *Authenticator) resolve(ctx *gin.Context) (uint, error) {
	if id, ok := sessions.Default(ctx).Get(SessionUserKey).(uint); ok && id != 0 {
		return id, nil
	}

	header := ctx.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || strings.TrimSpace(token) == "" {
		return 0, errNotAuthenticated
	}

	claims, err := jwthelper.ParseToken(a.signingKey, strings.TrimSpace(token))
	if err != nil {
		return 0, err
	}

	return claims.UserID, nil
}

// UserIDFromContext returns the id stored by RequireUser.
func UserIDFromContext(ctx *gin.Context) (uint, bool) {
	id, ok := ctx.Get(ContextUserIDKey)
	if !ok {
		return 0, false
	}

	userID, ok := id.(uint)
	return userID, ok && userID != 0
}
