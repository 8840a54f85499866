package v1

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/localmarkets/marketplace/internal/api/handler/v1/response"
	"github.com/localmarkets/marketplace/internal/api/middleware"
)

var (
	errNoUserInContext = errors.New("user id missing from request context")
)

func currentUserID(ctx *gin.Context) (uint, *response.Err) {
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		return 0, response.ErrUnauthorized(errNoUserInContext)
	}

	return userID, nil
}

func parseID(raw, name string) (uint, *response.Err) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, response.ErrBadRequest(fmt.Errorf("invalid %s: %q", name, raw))
	}

	return uint(id), nil
}

// parseOptionalID treats an empty value as "no filter".
func parseOptionalID(raw, name string) (uint, *response.Err) {
	if raw == "" {
		return 0, nil
	}

	return parseID(raw, name)
}
