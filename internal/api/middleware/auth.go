package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/portalevent/portal-api/internal/api/handler/v1/response"
	"github.com/portalevent/portal-api/internal/pkg/jwthelper"
)

// UserIDKey is the gin context key holding the authenticated user ID.
const UserIDKey = "userID"

var (
	errMissingToken     = errors.New("authorization header must be 'Bearer <token>'")
	errUserAgentChanged = errors.New("token was issued to a different client")
)

type Authenticator struct {
	key []byte
}

func NewAuthenticator(jwtSigningKey string) *Authenticator {
	return &Authenticator{
		key: []byte(jwtSigningKey),
	}
}

func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		tokenStr, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenStr == "" {
			response.RenderErr(ctx, response.ErrInvalidToken(errMissingToken))
			return
		}

		claims, err := jwthelper.ParseToken(a.key, tokenStr)
		if err != nil {
			err = fmt.Errorf("jwthelper.ParseToken -> %w", err)
			response.RenderErr(ctx, response.ErrInvalidToken(err))
			return
		}

		if claims.UserAgent != ctx.Request.UserAgent() {
			response.RenderErr(ctx, response.ErrInvalidToken(errUserAgentChanged))
			return
		}

		ctx.Set(UserIDKey, claims.UserID)
		ctx.Next()
	}
}
