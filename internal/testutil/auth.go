package testutil

import (
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
)

const userIDKey = "user_id"

// requireAuth validates the bearer token and stores the caller's id as a user value.
func (b *Backend) requireAuth(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		tokenString := extractToken(ctx)
		if tokenString == "" {
			writeError(ctx, fasthttp.StatusUnauthorized, "No token provided")
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return b.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			writeError(ctx, fasthttp.StatusUnauthorized, "Invalid token")
			return
		}

		b.mu.Lock()
		userID, ok := b.access[tokenString]
		b.mu.Unlock()
		if !ok {
			writeError(ctx, fasthttp.StatusUnauthorized, "Invalid token")
			return
		}

		ctx.SetUserValue(userIDKey, userID)
		next(ctx)
	}
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func currentUser(ctx *fasthttp.RequestCtx) string {
	id, _ := ctx.UserValue(userIDKey).(string)
	return id
}
