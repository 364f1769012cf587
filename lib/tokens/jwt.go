package tokens

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
)

// Token issuance lives with the external identity provider; this service
// only verifies bearer tokens signed with the shared secret and resolves
// the user id for downstream handlers.

type jwtCustomClaims struct {
	ID int64 `json:"id"`
	jwt.StandardClaims
}

// Middleware verifies the Authorization bearer token and stores the user
// id under "UserID" on the echo context.
func Middleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "bad auth")
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims := &jwtCustomClaims{}
			token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "bad auth")
			}

			c.Set("UserID", claims.ID)
			return next(c)
		}
	}
}
