package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"storefront-checkout/internal/service"
)

const (
	identityKey       = "identity"
	sessionCookieName = "cart_session"
)

// Identity resolves each request to either a signed-in user (bearer JWT) or a
// guest (cart_session cookie, minted on first touch). The core never issues
// sessions; it only consumes what the identity provider signed.
func Identity(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor := service.Actor{Role: "guest"}

			if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				token, err := jwt.Parse(strings.TrimPrefix(auth, "Bearer "),
					func(t *jwt.Token) (interface{}, error) {
						if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
							return nil, jwt.ErrSignatureInvalid
						}
						return []byte(jwtSecret), nil
					})
				if err != nil || !token.Valid {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
				}

				claims, ok := token.Claims.(jwt.MapClaims)
				if !ok {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
				}
				sub, _ := claims.GetSubject()
				id, err := strconv.ParseUint(sub, 10, 64)
				if err != nil {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid subject")
				}
				userID := uint(id)
				actor.UserID = &userID
				if role, ok := claims["role"].(string); ok {
					actor.Role = role
				} else {
					actor.Role = "customer"
				}
			}

			// guests still carry their session token so a post-sign-in merge
			// can find the cart
			if cookie, err := c.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
				actor.SessionToken = cookie.Value
			} else if actor.UserID == nil {
				actor.SessionToken = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     sessionCookieName,
					Value:    actor.SessionToken,
					Path:     "/",
					HttpOnly: true,
				})
			}

			c.Set(identityKey, actor)
			return next(c)
		}
	}
}

func ActorFrom(c echo.Context) service.Actor {
	if actor, ok := c.Get(identityKey).(service.Actor); ok {
		return actor
	}
	return service.Actor{Role: "guest"}
}

// ClearSessionCookie consumes the guest session after a cart merge so a
// retried merge finds nothing to do.
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if ActorFrom(c).UserID == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "sign in required")
		}
		return next(c)
	}
}

func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor := ActorFrom(c)
		if actor.UserID == nil || actor.Role != "admin" {
			return echo.NewHTTPError(http.StatusForbidden, "admin only")
		}
		return next(c)
	}
}
