package middleware

import (
	"time"

	"github.com/chiragvgohil-05/soffa-clg/internal/session"

	"github.com/labstack/echo/v4"
)

// JWTのexpが過ぎていたらバックエンドに投げる前に401にする。
// exp が読めないトークンはバックエンドの401に任せる。
func CredentialExpiryGuard(reg *session.Registry, cookieSecure bool, now func() time.Time) echo.MiddlewareFunc {
	if now == nil {
		now = time.Now
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			st, ok := SessionFrom(c)
			if !ok {
				return Unauthorized(c)
			}

			if st.Credential().Expired(now()) {
				reg.Remove(st.ID)
				ClearSessionCookie(c, cookieSecure)
				return Unauthorized(c)
			}

			return next(c)
		}
	}
}
