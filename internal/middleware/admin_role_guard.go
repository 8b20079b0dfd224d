package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

//セッションの role が Admin かどうかを確認します。

func AdminRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			st, ok := SessionFrom(c)
			if !ok || !st.HasCredential() {
				return Unauthorized(c)
			}

			//User は拒否、Admin だけ許可
			if !st.Credential().IsAdmin() {
				return c.JSON(http.StatusForbidden, errorJSON("admin only"))
			}

			return next(c)
		}
	}
}
