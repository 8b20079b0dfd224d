package middleware

import (
	"net/http"
	"time"

	"github.com/chiragvgohil-05/soffa-clg/internal/session"

	"github.com/labstack/echo/v4"
)

const (
	CtxSessionKey     = "session" // *session.State
	SessionCookieName = "sid"

	loginPath = "/login"
)

// LoadSession は sid Cookie から State を引いて context に入れる。
// 見つからなくても止めない（公開APIでも通知や未ログインのカートを扱うため）。
func LoadSession(reg *session.Registry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ck, err := c.Cookie(SessionCookieName)
			if err != nil || ck.Value == "" {
				return next(c)
			}

			st, ok := reg.Get(ck.Value)
			if !ok {
				return next(c)
			}
			st.Touch(time.Now())
			c.Set(CtxSessionKey, st)

			return next(c)
		}
	}
}

// RequireLogin は資格情報を持つセッションだけ通す。
// 資格情報が消えた（401で破棄された）セッションはここで片付ける。
func RequireLogin(reg *session.Registry, cookieSecure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			st, ok := SessionFrom(c)
			if !ok {
				return Unauthorized(c)
			}

			if !st.HasCredential() {
				reg.Remove(st.ID)
				ClearSessionCookie(c, cookieSecure)
				return Unauthorized(c)
			}

			return next(c)
		}
	}
}

// SessionFrom は LoadSession が入れた State を返す
func SessionFrom(c echo.Context) (*session.State, bool) {
	st, ok := c.Get(CtxSessionKey).(*session.State)
	if !ok || st == nil {
		return nil, false
	}
	return st, true
}

// Unauthorized はログイン画面へ戻す合図付きの401
func Unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized", Redirect: loginPath})
}

func SetSessionCookie(c echo.Context, id string, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(c echo.Context, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

type errorResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
