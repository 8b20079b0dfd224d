package handler

import (
	"log/slog"
	"net/http"

	"github.com/chiragvgohil-05/soffa-clg/internal/domain/model"
	"github.com/chiragvgohil-05/soffa-clg/internal/middleware"
	"github.com/chiragvgohil-05/soffa-clg/internal/session"
	"github.com/chiragvgohil-05/soffa-clg/internal/usecase"

	"github.com/labstack/echo/v4"
)

// AuthHandler はログイン・会員登録・ログアウト。
// トークンはブラウザに渡さず、sid Cookie でセッションを引く。
type AuthHandler struct {
	registry     *session.Registry
	public       *usecase.AccountUsecase // 匿名の gateway（会員登録用）
	cookieSecure bool
	log          *slog.Logger
}

// DIコンストラクタ
func NewAuthHandler(registry *session.Registry, public *usecase.AccountUsecase, cookieSecure bool, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		registry:     registry,
		public:       public,
		cookieSecure: cookieSecure,
		log:          logger,
	}
}

// /api/auth/login のリクエストボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User      model.User `json:"user"`
	ItemCount int        `json:"itemCount"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/auth")
	g.POST("/login", h.login)
	g.POST("/register", h.register)
	g.POST("/logout", h.logout)
}

// POST /api/auth/register
func (h *AuthHandler) register(c echo.Context) error {
	var req model.Registration
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.public.Register(c.Request().Context(), req); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, messageResponse{Message: "registered"})
}

// POST /api/auth/login
// 新しいセッションを作ってからログインし、成功したらカートと検証待ちレシートを読み込む。
func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	//前のセッションは捨てる
	if old, ok := middleware.SessionFrom(c); ok {
		h.registry.Remove(old.ID)
	}

	st := h.registry.Create()
	ctx := c.Request().Context()

	res, err := st.Account.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.registry.Remove(st.ID)
		return writeError(c, err)
	}

	st.Init(ctx, session.ParseCredential(res.Token, res.User.Role, res.User.ID))
	middleware.SetSessionCookie(c, st.ID, h.cookieSecure)

	h.log.Info("login", slog.String("user_id", res.User.ID), slog.String("role", string(res.User.Role)))

	return c.JSON(http.StatusOK, loginResponse{
		User:      res.User,
		ItemCount: st.Cart.Snapshot().ItemCount(),
	})
}

// POST /api/auth/logout
// セッションが無くても成功扱い。
func (h *AuthHandler) logout(c echo.Context) error {
	if st, ok := middleware.SessionFrom(c); ok {
		h.registry.Remove(st.ID)
	}
	middleware.ClearSessionCookie(c, h.cookieSecure)

	return c.JSON(http.StatusOK, messageResponse{Message: "logged out"})
}
