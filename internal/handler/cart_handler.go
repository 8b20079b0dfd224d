package handler

import (
	"errors"
	"net/http"

	"github.com/chiragvgohil-05/soffa-clg/internal/domain/model"
	repo "github.com/chiragvgohil-05/soffa-clg/internal/repository"
	"github.com/chiragvgohil-05/soffa-clg/internal/session"
	"github.com/chiragvgohil-05/soffa-clg/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/cart のHTTP。
// 更新は楽観的に反映した直後のカートを返し、サーバーとの同期は裏で進む。
type CartHandler struct {
	catalog *usecase.CatalogUsecase
}

// DI
func NewCartHandler(catalog *usecase.CatalogUsecase) *CartHandler {
	return &CartHandler{catalog: catalog}
}

type AddCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Delta int `json:"delta"`
}

type CartResponse struct {
	model.Cart
	ItemCount int `json:"itemCount"`
}

// /api/cart, /api/cart/items/:productId を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo, auth ...echo.MiddlewareFunc) {
	g := e.Group("/api/cart", auth...)

	g.GET("", h.getCart)
	g.POST("/items", h.addItem)
	g.PATCH("/items/:productId", h.patchItem)
	g.DELETE("/items/:productId", h.deleteItem)
}

func (h *CartHandler) getCart(c echo.Context) error {
	st, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}
	ctx := c.Request().Context()

	//?refresh=1 はカート画面を開いたとき
	if c.QueryParam("refresh") == "1" {
		err = st.Cart.FetchCart(ctx)
	} else {
		err = st.Cart.EnsureLoaded(ctx)
	}
	//取得失敗は通知済みで空カートを返す。401だけはログインへ。
	if errors.Is(err, repo.ErrUnauthorized) {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, cartResponse(st))
}

func (h *CartHandler) addItem(c echo.Context) error {
	st, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}

	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.ProductID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "productId required"})
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	ctx := c.Request().Context()

	//増やすときは常にカタログから表示用の情報を引く（明細があれば AddToCart 側で無視される）
	//明細がある商品はカタログで引けなくてもそのまま増やす
	var snapshot *model.ProductSnapshot
	if req.Quantity > 0 {
		s, err := h.catalog.Snapshot(ctx, req.ProductID)
		switch {
		case err == nil:
			snapshot = &s
		case st.Cart.Snapshot().IndexOf(req.ProductID) < 0:
			return writeError(c, err)
		}
	}

	if err := st.Cart.AddToCart(ctx, req.ProductID, req.Quantity, snapshot); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, cartResponse(st))
}

func (h *CartHandler) patchItem(c echo.Context) error {
	st, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.Delta == 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid delta"})
	}

	if err := st.Cart.UpdateQuantity(c.Request().Context(), c.Param("productId"), req.Delta); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, cartResponse(st))
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	st, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}

	if err := st.Cart.RemoveFromCart(c.Request().Context(), c.Param("productId")); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, cartResponse(st))
}

func cartResponse(st *session.State) CartResponse {
	cart := st.Cart.Snapshot()
	return CartResponse{Cart: cart, ItemCount: cart.ItemCount()}
}
