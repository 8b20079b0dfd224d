package backend

import (
	"context"
	"net/http"

	"github.com/chiragvgohil-05/soffa-clg/internal/domain/model"
)

func (g *Gateway) GetCart(ctx context.Context) (model.Cart, error) {
	var out cartDTO
	if err := g.call(ctx, http.MethodGet, "/cart", nil, &out); err != nil {
		return model.Cart{}, err
	}
	return out.toModel(), nil
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// AddItem は数量の差分を送る（負なら減らす）
func (g *Gateway) AddItem(ctx context.Context, productID string, quantity int) error {
	return g.call(ctx, http.MethodPost, "/cart/add", addItemRequest{ProductID: productID, Quantity: quantity}, nil)
}

type removeItemRequest struct {
	ProductID string `json:"productId"`
}

func (g *Gateway) RemoveItem(ctx context.Context, productID string) error {
	return g.call(ctx, http.MethodPost, "/cart/remove", removeItemRequest{ProductID: productID}, nil)
}
