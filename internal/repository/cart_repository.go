package repository

import (
	"context"

	"github.com/chiragvgohil-05/soffa-clg/internal/domain/model"
)

// /cart 系のバックエンドAPI
type CartGateway interface {
	GetCart(ctx context.Context) (model.Cart, error)
	AddItem(ctx context.Context, productID string, quantity int) error
	RemoveItem(ctx context.Context, productID string) error
}
