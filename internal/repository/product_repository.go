package repository

import (
	"context"
	"errors"
	"time"

	"github.com/chiragvgohil-05/soffa-clg/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 商品の読み取りAPI
type CatalogGateway interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, productID string) (model.Product, error)
	SearchProducts(ctx context.Context, query string) ([]model.Product, error)
}

// 商品一覧のキャッシュ（無くても動く）
type CatalogCache interface {
	GetProducts(ctx context.Context) ([]model.Product, bool, error)
	SetProducts(ctx context.Context, products []model.Product, ttl time.Duration) error
	GetProduct(ctx context.Context, productID string) (model.Product, bool, error)
	SetProduct(ctx context.Context, p model.Product, ttl time.Duration) error
}
