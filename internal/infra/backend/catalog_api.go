package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/chiragvgohil-05/soffa-clg/internal/domain/model"
	repo "github.com/chiragvgohil-05/soffa-clg/internal/repository"
)

func (g *Gateway) ListProducts(ctx context.Context) ([]model.Product, error) {
	var out []productDTO
	if err := g.call(ctx, http.MethodGet, "/products", nil, &out); err != nil {
		return nil, err
	}
	return toProducts(out), nil
}

func (g *Gateway) GetProduct(ctx context.Context, productID string) (model.Product, error) {
	var out productDTO
	err := g.call(ctx, http.MethodGet, "/products/"+url.PathEscape(productID), nil, &out)
	if ae, ok := repo.AsAPIError(err); ok && ae.Status == http.StatusNotFound {
		return model.Product{}, fmt.Errorf("product %s: %w", productID, repo.ErrNotFound)
	}
	if err != nil {
		return model.Product{}, err
	}
	return out.toModel(), nil
}

func (g *Gateway) SearchProducts(ctx context.Context, query string) ([]model.Product, error) {
	var out []productDTO
	path := "/products/search?" + url.Values{"query": {query}}.Encode()
	if err := g.call(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return toProducts(out), nil
}
