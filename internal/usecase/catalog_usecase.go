package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/chiragvgohil-05/soffa-clg/internal/domain/model"
	repo "github.com/chiragvgohil-05/soffa-clg/internal/repository"
)

type CatalogUsecase struct {
	gateway repo.CatalogGateway
	cache   repo.CatalogCache // nil ならキャッシュしない
	ttl     time.Duration
	log     *slog.Logger
}

// DI
func NewCatalogUsecase(gateway repo.CatalogGateway, cache repo.CatalogCache, ttl time.Duration, logger *slog.Logger) *CatalogUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogUsecase{
		gateway: gateway,
		cache:   cache,
		ttl:     ttl,
		log:     logger.With(slog.String("component", "catalog")),
	}
}

// GET /api/products の入力DTO
type ListProductsInput struct {
	Page     int
	Limit    int
	Q        string
	Category string
	Brand    string
	InStock  bool
	Sort     string
}

type ProductListOutput struct {
	Items      []model.Product `json:"items"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	Categories []string        `json:"categories"`
	Brands     []string        `json:"brands"`
}

// ListProducts は全件を取ってこちらで絞り込む（バックエンドに絞り込みAPIが無い）
func (u *CatalogUsecase) ListProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}
	switch in.Sort {
	case "", "price_asc", "price_desc", "rating":
	default:
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid sort")
	}

	all, err := u.loadProducts(ctx)
	if err != nil {
		return ProductListOutput{}, err
	}

	filtered := FilterProducts(all, ProductFilter{
		Term:     in.Q,
		Category: in.Category,
		Brand:    in.Brand,
		InStock:  in.InStock,
	})
	sortProducts(filtered, in.Sort)

	categories, brands := Facets(all)
	out := ProductListOutput{
		Items:      []model.Product{},
		Total:      len(filtered),
		Page:       in.Page,
		Limit:      in.Limit,
		Categories: categories,
		Brands:     brands,
	}

	start := (in.Page - 1) * in.Limit
	if start < len(filtered) {
		end := start + in.Limit
		if end > len(filtered) {
			end = len(filtered)
		}
		out.Items = filtered[start:end]
	}
	return out, nil
}

func (u *CatalogUsecase) GetProduct(ctx context.Context, productID string) (model.Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	if u.cache != nil {
		p, ok, err := u.cache.GetProduct(ctx, productID)
		if err != nil {
			u.log.Warn("catalog cache read failed", slog.String("error", err.Error()))
		} else if ok {
			return p, nil
		}
	}

	p, err := u.gateway.GetProduct(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return model.Product{}, err
	}

	if u.cache != nil {
		if err := u.cache.SetProduct(ctx, p, u.ttl); err != nil {
			u.log.Warn("catalog cache write failed", slog.String("error", err.Error()))
		}
	}
	return p, nil
}

// Search は検索バー。空の検索語は受け付けない。
func (u *CatalogUsecase) Search(ctx context.Context, query string) ([]model.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "query required")
	}
	if len(query) > 100 {
		return nil, NewHTTPError(http.StatusBadRequest, "query too long")
	}
	items, err := u.gateway.SearchProducts(ctx, query)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Product{}
	}
	return items, nil
}

// Snapshot はカートへの新規追加用
func (u *CatalogUsecase) Snapshot(ctx context.Context, productID string) (model.ProductSnapshot, error) {
	p, err := u.GetProduct(ctx, productID)
	if err != nil {
		return model.ProductSnapshot{}, err
	}
	return p.Snapshot(), nil
}

func (u *CatalogUsecase) loadProducts(ctx context.Context) ([]model.Product, error) {
	if u.cache != nil {
		items, ok, err := u.cache.GetProducts(ctx)
		if err != nil {
			u.log.Warn("catalog cache read failed", slog.String("error", err.Error()))
		} else if ok {
			return items, nil
		}
	}

	items, err := u.gateway.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if u.cache != nil {
		if err := u.cache.SetProducts(ctx, items, u.ttl); err != nil {
			u.log.Warn("catalog cache write failed", slog.String("error", err.Error()))
		}
	}
	return items, nil
}

// ProductFilter は一覧画面の絞り込み条件
type ProductFilter struct {
	Term     string // 名前・ブランド・カテゴリの部分一致
	Category string
	Brand    string
	InStock  bool
}

// FilterProducts は条件に合う商品を元の順序のまま返す
func FilterProducts(products []model.Product, f ProductFilter) []model.Product {
	term := strings.ToLower(strings.TrimSpace(f.Term))
	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Brand), term) &&
			!strings.Contains(strings.ToLower(p.Category), term) {
			continue
		}
		if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
			continue
		}
		if f.Brand != "" && !strings.EqualFold(p.Brand, f.Brand) {
			continue
		}
		if f.InStock && !p.InStock {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Facets はカテゴリとブランドの一覧（重複なし・ソート済み）
func Facets(products []model.Product) (categories []string, brands []string) {
	categories = uniqueSorted(products, func(p model.Product) string { return p.Category })
	brands = uniqueSorted(products, func(p model.Product) string { return p.Brand })
	return categories, brands
}

func uniqueSorted(products []model.Product, key func(model.Product) string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, p := range products {
		k := key(p)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortProducts(products []model.Product, by string) {
	switch by {
	case "price_asc":
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].SellPrice().LessThan(products[j].SellPrice())
		})
	case "price_desc":
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].SellPrice().GreaterThan(products[j].SellPrice())
		})
	case "rating":
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Rating > products[j].Rating
		})
	}
}
