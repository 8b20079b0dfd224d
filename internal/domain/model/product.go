package model

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// カタログの商品（バックエンド所有、こちらは読み取りのみ）
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Brand         string          `json:"brand"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	Images        []string        `json:"images"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	Discount      decimal.Decimal `json:"discount"`
	Price         decimal.Decimal `json:"price"`
	Rating        float64         `json:"rating,omitempty"`
	InStock       bool            `json:"inStock"`
}

// SellPrice は販売価格。
// バックエンドがpriceを返していればそれを使い、無ければ originalPrice × (1 − discount/100)。
func (p Product) SellPrice() decimal.Decimal {
	if !p.Price.IsZero() {
		return p.Price
	}
	rate := decimal.NewFromInt(1).Sub(p.Discount.Div(hundred))
	return p.OriginalPrice.Mul(rate).Round(2)
}

// Snapshot はカート明細を楽観的に作るための最小情報
func (p Product) Snapshot() ProductSnapshot {
	image := ""
	if len(p.Images) > 0 {
		image = p.Images[0]
	}
	return ProductSnapshot{
		ID:       p.ID,
		Name:     p.Name,
		Brand:    p.Brand,
		Category: p.Category,
		Image:    image,
		Price:    p.SellPrice(),
	}
}
