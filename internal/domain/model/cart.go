package model

import "github.com/shopspring/decimal"

// カートに表示するための商品情報（カート取得時に一緒に返ってくる複製）
type ProductSnapshot struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Brand    string          `json:"brand,omitempty"`
	Category string          `json:"category,omitempty"`
	Image    string          `json:"image,omitempty"`
	Price    decimal.Decimal `json:"price"`
}

// カートの明細
// Priceは追加時点の単価。合計はこちらで計算する。
type CartLine struct {
	Product  ProductSnapshot `json:"product"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Subtotal は単価×数量
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ログイン中ユーザーのカート
type Cart struct {
	Items      []CartLine      `json:"items"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// EmptyCart は取得失敗時のフォールバック
func EmptyCart() Cart {
	return Cart{Items: []CartLine{}, TotalPrice: decimal.Zero}
}

// Sum は明細から合計を計算し直す
func (c Cart) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Recalculate は TotalPrice を明細の合計に揃える
func (c *Cart) Recalculate() {
	if c.Items == nil {
		c.Items = []CartLine{}
	}
	c.TotalPrice = c.Sum()
}

// Consistent は TotalPrice == Σ(price × quantity) を満たすか
func (c Cart) Consistent() bool {
	return c.TotalPrice.Equal(c.Sum())
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// IndexOf は商品IDの明細位置（無ければ -1）
func (c Cart) IndexOf(productID string) int {
	for i, it := range c.Items {
		if it.Product.ID == productID {
			return i
		}
	}
	return -1
}

// Clone は明細スライスごと複製する
func (c Cart) Clone() Cart {
	items := make([]CartLine, len(c.Items))
	copy(items, c.Items)
	return Cart{Items: items, TotalPrice: c.TotalPrice}
}

// ItemCount はナビバーのバッジ用（数量の合計）
func (c Cart) ItemCount() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}
