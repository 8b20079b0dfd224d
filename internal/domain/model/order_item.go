package model

import "github.com/shopspring/decimal"

// 注文明細（注文時点の商品名と単価）
type OrderItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}
