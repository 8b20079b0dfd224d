package backend

import (
	"time"

	"github.com/chiragvgohil-05/soffa-clg/internal/domain/model"

	"github.com/shopspring/decimal"
)

// バックエンドはMongoの _id を返す。id しか無い場合にも備える。
type idDTO struct {
	MongoID string `json:"_id"`
	ID      string `json:"id"`
}

func (d idDTO) value() string {
	if d.MongoID != "" {
		return d.MongoID
	}
	return d.ID
}

type productDTO struct {
	idDTO
	Name          string          `json:"name"`
	Brand         string          `json:"brand"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	Images        []string        `json:"images"`
	Image         string          `json:"image"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	Discount      decimal.Decimal `json:"discount"`
	Price         decimal.Decimal `json:"price"`
	Rating        float64         `json:"rating"`
	InStock       *bool           `json:"inStock"`
	Stock         *int            `json:"stock"`
}

func (d productDTO) toModel() model.Product {
	images := d.Images
	if len(images) == 0 && d.Image != "" {
		images = []string{d.Image}
	}
	if images == nil {
		images = []string{}
	}

	//inStock が無ければ在庫数から判断、どちらも無ければ在庫あり
	inStock := true
	switch {
	case d.InStock != nil:
		inStock = *d.InStock
	case d.Stock != nil:
		inStock = *d.Stock > 0
	}

	return model.Product{
		ID:            d.value(),
		Name:          d.Name,
		Brand:         d.Brand,
		Category:      d.Category,
		Description:   d.Description,
		Images:        images,
		OriginalPrice: d.OriginalPrice,
		Discount:      d.Discount,
		Price:         d.Price,
		Rating:        d.Rating,
		InStock:       inStock,
	}
}

func toProducts(in []productDTO) []model.Product {
	out := make([]model.Product, 0, len(in))
	for _, d := range in {
		out = append(out, d.toModel())
	}
	return out
}

type cartLineDTO struct {
	Product  productDTO      `json:"product"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type cartDTO struct {
	Items      []cartLineDTO   `json:"items"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

func (d cartDTO) toModel() model.Cart {
	cart := model.Cart{Items: make([]model.CartLine, 0, len(d.Items)), TotalPrice: d.TotalPrice}
	for _, it := range d.Items {
		if it.Quantity <= 0 {
			continue
		}
		p := it.Product.toModel()
		snap := p.Snapshot()
		price := it.Price
		//明細に単価が無ければ商品の販売価格
		if price.IsZero() {
			price = snap.Price
		}
		cart.Items = append(cart.Items, model.CartLine{Product: snap, Quantity: it.Quantity, Price: price})
	}
	return cart
}

type userDTO struct {
	idDTO
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Mobile    string    `json:"mobile"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (d userDTO) toModel() model.User {
	mobile := d.Mobile
	if mobile == "" {
		mobile = d.Phone
	}
	role := model.Role(d.Role)
	if role == "" {
		role = model.RoleUser
	}
	return model.User{
		ID:        d.value(),
		Name:      d.Name,
		Email:     d.Email,
		Mobile:    mobile,
		Address:   d.Address,
		Role:      role,
		CreatedAt: d.CreatedAt,
	}
}

type orderItemDTO struct {
	Product  *productDTO     `json:"product"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type orderDTO struct {
	idDTO
	RazorpayOrderID string                `json:"razorpayOrderId"`
	User            *userDTO              `json:"user"`
	ShippingAddress model.ShippingAddress `json:"shippingAddress"`
	Items           []orderItemDTO        `json:"items"`
	TotalAmount     decimal.Decimal       `json:"totalAmount"`
	Currency        string                `json:"currency"`
	Status          string                `json:"status"`
	OrderDate       *time.Time            `json:"orderDate"`
	PaidAt          *time.Time            `json:"paidAt"`
	CreatedAt       time.Time             `json:"createdAt"`
}

func (d orderDTO) toModel() model.Order {
	o := model.Order{
		ID:              d.value(),
		RazorpayOrderID: d.RazorpayOrderID,
		Shipping:        d.ShippingAddress,
		Items:           make([]model.OrderItem, 0, len(d.Items)),
		Amount:          d.TotalAmount,
		Currency:        d.Currency,
		Status:          model.OrderStatus(d.Status),
		CreatedAt:       d.CreatedAt,
		PaidAt:          d.PaidAt,
	}
	//orderDate → paidAt → createdAt の順
	if d.OrderDate != nil {
		o.CreatedAt = *d.OrderDate
	} else if d.PaidAt != nil && d.CreatedAt.IsZero() {
		o.CreatedAt = *d.PaidAt
	}
	if d.User != nil {
		u := d.User.toModel()
		o.CustomerName = u.Name
		o.CustomerEmail = u.Email
		if o.Shipping.Phone == "" {
			o.Shipping.Phone = u.Mobile
		}
		if o.Shipping.Address == "" {
			o.Shipping.Address = u.Address
		}
	}
	for _, it := range d.Items {
		item := model.OrderItem{Name: it.Name, Price: it.Price, Quantity: it.Quantity}
		if it.Product != nil {
			item.ProductID = it.Product.value()
			if item.Name == "" {
				item.Name = it.Product.Name
			}
		}
		o.Items = append(o.Items, item)
	}
	return o
}
