package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/chiragvgohil-05/soffa-clg/internal/domain/model"
)

// GET /admin/orders は {"orders": [...]}（data で包まれていても同じ）
type ordersPayload struct {
	Orders []orderDTO `json:"orders"`
}

func (g *Gateway) ListOrders(ctx context.Context) ([]model.Order, error) {
	var out ordersPayload
	if err := g.call(ctx, http.MethodGet, "/admin/orders", nil, &out); err != nil {
		return nil, err
	}
	orders := make([]model.Order, 0, len(out.Orders))
	for _, o := range out.Orders {
		orders = append(orders, o.toModel())
	}
	return orders, nil
}

func (g *Gateway) DeleteOrder(ctx context.Context, orderID string) error {
	return g.call(ctx, http.MethodDelete, "/admin/orders/"+url.PathEscape(orderID), nil, nil)
}

// Dashboard は統計をそのまま返す
func (g *Gateway) Dashboard(ctx context.Context) ([]byte, error) {
	var out json.RawMessage
	if err := g.call(ctx, http.MethodGet, "/admin/dashboard", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *Gateway) ListUsers(ctx context.Context) ([]model.User, error) {
	var out []userDTO
	if err := g.call(ctx, http.MethodGet, "/auth/users", nil, &out); err != nil {
		return nil, err
	}
	users := make([]model.User, 0, len(out))
	for _, u := range out {
		users = append(users, u.toModel())
	}
	return users, nil
}

func (g *Gateway) DeleteUser(ctx context.Context, userID string) error {
	return g.call(ctx, http.MethodDelete, "/auth/users/"+url.PathEscape(userID), nil, nil)
}
