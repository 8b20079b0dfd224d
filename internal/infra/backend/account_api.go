package backend

import (
	"context"
	"net/http"

	"github.com/chiragvgohil-05/soffa-clg/internal/domain/model"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string  `json:"token"`
	User  userDTO `json:"user"`
}

func (g *Gateway) Login(ctx context.Context, email string, password string) (model.LoginResult, error) {
	var out loginResponse
	if err := g.call(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, &out); err != nil {
		return model.LoginResult{}, err
	}
	return model.LoginResult{Token: out.Token, User: out.User.toModel()}, nil
}

func (g *Gateway) Register(ctx context.Context, in model.Registration) error {
	return g.call(ctx, http.MethodPost, "/auth/register", in, nil)
}

func (g *Gateway) GetProfile(ctx context.Context) (model.User, error) {
	var out userDTO
	if err := g.call(ctx, http.MethodGet, "/auth/profile", nil, &out); err != nil {
		return model.User{}, err
	}
	return out.toModel(), nil
}

func (g *Gateway) UpdateProfile(ctx context.Context, in model.ProfileUpdate) (model.User, error) {
	var out userDTO
	if err := g.call(ctx, http.MethodPut, "/auth/profile", in, &out); err != nil {
		return model.User{}, err
	}
	return out.toModel(), nil
}
