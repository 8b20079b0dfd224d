package repository

import (
	"context"

	"github.com/chiragvgohil-05/soffa-clg/internal/domain/model"
)

// /auth 系のバックエンドAPI
type AccountGateway interface {
	Login(ctx context.Context, email string, password string) (model.LoginResult, error)
	Register(ctx context.Context, in model.Registration) error
	GetProfile(ctx context.Context) (model.User, error)
	UpdateProfile(ctx context.Context, in model.ProfileUpdate) (model.User, error)
}
