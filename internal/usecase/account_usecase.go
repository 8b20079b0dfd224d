package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/chiragvgohil-05/soffa-clg/internal/domain/model"
	repo "github.com/chiragvgohil-05/soffa-clg/internal/repository"
)

// usecaseがValidatorInterfaceに依存する約束
type AccountValidator interface {
	ValidateLogin(ctx context.Context, email string, password string) error
	ValidateRegister(ctx context.Context, in model.Registration) error
	ValidateProfile(ctx context.Context, in model.ProfileUpdate) error
}

type AccountUsecase struct {
	gateway   repo.AccountGateway
	validator AccountValidator
}

func NewAccountUsecase(gateway repo.AccountGateway, validator AccountValidator) *AccountUsecase {
	return &AccountUsecase{gateway: gateway, validator: validator}
}

// Login は資格情報を受け取るだけ。セッションへの保存は呼び出し側。
func (u *AccountUsecase) Login(ctx context.Context, email string, password string) (model.LoginResult, error) {
	email = strings.TrimSpace(email)
	if err := u.validator.ValidateLogin(ctx, email, password); err != nil {
		return model.LoginResult{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := u.gateway.Login(ctx, email, password)
	if errors.Is(err, repo.ErrUnauthorized) {
		return model.LoginResult{}, NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}
	if err != nil {
		return model.LoginResult{}, err
	}
	if res.Token == "" {
		return model.LoginResult{}, NewHTTPError(http.StatusBadGateway, "invalid login response")
	}
	return res, nil
}

func (u *AccountUsecase) Register(ctx context.Context, in model.Registration) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Mobile = strings.TrimSpace(in.Mobile)
	if err := u.validator.ValidateRegister(ctx, in); err != nil {
		return NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return u.gateway.Register(ctx, in)
}

func (u *AccountUsecase) Profile(ctx context.Context) (model.User, error) {
	return u.gateway.GetProfile(ctx)
}

// UpdateProfile は決済前に電話番号と住所を埋めるための更新
func (u *AccountUsecase) UpdateProfile(ctx context.Context, in model.ProfileUpdate) (model.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Mobile = strings.TrimSpace(in.Mobile)
	in.Address = strings.TrimSpace(in.Address)
	if err := u.validator.ValidateProfile(ctx, in); err != nil {
		return model.User{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return u.gateway.UpdateProfile(ctx, in)
}
