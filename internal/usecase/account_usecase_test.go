package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/chiragvgohil-05/soffa-clg/internal/domain/model"
	repo "github.com/chiragvgohil-05/soffa-clg/internal/repository"
	"github.com/chiragvgohil-05/soffa-clg/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAccountUsecase_Login_ValidationError(t *testing.T) {
	v := new(ValidatorMock)
	gw := new(AccountGatewayMock)
	v.On("ValidateLogin", mock.Anything, "bad", "x").Return(errors.New("invalid email")).Once()
	uc := usecase.NewAccountUsecase(gw, v)

	_, err := uc.Login(context.Background(), " bad ", "x")
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 400, he.Status)
	gw.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}

func TestAccountUsecase_Login_BadCredentials(t *testing.T) {
	v := new(ValidatorMock)
	gw := new(AccountGatewayMock)
	v.On("ValidateLogin", mock.Anything, "a@b.com", "password1").Return(nil).Once()
	gw.On("Login", mock.Anything, "a@b.com", "password1").Return(model.LoginResult{}, repo.ErrUnauthorized).Once()
	uc := usecase.NewAccountUsecase(gw, v)

	_, err := uc.Login(context.Background(), "a@b.com", "password1")
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 401, he.Status)
	assert.Equal(t, "invalid email or password", he.Message)
}

func TestAccountUsecase_Login_MissingToken(t *testing.T) {
	v := new(ValidatorMock)
	gw := new(AccountGatewayMock)
	v.On("ValidateLogin", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	gw.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(model.LoginResult{User: model.User{ID: "u1"}}, nil).Once()
	uc := usecase.NewAccountUsecase(gw, v)

	_, err := uc.Login(context.Background(), "a@b.com", "password1")
	assertErrContains(t, err, "invalid login response")
}

func TestAccountUsecase_Login_Success(t *testing.T) {
	v := new(ValidatorMock)
	gw := new(AccountGatewayMock)
	v.On("ValidateLogin", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	gw.On("Login", mock.Anything, "a@b.com", "password1").
		Return(model.LoginResult{Token: "tok", User: model.User{ID: "u1", Role: model.RoleAdmin}}, nil).Once()
	uc := usecase.NewAccountUsecase(gw, v)

	res, err := uc.Login(context.Background(), "a@b.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, "tok", res.Token)
	assert.Equal(t, model.RoleAdmin, res.User.Role)
}

func TestAccountUsecase_Register_TrimsAndForwards(t *testing.T) {
	v := new(ValidatorMock)
	gw := new(AccountGatewayMock)
	want := model.Registration{Name: "Asha", Email: "a@b.com", Password: "password1"}
	v.On("ValidateRegister", mock.Anything, want).Return(nil).Once()
	gw.On("Register", mock.Anything, want).Return(nil).Once()
	uc := usecase.NewAccountUsecase(gw, v)

	err := uc.Register(context.Background(), model.Registration{Name: " Asha ", Email: " a@b.com", Password: "password1"})
	require.NoError(t, err)
	gw.AssertExpectations(t)
}

func TestAccountUsecase_UpdateProfile_ValidationError(t *testing.T) {
	v := new(ValidatorMock)
	gw := new(AccountGatewayMock)
	v.On("ValidateProfile", mock.Anything, mock.Anything).Return(errors.New("invalid mobile")).Once()
	uc := usecase.NewAccountUsecase(gw, v)

	_, err := uc.UpdateProfile(context.Background(), model.ProfileUpdate{Mobile: "12"})
	assertErrContains(t, err, "invalid mobile")
	gw.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
}
