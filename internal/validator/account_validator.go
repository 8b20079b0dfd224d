package validator

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/chiragvgohil-05/soffa-clg/internal/domain/model"
	"github.com/chiragvgohil-05/soffa-clg/internal/usecase"
)

var (
	// 入力が不正
	ErrInvalidInput = errors.New("invalid input")
)

var (
	emailRe  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	mobileRe = regexp.MustCompile(`^\+?[0-9]{10,13}$`)
)

type accountValidator struct{}

// Usecaseは interface を依存注入
func NewAccountValidator() usecase.AccountValidator {
	return &accountValidator{}
}

// ログインの入力を検証
func (v *accountValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	email = strings.TrimSpace(email)

	// 必須チェック
	if email == "" || password == "" {
		return fmt.Errorf("%w: email and password required", ErrInvalidInput)
	}
	if !isEmailLike(email) {
		return fmt.Errorf("%w: email", ErrInvalidInput)
	}
	return nil
}

// サインアップの入力を検証
func (v *accountValidator) ValidateRegister(ctx context.Context, in model.Registration) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name required", ErrInvalidInput)
	}
	if err := v.ValidateLogin(ctx, in.Email, in.Password); err != nil {
		return err
	}

	// パスワード最低文字数
	if utf8.RuneCountInString(in.Password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}

	// 電話番号は任意。あれば形式チェック
	if in.Mobile != "" && !isMobileLike(in.Mobile) {
		return fmt.Errorf("%w: mobile", ErrInvalidInput)
	}
	return nil
}

// プロフィール更新の入力を検証
func (v *accountValidator) ValidateProfile(ctx context.Context, in model.ProfileUpdate) error {
	if in.Name == "" && in.Mobile == "" && in.Address == "" {
		return fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	if in.Mobile != "" && !isMobileLike(in.Mobile) {
		return fmt.Errorf("%w: mobile", ErrInvalidInput)
	}
	if utf8.RuneCountInString(in.Address) > 500 {
		return fmt.Errorf("%w: address too long", ErrInvalidInput)
	}
	return nil
}

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	return emailRe.MatchString(s)
}

// 空白とハイフンは無視する
func isMobileLike(s string) bool {
	s = strings.NewReplacer(" ", "", "-", "").Replace(s)
	return mobileRe.MatchString(s)
}
