package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/chiragvgohil-05/soffa-clg/internal/domain/model"
	repo "github.com/chiragvgohil-05/soffa-clg/internal/repository"
	"github.com/chiragvgohil-05/soffa-clg/internal/usecase"
)

// State は1ブラウザ分のアプリ状態（資格情報・カート・決済・通知）。
// usecase からは Principal / Notifier、バックエンドからは Credentials に見える。
type State struct {
	ID string

	Cart     *usecase.CartStore
	Checkout *usecase.CheckoutOrchestrator
	Account  *usecase.AccountUsecase
	Admin    *usecase.AdminUsecase
	Notices  *NoticeQueue

	log *slog.Logger

	mu       sync.RWMutex
	cred     model.Credential
	lastSeen time.Time
}

func (s *State) HasCredential() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred.Present()
}

func (s *State) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred.UserID
}

func (s *State) Credential() model.Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred
}

func (s *State) BearerToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred.Token
}

// ClearCredential はバックエンドが401を返したときに呼ばれる
func (s *State) ClearCredential() {
	if !s.HasCredential() {
		return
	}
	s.log.Info("credential rejected by backend, tearing down session")
	s.Teardown()
}

func (s *State) Notify(level usecase.NoticeLevel, message string) {
	s.Notices.Push(level, message)
}

// Init はログイン直後。カートを取り、検証待ちのレシートを出し直す。
func (s *State) Init(ctx context.Context, cred model.Credential) {
	s.mu.Lock()
	s.cred = cred
	s.lastSeen = time.Now()
	s.mu.Unlock()

	//失敗しても通知済み
	_ = s.Cart.FetchCart(ctx)

	n, err := s.Checkout.RetryPending(ctx)
	switch {
	case err != nil && !errors.Is(err, repo.ErrUnauthorized):
		s.log.Warn("retry pending receipts failed", slog.String("error", err.Error()))
	case n > 0:
		s.log.Info("pending receipts verified", slog.Int("count", n))
	}
}

// Teardown はログアウトと401。実行中のカート更新は待たない（401は更新中のgoroutineからも来る）。
func (s *State) Teardown() {
	s.mu.Lock()
	s.cred = model.Credential{}
	s.mu.Unlock()

	s.Cart.Reset()
	s.Checkout.Reset()
}

// Touch は最終アクセス時刻を更新する
func (s *State) Touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *State) idleSince(now time.Time) time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return now.Sub(s.lastSeen)
}

var (
	_ usecase.Principal = (*State)(nil)
	_ usecase.Notifier  = (*State)(nil)
)
