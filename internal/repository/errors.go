package repository

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// 401を受けた（資格情報はクリア済み）
	ErrUnauthorized = errors.New("unauthorized")

	// ネットワーク断・ブレーカー開放など一時的な失敗
	ErrUnavailable = errors.New("backend unavailable")
)

// APIError はバックエンドが返した2xx以外のレスポンス
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend %d", e.Status)
	}
	return fmt.Sprintf("backend %d: %s", e.Status, e.Message)
}

// AsAPIError は errors.As の薄いラッパー
func AsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	ok := errors.As(err, &ae)
	return ae, ok
}

// IsTransient は再試行してよい失敗か
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnavailable) {
		return true
	}
	if ae, ok := AsAPIError(err); ok {
		return ae.Status >= http.StatusInternalServerError
	}
	return false
}
