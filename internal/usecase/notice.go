package usecase

import "time"

type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// ブラウザのトースト1件分
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
	At      time.Time   `json:"at"`
}

// Notifier はユーザーへの通知先（セッションごと）
type Notifier interface {
	Notify(level NoticeLevel, message string)
}

// Principal は usecase から見たセッション
type Principal interface {
	HasCredential() bool
	UserID() string
}
