package model

import "time"

// セッション中に保持するベアラートークン
type Credential struct {
	Token     string
	Role      Role
	UserID    string
	ExpiresAt time.Time // JWTでなければゼロ値
}

func (c Credential) Present() bool {
	return c.Token != ""
}

// Expired はexpが分かる場合だけ判定する
func (c Credential) Expired(now time.Time) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(c.ExpiresAt)
}

func (c Credential) IsAdmin() bool {
	return c.Role == RoleAdmin
}
