package model

import "time"

type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Mobile    string    `json:"mobile"`
	Address   string    `json:"address"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProfileComplete は決済に必要な住所と電話番号が揃っているか
func (u User) ProfileComplete() bool {
	return u.Mobile != "" && u.Address != ""
}

// PUT /auth/profile
type ProfileUpdate struct {
	Name    string `json:"name"`
	Mobile  string `json:"mobile"`
	Address string `json:"address"`
}

// POST /auth/register
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Mobile   string `json:"mobile,omitempty"`
}

// POST /auth/login の結果
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
