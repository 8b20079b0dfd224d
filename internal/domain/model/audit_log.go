package model

import "time"

// 管理者が行った操作の種類
type AuditAction string

const (
	AuditActionDeleteOrder AuditAction = "DELETE_ORDER"
	AuditActionDeleteUser  AuditAction = "DELETE_USER"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceOrder AuditResourceType = "order"
	AuditResourceUser  AuditResourceType = "user"
)

// 監査ログ（管理者操作ログ）。
// 削除はバックエンドで行われるので、ここには「誰が」「どの対象を」「いつ」だけ残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作した管理者のID
	ActorUserID string `gorm:"type:varchar(64);not null;index" json:"actor_user_id"`

	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`
	ResourceID   string            `gorm:"type:varchar(64);not null;index" json:"resource_id"`

	//削除前の表示用情報（JSON）
	BeforeJSON string `gorm:"type:text" json:"before_json,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "admin_audit_logs"
}
