package models

import "time"

type AuditAction string

const AuditLogTable = "inv_audit_logs"

const (
	AuditCreate AuditAction = "CREATE"
	AuditUpdate AuditAction = "UPDATE"
	AuditDelete AuditAction = "DELETE"
)

// AuditLog 每次提交后的变更记录，由异步 worker 写入
type AuditLog struct {
	ID        string      `gorm:"type:uuid;primaryKey" json:"id"`
	Action    AuditAction `gorm:"size:10;not null" json:"action"`
	Table     string      `gorm:"column:table_name;size:64;index:idx_audit_record;not null" json:"tableName"`
	RecordID  string      `gorm:"size:64;index:idx_audit_record;not null" json:"recordId"`
	OldValues *string     `gorm:"type:jsonb" json:"oldValues,omitempty"`
	NewValues *string     `gorm:"type:jsonb" json:"newValues,omitempty"`
	ActorID   string      `gorm:"size:120;not null" json:"actorId"`
	CreatedAt time.Time   `gorm:"index" json:"createdAt"`
}

func (AuditLog) TableName() string { return AuditLogTable }
