package models

import "time"

// AuditLog is written after every successful mutation sent to the backend.
type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OperatorID uint      `gorm:"index" json:"operator_id"`
	Operator   string    `gorm:"size:255" json:"operator"` // email at the time of the action
	Resource   string    `gorm:"size:50;index" json:"resource"`
	RecordID   int       `json:"record_id"`             // 0 when the backend did not return one
	Action     string    `gorm:"size:20" json:"action"` // create, update, delete, toggle
	RequestID  string    `gorm:"size:64" json:"request_id"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}
