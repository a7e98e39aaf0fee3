package models

import (
	"time"

	"gorm.io/gorm"
)

// Profile groups permissions. An operator has one profile.
type Profile struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Name        string         `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string         `gorm:"size:500" json:"description,omitempty"`
	IsSystem    bool           `gorm:"default:false" json:"is_system"`
	// Many-to-many via profile_permissions.
	Permissions []Permission `gorm:"many2many:profile_permissions;" json:"permissions,omitempty"`
	Operators   []Operator   `gorm:"foreignKey:ProfileID" json:"operators,omitempty"`
}

// Permission is one "resource:action" grant. Either part may be "*".
type Permission struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Resource    string         `gorm:"size:50;not null;uniqueIndex:idx_perm_resource_action" json:"resource"`
	Action      string         `gorm:"size:50;not null;uniqueIndex:idx_perm_resource_action" json:"action"`
	Description string         `gorm:"size:200" json:"description,omitempty"`
}

// Code returns "resource:action".
func (p Permission) Code() string {
	return p.Resource + ":" + p.Action
}
