package models

import (
	"time"

	"gorm.io/gorm"
)

// Operator is a console account. SiteID 0 means the operator sees every site.
type Operator struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Email     string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name      string         `gorm:"size:255" json:"name,omitempty"`
	Password  string         `gorm:"size:255;not null" json:"-"` // bcrypt hash
	SiteID    int            `gorm:"index;default:0" json:"site_id"`
	// nil means no profile: the operator can sign in but do nothing.
	ProfileID *uint    `gorm:"index" json:"profile_id,omitempty"`
	Profile   *Profile `gorm:"foreignKey:ProfileID" json:"profile,omitempty"`
}

// DisplayName falls back to the email when no name is set.
func (o Operator) DisplayName() string {
	if o.Name != "" {
		return o.Name
	}
	return o.Email
}
