// Package domain contains persistence models and contracts for the
// organization service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Organization represents a tenant. CreatedBy holds the identity-provider
// subject of the creator and doubles as the legacy ownership fallback for
// organizations that predate membership rows.
type Organization struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	Name          string       `gorm:"type:text;not null" json:"name"`
	Slug          string       `gorm:"type:text;not null" json:"slug"`
	CreatedBy     string       `gorm:"type:text;column:created_by;index" json:"created_by"`
	CreatedByName string       `gorm:"type:text;column:created_by_name" json:"created_by_name"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Organization) TableName() string { return "organizations" }

// Member represents membership of an identity-provider subject in an
// organization. A subject appears at most once per organization.
type Member struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"not null;index;uniqueIndex:ux_org_members_org_sub,priority:1" json:"org_id"`
	UserSub   string       `gorm:"type:text;not null;uniqueIndex:ux_org_members_org_sub,priority:2" json:"user_sub"`
	UserName  string       `gorm:"type:text;not null" json:"user_name"`
	Role      string       `gorm:"type:text;not null" json:"role"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Member) TableName() string { return "organization_members" }
