package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// SearchFilter narrows and pages an organization listing. Page and PageSize
// are assumed already clamped by the caller.
type SearchFilter struct {
	Query    string
	Sort     string
	Order    string
	Page     int
	PageSize int
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateOrganization(ctx context.Context, org Organization) error
	GetOrganization(ctx context.Context, id snowflake.ID) (*Organization, error)
	ListOrganizations(ctx context.Context) ([]Organization, error)
	SearchOrganizations(ctx context.Context, filter SearchFilter) ([]Organization, int64, error)
	ListOrganizationsByOwner(ctx context.Context, userSub string) ([]Organization, error)
	UpdateOrganizationName(ctx context.Context, id snowflake.ID, name string) error
	DeleteOrganization(ctx context.Context, id snowflake.ID) error

	AddMember(ctx context.Context, member Member) error
	GetMember(ctx context.Context, orgID, memberID snowflake.ID) (*Member, error)
	ListMembers(ctx context.Context, orgID snowflake.ID) ([]Member, error)
	HasMember(ctx context.Context, orgID snowflake.ID, userSub string) (bool, error)
	HasOwnerMembership(ctx context.Context, orgID snowflake.ID, userSub string) (bool, error)
	CountOwners(ctx context.Context, orgID snowflake.ID) (int64, error)
	UpdateMemberRole(ctx context.Context, memberID snowflake.ID, role string) error
	DeleteMember(ctx context.Context, memberID snowflake.ID) error
	DeleteMembersByOrg(ctx context.Context, orgID snowflake.ID) error
}
