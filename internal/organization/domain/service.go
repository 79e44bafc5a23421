package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

const (
	RoleOwner  = "Owner"
	RoleMember = "Member"
)

// ValidRole reports whether role is one of the two member roles.
func ValidRole(role string) bool {
	return role == RoleOwner || role == RoleMember
}

// Caller identifies the authenticated subject performing an operation.
type Caller struct {
	Sub  string
	Name string
}

type Service interface {
	Create(ctx context.Context, caller Caller, req CreateOrganizationRequest) (*Organization, error)
	List(ctx context.Context) ([]Organization, error)
	Search(ctx context.Context, req SearchRequest) (*SearchResult, error)
	Get(ctx context.Context, orgID string) (*Organization, error)
	ListMine(ctx context.Context, callerSub string) ([]Organization, error)
	UpdateName(ctx context.Context, caller Caller, orgID string, name string) (*Organization, error)
	Delete(ctx context.Context, caller Caller, orgID string) error

	ListMembers(ctx context.Context, orgID string) ([]Member, error)
	AddMember(ctx context.Context, caller Caller, orgID string, req AddMemberRequest) (*Member, error)
	ChangeRole(ctx context.Context, caller Caller, orgID, memberID, newRole string) error
	RemoveMember(ctx context.Context, caller Caller, orgID, memberID string) error

	// IsOwner reports whether callerSub holds an Owner membership row in the
	// organization, falling back to the organization's legacy creator field.
	IsOwner(ctx context.Context, orgID snowflake.ID, callerSub string) (bool, error)
}

type CreateOrganizationRequest struct {
	Name string
}

type AddMemberRequest struct {
	UserSub  string
	UserName string
	Role     string
}

const (
	SortByName      = "name"
	SortByCreatedAt = "createdAt"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

type SearchRequest struct {
	Query    string
	Sort     string
	Order    string
	Page     int
	PageSize int
}

type SearchResult struct {
	Items    []Organization `json:"items"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

var (
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidRole         = errors.New("invalid_role")
	ErrInvalidUserSub      = errors.New("invalid_user_sub")
	ErrInvalidUserName     = errors.New("invalid_user_name")
	ErrForbidden           = errors.New("forbidden")
	ErrOrganizationNotFound = errors.New("organization_not_found")
	ErrMemberNotFound      = errors.New("member_not_found")
	ErrMemberExists        = errors.New("member_exists")
	ErrLastOwner           = errors.New("last_owner")
)
