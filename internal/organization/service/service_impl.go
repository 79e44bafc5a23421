package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	auditdomain "github.com/orgboard/orgboard/internal/audit/domain"
	"github.com/orgboard/orgboard/internal/organization/domain"
	"github.com/orgboard/orgboard/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxPageSize = 100

type service struct {
	db    *gorm.DB
	repo  domain.Repository
	genID *snowflake.Node
	audit auditdomain.Service
	log   *zap.Logger
}

func NewService(conn *gorm.DB, repo domain.Repository, genID *snowflake.Node, auditSvc auditdomain.Service, log *zap.Logger) domain.Service {
	return &service{
		db:    conn,
		repo:  repo,
		genID: genID,
		audit: auditSvc,
		log:   log.Named("organization.service"),
	}
}

func (s *service) Create(ctx context.Context, caller domain.Caller, req domain.CreateOrganizationRequest) (*domain.Organization, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	org := domain.Organization{
		ID:            s.genID.Generate(),
		Name:          name,
		Slug:          slug.Make(name),
		CreatedBy:     caller.Sub,
		CreatedByName: caller.Name,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// The organization and its creator's Owner membership are inserted in one
	// transaction, so a new organization never lands without a manageable
	// owner. The legacy created_by fallback in IsOwner stays in place for
	// rows written before this path existed.
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateOrganization(ctx, org); err != nil {
			return err
		}

		if caller.Sub == "" {
			return nil
		}

		userName := caller.Name
		if userName == "" {
			userName = "Unknown"
		}
		member := domain.Member{
			ID:        s.genID.Generate(),
			OrgID:     org.ID,
			UserSub:   caller.Sub,
			UserName:  userName,
			Role:      domain.RoleOwner,
			CreatedAt: now,
		}
		return repo.AddMember(ctx, member)
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, auditdomain.Entry{
		OrgID:      org.ID,
		ActorSub:   caller.Sub,
		Action:     "organization.created",
		TargetType: "organization",
		TargetID:   org.ID.String(),
		Metadata:   map[string]any{"name": name},
	})

	return &org, nil
}

func (s *service) List(ctx context.Context) ([]domain.Organization, error) {
	return s.repo.ListOrganizations(ctx)
}

func (s *service) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	sort := domain.SortByCreatedAt
	if req.Sort == domain.SortByName {
		sort = domain.SortByName
	}
	order := domain.OrderDesc
	if strings.EqualFold(req.Order, domain.OrderAsc) {
		order = domain.OrderAsc
	}

	items, total, err := s.repo.SearchOrganizations(ctx, domain.SearchFilter{
		Query:    strings.TrimSpace(req.Query),
		Sort:     sort,
		Order:    order,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, err
	}

	if items == nil {
		items = []domain.Organization{}
	}
	return &domain.SearchResult{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *service) Get(ctx context.Context, orgID string) (*domain.Organization, error) {
	id, err := parseOrgID(orgID)
	if err != nil {
		return nil, err
	}
	return s.repo.GetOrganization(ctx, id)
}

func (s *service) ListMine(ctx context.Context, callerSub string) ([]domain.Organization, error) {
	if strings.TrimSpace(callerSub) == "" {
		return nil, domain.ErrForbidden
	}
	return s.repo.ListOrganizationsByOwner(ctx, callerSub)
}

func (s *service) UpdateName(ctx context.Context, caller domain.Caller, orgID string, name string) (*domain.Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	id, err := parseOrgID(orgID)
	if err != nil {
		return nil, err
	}

	org, err := s.repo.GetOrganization(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, org, caller.Sub); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateOrganizationName(ctx, id, name); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, auditdomain.Entry{
		OrgID:      id,
		ActorSub:   caller.Sub,
		Action:     "organization.renamed",
		TargetType: "organization",
		TargetID:   id.String(),
		Metadata:   map[string]any{"from": org.Name, "to": name},
	})

	org.Name = name
	return org, nil
}

func (s *service) Delete(ctx context.Context, caller domain.Caller, orgID string) error {
	id, err := parseOrgID(orgID)
	if err != nil {
		return err
	}

	org, err := s.repo.GetOrganization(ctx, id)
	if err != nil {
		return err
	}
	if err := s.requireOwner(ctx, org, caller.Sub); err != nil {
		return err
	}

	// Members are removed explicitly so the cascade holds on engines where
	// the schema comes from AutoMigrate rather than the SQL migrations.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeleteMembersByOrg(ctx, id); err != nil {
			return err
		}
		return repo.DeleteOrganization(ctx, id)
	})
	if err != nil {
		return err
	}

	s.recordAudit(ctx, auditdomain.Entry{
		OrgID:      id,
		ActorSub:   caller.Sub,
		Action:     "organization.deleted",
		TargetType: "organization",
		TargetID:   id.String(),
		Metadata:   map[string]any{"name": org.Name},
	})
	return nil
}

func (s *service) ListMembers(ctx context.Context, orgID string) ([]domain.Member, error) {
	id, err := parseOrgID(orgID)
	if err != nil {
		return nil, err
	}
	members, err := s.repo.ListMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []domain.Member{}
	}
	return members, nil
}

func (s *service) AddMember(ctx context.Context, caller domain.Caller, orgID string, req domain.AddMemberRequest) (*domain.Member, error) {
	id, err := parseOrgID(orgID)
	if err != nil {
		return nil, err
	}

	org, err := s.repo.GetOrganization(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, org, caller.Sub); err != nil {
		return nil, err
	}

	userSub := strings.TrimSpace(req.UserSub)
	if userSub == "" {
		return nil, domain.ErrInvalidUserSub
	}
	userName := strings.TrimSpace(req.UserName)
	if userName == "" {
		return nil, domain.ErrInvalidUserName
	}
	if !domain.ValidRole(req.Role) {
		return nil, domain.ErrInvalidRole
	}

	exists, err := s.repo.HasMember(ctx, id, userSub)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrMemberExists
	}

	member := domain.Member{
		ID:        s.genID.Generate(),
		OrgID:     id,
		UserSub:   userSub,
		UserName:  userName,
		Role:      req.Role,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.AddMember(ctx, member); err != nil {
		// Unique index on (org_id, user_sub) catches the insert race.
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrMemberExists
		}
		return nil, err
	}

	s.recordAudit(ctx, auditdomain.Entry{
		OrgID:      id,
		ActorSub:   caller.Sub,
		Action:     "member.added",
		TargetType: "member",
		TargetID:   member.ID.String(),
		Metadata:   map[string]any{"user_sub": userSub, "role": req.Role},
	})

	return &member, nil
}

func (s *service) ChangeRole(ctx context.Context, caller domain.Caller, orgID, memberID, newRole string) error {
	id, err := parseOrgID(orgID)
	if err != nil {
		return err
	}
	mid, err := parseMemberID(memberID)
	if err != nil {
		return err
	}

	org, err := s.repo.GetOrganization(ctx, id)
	if err != nil {
		return err
	}
	if err := s.requireOwner(ctx, org, caller.Sub); err != nil {
		return err
	}
	if !domain.ValidRole(newRole) {
		return domain.ErrInvalidRole
	}

	var previousRole string
	// The owner count and the role update share a transaction so two
	// concurrent demotions cannot both read a count of two and strip the
	// organization of its last Owner.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		member, err := repo.GetMember(ctx, id, mid)
		if err != nil {
			return err
		}
		previousRole = member.Role

		if member.Role == domain.RoleOwner && newRole != domain.RoleOwner {
			owners, err := repo.CountOwners(ctx, id)
			if err != nil {
				return err
			}
			if owners <= 1 {
				return domain.ErrLastOwner
			}
		}

		return repo.UpdateMemberRole(ctx, mid, newRole)
	})
	if err != nil {
		return err
	}

	s.recordAudit(ctx, auditdomain.Entry{
		OrgID:      id,
		ActorSub:   caller.Sub,
		Action:     "member.role_changed",
		TargetType: "member",
		TargetID:   mid.String(),
		Metadata:   map[string]any{"from": previousRole, "to": newRole},
	})
	return nil
}

func (s *service) RemoveMember(ctx context.Context, caller domain.Caller, orgID, memberID string) error {
	id, err := parseOrgID(orgID)
	if err != nil {
		return err
	}
	mid, err := parseMemberID(memberID)
	if err != nil {
		return err
	}

	org, err := s.repo.GetOrganization(ctx, id)
	if err != nil {
		return err
	}
	if err := s.requireOwner(ctx, org, caller.Sub); err != nil {
		return err
	}

	var removedSub string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		member, err := repo.GetMember(ctx, id, mid)
		if err != nil {
			return err
		}
		removedSub = member.UserSub

		if member.Role == domain.RoleOwner {
			owners, err := repo.CountOwners(ctx, id)
			if err != nil {
				return err
			}
			if owners <= 1 {
				return domain.ErrLastOwner
			}
		}

		return repo.DeleteMember(ctx, mid)
	})
	if err != nil {
		return err
	}

	s.recordAudit(ctx, auditdomain.Entry{
		OrgID:      id,
		ActorSub:   caller.Sub,
		Action:     "member.removed",
		TargetType: "member",
		TargetID:   mid.String(),
		Metadata:   map[string]any{"user_sub": removedSub},
	})
	return nil
}

// IsOwner checks the membership table first, then falls back to the
// organization's creator. Organizations created before membership rows
// existed stay manageable by their creator without a data migration; the
// fallback is permanent compatibility logic, not a temporary shim.
func (s *service) IsOwner(ctx context.Context, orgID snowflake.ID, callerSub string) (bool, error) {
	if strings.TrimSpace(callerSub) == "" {
		return false, nil
	}

	owner, err := s.repo.HasOwnerMembership(ctx, orgID, callerSub)
	if err != nil {
		return false, err
	}
	if owner {
		return true, nil
	}

	org, err := s.repo.GetOrganization(ctx, orgID)
	if err != nil {
		if err == domain.ErrOrganizationNotFound {
			return false, nil
		}
		return false, err
	}
	return org.CreatedBy != "" && org.CreatedBy == callerSub, nil
}

func (s *service) requireOwner(ctx context.Context, org *domain.Organization, callerSub string) error {
	if strings.TrimSpace(callerSub) == "" {
		return domain.ErrForbidden
	}

	owner, err := s.repo.HasOwnerMembership(ctx, org.ID, callerSub)
	if err != nil {
		return err
	}
	if owner {
		return nil
	}
	if org.CreatedBy != "" && org.CreatedBy == callerSub {
		return nil
	}
	return domain.ErrForbidden
}

func (s *service) recordAudit(ctx context.Context, entry auditdomain.Entry) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.log.Warn("audit record failed", zap.String("action", entry.Action), zap.Error(err))
	}
}

// Identifiers arrive as opaque path segments; anything that does not parse
// cannot reference a stored row, so it maps to not-found rather than a
// validation failure.
func parseOrgID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, domain.ErrOrganizationNotFound
	}
	return id, nil
}

func parseMemberID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, domain.ErrMemberNotFound
	}
	return id, nil
}
