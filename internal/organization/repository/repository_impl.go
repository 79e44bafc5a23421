package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/orgboard/orgboard/internal/organization/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) CreateOrganization(ctx context.Context, org domain.Organization) error {
	return r.db.WithContext(ctx).Create(&org).Error
}

func (r *repository) GetOrganization(ctx context.Context, id snowflake.ID) (*domain.Organization, error) {
	var org domain.Organization
	err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrganizationNotFound
		}
		return nil, err
	}
	return &org, nil
}

func (r *repository) ListOrganizations(ctx context.Context) ([]domain.Organization, error) {
	var orgs []domain.Organization
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&orgs).Error
	if err != nil {
		return nil, err
	}
	return orgs, nil
}

func (r *repository) SearchOrganizations(ctx context.Context, filter domain.SearchFilter) ([]domain.Organization, int64, error) {
	stmt := r.db.WithContext(ctx).Model(&domain.Organization{})

	if query := strings.TrimSpace(filter.Query); query != "" {
		stmt = stmt.Where(`name LIKE ? ESCAPE '\'`, "%"+escapeLike(query)+"%")
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column := "created_at"
	if filter.Sort == domain.SortByName {
		column = "name"
	}
	direction := "DESC"
	if filter.Order == domain.OrderAsc {
		direction = "ASC"
	}

	var orgs []domain.Organization
	err := stmt.
		Order(column + " " + direction).
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&orgs).Error
	if err != nil {
		return nil, 0, err
	}

	return orgs, total, nil
}

// escapeLike escapes LIKE metacharacters so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *repository) ListOrganizationsByOwner(ctx context.Context, userSub string) ([]domain.Organization, error) {
	var orgs []domain.Organization
	err := r.db.WithContext(ctx).
		Where(`id IN (SELECT org_id FROM organization_members WHERE user_sub = ? AND role = ?) OR created_by = ?`,
			userSub, domain.RoleOwner, userSub).
		Order("created_at DESC").
		Find(&orgs).Error
	if err != nil {
		return nil, err
	}
	return orgs, nil
}

func (r *repository) UpdateOrganizationName(ctx context.Context, id snowflake.ID, name string) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Organization{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"name": name, "updated_at": gorm.Expr("CURRENT_TIMESTAMP")})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrOrganizationNotFound
	}
	return nil
}

func (r *repository) DeleteOrganization(ctx context.Context, id snowflake.ID) error {
	return r.db.WithContext(ctx).Delete(&domain.Organization{}, "id = ?", id).Error
}

func (r *repository) AddMember(ctx context.Context, member domain.Member) error {
	return r.db.WithContext(ctx).Create(&member).Error
}

func (r *repository) GetMember(ctx context.Context, orgID, memberID snowflake.ID) (*domain.Member, error) {
	var member domain.Member
	err := r.db.WithContext(ctx).
		First(&member, "id = ? AND org_id = ?", memberID, orgID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (r *repository) ListMembers(ctx context.Context, orgID snowflake.ID) ([]domain.Member, error) {
	var members []domain.Member
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at DESC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *repository) HasMember(ctx context.Context, orgID snowflake.ID, userSub string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Member{}).
		Where("org_id = ? AND user_sub = ?", orgID, userSub).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) HasOwnerMembership(ctx context.Context, orgID snowflake.ID, userSub string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Member{}).
		Where("org_id = ? AND user_sub = ? AND role = ?", orgID, userSub, domain.RoleOwner).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) CountOwners(ctx context.Context, orgID snowflake.ID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Member{}).
		Where("org_id = ? AND role = ?", orgID, domain.RoleOwner).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) UpdateMemberRole(ctx context.Context, memberID snowflake.ID, role string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Member{}).
		Where("id = ?", memberID).
		Update("role", role).Error
}

func (r *repository) DeleteMember(ctx context.Context, memberID snowflake.ID) error {
	return r.db.WithContext(ctx).Delete(&domain.Member{}, "id = ?", memberID).Error
}

func (r *repository) DeleteMembersByOrg(ctx context.Context, orgID snowflake.ID) error {
	return r.db.WithContext(ctx).Delete(&domain.Member{}, "org_id = ?", orgID).Error
}
