package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/orgboard/orgboard/internal/audit/domain"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type service struct {
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func NewService(log *zap.Logger, genID *snowflake.Node, repo domain.Repository) domain.Service {
	return &service{
		log:   log.Named("audit.service"),
		genID: genID,
		repo:  repo,
	}
}

func (s *service) Record(ctx context.Context, entry domain.Entry) error {
	action := strings.TrimSpace(entry.Action)
	if action == "" {
		return domain.ErrInvalidAction
	}

	targetType := strings.TrimSpace(entry.TargetType)
	if targetType == "" {
		targetType = "unknown"
	}

	metadata := map[string]any{}
	for key, value := range entry.Metadata {
		if key == "" {
			continue
		}
		metadata[key] = value
	}

	record := domain.AuditLog{
		ID:         s.genID.Generate(),
		OrgID:      entry.OrgID,
		ActorSub:   entry.ActorSub,
		Action:     action,
		TargetType: targetType,
		TargetID:   strings.TrimSpace(entry.TargetID),
		Metadata:   datatypes.JSONMap(metadata),
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, &record); err != nil {
		s.log.Warn("failed to record audit log",
			zap.String("action", action),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *service) List(ctx context.Context, orgID snowflake.ID, limit int) ([]domain.AuditLog, error) {
	return s.repo.ListByOrg(ctx, orgID, limit)
}
