package audit

import (
	"context"
	"time"

	"go-opshub/internal/common/models"
	"go-opshub/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserFinder resolves actor display names for listings without pulling in
// the whole user feature.
type UserFinder interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.User, error)
}

type AuditService interface {
	LogChange(ctx context.Context, action models.AuditAction, module string, recordID string, changes map[string]models.Change) error
	ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]models.AuditLog, int64, error)
}

type AuditServiceImpl struct {
	Repo     AuditRepository
	UserRepo UserFinder
}

func NewAuditService(repo AuditRepository, userRepo UserFinder) AuditService {
	return &AuditServiceImpl{
		Repo:     repo,
		UserRepo: userRepo,
	}
}

func (s *AuditServiceImpl) LogChange(ctx context.Context, action models.AuditAction, module string, recordID string, changes map[string]models.Change) error {
	// Extract actor from context
	actorID := "system"
	if claims, ok := ctx.Value(utils.UserClaimsKey).(*utils.UserClaims); ok {
		actorID = claims.UserID
	}

	log := models.AuditLog{
		ID:        primitive.NewObjectID(),
		Action:    action,
		Module:    module,
		RecordID:  recordID,
		ActorID:   actorID,
		Changes:   changes,
		Timestamp: time.Now(),
	}

	return s.Repo.Create(ctx, log)
}

func (s *AuditServiceImpl) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]models.AuditLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	logs, err := s.Repo.List(ctx, filters, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Repo.Count(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	// Populate actor names
	uniqueIDs := make(map[string]bool)
	var actorIDs []string
	for _, l := range logs {
		if l.ActorID != "system" && l.ActorID != "" && !uniqueIDs[l.ActorID] {
			uniqueIDs[l.ActorID] = true
			actorIDs = append(actorIDs, l.ActorID)
		}
	}

	if len(actorIDs) > 0 {
		users, err := s.UserRepo.FindByIDs(ctx, actorIDs)
		if err == nil {
			names := make(map[string]string, len(users))
			for _, u := range users {
				names[u.ID.Hex()] = u.DisplayName
			}
			for i := range logs {
				if name, ok := names[logs[i].ActorID]; ok {
					logs[i].ActorName = name
				}
			}
		}
	}

	return logs, total, nil
}
