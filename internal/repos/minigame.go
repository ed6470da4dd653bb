package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lexiscreen/screening-backend/internal/logger"
	"github.com/lexiscreen/screening-backend/internal/types"
)

type MinigameRepo interface {
	Create(ctx context.Context, tx *gorm.DB, attempts []*types.Minigame) ([]*types.Minigame, error)
	GetByProfileID(ctx context.Context, tx *gorm.DB, profileID uuid.UUID, number *types.MinigameNumber) ([]*types.Minigame, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Minigame, error)
}

type minigameRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMinigameRepo(db *gorm.DB, baseLog *logger.Logger) MinigameRepo {
	repoLog := baseLog.With("repo", "MinigameRepo")
	return &minigameRepo{db: db, log: repoLog}
}

func (r *minigameRepo) Create(ctx context.Context, tx *gorm.DB, attempts []*types.Minigame) ([]*types.Minigame, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(attempts) == 0 {
		return []*types.Minigame{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (r *minigameRepo) GetByProfileID(ctx context.Context, tx *gorm.DB, profileID uuid.UUID, number *types.MinigameNumber) ([]*types.Minigame, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	query := transaction.WithContext(ctx).Where("profile_id = ?", profileID)
	if number != nil {
		query = query.Where("minigame_number = ?", *number)
	}

	var results []*types.Minigame
	if err := query.Order("attempted_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *minigameRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Minigame, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Minigame
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
