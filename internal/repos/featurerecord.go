package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lexiscreen/screening-backend/internal/logger"
	"github.com/lexiscreen/screening-backend/internal/progress"
	"github.com/lexiscreen/screening-backend/internal/types"
)

type FeatureRecordRepo interface {
	Create(ctx context.Context, tx *gorm.DB, records []*types.FeatureRecord) ([]*types.FeatureRecord, error)
	GetBySessionAndCategory(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, category progress.Category) ([]*types.FeatureRecord, error)
	GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.FeatureRecord, error)
}

type featureRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFeatureRecordRepo(db *gorm.DB, baseLog *logger.Logger) FeatureRecordRepo {
	repoLog := baseLog.With("repo", "FeatureRecordRepo")
	return &featureRecordRepo{db: db, log: repoLog}
}

// Create relies on the unique index over (test_session_id, category,
// sub_question); a duplicate insert surfaces gorm.ErrDuplicatedKey.
func (r *featureRecordRepo) Create(ctx context.Context, tx *gorm.DB, records []*types.FeatureRecord) ([]*types.FeatureRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(records) == 0 {
		return []*types.FeatureRecord{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *featureRecordRepo) GetBySessionAndCategory(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, category progress.Category) ([]*types.FeatureRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.FeatureRecord
	if err := transaction.WithContext(ctx).
		Where("test_session_id = ? AND category = ?", sessionID, category).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *featureRecordRepo) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.FeatureRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.FeatureRecord
	if err := transaction.WithContext(ctx).
		Where("test_session_id = ?", sessionID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
