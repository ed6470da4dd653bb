package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lexiscreen/screening-backend/internal/logger"
	"github.com/lexiscreen/screening-backend/internal/progress"
	"github.com/lexiscreen/screening-backend/internal/types"
)

type CategoryTestRepo interface {
	Create(ctx context.Context, tx *gorm.DB, tests []*types.CategoryTest) ([]*types.CategoryTest, error)
	GetBySessionAndCategory(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, category progress.Category) (*types.CategoryTest, error)
	GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.CategoryTest, error)
	Update(ctx context.Context, tx *gorm.DB, test *types.CategoryTest) error
}

type categoryTestRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCategoryTestRepo(db *gorm.DB, baseLog *logger.Logger) CategoryTestRepo {
	repoLog := baseLog.With("repo", "CategoryTestRepo")
	return &categoryTestRepo{db: db, log: repoLog}
}

func (r *categoryTestRepo) Create(ctx context.Context, tx *gorm.DB, tests []*types.CategoryTest) ([]*types.CategoryTest, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(tests) == 0 {
		return []*types.CategoryTest{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&tests).Error; err != nil {
		return nil, err
	}
	return tests, nil
}

// GetBySessionAndCategory returns (nil, nil) when the category has not been
// started in this session.
func (r *categoryTestRepo) GetBySessionAndCategory(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, category progress.Category) (*types.CategoryTest, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.CategoryTest
	if err := transaction.WithContext(ctx).
		Where("test_session_id = ? AND category = ?", sessionID, category).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *categoryTestRepo) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.CategoryTest, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.CategoryTest
	if err := transaction.WithContext(ctx).
		Where("test_session_id = ?", sessionID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *categoryTestRepo) Update(ctx context.Context, tx *gorm.DB, test *types.CategoryTest) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Omit("TestSession").
		Save(test).Error
}
