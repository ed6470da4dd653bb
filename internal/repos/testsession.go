package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lexiscreen/screening-backend/internal/logger"
	"github.com/lexiscreen/screening-backend/internal/types"
)

type TestSessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sessions []*types.TestSession) ([]*types.TestSession, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.TestSession, error)
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.TestSession, error)
	GetByProfileID(ctx context.Context, tx *gorm.DB, profileID uuid.UUID) ([]*types.TestSession, error)
	Update(ctx context.Context, tx *gorm.DB, session *types.TestSession) error
}

type testSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTestSessionRepo(db *gorm.DB, baseLog *logger.Logger) TestSessionRepo {
	repoLog := baseLog.With("repo", "TestSessionRepo")
	return &testSessionRepo{db: db, log: repoLog}
}

func (r *testSessionRepo) Create(ctx context.Context, tx *gorm.DB, sessions []*types.TestSession) ([]*types.TestSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(sessions) == 0 {
		return []*types.TestSession{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *testSessionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.TestSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.TestSession
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Preload("CategoryTests").
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetByIDForUpdate locks the session row for the duration of the enclosing
// transaction so concurrent transitions on the same session serialize on
// the store, not on an application lock.
func (r *testSessionRepo) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.TestSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.TestSession
	if err := transaction.WithContext(ctx).
		Clauses(forUpdateClause(transaction)...).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *testSessionRepo) GetByProfileID(ctx context.Context, tx *gorm.DB, profileID uuid.UUID) ([]*types.TestSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.TestSession
	if err := transaction.WithContext(ctx).
		Preload("CategoryTests").
		Where("profile_id = ?", profileID).
		Order("start_time DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *testSessionRepo) Update(ctx context.Context, tx *gorm.DB, session *types.TestSession) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Omit("CategoryTests", "Profile").
		Save(session).Error
}
