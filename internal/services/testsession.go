package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lexiscreen/screening-backend/internal/apierr"
	"github.com/lexiscreen/screening-backend/internal/logger"
	"github.com/lexiscreen/screening-backend/internal/progress"
	"github.com/lexiscreen/screening-backend/internal/repos"
	"github.com/lexiscreen/screening-backend/internal/scoring"
	"github.com/lexiscreen/screening-backend/internal/types"
)

// SubmitFeatures is the client-captured payload for one sub-question.
// Correct is nil for sub-questions that are not binary graded; Payload
// holds the raw timing/interaction features as JSON.
type SubmitFeatures struct {
	StartTime time.Time
	EndTime   time.Time
	Correct   *bool
	Payload   datatypes.JSON
}

type TestSessionService interface {
	StartSession(ctx context.Context, profileID uuid.UUID) (*types.TestSession, error)
	ListSessions(ctx context.Context, profileID uuid.UUID) ([]*types.TestSession, error)
	GetSession(ctx context.Context, profileID, sessionID uuid.UUID) (*types.TestSession, error)
	StartCategory(ctx context.Context, profileID, sessionID uuid.UUID, category progress.Category) (*types.CategoryTest, error)
	Submit(ctx context.Context, profileID, sessionID uuid.UUID, category progress.Category, sub progress.Stage, features SubmitFeatures) (*types.CategoryTest, error)
	SubmitRating(ctx context.Context, profileID, sessionID uuid.UUID, category progress.Category, value int) (*types.CategoryTest, error)
}

type testSessionService struct {
	db             *gorm.DB
	log            *logger.Logger
	sessionRepo    repos.TestSessionRepo
	categoryRepo   repos.CategoryTestRepo
	featureRepo    repos.FeatureRecordRepo
	policy         scoring.Policy
	requireRatings bool
}

func NewTestSessionService(
	db *gorm.DB,
	log *logger.Logger,
	sessionRepo repos.TestSessionRepo,
	categoryRepo repos.CategoryTestRepo,
	featureRepo repos.FeatureRecordRepo,
	policy scoring.Policy,
	requireRatings bool,
) TestSessionService {
	serviceLog := log.With("service", "TestSessionService")
	return &testSessionService{
		db:             db,
		log:            serviceLog,
		sessionRepo:    sessionRepo,
		categoryRepo:   categoryRepo,
		featureRepo:    featureRepo,
		policy:         policy,
		requireRatings: requireRatings,
	}
}

func (ts *testSessionService) StartSession(ctx context.Context, profileID uuid.UUID) (*types.TestSession, error) {
	session := &types.TestSession{
		ID:        uuid.New(),
		ProfileID: profileID,
		StartTime: time.Now(),
	}
	if _, err := ts.sessionRepo.Create(ctx, nil, []*types.TestSession{session}); err != nil {
		return nil, apierr.Internal(fmt.Errorf("failed to create test session: %w", err))
	}
	return session, nil
}

func (ts *testSessionService) ListSessions(ctx context.Context, profileID uuid.UUID) ([]*types.TestSession, error) {
	sessions, err := ts.sessionRepo.GetByProfileID(ctx, nil, profileID)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("failed to list test sessions: %w", err))
	}
	return sessions, nil
}

func (ts *testSessionService) GetSession(ctx context.Context, profileID, sessionID uuid.UUID) (*types.TestSession, error) {
	sessions, err := ts.sessionRepo.GetByIDs(ctx, nil, []uuid.UUID{sessionID})
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("failed to load test session: %w", err))
	}
	if len(sessions) == 0 {
		return nil, apierr.NotFound(apierr.CodeNotFound, errors.New("test session not found"))
	}
	session := sessions[0]
	if session.ProfileID != profileID {
		return nil, apierr.Forbidden(apierr.CodeForbidden,
			errors.New("test session belongs to another profile"))
	}
	return session, nil
}

// StartCategory lazily creates the CategoryTest, at most once per category
// per session. The initial cursor is the category's first sub-question.
func (ts *testSessionService) StartCategory(ctx context.Context, profileID, sessionID uuid.UUID, category progress.Category) (*types.CategoryTest, error) {
	var created *types.CategoryTest
	err := ts.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := ts.lockedOwnedSession(ctx, tx, profileID, sessionID)
		if err != nil {
			return err
		}
		if session.Completed {
			return apierr.Conflict(apierr.CodeSessionAlreadyCompleted,
				errors.New("test session is already completed"))
		}
		existing, err := ts.categoryRepo.GetBySessionAndCategory(ctx, tx, sessionID, category)
		if err != nil {
			return apierr.Internal(fmt.Errorf("failed to load category test: %w", err))
		}
		if existing != nil {
			return apierr.Conflict(apierr.CodeAlreadyStarted,
				fmt.Errorf("%s test has already been started in this session", category))
		}
		created = &types.CategoryTest{
			ID:            uuid.New(),
			TestSessionID: sessionID,
			Category:      category,
			Progress:      progress.Initial(category),
		}
		if _, err := ts.categoryRepo.Create(ctx, tx, []*types.CategoryTest{created}); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apierr.Conflict(apierr.CodeAlreadyStarted,
					fmt.Errorf("%s test has already been started in this session", category))
			}
			return apierr.Internal(fmt.Errorf("failed to create category test: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Submit validates one sub-question submission against the category cursor
// and advances it. The feature write and the cursor advance are one atomic
// unit; the unique constraint on the feature record resolves concurrent
// duplicates without an application-level lock.
func (ts *testSessionService) Submit(ctx context.Context, profileID, sessionID uuid.UUID, category progress.Category, sub progress.Stage, features SubmitFeatures) (*types.CategoryTest, error) {
	var result *types.CategoryTest
	err := ts.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := ts.lockedOwnedSession(ctx, tx, profileID, sessionID)
		if err != nil {
			return err
		}
		if session.Completed {
			return apierr.Conflict(apierr.CodeSessionAlreadyCompleted,
				errors.New("test session is already completed"))
		}
		categoryTest, err := ts.categoryRepo.GetBySessionAndCategory(ctx, tx, sessionID, category)
		if err != nil {
			return apierr.Internal(fmt.Errorf("failed to load category test: %w", err))
		}
		if categoryTest == nil {
			return apierr.BadRequest(apierr.CodeNotStarted,
				fmt.Errorf("%s test has not been started in this session", category))
		}

		machine := progress.Machine{Category: category, Cursor: categoryTest.Progress}
		advanced, err := machine.Submit(sub, ts.requireRatings)
		if err != nil {
			return err
		}

		record := &types.FeatureRecord{
			ID:            uuid.New(),
			TestSessionID: sessionID,
			Category:      category,
			SubQuestion:   sub,
			StartTime:     features.StartTime,
			EndTime:       features.EndTime,
			Correct:       features.Correct,
			Payload:       features.Payload,
		}
		if _, err := ts.featureRepo.Create(ctx, tx, []*types.FeatureRecord{record}); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apierr.Conflict(apierr.CodeDuplicateSubmission,
					fmt.Errorf("sub-question %s has already been submitted", sub))
			}
			return apierr.Internal(fmt.Errorf("failed to persist feature record: %w", err))
		}

		categoryTest.Progress = advanced.Cursor
		if advanced.Completed() {
			if err := ts.finalizeCategory(ctx, tx, session, categoryTest); err != nil {
				return err
			}
		} else if err := ts.categoryRepo.Update(ctx, tx, categoryTest); err != nil {
			return apierr.Internal(fmt.Errorf("failed to advance category progress: %w", err))
		}
		result = categoryTest
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SubmitRating records the 1-5 feedback rating and moves FEEDBACK to
// COMPLETED, which may in turn complete the whole session.
func (ts *testSessionService) SubmitRating(ctx context.Context, profileID, sessionID uuid.UUID, category progress.Category, value int) (*types.CategoryTest, error) {
	var result *types.CategoryTest
	err := ts.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := ts.lockedOwnedSession(ctx, tx, profileID, sessionID)
		if err != nil {
			return err
		}
		if session.Completed {
			return apierr.Conflict(apierr.CodeSessionAlreadyCompleted,
				errors.New("test session is already completed"))
		}
		categoryTest, err := ts.categoryRepo.GetBySessionAndCategory(ctx, tx, sessionID, category)
		if err != nil {
			return apierr.Internal(fmt.Errorf("failed to load category test: %w", err))
		}
		if categoryTest == nil {
			return apierr.BadRequest(apierr.CodeNotStarted,
				fmt.Errorf("%s test has not been started in this session", category))
		}
		if categoryTest.Rating != nil {
			return apierr.Conflict(apierr.CodeAlreadyRated,
				fmt.Errorf("%s test has already been rated", category))
		}

		machine := progress.Machine{Category: category, Cursor: categoryTest.Progress}
		advanced, err := machine.SubmitRating(value)
		if err != nil {
			return err
		}

		categoryTest.Rating = &value
		categoryTest.Progress = advanced.Cursor
		if err := ts.finalizeCategory(ctx, tx, session, categoryTest); err != nil {
			return err
		}
		result = categoryTest
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// finalizeCategory freezes the category score and re-evaluates overall
// session completion. Called exactly once per category, when its cursor
// reaches COMPLETED.
func (ts *testSessionService) finalizeCategory(ctx context.Context, tx *gorm.DB, session *types.TestSession, categoryTest *types.CategoryTest) error {
	outcome, err := ts.categoryOutcome(ctx, tx, session.ID, categoryTest.Category)
	if err != nil {
		return err
	}
	score := ts.policy.CategoryScore(outcome)
	categoryTest.Score = &score
	if err := ts.categoryRepo.Update(ctx, tx, categoryTest); err != nil {
		return apierr.Internal(fmt.Errorf("failed to finalize category test: %w", err))
	}
	return ts.aggregateSession(ctx, tx, session)
}

// aggregateSession completes the session once all three categories are
// COMPLETED: final score and classification are computed under the
// configured policy, end time is set, and the session is frozen.
func (ts *testSessionService) aggregateSession(ctx context.Context, tx *gorm.DB, session *types.TestSession) error {
	tests, err := ts.categoryRepo.GetBySessionID(ctx, tx, session.ID)
	if err != nil {
		return apierr.Internal(fmt.Errorf("failed to load category tests: %w", err))
	}
	completed := map[progress.Category]bool{}
	for _, t := range tests {
		if t.Progress == progress.StageCompleted {
			completed[t.Category] = true
		}
	}
	for _, cat := range progress.Categories() {
		if !completed[cat] {
			return nil
		}
	}

	outcomes := make([]scoring.CategoryOutcome, 0, len(progress.Categories()))
	for _, cat := range progress.Categories() {
		outcome, err := ts.categoryOutcome(ctx, tx, session.ID, cat)
		if err != nil {
			return err
		}
		outcomes = append(outcomes, outcome)
	}
	score, classification := ts.policy.Final(outcomes)

	now := time.Now()
	session.Completed = true
	session.EndTime = &now
	session.Score = &score
	session.Classification = &classification
	if err := ts.sessionRepo.Update(ctx, tx, session); err != nil {
		return apierr.Internal(fmt.Errorf("failed to finalize test session: %w", err))
	}
	ts.log.Info("Test session completed",
		"session_id", session.ID, "score", score, "classification", classification)
	return nil
}

func (ts *testSessionService) categoryOutcome(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, category progress.Category) (scoring.CategoryOutcome, error) {
	records, err := ts.featureRepo.GetBySessionAndCategory(ctx, tx, sessionID, category)
	if err != nil {
		return scoring.CategoryOutcome{}, apierr.Internal(
			fmt.Errorf("failed to load feature records: %w", err))
	}
	outcome := scoring.CategoryOutcome{
		Category: category,
		Total:    len(progress.Sequence(category)),
	}
	for _, r := range records {
		if r.Correct != nil && *r.Correct {
			outcome.Correct++
		}
	}
	return outcome, nil
}

// lockedOwnedSession loads the session under a row lock and enforces that
// it belongs to the calling profile.
func (ts *testSessionService) lockedOwnedSession(ctx context.Context, tx *gorm.DB, profileID, sessionID uuid.UUID) (*types.TestSession, error) {
	session, err := ts.sessionRepo.GetByIDForUpdate(ctx, tx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound(apierr.CodeNotFound, errors.New("test session not found"))
		}
		return nil, apierr.Internal(fmt.Errorf("failed to load test session: %w", err))
	}
	if session.ProfileID != profileID {
		return nil, apierr.Forbidden(apierr.CodeForbidden,
			errors.New("test session belongs to another profile"))
	}
	return session, nil
}
