package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lexiscreen/screening-backend/internal/logger"
	"github.com/lexiscreen/screening-backend/internal/progress"
	"github.com/lexiscreen/screening-backend/internal/repos"
	"github.com/lexiscreen/screening-backend/internal/scoring"
	"github.com/lexiscreen/screening-backend/internal/types"
)

// newTestDB opens a per-test in-memory sqlite database with the same
// TranslateError setting as the postgres service, so unique-violation
// handling behaves the same way in tests.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	err = db.AutoMigrate(
		&types.Account{},
		&types.Profile{},
		&types.TestSession{},
		&types.CategoryTest{},
		&types.FeatureRecord{},
		&types.Minigame{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func newTestLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

type testEnv struct {
	db           *gorm.DB
	log          *logger.Logger
	accountRepo  repos.AccountRepo
	profileRepo  repos.ProfileRepo
	sessionRepo  repos.TestSessionRepo
	categoryRepo repos.CategoryTestRepo
	featureRepo  repos.FeatureRecordRepo
	sessions     TestSessionService
}

func newTestEnv(t *testing.T, policyName scoring.PolicyName, requireRatings bool) *testEnv {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger()
	policy, err := scoring.NewPolicy(policyName)
	if err != nil {
		t.Fatalf("failed to build scoring policy: %v", err)
	}
	env := &testEnv{
		db:           db,
		log:          log,
		accountRepo:  repos.NewAccountRepo(db, log),
		profileRepo:  repos.NewProfileRepo(db, log),
		sessionRepo:  repos.NewTestSessionRepo(db, log),
		categoryRepo: repos.NewCategoryTestRepo(db, log),
		featureRepo:  repos.NewFeatureRecordRepo(db, log),
	}
	env.sessions = NewTestSessionService(db, log, env.sessionRepo, env.categoryRepo, env.featureRepo, policy, requireRatings)
	return env
}

// seedProfile creates an account with one CHILD profile and returns the
// profile id.
func (env *testEnv) seedProfile(t *testing.T) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	account := &types.Account{
		ID:       uuid.New(),
		Email:    fmt.Sprintf("%s@example.com", uuid.New()),
		Password: "hashed",
		Role:     types.RoleUser,
	}
	if _, err := env.accountRepo.Create(ctx, nil, []*types.Account{account}); err != nil {
		t.Fatalf("failed to seed account: %v", err)
	}
	profile := &types.Profile{
		ID:          uuid.New(),
		AccountID:   account.ID,
		ProfileType: types.ProfileChild,
	}
	if _, err := env.profileRepo.Create(ctx, nil, []*types.Profile{profile}); err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}
	return profile.ID
}

func boolPtr(b bool) *bool { return &b }

func submitFeatures(correct bool) SubmitFeatures {
	now := time.Now()
	return SubmitFeatures{
		StartTime: now.Add(-2 * time.Second),
		EndTime:   now,
		Correct:   boolPtr(correct),
		Payload:   []byte(`{"taps":3}`),
	}
}

// completeCategory walks a category from start to COMPLETED with the given
// number of correct answers, rating it 4 when the service requires ratings.
func (env *testEnv) completeCategory(t *testing.T, profileID, sessionID uuid.UUID, cat progress.Category, correct int, requireRatings bool) {
	t.Helper()
	ctx := context.Background()
	if _, err := env.sessions.StartCategory(ctx, profileID, sessionID, cat); err != nil {
		t.Fatalf("start %s: unexpected error %v", cat, err)
	}
	for i, sub := range progress.Sequence(cat) {
		if _, err := env.sessions.Submit(ctx, profileID, sessionID, cat, sub, submitFeatures(i < correct)); err != nil {
			t.Fatalf("submit %s/%s: unexpected error %v", cat, sub, err)
		}
	}
	if requireRatings {
		if _, err := env.sessions.SubmitRating(ctx, profileID, sessionID, cat, 4); err != nil {
			t.Fatalf("rate %s: unexpected error %v", cat, err)
		}
	}
}
