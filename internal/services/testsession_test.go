package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/lexiscreen/screening-backend/internal/apierr"
	"github.com/lexiscreen/screening-backend/internal/progress"
	"github.com/lexiscreen/screening-backend/internal/scoring"
	"github.com/lexiscreen/screening-backend/internal/types"
)

func TestFullSessionCompletesOnce(t *testing.T) {
	env := newTestEnv(t, scoring.PolicyCorrectCount, true)
	ctx := context.Background()
	profileID := env.seedProfile(t)

	session, err := env.sessions.StartSession(ctx, profileID)
	if err != nil {
		t.Fatalf("start session: unexpected error %v", err)
	}
	if session.Completed || session.EndTime != nil {
		t.Fatal("new session must not be completed")
	}

	env.completeCategory(t, profileID, session.ID, progress.CategoryAuditory, 3, true)
	env.completeCategory(t, profileID, session.ID, progress.CategoryVisual, 2, true)

	// Two of three categories done: the session must still be open.
	mid, err := env.sessions.GetSession(ctx, profileID, session.ID)
	if err != nil {
		t.Fatalf("get session: unexpected error %v", err)
	}
	if mid.Completed {
		t.Fatal("session completed before all categories finished")
	}

	env.completeCategory(t, profileID, session.ID, progress.CategoryLanguage, 2, true)

	done, err := env.sessions.GetSession(ctx, profileID, session.ID)
	if err != nil {
		t.Fatalf("get session: unexpected error %v", err)
	}
	if !done.Completed {
		t.Fatal("session should be completed after all categories")
	}
	if done.EndTime == nil || done.Score == nil || done.Classification == nil {
		t.Fatal("completed session must carry end time, score and classification")
	}
	// 3 + 2 + 2 = 7 correct answers lands exactly on the NON_RISK edge.
	if *done.Score != 7 {
		t.Fatalf("score: want=7 got=%v", *done.Score)
	}
	if *done.Classification != scoring.ClassNonRisk {
		t.Fatalf("classification: want=%s got=%s", scoring.ClassNonRisk, *done.Classification)
	}
	if len(done.CategoryTests) != 3 {
		t.Fatalf("category tests: want=3 got=%d", len(done.CategoryTests))
	}
	for _, ct := range done.CategoryTests {
		if ct.Progress != progress.StageCompleted {
			t.Fatalf("%s progress: want=%s got=%s", ct.Category, progress.StageCompleted, ct.Progress)
		}
		if ct.Score == nil || ct.Rating == nil {
			t.Fatalf("%s must carry a frozen score and rating", ct.Category)
		}
	}

	// A completed session is frozen against any further writes.
	_, err = env.sessions.Submit(ctx, profileID, session.ID, progress.CategoryAuditory,
		progress.StageFreq4Cards, submitFeatures(true))
	if !apierr.Is(err, apierr.CodeSessionAlreadyCompleted) {
		t.Fatalf("expected %s, got %v", apierr.CodeSessionAlreadyCompleted, err)
	}
	_, err = env.sessions.StartCategory(ctx, profileID, session.ID, progress.CategoryAuditory)
	if !apierr.Is(err, apierr.CodeSessionAlreadyCompleted) {
		t.Fatalf("expected %s, got %v", apierr.CodeSessionAlreadyCompleted, err)
	}
}

func TestAveragedPolicySessionScore(t *testing.T) {
	env := newTestEnv(t, scoring.PolicyAveragedCategory, true)
	ctx := context.Background()
	profileID := env.seedProfile(t)

	session, err := env.sessions.StartSession(ctx, profileID)
	if err != nil {
		t.Fatalf("start session: unexpected error %v", err)
	}
	env.completeCategory(t, profileID, session.ID, progress.CategoryAuditory, 8, true)
	env.completeCategory(t, profileID, session.ID, progress.CategoryVisual, 4, true)
	env.completeCategory(t, profileID, session.ID, progress.CategoryLanguage, 3, true)

	done, err := env.sessions.GetSession(ctx, profileID, session.ID)
	if err != nil {
		t.Fatalf("get session: unexpected error %v", err)
	}
	// (100 + 50 + 50) / 3
	want := (100.0 + 50.0 + 50.0) / 3.0
	if done.Score == nil || *done.Score != want {
		t.Fatalf("score: want=%v got=%v", want, done.Score)
	}
	if *done.Classification != scoring.ClassMaybeDyslexic {
		t.Fatalf("classification: want=%s got=%s", scoring.ClassMaybeDyslexic, *done.Classification)
	}
}

func TestRatingsNotRequiredCompletesWithoutFeedback(t *testing.T) {
	env := newTestEnv(t, scoring.PolicyCorrectCount, false)
	ctx := context.Background()
	profileID := env.seedProfile(t)

	session, err := env.sessions.StartSession(ctx, profileID)
	if err != nil {
		t.Fatalf("start session: unexpected error %v", err)
	}
	env.completeCategory(t, profileID, session.ID, progress.CategoryAuditory, 1, false)

	tests, err := env.categoryRepo.GetBySessionID(ctx, nil, session.ID)
	if err != nil {
		t.Fatalf("load category tests: unexpected error %v", err)
	}
	if len(tests) != 1 || tests[0].Progress != progress.StageCompleted {
		t.Fatalf("category should be completed without a rating, got %+v", tests)
	}
	if tests[0].Rating != nil {
		t.Fatal("no rating should be recorded when ratings are disabled")
	}
	if tests[0].Score == nil {
		t.Fatal("category score must still be frozen on completion")
	}
}

func TestStartCategoryTwice(t *testing.T) {
	env := newTestEnv(t, scoring.PolicyCorrectCount, true)
	ctx := context.Background()
	profileID := env.seedProfile(t)

	session, err := env.sessions.StartSession(ctx, profileID)
	if err != nil {
		t.Fatalf("start session: unexpected error %v", err)
	}
	if _, err := env.sessions.StartCategory(ctx, profileID, session.ID, progress.CategoryVisual); err != nil {
		t.Fatalf("start category: unexpected error %v", err)
	}
	_, err = env.sessions.StartCategory(ctx, profileID, session.ID, progress.CategoryVisual)
	if !apierr.Is(err, apierr.CodeAlreadyStarted) {
		t.Fatalf("expected %s, got %v", apierr.CodeAlreadyStarted, err)
	}
}

func TestSubmitBeforeStartCategory(t *testing.T) {
	env := newTestEnv(t, scoring.PolicyCorrectCount, true)
	ctx := context.Background()
	profileID := env.seedProfile(t)

	session, err := env.sessions.StartSession(ctx, profileID)
	if err != nil {
		t.Fatalf("start session: unexpected error %v", err)
	}
	_, err = env.sessions.Submit(ctx, profileID, session.ID, progress.CategoryAuditory,
		progress.StageFreq4Cards, submitFeatures(true))
	if !apierr.Is(err, apierr.CodeNotStarted) {
		t.Fatalf("expected %s, got %v", apierr.CodeNotStarted, err)
	}
}

func TestOutOfOrderSubmitDoesNotAdvance(t *testing.T) {
	env := newTestEnv(t, scoring.PolicyCorrectCount, true)
	ctx := context.Background()
	profileID := env.seedProfile(t)

	session, err := env.sessions.StartSession(ctx, profileID)
	if err != nil {
		t.Fatalf("start session: unexpected error %v", err)
	}
	if _, err := env.sessions.StartCategory(ctx, profileID, session.ID, progress.CategoryAuditory); err != nil {
		t.Fatalf("start category: unexpected error %v", err)
	}
	_, err = env.sessions.Submit(ctx, profileID, session.ID, progress.CategoryAuditory,
		progress.StagePhonemeMatch, submitFeatures(true))
	if !apierr.Is(err, apierr.CodeOutOfOrder) {
		t.Fatalf("expected %s, got %v", apierr.CodeOutOfOrder, err)
	}

	// The rejected submission must leave no trace: cursor unchanged, no
	// feature record written.
	ct, err := env.categoryRepo.GetBySessionAndCategory(ctx, nil, session.ID, progress.CategoryAuditory)
	if err != nil {
		t.Fatalf("load category test: unexpected error %v", err)
	}
	if ct.Progress != progress.StageFreq4Cards {
		t.Fatalf("cursor: want=%s got=%s", progress.StageFreq4Cards, ct.Progress)
	}
	records, err := env.featureRepo.GetBySessionID(ctx, nil, session.ID)
	if err != nil {
		t.Fatalf("load feature records: unexpected error %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("feature records: want=0 got=%d", len(records))
	}
}

func TestDuplicateSubmissionRejectedByUniqueIndex(t *testing.T) {
	env := newTestEnv(t, scoring.PolicyCorrectCount, true)
	ctx := context.Background()
	profileID := env.seedProfile(t)

	session, err := env.sessions.StartSession(ctx, profileID)
	if err != nil {
		t.Fatalf("start session: unexpected error %v", err)
	}
	if _, err := env.sessions.StartCategory(ctx, profileID, session.ID, progress.CategoryAuditory); err != nil {
		t.Fatalf("start category: unexpected error %v", err)
	}

	// A retry that raced a successful write: the feature row exists but the
	// cursor still expects this sub-question.
	f := submitFeatures(true)
	record := &types.FeatureRecord{
		ID:            uuid.New(),
		TestSessionID: session.ID,
		Category:      progress.CategoryAuditory,
		SubQuestion:   progress.StageFreq4Cards,
		StartTime:     f.StartTime,
		EndTime:       f.EndTime,
		Correct:       f.Correct,
		Payload:       f.Payload,
	}
	if _, err := env.featureRepo.Create(ctx, nil, []*types.FeatureRecord{record}); err != nil {
		t.Fatalf("seed feature record: unexpected error %v", err)
	}

	_, err = env.sessions.Submit(ctx, profileID, session.ID, progress.CategoryAuditory,
		progress.StageFreq4Cards, submitFeatures(true))
	if !apierr.Is(err, apierr.CodeDuplicateSubmission) {
		t.Fatalf("expected %s, got %v", apierr.CodeDuplicateSubmission, err)
	}

	// The rejected duplicate must not have advanced the cursor.
	ct, err := env.categoryRepo.GetBySessionAndCategory(ctx, nil, session.ID, progress.CategoryAuditory)
	if err != nil {
		t.Fatalf("load category test: unexpected error %v", err)
	}
	if ct.Progress != progress.StageFreq4Cards {
		t.Fatalf("cursor: want=%s got=%s", progress.StageFreq4Cards, ct.Progress)
	}
}

func TestRatingTwiceRejected(t *testing.T) {
	env := newTestEnv(t, scoring.PolicyCorrectCount, true)
	ctx := context.Background()
	profileID := env.seedProfile(t)

	session, err := env.sessions.StartSession(ctx, profileID)
	if err != nil {
		t.Fatalf("start session: unexpected error %v", err)
	}
	env.completeCategory(t, profileID, session.ID, progress.CategoryLanguage, 2, true)

	_, err = env.sessions.SubmitRating(ctx, profileID, session.ID, progress.CategoryLanguage, 5)
	if !apierr.Is(err, apierr.CodeAlreadyRated) {
		t.Fatalf("expected %s, got %v", apierr.CodeAlreadyRated, err)
	}
}

func TestRatingBeforeFeedbackStage(t *testing.T) {
	env := newTestEnv(t, scoring.PolicyCorrectCount, true)
	ctx := context.Background()
	profileID := env.seedProfile(t)

	session, err := env.sessions.StartSession(ctx, profileID)
	if err != nil {
		t.Fatalf("start session: unexpected error %v", err)
	}
	if _, err := env.sessions.StartCategory(ctx, profileID, session.ID, progress.CategoryVisual); err != nil {
		t.Fatalf("start category: unexpected error %v", err)
	}
	_, err = env.sessions.SubmitRating(ctx, profileID, session.ID, progress.CategoryVisual, 3)
	if !apierr.Is(err, apierr.CodeNotAtFeedbackStage) {
		t.Fatalf("expected %s, got %v", apierr.CodeNotAtFeedbackStage, err)
	}
}

func TestSessionOwnershipEnforced(t *testing.T) {
	env := newTestEnv(t, scoring.PolicyCorrectCount, true)
	ctx := context.Background()
	owner := env.seedProfile(t)
	other := env.seedProfile(t)

	session, err := env.sessions.StartSession(ctx, owner)
	if err != nil {
		t.Fatalf("start session: unexpected error %v", err)
	}
	if _, err := env.sessions.GetSession(ctx, other, session.ID); !apierr.Is(err, apierr.CodeForbidden) {
		t.Fatalf("expected %s, got %v", apierr.CodeForbidden, err)
	}
	if _, err := env.sessions.StartCategory(ctx, other, session.ID, progress.CategoryAuditory); !apierr.Is(err, apierr.CodeForbidden) {
		t.Fatalf("expected %s, got %v", apierr.CodeForbidden, err)
	}
}

func TestGetUnknownSession(t *testing.T) {
	env := newTestEnv(t, scoring.PolicyCorrectCount, true)
	ctx := context.Background()
	profileID := env.seedProfile(t)

	if _, err := env.sessions.GetSession(ctx, profileID, uuid.New()); !apierr.Is(err, apierr.CodeNotFound) {
		t.Fatalf("expected %s, got %v", apierr.CodeNotFound, err)
	}
}

func TestListSessionsScopedToProfile(t *testing.T) {
	env := newTestEnv(t, scoring.PolicyCorrectCount, true)
	ctx := context.Background()
	a := env.seedProfile(t)
	b := env.seedProfile(t)

	if _, err := env.sessions.StartSession(ctx, a); err != nil {
		t.Fatalf("start session: unexpected error %v", err)
	}
	if _, err := env.sessions.StartSession(ctx, a); err != nil {
		t.Fatalf("start session: unexpected error %v", err)
	}
	if _, err := env.sessions.StartSession(ctx, b); err != nil {
		t.Fatalf("start session: unexpected error %v", err)
	}

	forA, err := env.sessions.ListSessions(ctx, a)
	if err != nil {
		t.Fatalf("list sessions: unexpected error %v", err)
	}
	if len(forA) != 2 {
		t.Fatalf("sessions for first profile: want=2 got=%d", len(forA))
	}
}
