package services

import (
	"context"
	"testing"

	"github.com/lexiscreen/screening-backend/internal/apierr"
	"github.com/lexiscreen/screening-backend/internal/repos"
	"github.com/lexiscreen/screening-backend/internal/types"
)

func TestSubmitAndListMinigameAttempts(t *testing.T) {
	env := newTestEnv(t, "correct_count", true)
	minigames := NewMinigameService(env.db, env.log, repos.NewMinigameRepo(env.db, env.log))
	ctx := context.Background()
	profileID := env.seedProfile(t)

	if _, err := minigames.SubmitAttempt(ctx, profileID, types.MinigameOne, 3.5, []byte(`{"rounds":4}`)); err != nil {
		t.Fatalf("submit attempt: unexpected error %v", err)
	}
	if _, err := minigames.SubmitAttempt(ctx, profileID, types.MinigameOne, 4, nil); err != nil {
		t.Fatalf("submit attempt: unexpected error %v", err)
	}
	if _, err := minigames.SubmitAttempt(ctx, profileID, types.MinigameTwo, 5, nil); err != nil {
		t.Fatalf("submit attempt: unexpected error %v", err)
	}

	all, err := minigames.ListAttempts(ctx, profileID, nil)
	if err != nil {
		t.Fatalf("list attempts: unexpected error %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("attempts: want=3 got=%d", len(all))
	}

	one := types.MinigameOne
	filtered, err := minigames.ListAttempts(ctx, profileID, &one)
	if err != nil {
		t.Fatalf("list attempts: unexpected error %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("filtered attempts: want=2 got=%d", len(filtered))
	}
}

func TestSubmitMinigameValidation(t *testing.T) {
	env := newTestEnv(t, "correct_count", true)
	minigames := NewMinigameService(env.db, env.log, repos.NewMinigameRepo(env.db, env.log))
	ctx := context.Background()
	profileID := env.seedProfile(t)

	if _, err := minigames.SubmitAttempt(ctx, profileID, "nine", 3, nil); !apierr.Is(err, apierr.CodeBadRequest) {
		t.Fatalf("expected %s, got %v", apierr.CodeBadRequest, err)
	}
	if _, err := minigames.SubmitAttempt(ctx, profileID, types.MinigameOne, 5.5, nil); !apierr.Is(err, apierr.CodeBadRequest) {
		t.Fatalf("expected %s, got %v", apierr.CodeBadRequest, err)
	}
	if _, err := minigames.SubmitAttempt(ctx, profileID, types.MinigameOne, -1, nil); !apierr.Is(err, apierr.CodeBadRequest) {
		t.Fatalf("expected %s, got %v", apierr.CodeBadRequest, err)
	}
}
