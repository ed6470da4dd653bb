package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lexiscreen/screening-backend/internal/apierr"
	"github.com/lexiscreen/screening-backend/internal/logger"
	"github.com/lexiscreen/screening-backend/internal/repos"
	"github.com/lexiscreen/screening-backend/internal/types"
)

type MinigameService interface {
	SubmitAttempt(ctx context.Context, profileID uuid.UUID, number types.MinigameNumber, score float64, details datatypes.JSON) (*types.Minigame, error)
	ListAttempts(ctx context.Context, profileID uuid.UUID, number *types.MinigameNumber) ([]*types.Minigame, error)
}

type minigameService struct {
	db           *gorm.DB
	log          *logger.Logger
	minigameRepo repos.MinigameRepo
}

func NewMinigameService(db *gorm.DB, log *logger.Logger, minigameRepo repos.MinigameRepo) MinigameService {
	serviceLog := log.With("service", "MinigameService")
	return &minigameService{db: db, log: serviceLog, minigameRepo: minigameRepo}
}

// SubmitAttempt only persists what the client measured; minigames carry no
// server-side grading.
func (ms *minigameService) SubmitAttempt(ctx context.Context, profileID uuid.UUID, number types.MinigameNumber, score float64, details datatypes.JSON) (*types.Minigame, error) {
	if !types.ValidMinigameNumber(number) {
		return nil, apierr.BadRequest(apierr.CodeBadRequest,
			fmt.Errorf("invalid minigame number %q", number))
	}
	if score < 0 || score > 5 {
		return nil, apierr.BadRequest(apierr.CodeBadRequest,
			fmt.Errorf("minigame score must be between 0 and 5, got %v", score))
	}
	attempt := &types.Minigame{
		ID:             uuid.New(),
		ProfileID:      profileID,
		MinigameNumber: number,
		AttemptedAt:    time.Now(),
		Score:          score,
		Details:        details,
	}
	if _, err := ms.minigameRepo.Create(ctx, nil, []*types.Minigame{attempt}); err != nil {
		return nil, apierr.Internal(fmt.Errorf("failed to log minigame attempt: %w", err))
	}
	return attempt, nil
}

func (ms *minigameService) ListAttempts(ctx context.Context, profileID uuid.UUID, number *types.MinigameNumber) ([]*types.Minigame, error) {
	attempts, err := ms.minigameRepo.GetByProfileID(ctx, nil, profileID, number)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("failed to list minigame attempts: %w", err))
	}
	return attempts, nil
}
