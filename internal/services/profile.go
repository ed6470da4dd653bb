package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lexiscreen/screening-backend/internal/apierr"
	"github.com/lexiscreen/screening-backend/internal/logger"
	"github.com/lexiscreen/screening-backend/internal/repos"
	"github.com/lexiscreen/screening-backend/internal/types"
)

// ProfileUpdate carries the optional demographic fields a caller may set.
// Nil means "leave unchanged".
type ProfileUpdate struct {
	Name              *string
	YearOfBirth       *int
	Gender            *types.Gender
	MotherTongue      *string
	OfficialDiagnosis *bool
}

type ProfileService interface {
	CreateProfile(ctx context.Context, accountID uuid.UUID, profileType types.ProfileType, name string) (*types.Profile, error)
	ListProfiles(ctx context.Context, accountID uuid.UUID) ([]*types.Profile, error)
	GetProfile(ctx context.Context, accountID, profileID uuid.UUID) (*types.Profile, error)
	UpdateProfile(ctx context.Context, accountID, profileID uuid.UUID, update ProfileUpdate) (*types.Profile, error)
	DeleteProfile(ctx context.Context, accountID, profileID uuid.UUID) error
}

type profileService struct {
	db          *gorm.DB
	log         *logger.Logger
	profileRepo repos.ProfileRepo
}

func NewProfileService(db *gorm.DB, log *logger.Logger, profileRepo repos.ProfileRepo) ProfileService {
	serviceLog := log.With("service", "ProfileService")
	return &profileService{db: db, log: serviceLog, profileRepo: profileRepo}
}

func (ps *profileService) CreateProfile(ctx context.Context, accountID uuid.UUID, profileType types.ProfileType, name string) (*types.Profile, error) {
	if profileType != types.ProfileParent && profileType != types.ProfileChild {
		return nil, apierr.BadRequest(apierr.CodeBadRequest,
			fmt.Errorf("invalid profile type %q", profileType))
	}
	profile := &types.Profile{
		ID:          uuid.New(),
		AccountID:   accountID,
		ProfileType: profileType,
	}
	if name != "" {
		profile.Name = &name
	}
	if _, err := ps.profileRepo.Create(ctx, nil, []*types.Profile{profile}); err != nil {
		return nil, apierr.Internal(fmt.Errorf("failed to create profile: %w", err))
	}
	return profile, nil
}

func (ps *profileService) ListProfiles(ctx context.Context, accountID uuid.UUID) ([]*types.Profile, error) {
	profiles, err := ps.profileRepo.GetByAccountID(ctx, nil, accountID)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("failed to list profiles: %w", err))
	}
	return profiles, nil
}

func (ps *profileService) GetProfile(ctx context.Context, accountID, profileID uuid.UUID) (*types.Profile, error) {
	return ps.ownedProfile(ctx, accountID, profileID)
}

func (ps *profileService) UpdateProfile(ctx context.Context, accountID, profileID uuid.UUID, update ProfileUpdate) (*types.Profile, error) {
	profile, err := ps.ownedProfile(ctx, accountID, profileID)
	if err != nil {
		return nil, err
	}
	if update.Name != nil {
		profile.Name = update.Name
	}
	if update.YearOfBirth != nil {
		profile.YearOfBirth = update.YearOfBirth
	}
	if update.Gender != nil {
		if *update.Gender != types.GenderMale && *update.Gender != types.GenderFemale {
			return nil, apierr.BadRequest(apierr.CodeBadRequest,
				fmt.Errorf("invalid gender %q", *update.Gender))
		}
		profile.Gender = update.Gender
	}
	if update.MotherTongue != nil {
		profile.MotherTongue = update.MotherTongue
	}
	if update.OfficialDiagnosis != nil {
		profile.OfficialDiagnosis = update.OfficialDiagnosis
	}
	if err := ps.profileRepo.Update(ctx, nil, profile); err != nil {
		return nil, apierr.Internal(fmt.Errorf("failed to update profile: %w", err))
	}
	return profile, nil
}

func (ps *profileService) DeleteProfile(ctx context.Context, accountID, profileID uuid.UUID) error {
	if _, err := ps.ownedProfile(ctx, accountID, profileID); err != nil {
		return err
	}
	if err := ps.profileRepo.FullDeleteByIDs(ctx, nil, []uuid.UUID{profileID}); err != nil {
		return apierr.Internal(fmt.Errorf("failed to delete profile: %w", err))
	}
	return nil
}

// ownedProfile loads a profile and enforces account ownership. Profiles
// under other accounts are indistinguishable from missing ones.
func (ps *profileService) ownedProfile(ctx context.Context, accountID, profileID uuid.UUID) (*types.Profile, error) {
	profiles, err := ps.profileRepo.GetByIDs(ctx, nil, []uuid.UUID{profileID})
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("failed to load profile: %w", err))
	}
	if len(profiles) == 0 || profiles[0].AccountID != accountID {
		return nil, apierr.NotFound(apierr.CodeProfileNotFound, errors.New("profile not found"))
	}
	return profiles[0], nil
}
