package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lexiscreen/screening-backend/internal/apierr"
	"github.com/lexiscreen/screening-backend/internal/logger"
	"github.com/lexiscreen/screening-backend/internal/repos"
	"github.com/lexiscreen/screening-backend/internal/requestdata"
	"github.com/lexiscreen/screening-backend/internal/token"
	"github.com/lexiscreen/screening-backend/internal/types"
	"github.com/lexiscreen/screening-backend/internal/utils"
)

type AuthService interface {
	RegisterAccount(ctx context.Context, email, password, profileName string) (*types.Account, error)
	Login(ctx context.Context, email, password string) (string, error)
	SelectProfile(ctx context.Context, accountID, profileID uuid.UUID) (string, error)
	EmailRegistered(ctx context.Context, email string) (bool, error)
	ResolveAccount(ctx context.Context, tokenString string) (*requestdata.RequestData, error)
	ResolveProfile(ctx context.Context, tokenString string) (*requestdata.RequestData, error)
	AccessTTL() time.Duration
}

type authService struct {
	db          *gorm.DB
	log         *logger.Logger
	codec       *token.Codec
	accountRepo repos.AccountRepo
	profileRepo repos.ProfileRepo
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	codec *token.Codec,
	accountRepo repos.AccountRepo,
	profileRepo repos.ProfileRepo,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:          db,
		log:         serviceLog,
		codec:       codec,
		accountRepo: accountRepo,
		profileRepo: profileRepo,
	}
}

// RegisterAccount creates the account together with its default PARENT
// profile in one transaction.
func (as *authService) RegisterAccount(ctx context.Context, email, password, profileName string) (*types.Account, error) {
	email = utils.NormalizeEmail(email)
	if email == "" {
		return nil, apierr.BadRequest(apierr.CodeBadRequest, errors.New("an email is required to register"))
	}
	if password == "" {
		return nil, apierr.BadRequest(apierr.CodeBadRequest, errors.New("a password is required to register"))
	}

	exists, err := as.accountRepo.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("failed to check account email: %w", err))
	}
	if exists {
		return nil, apierr.BadRequest(apierr.CodeEmailTaken, errors.New("email already registered"))
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, apierr.Internal(err)
	}

	account := &types.Account{
		ID:       uuid.New(),
		Email:    email,
		Password: hashed,
		Role:     types.RoleUser,
	}
	profile := &types.Profile{
		ID:          uuid.New(),
		AccountID:   account.ID,
		ProfileType: types.ProfileParent,
	}
	if profileName != "" {
		profile.Name = &profileName
	}

	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := as.accountRepo.Create(ctx, tx, []*types.Account{account}); err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}
		if _, err := as.profileRepo.Create(ctx, tx, []*types.Profile{profile}); err != nil {
			return fmt.Errorf("failed to create default profile: %w", err)
		}
		return nil
	})
	if err != nil {
		as.log.Warn("Account registration failed", "error", err)
		return nil, apierr.Internal(err)
	}
	account.Profiles = []*types.Profile{profile}
	return account, nil
}

// Login verifies credentials and mints an account-scoped token. Profile
// claims are only added later through SelectProfile.
func (as *authService) Login(ctx context.Context, email, password string) (string, error) {
	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		return "", apierr.Unauthorized(apierr.CodeInvalidLogin, errors.New("invalid email or password"))
	}

	accounts, err := as.accountRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return "", apierr.Internal(fmt.Errorf("failed to look up account: %w", err))
	}
	if len(accounts) == 0 {
		return "", apierr.Unauthorized(apierr.CodeInvalidLogin, errors.New("invalid email or password"))
	}
	account := accounts[0]
	if !utils.CheckPassword(account.Password, password) {
		return "", apierr.Unauthorized(apierr.CodeInvalidLogin, errors.New("invalid email or password"))
	}

	return as.codec.Issue(account.ID, nil, string(account.Role))
}

// SelectProfile mints a profile-scoped token after verifying that the
// profile actually belongs to the account. A profile id that exists
// globally but under another account fails ProfileNotFound.
func (as *authService) SelectProfile(ctx context.Context, accountID, profileID uuid.UUID) (string, error) {
	accounts, err := as.accountRepo.GetByIDs(ctx, nil, []uuid.UUID{accountID})
	if err != nil {
		return "", apierr.Internal(fmt.Errorf("failed to load account: %w", err))
	}
	if len(accounts) == 0 {
		return "", apierr.Unauthorized(apierr.CodeAccountNotFound, errors.New("account not found"))
	}
	account := accounts[0]

	var selected *types.Profile
	for _, p := range account.Profiles {
		if p.ID == profileID {
			selected = p
			break
		}
	}
	if selected == nil {
		return "", apierr.NotFound(apierr.CodeProfileNotFound, errors.New("profile not found"))
	}

	return as.codec.Issue(account.ID, &selected.ID, string(account.Role))
}

func (as *authService) EmailRegistered(ctx context.Context, email string) (bool, error) {
	exists, err := as.accountRepo.EmailExists(ctx, nil, utils.NormalizeEmail(email))
	if err != nil {
		return false, apierr.Internal(fmt.Errorf("failed to check account email: %w", err))
	}
	return exists, nil
}

// ResolveAccount produces an account context: the token is verified and the
// account is confirmed to still exist.
func (as *authService) ResolveAccount(ctx context.Context, tokenString string) (*requestdata.RequestData, error) {
	identity, err := as.codec.Resolve(tokenString)
	if err != nil {
		return nil, err
	}
	accounts, err := as.accountRepo.GetByIDs(ctx, nil, []uuid.UUID{identity.AccountID})
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("failed to load account: %w", err))
	}
	if len(accounts) == 0 {
		return nil, apierr.Unauthorized(apierr.CodeAccountNotFound, errors.New("account not found"))
	}
	return &requestdata.RequestData{
		TokenString: tokenString,
		AccountID:   accounts[0].ID,
		Role:        string(accounts[0].Role),
	}, nil
}

// ResolveProfile produces a profile context. The membership check runs on
// every request: a profile deleted or re-parented after token issuance
// fails ProfileNotFound even though the token itself is still valid.
func (as *authService) ResolveProfile(ctx context.Context, tokenString string) (*requestdata.RequestData, error) {
	identity, err := as.codec.Resolve(tokenString)
	if err != nil {
		return nil, err
	}
	if identity.ProfileID == uuid.Nil {
		return nil, apierr.Unauthorized(apierr.CodeProfileRequired, errors.New("a selected profile is required"))
	}
	accounts, err := as.accountRepo.GetByIDs(ctx, nil, []uuid.UUID{identity.AccountID})
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("failed to load account: %w", err))
	}
	if len(accounts) == 0 {
		return nil, apierr.Unauthorized(apierr.CodeAccountNotFound, errors.New("account not found"))
	}
	account := accounts[0]
	for _, p := range account.Profiles {
		if p.ID == identity.ProfileID {
			return &requestdata.RequestData{
				TokenString: tokenString,
				AccountID:   account.ID,
				ProfileID:   p.ID,
				Role:        string(account.Role),
			}, nil
		}
	}
	return nil, apierr.Unauthorized(apierr.CodeProfileNotFound, errors.New("profile not found"))
}

func (as *authService) AccessTTL() time.Duration {
	return as.codec.TTL()
}
