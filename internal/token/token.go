package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/lexiscreen/screening-backend/internal/apierr"
)

// Claims carry two levels of identity: the account (always) and, once the
// caller has selected one, a specific profile under that account.
type Claims struct {
	AccountID string `json:"account_id"`
	ProfileID string `json:"profile_id,omitempty"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// Identity is a decoded, signature-verified token. ProfileID is uuid.Nil
// for account-only tokens; ownership of the profile is not checked here.
type Identity struct {
	AccountID uuid.UUID
	ProfileID uuid.UUID
	Role      string
}

// Codec signs and verifies HS256 tokens with a fixed TTL. There is no
// refresh token; callers re-authenticate after expiry.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{secret: []byte(secret), ttl: ttl}
}

func (c *Codec) TTL() time.Duration {
	return c.ttl
}

func (c *Codec) Issue(accountID uuid.UUID, profileID *uuid.UUID, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		AccountID: accountID.String(),
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	if profileID != nil {
		claims.ProfileID = profileID.String()
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", apierr.Internal(fmt.Errorf("failed to sign token: %w", err))
	}
	return signed, nil
}

// Resolve verifies the signature and expiry and extracts the identity.
// Expired-but-valid tokens fail TOKEN_EXPIRED; anything else malformed
// fails TOKEN_INVALID.
func (c *Codec) Resolve(tokenString string) (*Identity, error) {
	if tokenString == "" {
		return nil, apierr.Unauthorized(apierr.CodeMissingCredentials,
			errors.New("missing bearer token"))
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apierr.Unauthorized(apierr.CodeTokenExpired,
				errors.New("token has expired"))
		}
		return nil, apierr.Unauthorized(apierr.CodeTokenInvalid,
			fmt.Errorf("failed to parse token: %w", err))
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, apierr.Unauthorized(apierr.CodeTokenInvalid,
			errors.New("invalid token claims"))
	}
	accountID, err := uuid.Parse(claims.AccountID)
	if err != nil {
		return nil, apierr.Unauthorized(apierr.CodeTokenInvalid,
			fmt.Errorf("invalid account id in token: %w", err))
	}
	identity := &Identity{AccountID: accountID, Role: claims.Role}
	if claims.ProfileID != "" {
		profileID, err := uuid.Parse(claims.ProfileID)
		if err != nil {
			return nil, apierr.Unauthorized(apierr.CodeTokenInvalid,
				fmt.Errorf("invalid profile id in token: %w", err))
		}
		identity.ProfileID = profileID
	}
	return identity, nil
}
