package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/basteen-Dev/pavilion/internal/shared"
)

const revokedKeyPrefix = "auth:revoked:"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrRevokedToken = errors.New("token has been revoked")
)

// Claims is the access token payload.
type Claims struct {
	jwt.RegisteredClaims
	Email      string `json:"email"`
	Role       string `json:"role"`
	CustomerID string `json:"customer_id,omitempty"`
}

// Tokens issues and verifies HS256 access tokens. Revoked token ids are kept
// in Redis until the token would have expired anyway.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	issuer string
	redis  *redis.Client
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration, redisClient *redis.Client) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, issuer: "pavilion", redis: redisClient, now: time.Now}
}

// Issue signs a token for user and returns it with its id and expiry.
func (t *Tokens) Issue(user *User) (token, id string, expiresAt time.Time, err error) {
	now := t.now()
	expiresAt = now.Add(t.ttl)
	id = uuid.NewString()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Issuer:    t.issuer,
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Email: user.Email,
		Role:  user.Role,
	}
	if user.CustomerID != nil {
		claims.CustomerID = user.CustomerID.String()
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, id, expiresAt, nil
}

// Verify parses raw and returns the principal it carries.
func (t *Tokens) Verify(ctx context.Context, raw string) (*shared.Principal, time.Time, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, time.Time{}, ErrInvalidToken
	}
	p := &shared.Principal{UserID: userID, Email: claims.Email, Role: claims.Role, TokenID: claims.ID}
	if claims.CustomerID != "" {
		cid, err := uuid.Parse(claims.CustomerID)
		if err != nil {
			return nil, time.Time{}, ErrInvalidToken
		}
		p.CustomerID = &cid
	}

	revoked, err := t.redis.Exists(ctx, revokedKeyPrefix+claims.ID).Result()
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked > 0 {
		return nil, time.Time{}, ErrRevokedToken
	}
	return p, claims.ExpiresAt.Time, nil
}

// Revoke blocks token id until expiresAt.
func (t *Tokens) Revoke(ctx context.Context, id string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(t.now())
	if ttl <= 0 {
		return nil
	}
	return t.redis.Set(ctx, revokedKeyPrefix+id, "1", ttl).Err()
}
