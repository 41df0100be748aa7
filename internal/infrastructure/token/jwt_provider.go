package token

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"servicemarket/internal/domain/entity"
	"servicemarket/internal/usecase"
)

const issuer = "servicemarket"

type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTProvider issues HS256 tokens signed with a shared secret. Identities are
// local: the user id is generated here and credentials stay in the user store.
type JWTProvider struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewJWTProvider(secret string, expiry time.Duration) *JWTProvider {
	return &JWTProvider{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
}

func (p *JWTProvider) CreateIdentity(ctx context.Context, user *entity.User, password string) (string, error) {
	return uuid.New().String(), nil
}

func (p *JWTProvider) DeleteIdentity(ctx context.Context, userID string) error {
	return nil
}

func (p *JWTProvider) IssueToken(ctx context.Context, userID string, role entity.Role) (string, error) {
	now := p.now()
	claims := Claims{
		UserID: userID,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (p *JWTProvider) VerifyToken(ctx context.Context, raw string) (*usecase.Identity, error) {
	claims := &Claims{}
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
	_, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("token has no user_id claim")
	}
	if !claims.VerifyExpiresAt(p.now(), true) {
		return nil, fmt.Errorf("token is expired")
	}

	return &usecase.Identity{
		UserID: claims.UserID,
		Role:   entity.Role(claims.Role),
	}, nil
}
