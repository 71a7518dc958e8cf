package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"userhub/internal/domain"
	"userhub/internal/repository"
	"userhub/internal/validation"
)

var (
	// ErrInvalidCredentials indicates the client secret did not match.
	ErrInvalidCredentials = domain.NewUnauthorizedError("invalid credentials")
	// ErrInvalidToken indicates a missing, malformed or expired bearer token.
	ErrInvalidToken = domain.NewUnauthorizedError("invalid or expired token")
)

// Token is a signed bearer token and its expiry.
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AuthService issues and verifies bearer tokens for existing users.
type AuthService interface {
	IssueToken(ctx context.Context, userID any, clientSecret string) (*Token, error)
	ParseToken(token string) (string, error)
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	// ClientSecretHash is a bcrypt hash. Token issuing is refused while it is empty.
	ClientSecretHash string
}

type authService struct {
	users      repository.UserRepository
	secret     []byte
	ttl        time.Duration
	secretHash []byte
	now        func() time.Time
}

func NewAuthService(users repository.UserRepository, cfg AuthConfig) AuthService {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &authService{
		users:      users,
		secret:     []byte(cfg.JWTSecret),
		ttl:        ttl,
		secretHash: []byte(strings.TrimSpace(cfg.ClientSecretHash)),
		now:        time.Now,
	}
}

func (s *authService) IssueToken(ctx context.Context, userID any, clientSecret string) (*Token, error) {
	id, err := validation.ID(userID)
	if err != nil {
		return nil, err
	}
	if len(s.secretHash) == 0 {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.secretHash, []byte(clientSecret)); err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.NewNotFoundError("User not found")
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Token{Token: signed, ExpiresAt: expiresAt.UTC().Truncate(time.Second)}, nil
}

// ParseToken returns the user id carried by a valid token.
func (s *authService) ParseToken(token string) (string, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
