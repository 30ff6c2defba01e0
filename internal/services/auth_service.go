package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"etalase/internal/models"
	"etalase/internal/repositories"
	"etalase/pkg/logger"
	"etalase/pkg/session"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned for an unknown user or a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned for malformed, expired or revoked session tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// Claims are the session token claims. Subject carries the username and Id the
// token ID used for revocation.
type Claims struct {
	Role models.Role `json:"role"`
	jwt.StandardClaims
}

// Identity returns the identity the token was issued for.
func (c *Claims) Identity() models.Identity {
	return models.Identity{Username: c.Subject, Role: c.Role}
}

// AuthService handles business logic for authentication and sessions.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which a session token is valid
	denylist   session.Denylist
}

// NewAuthService creates a new AuthService. A nil denylist falls back to an
// in-memory one.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, denylist session.Denylist) *AuthService {
	if denylist == nil {
		denylist = session.NewMemoryDenylist()
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour,
		denylist:   denylist,
	}
}

// TokenDuration is how long an issued session token stays valid.
func (s *AuthService) TokenDuration() time.Duration {
	return s.tokenDurat
}

// RegisterUser hashes the user's password and saves the user.
func (s *AuthService) RegisterUser(user *models.User) error {
	taken, err := s.userRepo.Exists(user.Username)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("username '%s' already taken", user.Username)
	}
	if !user.Role.Valid() {
		return fmt.Errorf("invalid role %q", user.Role)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)

	if err := s.userRepo.Create(user); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	return nil
}

// LoginUser authenticates a user and returns a signed session token.
func (s *AuthService) LoginUser(username, password string) (string, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Role: user.Role,
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			Subject:   user.Username,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.tokenDurat).Unix(),
		},
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses a session token and rejects expired or revoked ones.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || !claims.Role.Valid() || claims.Id == "" {
		return nil, ErrInvalidToken
	}

	revoked, err := s.denylist.IsRevoked(ctx, claims.Id)
	if err != nil {
		return nil, fmt.Errorf("failed to check session revocation: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: session revoked", ErrInvalidToken)
	}
	return claims, nil
}

// RevokeToken ends the session the claims belong to.
func (s *AuthService) RevokeToken(ctx context.Context, claims *Claims) error {
	until := time.Unix(claims.ExpiresAt, 0)
	if err := s.denylist.Revoke(ctx, claims.Id, until); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	log := logger.Get()
	log.Debug().Str("username", claims.Subject).Msg("session revoked")
	return nil
}
