package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Claims is the JWT payload for a practice session.
type Claims struct {
	Name string `json:"name"`
	Role Role   `json:"role"`
	jwt.RegisteredClaims
}

// Service handles login, token issue/verify, and user lookups.
type Service struct {
	db       *gorm.DB
	secret   []byte
	tokenTTL time.Duration
}

// NewService creates the auth service.
func NewService(db *gorm.DB, secret string, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	return &Service{db: db, secret: []byte(secret), tokenTTL: tokenTTL}
}

// Login verifies credentials and returns a signed session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	var user User
	if err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("load user by email: %w", err)
	}
	if !user.CheckPassword(password) {
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now()
	claims := Claims{
		Name: user.Name,
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign session token: %w", err)
	}
	return token, &user, nil
}

// Verify parses and validates a session token.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// CreateUser registers a practice member.
func (s *Service) CreateUser(ctx context.Context, email, name string, role Role, password string) (*User, error) {
	user := &User{Email: email, Name: name, Role: role}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// EmailFor resolves a user's email address; satisfies the notification
// service's user lookup.
func (s *Service) EmailFor(ctx context.Context, userID uuid.UUID) (string, error) {
	var user User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return "", fmt.Errorf("load user %s: %w", userID, err)
	}
	return user.Email, nil
}
