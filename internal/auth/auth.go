// Package auth implements credential storage and bearer-token verification.
// The rest of the system only ever consumes the Identity it produces.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/eventtix/eventtix/internal/model"
)

// ErrInvalidCredentials is returned on a failed login.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrUnauthenticated is returned when a token is missing, expired or forged.
var ErrUnauthenticated = errors.New("not authenticated")

// Identity is the verified caller of a request.
type Identity struct {
	UserID  string
	Email   string
	IsAdmin bool
}

// UserStore is the slice of the user repository auth needs.
type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash string, isAdmin bool) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// Service issues and verifies session tokens backed by a user store.
type Service struct {
	users  UserStore
	secret []byte
	ttl    time.Duration
}

// NewService constructs an auth Service.
func NewService(users UserStore, secret string, ttl time.Duration) *Service {
	return &Service{users: users, secret: []byte(secret), ttl: ttl}
}

// Signup creates a regular (non-admin) account.
func (s *Service) Signup(ctx context.Context, req model.SignupRequest) (*model.User, error) {
	return s.createUser(ctx, req, false)
}

// CreateAdmin creates an account with the admin flag set. Callers are
// responsible for gating access to it.
func (s *Service) CreateAdmin(ctx context.Context, req model.SignupRequest) (*model.User, error) {
	return s.createUser(ctx, req, true)
}

func (s *Service) createUser(ctx context.Context, req model.SignupRequest, isAdmin bool) (*model.User, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if !isValidEmail(email) {
		return nil, fmt.Errorf("email is not a valid email address")
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return s.users.Create(ctx, name, email, string(hash), isAdmin)
}

// Login verifies a credential pair and returns a signed session token.
// Missing users and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req model.LoginRequest) (string, *model.User, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"email":    user.Email,
		"is_admin": user.IsAdmin,
		"iat":      now.Unix(),
		"exp":      now.Add(s.ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, user, nil
}

// Verify validates a bearer token and extracts the caller's identity.
// A missing is_admin claim defaults to false here, at the one boundary
// where claims are decoded.
func (s *Service) Verify(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return Identity{}, ErrUnauthenticated
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrUnauthenticated
	}
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if sub == "" || email == "" {
		return Identity{}, ErrUnauthenticated
	}
	isAdmin, _ := claims["is_admin"].(bool)

	return Identity{UserID: sub, Email: email, IsAdmin: isAdmin}, nil
}

// isValidEmail does a basic structural check (no external deps).
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}
