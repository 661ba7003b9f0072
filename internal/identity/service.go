package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"rendezvous/pkg/types"
)

// Options control credential hashing and token issuance.
type Options struct {
	JWTSecret  []byte
	TokenTTL   time.Duration
	BcryptCost int
}

// DefaultOptions matches the account subsystem's historical behavior: HS256
// tokens valid for seven days, bcrypt cost 10.
func DefaultOptions(secret []byte) Options {
	return Options{
		JWTSecret:  secret,
		TokenTTL:   7 * 24 * time.Hour,
		BcryptCost: 10,
	}
}

// Service implements account registration and login over a UserStore.
type Service struct {
	store UserStore
	opts  Options
}

// NewService creates an account service.
func NewService(store UserStore, opts Options) *Service {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 7 * 24 * time.Hour
	}
	if opts.BcryptCost <= 0 {
		opts.BcryptCost = 10
	}
	return &Service{store: store, opts: opts}
}

// RegisterAccount creates a new account with a server-generated user ID and
// a bcrypt password hash. Duplicate emails fail with ErrEmailTaken.
func (s *Service) RegisterAccount(ctx context.Context, name, email, password string) (*User, error) {
	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &User{
		UserID:       uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the credentials and issues a signed token. The identity
// record is returned so callers can hand the opaque user ID to the client
// for relay registration.
func (s *Service) Login(ctx context.Context, email, password string) (string, *types.Identity, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": user.UserID,
		"iat": now.Unix(),
		"exp": now.Add(s.opts.TokenTTL).Unix(),
	})
	signed, err := token.SignedString(s.opts.JWTSecret)
	if err != nil {
		return "", nil, err
	}

	return signed, &types.Identity{
		ID:    user.UserID,
		Name:  user.Name,
		Email: user.Email,
	}, nil
}

// VerifyToken parses and validates a token and returns the subject user ID.
// Only the HMAC family is accepted.
func (s *Service) VerifyToken(tokenString string) (string, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.opts.JWTSecret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
