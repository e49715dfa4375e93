package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/golang-jwt/jwt/v5"
)

var ErrUnauthorized = errors.New("unauthorized")

// Claims is what a signed token asserts about its bearer.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// CustomClaims holds the non-registered claims after validation.
type CustomClaims struct {
	Email string `json:"email"`
}

func (c *CustomClaims) Validate(ctx context.Context) error {
	return nil
}

type Options struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// Guard issues and verifies HS256 bearer tokens with a process-wide secret.
type Guard struct {
	secret    []byte
	issuer    string
	audience  string
	ttl       time.Duration
	now       func() time.Time
	validator *validator.Validator
}

func NewGuard(opts Options) (*Guard, error) {
	if opts.Secret == "" {
		return nil, errors.New("auth: JWT secret not set")
	}
	secret := []byte(opts.Secret)

	v, err := validator.New(
		func(ctx context.Context) (interface{}, error) {
			return secret, nil
		},
		validator.HS256,
		opts.Issuer,
		[]string{opts.Audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("auth: set up validator: %w", err)
	}

	return &Guard{
		secret:    secret,
		issuer:    opts.Issuer,
		audience:  opts.Audience,
		ttl:       opts.TTL,
		now:       time.Now,
		validator: v,
	}, nil
}

func (g *Guard) CreateToken(userID, email string) (string, error) {
	now := g.now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    g.issuer,
			Audience:  jwt.ClaimStrings{g.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(g.secret)
}

// Authenticate verifies token and returns the user id it was issued for.
// Expired and badly signed tokens both fail with ErrUnauthorized.
func (g *Guard) Authenticate(ctx context.Context, token string) (string, error) {
	raw, err := g.validator.ValidateToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	claims, ok := raw.(*validator.ValidatedClaims)
	if !ok || claims.RegisteredClaims.Subject == "" {
		return "", ErrUnauthorized
	}
	return claims.RegisteredClaims.Subject, nil
}
