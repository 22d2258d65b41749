package tokenmanager

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Yobibbb/Lost-and-Found-IOT/internal/models"
)

const (
	// Tokens live long: they are never revoked server side, the identity
	// is re-checked against the user store on every request instead
	defaultTokenTTL = 30 * 24 * time.Hour

	defaultSigningMethod = "HS256"
)

type AccessTokenClaims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID   `json:"uid"`
	Role   models.Role `json:"role"`
}

// Token manager with sensible defaults
type Config struct {
	// Secret key to sign access tokens
	// Required to be set
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Token lifetime
	// If not set than default is used
	TTL time.Duration
}

// TokenManager issues and verifies signed bearer tokens.
// Both operations are pure functions of (token, secret, clock): no I/O happens here.
type TokenManager struct {
	key string
	alg jwt.SigningMethod
	ttl time.Duration
}

func New(cfg Config) (*TokenManager, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	alg := jwt.GetSigningMethod(cfg.Alg)
	if alg == nil {
		return nil, fmt.Errorf("unknown signing method: %q", cfg.Alg)
	}

	if cfg.TTL == 0 {
		cfg.TTL = defaultTokenTTL
	}

	return &TokenManager{
		key: cfg.SecretKey,
		alg: alg,
		ttl: cfg.TTL,
	}, nil
}

// Issue signed token for the user
func (m *TokenManager) Issue(user models.User) (models.IssuedToken, error) {
	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(m.ttl)

	token := jwt.NewWithClaims(
		m.alg,
		AccessTokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			UserID: user.ID,
			Role:   user.Role,
		},
	)
	signed, err := token.SignedString([]byte(m.key))
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing token. Err: %w", err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

// Parse and validate token
// The expected algorithm is pinned: a token claiming any other alg in its own
// header is rejected before the signature is even checked
func (m *TokenManager) Parse(token string) (AccessTokenClaims, error) {
	claims := AccessTokenClaims{}

	_, err := jwt.ParseWithClaims(
		token,
		&claims,
		func(t *jwt.Token) (any, error) {
			return []byte(m.key), nil
		},
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return AccessTokenClaims{}, fmt.Errorf("error while parsing or validating token. Err: %w", err)
	}

	return claims, nil
}
