package token

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/google/uuid"
	jose "gopkg.in/go-jose/go-jose.v2"
	"gopkg.in/go-jose/go-jose.v2/jwt"
)

// ErrInvalidToken is returned when a token fails signature, claim or subject checks
var ErrInvalidToken = errors.New("invalid token")

// MinSecretLength is the shortest HMAC secret accepted for HS256
const MinSecretLength = 32

// Manager issues and verifies HS256 access tokens whose subject is the user ID
type Manager struct {
	signer    jose.Signer
	validator *validator.Validator
	issuer    string
	audience  string
	ttl       time.Duration
	now       func() time.Time
}

// NewManager creates a new Manager
func NewManager(secret []byte, issuer, audience string, ttl time.Duration) (*Manager, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("token secret must be at least %d bytes", MinSecretLength)
	}

	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: secret},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return nil, fmt.Errorf("create signer: %w", err)
	}

	keyFunc := func(ctx context.Context) (interface{}, error) {
		return secret, nil
	}
	jwtValidator, err := validator.New(
		keyFunc,
		validator.HS256,
		issuer,
		[]string{audience},
		validator.WithAllowedClockSkew(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create validator: %w", err)
	}

	return &Manager{
		signer:    signer,
		validator: jwtValidator,
		issuer:    issuer,
		audience:  audience,
		ttl:       ttl,
		now:       time.Now,
	}, nil
}

// Issue signs a token for userID and returns it with its expiry
func (m *Manager) Issue(userID int32) (string, time.Time, error) {
	issuedAt := m.now().UTC()
	expiresAt := issuedAt.Add(m.ttl)

	claims := jwt.Claims{
		Issuer:    m.issuer,
		Subject:   strconv.FormatInt(int64(userID), 10),
		Audience:  jwt.Audience{m.audience},
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		NotBefore: jwt.NewNumericDate(issuedAt),
		Expiry:    jwt.NewNumericDate(expiresAt),
		ID:        uuid.New().String(),
	}

	raw, err := jwt.Signed(m.signer).Claims(claims).CompactSerialize()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return raw, expiresAt, nil
}

// Verify validates raw and returns the user ID in its subject
func (m *Manager) Verify(ctx context.Context, raw string) (int32, error) {
	claims, err := m.validator.ValidateToken(ctx, raw)
	if err != nil {
		return 0, ErrInvalidToken
	}

	validated, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(validated.RegisteredClaims.Subject, 10, 32)
	if err != nil || userID <= 0 {
		return 0, ErrInvalidToken
	}
	return int32(userID), nil
}
