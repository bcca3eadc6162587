// Package auth issues and verifies the session tokens the datastore accepts.
package auth

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/louisbranch/cardclash/internal/platform/config"
	apperrors "github.com/louisbranch/cardclash/internal/platform/errors"
	"github.com/louisbranch/cardclash/internal/platform/id"
	"github.com/louisbranch/cardclash/internal/platform/requestctx"
)

// sessionEnv holds raw env values before post-parse validation.
type sessionEnv struct {
	Issuer     string `env:"CARDCLASH_SESSION_ISSUER" envDefault:"cardclash"`
	Audience   string `env:"CARDCLASH_SESSION_AUDIENCE" envDefault:"cardclash-datastore"`
	PublicKey  string `env:"CARDCLASH_SESSION_PUBLIC_KEY"`
	PrivateKey string `env:"CARDCLASH_SESSION_PRIVATE_KEY"`
}

// Config defines how session tokens are minted and verified.
type Config struct {
	Issuer     string
	Audience   string
	PublicKey  ed25519.PublicKey
	PrivateKey ed25519.PrivateKey
	Now        func() time.Time
}

// Claims captures validated session claims.
type Claims struct {
	Issuer    string
	Audience  []string
	ExpiresAt time.Time
	IssuedAt  time.Time
	JWTID     string
	UserID    string
	Email     string
}

// Caller converts the claims into the request caller.
func (c Claims) Caller() requestctx.Caller {
	return requestctx.Caller{UserID: c.UserID, Email: c.Email}
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// LoadConfigFromEnv reads session configuration. The public key is required;
// the private key is only needed by processes that mint tokens. When only the
// private key is set the public key is derived from it.
func LoadConfigFromEnv(now func() time.Time) (Config, error) {
	var raw sessionEnv
	if err := config.ParseEnv(&raw); err != nil {
		return Config{}, fmt.Errorf("parse session env: %w", err)
	}
	cfg := Config{
		Issuer:   strings.TrimSpace(raw.Issuer),
		Audience: strings.TrimSpace(raw.Audience),
		Now:      now,
	}
	if cfg.Issuer == "" {
		return Config{}, fmt.Errorf("CARDCLASH_SESSION_ISSUER is required")
	}
	if cfg.Audience == "" {
		return Config{}, fmt.Errorf("CARDCLASH_SESSION_AUDIENCE is required")
	}
	if value := strings.TrimSpace(raw.PrivateKey); value != "" {
		key, err := ParsePrivateKey(value)
		if err != nil {
			return Config{}, fmt.Errorf("CARDCLASH_SESSION_PRIVATE_KEY: %w", err)
		}
		cfg.PrivateKey = key
		cfg.PublicKey = key.Public().(ed25519.PublicKey)
	}
	if value := strings.TrimSpace(raw.PublicKey); value != "" {
		key, err := ParsePublicKey(value)
		if err != nil {
			return Config{}, fmt.Errorf("CARDCLASH_SESSION_PUBLIC_KEY: %w", err)
		}
		if cfg.PrivateKey != nil && !key.Equal(cfg.PublicKey) {
			return Config{}, fmt.Errorf("session public key does not match private key")
		}
		cfg.PublicKey = key
	}
	if cfg.PublicKey == nil {
		return Config{}, fmt.Errorf("CARDCLASH_SESSION_PUBLIC_KEY is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return cfg, nil
}

// Mint signs a session token for the user. It needs a private key.
func Mint(cfg Config, userID, email string, ttl time.Duration) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", errors.New("user id is required")
	}
	if ttl <= 0 {
		return "", errors.New("session ttl must be positive")
	}
	if len(cfg.PrivateKey) != ed25519.PrivateKeySize {
		return "", errors.New("session signer is not configured")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	jti, err := id.NewID()
	if err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	now := cfg.Now().UTC()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   userID,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        jti,
		},
		Email: strings.TrimSpace(email),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	signed, err := token.SignedString(cfg.PrivateKey)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// Verify checks a session token and returns its claims.
func Verify(token string, cfg Config) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, apperrors.New(apperrors.CodeSessionTokenInvalid, "session token is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Issuer == "" || cfg.Audience == "" || len(cfg.PublicKey) != ed25519.PublicKeySize {
		return Claims{}, errors.New("session verifier is not configured")
	}

	var parsed sessionClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return cfg.PublicKey, nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return Claims{}, mapJWTError(err)
	}

	if parsed.Issuer == "" || parsed.Issuer != cfg.Issuer {
		return Claims{}, apperrors.WithMetadata(
			apperrors.CodeSessionTokenInvalid,
			"session issuer mismatch",
			map[string]string{"Field": "issuer"},
		)
	}
	if !audienceContains(parsed.Audience, cfg.Audience) {
		return Claims{}, apperrors.WithMetadata(
			apperrors.CodeSessionTokenInvalid,
			"session audience mismatch",
			map[string]string{"Field": "audience"},
		)
	}
	if strings.TrimSpace(parsed.Subject) == "" {
		return Claims{}, apperrors.New(apperrors.CodeSessionTokenInvalid, "session subject is required")
	}
	if parsed.ExpiresAt == nil {
		return Claims{}, apperrors.New(apperrors.CodeSessionTokenInvalid, "session exp is required")
	}
	now := cfg.Now().UTC()
	exp := parsed.ExpiresAt.Time.UTC()
	if !exp.After(now) {
		return Claims{}, apperrors.New(apperrors.CodeSessionTokenExpired, "session is expired")
	}

	claims := Claims{
		Issuer:    parsed.Issuer,
		Audience:  []string(parsed.Audience),
		ExpiresAt: exp,
		JWTID:     parsed.ID,
		UserID:    parsed.Subject,
		Email:     parsed.Email,
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time.UTC()
	}
	return claims, nil
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrEd25519Verification) {
		return apperrors.Wrap(apperrors.CodeSessionTokenInvalid, "session signature is invalid", err)
	}
	if errors.Is(err, jwt.ErrTokenUnverifiable) {
		return apperrors.Wrap(apperrors.CodeSessionTokenInvalid, "session alg is invalid", err)
	}
	return apperrors.Wrap(apperrors.CodeSessionTokenInvalid, "session token is invalid", err)
}

func audienceContains(aud jwt.ClaimStrings, value string) bool {
	for _, item := range aud {
		if item == value {
			return true
		}
	}
	return false
}
