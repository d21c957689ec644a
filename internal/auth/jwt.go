package auth

import (
	"context"
	"crypto/ecdsa"
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Sagun15/edfi-apis-sub000/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const claimsContextKey contextKey = "jwt_claims"

type JWTValidator struct {
	cfg       config.JWTConfig
	key       any
	expected  string
	clockFunc func() time.Time
}

func NewJWTValidator(cfg config.JWTConfig) (*JWTValidator, error) {
	if strings.TrimSpace(cfg.Issuer) == "" {
		return nil, errors.New("jwt issuer is required")
	}
	if strings.TrimSpace(cfg.Audience) == "" {
		return nil, errors.New("jwt audience is required")
	}
	alg := strings.ToUpper(strings.TrimSpace(cfg.ValidationType))
	if alg == "" {
		return nil, errors.New("jwt validation type is required")
	}

	v := &JWTValidator{
		cfg:       cfg,
		expected:  alg,
		clockFunc: time.Now,
	}

	switch alg {
	case "HS256":
		if cfg.HMACSecret == "" {
			return nil, errors.New("jwt hmac secret is required for HS256")
		}
		v.key = []byte(cfg.HMACSecret)
	case "RS256":
		keyPEM, err := loadPublicKeyPEM(cfg)
		if err != nil {
			return nil, err
		}
		rsaKey, err := jwt.ParseRSAPublicKeyFromPEM(keyPEM)
		if err != nil {
			return nil, fmt.Errorf("jwt public key is not RSA: %w", err)
		}
		v.key = rsaKey
	case "ES256":
		keyPEM, err := loadPublicKeyPEM(cfg)
		if err != nil {
			return nil, err
		}
		ecdsaKey, err := jwt.ParseECPublicKeyFromPEM(keyPEM)
		if err != nil {
			return nil, fmt.Errorf("jwt public key is not ECDSA: %w", err)
		}
		v.key = ecdsaKey
	default:
		return nil, fmt.Errorf("unsupported jwt validation type: %s", cfg.ValidationType)
	}

	return v, nil
}

// ValidateToken verifies signature, issuer, audience and the exp, nbf and
// iat claims, all three of which are required.
func (v *JWTValidator) ValidateToken(token string) (map[string]any, error) {
	skew := v.cfg.ClockSkewSec
	if skew < 0 {
		skew = 0
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{v.expected}),
		jwt.WithIssuer(v.cfg.Issuer),
		jwt.WithAudience(v.cfg.Audience),
		jwt.WithLeeway(time.Duration(skew)*time.Second),
		jwt.WithTimeFunc(v.clockFunc),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)

	claims := jwt.MapClaims{}
	if _, err := parser.ParseWithClaims(token, claims, v.keyFunc); err != nil {
		return nil, fmt.Errorf("invalid jwt: %w", err)
	}
	for _, key := range []string{"nbf", "iat"} {
		if _, ok := claims[key]; !ok {
			return nil, fmt.Errorf("jwt claim %s is required", key)
		}
	}
	return claims, nil
}

func (v *JWTValidator) keyFunc(t *jwt.Token) (any, error) {
	switch v.key.(type) {
	case []byte:
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected jwt alg: %v", t.Header["alg"])
		}
	case *rsa.PublicKey:
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected jwt alg: %v", t.Header["alg"])
		}
	case *ecdsa.PublicKey:
		if _, ok := t.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected jwt alg: %v", t.Header["alg"])
		}
	}
	return v.key, nil
}

func WithClaims(ctx context.Context, claims map[string]any) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

func ClaimsFromContext(ctx context.Context) (map[string]any, bool) {
	claims, ok := ctx.Value(claimsContextKey).(map[string]any)
	return claims, ok
}

// BearerToken extracts the token of an "Authorization: Bearer" header value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func loadPublicKeyPEM(cfg config.JWTConfig) ([]byte, error) {
	keyPEM := strings.TrimSpace(cfg.PublicKeyPEM)
	if keyPEM == "" && strings.TrimSpace(cfg.PublicKeyPath) != "" {
		data, err := os.ReadFile(cfg.PublicKeyPath)
		if err != nil {
			return nil, fmt.Errorf("read jwt public key: %w", err)
		}
		keyPEM = string(data)
	}
	if keyPEM == "" {
		return nil, errors.New("jwt public key is required")
	}
	return []byte(keyPEM), nil
}
