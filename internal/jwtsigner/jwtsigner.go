package jwtsigner

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidKey = errors.New("invalid signing key")

// Signer issues and checks JWTs with exactly one algorithm. HMAC algorithms
// use the secret as is; EdDSA expects a base64 encoded Ed25519 private key.
type Signer struct {
	method    jwt.SigningMethod
	signKey   any
	verifyKey any
	Issuer    string
}

func New(alg, secret, issuer string) (*Signer, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: empty secret", ErrInvalidKey)
	}
	switch alg {
	case "HS256", "HS384", "HS512":
		key := []byte(secret)
		return &Signer{method: jwt.GetSigningMethod(alg), signKey: key, verifyKey: key, Issuer: issuer}, nil
	case "EdDSA":
		priv, err := decodeEd25519(secret)
		if err != nil {
			return nil, err
		}
		return &Signer{
			method:    jwt.SigningMethodEdDSA,
			signKey:   priv,
			verifyKey: priv.Public(),
			Issuer:    issuer,
		}, nil
	}
	return nil, fmt.Errorf("unsupported signing algorithm %q", alg)
}

func (s *Signer) Algorithm() string { return s.method.Alg() }

// Sign issues a token for sub valid from now for ttl.
func (s *Signer) Sign(sub string, now time.Time, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    s.Issuer,
		Subject:   sub,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(s.method, claims).SignedString(s.signKey)
}

// Parse verifies signature, algorithm, issuer and expiry (evaluated at now)
// and returns the registered claims.
func (s *Signer) Parse(token string, now time.Time) (*jwt.RegisteredClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	}
	if s.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.Issuer))
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.verifyKey, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// GenerateEd25519 returns a fresh base64 encoded Ed25519 private key usable as
// SECRET_KEY with ALGORITHM=EdDSA.
func GenerateEd25519() (string, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(priv), nil
}

func decodeEd25519(b64 string) (ed25519.PrivateKey, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	switch len(raw) {
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(raw), nil
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(raw), nil
	}
	return nil, fmt.Errorf("%w: ed25519 key must be %d or %d bytes", ErrInvalidKey, ed25519.SeedSize, ed25519.PrivateKeySize)
}
