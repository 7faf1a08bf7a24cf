// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jason-s-yu/park/internal/chain"
)

// Sessions signs and verifies the EdDSA JWTs that carry a wallet address as "sub".
type Sessions struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey

	// expiry is the token lifetime; 0 means tokens carry no exp claim.
	expiry time.Duration
	now    func() time.Time
}

// NewSessions generates a fresh ed25519 signing key at runtime.
func NewSessions(expiry time.Duration) (*Sessions, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ed25519 key pair: %w", err)
	}
	return &Sessions{privateKey: priv, publicKey: pub, expiry: expiry, now: time.Now}, nil
}

// NewSessionsFromPath reads the ed25519 private/public keys from file.
func NewSessionsFromPath(privatePath, publicPath string, expiry time.Duration) (*Sessions, error) {
	privateKeyData, err := os.ReadFile(privatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key file: %w", err)
	}
	publicKeyData, err := os.ReadFile(publicPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key file: %w", err)
	}
	if len(privateKeyData) != ed25519.PrivateKeySize || len(publicKeyData) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid ed25519 key file sizes")
	}
	return &Sessions{
		privateKey: ed25519.PrivateKey(privateKeyData),
		publicKey:  ed25519.PublicKey(publicKeyData),
		expiry:     expiry,
		now:        time.Now,
	}, nil
}

// CreateJWT issues a signed token with "sub" = wallet address.
func (s *Sessions) CreateJWT(wallet chain.Address) (string, error) {
	claims := jwt.MapClaims{
		"sub": wallet.String(),
		"iat": s.now().Unix(),
	}
	if s.expiry > 0 {
		claims["exp"] = s.now().Add(s.expiry).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(s.privateKey)
}

// AuthenticateJWT verifies a token and returns a Signer for the wallet in "sub".
func (s *Sessions) AuthenticateJWT(tokenString string) (chain.Signer, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.publicKey, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("jwt parse error: %w", err)
	}
	if !t.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid jwt claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, fmt.Errorf("missing sub in jwt")
	}

	wallet, err := chain.ParseAddress(sub)
	if err != nil {
		return nil, fmt.Errorf("invalid sub in jwt: %w", err)
	}
	return chain.Attest(wallet)
}
