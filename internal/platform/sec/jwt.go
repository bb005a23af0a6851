// Copyright (c) 2026 Refera. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (RS256 signing and
// verification) from the domain logic. It acts as an Infrastructure service
// injected into the Application layer by explicit construction in cmd/api.
package sec

import (
	"crypto/rsa"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims represents the payload embedded inside a session artifact.
//
// # Why custom claims?
//
// By embedding the principal's email and display name directly inside the
// artifact, [middleware.Authenticate] can reconstruct the acting principal
// WITHOUT querying the database on every single API request. Membership is
// deliberately NOT embedded: it is recomputed per authorization decision so
// a revoked membership takes effect immediately, not at artifact expiry.
type SessionClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the payload small.
	Email       string `json:"eml"`
	DisplayName string `json:"dnm"`
}

// SessionID returns the artifact's unique id (jti), used as the revocation
// registry key.
func (c *SessionClaims) SessionID() string {
	return c.ID
}

// SubjectID returns the stable subject id assigned by the identity provider.
func (c *SessionClaims) SubjectID() string {
	return c.Subject
}

// TokenService handles generation and verification of session artifacts using RS256.
type TokenService struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
}

// NewTokenService creates a new TokenService.
// It reads RSA keys from the provided filesystem paths.
func NewTokenService(privateKeyPath, publicKeyPath, issuer string) (*TokenService, error) {
	privateKeyData, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to read private key from %s: %w", privateKeyPath, err)
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyData)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to parse private key: %w", err)
	}

	publicKey, err := LoadRSAPublicKey(publicKeyPath)
	if err != nil {
		return nil, err
	}

	return &TokenService{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
	}, nil
}

// LoadRSAPublicKey reads and parses a PEM-encoded RSA public key.
//
// Shared by the session TokenService and the external identity provider
// verifier, which validates ID tokens against the provider's published key.
func LoadRSAPublicKey(path string) (*rsa.PublicKey, error) {
	publicKeyData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to read public key from %s: %w", path, err)
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyData)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to parse public key: %w", err)
	}

	return publicKey, nil
}

// GenerateSessionToken creates a new signed session artifact.
//
// # Parameters
//   - sessionID: Unique artifact id (jti), registered for revocation.
//   - subjectID: Stable principal id from the identity provider.
//   - email: Normalized (lower-cased, trimmed) principal email.
//   - displayName: Optional display name.
//   - timeToLive: Artifact validity window. Callers pass
//     [constants.SessionTTL]; the short window is a design requirement.
func (service *TokenService) GenerateSessionToken(sessionID, subjectID, email, displayName string, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   subjectID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		Email:       email,
		DisplayName: displayName,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signedToken, err := token.SignedString(service.privateKey)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign session token: %w", err)
	}

	return signedToken, nil
}

// VerifySessionToken checks the signature and validity of a session artifact.
func (service *TokenService) VerifySessionToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.publicKey, nil
	}, jwt.WithIssuer(service.issuer))

	if err != nil {
		return nil, fmt.Errorf("sec: invalid session token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("sec: invalid session token claims")
	}

	return claims, nil
}
