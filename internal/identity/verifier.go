// Copyright (c) 2026 Refera. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package identity exchanges an external identity-provider token for a
short-lived Refera session, and answers who is acting on a request.

Refera holds no passwords. Authentication happens upstream at the identity
provider; this package only verifies the provider's RS256 token, derives the
caller's agency memberships, and mints the session artifact the rest of the
API trusts.
*/
package identity

import (
	"context"
	"crypto/rsa"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/refera/internal/platform/apperr"
	"github.com/taibuivan/refera/internal/platform/sec"
)

// Claims is the verified subset of an identity-provider token.
type Claims struct {
	SubjectID   string
	Email       string
	DisplayName string
}

// Verifier checks an identity-provider token and extracts its claims.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

// # RS256 Verifier

type idpClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
}

// RS256Verifier validates identity-provider tokens against the provider's
// published public key.
type RS256Verifier struct {
	publicKey *rsa.PublicKey
	issuer    string
}

// NewRS256Verifier loads the provider's public key from a PEM file.
func NewRS256Verifier(publicKeyPath, issuer string) (*RS256Verifier, error) {
	publicKey, err := sec.LoadRSAPublicKey(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("identity_verifier_key_load_failed: %w", err)
	}

	return &RS256Verifier{publicKey: publicKey, issuer: issuer}, nil
}

/*
Verify parses and validates an identity-provider token.

Parameters:
  - ctx: context.Context
  - token: string (compact JWS from the provider)

Returns:
  - *Claims: Verified subject, email, and display name
  - error: apperr.Unauthorized on any validation failure
*/
func (verifier *RS256Verifier) Verify(ctx context.Context, token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &idpClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return verifier.publicKey, nil
	}, jwt.WithIssuer(verifier.issuer), jwt.WithExpirationRequired())

	if err != nil || !parsed.Valid {
		return nil, apperr.Unauthorized("Identity token is invalid or expired")
	}

	claims, ok := parsed.Claims.(*idpClaims)
	if !ok || claims.Subject == "" || claims.Email == "" {
		return nil, apperr.Unauthorized("Identity token is missing required claims")
	}

	return &Claims{
		SubjectID:   claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
	}, nil
}
