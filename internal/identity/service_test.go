// Copyright (c) 2026 Refera. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/refera/internal/audit"
	"github.com/taibuivan/refera/internal/identity"
	"github.com/taibuivan/refera/internal/platform/apperr"
	"github.com/taibuivan/refera/internal/platform/constants"
	"github.com/taibuivan/refera/internal/platform/sec"
	"github.com/taibuivan/refera/internal/tenancy/directory"
)

// writeTestKeyPair generates a throwaway RSA key pair on disk for the token
// service.
func writeTestKeyPair(t *testing.T) (privPath, pubPath string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath = filepath.Join(dir, "session.key")
	pubPath = filepath.Join(dir, "session.pub")

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0o600))

	pubBytes, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0o644))

	return privPath, pubPath
}

type fakeVerifier struct {
	claims *identity.Claims
	err    error
}

func (f *fakeVerifier) Verify(ctx context.Context, token string) (*identity.Claims, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.claims, nil
}

type memoryRegistry struct {
	mu       sync.Mutex
	sessions map[string]string
	getErr   error
}

func newMemoryRegistry() *memoryRegistry {
	return &memoryRegistry{sessions: map[string]string{}}
}

func (m *memoryRegistry) Put(ctx context.Context, sessionID, subjectID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = subjectID
	return nil
}

func (m *memoryRegistry) IsActive(ctx context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return false, m.getErr
	}
	_, ok := m.sessions[sessionID]
	return ok, nil
}

func (m *memoryRegistry) Revoke(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

type fakeMemberships struct {
	agencies []*directory.Agency
}

func (f *fakeMemberships) MembershipsFor(ctx context.Context, email string) []*directory.Agency {
	return f.agencies
}

type fakePresence struct {
	mu      sync.Mutex
	touched []string
}

func (f *fakePresence) TouchLastActive(ctx context.Context, agencyID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched = append(f.touched, agencyID)
	return nil
}

type captureSink struct {
	mu     sync.Mutex
	events []audit.Event
}

func (c *captureSink) Record(event audit.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureSink) actions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	actions := make([]string, 0, len(c.events))
	for _, event := range c.events {
		actions = append(actions, event.Action)
	}
	return actions
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type serviceFixture struct {
	service  *identity.Service
	registry *memoryRegistry
	presence *fakePresence
	sink     *captureSink
}

func newFixture(t *testing.T, verifier identity.Verifier, memberships []*directory.Agency) *serviceFixture {
	t.Helper()

	privPath, pubPath := writeTestKeyPair(t)
	tokens, err := sec.NewTokenService(privPath, pubPath, constants.SessionIssuer)
	require.NoError(t, err)

	registry := newMemoryRegistry()
	presence := &fakePresence{}
	sink := &captureSink{}

	service := identity.NewService(
		tokens, verifier, registry,
		&fakeMemberships{agencies: memberships}, presence, sink,
		"admin@refera.app", testLogger(),
	)

	return &serviceFixture{service: service, registry: registry, presence: presence, sink: sink}
}

func member(id string) *directory.Agency {
	return &directory.Agency{ID: id, Slug: id, Name: id, Status: directory.StatusActive, Exists: true}
}

/*
TestCreateSession_Success exercises the full exchange: verify, mint, register,
and the membership payload.
*/
func TestCreateSession_Success(t *testing.T) {
	verifier := &fakeVerifier{claims: &identity.Claims{SubjectID: "u1", Email: "KIM@Acme.org", DisplayName: "Kim"}}
	fixture := newFixture(t, verifier, []*directory.Agency{member("a1"), member("a2")})

	session, err := fixture.service.CreateSession(context.Background(), "idp-token")
	require.NoError(t, err)

	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "kim@acme.org", session.Principal.Email)
	assert.Equal(t, "u1", session.Principal.SubjectID)
	assert.Len(t, session.Memberships, 2)
	assert.WithinDuration(t, time.Now().Add(constants.SessionTTL), session.ExpiresAt, 5*time.Second)

	assert.Contains(t, fixture.sink.actions(), audit.ActionSessionCreated)

	// The artifact round-trips through verification.
	principal := fixture.service.VerifySession(context.Background(), session.Token)
	require.NotNil(t, principal)
	assert.Equal(t, "kim@acme.org", principal.Email)
	assert.Equal(t, "u1", principal.SubjectID())
}

/*
TestCreateSession_NoMemberships verifies that a verified stranger is refused
a session outright.
*/
func TestCreateSession_NoMemberships(t *testing.T) {
	verifier := &fakeVerifier{claims: &identity.Claims{SubjectID: "u1", Email: "stranger@nowhere.org"}}
	fixture := newFixture(t, verifier, nil)

	_, err := fixture.service.CreateSession(context.Background(), "idp-token")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
}

/*
TestCreateSession_AdminWithoutMemberships verifies the platform admin can
always open a session.
*/
func TestCreateSession_AdminWithoutMemberships(t *testing.T) {
	verifier := &fakeVerifier{claims: &identity.Claims{SubjectID: "root", Email: "admin@refera.app"}}
	fixture := newFixture(t, verifier, nil)

	session, err := fixture.service.CreateSession(context.Background(), "idp-token")
	require.NoError(t, err)
	assert.Empty(t, session.Memberships)
}

/*
TestCreateSession_BadIdentityToken propagates the verifier's rejection.
*/
func TestCreateSession_BadIdentityToken(t *testing.T) {
	verifier := &fakeVerifier{err: apperr.Unauthorized("Identity token is invalid or expired")}
	fixture := newFixture(t, verifier, []*directory.Agency{member("a1")})

	_, err := fixture.service.CreateSession(context.Background(), "garbage")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}

/*
TestVerifySession_NeverErrors verifies the anonymous-degrade contract for
every bad artifact shape.
*/
func TestVerifySession_NeverErrors(t *testing.T) {
	verifier := &fakeVerifier{claims: &identity.Claims{SubjectID: "u1", Email: "kim@acme.org"}}
	fixture := newFixture(t, verifier, []*directory.Agency{member("a1")})

	assert.Nil(t, fixture.service.VerifySession(context.Background(), ""))
	assert.Nil(t, fixture.service.VerifySession(context.Background(), "not-a-jwt"))
	assert.Nil(t, fixture.service.VerifySession(context.Background(), "aaaa.bbbb.cccc"))
}

/*
TestVerifySession_Revoked verifies revocation takes effect before the
artifact's own expiry.
*/
func TestVerifySession_Revoked(t *testing.T) {
	verifier := &fakeVerifier{claims: &identity.Claims{SubjectID: "u1", Email: "kim@acme.org"}}
	fixture := newFixture(t, verifier, []*directory.Agency{member("a1")})

	session, err := fixture.service.CreateSession(context.Background(), "idp-token")
	require.NoError(t, err)

	principal := fixture.service.VerifySession(context.Background(), session.Token)
	require.NotNil(t, principal)

	require.NoError(t, fixture.service.RevokeSession(context.Background(), principal))
	assert.Nil(t, fixture.service.VerifySession(context.Background(), session.Token))
	assert.Contains(t, fixture.sink.actions(), audit.ActionSessionRevoked)

	// Idempotent.
	require.NoError(t, fixture.service.RevokeSession(context.Background(), principal))
	require.NoError(t, fixture.service.RevokeSession(context.Background(), nil))
}

/*
TestVerifySession_RegistryOutage verifies the degraded path: a registry
connectivity error logs and honors the signature-verified artifact.
*/
func TestVerifySession_RegistryOutage(t *testing.T) {
	verifier := &fakeVerifier{claims: &identity.Claims{SubjectID: "u1", Email: "kim@acme.org"}}
	fixture := newFixture(t, verifier, []*directory.Agency{member("a1")})

	session, err := fixture.service.CreateSession(context.Background(), "idp-token")
	require.NoError(t, err)

	fixture.registry.getErr = errors.New("connection refused")
	principal := fixture.service.VerifySession(context.Background(), session.Token)
	require.NotNil(t, principal)
	assert.Equal(t, "u1", principal.SubjectID())
}
