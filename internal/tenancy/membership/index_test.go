// Copyright (c) 2026 Refera. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package membership_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/refera/internal/tenancy/directory"
	"github.com/taibuivan/refera/internal/tenancy/membership"
)

type fakeRepository struct {
	byEmail  map[string][]*directory.Agency
	byDomain map[string][]*directory.Agency
	byOwner  map[string][]*directory.Agency

	emailErr  error
	domainErr error
	ownerErr  error

	domainQueries []string
}

func (f *fakeRepository) FindByAuthorizedEmail(ctx context.Context, email string) ([]*directory.Agency, error) {
	if f.emailErr != nil {
		return nil, f.emailErr
	}
	return f.byEmail[email], nil
}

func (f *fakeRepository) FindByAuthorizedDomain(ctx context.Context, domain string) ([]*directory.Agency, error) {
	f.domainQueries = append(f.domainQueries, domain)
	if f.domainErr != nil {
		return nil, f.domainErr
	}
	return f.byDomain[domain], nil
}

func (f *fakeRepository) FindByOwnerEmail(ctx context.Context, email string) ([]*directory.Agency, error) {
	if f.ownerErr != nil {
		return nil, f.ownerErr
	}
	return f.byOwner[email], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func agency(id string) *directory.Agency {
	return &directory.Agency{ID: id, Slug: id, Name: id, Status: directory.StatusActive, Exists: true}
}

/*
TestMembershipsFor_UnionDedup verifies that one agency matching several
signals appears exactly once while distinct agencies from different signals
all appear.
*/
func TestMembershipsFor_UnionDedup(t *testing.T) {
	shared := agency("shared")
	repo := &fakeRepository{
		byDomain: map[string][]*directory.Agency{"acme.org": {shared, agency("by-domain")}},
		byEmail:  map[string][]*directory.Agency{"kim@acme.org": {shared, agency("by-email")}},
		byOwner:  map[string][]*directory.Agency{"kim@acme.org": {shared, agency("by-owner")}},
	}

	index := membership.NewIndex(repo, testLogger())
	agencies := index.MembershipsFor(context.Background(), "kim@acme.org")

	require.Len(t, agencies, 4)

	ids := make([]string, 0, len(agencies))
	for _, a := range agencies {
		ids = append(ids, a.ID)
	}

	// Merge order is fixed: domain, exact email, owner.
	assert.Equal(t, []string{"shared", "by-domain", "by-email", "by-owner"}, ids)
}

/*
TestMembershipsFor_PublicDomainDenylist verifies that a consumer mail domain
never triggers the domain signal, while exact-email and owner matches for the
same address still count.
*/
func TestMembershipsFor_PublicDomainDenylist(t *testing.T) {
	repo := &fakeRepository{
		byDomain: map[string][]*directory.Agency{"gmail.com": {agency("never-granted")}},
		byEmail:  map[string][]*directory.Agency{"pat@gmail.com": {agency("exact")}},
		byOwner:  map[string][]*directory.Agency{"pat@gmail.com": {agency("owned")}},
	}

	index := membership.NewIndex(repo, testLogger())
	agencies := index.MembershipsFor(context.Background(), "pat@gmail.com")

	require.Len(t, agencies, 2)
	assert.Equal(t, "exact", agencies[0].ID)
	assert.Equal(t, "owned", agencies[1].ID)

	// The denylisted domain query was never issued.
	assert.Empty(t, repo.domainQueries)
}

/*
TestMembershipsFor_PartialSignalFailure verifies that one failing signal
degrades to a partial result instead of an empty one.
*/
func TestMembershipsFor_PartialSignalFailure(t *testing.T) {
	repo := &fakeRepository{
		byDomain: map[string][]*directory.Agency{"acme.org": {agency("by-domain")}},
		byOwner:  map[string][]*directory.Agency{"kim@acme.org": {agency("by-owner")}},
		emailErr: errors.New("connection reset"),
	}

	index := membership.NewIndex(repo, testLogger())
	agencies := index.MembershipsFor(context.Background(), "kim@acme.org")

	require.Len(t, agencies, 2)
	assert.Equal(t, "by-domain", agencies[0].ID)
	assert.Equal(t, "by-owner", agencies[1].ID)
}

/*
TestMembershipsFor_Normalization verifies that the input email is lower-cased
and trimmed before any signal query.
*/
func TestMembershipsFor_Normalization(t *testing.T) {
	repo := &fakeRepository{
		byEmail: map[string][]*directory.Agency{"kim@acme.org": {agency("exact")}},
	}

	index := membership.NewIndex(repo, testLogger())
	agencies := index.MembershipsFor(context.Background(), "  KIM@ACME.ORG  ")

	require.Len(t, agencies, 1)
	assert.Equal(t, "exact", agencies[0].ID)
	assert.Equal(t, []string{"acme.org"}, repo.domainQueries)
}

/*
TestMembershipsFor_MalformedEmail verifies that an address without "@" yields
no memberships and no queries.
*/
func TestMembershipsFor_MalformedEmail(t *testing.T) {
	repo := &fakeRepository{}
	index := membership.NewIndex(repo, testLogger())

	assert.Empty(t, index.MembershipsFor(context.Background(), "not-an-email"))
	assert.Empty(t, index.MembershipsFor(context.Background(), ""))
	assert.Empty(t, repo.domainQueries)
}

/*
TestIsMember covers the single-agency convenience used by the authorizer.
*/
func TestIsMember(t *testing.T) {
	repo := &fakeRepository{
		byEmail: map[string][]*directory.Agency{"kim@acme.org": {agency("a1")}},
	}
	index := membership.NewIndex(repo, testLogger())

	assert.True(t, index.IsMember(context.Background(), "kim@acme.org", "a1"))
	assert.False(t, index.IsMember(context.Background(), "kim@acme.org", "a2"))
}

/*
TestIsPublicDomain spot-checks the denylist helper.
*/
func TestIsPublicDomain(t *testing.T) {
	assert.True(t, membership.IsPublicDomain("gmail.com"))
	assert.True(t, membership.IsPublicDomain("  GMAIL.COM  "))
	assert.False(t, membership.IsPublicDomain("acme.org"))
}
