// Copyright (c) 2026 Refera. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package referral_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/refera/internal/intake/referral"
	"github.com/taibuivan/refera/internal/platform/apperr"
	"github.com/taibuivan/refera/internal/platform/constants"
	"github.com/taibuivan/refera/internal/platform/dberr"
	"github.com/taibuivan/refera/internal/platform/sec"
	"github.com/taibuivan/refera/internal/tenancy/directory"
	"github.com/taibuivan/refera/pkg/uuidv7"
)

type fakeRepository struct {
	records map[string]*referral.Referral // keyed by id
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{records: map[string]*referral.Referral{}}
}

func (f *fakeRepository) Create(ctx context.Context, record *referral.Referral) error {
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt
	f.records[record.ID] = record
	return nil
}

func (f *fakeRepository) FindByID(ctx context.Context, agencyID, id string) (*referral.Referral, error) {
	record, ok := f.records[id]
	if !ok || record.AgencyID != agencyID {
		return nil, dberr.ErrNotFound
	}
	return record, nil
}

func (f *fakeRepository) FindStatus(ctx context.Context, agencyID, id string) (*referral.StatusView, error) {
	record, err := f.FindByID(ctx, agencyID, id)
	if err != nil {
		return nil, err
	}
	return &referral.StatusView{
		ID: record.ID, Status: record.Status,
		CreatedAt: record.CreatedAt, UpdatedAt: record.UpdatedAt,
	}, nil
}

func (f *fakeRepository) ListByAgency(ctx context.Context, agencyID string, filter referral.Filter, limit, offset int) ([]*referral.Referral, int, error) {
	var matches []*referral.Referral
	for _, record := range f.records {
		if record.AgencyID != agencyID {
			continue
		}
		if filter.Status != "" && record.Status != filter.Status {
			continue
		}
		matches = append(matches, record)
	}
	return matches, len(matches), nil
}

func (f *fakeRepository) UpdateStatus(ctx context.Context, agencyID, id string, status referral.Status, note string) error {
	record, err := f.FindByID(ctx, agencyID, id)
	if err != nil {
		return err
	}
	record.Status = status
	record.Note = note
	return nil
}

func (f *fakeRepository) Delete(ctx context.Context, agencyID, id string) error {
	if _, err := f.FindByID(ctx, agencyID, id); err != nil {
		return err
	}
	delete(f.records, id)
	return nil
}

type fakeResolver struct {
	agencies map[string]*directory.Agency // keyed by id or slug
}

func (f *fakeResolver) Resolve(ctx context.Context, idOrSlug string) *directory.Agency {
	if agency, ok := f.agencies[idOrSlug]; ok {
		return agency
	}
	return &directory.Agency{ID: idOrSlug, Slug: idOrSlug, Status: directory.StatusSuspended, Exists: false}
}

type fakeAuthorizer struct {
	allow          bool
	sensitiveReads []string
}

func (f *fakeAuthorizer) AuthorizeRead(ctx context.Context, principal *sec.SessionClaims, tenantID string) error {
	if !f.allow {
		return apperr.Forbidden("You do not have access to this agency")
	}
	return nil
}

func (f *fakeAuthorizer) AuthorizeWrite(ctx context.Context, principal *sec.SessionClaims, tenantID string) error {
	return f.AuthorizeRead(ctx, principal, tenantID)
}

func (f *fakeAuthorizer) NoteSensitiveRead(principal *sec.SessionClaims, tenantID, resourceID string) {
	f.sensitiveReads = append(f.sensitiveReads, resourceID)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func principal() *sec.SessionClaims {
	return &sec.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{ID: "sess-1", Subject: "u1"},
		Email:            "kim@acme.org",
	}
}

type fixture struct {
	service    *referral.Service
	repo       *fakeRepository
	authorizer *fakeAuthorizer
}

func newFixture(allow bool) *fixture {
	repo := newFakeRepository()
	authorizer := &fakeAuthorizer{allow: allow}
	resolver := &fakeResolver{agencies: map[string]*directory.Agency{
		"acme":    {ID: "a1", Slug: "acme", Name: "Acme", Status: directory.StatusActive, Exists: true},
		"a1":      {ID: "a1", Slug: "acme", Name: "Acme", Status: directory.StatusActive, Exists: true},
		"dormant": {ID: "a2", Slug: "dormant", Name: "Dormant", Status: directory.StatusSuspended, Exists: true},
	}}

	return &fixture{
		service:    referral.NewService(repo, resolver, authorizer, testLogger()),
		repo:       repo,
		authorizer: authorizer,
	}
}

func validInput() referral.SubmitInput {
	return referral.SubmitInput{
		ClientName:  "Pat Client",
		ClientEmail: "Pat@Client.org",
		ClientPhone: "555-0101",
		Summary:     "Needs housing support",
	}
}

/*
TestSubmitPublic_Success verifies the anonymous intake path: record lands in
the resolved agency in NEW with normalized client fields.
*/
func TestSubmitPublic_Success(t *testing.T) {
	f := newFixture(false)

	record, err := f.service.SubmitPublic(context.Background(), "acme", validInput())
	require.NoError(t, err)

	assert.Equal(t, "a1", record.AgencyID)
	assert.Equal(t, referral.StatusNew, record.Status)
	assert.Equal(t, "pat@client.org", record.ClientEmail)
	assert.True(t, uuidv7.IsValid(record.ID))
}

/*
TestSubmitPublic_RootScopeRejected verifies intake on the apex domain is
refused: a referral must land in exactly one agency.
*/
func TestSubmitPublic_RootScopeRejected(t *testing.T) {
	f := newFixture(false)

	_, err := f.service.SubmitPublic(context.Background(), constants.RootTenantID, validInput())
	require.Error(t, err)
	assert.Equal(t, "UNPROCESSABLE", apperr.As(err).Code)
}

/*
TestSubmitPublic_UnknownAgency verifies intake into a never-provisioned scope
is refused.
*/
func TestSubmitPublic_UnknownAgency(t *testing.T) {
	f := newFixture(false)

	_, err := f.service.SubmitPublic(context.Background(), "ghost", validInput())
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

/*
TestSubmitPublic_SuspendedAgency verifies a suspended subscription stops new
intake.
*/
func TestSubmitPublic_SuspendedAgency(t *testing.T) {
	f := newFixture(false)

	_, err := f.service.SubmitPublic(context.Background(), "dormant", validInput())
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
}

/*
TestSubmitPublic_Validation rejects incomplete payloads.
*/
func TestSubmitPublic_Validation(t *testing.T) {
	f := newFixture(false)

	input := validInput()
	input.ClientEmail = "not-an-email"
	input.Summary = ""

	_, err := f.service.SubmitPublic(context.Background(), "acme", input)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

/*
TestLookupStatus verifies the exact-id public lookup and its failure shapes.
*/
func TestLookupStatus(t *testing.T) {
	f := newFixture(false)

	record, err := f.service.SubmitPublic(context.Background(), "acme", validInput())
	require.NoError(t, err)

	view, err := f.service.LookupStatus(context.Background(), "acme", record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, view.ID)
	assert.Equal(t, referral.StatusNew, view.Status)

	// Not a UUID at all: NotFound without touching storage.
	_, err = f.service.LookupStatus(context.Background(), "acme", "guess")
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)

	// A valid id leaked into another tenant scope resolves to nothing.
	_, err = f.service.LookupStatus(context.Background(), "dormant", record.ID)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

/*
TestGet_SensitiveReadAudited verifies an allowed full-record read is noted in
the audit trail.
*/
func TestGet_SensitiveReadAudited(t *testing.T) {
	f := newFixture(true)

	record, err := f.service.SubmitPublic(context.Background(), "acme", validInput())
	require.NoError(t, err)

	got, err := f.service.Get(context.Background(), principal(), "acme", record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, got.ID)
	assert.Equal(t, []string{record.ID}, f.authorizer.sensitiveReads)
}

/*
TestGet_Denied verifies the authorizer's refusal propagates and no sensitive
read is noted.
*/
func TestGet_Denied(t *testing.T) {
	f := newFixture(false)

	record, err := f.service.SubmitPublic(context.Background(), "acme", validInput())
	require.NoError(t, err)

	_, err = f.service.Get(context.Background(), principal(), "acme", record.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	assert.Empty(t, f.authorizer.sensitiveReads)
}

/*
TestUpdateStatus walks a record through the workflow and rejects unknown
states.
*/
func TestUpdateStatus(t *testing.T) {
	f := newFixture(true)

	record, err := f.service.SubmitPublic(context.Background(), "acme", validInput())
	require.NoError(t, err)

	err = f.service.UpdateStatus(context.Background(), principal(), "acme", record.ID, referral.UpdateStatusInput{
		Status: referral.StatusInReview,
		Note:   "assigned to intake team",
	})
	require.NoError(t, err)
	assert.Equal(t, referral.StatusInReview, f.repo.records[record.ID].Status)

	err = f.service.UpdateStatus(context.Background(), principal(), "acme", record.ID, referral.UpdateStatusInput{
		Status: referral.Status("BOGUS"),
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

/*
TestDelete removes a record and surfaces NotFound afterwards.
*/
func TestDelete(t *testing.T) {
	f := newFixture(true)

	record, err := f.service.SubmitPublic(context.Background(), "acme", validInput())
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(context.Background(), principal(), "acme", record.ID))

	err = f.service.Delete(context.Background(), principal(), "acme", record.ID)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

/*
TestList verifies listing respects the authorizer and the status filter.
*/
func TestList(t *testing.T) {
	f := newFixture(true)

	first, err := f.service.SubmitPublic(context.Background(), "acme", validInput())
	require.NoError(t, err)
	_, err = f.service.SubmitPublic(context.Background(), "acme", validInput())
	require.NoError(t, err)

	require.NoError(t, f.service.UpdateStatus(context.Background(), principal(), "acme", first.ID, referral.UpdateStatusInput{
		Status: referral.StatusAccepted,
	}))

	all, total, err := f.service.List(context.Background(), principal(), "acme", referral.Filter{}, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, all, 2)

	accepted, total, err := f.service.List(context.Background(), principal(), "acme", referral.Filter{Status: referral.StatusAccepted}, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, accepted, 1)
	assert.Equal(t, first.ID, accepted[0].ID)

	_, _, err = f.service.List(context.Background(), principal(), "acme", referral.Filter{Status: referral.Status("BOGUS")}, 20, 0)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}
