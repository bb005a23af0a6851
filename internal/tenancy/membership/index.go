// Copyright (c) 2026 Refera. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package membership

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/taibuivan/refera/internal/tenancy/directory"
)

// publicDomains are consumer mail providers that never grant domain-based
// membership. A tenant listing "gmail.com" would otherwise admit every Gmail
// user on the planet. Exact-email and owner signals still apply to these
// addresses.
var publicDomains = map[string]struct{}{
	"gmail.com":      {},
	"googlemail.com": {},
	"yahoo.com":      {},
	"hotmail.com":    {},
	"outlook.com":    {},
	"live.com":       {},
	"msn.com":        {},
	"icloud.com":     {},
	"me.com":         {},
	"aol.com":        {},
	"protonmail.com": {},
	"proton.me":      {},
	"gmx.com":        {},
	"mail.com":       {},
	"zoho.com":       {},
}

// IsPublicDomain reports whether domain is on the consumer-provider denylist.
func IsPublicDomain(domain string) bool {
	_, denied := publicDomains[strings.ToLower(strings.TrimSpace(domain))]
	return denied
}

// # Membership Index

// Index answers "which agencies does this email belong to" by unioning the
// three membership signals.
type Index struct {
	repo   Repository
	logger *slog.Logger
}

// NewIndex constructs a new membership [Index].
func NewIndex(repo Repository, logger *slog.Logger) *Index {
	return &Index{repo: repo, logger: logger}
}

/*
MembershipsFor returns every agency the email belongs to.

Description: The three signal queries run concurrently; results merge in a
fixed order (domain, exact email, owner) and deduplicate by agency id, so the
output is deterministic regardless of query completion order. A failing
signal is logged and skipped — the surviving signals still produce a partial
result. Failure can only under-grant, never over-grant, so degrading beats
locking every member out.

Parameters:
  - ctx: context.Context
  - email: string (verified address; normalized here before querying)

Returns:
  - []*directory.Agency: Deduplicated memberships, empty when none
*/
func (index *Index) MembershipsFor(ctx context.Context, email string) []*directory.Agency {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" || !strings.Contains(normalized, "@") {
		return []*directory.Agency{}
	}

	domain := normalized[strings.LastIndex(normalized, "@")+1:]

	var (
		waitGroup sync.WaitGroup
		byDomain  []*directory.Agency
		byEmail   []*directory.Agency
		byOwner   []*directory.Agency
	)

	// Denylist check happens before the query is even issued.
	if domain != "" && !IsPublicDomain(domain) {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			byDomain = index.query(ctx, "domain", domain, index.repo.FindByAuthorizedDomain)
		}()
	}

	waitGroup.Add(1)
	go func() {
		defer waitGroup.Done()
		byEmail = index.query(ctx, "email", normalized, index.repo.FindByAuthorizedEmail)
	}()

	waitGroup.Add(1)
	go func() {
		defer waitGroup.Done()
		byOwner = index.query(ctx, "owner", normalized, index.repo.FindByOwnerEmail)
	}()

	waitGroup.Wait()

	seen := make(map[string]struct{})
	merged := make([]*directory.Agency, 0, len(byDomain)+len(byEmail)+len(byOwner))

	for _, signal := range [][]*directory.Agency{byDomain, byEmail, byOwner} {
		for _, agency := range signal {
			if _, duplicate := seen[agency.ID]; duplicate {
				continue
			}
			seen[agency.ID] = struct{}{}
			merged = append(merged, agency)
		}
	}

	return merged
}

// IsMember reports whether the email belongs to the given agency.
func (index *Index) IsMember(ctx context.Context, email, agencyID string) bool {
	for _, agency := range index.MembershipsFor(ctx, email) {
		if agency.ID == agencyID {
			return true
		}
	}
	return false
}

// query runs one signal lookup, degrading a failure to an empty result.
func (index *Index) query(
	ctx context.Context,
	signal, value string,
	lookup func(context.Context, string) ([]*directory.Agency, error),
) []*directory.Agency {
	agencies, err := lookup(ctx, value)
	if err != nil {
		index.logger.Error("membership_signal_failed",
			slog.String("signal", signal),
			slog.Any("error", err),
		)
		return nil
	}
	return agencies
}
