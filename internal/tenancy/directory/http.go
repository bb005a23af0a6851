package directory

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/taibuivan/refera/internal/platform/apperr"
	requestutil "github.com/taibuivan/refera/internal/platform/request"
	"github.com/taibuivan/refera/internal/platform/respond"
	"github.com/taibuivan/refera/internal/platform/sec"
)

// MembershipLister reports the agencies a verified email belongs to.
type MembershipLister interface {
	MembershipsFor(ctx context.Context, email string) []*Agency
}

// Guard is the slice of the record authorizer the directory handler needs.
type Guard interface {
	IsPlatformAdmin(principal *sec.SessionClaims) bool
	AuthorizeWrite(ctx context.Context, principal *sec.SessionClaims, tenantID string) error
}

type Handler struct {
	service     *Service
	memberships MembershipLister
	guard       Guard
}

func NewHandler(service *Service, memberships MembershipLister, guard Guard) *Handler {
	return &Handler{service: service, memberships: memberships, guard: guard}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	// Authenticated
	router.Get("/mine", handler.listMine)
	router.Patch("/{id}/slug", handler.updateSlug)
	router.Put("/{id}/access-lists", handler.updateAccessLists)

	// Platform admin only
	router.Post("/", handler.provision)
}

// CurrentAgency is the public branding endpoint for the scoped tenant. It is
// mounted outside the /agencies group so intake forms can fetch it with no
// session at all.
func (handler *Handler) CurrentAgency(writer http.ResponseWriter, request *http.Request) {
	tenantID := requestutil.TenantScope(request)

	agency := handler.service.Resolve(request.Context(), tenantID)
	respond.OK(writer, agency.Public())
}

func (handler *Handler) listMine(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	agencies := handler.memberships.MembershipsFor(request.Context(), principal.Email)

	profiles := make([]PublicProfile, 0, len(agencies))
	for _, agency := range agencies {
		profiles = append(profiles, agency.Public())
	}
	respond.OK(writer, profiles)
}

func (handler *Handler) provision(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if !handler.guard.IsPlatformAdmin(principal) {
		respond.Error(writer, request, apperr.Forbidden("Platform administrator access required"))
		return
	}

	var input ProvisionInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	agency, err := handler.service.Provision(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, agency)
}

func (handler *Handler) updateSlug(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	agencyID := requestutil.ID(request, "id")
	if err := handler.guard.AuthorizeWrite(request.Context(), principal, agencyID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		Slug string `json:"slug"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.UpdateSlug(request.Context(), agencyID, input.Slug); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) updateAccessLists(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	agencyID := requestutil.ID(request, "id")
	if err := handler.guard.AuthorizeWrite(request.Context(), principal, agencyID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		AuthorizedEmails  []string `json:"authorized_emails"`
		AuthorizedDomains []string `json:"authorized_domains"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.UpdateAccessLists(request.Context(), agencyID, input.AuthorizedEmails, input.AuthorizedDomains); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
