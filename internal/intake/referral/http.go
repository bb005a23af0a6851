package referral

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	requestutil "github.com/taibuivan/refera/internal/platform/request"
	"github.com/taibuivan/refera/internal/platform/respond"
	"github.com/taibuivan/refera/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes mounts the unauthenticated intake surface.
func (handler *Handler) RegisterPublicRoutes(router chi.Router) {
	router.Post("/", handler.submit)
	router.Get("/{id}/status", handler.lookupStatus)
}

// RegisterRoutes mounts the authenticated workflow surface.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.list)
	router.Get("/{id}", handler.get)
	router.Patch("/{id}/status", handler.updateStatus)
	router.Delete("/{id}", handler.delete)
}

func (handler *Handler) submit(writer http.ResponseWriter, request *http.Request) {
	var input SubmitInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	referral, err := handler.service.SubmitPublic(request.Context(), requestutil.TenantScope(request), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// The submitter only needs the handle and starting state.
	respond.Created(writer, StatusView{
		ID:        referral.ID,
		Status:    referral.Status,
		CreatedAt: referral.CreatedAt,
		UpdatedAt: referral.UpdatedAt,
	})
}

func (handler *Handler) lookupStatus(writer http.ResponseWriter, request *http.Request) {
	view, err := handler.service.LookupStatus(request.Context(), requestutil.TenantScope(request), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, view)
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)
	filter := Filter{
		Status: Status(request.URL.Query().Get("status")),
		Query:  request.URL.Query().Get("q"),
	}

	referrals, total, err := handler.service.List(
		request.Context(), principal, requestutil.TenantScope(request),
		filter, paginationParams.Limit, paginationParams.Offset(),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, referrals, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	referral, err := handler.service.Get(request.Context(), principal, requestutil.TenantScope(request), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, referral)
}

func (handler *Handler) updateStatus(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input UpdateStatusInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.UpdateStatus(request.Context(), principal, requestutil.TenantScope(request), requestutil.ID(request, "id"), input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Delete(request.Context(), principal, requestutil.TenantScope(request), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
