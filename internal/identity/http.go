package identity

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	requestutil "github.com/taibuivan/refera/internal/platform/request"
	"github.com/taibuivan/refera/internal/platform/respond"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/", handler.createSession)
	router.Get("/", handler.currentSession)
	router.Delete("/", handler.deleteSession)
}

func (handler *Handler) createSession(writer http.ResponseWriter, request *http.Request) {
	var input struct {
		IdentityToken string `json:"identity_token"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.service.CreateSession(request.Context(), input.IdentityToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, session)
}

func (handler *Handler) currentSession(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, PrincipalView{
		SubjectID:   principal.SubjectID(),
		Email:       principal.Email,
		DisplayName: principal.DisplayName,
	})
}

// deleteSession is idempotent: an anonymous or already-expired caller still
// gets 204.
func (handler *Handler) deleteSession(writer http.ResponseWriter, request *http.Request) {
	principal := requestutil.Principal(request)

	if err := handler.service.RevokeSession(request.Context(), principal); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
