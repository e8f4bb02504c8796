// Package chi exposes the catalog API over HTTP using the chi router.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/catalogd/internal/domain"
	cataloguc "github.com/kailas-cloud/catalogd/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/catalogd/internal/usecase/health"
)

// Error response codes.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeNotFound         = "not_found"
	codeUnauthorized     = "unauthorized"
	codeForbidden        = "forbidden"
	codeIndexUnavailable = "index_unavailable"
	codeInternalError    = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers for the catalog API.
type Server struct {
	catalog       *cataloguc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(catalog *cataloguc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		catalog: catalog,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		validationHandler,
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrUnauthorized, http.StatusUnauthorized, codeUnauthorized),
		sentinelHandler(domain.ErrForbidden, http.StatusForbidden, codeForbidden),
		sentinelHandler(domain.ErrIndexUnavailable, http.StatusServiceUnavailable, codeIndexUnavailable),
	}
	return s
}

// Routes mounts all API routes on the router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/resources", func(r chi.Router) {
			r.Get("/", s.ListResources)
			r.Get("/suggest", s.SuggestResources)
			r.Post("/", s.CreateResource)

			r.Route("/{resourceID}", func(r chi.Router) {
				r.Get("/", s.GetResource)
				r.Put("/", s.UpdateResource)
				r.Delete("/", s.DeleteResource)

				r.Post("/images", s.AddImages)
				r.Delete("/images", s.DeleteImages)

				r.Route("/items", func(r chi.Router) {
					r.Get("/", s.ListItems)
					r.Post("/", s.CreateItem)
					r.Put("/{itemID}", s.UpdateItem)
					r.Delete("/{itemID}", s.DeleteItem)
				})

				r.Route("/comments", func(r chi.Router) {
					r.Get("/", s.ListComments)
					r.Post("/", s.CreateComment)
					r.Put("/{commentID}", s.UpdateComment)
					r.Delete("/{commentID}", s.DeleteComment)
				})
			})
		})

		r.Post("/admin/reindex", s.Reindex)
	})
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// Reindex handles POST /api/v1/admin/reindex.
func (s *Server) Reindex(w http.ResponseWriter, r *http.Request) {
	report, err := s.catalog.Reindex(r.Context(), actorFrom(r))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrValidation,
		domain.ErrUnauthorized,
		domain.ErrForbidden,
		domain.ErrIndexUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// validationHandler surfaces the specific validation message to the client.
func validationHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrValidation) {
		return false
	}
	writeError(w, http.StatusBadRequest, codeValidationFailed, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
