package chi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	cataloguc "github.com/kailas-cloud/catalogd/internal/usecase/catalog"
)

// ListResources handles GET /api/v1/resources.
func (s *Server) ListResources(w http.ResponseWriter, r *http.Request) {
	q, err := filterQueryFromParams(r.URL.Query())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	page, err := s.catalog.Filter(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// SuggestResources handles GET /api/v1/resources/suggest.
func (s *Server) SuggestResources(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "limit must be an integer")
			return
		}
		limit = v
	}

	out, err := s.catalog.Suggest(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

// GetResource handles GET /api/v1/resources/{resourceID}.
func (s *Server) GetResource(w http.ResponseWriter, r *http.Request) {
	res, err := s.catalog.Get(r.Context(), chi.URLParam(r, "resourceID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// CreateResource handles POST /api/v1/resources.
func (s *Server) CreateResource(w http.ResponseWriter, r *http.Request) {
	var in cataloguc.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	res, err := s.catalog.Create(r.Context(), actorFrom(r), in)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.Header().Set("Location", "/api/v1/resources/"+res.ID)
	writeJSON(w, http.StatusCreated, res)
}

// UpdateResource handles PUT /api/v1/resources/{resourceID}.
func (s *Server) UpdateResource(w http.ResponseWriter, r *http.Request) {
	var in cataloguc.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	res, err := s.catalog.Update(r.Context(), actorFrom(r), chi.URLParam(r, "resourceID"), in)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// DeleteResource handles DELETE /api/v1/resources/{resourceID}.
func (s *Server) DeleteResource(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Delete(r.Context(), actorFrom(r), chi.URLParam(r, "resourceID")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddImages handles POST /api/v1/resources/{resourceID}/images.
func (s *Server) AddImages(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Images []cataloguc.ImageInput `json:"images"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	res, err := s.catalog.AddImages(r.Context(), actorFrom(r), chi.URLParam(r, "resourceID"), req.Images)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// DeleteImages handles DELETE /api/v1/resources/{resourceID}/images.
func (s *Server) DeleteImages(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ImageIDs []uint `json:"image_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	err := s.catalog.DeleteImages(r.Context(), actorFrom(r), chi.URLParam(r, "resourceID"), req.ImageIDs)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListItems handles GET /api/v1/resources/{resourceID}/items.
func (s *Server) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.catalog.Items(r.Context(), chi.URLParam(r, "resourceID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// CreateItem handles POST /api/v1/resources/{resourceID}/items.
func (s *Server) CreateItem(w http.ResponseWriter, r *http.Request) {
	var in cataloguc.ItemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	it, err := s.catalog.CreateItem(r.Context(), actorFrom(r), chi.URLParam(r, "resourceID"), in)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

// UpdateItem handles PUT /api/v1/resources/{resourceID}/items/{itemID}.
func (s *Server) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var in cataloguc.ItemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	it, err := s.catalog.UpdateItem(r.Context(), actorFrom(r),
		chi.URLParam(r, "resourceID"), chi.URLParam(r, "itemID"), in)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// DeleteItem handles DELETE /api/v1/resources/{resourceID}/items/{itemID}.
func (s *Server) DeleteItem(w http.ResponseWriter, r *http.Request) {
	err := s.catalog.DeleteItem(r.Context(), actorFrom(r),
		chi.URLParam(r, "resourceID"), chi.URLParam(r, "itemID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListComments handles GET /api/v1/resources/{resourceID}/comments.
func (s *Server) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := s.catalog.Comments(r.Context(), chi.URLParam(r, "resourceID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": comments})
}

type commentRequest struct {
	Message string `json:"message"`
}

// CreateComment handles POST /api/v1/resources/{resourceID}/comments.
func (s *Server) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	c, err := s.catalog.CreateComment(r.Context(), actorFrom(r), chi.URLParam(r, "resourceID"), req.Message)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// UpdateComment handles PUT /api/v1/resources/{resourceID}/comments/{commentID}.
func (s *Server) UpdateComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	c, err := s.catalog.UpdateComment(r.Context(), actorFrom(r),
		chi.URLParam(r, "resourceID"), chi.URLParam(r, "commentID"), req.Message)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteComment handles DELETE /api/v1/resources/{resourceID}/comments/{commentID}.
func (s *Server) DeleteComment(w http.ResponseWriter, r *http.Request) {
	err := s.catalog.DeleteComment(r.Context(), actorFrom(r),
		chi.URLParam(r, "resourceID"), chi.URLParam(r, "commentID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
