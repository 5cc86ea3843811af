package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/theater-billing/internal/common"
	"github.com/noah-isme/theater-billing/internal/obs"
	"github.com/noah-isme/theater-billing/internal/theater"
)

// Handler exposes play catalog endpoints.
type Handler struct {
	store Store
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Store Store
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{store: cfg.Store}
}

// List handles GET /api/v1/plays.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "catalog store not configured", nil)
		return
	}
	plays, err := h.store.List(r.Context())
	if err != nil {
		common.WriteError(w, common.FromDomain(err))
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": plays})
}

// Get handles GET /api/v1/plays/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "catalog store not configured", nil)
		return
	}
	id := chi.URLParam(r, "id")
	play, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": play})
}

// Put handles PUT /api/v1/plays/{id}.
func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "catalog store not configured", nil)
		return
	}
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		common.JSONError(w, http.StatusBadRequest, common.CodeInvalidRequest, "play id required", nil)
		return
	}
	var play theater.Play
	if err := json.NewDecoder(r.Body).Decode(&play); err != nil {
		var typeErr *theater.UnknownPlayTypeError
		if errors.As(err, &typeErr) {
			common.WriteError(w, common.FromDomain(err))
			return
		}
		common.WriteError(w, common.NewAppError(common.CodeInvalidRequest, "invalid json", http.StatusBadRequest, err))
		return
	}
	if err := (theater.Plays{id: play}).Validate(); err != nil {
		common.WriteError(w, common.FromDomain(err))
		return
	}
	err := h.store.Put(r.Context(), id, play)
	obs.ObserveCatalogWrite("put", err)
	if err != nil {
		common.WriteError(w, common.FromDomain(err))
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": play})
}

// Delete handles DELETE /api/v1/plays/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "catalog store not configured", nil)
		return
	}
	err := h.store.Delete(r.Context(), chi.URLParam(r, "id"))
	obs.ObserveCatalogWrite("delete", err)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeError reports catalog misses on direct lookups as 404 rather than 422.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, theater.ErrUnknownPlay) {
		common.WriteError(w, common.NewAppError(common.CodeNotFound, err.Error(), http.StatusNotFound, err))
		return
	}
	common.WriteError(w, common.FromDomain(err))
}
