package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	mw "github.com/courseforge/courseforge/internal/api/middleware"
	"github.com/courseforge/courseforge/internal/domain"
	"github.com/courseforge/courseforge/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type TenantHandler struct {
	manager *service.TenantManager
}

func NewTenantHandler(manager *service.TenantManager) *TenantHandler {
	return &TenantHandler{manager: manager}
}

// Create handles POST /tenant.
func (h *TenantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var draft domain.Tenant
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tenant, err := h.manager.Create(r.Context(), &draft)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTenantCreate):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrDuplicateTenant):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to create tenant")
		}
		return
	}

	mw.TenantOperationCounter.WithLabelValues("create").Inc()
	writeJSON(w, http.StatusOK, tenant)
}

// List handles GET /tenant. Every query parameter except "operators"
// becomes a filter; "operators" carries store-level options as JSON.
func (h *TenantHandler) List(w http.ResponseWriter, r *http.Request) {
	query := domain.Query{}
	var opts *domain.RetrieveOptions

	for key, values := range r.URL.Query() {
		if len(values) == 0 {
			continue
		}
		if key == "operators" {
			opts = &domain.RetrieveOptions{}
			if err := json.Unmarshal([]byte(values[0]), opts); err != nil {
				writeError(w, http.StatusBadRequest, "invalid operators")
				return
			}
			continue
		}
		query[key] = values[0]
	}

	tenants, err := h.manager.Retrieve(r.Context(), query, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve tenants")
		return
	}

	writeJSON(w, http.StatusOK, tenants)
}

// Get handles GET /tenant/{id}. A missing tenant is reported as a literal
// JSON false with status 200, matching the exactly-one retrieval contract.
func (h *TenantHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "id param must be a valid tenant id",
		})
		return
	}

	tenant, err := h.manager.RetrieveOne(r.Context(), domain.Query{"_id": id}, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve tenant")
		return
	}
	if tenant == nil {
		writeJSON(w, http.StatusOK, false)
		return
	}

	writeJSON(w, http.StatusOK, tenant)
}

// Update handles PUT /tenant/{id}.
func (h *TenantHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "id param must be a valid tenant id")
		return
	}

	var delta domain.Document
	if err := json.NewDecoder(r.Body).Decode(&delta); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tenant, err := h.manager.Update(r.Context(), domain.Query{"_id": id}, delta)
	if err != nil {
		if errors.Is(err, service.ErrTenantNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update tenant")
		return
	}

	mw.TenantOperationCounter.WithLabelValues("update").Inc()
	writeJSON(w, http.StatusOK, tenant)
}

// Destroy handles DELETE /tenant/{id} (soft delete).
func (h *TenantHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "id param must be a valid tenant id")
		return
	}

	if err := h.manager.Destroy(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrTenantNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete tenant")
		return
	}

	mw.TenantOperationCounter.WithLabelValues("destroy").Inc()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "successfully deleted tenant!",
	})
}
