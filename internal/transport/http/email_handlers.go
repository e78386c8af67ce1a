package http

import (
	"fmt"
	"net/http"
	"strconv"

	"moderation/internal/domain"
	"moderation/internal/dto"
	"moderation/internal/httpx"
	"moderation/internal/service"

	"github.com/go-chi/chi/v5"
)

func (h *handlers) intakeDraft(w http.ResponseWriter, r *http.Request) {
	var req dto.DraftCreateRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	d, err := h.moderation.Intake(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, dto.NewDraftResponse(d))
}

func (h *handlers) listPending(w http.ResponseWriter, r *http.Request) {
	skip, err := queryInt(r, "skip", 0, 0)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", service.DefaultQueueLimit, 1)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	drafts, err := h.moderation.Pending(r.Context(), skip, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.NewDraftListResponse(drafts))
}

func (h *handlers) listAll(w http.ResponseWriter, r *http.Request) {
	drafts, err := h.moderation.All(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.NewDraftListResponse(drafts))
}

func (h *handlers) setStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "email_id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var req dto.StatusUpdateRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	status, err := domain.ParseDraftStatus(req.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	d, err := h.moderation.SetStatus(r.Context(), id, status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.NewDraftResponse(d))
}

func (h *handlers) updateContent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "email_id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var req dto.DraftUpdateRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	d, err := h.moderation.UpdateContent(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.NewDraftResponse(d))
}

func (h *handlers) deleteDraft(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "email_id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	d, err := h.moderation.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.NewDraftResponse(d))
}

// pathID parses a positive integer URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidRequest, name)
	}
	return id, nil
}

func queryInt(r *http.Request, name string, def, min int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min {
		return 0, fmt.Errorf("%w: %s must be an integer >= %d", domain.ErrInvalidRequest, name, min)
	}
	return n, nil
}
