package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"atelier/internal/service"
)

// GetLink returns a single link
func (h *Handler) GetLink(w http.ResponseWriter, r *http.Request) {
	link, err := h.graph.GetLink(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to get link", err)
		return
	}

	h.writeJSON(w, link, http.StatusOK)
}

// CreateLink connects two blocks
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req service.LinkRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	link, err := h.graph.CreateLink(r.Context(), &req)
	if err != nil {
		h.fail(w, r, "Failed to create link", err)
		return
	}

	h.writeJSON(w, link, http.StatusCreated)
}

// UpdateLink updates type, weight or validation of a link
func (h *Handler) UpdateLink(w http.ResponseWriter, r *http.Request) {
	var update service.LinkUpdate
	if !h.decode(w, r, &update, false) {
		return
	}

	link, err := h.graph.UpdateLink(r.Context(), chi.URLParam(r, "id"), &update)
	if err != nil {
		h.fail(w, r, "Failed to update link", err)
		return
	}

	h.writeJSON(w, link, http.StatusOK)
}

// DeleteLink deletes a link
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	if err := h.graph.DeleteLink(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "Failed to delete link", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
