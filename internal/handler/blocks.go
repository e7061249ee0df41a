package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"atelier/internal/service"
)

// GetBlock returns a single block with its contents
func (h *Handler) GetBlock(w http.ResponseWriter, r *http.Request) {
	block, err := h.graph.GetBlock(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to get block", err)
		return
	}

	h.writeJSON(w, block, http.StatusOK)
}

// CreateBlock creates a new block
func (h *Handler) CreateBlock(w http.ResponseWriter, r *http.Request) {
	var req service.BlockRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	block, err := h.graph.CreateBlock(r.Context(), &req)
	if err != nil {
		h.fail(w, r, "Failed to create block", err)
		return
	}

	h.writeJSON(w, block, http.StatusCreated)
}

// UpdateBlock updates an existing block
func (h *Handler) UpdateBlock(w http.ResponseWriter, r *http.Request) {
	var update service.BlockUpdate
	if !h.decode(w, r, &update, false) {
		return
	}

	block, err := h.graph.UpdateBlock(r.Context(), chi.URLParam(r, "id"), &update)
	if err != nil {
		h.fail(w, r, "Failed to update block", err)
		return
	}

	h.writeJSON(w, block, http.StatusOK)
}

// DeleteBlock deletes a block
func (h *Handler) DeleteBlock(w http.ResponseWriter, r *http.Request) {
	if err := h.graph.DeleteBlock(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "Failed to delete block", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddContent appends a content item to a block
func (h *Handler) AddContent(w http.ResponseWriter, r *http.Request) {
	var req service.ContentRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	content, err := h.graph.AddContent(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.fail(w, r, "Failed to add content", err)
		return
	}

	h.writeJSON(w, content, http.StatusCreated)
}

// DeleteContent removes a content item from a block
func (h *Handler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	if err := h.graph.DeleteContent(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "contentID")); err != nil {
		h.fail(w, r, "Failed to delete content", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
