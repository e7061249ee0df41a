package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"atelier/internal/codec"
	"atelier/internal/service"
)

// ListSpaces returns all spaces
func (h *Handler) ListSpaces(w http.ResponseWriter, r *http.Request) {
	spaces, err := h.graph.ListSpaces(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list spaces", err)
		return
	}

	h.writeJSON(w, spaces, http.StatusOK)
}

// GetSpace returns a single space
func (h *Handler) GetSpace(w http.ResponseWriter, r *http.Request) {
	space, err := h.graph.GetSpace(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to get space", err)
		return
	}

	h.writeJSON(w, space, http.StatusOK)
}

// CreateSpace creates a new space
func (h *Handler) CreateSpace(w http.ResponseWriter, r *http.Request) {
	var req service.SpaceRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	space, err := h.graph.CreateSpace(r.Context(), &req)
	if err != nil {
		h.fail(w, r, "Failed to create space", err)
		return
	}

	h.writeJSON(w, space, http.StatusCreated)
}

// UpdateSpace replaces name, theme and color of a space
func (h *Handler) UpdateSpace(w http.ResponseWriter, r *http.Request) {
	var req service.SpaceRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	space, err := h.graph.UpdateSpace(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.fail(w, r, "Failed to update space", err)
		return
	}

	h.writeJSON(w, space, http.StatusOK)
}

// DeleteSpace deletes a space with everything in it
func (h *Handler) DeleteSpace(w http.ResponseWriter, r *http.Request) {
	if err := h.graph.DeleteSpace(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "Failed to delete space", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListSpaceBlocks returns the blocks of a space
func (h *Handler) ListSpaceBlocks(w http.ResponseWriter, r *http.Request) {
	blocks, err := h.graph.ListBlocks(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to list blocks", err)
		return
	}

	h.writeJSON(w, blocks, http.StatusOK)
}

// ListSpaceLinks returns the links touching a space
func (h *Handler) ListSpaceLinks(w http.ResponseWriter, r *http.Request) {
	links, err := h.graph.ListLinks(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to list links", err)
		return
	}

	h.writeJSON(w, links, http.StatusOK)
}

// RelayoutSpace runs the local force-directed layout of a space
func (h *Handler) RelayoutSpace(w http.ResponseWriter, r *http.Request) {
	var opts service.RunOptions
	if !h.decode(w, r, &opts, true) {
		return
	}

	outcome, err := h.layout.RelayoutSpace(r.Context(), chi.URLParam(r, "id"), opts)
	if err != nil {
		h.fail(w, r, "Failed to rearrange space", err)
		return
	}

	h.writeJSON(w, outcome, http.StatusOK)
}

// ExportSpace downloads a space as JSON or YAML
func (h *Handler) ExportSpace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	format := r.URL.Query().Get("format")

	c, err := codec.ForFormat(format)
	if err != nil {
		h.writeError(w, "Unsupported format", err.Error(), http.StatusBadRequest)
		return
	}

	// Buffer so a failure can still produce an error response
	var buf bytes.Buffer
	if err := h.graph.Export(r.Context(), id, &buf, c.Format()); err != nil {
		h.fail(w, r, "Failed to export space", err)
		return
	}

	w.Header().Set("Content-Type", c.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=space-%s.%s", id, c.Format()))
	w.Write(buf.Bytes())
}

// ImportSpace merges a JSON or YAML fragment into a space
func (h *Handler) ImportSpace(w http.ResponseWriter, r *http.Request) {
	result, err := h.graph.Import(r.Context(), chi.URLParam(r, "id"), r.Body, r.URL.Query().Get("format"))
	if err != nil {
		h.fail(w, r, "Failed to import fragment", err)
		return
	}

	h.writeJSON(w, result, http.StatusOK)
}
