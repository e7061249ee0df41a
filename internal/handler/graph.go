package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"atelier/internal/domain"
	"atelier/internal/service"
)

// GetGraph returns the global cross-space view.
//
// Query filters: spaces, link_types, validations, colors, shapes (comma
// separated), min_weight, inter_space_only.
func (h *Handler) GetGraph(w http.ResponseWriter, r *http.Request) {
	filter, err := parseGraphFilter(r.URL.Query())
	if err != nil {
		h.writeError(w, "Invalid filter", err.Error(), http.StatusBadRequest)
		return
	}

	graph, err := h.graph.GlobalGraph(r.Context(), filter)
	if err != nil {
		h.fail(w, r, "Failed to get graph", err)
		return
	}

	h.writeJSON(w, graph, http.StatusOK)
}

// RelayoutGlobal runs the global force-directed layout over every block
func (h *Handler) RelayoutGlobal(w http.ResponseWriter, r *http.Request) {
	var opts service.RunOptions
	if !h.decode(w, r, &opts, true) {
		return
	}

	outcome, err := h.layout.RelayoutGlobal(r.Context(), opts)
	if err != nil {
		h.fail(w, r, "Failed to position global graph", err)
		return
	}

	h.writeJSON(w, outcome, http.StatusOK)
}

func parseGraphFilter(q url.Values) (domain.GraphFilter, error) {
	filter := domain.GraphFilter{
		SpaceIDs:    splitList(q.Get("spaces")),
		LinkTypes:   splitTyped[domain.LinkType](q.Get("link_types")),
		Validations: splitTyped[domain.Validation](q.Get("validations")),
		Colors:      splitTyped[domain.Color](q.Get("colors")),
		Shapes:      splitTyped[domain.Shape](q.Get("shapes")),
	}

	if v := q.Get("min_weight"); v != "" {
		w, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, err
		}
		filter.MinWeight = w
	}
	if v := q.Get("inter_space_only"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter, err
		}
		filter.InterSpaceOnly = b
	}
	return filter, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func splitTyped[T ~string](s string) []T {
	parts := splitList(s)
	if parts == nil {
		return nil
	}
	out := make([]T, len(parts))
	for i, p := range parts {
		out[i] = T(p)
	}
	return out
}
