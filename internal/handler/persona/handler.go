package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rehearsed/classroom/backend/internal/model/persona"
	"github.com/rehearsed/classroom/backend/pkg/utils"
)

// Handler serves the persona roster.
type Handler struct {
	personas persona.Store
}

// New creates the persona handler.
func New(personas persona.Store) *Handler {
	return &Handler{personas: personas}
}

// RegisterRoutes registers persona routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personas", h.handleListPersonas)
}

type personaSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Style       string `json:"style"`
	Description string `json:"description"`
}

// handleListPersonas lists the roster in canonical order.
func (h *Handler) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	roster := h.personas.List()
	out := make([]personaSummary, 0, len(roster))
	for _, p := range roster {
		out = append(out, personaSummary{
			ID:          p.ID,
			Name:        p.Name,
			Style:       p.LearningStyle,
			Description: p.Description,
		})
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"students": out})
}
