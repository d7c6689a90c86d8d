package lesson

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rehearsed/classroom/backend/internal/model/chat"
	"github.com/rehearsed/classroom/backend/internal/model/lesson"
	lessonsvc "github.com/rehearsed/classroom/backend/internal/service/lesson"
	"github.com/rehearsed/classroom/backend/pkg/utils"
)

// Handler serves lesson setup and end-of-session analysis.
type Handler struct {
	builder    *lessonsvc.Builder
	summarizer *lessonsvc.Summarizer
}

// New creates the lesson handler.
func New(builder *lessonsvc.Builder, summarizer *lessonsvc.Summarizer) *Handler {
	return &Handler{builder: builder, summarizer: summarizer}
}

// RegisterRoutes registers lesson routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/lesson/setup", h.handleSetup)
	r.Post("/lesson/end", h.handleEnd)
}

// handleSetup analyzes raw lesson material into the session context the
// caller round-trips on every later request.
func (h *Handler) handleSetup(w http.ResponseWriter, r *http.Request) {
	var req lesson.SetupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lessonCtx, err := h.builder.Build(r.Context(), req)
	if err != nil {
		respondLessonError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{"lessonContext": lessonCtx})
}

type endRequest struct {
	LessonContext *lesson.Context            `json:"lessonContext,omitempty"`
	History       []chat.ConversationMessage `json:"history"`
}

// handleEnd produces the comprehensive session report from the full
// transcript.
func (h *Handler) handleEnd(w http.ResponseWriter, r *http.Request) {
	var req endRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.summarizer.Summarize(r.Context(), req.LessonContext, req.History)
	if err != nil {
		respondLessonError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{"report": report})
}

func respondLessonError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lessonsvc.ErrInvalidInput):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, lessonsvc.ErrAnalysisFailure):
		log.Printf("[lesson] analysis failed: %v", err)
		utils.RespondError(w, http.StatusBadGateway, "lesson analysis failed")
	default:
		log.Printf("[lesson] unexpected error: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
