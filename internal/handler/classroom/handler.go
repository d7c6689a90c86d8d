package classroom

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rehearsed/classroom/backend/internal/model/classroom"
	classroomsvc "github.com/rehearsed/classroom/backend/internal/service/classroom"
	"github.com/rehearsed/classroom/backend/internal/service/coaching"
	speechsvc "github.com/rehearsed/classroom/backend/internal/service/speech"
	"github.com/rehearsed/classroom/backend/pkg/utils"
)

// Handler serves the classroom fan-out surface: every persona reacting to
// one teacher prompt, with optional streamed coaching and optional audio.
type Handler struct {
	coordinator *classroomsvc.Coordinator
	coach       *coaching.Streamer
	speech      *speechsvc.Service
}

// New creates the classroom handler. speech may be nil when synthesis is
// not configured; the audio route then returns plain responses.
func New(coordinator *classroomsvc.Coordinator, coach *coaching.Streamer, speech *speechsvc.Service) *Handler {
	return &Handler{coordinator: coordinator, coach: coach, speech: speech}
}

// RegisterRoutes registers classroom routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/ask", h.handleAsk)
	r.Post("/ask/with-audio", h.handleAskWithAudio)
}

// handleAsk fans the prompt out to the full roster. With
// ?streamFeedback=true the response becomes an SSE stream carrying the
// student responses first, then incremental coaching events.
func (h *Handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req classroom.PromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if r.URL.Query().Get("streamFeedback") == "true" {
		h.streamAsk(w, r, req, false)
		return
	}

	result, err := h.coordinator.Respond(r.Context(), req)
	if err != nil {
		respondClassroomError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}

// handleAskWithAudio behaves like handleAsk, streaming mode included, but
// attaches synthesized speech to each available response before replying.
func (h *Handler) handleAskWithAudio(w http.ResponseWriter, r *http.Request) {
	var req classroom.PromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if r.URL.Query().Get("streamFeedback") == "true" {
		h.streamAsk(w, r, req, true)
		return
	}

	result, err := h.coordinator.Respond(r.Context(), req)
	if err != nil {
		respondClassroomError(w, err)
		return
	}

	if h.speech != nil {
		result.Students = h.speech.SynthesizeResponses(r.Context(), result.Students)
	}

	utils.RespondJSON(w, http.StatusOK, result)
}

// streamAsk emits the roster result and then relays coaching events until
// the coach's terminal event. The event order is fixed: students_response,
// zero or more insight, exactly one of summary or error, then done. With
// withAudio the batch result carries synthesized speech before it is sent.
func (h *Handler) streamAsk(w http.ResponseWriter, r *http.Request, req classroom.PromptRequest, withAudio bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	result, err := h.coordinator.Respond(r.Context(), req)
	if err != nil {
		respondClassroomError(w, err)
		return
	}

	if withAudio && h.speech != nil {
		result.Students = h.speech.SynthesizeResponses(r.Context(), result.Students)
	}

	utils.SetupSSEHeaders(w)
	utils.SendSSEEvent(w, flusher, "students_response", result)

	events := h.coach.Stream(r.Context(), coaching.Request{
		Prompt:        req.Prompt,
		Students:      result.Students,
		LessonContext: req.LessonContext,
		History:       req.History,
	})

	for ev := range events {
		switch ev.Type {
		case coaching.EventInsight:
			utils.SendSSEEvent(w, flusher, "insight", ev.Insight)
		case coaching.EventSummary:
			utils.SendSSEEvent(w, flusher, "summary", map[string]string{"overallObservation": ev.Observation})
		case coaching.EventError:
			utils.SendSSEEvent(w, flusher, "error", map[string]string{"error": ev.Err})
		}
	}

	utils.SendSSEEvent(w, flusher, "done", map[string]bool{"done": true})
}

func respondClassroomError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, classroomsvc.ErrPromptRequired):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, classroomsvc.ErrAllPersonasFailed):
		log.Printf("[classroom] %v", err)
		utils.RespondError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, classroomsvc.ErrNoPersonas):
		log.Printf("[classroom] %v", err)
		utils.RespondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		log.Printf("[classroom] unexpected error: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
