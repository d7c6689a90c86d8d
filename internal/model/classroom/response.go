package classroom

import (
	"github.com/rehearsed/classroom/backend/internal/model/chat"
	"github.com/rehearsed/classroom/backend/internal/model/lesson"
)

// PromptRequest is a teacher prompt aimed at the whole roster. Context is
// optional; when absent, personas answer under the configured default
// grade assumption.
type PromptRequest struct {
	Prompt        string                     `json:"prompt"`
	LessonContext *lesson.Context            `json:"lessonContext,omitempty"`
	History       []chat.ConversationMessage `json:"history,omitempty"`
}

// PersonaResponse is one student's reaction to a teacher prompt. Response
// is always populated: even a student who would not volunteer has
// something to say if called on. A failed generation call degrades into
// an "unavailable" entry rather than disappearing from the roster.
type PersonaResponse struct {
	PersonaID      string  `json:"personaId"`
	PersonaName    string  `json:"personaName"`
	WouldRaiseHand bool    `json:"wouldRaiseHand"`
	Confidence     float64 `json:"confidence"`
	Thinking       string  `json:"thinking"`
	Response       string  `json:"response"`
	AudioBase64    string  `json:"audioBase64,omitempty"`
	Unavailable    bool    `json:"unavailable,omitempty"`
}

// Result aggregates the whole roster's reactions. Students is always one
// entry per catalog persona, in canonical order. Summary is recomputed
// from Students on every call.
type Result struct {
	Students []PersonaResponse `json:"students"`
	Summary  string            `json:"summary"`
}
