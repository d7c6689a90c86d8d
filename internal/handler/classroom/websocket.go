package classroom

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/rehearsed/classroom/backend/internal/model/chat"
	"github.com/rehearsed/classroom/backend/internal/model/classroom"
	"github.com/rehearsed/classroom/backend/internal/model/lesson"
	"github.com/rehearsed/classroom/backend/internal/service/coaching"
	lessonsvc "github.com/rehearsed/classroom/backend/internal/service/lesson"
	"github.com/rehearsed/classroom/backend/internal/service/transcript"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 45 * time.Second
)

// WSHandler runs a live classroom over one websocket connection. Unlike
// the REST surface the server keeps the transcript, so the client only
// ever sends prompts.
type WSHandler struct {
	upgrader    websocket.Upgrader
	coordinator wsCoordinator
	coach       *coaching.Streamer
	summarizer  *lessonsvc.Summarizer
	transcripts *transcript.Service
}

type wsCoordinator interface {
	Respond(ctx context.Context, req classroom.PromptRequest) (*classroom.Result, error)
}

// NewWSHandler creates the websocket handler.
func NewWSHandler(coordinator wsCoordinator, coach *coaching.Streamer, summarizer *lessonsvc.Summarizer, transcripts *transcript.Service) *WSHandler {
	return &WSHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		coordinator: coordinator,
		coach:       coach,
		summarizer:  summarizer,
		transcripts: transcripts,
	}
}

// RegisterRoutes registers the websocket route.
func (h *WSHandler) RegisterRoutes(r chi.Router) {
	r.Get("/classroom/ws", h.handleClassroom)
}

// inboundFrame is one client message. Type selects which fields matter.
type inboundFrame struct {
	Type          string          `json:"type"`
	Prompt        string          `json:"prompt,omitempty"`
	LessonContext *lesson.Context `json:"lessonContext,omitempty"`
}

// outboundFrame is one server message.
type outboundFrame struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
}

// wsConn serializes writes; gorilla connections allow one writer at a
// time and the ping loop competes with the read loop's replies.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) writeJSON(frame outboundFrame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return c.conn.WriteJSON(frame)
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait))
}

func (h *WSHandler) handleClassroom(w http.ResponseWriter, r *http.Request) {
	rawConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	conn := &wsConn{conn: rawConn}
	defer rawConn.Close()

	session, err := h.transcripts.CreateSession(r.Context())
	if err != nil {
		conn.writeJSON(outboundFrame{Type: "error", Error: "failed to create session"})
		return
	}
	defer h.transcripts.Close(context.Background(), session.ID)

	if err := conn.writeJSON(outboundFrame{Type: "session", SessionID: session.ID}); err != nil {
		return
	}

	rawConn.SetReadDeadline(time.Now().Add(wsPongWait))
	rawConn.SetPongHandler(func(string) error {
		rawConn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	done := make(chan struct{})
	defer close(done)
	go h.pingLoop(conn, done)

	var lessonCtx *lesson.Context

	for {
		_, payload, err := rawConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] session=%s read failed: %v", session.ID, err)
			}
			return
		}
		// Frame handling blocks the read loop for the whole generation
		// round trip, so the deadline must restart from here rather than
		// from the last pong.
		rawConn.SetReadDeadline(time.Now().Add(wsPongWait))

		var frame inboundFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			conn.writeJSON(outboundFrame{Type: "error", Error: "invalid frame"})
			continue
		}

		switch frame.Type {
		case "config":
			lessonCtx = frame.LessonContext
			conn.writeJSON(outboundFrame{Type: "config_ack"})
		case "ask":
			h.handleAskFrame(r.Context(), conn, session.ID, frame.Prompt, lessonCtx)
		case "end":
			h.handleEndFrame(r.Context(), conn, session.ID, lessonCtx)
		default:
			conn.writeJSON(outboundFrame{Type: "error", Error: "unknown frame type"})
		}
	}
}

func (h *WSHandler) pingLoop(conn *wsConn, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := conn.ping(); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// handleAskFrame runs one prompt against the roster using the server-held
// transcript as history, then relays coaching events as frames.
func (h *WSHandler) handleAskFrame(ctx context.Context, conn *wsConn, sessionID, prompt string, lessonCtx *lesson.Context) {
	history, err := h.transcripts.Transcript(ctx, sessionID)
	if err != nil {
		conn.writeJSON(outboundFrame{Type: "error", Error: "session expired"})
		return
	}

	req := classroom.PromptRequest{Prompt: prompt, LessonContext: lessonCtx, History: history}
	result, err := h.coordinator.Respond(ctx, req)
	if err != nil {
		conn.writeJSON(outboundFrame{Type: "error", Error: err.Error()})
		return
	}

	if err := h.transcripts.Append(ctx, sessionID, chat.ConversationMessage{Speaker: "Teacher", Message: prompt}); err != nil {
		conn.writeJSON(outboundFrame{Type: "error", Error: "session expired"})
		return
	}
	for _, s := range result.Students {
		if s.Unavailable {
			continue
		}
		if err := h.transcripts.Append(ctx, sessionID, chat.ConversationMessage{Speaker: s.PersonaName, Message: s.Response}); err != nil {
			conn.writeJSON(outboundFrame{Type: "error", Error: "session expired"})
			return
		}
	}

	if err := conn.writeJSON(outboundFrame{Type: "students_response", Data: result}); err != nil {
		return
	}

	for ev := range h.coach.Stream(ctx, coaching.Request{
		Prompt:        prompt,
		Students:      result.Students,
		LessonContext: lessonCtx,
		History:       history,
	}) {
		var frame outboundFrame
		switch ev.Type {
		case coaching.EventInsight:
			frame = outboundFrame{Type: "insight", Data: ev.Insight}
		case coaching.EventSummary:
			frame = outboundFrame{Type: "summary", Data: map[string]string{"overallObservation": ev.Observation}}
		case coaching.EventError:
			frame = outboundFrame{Type: "error", Error: ev.Err}
		}
		if err := conn.writeJSON(frame); err != nil {
			return
		}
	}
}

// handleEndFrame summarizes the server-held transcript into the session
// report.
func (h *WSHandler) handleEndFrame(ctx context.Context, conn *wsConn, sessionID string, lessonCtx *lesson.Context) {
	history, err := h.transcripts.Transcript(ctx, sessionID)
	if err != nil {
		conn.writeJSON(outboundFrame{Type: "error", Error: "session expired"})
		return
	}

	report, err := h.summarizer.Summarize(ctx, lessonCtx, history)
	if err != nil {
		conn.writeJSON(outboundFrame{Type: "error", Error: "session summary failed"})
		return
	}

	conn.writeJSON(outboundFrame{Type: "report", Data: report})
}
