package coaching

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"github.com/rehearsed/classroom/backend/internal/model/chat"
	"github.com/rehearsed/classroom/backend/internal/model/classroom"
	"github.com/rehearsed/classroom/backend/internal/model/feedback"
	"github.com/rehearsed/classroom/backend/internal/model/lesson"
	"github.com/rehearsed/classroom/backend/internal/service/ai"
)

// EventType discriminates coaching stream events.
type EventType string

const (
	// EventInsight carries one discrete coaching observation.
	EventInsight EventType = "insight"
	// EventSummary terminates a successful stream, exactly once.
	EventSummary EventType = "summary"
	// EventError terminates a failed stream in place of the summary.
	// Insights already emitted before the failure remain valid.
	EventError EventType = "error"
)

// Event is one item on the coaching stream.
type Event struct {
	Type        EventType         `json:"type"`
	Insight     *feedback.Insight `json:"insight,omitempty"`
	Observation string            `json:"observation,omitempty"`
	Err         string            `json:"error,omitempty"`
}

// Request carries everything the coach needs to analyze one interaction.
type Request struct {
	Prompt        string
	Students      []classroom.PersonaResponse
	LessonContext *lesson.Context
	History       []chat.ConversationMessage
}

// Streamer turns the model's token stream into discrete insight events.
// The model emits newline-delimited JSON; each completed line becomes one
// event, so insights reach the consumer before the stream finishes.
type Streamer struct {
	gen ai.Generator
}

// NewStreamer wires the coaching stream.
func NewStreamer(gen ai.Generator) *Streamer {
	return &Streamer{gen: gen}
}

// Stream starts coaching analysis and returns a channel of events. The
// channel is closed after the terminal event. Cancelling ctx abandons
// in-flight generation without raising; events already delivered stand.
func (s *Streamer) Stream(ctx context.Context, req Request) <-chan Event {
	ch := make(chan Event)
	go s.run(ctx, req, ch)
	return ch
}

func (s *Streamer) run(ctx context.Context, req Request, ch chan<- Event) {
	defer close(ch)

	query := ai.BuildCoachingQuery(req.Prompt, req.Students, req.LessonContext, req.History)

	stream, err := s.gen.Stream(ctx, ai.CoachingSystemPrompt, query)
	if err != nil {
		emit(ctx, ch, Event{Type: EventError, Err: "coaching analysis failed to start"})
		return
	}
	defer stream.Close()

	var (
		buffer      strings.Builder
		observation string
		sawSummary  bool
	)

	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			if ctx.Err() != nil {
				// Consumer went away; abandon quietly.
				return
			}
			log.Printf("[coaching] stream recv failed: %v", recvErr)
			emit(ctx, ch, Event{Type: EventError, Err: "coaching analysis interrupted"})
			return
		}
		if chunk == nil || chunk.Content == "" {
			continue
		}

		buffer.WriteString(chunk.Content)
		rest, lines := cutLines(buffer.String())
		buffer.Reset()
		buffer.WriteString(rest)

		for _, line := range lines {
			if obs, ok := s.handleLine(ctx, ch, line); ok {
				observation = obs
				sawSummary = true
			} else if ctx.Err() != nil {
				return
			}
		}
	}

	// Whatever trails the last newline is still one logical line.
	if line := strings.TrimSpace(buffer.String()); line != "" {
		if obs, ok := s.handleLine(ctx, ch, line); ok {
			observation = obs
			sawSummary = true
		}
	}

	if !sawSummary {
		log.Printf("[coaching] stream ended without an overall observation")
	}
	emit(ctx, ch, Event{Type: EventSummary, Observation: observation})
}

// handleLine parses one completed line. It returns the overall
// observation and true when the line was the final summary object;
// insight lines are emitted directly.
func (s *Streamer) handleLine(ctx context.Context, ch chan<- Event, line string) (string, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}

	var parsed struct {
		Category           string `json:"category"`
		Message            string `json:"message"`
		Severity           string `json:"severity"`
		OverallObservation string `json:"overall_observation"`
	}
	if err := ai.DecodeJSON(line, &parsed); err != nil {
		log.Printf("[coaching] skipping unparsable line: %v", err)
		return "", false
	}

	if parsed.Category == "" {
		return parsed.OverallObservation, parsed.OverallObservation != ""
	}

	emit(ctx, ch, Event{Type: EventInsight, Insight: &feedback.Insight{
		Category: parsed.Category,
		Message:  parsed.Message,
		Severity: feedback.NormalizeSeverity(parsed.Severity),
	}})
	return "", false
}

// cutLines splits off every completed line, returning the unfinished
// remainder and the lines in order.
func cutLines(s string) (rest string, lines []string) {
	for {
		idx := strings.IndexByte(s, '\n')
		if idx < 0 {
			return s, lines
		}
		lines = append(lines, s[:idx])
		s = s[idx+1:]
	}
}

// emit delivers an event unless the consumer has gone away.
func emit(ctx context.Context, ch chan<- Event, ev Event) {
	select {
	case ch <- ev:
	case <-ctx.Done():
	}
}
