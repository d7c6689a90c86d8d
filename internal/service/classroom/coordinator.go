package classroom

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/rehearsed/classroom/backend/internal/model/classroom"
	"github.com/rehearsed/classroom/backend/internal/model/persona"
	"github.com/rehearsed/classroom/backend/internal/service/ai"
)

var (
	// ErrPromptRequired rejects requests with an empty teacher prompt.
	ErrPromptRequired = errors.New("prompt is required")
	// ErrAllPersonasFailed is returned only when every persona's
	// generation call failed; a partial failure degrades instead.
	ErrAllPersonasFailed = errors.New("all personas failed to respond")
	// ErrNoPersonas means the catalog is empty, which is a deployment
	// problem rather than a caller error.
	ErrNoPersonas = errors.New("persona catalog is empty")
)

// Coordinator fans a teacher prompt out to every persona concurrently and
// joins the results back into canonical catalog order. It holds no
// mutable state; all fields are set at construction and read-only after.
type Coordinator struct {
	gen            ai.Generator
	personas       persona.Store
	defaultGrade   string
	personaTimeout time.Duration
}

// Option tunes a Coordinator.
type Option func(*Coordinator)

// WithPersonaTimeout bounds each persona's generation call. A timed-out
// persona degrades exactly like a failed one.
func WithPersonaTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.personaTimeout = d }
}

// WithDefaultGrade sets the maturity assumption used when a request
// carries no lesson context.
func WithDefaultGrade(grade string) Option {
	return func(c *Coordinator) { c.defaultGrade = grade }
}

// NewCoordinator wires the fan-out layer.
func NewCoordinator(gen ai.Generator, personas persona.Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		gen:          gen,
		personas:     personas,
		defaultGrade: "8th grade",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Respond dispatches one generation call per persona concurrently and
// assembles the ordered result set. Latency scales with the slowest
// single persona call, not the sum. One persona's failure never aborts
// its peers; only a total failure surfaces as an error.
func (c *Coordinator) Respond(ctx context.Context, req classroom.PromptRequest) (*classroom.Result, error) {
	if req.Prompt == "" {
		return nil, ErrPromptRequired
	}

	roster := c.personas.List()
	if len(roster) == 0 {
		return nil, ErrNoPersonas
	}

	// Each goroutine owns exactly one slot, so the join preserves the
	// catalog's canonical order without any post-hoc sorting.
	students := make([]classroom.PersonaResponse, len(roster))
	var wg sync.WaitGroup
	for i, p := range roster {
		wg.Add(1)
		go func(slot int, p persona.Persona) {
			defer wg.Done()
			students[slot] = c.respondAs(ctx, p, req)
		}(i, p)
	}
	wg.Wait()

	failed := 0
	raised := 0
	for _, s := range students {
		if s.Unavailable {
			failed++
		}
		if s.WouldRaiseHand {
			raised++
		}
	}

	if failed == len(students) {
		return nil, ErrAllPersonasFailed
	}

	return &classroom.Result{
		Students: students,
		Summary: fmt.Sprintf("%d out of %d students would raise their hand to answer this question.",
			raised, len(students)),
	}, nil
}

// studentReply is the wire format each persona is prompted to produce.
type studentReply struct {
	WouldRaiseHand  bool    `json:"would_raise_hand"`
	ConfidenceScore float64 `json:"confidence_score"`
	ThinkingProcess string  `json:"thinking_process"`
	Response        string  `json:"response"`
}

func (c *Coordinator) respondAs(ctx context.Context, p persona.Persona, req classroom.PromptRequest) classroom.PersonaResponse {
	if c.personaTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.personaTimeout)
		defer cancel()
	}

	system := ai.BuildPersonaSystemPrompt(p, req.LessonContext, req.History, c.defaultGrade)

	msg, err := c.gen.Generate(ctx, system, req.Prompt)
	if err != nil {
		log.Printf("[classroom] persona=%s generation failed: %v", p.ID, err)
		return degradedResponse(p, err)
	}

	var reply studentReply
	if err := ai.DecodeJSON(msg.Content, &reply); err != nil {
		log.Printf("[classroom] persona=%s unparsable reply: %v", p.ID, err)
		return degradedResponse(p, err)
	}

	if reply.Response == "" {
		// The contract is that a student always has something to say if
		// called on; fall back to the thinking process.
		reply.Response = reply.ThinkingProcess
	}
	if reply.ConfidenceScore < 0 {
		reply.ConfidenceScore = 0
	}
	if reply.ConfidenceScore > 1 {
		reply.ConfidenceScore = 1
	}

	return classroom.PersonaResponse{
		PersonaID:      p.ID,
		PersonaName:    p.Name,
		WouldRaiseHand: reply.WouldRaiseHand,
		Confidence:     reply.ConfidenceScore,
		Thinking:       reply.ThinkingProcess,
		Response:       reply.Response,
	}
}

// degradedResponse keeps the roster shape intact when one persona's
// backing call fails: the entry stays present and well-formed, flagged
// unavailable, and never counts as raising a hand.
func degradedResponse(p persona.Persona, cause error) classroom.PersonaResponse {
	return classroom.PersonaResponse{
		PersonaID:      p.ID,
		PersonaName:    p.Name,
		WouldRaiseHand: false,
		Confidence:     0,
		Thinking:       fmt.Sprintf("generation failed: %v", cause),
		Response:       fmt.Sprintf("%s is unavailable right now.", p.Name),
		Unavailable:    true,
	}
}
