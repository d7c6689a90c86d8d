package lesson

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/rehearsed/classroom/backend/internal/model/lesson"
	"github.com/rehearsed/classroom/backend/internal/model/persona"
	"github.com/rehearsed/classroom/backend/internal/service/ai"
)

var (
	// ErrInvalidInput means the caller's request fails a precondition:
	// empty lesson material, or an empty transcript at session end.
	ErrInvalidInput = errors.New("invalid input")
	// ErrAnalysisFailure means the generation capability errored or its
	// output could not be parsed into the expected structure.
	ErrAnalysisFailure = errors.New("lesson analysis failed")
)

// Builder derives the shared lesson context from raw material in a
// single generation call, including one approach per catalog persona so
// downstream agents genuinely reason differently about the same problem.
type Builder struct {
	gen      ai.Generator
	personas persona.Store
}

// NewBuilder wires the lesson context builder.
func NewBuilder(gen ai.Generator, personas persona.Store) *Builder {
	return &Builder{gen: gen, personas: personas}
}

type analysisOutput struct {
	GradeLevel         string   `json:"grade_level"`
	Subject            string   `json:"subject"`
	Topic              string   `json:"topic"`
	LearningObjectives []string `json:"learning_objectives"`
	KeyConcepts        []string `json:"key_concepts"`
	ContextSummary     string   `json:"context_summary"`
	Problem            string   `json:"mathematical_problem"`
	StudentApproaches  []struct {
		StudentID            string   `json:"student_id"`
		Approach             string   `json:"approach"`
		Strengths            []string `json:"strengths"`
		LikelyMisconceptions []string `json:"likely_misconceptions"`
	} `json:"student_approaches"`
}

// Build analyzes the lesson material once and returns the full context.
func (b *Builder) Build(ctx context.Context, req lesson.SetupRequest) (*lesson.Context, error) {
	text := strings.TrimSpace(req.LessonPlanText)
	doc := strings.TrimSpace(req.LessonPlanDocument)
	if text == "" && doc == "" {
		return nil, fmt.Errorf("%w: lesson plan text or document is required", ErrInvalidInput)
	}

	var material strings.Builder
	if text != "" {
		fmt.Fprintf(&material, "Lesson Plan:\n\n%s\n", text)
	}
	if doc != "" {
		fmt.Fprintf(&material, "\nLesson Plan Document:\n\n%s\n", doc)
	}

	system := ai.BuildLessonAnalysisSystemPrompt(b.personas.List())

	msg, err := b.gen.Generate(ctx, system, material.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailure, err)
	}

	var out analysisOutput
	if err := ai.DecodeJSON(msg.Content, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailure, err)
	}
	if out.GradeLevel == "" || out.Topic == "" {
		return nil, fmt.Errorf("%w: analysis output missing grade level or topic", ErrAnalysisFailure)
	}

	approaches := make(map[string]lesson.PersonaApproach, len(out.StudentApproaches))
	for _, a := range out.StudentApproaches {
		if _, ok := b.personas.FindByID(a.StudentID); !ok {
			log.Printf("[lesson] analysis produced approach for unknown persona %q", a.StudentID)
			continue
		}
		approaches[a.StudentID] = lesson.PersonaApproach{
			Approach:             a.Approach,
			Strengths:            a.Strengths,
			LikelyMisconceptions: a.LikelyMisconceptions,
		}
	}

	return &lesson.Context{
		GradeLevel:         out.GradeLevel,
		Subject:            out.Subject,
		Topic:              out.Topic,
		LearningObjectives: out.LearningObjectives,
		KeyConcepts:        out.KeyConcepts,
		ContextSummary:     out.ContextSummary,
		Problem:            out.Problem,
		PersonaApproaches:  approaches,
	}, nil
}
