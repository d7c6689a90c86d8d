package lesson

import (
	"context"
	"fmt"

	"github.com/rehearsed/classroom/backend/internal/model/chat"
	"github.com/rehearsed/classroom/backend/internal/model/feedback"
	"github.com/rehearsed/classroom/backend/internal/model/lesson"
	"github.com/rehearsed/classroom/backend/internal/service/ai"
)

// Summarizer produces the comprehensive end-of-session report. One
// blocking generation call over the full transcript; deliberately the
// slow, careful counterpart to the per-prompt fan-out.
type Summarizer struct {
	gen ai.Generator
}

// NewSummarizer wires the session summarizer.
func NewSummarizer(gen ai.Generator) *Summarizer {
	return &Summarizer{gen: gen}
}

type summaryOutput struct {
	LessonSummary struct {
		TotalExchanges       int      `json:"total_exchanges"`
		StudentsCalledOn     []string `json:"students_called_on"`
		ParticipationPattern string   `json:"participation_pattern"`
		KeyMoments           []string `json:"key_moments"`
	} `json:"lesson_summary"`
	OverallFeedback    string `json:"overall_feedback"`
	StrengthsAndGrowth struct {
		Strengths      []string `json:"strengths"`
		AreasForGrowth []string `json:"areas_for_growth"`
	} `json:"strengths_and_growth"`
	NextSteps struct {
		ImmediateActions []string `json:"immediate_actions"`
		PracticeFocus    string   `json:"practice_focus"`
		Resources        []string `json:"resources"`
	} `json:"next_steps"`
	Celebration string `json:"celebration"`
}

// Summarize analyzes the complete transcript and returns one report.
func (s *Summarizer) Summarize(ctx context.Context, lessonCtx *lesson.Context, transcript []chat.ConversationMessage) (*feedback.Report, error) {
	if len(transcript) == 0 {
		return nil, fmt.Errorf("%w: transcript is empty", ErrInvalidInput)
	}

	query := ai.BuildSummaryQuery(lessonCtx, transcript)

	msg, err := s.gen.Generate(ctx, ai.SummarySystemPrompt, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailure, err)
	}

	var out summaryOutput
	if err := ai.DecodeJSON(msg.Content, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailure, err)
	}
	if out.OverallFeedback == "" || out.Celebration == "" {
		return nil, fmt.Errorf("%w: summary output incomplete", ErrAnalysisFailure)
	}

	return &feedback.Report{
		LessonSummary: feedback.LessonSummary{
			TotalExchanges:       out.LessonSummary.TotalExchanges,
			StudentsCalledOn:     out.LessonSummary.StudentsCalledOn,
			ParticipationPattern: out.LessonSummary.ParticipationPattern,
			KeyMoments:           out.LessonSummary.KeyMoments,
		},
		OverallFeedback: out.OverallFeedback,
		StrengthsAndGrowth: feedback.StrengthsAndGrowth{
			Strengths:      out.StrengthsAndGrowth.Strengths,
			AreasForGrowth: out.StrengthsAndGrowth.AreasForGrowth,
		},
		NextSteps: feedback.NextSteps{
			ImmediateActions: out.NextSteps.ImmediateActions,
			PracticeFocus:    out.NextSteps.PracticeFocus,
			Resources:        out.NextSteps.Resources,
		},
		Celebration: out.Celebration,
	}, nil
}
