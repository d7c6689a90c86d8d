package feedback

// LessonSummary describes what actually happened during the rehearsal.
type LessonSummary struct {
	TotalExchanges       int      `json:"totalExchanges"`
	StudentsCalledOn     []string `json:"studentsCalledOn"`
	ParticipationPattern string   `json:"participationPattern"`
	KeyMoments           []string `json:"keyMoments"`
}

// StrengthsAndGrowth pairs what the teacher did well with what to work on,
// both backed by transcript evidence.
type StrengthsAndGrowth struct {
	Strengths      []string `json:"strengths"`
	AreasForGrowth []string `json:"areasForGrowth"`
}

// NextSteps lists concrete follow-ups for the teacher's next session.
type NextSteps struct {
	ImmediateActions []string `json:"immediateActions"`
	PracticeFocus    string   `json:"practiceFocus"`
	Resources        []string `json:"resources,omitempty"`
}

// Report is the comprehensive end-of-session analysis. It is produced in
// one shot from the full transcript and is never partial.
type Report struct {
	LessonSummary      LessonSummary      `json:"lessonSummary"`
	OverallFeedback    string             `json:"overallFeedback"`
	StrengthsAndGrowth StrengthsAndGrowth `json:"strengthsAndGrowth"`
	NextSteps          NextSteps          `json:"nextSteps"`
	Celebration        string             `json:"celebration"`
}
