package lesson

// PersonaApproach describes how one student persona would come at the
// lesson's problem. Derived once per session by the context builder so
// each persona reasons differently about the same material.
type PersonaApproach struct {
	Approach             string   `json:"approach"`
	Strengths            []string `json:"strengths,omitempty"`
	LikelyMisconceptions []string `json:"likelyMisconceptions,omitempty"`
}

// Context is the structured lesson analysis shared by every subsequent
// call in a session. It is owned by the caller: the backend derives it
// once and then expects it round-tripped on each request.
type Context struct {
	GradeLevel         string                     `json:"gradeLevel"`
	Subject            string                     `json:"subject"`
	Topic              string                     `json:"topic"`
	LearningObjectives []string                   `json:"learningObjectives"`
	KeyConcepts        []string                   `json:"keyConcepts"`
	ContextSummary     string                     `json:"contextSummary"`
	Problem            string                     `json:"problem,omitempty"`
	PersonaApproaches  map[string]PersonaApproach `json:"personaApproaches,omitempty"`
}

// SetupRequest carries the raw lesson material. Document is pre-extracted
// text when the caller uploaded a file; at least one field must be set.
type SetupRequest struct {
	LessonPlanText     string `json:"lessonPlanText"`
	LessonPlanDocument string `json:"lessonPlanDocument,omitempty"`
}
