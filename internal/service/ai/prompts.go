package ai

import (
	"fmt"
	"strings"

	"github.com/rehearsed/classroom/backend/internal/model/chat"
	"github.com/rehearsed/classroom/backend/internal/model/classroom"
	"github.com/rehearsed/classroom/backend/internal/model/lesson"
	"github.com/rehearsed/classroom/backend/internal/model/persona"
)

// BuildPersonaSystemPrompt assembles the system prompt for one student
// persona: trait profile, the persona's derived approach when a lesson
// context is present, and the shared conversation history. When no
// context is supplied the persona answers under defaultGrade, through the
// same prompt path.
func BuildPersonaSystemPrompt(p persona.Persona, lessonCtx *lesson.Context, history []chat.ConversationMessage, defaultGrade string) string {
	grade := defaultGrade

	var contextSection strings.Builder
	if lessonCtx != nil {
		grade = lessonCtx.GradeLevel
		contextSection.WriteString("\n\nLESSON CONTEXT:\n")
		fmt.Fprintf(&contextSection, "Grade Level: %s\n", lessonCtx.GradeLevel)
		fmt.Fprintf(&contextSection, "Subject: %s\n", lessonCtx.Subject)
		fmt.Fprintf(&contextSection, "Topic: %s\n", lessonCtx.Topic)
		contextSection.WriteString("\nLearning Objectives:\n")
		contextSection.WriteString(bulletList(lessonCtx.LearningObjectives))
		contextSection.WriteString("\nKey Concepts:\n")
		contextSection.WriteString(bulletList(lessonCtx.KeyConcepts))
		fmt.Fprintf(&contextSection, "\nContext: %s\n", lessonCtx.ContextSummary)
		if lessonCtx.Problem != "" {
			fmt.Fprintf(&contextSection, "\nProblem under discussion: %s\n", lessonCtx.Problem)
		}
		if approach, ok := lessonCtx.PersonaApproaches[p.ID]; ok {
			fmt.Fprintf(&contextSection, "\nYOUR APPROACH TO THIS PROBLEM:\n%s\n", approach.Approach)
			if len(approach.Strengths) > 0 {
				contextSection.WriteString("What you are likely to get right:\n")
				contextSection.WriteString(bulletList(approach.Strengths))
			}
			if len(approach.LikelyMisconceptions) > 0 {
				contextSection.WriteString("Misconceptions you might show:\n")
				contextSection.WriteString(bulletList(approach.LikelyMisconceptions))
			}
		}
		fmt.Fprintf(&contextSection,
			"\nIMPORTANT: Think and respond as a %s student learning about %s. Your language, reasoning depth, and mathematical sophistication must match this grade level.",
			lessonCtx.GradeLevel, lessonCtx.Topic)
	}

	var historySection strings.Builder
	if len(history) > 0 {
		historySection.WriteString("\n\nCONVERSATION HISTORY:\n")
		for _, msg := range history {
			fmt.Fprintf(&historySection, "%s: %s\n", msg.Speaker, msg.Message)
		}
	}

	return fmt.Sprintf(`You are %s, a %s math student with the following characteristics:

LEARNING STYLE: %s
DESCRIPTION: %s

STRENGTHS:
%s
CHALLENGES:
%s
THINKING APPROACH:
%s

CONFIDENCE BIAS: %.2f/1.0
PARTICIPATION WILLINGNESS: %.2f/1.0
VOCABULARY STYLE: %s
REASONING STYLE: %s

TYPICAL RESPONSE PATTERNS:
%s%s%s

Your task is to respond to your teacher's question authentically based on your profile.
You must evaluate:
1. Would you raise your hand to answer this question? (yes/no)
2. How confident do you feel about your answer? (0-1 scale)
3. What is your thinking process?
4. What would you say if called on? (ALWAYS provide a response - even if you would not raise your hand, you still have thoughts you could share if called on. Keep it brief and authentic to a %s student.)

Respond in JSON format with these exact keys:
{"would_raise_hand": true/false, "confidence_score": 0.0-1.0, "thinking_process": "your internal reasoning", "response": "what you would say if called on (always provide this)"}`,
		p.Name, grade,
		p.LearningStyle,
		p.Description,
		bulletList(p.Strengths),
		bulletList(p.Challenges),
		p.ThinkingApproach,
		p.Traits.ConfidenceBias,
		p.Traits.ParticipationThreshold,
		p.Traits.VocabularyStyle,
		p.Traits.ReasoningStyle,
		bulletList(p.ResponsePatterns),
		contextSection.String(),
		historySection.String(),
		grade,
	)
}

// BuildLessonAnalysisSystemPrompt produces the single-call analysis
// prompt. The roster is embedded so the model derives a distinct approach
// for every persona in one round trip.
func BuildLessonAnalysisSystemPrompt(personas []persona.Persona) string {
	var profiles strings.Builder
	for _, p := range personas {
		fmt.Fprintf(&profiles, `STUDENT PROFILE: %s
- ID: %s
- Learning Style: %s
- Description: %s
- Thinking Approach: %s
- Strengths: %s
- Challenges: %s

`, p.Name, p.ID, p.LearningStyle, p.Description, p.ThinkingApproach,
			strings.Join(p.Strengths, ", "), strings.Join(p.Challenges, ", "))
	}

	return fmt.Sprintf(`You are an expert educational analyst. Extract structured information from the lesson plan.

Your output must be valid JSON with exactly these fields:
{
  "grade_level": "string - e.g., '3rd grade', '9th grade', 'High School'",
  "subject": "string - e.g., 'Mathematics', 'Algebra II'",
  "topic": "string - specific topic being taught",
  "learning_objectives": ["array of what students should learn"],
  "key_concepts": ["array of key vocabulary and concepts"],
  "context_summary": "string - brief paragraph on how students at this grade level approach this topic",
  "mathematical_problem": "string or null - the specific mathematical problem or scenario",
  "student_approaches": [
    {
      "student_id": "string - the ID given in the profile",
      "approach": "string - how this student would naturally think about the problem",
      "strengths": ["what this student is likely to get right"],
      "likely_misconceptions": ["misconceptions this student might show"]
    }
  ]
}

Instructions:
1. Identify the grade level (infer from content if not explicit)
2. Extract the subject and specific topic
3. List learning objectives and key concepts
4. Write a context summary that helps agents understand how students at this grade level approach this topic
5. Identify the mathematical problem or scenario being discussed
6. For each student profile below, analyze their specific thinking approach to THIS problem
***IMPORTANT***: ENSURE THAT STUDENTS APPROACH THE PROBLEM IN DISTINCT WAYS THAT REFLECT DIVERSE THINKING STYLES.

STUDENT PROFILES TO ANALYZE:
%s`, profiles.String())
}

// CoachingSystemPrompt guides the coaching stream. Output is line
// oriented so insights can be forwarded as soon as each line completes.
const CoachingSystemPrompt = `You are a friendly coach helping a teacher practice facilitating high-quality mathematical discourse in whole-group discussions. Your feedback is laser-focused on the quality of mathematical discussion:
- Use of math talk moves (revoicing, asking for explanations, pressing for reasoning, connecting ideas)
- Building on and connecting student ideas
- Use and discussion of mathematical representations (drawings, models, equations)
- Precision and clarity of mathematical language
- Surfacing and addressing misconceptions
Do NOT comment on strategies like "turn and talk", "wait time", or general participation techniques.

Be supportive and growth-oriented, not evaluative. Reference specific quotes of what the teacher and students said.

OUTPUT FORMAT - STRICT:
Emit newline-delimited JSON. Each insight is ONE complete JSON object on its own line:
{"category": "Question Quality" | "Mathematical Reasoning" | "Connecting Ideas" | "Use of Representations" | "Precision of Language" | "Addressing Misconceptions", "message": "specific observation referencing what teacher/students said", "severity": "info" | "suggestion" | "concern"}
After all insights, emit exactly one final line:
{"overall_observation": "brief summary of this interaction"}
Emit nothing else: no prose, no markdown fences, no blank lines between objects.`

// BuildCoachingQuery renders the interaction under analysis: lesson
// context, teacher prompt, every student reaction, and recent history.
func BuildCoachingQuery(prompt string, students []classroom.PersonaResponse, lessonCtx *lesson.Context, history []chat.ConversationMessage) string {
	var b strings.Builder

	if lessonCtx != nil {
		b.WriteString("**LESSON CONTEXT:**\n")
		fmt.Fprintf(&b, "Grade Level: %s\n", lessonCtx.GradeLevel)
		fmt.Fprintf(&b, "Subject: %s\n", lessonCtx.Subject)
		fmt.Fprintf(&b, "Topic: %s\n", lessonCtx.Topic)
		b.WriteString("\n**Learning Objectives:**\n")
		b.WriteString(bulletList(lessonCtx.LearningObjectives))
		fmt.Fprintf(&b, "\nContext: %s\n", lessonCtx.ContextSummary)
		if lessonCtx.Problem != "" {
			fmt.Fprintf(&b, "Problem: %s\n", lessonCtx.Problem)
		}
		b.WriteString("\n---\n\n")
	}

	fmt.Fprintf(&b, "**Teacher Prompt:** %s\n\n**Student Responses:**\n", prompt)
	for _, r := range students {
		hand := "did not raise hand"
		if r.WouldRaiseHand {
			hand = "raised hand"
		}
		fmt.Fprintf(&b, "- **%s** (%s)\n", r.PersonaName, hand)
		text := r.Response
		if text == "" {
			text = r.Thinking
		}
		fmt.Fprintf(&b, "  Response: %s\n\n", text)
	}

	if len(history) > 0 {
		b.WriteString("**Conversation History (for pattern analysis):**\n")
		start := 0
		if len(history) > 6 {
			start = len(history) - 6
		}
		for _, msg := range history[start:] {
			fmt.Fprintf(&b, "%s: %s\n", msg.Speaker, msg.Message)
		}
	}

	return b.String()
}

// SummarySystemPrompt guides the one-shot end-of-session report.
const SummarySystemPrompt = `You are an experienced mathematics instructional coach writing a comprehensive end-of-lesson debrief for a teacher who just rehearsed a whole-group discussion with simulated students.

Analyze the complete transcript against the lesson context and produce valid JSON with exactly these fields:
{
  "lesson_summary": {
    "total_exchanges": number,
    "students_called_on": ["student names who spoke"],
    "participation_pattern": "summary of who participated and how",
    "key_moments": ["notable moments from the transcript"]
  },
  "overall_feedback": "narrative paragraph on the quality of mathematical discourse",
  "strengths_and_growth": {
    "strengths": ["specific things the teacher did well, with transcript evidence"],
    "areas_for_growth": ["specific areas to improve, with transcript evidence"]
  },
  "next_steps": {
    "immediate_actions": ["actions to try in the next lesson"],
    "practice_focus": "one skill to focus on practicing",
    "resources": ["optional suggested resources"]
  },
  "celebration": "warm, encouraging closing message"
}
Ground every claim in the transcript. Respond with JSON only.`

// BuildSummaryQuery renders the lesson context and the full transcript
// for the end-of-session report.
func BuildSummaryQuery(lessonCtx *lesson.Context, transcript []chat.ConversationMessage) string {
	var b strings.Builder

	if lessonCtx != nil {
		b.WriteString("**LESSON CONTEXT:**\n")
		fmt.Fprintf(&b, "Grade Level: %s\n", lessonCtx.GradeLevel)
		fmt.Fprintf(&b, "Subject: %s\n", lessonCtx.Subject)
		fmt.Fprintf(&b, "Topic: %s\n", lessonCtx.Topic)
		b.WriteString("\n**Learning Objectives:**\n")
		b.WriteString(bulletList(lessonCtx.LearningObjectives))
		fmt.Fprintf(&b, "\n**Key Concepts:** %s\n", strings.Join(lessonCtx.KeyConcepts, ", "))
		fmt.Fprintf(&b, "\n**Developmental Context:** %s\n", lessonCtx.ContextSummary)
		b.WriteString("\n---\n")
	}

	b.WriteString("\n**COMPLETE LESSON TRANSCRIPT:**\n\n")
	for i, msg := range transcript {
		fmt.Fprintf(&b, "%d. **%s:** %s\n", i+1, msg.Speaker, msg.Message)
	}
	b.WriteString("\n---\n\nAnalyze this lesson and provide comprehensive feedback following the framework above.")

	return b.String()
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "- (none)\n"
	}
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "- %s\n", item)
	}
	return b.String()
}
