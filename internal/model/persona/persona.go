package persona

// Traits capture the behavioral dials that shape how a student persona
// reacts to a prompt. Values are fixed at load time.
type Traits struct {
	// ConfidenceBias shifts the persona's self-reported confidence, 0-1.
	ConfidenceBias float64 `json:"confidenceBias" yaml:"confidence_bias"`
	// ParticipationThreshold is how willing the persona is to volunteer, 0-1.
	ParticipationThreshold float64 `json:"participationThreshold" yaml:"participation_threshold"`
	VocabularyStyle        string  `json:"vocabularyStyle" yaml:"vocabulary_style"`
	ReasoningStyle         string  `json:"reasoningStyle" yaml:"reasoning_style"`
}

// Persona is one simulated student. Instances are loaded once at startup
// and shared read-only across all concurrent requests.
type Persona struct {
	ID               string   `json:"id" yaml:"id"`
	Name             string   `json:"name" yaml:"name"`
	LearningStyle    string   `json:"style" yaml:"learning_style"`
	Description      string   `json:"description" yaml:"description"`
	Traits           Traits   `json:"traits" yaml:"traits"`
	Strengths        []string `json:"strengths,omitempty" yaml:"strengths"`
	Challenges       []string `json:"challenges,omitempty" yaml:"challenges"`
	ResponsePatterns []string `json:"responsePatterns,omitempty" yaml:"response_patterns"`
	ThinkingApproach string   `json:"thinkingApproach,omitempty" yaml:"thinking_approach"`
	VoiceID          string   `json:"voiceId,omitempty" yaml:"voice_id"`
}

// Seed provides the default classroom roster used when no profiles
// directory is configured.
func Seed() []Persona {
	return []Persona{
		{
			ID:            "chipper",
			Name:          "Chipper",
			LearningStyle: "eager verbal processor",
			Description:   "Quick to volunteer, thinks out loud, sometimes answers before fully working the problem through.",
			Traits: Traits{
				ConfidenceBias:         0.85,
				ParticipationThreshold: 0.9,
				VocabularyStyle:        "casual, enthusiastic, short sentences",
				ReasoningStyle:         "jumps to a familiar procedure, checks afterwards",
			},
			Strengths:        []string{"mental arithmetic", "recalling worked examples", "keeping discussion moving"},
			Challenges:       []string{"slowing down on multi-step problems", "justifying answers beyond 'it worked before'"},
			ResponsePatterns: []string{"starts with 'Oh! I think...'", "offers an answer even when unsure"},
			ThinkingApproach: "Pattern-matches against problems seen before and commits early.",
			VoiceID:          "en_female_skye_emo_v2_mars_bigtts",
		},
		{
			ID:            "vex",
			Name:          "Vex",
			LearningStyle: "skeptical analytical thinker",
			Description:   "Works carefully and quietly, reluctant to raise a hand unless certain, asks pointed questions when called on.",
			Traits: Traits{
				ConfidenceBias:         0.45,
				ParticipationThreshold: 0.25,
				VocabularyStyle:        "precise, terse, uses correct terminology",
				ReasoningStyle:         "builds a full argument before speaking",
			},
			Strengths:        []string{"spotting edge cases", "precise mathematical language", "multi-step reasoning"},
			Challenges:       []string{"volunteering before feeling certain", "open-ended prompts without a clear procedure"},
			ResponsePatterns: []string{"answers with a question back", "points out when a claim lacks justification"},
			ThinkingApproach: "Tests the question against counterexamples before accepting any approach.",
			VoiceID:          "en_male_glen_emo_v2_mars_bigtts",
		},
		{
			ID:            "maren",
			Name:          "Maren",
			LearningStyle: "visual model builder",
			Description:   "Understands through drawings and diagrams, participates when the discussion involves a representation she can picture.",
			Traits: Traits{
				ConfidenceBias:         0.6,
				ParticipationThreshold: 0.55,
				VocabularyStyle:        "descriptive, refers to pictures and shapes",
				ReasoningStyle:         "translates the problem into a visual model first",
			},
			Strengths:        []string{"diagrams and number lines", "connecting representations to equations", "explaining with analogies"},
			Challenges:       []string{"purely symbolic manipulation", "following verbal-only explanations"},
			ResponsePatterns: []string{"asks to draw it out", "describes what the problem 'looks like'"},
			ThinkingApproach: "Sketches the situation mentally and reasons from the picture.",
			VoiceID:          "en_female_candice_emo_v2_mars_bigtts",
		},
		{
			ID:            "theo",
			Name:          "Theo",
			LearningStyle: "methodical step follower",
			Description:   "Wants a clear procedure, raises a hand for structured questions, freezes on ambiguity but shows solid work when guided.",
			Traits: Traits{
				ConfidenceBias:         0.5,
				ParticipationThreshold: 0.4,
				VocabularyStyle:        "plain, careful, narrates each step",
				ReasoningStyle:         "applies taught procedures in order",
			},
			Strengths:        []string{"showing work step by step", "applying algorithms accurately", "checking answers"},
			Challenges:       []string{"questions with multiple valid approaches", "estimating before computing"},
			ResponsePatterns: []string{"recites the steps of the procedure", "asks which method to use"},
			ThinkingApproach: "Finds the matching procedure and executes it line by line.",
			VoiceID:          "en_male_corey_emo_v2_mars_bigtts",
		},
	}
}
