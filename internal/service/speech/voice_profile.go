package speech

import (
	"strings"

	"github.com/rehearsed/classroom/backend/internal/model/persona"
)

// fallbackVoice is used when neither the persona nor the configuration
// names a voice.
const fallbackVoice = "en_female_candice_emo_v2_mars_bigtts"

// ResolveVoice picks the synthesis voice for a persona. The persona's
// fixed mapping wins; the configured default and then the fallback cover
// profiles loaded without one.
func ResolveVoice(p persona.Persona, configured string) string {
	if voice := strings.TrimSpace(p.VoiceID); voice != "" {
		return voice
	}
	if voice := strings.TrimSpace(configured); voice != "" {
		return voice
	}
	return fallbackVoice
}
