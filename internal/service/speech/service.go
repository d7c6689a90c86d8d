package speech

import (
	"context"
	"encoding/base64"
	"log"
	"sync"

	"github.com/rehearsed/classroom/backend/internal/model/classroom"
	"github.com/rehearsed/classroom/backend/internal/model/persona"
	"github.com/rehearsed/classroom/backend/internal/model/speech"
)

// Synthesizer is the speech capability: one utterance in, audio out.
type Synthesizer interface {
	Synthesize(ctx context.Context, req *speech.TTSRequest) (*speech.TTSResponse, error)
}

// Service attaches audio to persona responses. Synthesis calls run
// concurrently across personas; a failure degrades only that persona's
// audio field, never the text already computed.
type Service struct {
	config   *speech.SpeechConfig
	client   Synthesizer
	personas persona.Store
}

// NewService creates the speech service with the volc TTS client.
func NewService(config *speech.SpeechConfig, personas persona.Store) *Service {
	return &Service{
		config:   config,
		client:   NewVolcengineTTSClient(config),
		personas: personas,
	}
}

// NewServiceWithClient allows injecting the synthesizer, for tests.
func NewServiceWithClient(config *speech.SpeechConfig, client Synthesizer, personas persona.Store) *Service {
	return &Service{config: config, client: client, personas: personas}
}

// SynthesizeResponses populates AudioBase64 on every response with a
// non-empty spoken text, in place of the input slice's entries. The
// returned slice preserves the input order.
func (s *Service) SynthesizeResponses(ctx context.Context, students []classroom.PersonaResponse) []classroom.PersonaResponse {
	out := make([]classroom.PersonaResponse, len(students))
	copy(out, students)

	var wg sync.WaitGroup
	for i := range out {
		if out[i].Response == "" || out[i].Unavailable {
			continue
		}
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			out[slot].AudioBase64 = s.synthesizeOne(ctx, out[slot])
		}(i)
	}
	wg.Wait()

	return out
}

func (s *Service) synthesizeOne(ctx context.Context, r classroom.PersonaResponse) string {
	voice := s.config.TTSVoice
	if p, ok := s.personas.FindByID(r.PersonaID); ok {
		voice = ResolveVoice(p, s.config.TTSVoice)
	}

	resp, err := s.client.Synthesize(ctx, &speech.TTSRequest{Text: r.Response, Voice: voice})
	if err != nil {
		log.Printf("[speech] synthesis failed persona=%s: %v", r.PersonaID, err)
		return ""
	}

	return base64.StdEncoding.EncodeToString(resp.AudioData)
}
