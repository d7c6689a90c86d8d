package classroom

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/go-chi/chi/v5"

	"github.com/rehearsed/classroom/backend/internal/model/persona"
	speechmodel "github.com/rehearsed/classroom/backend/internal/model/speech"
	classroomsvc "github.com/rehearsed/classroom/backend/internal/service/classroom"
	"github.com/rehearsed/classroom/backend/internal/service/coaching"
	speechsvc "github.com/rehearsed/classroom/backend/internal/service/speech"
)

type fakeGenerator struct {
	generateContent string
	generateErr     error
	streamChunks    []string
}

func (f *fakeGenerator) Generate(ctx context.Context, system, query string) (*schema.Message, error) {
	if f.generateErr != nil {
		return nil, f.generateErr
	}
	return schema.AssistantMessage(f.generateContent, nil), nil
}

func (f *fakeGenerator) Stream(ctx context.Context, system, query string) (*schema.StreamReader[*schema.Message], error) {
	msgs := make([]*schema.Message, 0, len(f.streamChunks))
	for _, chunk := range f.streamChunks {
		msgs = append(msgs, schema.AssistantMessage(chunk, nil))
	}
	return schema.StreamReaderFromArray(msgs), nil
}

type fakeSynthesizer struct{}

func (fakeSynthesizer) Synthesize(ctx context.Context, req *speechmodel.TTSRequest) (*speechmodel.TTSResponse, error) {
	return &speechmodel.TTSResponse{AudioData: []byte("audio"), Format: "mp3"}, nil
}

const studentJSON = `{"would_raise_hand": true, "confidence_score": 0.8, "thinking_process": "thinking", "response": "seven eighths"}`

func newTestServer(gen *fakeGenerator, withSpeech bool) *httptest.Server {
	store := persona.NewMemoryStore([]persona.Persona{
		{ID: "alpha", Name: "Alpha"},
		{ID: "bravo", Name: "Bravo"},
	})

	var speech *speechsvc.Service
	if withSpeech {
		speech = speechsvc.NewServiceWithClient(&speechmodel.SpeechConfig{TTSVoice: "v"}, fakeSynthesizer{}, store)
	}

	h := New(classroomsvc.NewCoordinator(gen, store), coaching.NewStreamer(gen), speech)

	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return httptest.NewServer(r)
}

func TestAskReturnsOrderedRoster(t *testing.T) {
	server := newTestServer(&fakeGenerator{generateContent: studentJSON}, false)
	defer server.Close()

	resp, err := http.Post(server.URL+"/ask", "application/json",
		strings.NewReader(`{"prompt": "What is 3/4 + 1/8?"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Students []struct {
			PersonaID   string `json:"personaId"`
			Response    string `json:"response"`
			AudioBase64 string `json:"audioBase64"`
		} `json:"students"`
		Summary string `json:"summary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(body.Students) != 2 {
		t.Fatalf("expected 2 students, got %d", len(body.Students))
	}
	if body.Students[0].PersonaID != "alpha" || body.Students[1].PersonaID != "bravo" {
		t.Errorf("unexpected order: %+v", body.Students)
	}
	if body.Students[0].AudioBase64 != "" {
		t.Error("plain ask must not carry audio")
	}
	if !strings.Contains(body.Summary, "2 out of 2 students") {
		t.Errorf("unexpected summary: %q", body.Summary)
	}
}

func TestAskRejectsEmptyPrompt(t *testing.T) {
	server := newTestServer(&fakeGenerator{generateContent: studentJSON}, false)
	defer server.Close()

	resp, err := http.Post(server.URL+"/ask", "application/json", strings.NewReader(`{"prompt": ""}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestAskAllPersonasFailed(t *testing.T) {
	server := newTestServer(&fakeGenerator{generateErr: errors.New("model down")}, false)
	defer server.Close()

	resp, err := http.Post(server.URL+"/ask", "application/json", strings.NewReader(`{"prompt": "p"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
}

func TestAskStreamsFeedback(t *testing.T) {
	gen := &fakeGenerator{
		generateContent: studentJSON,
		streamChunks: []string{
			`{"category": "Question Quality", "message": "Nice probe.", "severity": "info"}` + "\n",
			`{"overall_observation": "Strong start."}`,
		},
	}
	server := newTestServer(gen, false)
	defer server.Close()

	resp, err := http.Post(server.URL+"/ask?streamFeedback=true", "application/json",
		strings.NewReader(`{"prompt": "What do you notice?"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("expected SSE content type, got %q", got)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read stream: %v", err)
	}
	body := string(raw)

	order := []string{"event: students_response", "event: insight", "event: summary", "event: done"}
	pos := -1
	for _, marker := range order {
		next := strings.Index(body, marker)
		if next < 0 {
			t.Fatalf("missing %q in stream:\n%s", marker, body)
		}
		if next < pos {
			t.Fatalf("%q out of order in stream:\n%s", marker, body)
		}
		pos = next
	}
	if !strings.Contains(body, "Strong start.") {
		t.Errorf("summary payload missing from stream:\n%s", body)
	}
}

func TestAskStreamErrorEvent(t *testing.T) {
	gen := &fakeGenerator{
		generateContent: studentJSON,
		streamChunks:    []string{"no coaching json at all"},
	}
	server := newTestServer(gen, false)
	defer server.Close()

	resp, err := http.Post(server.URL+"/ask?streamFeedback=true", "application/json",
		strings.NewReader(`{"prompt": "p"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	body := string(raw)

	// Unparsable coaching output still terminates the stream cleanly.
	if !strings.Contains(body, "event: students_response") {
		t.Fatalf("students_response missing:\n%s", body)
	}
	if !strings.Contains(body, "event: summary") {
		t.Fatalf("terminal event missing:\n%s", body)
	}
	if !strings.Contains(body, "event: done") {
		t.Fatalf("done event missing:\n%s", body)
	}
}

func TestAskWithAudio(t *testing.T) {
	server := newTestServer(&fakeGenerator{generateContent: studentJSON}, true)
	defer server.Close()

	resp, err := http.Post(server.URL+"/ask/with-audio", "application/json",
		strings.NewReader(`{"prompt": "p"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Students []struct {
			AudioBase64 string `json:"audioBase64"`
		} `json:"students"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	for i, s := range body.Students {
		if s.AudioBase64 == "" {
			t.Errorf("student %d missing audio", i)
		}
	}
}

func TestAskWithAudioStreamsFeedback(t *testing.T) {
	gen := &fakeGenerator{
		generateContent: studentJSON,
		streamChunks: []string{
			`{"category": "Question Quality", "message": "Nice probe.", "severity": "info"}` + "\n",
			`{"overall_observation": "Strong start."}`,
		},
	}
	server := newTestServer(gen, true)
	defer server.Close()

	resp, err := http.Post(server.URL+"/ask/with-audio?streamFeedback=true", "application/json",
		strings.NewReader(`{"prompt": "What do you notice?"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("expected SSE content type, got %q", got)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read stream: %v", err)
	}
	body := string(raw)

	order := []string{"event: students_response", "event: insight", "event: summary", "event: done"}
	pos := -1
	for _, marker := range order {
		next := strings.Index(body, marker)
		if next < 0 {
			t.Fatalf("missing %q in stream:\n%s", marker, body)
		}
		if next < pos {
			t.Fatalf("%q out of order in stream:\n%s", marker, body)
		}
		pos = next
	}

	// The batch event carries audio before any feedback is streamed.
	batch := body[strings.Index(body, "event: students_response"):strings.Index(body, "event: insight")]
	if !strings.Contains(batch, `"audioBase64"`) {
		t.Errorf("students_response payload missing audio:\n%s", batch)
	}
}

func TestAskWithAudioWithoutSpeechService(t *testing.T) {
	server := newTestServer(&fakeGenerator{generateContent: studentJSON}, false)
	defer server.Close()

	resp, err := http.Post(server.URL+"/ask/with-audio", "application/json",
		strings.NewReader(`{"prompt": "p"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 even without speech configured, got %d", resp.StatusCode)
	}
}
