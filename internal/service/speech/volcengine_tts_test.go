package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rehearsed/classroom/backend/internal/model/speech"
)

func ttsServer(t *testing.T, code int, audio []byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/tts" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer;test-token" {
			t.Errorf("unexpected authorization header %q", got)
		}

		var body ttsRequestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("invalid request body: %v", err)
		}
		if body.Request.Operation != "query" || body.Request.ReqID == "" {
			t.Errorf("unexpected request block: %+v", body.Request)
		}
		if body.Audio.Encoding != "mp3" {
			t.Errorf("unexpected encoding %q", body.Audio.Encoding)
		}

		json.NewEncoder(w).Encode(ttsResponseBody{
			ReqID: body.Request.ReqID,
			Code:  code,
			Data:  base64.StdEncoding.EncodeToString(audio),
		})
	}))
}

func testTTSConfig(baseURL string) *speech.SpeechConfig {
	return &speech.SpeechConfig{
		AppID:       "test-app",
		AccessToken: "test-token",
		Cluster:     "volcano_tts",
		BaseURL:     baseURL,
		TTSVoice:    "default_voice",
	}
}

func TestSynthesizeSuccess(t *testing.T) {
	server := ttsServer(t, 3000, []byte("fake-mp3-bytes"))
	defer server.Close()

	client := NewVolcengineTTSClient(testTTSConfig(server.URL))
	resp, err := client.Synthesize(context.Background(), &speech.TTSRequest{Text: "hello", Voice: "voice_alpha"})
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if string(resp.AudioData) != "fake-mp3-bytes" {
		t.Errorf("unexpected audio payload: %q", resp.AudioData)
	}
	if resp.Format != "mp3" {
		t.Errorf("unexpected format %q", resp.Format)
	}
}

func TestSynthesizeErrorCode(t *testing.T) {
	server := ttsServer(t, 4001, nil)
	defer server.Close()

	client := NewVolcengineTTSClient(testTTSConfig(server.URL))
	if _, err := client.Synthesize(context.Background(), &speech.TTSRequest{Text: "hello"}); err == nil {
		t.Fatal("expected error for non-success code")
	}
}

func TestSynthesizeEmptyText(t *testing.T) {
	client := NewVolcengineTTSClient(testTTSConfig("http://unused"))
	if _, err := client.Synthesize(context.Background(), &speech.TTSRequest{Text: "  "}); err == nil {
		t.Fatal("expected error for empty text")
	}
}

func TestSynthesizeRequiresVoice(t *testing.T) {
	cfg := testTTSConfig("http://unused")
	cfg.TTSVoice = ""
	client := NewVolcengineTTSClient(cfg)
	if _, err := client.Synthesize(context.Background(), &speech.TTSRequest{Text: "hello"}); err == nil {
		t.Fatal("expected error when no voice is configured")
	}
}
