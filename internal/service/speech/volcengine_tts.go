package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rehearsed/classroom/backend/internal/model/speech"
)

// VolcengineTTSClient talks to the volc HTTP TTS endpoint. One POST per
// utterance, base64 MP3 back; stateless per call.
type VolcengineTTSClient struct {
	config *speech.SpeechConfig
	client *http.Client
}

// NewVolcengineTTSClient creates the TTS client.
func NewVolcengineTTSClient(config *speech.SpeechConfig) *VolcengineTTSClient {
	timeout := time.Duration(config.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &VolcengineTTSClient{
		config: config,
		client: &http.Client{Timeout: timeout},
	}
}

type ttsRequestBody struct {
	App struct {
		AppID   string `json:"appid"`
		Token   string `json:"token"`
		Cluster string `json:"cluster"`
	} `json:"app"`
	User struct {
		UID string `json:"uid"`
	} `json:"user"`
	Audio struct {
		VoiceType   string  `json:"voice_type"`
		Encoding    string  `json:"encoding"`
		SpeedRatio  float32 `json:"speed_ratio,omitempty"`
		VolumeRatio float32 `json:"volume_ratio,omitempty"`
	} `json:"audio"`
	Request struct {
		ReqID     string `json:"reqid"`
		Text      string `json:"text"`
		Operation string `json:"operation"`
	} `json:"request"`
}

type ttsResponseBody struct {
	ReqID   string `json:"reqid"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data"`
}

// Synthesize converts one utterance to MP3 audio.
func (c *VolcengineTTSClient) Synthesize(ctx context.Context, req *speech.TTSRequest) (*speech.TTSResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("TTS text is empty")
	}

	voice := strings.TrimSpace(req.Voice)
	if voice == "" {
		voice = c.config.TTSVoice
	}
	if voice == "" {
		return nil, fmt.Errorf("no TTS voice configured")
	}

	var body ttsRequestBody
	body.App.AppID = c.config.AppID
	body.App.Token = c.config.AccessToken
	body.App.Cluster = c.config.Cluster
	body.User.UID = "classroom-backend"
	body.Audio.VoiceType = voice
	body.Audio.Encoding = "mp3"
	body.Audio.SpeedRatio = c.config.TTSSpeed
	body.Audio.VolumeRatio = c.config.TTSVolume
	body.Request.ReqID = uuid.NewString()
	body.Request.Text = req.Text
	body.Request.Operation = "query"

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal TTS request: %w", err)
	}

	url := strings.TrimRight(c.config.BaseURL, "/") + "/api/v1/tts"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build TTS request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer;"+c.config.AccessToken)

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("TTS request failed: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read TTS response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("TTS request returned status %d: %s", httpResp.StatusCode, truncate(string(raw), 200))
	}

	var resp ttsResponseBody
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode TTS response: %w", err)
	}
	if resp.Code != 3000 {
		return nil, fmt.Errorf("TTS error code=%d message=%s", resp.Code, resp.Message)
	}

	audio, err := base64.StdEncoding.DecodeString(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("decode TTS audio payload: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("TTS returned empty audio")
	}

	return &speech.TTSResponse{
		AudioData: audio,
		Format:    "mp3",
		RequestID: resp.ReqID,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
