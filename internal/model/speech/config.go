package speech

// SpeechConfig carries the TTS capability settings handed to the speech
// service at startup.
type SpeechConfig struct {
	AppID       string
	AccessToken string
	Cluster     string
	BaseURL     string
	TTSVoice    string
	TTSSpeed    float32
	TTSVolume   float32
	Timeout     int
}
