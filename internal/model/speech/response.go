package speech

// TTSResponse is the synthesized audio for one utterance.
type TTSResponse struct {
	AudioData []byte `json:"audioData"`
	Format    string `json:"format"`
	RequestID string `json:"requestId,omitempty"`
}
