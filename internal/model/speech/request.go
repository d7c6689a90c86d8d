package speech

// TTSRequest asks the speech capability for one synthesized utterance.
type TTSRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}
