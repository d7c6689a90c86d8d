package chat

// ConversationMessage is one exchange in the classroom transcript. Speaker
// is "Teacher" or a student name. History is append-only from the caller's
// side; services only ever read it.
type ConversationMessage struct {
	Speaker string `json:"speaker"`
	Message string `json:"message"`
}
