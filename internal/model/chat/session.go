package chat

import "time"

// Session identifies one live classroom connection. Sessions exist only
// for the websocket channel; the REST surface is stateless.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}
