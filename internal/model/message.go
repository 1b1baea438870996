package model

// ChatMessage represents one accepted chat message of a session
type ChatMessage struct {
	Message     string `json:"message"`
	Nickname    string `json:"nickname"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	MessageTime string `json:"message_time,omitempty"`
}
