package session

// State is a phase of a chat session
type State int

const (
	StateLaunching State = iota
	StateAwaitingChatReady
	StatePolling
	StateTerminating
	StateExporting
	StateDone
)

var stateNames = map[State]string{
	StateLaunching:         "launching",
	StateAwaitingChatReady: "awaiting_chat_ready",
	StatePolling:           "polling",
	StateTerminating:       "terminating",
	StateExporting:         "exporting",
	StateDone:              "done",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}
