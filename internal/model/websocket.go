package model

// WebSocket message types
const (
	WSMessageTypeProgress = "progress"
	WSMessageTypeComplete = "complete"
	WSMessageTypeError    = "error"
	WSMessageTypePing     = "ping"
	WSMessageTypePong     = "pong"
)

// WSMessage represents a generic WebSocket message
type WSMessage struct {
	Type string `json:"type"`
}

// WSProgressMessage carries a projection update
type WSProgressMessage struct {
	Type     string   `json:"type"`
	CaseID   string   `json:"caseId"`
	Progress Progress `json:"progress"`
}

// WSCompleteMessage is sent once the case reaches a terminal state
type WSCompleteMessage struct {
	Type   string   `json:"type"`
	CaseID string   `json:"caseId"`
	Result Progress `json:"result"`
}

// WSErrorMessage represents an error
type WSErrorMessage struct {
	Type   string  `json:"type"`
	CaseID string  `json:"caseId"`
	Error  WSError `json:"error"`
}

// WSError represents error details
type WSError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
