package dto

type ChatRequest struct {
	Message   string `json:"message" validate:"required,max=500"`
	SessionID string `json:"session_id,omitempty" validate:"omitempty,max=64"`
	UserName  string `json:"user_name,omitempty" validate:"omitempty,max=128"`
}

func (c ChatRequest) Validate() error {
	return GetValidator().Struct(c)
}

type ChatResponse struct {
	Message      string `json:"message"`
	SessionID    string `json:"session_id"`
	Timestamp    string `json:"timestamp"`
	ResponseTime string `json:"response_time"`
	Model        string `json:"model"`
}

type EndSessionRequest struct {
	SessionID string `json:"session_id" validate:"required,max=64"`
}

func (c EndSessionRequest) Validate() error {
	return GetValidator().Struct(c)
}

// AssistantReply is the model answer plus call metadata, before the session
// nudge is appended.
type AssistantReply struct {
	Message      string
	Model        string
	ResponseTime string
}

type StatusResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type SessionInfoResponse struct {
	SessionID    string `json:"session_id"`
	MessageCount int    `json:"message_count"`
	UserName     string `json:"user_name,omitempty"`
	UserLinkedIn string `json:"user_linkedin,omitempty"`
	StartedAt    string `json:"started_at"`
	LastActivity string `json:"last_activity"`
}

type AssistantStatusResponse struct {
	AIInitialized bool   `json:"ai_initialized"`
	UsingBackup   bool   `json:"using_backup"`
	Model         string `json:"model"`
	Timestamp     string `json:"timestamp"`
}

type HealthResponse struct {
	Status        string `json:"status"`
	Timestamp     string `json:"timestamp"`
	AIInitialized bool   `json:"ai_initialized"`
}
