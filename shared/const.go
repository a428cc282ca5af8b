package shared

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	ModelPrimary = "Vertex AI (Gemini 2.5 Flash)"
	ModelBackup  = "Groq (Llama 3.3)"
)
