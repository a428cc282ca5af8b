package services

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/rayansh0071505/portfolio-api/dto"
	"github.com/rayansh0071505/portfolio-api/shared"
	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
)

// AssistantService produces the chat reply: RAG context retrieval, prompt
// construction from the session transcript, and the model call with
// primary-to-backup routing. The daily quota gates the primary provider;
// exhaustion silently reroutes to the backup, it never fails the request.
type AssistantService struct {
	appContext.DefaultService

	primary      *openai.Client
	backup       *openai.Client
	primaryModel string
	backupModel  string

	useBackup bool
	mutex     sync.Mutex

	quotaSvc     *QuotaService
	convSvc      *ConversationService
	knowledgeSvc *KnowledgeService
	cacheSvc     *CacheService
	monSvc       *MonitoringService
}

const ASSISTANT_SVC = "assistant_svc"

const systemPrompt = `You are Rayansh Srivastava's AI form. You represent Rayansh in conversations.

Identity: Rayansh Srivastava, AI/ML Solution Engineer with 5+ years across startups on 3 continents.
Contact: rayanshsrivastava.ai@gmail.com | https://www.linkedin.com/in/rayansh-srivastava-419951219/

Rules you must follow:
1. You ARE Rayansh, speaking in first person. Never refer to Rayansh in third person.
2. Only state facts present in the provided knowledge base context. If the context does not cover something, say: "I don't have that specific information to share right now." Never invent projects, companies, skills, or dates.
3. Only discuss Rayansh's professional profile, experience, projects, and skills. Redirect off-topic questions: "I'm here to discuss my professional background and experience. Is there anything you'd like to know about my work?"
4. Professional yet approachable tone. Concise. Cite concrete numbers and metrics when the context provides them.`

func (svc AssistantService) Id() string {
	return ASSISTANT_SVC
}

func (svc *AssistantService) Configure(ctx *appContext.Context) error {
	svc.primaryModel = os.Getenv("PRIMARY_MODEL")
	if svc.primaryModel == "" {
		svc.primaryModel = "gemini-2.5-flash-lite"
	}
	svc.backupModel = os.Getenv("BACKUP_MODEL")
	if svc.backupModel == "" {
		svc.backupModel = "llama-3.3-70b-versatile"
	}

	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		cfg := openai.DefaultConfig(key)
		cfg.BaseURL = os.Getenv("PRIMARY_BASE_URL")
		if cfg.BaseURL == "" {
			cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
		}
		svc.primary = openai.NewClientWithConfig(cfg)
	}

	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		cfg := openai.DefaultConfig(key)
		cfg.BaseURL = os.Getenv("BACKUP_BASE_URL")
		if cfg.BaseURL == "" {
			cfg.BaseURL = "https://api.groq.com/openai/v1"
		}
		svc.backup = openai.NewClientWithConfig(cfg)
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *AssistantService) Start() error {
	svc.quotaSvc = svc.Service(QUOTA_SVC).(*QuotaService)
	svc.convSvc = svc.Service(CONVERSATION_SVC).(*ConversationService)
	svc.knowledgeSvc = svc.Service(KNOWLEDGE_SVC).(*KnowledgeService)
	svc.cacheSvc = svc.Service(CACHE_SVC).(*CacheService)

	if mon, ok := svc.Service(MONITORING_SVC).(*MonitoringService); ok {
		svc.monSvc = mon
	}

	if svc.primary == nil && svc.backup == nil {
		return fmt.Errorf("no model provider configured: set GOOGLE_API_KEY and/or GROQ_API_KEY")
	}
	if svc.primary == nil {
		log.Warn("Primary provider not configured - running on backup only")
		svc.useBackup = true
	}

	return nil
}

func (svc *AssistantService) Initialized() bool {
	return svc.primary != nil || svc.backup != nil
}

func (svc *AssistantService) Status() dto.AssistantStatusResponse {
	svc.mutex.Lock()
	usingBackup := svc.useBackup
	svc.mutex.Unlock()

	modelLabel := shared.ModelPrimary
	if usingBackup {
		modelLabel = shared.ModelBackup
	}

	return dto.AssistantStatusResponse{
		AIInitialized: svc.Initialized(),
		UsingBackup:   usingBackup,
		Model:         modelLabel,
		Timestamp:     time.Now().Format(time.RFC3339),
	}
}

// Chat answers the latest user turn of a session. The caller records the
// user message first; the transcript is the prompt.
func (svc *AssistantService) Chat(ctx context.Context, sessionID, message string) (*dto.AssistantReply, error) {
	start := time.Now()

	if cached := svc.cacheSvc.Lookup(ctx, message); cached != "" {
		log.Infof("Cache hit for session %s", sessionID)
		return &dto.AssistantReply{
			Message:      cached,
			Model:        "cache",
			ResponseTime: formatElapsed(time.Since(start)),
		}, nil
	}

	messages := svc.buildPrompt(ctx, sessionID)

	client, modelName, modelLabel := svc.selectProvider()

	reply, err := svc.complete(ctx, client, modelName, messages)
	if err != nil && modelLabel == shared.ModelPrimary && svc.backup != nil {
		log.WithError(err).Info("Primary provider failed, switching to backup")
		svc.markBackup()
		client, modelName, modelLabel = svc.backup, svc.backupModel, shared.ModelBackup
		reply, err = svc.complete(ctx, client, modelName, messages)
	}
	if err != nil {
		return nil, fmt.Errorf("model call failed: %w", err)
	}

	elapsed := time.Since(start)
	if svc.monSvc != nil {
		svc.monSvc.ObserveModelLatency(modelLabel, elapsed)
	}

	svc.cacheSvc.Store(ctx, message, reply)

	log.Infof("Response generated in %s for session %s", formatElapsed(elapsed), sessionID)
	return &dto.AssistantReply{
		Message:      reply,
		Model:        modelLabel,
		ResponseTime: formatElapsed(elapsed),
	}, nil
}

func (svc *AssistantService) buildPrompt(ctx context.Context, sessionID string) []openai.ChatCompletionMessage {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
	}

	history := svc.convSvc.History(sessionID)

	var latest string
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == shared.RoleUser {
			latest = history[i].Content
			break
		}
	}

	if latest != "" {
		knowledge, err := svc.knowledgeSvc.Search(ctx, latest)
		if err != nil {
			log.WithError(err).Warn("Knowledge retrieval failed - answering without context")
		} else if knowledge != "" {
			messages = append(messages, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleSystem,
				Content: "Knowledge base context for this question:\n\n" + knowledge,
			})
		}
	}

	if s, ok := svc.convSvc.Get(sessionID); ok && s.UserName != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: "The visitor's name is " + s.UserName + ".",
		})
	}

	for _, turn := range history {
		role := openai.ChatMessageRoleUser
		if turn.Role == shared.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: turn.Content,
		})
	}

	return messages
}

// selectProvider picks the client for this call. Backup is used when the
// primary is marked failed or the daily quota is exhausted.
func (svc *AssistantService) selectProvider() (*openai.Client, string, string) {
	svc.mutex.Lock()
	usingBackup := svc.useBackup
	svc.mutex.Unlock()

	if !usingBackup && svc.primary != nil {
		if svc.quotaSvc.TryConsume() {
			return svc.primary, svc.primaryModel, shared.ModelPrimary
		}
		log.Info("Daily quota exhausted, routing to backup provider")
	}

	return svc.backup, svc.backupModel, shared.ModelBackup
}

func (svc *AssistantService) complete(ctx context.Context, client *openai.Client, modelName string, messages []openai.ChatCompletionMessage) (string, error) {
	if client == nil {
		return "", fmt.Errorf("provider not configured")
	}

	callCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	resp, err := client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:       modelName,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   3096,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}

	reply := resp.Choices[0].Message.Content
	if reply == "" {
		reply = "I apologize, but I couldn't generate a response."
	}

	return reply, nil
}

func (svc *AssistantService) markBackup() {
	svc.mutex.Lock()
	svc.useBackup = true
	svc.mutex.Unlock()
}

func formatElapsed(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}
