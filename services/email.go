package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/mailgun/mailgun-go/v4"
	"github.com/rayansh0071505/portfolio-api/model"
	"github.com/rayansh0071505/portfolio-api/shared"
	log "github.com/sirupsen/logrus"
)

// EmailService sends conversation summary notifications through Mailgun.
// When Mailgun is not configured the service stays up and sends become
// no-ops, summaries are never allowed to fail a chat request.
type EmailService struct {
	appContext.DefaultService

	mg        *mailgun.MailgunImpl
	domain    string
	fromEmail string
	fromName  string
	recipient string

	templates map[string]*template.Template
}

const EMAIL_SVC = "email_svc"

func (svc EmailService) Id() string {
	return EMAIL_SVC
}

func (svc *EmailService) Configure(ctx *appContext.Context) error {
	svc.domain = os.Getenv("MAILGUN_DOMAIN")
	svc.fromEmail = os.Getenv("FROM_EMAIL")
	svc.fromName = os.Getenv("FROM_NAME")
	svc.recipient = os.Getenv("SUMMARY_RECIPIENT")

	if svc.fromName == "" {
		svc.fromName = "Portfolio Chat"
	}
	if svc.fromEmail == "" && svc.domain != "" {
		svc.fromEmail = "chat@" + svc.domain
	}

	if key := os.Getenv("MAILGUN_SECRET"); key != "" && svc.domain != "" {
		svc.mg = mailgun.NewMailgun(svc.domain, key)
	}

	svc.templates = make(map[string]*template.Template)

	return svc.DefaultService.Configure(ctx)
}

func (svc *EmailService) Start() error {
	err := svc.loadTemplates()
	if err != nil {
		log.WithError(err).Error("Failed to load email templates")
	}

	if svc.mg == nil {
		log.Warn("Mailgun not configured, conversation summaries disabled")
	}

	return nil
}

const conversationSummaryHTML = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>New Conversation - Portfolio Chat</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #4F46E5; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background-color: #f9f9f9; }
        .details { background-color: white; padding: 15px; border-radius: 5px; margin: 15px 0; }
        .turn { padding: 10px; margin: 8px 0; border-radius: 5px; }
        .visitor { background-color: #EEF2FF; border-left: 4px solid #4F46E5; }
        .assistant { background-color: #F0FDF4; border-left: 4px solid #059669; }
        .footer { padding: 20px; text-align: center; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>New Portfolio Conversation</h1>
        </div>
        <div class="content">
            <div class="details">
                <strong>Visitor:</strong> {{.VisitorName}}<br>
                <strong>LinkedIn:</strong> {{.VisitorLinkedIn}}<br>
                <strong>Session:</strong> {{.SessionID}}<br>
                <strong>Messages:</strong> {{.MessageCount}}<br>
                <strong>Started:</strong> {{.StartedAt}}<br>
                <strong>Duration:</strong> {{.Duration}}
            </div>
            <h2>Transcript</h2>
            {{range .Turns}}
            <div class="turn {{.Class}}">
                <strong>{{.Speaker}}:</strong> {{.Content}}
            </div>
            {{end}}
        </div>
        <div class="footer">
            <p>Automated summary from the portfolio chat backend.</p>
        </div>
    </div>
</body>
</html>
`

type summaryTurn struct {
	Speaker string
	Class   string
	Content string
}

type conversationSummaryData struct {
	VisitorName     string
	VisitorLinkedIn string
	SessionID       string
	MessageCount    int
	StartedAt       string
	Duration        string
	Turns           []summaryTurn
}

func (svc *EmailService) loadTemplates() error {
	var err error

	svc.templates["conversation_summary"], err = template.New("conversation_summary").Parse(conversationSummaryHTML)
	if err != nil {
		return fmt.Errorf("failed to parse conversation summary template: %v", err)
	}

	return nil
}

// SendConversationSummary emails the full transcript of a finished session.
func (svc *EmailService) SendConversationSummary(session *model.Session) error {
	if svc.mg == nil || svc.recipient == "" {
		log.Warn("Mailgun not configured, skipping conversation summary")
		return nil
	}

	data := conversationSummaryData{
		VisitorName:     session.UserName,
		VisitorLinkedIn: session.UserLinkedIn,
		SessionID:       session.ID,
		MessageCount:    session.MessageCount,
		StartedAt:       session.StartedAt.Format(time.RFC1123),
		Duration:        session.LastActivity.Sub(session.StartedAt).Round(time.Second).String(),
	}
	if data.VisitorName == "" {
		data.VisitorName = "Anonymous"
	}
	if data.VisitorLinkedIn == "" {
		data.VisitorLinkedIn = "Not shared"
	}

	for _, turn := range session.Messages {
		speaker, class := "Visitor", "visitor"
		if turn.Role == shared.RoleAssistant {
			speaker, class = "Assistant", "assistant"
		}
		data.Turns = append(data.Turns, summaryTurn{
			Speaker: speaker,
			Class:   class,
			Content: turn.Content,
		})
	}

	subject := fmt.Sprintf("Portfolio chat with %s (%d messages)", data.VisitorName, data.MessageCount)
	return svc.sendTemplateEmail(svc.recipient, subject, "conversation_summary", data, plainTranscript(session))
}

func (svc *EmailService) sendTemplateEmail(to, subject, templateName string, data interface{}, plainBody string) error {
	tmpl, exists := svc.templates[templateName]
	if !exists {
		return fmt.Errorf("template %s not found", templateName)
	}

	var body bytes.Buffer
	err := tmpl.Execute(&body, data)
	if err != nil {
		return fmt.Errorf("failed to execute template: %v", err)
	}

	return svc.sendEmail(to, subject, plainBody, body.String())
}

func (svc *EmailService) sendEmail(to, subject, plainBody, htmlBody string) error {
	if svc.mg == nil {
		return fmt.Errorf("mailgun not configured")
	}

	from := fmt.Sprintf("%s <%s>", svc.fromName, svc.fromEmail)
	msg := svc.mg.NewMessage(from, subject, plainBody, to)
	if htmlBody != "" {
		msg.SetHtml(htmlBody)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, id, err := svc.mg.Send(ctx, msg)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"to": to, "subject": subject}).Error("Failed to send email")
		return fmt.Errorf("failed to send email: %v", err)
	}

	log.WithFields(log.Fields{"to": to, "id": id}).Info("Email sent successfully")
	return nil
}

// plainTranscript renders the fallback text body for clients without HTML.
func plainTranscript(session *model.Session) string {
	var b strings.Builder

	name := session.UserName
	if name == "" {
		name = "Anonymous"
	}
	fmt.Fprintf(&b, "Conversation with %s (session %s, %d messages)\n\n", name, session.ID, session.MessageCount)

	for _, turn := range session.Messages {
		speaker := "Visitor"
		if turn.Role == shared.RoleAssistant {
			speaker = "Assistant"
		}
		fmt.Fprintf(&b, "%s: %s\n\n", speaker, turn.Content)
	}

	return b.String()
}
