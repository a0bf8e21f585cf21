package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
)

// EmailService sends transactional notifications over SMTP. All callers use
// it fire-and-forget: a failed notification is logged and never blocks the
// record-creation path that triggered it.
type EmailService struct {
	host      string
	port      string
	username  string
	password  string
	fromEmail string
}

type Config struct {
	Host      string
	Port      string
	Username  string
	Password  string
	FromEmail string
}

func NewEmailService(cfg Config) *EmailService {
	return &EmailService{
		host:      cfg.Host,
		port:      cfg.Port,
		username:  cfg.Username,
		password:  cfg.Password,
		fromEmail: cfg.FromEmail,
	}
}

// IsConfigured checks if the email service has valid SMTP configuration
func (s *EmailService) IsConfigured() bool {
	return s.host != "" && s.username != "" && s.password != ""
}

// NotificationData fills the shared notification template.
type NotificationData struct {
	Heading  string
	Intro    string
	Rows     map[string]string
	ActionTo string // landing route hint for the recipient's dashboard
}

const notificationTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Heading}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #1a7f5a; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .field { margin-bottom: 12px; }
        .label { font-weight: bold; color: #555; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>{{.Heading}}</h1>
        </div>
        <div class="content">
            <p>{{.Intro}}</p>
            {{range $label, $value := .Rows}}
            <div class="field">
                <span class="label">{{$label}}:</span> {{$value}}
            </div>
            {{end}}
            {{if .ActionTo}}<p>Open your dashboard at {{.ActionTo}} to respond.</p>{{end}}
        </div>
        <div class="footer">
            <p>This email was sent by Keyskeeper.</p>
        </div>
    </div>
</body>
</html>`

// SendNotification renders the shared template and sends it to one recipient.
func (s *EmailService) SendNotification(to, subject string, data NotificationData) error {
	tmpl, err := template.New("notification").Parse(notificationTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse email template: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		s.fromEmail,
		to,
		subject,
		body.String(),
	))

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := smtp.SendMail(addr, auth, s.fromEmail, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
